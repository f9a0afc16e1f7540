package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	sessionkit "github.com/chatstack/sessionkit"
	"github.com/chatstack/sessionkit/session"
	"github.com/chatstack/sessionkit/token"
)

const (
	// CookieName is the cookie carrying the first-party credential.
	CookieName = "token"
	// ForwardedTokenHeader carries the third-party access token observed
	// by the auth proxy in front of this service.
	ForwardedTokenHeader = "X-Forwarded-Access-Token"
)

type sessionContextKey struct{}

// SessionFromContext returns the session loaded for this request, when the
// request carried a valid credential.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionContextKey{}).(*session.Session)
	return sess, ok
}

// UserSession returns middleware that maintains the per-user session for
// every request carrying a credential. Requests without one, or with a
// credential that fails verification, pass through unchanged.
func UserSession(svc *sessionkit.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil {
				next.ServeHTTP(w, r)
				return
			}

			if sess := resolveSession(r, svc); sess != nil {
				ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// resolveSession runs steps 1–5 of the per-request algorithm. It returns
// nil for anonymous or unverifiable requests and never fails the caller.
func resolveSession(r *http.Request, svc *sessionkit.Service) *session.Session {
	cred := credentialFrom(r)
	if cred == "" {
		return nil
	}

	ctx := r.Context()

	claims, err := svc.Decoder().Decode(cred)
	if err != nil {
		// The request proceeds unauthenticated; authorization is
		// enforced elsewhere.
		svc.Metrics().Inc(sessionkit.MetricCredentialRejected)
		svc.Sink().Emit(ctx, sessionkit.Event{
			Timestamp: time.Now(),
			EventType: sessionkit.EventCredentialRejected,
			Error:     err.Error(),
		})
		return nil
	}

	sess, err := svc.Store().Get(ctx, claims.ID)
	switch {
	case err == nil:
		svc.Metrics().Inc(sessionkit.MetricSessionHit)
	case errors.Is(err, session.ErrNotFound):
		sess = session.New(claims.ID)
		svc.Metrics().Inc(sessionkit.MetricSessionMiss)
	default:
		// Store unreachable: run this request on a fresh session and
		// let a later request persist it.
		sess = session.New(claims.ID)
		svc.Sink().Emit(ctx, sessionkit.Event{
			Timestamp: time.Now(),
			EventType: sessionkit.EventSessionLoadFailed,
			UserID:    claims.ID,
			Error:     err.Error(),
		})
	}

	if mergeForwardedToken(r, svc, sess) {
		persist(ctx, svc, sess)
	}

	return sess
}

// mergeForwardedToken applies the replacement policy to the forwarded
// third-party token, if any. It reports whether the session changed.
func mergeForwardedToken(r *http.Request, svc *sessionkit.Service, sess *session.Session) bool {
	fwd := r.Header.Get(ForwardedTokenHeader)
	if fwd == "" {
		return false
	}

	// Expiry is informational only, so no signature verification here.
	expiry, err := token.ExtractExpiry(fwd)
	if err != nil {
		svc.Metrics().Inc(sessionkit.MetricTokenIgnored)
		return false
	}

	if !svc.Policy().ShouldReplace(sess.AccessToken, expiry) {
		svc.Metrics().Inc(sessionkit.MetricTokenIgnored)
		return false
	}

	sess.AccessToken = &session.TokenRef{Token: fwd, Expiry: expiry}
	svc.Metrics().Inc(sessionkit.MetricTokenAccepted)
	return true
}

// persist writes the changed session back. A failed write means the change
// is lost for this request only; the request itself continues.
func persist(ctx context.Context, svc *sessionkit.Service, sess *session.Session) {
	if err := svc.Store().Update(ctx, sess); err != nil {
		svc.Metrics().Inc(sessionkit.MetricSessionSaveFailed)
		svc.Sink().Emit(ctx, sessionkit.Event{
			Timestamp: time.Now(),
			EventType: sessionkit.EventSessionUpdateFailed,
			UserID:    sess.UserID,
			Error:     err.Error(),
		})
		return
	}
	svc.Metrics().Inc(sessionkit.MetricSessionSaved)
	svc.Sink().Emit(ctx, sessionkit.Event{
		Timestamp: time.Now(),
		EventType: sessionkit.EventSessionUpdated,
		UserID:    sess.UserID,
		Success:   true,
	})
}

// credentialFrom reads the cookie first, then the Authorization header.
func credentialFrom(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(value string) string {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return ""
	}
	return value[len(bearer):]
}
