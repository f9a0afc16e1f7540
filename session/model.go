package session

import "errors"

// ErrInvalidSession is returned when a session fails shape validation.
var ErrInvalidSession = errors.New("invalid session")

// TokenRef holds a federated-identity access token together with its
// expiry claim (unix seconds), extracted without signature verification.
type TokenRef struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"`
}

// Session associates a user identity with transient federated-auth state.
// UserID is set at creation and never changed; AccessToken is replaced by
// the middleware according to the configured replacement policy.
type Session struct {
	UserID      string    `json:"user_id"`
	AccessToken *TokenRef `json:"access_token,omitempty"`
}

// New returns an empty session for the given user.
func New(userID string) *Session {
	return &Session{UserID: userID}
}

// Validate checks the session's data shape. A session without a user ID is
// never valid.
func (s *Session) Validate() error {
	if s == nil || s.UserID == "" {
		return ErrInvalidSession
	}
	return nil
}

// Clone returns a deep copy, so stored sessions are never aliased by
// callers that mutate the returned value.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := &Session{UserID: s.UserID}
	if s.AccessToken != nil {
		tok := *s.AccessToken
		out.AccessToken = &tok
	}
	return out
}
