package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpired is returned when a credential's signature verifies but
	// its expiry has passed.
	ErrExpired = errors.New("token expired")
	// ErrInvalidSignature is returned when a credential is tampered with
	// or signed by an unknown key.
	ErrInvalidSignature = errors.New("token signature invalid")
	// ErrMalformed is returned when a credential is not a parseable token.
	ErrMalformed = errors.New("token malformed")
	// ErrMissingUserID is returned when a verified credential carries no
	// user identity claim.
	ErrMissingUserID = errors.New("token missing user id claim")
)

// Claims is the verified payload of a first-party credential.
type Claims struct {
	ID string `json:"id"`
	jwt.RegisteredClaims
}

// Decoder verifies HS256-signed first-party credentials.
type Decoder struct {
	secret []byte
	leeway time.Duration
}

// NewDecoder creates a credential decoder for the given signing secret.
func NewDecoder(secret []byte, leeway time.Duration) (*Decoder, error) {
	if len(secret) == 0 {
		return nil, errors.New("decoder requires a signing secret")
	}
	if leeway < 0 {
		return nil, errors.New("negative leeway")
	}
	return &Decoder{secret: secret, leeway: leeway}, nil
}

// Decode verifies the credential's signature and returns its claims.
// Failures are classified into [ErrExpired], [ErrInvalidSignature], and
// [ErrMalformed] so callers can log them distinctly.
func (d *Decoder) Decode(tokenStr string) (*Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if d.leeway > 0 {
		options = append(options, jwt.WithLeeway(d.leeway))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return d.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	if claims.ID == "" {
		return nil, ErrMissingUserID
	}
	return claims, nil
}

// ExtractExpiry parses a token WITHOUT verifying its signature and returns
// the exp claim in unix seconds. Forwarded third-party tokens can come from
// several issuers whose keys this service does not hold; their expiry is
// informational, so unverified parsing is deliberate here.
func ExtractExpiry(tokenStr string) (int64, error) {
	if tokenStr == "" {
		return 0, ErrMalformed
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0, fmt.Errorf("%w: missing exp claim", ErrMalformed)
	}
	return exp.Unix(), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
