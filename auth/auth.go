// Package auth implements storefront sessions and password credentials.
//
// A session is an HS256-signed JWT carrying the user's ID (as the "sub"
// claim), email, and name. It's issued on login and presented by clients as
// an HttpOnly "token" cookie, or as an "Authorization: Bearer" header.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	pb "go.storefront.dev/core/protocol"
)

// MinSecretLength is the minimum length of a session signing secret.
const MinSecretLength = 32

// Claims are the JWT claims of a session token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// Session is a verified session, attached to the context of an
// authenticated request.
type Session struct {
	ID        pb.ObjectID `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	IssuedAt  int64       `json:"iat,omitempty"`
	ExpiresAt int64       `json:"exp,omitempty"`
}

// Sessions issues and verifies session tokens using a pre-shared secret.
type Sessions struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewSessions returns Sessions which sign with |secret| and issue tokens
// expiring after |ttl|.
func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	if utf8.RuneCountInString(secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d characters", MinSecretLength)
	} else if ttl <= 0 {
		return nil, fmt.Errorf("session expiry must be positive (got %s)", ttl)
	}
	return &Sessions{key: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL is the lifetime of issued session tokens.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Issue a signed session token for |user|.
func (s *Sessions) Issue(user pb.PublicUser) (string, error) {
	var now = s.now()
	var claims = Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
}

// Verify the session |token|, returning its Session.
func (s *Sessions) Verify(token string) (Session, error) {
	var claims Claims

	if token == "" {
		return Session{}, ErrMissingAuth
	} else if parsed, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (interface{}, error) { return s.key, nil },
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(time.Second*5),
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(s.now),
	); err != nil {
		return Session{}, fmt.Errorf("verifying session: %w", err)
	} else if !parsed.Valid {
		panic("token.Valid must be true")
	} else if err = pb.ObjectID(claims.Subject).Validate(); err != nil {
		return Session{}, fmt.Errorf("verifying session subject: %w", err)
	}

	var session = Session{
		ID:    pb.ObjectID(claims.Subject),
		Email: claims.Email,
		Name:  claims.Name,
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return session, nil
}

// TokenFromRequest returns the session token presented by |r|, taken from
// its token cookie or else its Authorization header.
func TokenFromRequest(r *http.Request) (string, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	var auth = r.Header.Get("Authorization")

	if auth == "" {
		return "", ErrMissingAuth
	} else if !strings.HasPrefix(auth, "Bearer ") {
		return "", ErrNotBearer
	}
	return strings.TrimPrefix(auth, "Bearer "), nil
}

var (
	ErrMissingAuth = errors.New("missing or empty session token")
	ErrNotBearer   = errors.New("invalid or unsupported Authorization header (expected 'Bearer')")
)
