package auth

import (
	"context"
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
	pb "go.storefront.dev/core/protocol"
)

// Middleware authenticates requests using Sessions.
type Middleware struct {
	Sessions *Sessions
	// Unauthorized writes the response of a request rejected by RequireAuth.
	// If nil, a 401 JSON error envelope is written.
	Unauthorized func(http.ResponseWriter, *http.Request, error)
}

// OptionalAuth attaches the Session of a request presenting a valid token to
// its context. Requests without a token, or with an invalid one, proceed
// without a Session.
func (m *Middleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session, err := m.authenticate(r); err == nil {
			r = r.WithContext(WithUser(r.Context(), session))
		} else if err != ErrMissingAuth {
			log.WithField("err", err).Debug("ignoring invalid session token")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests not presenting a valid session token.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session, err := m.authenticate(r); err != nil {
			m.unauthorized(w, r, err)
		} else {
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), session)))
		}
	})
}

func (m *Middleware) authenticate(r *http.Request) (Session, error) {
	var token, err = TokenFromRequest(r)
	if err != nil {
		return Session{}, err
	}
	return m.Sessions.Verify(token)
}

func (m *Middleware) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	if m.Unauthorized != nil {
		m.Unauthorized(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"message": pb.ErrUnauthorized.Message,
			"code":    pb.ErrUnauthorized.Code,
		},
	})
}

type sessionKey struct{}

// WithUser returns a Context carrying the Session.
func WithUser(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// UserFromContext returns the Session of an authenticated request.
func UserFromContext(ctx context.Context) (Session, bool) {
	var session, ok = ctx.Value(sessionKey{}).(Session)
	return session, ok
}
