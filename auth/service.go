package auth

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.storefront.dev/core/metrics"
	pb "go.storefront.dev/core/protocol"
	"go.storefront.dev/core/store"
)

// Users is the user storage required by Service.
type Users interface {
	CreateUser(ctx context.Context, user *pb.User) error
	UserByEmail(ctx context.Context, email string) (pb.User, error)
}

// Service implements account signup and login.
type Service struct {
	Users    Users
	Sessions *Sessions
	// UnknownUserDelay is slept before rejecting a login of an unknown email,
	// so that unknown emails are not trivially distinguished from bad passwords.
	UnknownUserDelay time.Duration
}

// NewService returns a Service of the Users and Sessions.
func NewService(users Users, sessions *Sessions) *Service {
	return &Service{
		Users:            users,
		Sessions:         sessions,
		UnknownUserDelay: 150 * time.Millisecond,
	}
}

// Signup creates an account of the SignupRequest.
func (s *Service) Signup(ctx context.Context, req pb.SignupRequest) (pb.PublicUser, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return pb.PublicUser{}, err
	}

	if _, err := s.Users.UserByEmail(ctx, req.Email); err == nil {
		return pb.PublicUser{}, pb.ErrEmailTaken
	} else if err != store.ErrNotFound {
		return pb.PublicUser{}, err
	}

	var hash, err = HashPassword(req.Password)
	if err != nil {
		return pb.PublicUser{}, err
	}
	var user = pb.User{Name: req.Name, Email: req.Email, PasswordHash: hash}

	// A concurrent signup of the same email may win the race to insert.
	if err = s.Users.CreateUser(ctx, &user); err == store.ErrDuplicate {
		return pb.PublicUser{}, pb.ErrEmailTaken
	} else if err != nil {
		return pb.PublicUser{}, err
	}
	metrics.SignupsTotal.Inc()

	log.WithFields(log.Fields{"id": user.ID, "email": user.Email}).Info("created account")
	return user.Public(), nil
}

// Login verifies the credentials of the LoginRequest, returning the user and
// a newly-issued session token.
func (s *Service) Login(ctx context.Context, req pb.LoginRequest) (pb.PublicUser, string, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return pb.PublicUser{}, "", err
	}

	var user, err = s.Users.UserByEmail(ctx, req.Email)
	if err == store.ErrNotFound {
		metrics.LoginsTotal.WithLabelValues(metrics.Fail).Inc()

		select {
		case <-time.After(s.UnknownUserDelay):
		case <-ctx.Done():
			return pb.PublicUser{}, "", ctx.Err()
		}
		return pb.PublicUser{}, "", pb.ErrInvalidCredentials
	} else if err != nil {
		return pb.PublicUser{}, "", err
	} else if !CheckPassword(user.PasswordHash, req.Password) {
		metrics.LoginsTotal.WithLabelValues(metrics.Fail).Inc()
		return pb.PublicUser{}, "", pb.ErrInvalidCredentials
	}

	token, err := s.Sessions.Issue(user.Public())
	if err != nil {
		return pb.PublicUser{}, "", err
	}
	metrics.LoginsTotal.WithLabelValues(metrics.Ok).Inc()

	return user.Public(), token, nil
}
