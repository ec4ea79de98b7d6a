package store

import (
	"context"

	"github.com/pkg/errors"
	pb "go.storefront.dev/core/protocol"
)

const userColumns = `id, name, email, password_hash, created_at, updated_at`

// CreateUser inserts |user|, assigning its ID (if empty) and timestamps.
// ErrDuplicate is returned if the user's email is already registered.
func (s *Store) CreateUser(ctx context.Context, user *pb.User) error {
	if user.ID == "" {
		user.ID = pb.NewObjectID()
	}
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt

	var _, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		string(user.ID), user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt)

	if err = mapErr(err); err == ErrDuplicate {
		return err
	}
	return errors.WithMessage(err, "inserting user")
}

// UserByEmail returns the user having |email|, or ErrNotFound.
func (s *Store) UserByEmail(ctx context.Context, email string) (pb.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+userColumns+` FROM users WHERE email = ?`), email))
}

// UserByID returns the user having |id|, or ErrNotFound.
func (s *Store) UserByID(ctx context.Context, id pb.ObjectID) (pb.User, error) {
	return scanUser(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+userColumns+` FROM users WHERE id = ?`), string(id)))
}

func scanUser(row rowScanner) (pb.User, error) {
	var u pb.User
	var id string

	if err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if err = mapErr(err); err == ErrNotFound {
			return u, err
		}
		return u, errors.WithMessage(err, "scanning user")
	}
	u.ID = pb.ObjectID(id)
	return u, nil
}
