package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/pkg/errors"
	pb "go.storefront.dev/core/protocol"
)

const cartColumns = `id, user_id, cart_id, lines, created_at, updated_at`

// CartByKey returns the cart of |key|, or ErrNotFound.
func (s *Store) CartByKey(ctx context.Context, key pb.CartKey) (pb.Cart, error) {
	var column, value = cartKeyColumn(key)
	return scanCart(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+cartColumns+` FROM carts WHERE `+column+` = ?`), value))
}

// EnsureCart returns the cart of |key|, creating an empty one if it doesn't
// exist. Concurrent callers racing to create the same cart observe a single
// cart: losers of the race read the winner's cart.
func (s *Store) EnsureCart(ctx context.Context, key pb.CartKey) (pb.Cart, error) {
	if cart, err := s.CartByKey(ctx, key); err != ErrNotFound {
		return cart, err
	}

	var ts = now()
	var cart = pb.Cart{
		ID:        pb.NewObjectID(),
		UserID:    key.UserID,
		CartID:    key.CartID,
		Lines:     []pb.CartLine{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	var _, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO carts (`+cartColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		string(cart.ID), nullString(string(key.UserID)), nullString(key.CartID), "[]", ts, ts)

	if err = mapErr(err); err == ErrDuplicate {
		return s.CartByKey(ctx, key)
	} else if err != nil {
		return pb.Cart{}, errors.WithMessage(err, "inserting cart")
	}
	return cart, nil
}

// SaveCartLines replaces the lines of |cart| and bumps its UpdatedAt.
// ErrNotFound is returned if the cart was deleted.
func (s *Store) SaveCartLines(ctx context.Context, cart *pb.Cart) error {
	if cart.Lines == nil {
		cart.Lines = []pb.CartLine{}
	}
	var lines, err = json.Marshal(cart.Lines)
	if err != nil {
		return errors.WithMessage(err, "encoding cart lines")
	}
	cart.UpdatedAt = now()

	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE carts SET lines = ?, updated_at = ? WHERE id = ?`),
		string(lines), cart.UpdatedAt, string(cart.ID))
	if err != nil {
		return errors.WithMessage(err, "updating cart")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.WithMessage(err, "updating cart")
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCart removes the cart having |id|. Deleting a missing cart is not an error.
func (s *Store) DeleteCart(ctx context.Context, id pb.ObjectID) error {
	var _, err = s.db.ExecContext(ctx, s.rebind(`DELETE FROM carts WHERE id = ?`), string(id))
	return errors.WithMessage(err, "deleting cart")
}

func cartKeyColumn(key pb.CartKey) (string, string) {
	if key.UserID != "" {
		return "user_id", string(key.UserID)
	}
	return "cart_id", key.CartID
}

func scanCart(row rowScanner) (pb.Cart, error) {
	var c pb.Cart
	var id, lines string
	var userID, cartID sql.NullString

	if err := row.Scan(&id, &userID, &cartID, &lines, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err = mapErr(err); err == ErrNotFound {
			return c, err
		}
		return c, errors.WithMessage(err, "scanning cart")
	}
	c.ID, c.UserID, c.CartID = pb.ObjectID(id), pb.ObjectID(userID.String), cartID.String

	if err := json.Unmarshal([]byte(lines), &c.Lines); err != nil {
		return c, errors.WithMessagef(err, "decoding lines of cart %s", id)
	}
	if c.Lines == nil {
		c.Lines = []pb.CartLine{}
	}
	return c, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
