package store

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	pb "go.storefront.dev/core/protocol"
)

const itemColumns = `id, name, description, price, category, brand, image_url, stock, is_active, created_at, updated_at`

// Relevance weights of a search term matched within an item's name or description.
const (
	NameWeight        = 10
	DescriptionWeight = 5
)

// ItemQuery is a filtered, sorted, and paginated query of items.
type ItemQuery struct {
	// Terms are lower-case search terms. An item matches if any term is a
	// substring of its name or description. Empty Terms match all items.
	Terms []string
	// Categories restricts items to those in one of the Categories, if non-empty.
	Categories []string
	// Optional inclusive price bounds.
	MinPrice, MaxPrice *float64
	// ActiveOnly restricts items to those which are active.
	ActiveOnly bool
	// Sort order of returned items. SortRelevance requires non-empty Terms,
	// and otherwise SortNewest is used.
	Sort pb.SortOrder
	// Offset and Limit of the page to return. A zero Limit is unlimited.
	Offset, Limit int
}

// CreateItem inserts |item|, assigning its ID (if empty) and timestamps.
func (s *Store) CreateItem(ctx context.Context, item *pb.Item) error {
	if item.ID == "" {
		item.ID = pb.NewObjectID()
	}
	item.CreatedAt = now()
	item.UpdatedAt = item.CreatedAt

	var _, err = s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		itemArgs(item)...)

	if err = mapErr(err); err == ErrDuplicate {
		return err
	}
	return errors.WithMessage(err, "inserting item")
}

// ItemByID returns the item having |id|, or ErrNotFound.
func (s *Store) ItemByID(ctx context.Context, id pb.ObjectID) (pb.Item, error) {
	return scanItem(s.db.QueryRowContext(ctx, s.rebind(
		`SELECT `+itemColumns+` FROM items WHERE id = ?`), string(id)))
}

// ItemsByID returns the items having the given |ids|, keyed on ID.
// IDs which don't exist are omitted from the result.
func (s *Store) ItemsByID(ctx context.Context, ids []pb.ObjectID) (map[pb.ObjectID]pb.Item, error) {
	var out = make(map[pb.ObjectID]pb.Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var args = make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = string(id)
	}

	var rows, err = s.db.QueryContext(ctx, s.rebind(
		`SELECT `+itemColumns+` FROM items WHERE id IN (`+placeholders(len(ids))+`)`), args...)
	if err != nil {
		return nil, errors.WithMessage(err, "querying items")
	}
	defer rows.Close()

	for rows.Next() {
		var item, err = scanItem(rows)
		if err != nil {
			return nil, err
		}
		out[item.ID] = item
	}
	return out, errors.WithMessage(rows.Err(), "iterating items")
}

// UpdateItem applies present |fields| to the item having |id|, returning the
// updated item or ErrNotFound.
func (s *Store) UpdateItem(ctx context.Context, id pb.ObjectID, fields pb.ItemFields) (pb.Item, error) {
	var item pb.Item

	var err = s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		if item, err = scanItem(tx.QueryRowContext(ctx, s.rebind(
			`SELECT `+itemColumns+` FROM items WHERE id = ?`), string(id))); err != nil {
			return err
		}
		fields.Apply(&item)
		item.UpdatedAt = now()

		_, err = tx.ExecContext(ctx, s.rebind(`UPDATE items SET
			name = ?, description = ?, price = ?, category = ?, brand = ?,
			image_url = ?, stock = ?, is_active = ?, updated_at = ?
			WHERE id = ?`),
			item.Name, item.Description, item.Price, item.Category, item.Brand,
			item.ImageURL, item.Stock, item.IsActive, item.UpdatedAt, string(item.ID))

		return errors.WithMessage(err, "updating item")
	})
	return item, err
}

// DeleteItem removes the item having |id|, or returns ErrNotFound.
func (s *Store) DeleteItem(ctx context.Context, id pb.ObjectID) error {
	var res, err = s.db.ExecContext(ctx, s.rebind(`DELETE FROM items WHERE id = ?`), string(id))
	if err != nil {
		return errors.WithMessage(err, "deleting item")
	}
	if n, err := res.RowsAffected(); err != nil {
		return errors.WithMessage(err, "deleting item")
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListItems returns the page of items matched by |q|, and the total number
// of matched items across all pages.
func (s *Store) ListItems(ctx context.Context, q ItemQuery) ([]pb.Item, int, error) {
	var where []string
	var args []interface{}

	if q.ActiveOnly {
		where = append(where, "is_active = ?")
		args = append(args, true)
	}
	if len(q.Categories) != 0 {
		where = append(where, "category IN ("+placeholders(len(q.Categories))+")")
		for _, c := range q.Categories {
			args = append(args, c)
		}
	}
	if q.MinPrice != nil {
		where = append(where, "price >= ?")
		args = append(args, *q.MinPrice)
	}
	if q.MaxPrice != nil {
		where = append(where, "price <= ?")
		args = append(args, *q.MaxPrice)
	}

	// Score each item by its matched search terms, and require a match.
	var score string
	var scoreArgs []interface{}

	if len(q.Terms) != 0 {
		var parts []string
		for _, term := range q.Terms {
			var pattern = "%" + escapeLike(term) + "%"
			parts = append(parts,
				"(CASE WHEN lower(name) LIKE ? ESCAPE '\\' THEN "+strconv.Itoa(NameWeight)+" ELSE 0 END)",
				"(CASE WHEN lower(description) LIKE ? ESCAPE '\\' THEN "+strconv.Itoa(DescriptionWeight)+" ELSE 0 END)")
			scoreArgs = append(scoreArgs, pattern, pattern)
		}
		score = "(" + strings.Join(parts, " + ") + ")"

		where = append(where, score+" > 0")
		args = append(args, scoreArgs...)
	}

	var from = ` FROM items`
	if len(where) != 0 {
		from += ` WHERE ` + strings.Join(where, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*)`+from), args...).Scan(&total); err != nil {
		return nil, 0, errors.WithMessage(err, "counting items")
	}

	var query = `SELECT ` + itemColumns + from + ` ORDER BY `
	if q.Sort == pb.SortRelevance && score != "" {
		query += score + ` DESC, `
		args = append(args, scoreArgs...)
	}
	query += orderBy(q.Sort)

	if q.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, q.Limit, q.Offset)
	}

	var rows, err = s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, 0, errors.WithMessage(err, "querying items")
	}
	defer rows.Close()

	var items = []pb.Item{}
	for rows.Next() {
		var item, err = scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, errors.WithMessage(rows.Err(), "iterating items")
}

// orderBy returns the ORDER BY terms of the SortOrder. ID breaks ties so
// that pagination is stable. Relevance (after ordering by score) and an
// unset SortOrder are ordered newest first.
func orderBy(sort pb.SortOrder) string {
	switch sort {
	case pb.SortPriceAsc:
		return "price ASC, id ASC"
	case pb.SortPriceDesc:
		return "price DESC, id DESC"
	case pb.SortOldest:
		return "created_at ASC, id ASC"
	}
	return "created_at DESC, id DESC"
}

func itemArgs(item *pb.Item) []interface{} {
	return []interface{}{
		string(item.ID), item.Name, item.Description, item.Price, item.Category, item.Brand,
		item.ImageURL, item.Stock, item.IsActive, item.CreatedAt, item.UpdatedAt,
	}
}

func scanItem(row rowScanner) (pb.Item, error) {
	var m pb.Item
	var id string

	if err := row.Scan(&id, &m.Name, &m.Description, &m.Price, &m.Category, &m.Brand,
		&m.ImageURL, &m.Stock, &m.IsActive, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if err = mapErr(err); err == ErrNotFound {
			return m, err
		}
		return m, errors.WithMessage(err, "scanning item")
	}
	m.ID = pb.ObjectID(id)
	return m, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// escapeLike escapes LIKE wildcards of |s| using a backslash.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// inTx runs |fn| within a transaction, which is committed if |fn| succeeds
// and rolled back otherwise.
func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	var tx, err = s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WithMessage(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.WithMessage(tx.Commit(), "committing transaction")
}
