package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

const addressColumns = "id,user_id,label,line1,line2,city,state,postal_code,country,is_default,created_at,updated_at"

// AddressRepo manages the per-user address book.  Invariant: a user with at
// least one address has exactly one default.  Every write that could touch
// the default flag runs inside a single transaction so no concurrent reader
// observes zero or two defaults.
type AddressRepo struct{ DB *sql.DB }

func NewAddressRepo(db *sql.DB) *AddressRepo { return &AddressRepo{DB: db} }

// ListByUser returns all addresses of a user, default first, newest next.
func (r *AddressRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Address, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE user_id=? ORDER BY is_default DESC, created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Address
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByID returns a single address owned by the user.
func (r *AddressRepo) GetByID(ctx context.Context, userID, id uint64) (model.Address, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+addressColumns+" FROM addresses WHERE id=? AND user_id=? LIMIT 1", id, userID)
	a, err := scanAddress(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Address{}, ErrNotFound
	}
	return a, err
}

// Create inserts a new address.  The user's first address becomes the
// default regardless of the request; an explicit IsDefault on a later
// address demotes the previous default in the same transaction.
func (r *AddressRepo) Create(ctx context.Context, a *model.Address) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM addresses WHERE user_id=?", a.UserID).Scan(&existing); err != nil {
		return err
	}
	if existing == 0 {
		a.IsDefault = true
	} else if a.IsDefault {
		if _, err := tx.ExecContext(ctx,
			"UPDATE addresses SET is_default=0 WHERE user_id=?", a.UserID); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx,
		"INSERT INTO addresses (user_id, label, line1, line2, city, state, postal_code, country, is_default) VALUES (?,?,?,?,?,?,?,?,?)",
		a.UserID, a.Label, a.Line1, nullIfEmpty(a.Line2), a.City, nullIfEmpty(a.State), a.PostalCode, a.Country, a.IsDefault)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return tx.Commit()
}

// AddressUpdate carries the optional fields of an address update.
type AddressUpdate struct {
	Label      *string
	Line1      *string
	Line2      *string
	City       *string
	State      *string
	PostalCode *string
	Country    *string
}

// Update applies a partial update to an address owned by the user.  The
// default flag is not updatable here; use SetDefault.
func (r *AddressRepo) Update(ctx context.Context, userID, id uint64, upd AddressUpdate) (model.Address, error) {
	var set []string
	var args []any
	appendSet := func(col string, v *string, nullable bool) {
		if v == nil {
			return
		}
		set = append(set, col+"=?")
		if nullable {
			args = append(args, nullIfEmpty(*v))
		} else {
			args = append(args, *v)
		}
	}
	appendSet("label", upd.Label, false)
	appendSet("line1", upd.Line1, false)
	appendSet("line2", upd.Line2, true)
	appendSet("city", upd.City, false)
	appendSet("state", upd.State, true)
	appendSet("postal_code", upd.PostalCode, false)
	appendSet("country", upd.Country, false)

	if len(set) > 0 {
		args = append(args, id, userID)
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE addresses SET "+strings.Join(set, ", ")+" WHERE id=? AND user_id=?", args...); err != nil {
			return model.Address{}, err
		}
	}
	return r.GetByID(ctx, userID, id)
}

// Delete removes an address.  When the deleted row was the default, the most
// recently created remaining address is promoted inside the same transaction
// so the one-default invariant holds for users that still have addresses.
func (r *AddressRepo) Delete(ctx context.Context, userID, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var wasDefault bool
	err = tx.QueryRowContext(ctx,
		"SELECT is_default FROM addresses WHERE id=? AND user_id=? LIMIT 1", id, userID).Scan(&wasDefault)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM addresses WHERE id=? AND user_id=?", id, userID); err != nil {
		return err
	}
	if wasDefault {
		if _, err := tx.ExecContext(ctx,
			"UPDATE addresses SET is_default=1 WHERE user_id=? ORDER BY created_at DESC LIMIT 1", userID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SetDefault makes the given address the user's single default.  Clearing
// the old flag and setting the new one happen in one transaction; no
// intermediate state with zero or two defaults is ever visible.
func (r *AddressRepo) SetDefault(ctx context.Context, userID, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var exists uint64
	err = tx.QueryRowContext(ctx,
		"SELECT id FROM addresses WHERE id=? AND user_id=? LIMIT 1", id, userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE addresses SET is_default=0 WHERE user_id=? AND id<>?", userID, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE addresses SET is_default=1 WHERE id=?", id); err != nil {
		return err
	}
	return tx.Commit()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanAddress(row rowScanner) (model.Address, error) {
	var a model.Address
	var line2, state sql.NullString
	err := row.Scan(&a.ID, &a.UserID, &a.Label, &a.Line1, &line2, &a.City, &state,
		&a.PostalCode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Address{}, err
	}
	a.Line2 = line2.String
	a.State = state.String
	return a, nil
}
