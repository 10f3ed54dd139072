package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

const userColumns = "id,email,password_hash,first_name,last_name,phone,role,is_active,email_verified,created_at,updated_at"

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a new user row and fills in the generated ID.  A duplicate
// email surfaces as ErrEmailExists whether it is caught here or by a
// concurrent insert hitting the unique index.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	u.Email = NormalizeEmail(u.Email)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, first_name, last_name, phone, role, is_active, email_verified) VALUES (?,?,?,?,?,?,?,?)",
		u.Email, u.PasswordHash, u.FirstName, u.LastName, nullIfEmpty(u.Phone), u.Role, u.IsActive, u.EmailVerified)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// GetByEmail fetches a full user row (hash included) by normalized email.
// Only the login path should call this.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", NormalizeEmail(email)))
}

// GetByID fetches a full user row (hash included) by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// GetProfileByID fetches the safe projection of a user, never selecting the
// password hash.  This is what the auth middleware resolves per request.
func (r *UserRepo) GetProfileByID(ctx context.Context, id uint64) (model.Profile, error) {
	var p model.Profile
	var phone sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,first_name,last_name,phone,role,is_active,email_verified,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &phone, &p.Role, &p.IsActive, &p.EmailVerified, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, ErrNotFound
	}
	if err != nil {
		return model.Profile{}, err
	}
	p.Phone = phone.String
	return p, nil
}

// ProfileUpdate carries the optional fields of a profile update.  A nil
// pointer means "leave unchanged"; only present fields end up in the SET
// clause.
type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

// UpdateProfile applies a partial update and returns the resulting profile.
// With no fields present it degenerates to a plain read.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, upd ProfileUpdate) (model.Profile, error) {
	var set []string
	var args []any
	if upd.FirstName != nil {
		set = append(set, "first_name=?")
		args = append(args, *upd.FirstName)
	}
	if upd.LastName != nil {
		set = append(set, "last_name=?")
		args = append(args, *upd.LastName)
	}
	if upd.Phone != nil {
		set = append(set, "phone=?")
		args = append(args, nullIfEmpty(*upd.Phone))
	}
	if len(set) > 0 {
		args = append(args, id)
		// RowsAffected is 0 both when the id is gone and when the new
		// values equal the old ones, so the read below is what decides
		// between ErrNotFound and a no-op update.
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=?", args...); err != nil {
			return model.Profile{}, err
		}
	}
	return r.GetProfileByID(ctx, id)
}

// UpdatePassword replaces the stored hash for a user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash=? WHERE id=?", hash, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// SetActive flips the soft-deactivation flag.
func (r *UserRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET is_active=? WHERE id=?", active, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// MarkEmailVerified records a completed email verification.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET email_verified=1 WHERE id=?", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// RoleCount is one row of the by-role aggregation.
type RoleCount struct {
	Role  string `json:"role"`
	Count int64  `json:"count"`
}

// StatusCount is one row of the active/inactive aggregation.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// VerifiedCount is one row of the verified/unverified aggregation.
type VerifiedCount struct {
	Verified bool  `json:"verified"`
	Count    int64 `json:"count"`
}

// UserStats is the read-only reporting aggregate exposed to admins.
type UserStats struct {
	Total          int64           `json:"total"`
	ByRole         []RoleCount     `json:"byRole"`
	ByStatus       []StatusCount   `json:"byStatus"`
	ByVerification []VerifiedCount `json:"byVerification"`
}

// Stats aggregates user counts by total, role, active flag and verification
// flag.
func (r *UserRepo) Stats(ctx context.Context) (UserStats, error) {
	var s UserStats
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&s.Total); err != nil {
		return UserStats{}, err
	}

	rows, err := r.DB.QueryContext(ctx, "SELECT role, COUNT(*) FROM users GROUP BY role")
	if err != nil {
		return UserStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var rc RoleCount
		if err := rows.Scan(&rc.Role, &rc.Count); err != nil {
			return UserStats{}, err
		}
		s.ByRole = append(s.ByRole, rc)
	}
	if err := rows.Err(); err != nil {
		return UserStats{}, err
	}

	actRows, err := r.DB.QueryContext(ctx, "SELECT is_active, COUNT(*) FROM users GROUP BY is_active")
	if err != nil {
		return UserStats{}, err
	}
	defer actRows.Close()
	for actRows.Next() {
		var active bool
		var n int64
		if err := actRows.Scan(&active, &n); err != nil {
			return UserStats{}, err
		}
		status := "inactive"
		if active {
			status = "active"
		}
		s.ByStatus = append(s.ByStatus, StatusCount{Status: status, Count: n})
	}
	if err := actRows.Err(); err != nil {
		return UserStats{}, err
	}

	verRows, err := r.DB.QueryContext(ctx, "SELECT email_verified, COUNT(*) FROM users GROUP BY email_verified")
	if err != nil {
		return UserStats{}, err
	}
	defer verRows.Close()
	for verRows.Next() {
		var vc VerifiedCount
		if err := verRows.Scan(&vc.Verified, &vc.Count); err != nil {
			return UserStats{}, err
		}
		s.ByVerification = append(s.ByVerification, vc)
	}
	if err := verRows.Err(); err != nil {
		return UserStats{}, err
	}
	return s, nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	var phone sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&phone, &u.Role, &u.IsActive, &u.EmailVerified, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	u.Phone = phone.String
	return u, nil
}

// NormalizeEmail lower-cases and trims an email so uniqueness is
// case-insensitive everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
