package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/ecommerce-backend/internal/model"
)

// SettingsRepo manages the one-row-per-user account settings table.
type SettingsRepo struct{ DB *sql.DB }

func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{DB: db} }

// Get returns the user's settings, creating the row with defaults on first
// read.  The insert ignores a duplicate-key race with another first read.
func (r *SettingsRepo) Get(ctx context.Context, userID uint64) (model.AccountSettings, error) {
	s, err := r.fetch(ctx, userID)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.AccountSettings{}, err
	}

	def := model.DefaultAccountSettings(userID)
	if _, err := r.DB.ExecContext(ctx,
		"INSERT INTO account_settings (user_id, newsletter, order_notifications, promo_emails) VALUES (?,?,?,?)",
		def.UserID, def.Newsletter, def.OrderNotifications, def.PromoEmails); err != nil && !isDuplicateKey(err) {
		return model.AccountSettings{}, err
	}
	return r.fetch(ctx, userID)
}

// SettingsUpdate carries the optional fields of a settings update.
type SettingsUpdate struct {
	Newsletter         *bool
	OrderNotifications *bool
	PromoEmails        *bool
}

// Update applies a partial update and returns the resulting settings.  The
// row is created first if the user never touched their settings before.
func (r *SettingsRepo) Update(ctx context.Context, userID uint64, upd SettingsUpdate) (model.AccountSettings, error) {
	if _, err := r.Get(ctx, userID); err != nil {
		return model.AccountSettings{}, err
	}

	var set []string
	var args []any
	if upd.Newsletter != nil {
		set = append(set, "newsletter=?")
		args = append(args, *upd.Newsletter)
	}
	if upd.OrderNotifications != nil {
		set = append(set, "order_notifications=?")
		args = append(args, *upd.OrderNotifications)
	}
	if upd.PromoEmails != nil {
		set = append(set, "promo_emails=?")
		args = append(args, *upd.PromoEmails)
	}
	if len(set) > 0 {
		args = append(args, userID)
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE account_settings SET "+strings.Join(set, ", ")+" WHERE user_id=?", args...); err != nil {
			return model.AccountSettings{}, err
		}
	}
	return r.fetch(ctx, userID)
}

func (r *SettingsRepo) fetch(ctx context.Context, userID uint64) (model.AccountSettings, error) {
	var s model.AccountSettings
	err := r.DB.QueryRowContext(ctx,
		"SELECT user_id, newsletter, order_notifications, promo_emails, updated_at FROM account_settings WHERE user_id=? LIMIT 1",
		userID).Scan(&s.UserID, &s.Newsletter, &s.OrderNotifications, &s.PromoEmails, &s.UpdatedAt)
	return s, err
}
