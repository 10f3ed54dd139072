package model

import "time"

// AccountSettings models the `account_settings` table, one row per user.
// The row is created lazily with these defaults the first time the settings
// are read.
type AccountSettings struct {
	UserID             uint64    `json:"userId"`             // account_settings.user_id
	Newsletter         bool      `json:"newsletter"`         // account_settings.newsletter
	OrderNotifications bool      `json:"orderNotifications"` // account_settings.order_notifications
	PromoEmails        bool      `json:"promoEmails"`        // account_settings.promo_emails
	UpdatedAt          time.Time `json:"updatedAt"`          // account_settings.updated_at
}

// DefaultAccountSettings returns the settings a fresh account starts with:
// transactional mail on, marketing mail off.
func DefaultAccountSettings(userID uint64) AccountSettings {
	return AccountSettings{
		UserID:             userID,
		Newsletter:         false,
		OrderNotifications: true,
		PromoEmails:        false,
	}
}
