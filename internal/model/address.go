package model

import "time"

// Address models a row in the `addresses` table.  Every user may keep any
// number of addresses but at most one of them carries IsDefault=true; the
// repository enforces that inside a single transaction.
type Address struct {
	ID         uint64    `json:"id"`         // addresses.id
	UserID     uint64    `json:"userId"`     // addresses.user_id
	Label      string    `json:"label"`      // addresses.label (e.g. "home", "office")
	Line1      string    `json:"line1"`      // addresses.line1
	Line2      string    `json:"line2,omitempty"` // addresses.line2 (optional)
	City       string    `json:"city"`       // addresses.city
	State      string    `json:"state,omitempty"` // addresses.state (optional)
	PostalCode string    `json:"postalCode"` // addresses.postal_code
	Country    string    `json:"country"`    // addresses.country
	IsDefault  bool      `json:"isDefault"`  // addresses.is_default
	CreatedAt  time.Time `json:"createdAt"`  // addresses.created_at
	UpdatedAt  time.Time `json:"updatedAt"`  // addresses.updated_at
}
