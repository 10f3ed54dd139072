package model

import "time"

// Role names stored in users.role.  New accounts always start as CUSTOMER;
// ADMIN is assigned out of band (there is no self-service promotion path).
const (
	RoleCustomer = "CUSTOMER"
	RoleAdmin    = "ADMIN"
)

// User mirrors the `users` table.  PasswordHash is only ever read by the
// login and change-password paths; everything facing the client goes through
// Profile instead so the hash cannot leak into a response by accident.
//
// Fields:
//  ID            – primary key identifier of the user.
//  Email         – unique, lower-cased email address.
//  PasswordHash  – bcrypt hash of the password.
//  FirstName     – given name.
//  LastName      – family name.
//  Phone         – optional phone number ("" when unset).
//  Role          – CUSTOMER or ADMIN.
//  IsActive      – soft-deactivation flag; inactive users cannot log in.
//  EmailVerified – whether the email address has been confirmed.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type User struct {
	ID            uint64    // users.id
	Email         string    // users.email
	PasswordHash  string    // users.password_hash
	FirstName     string    // users.first_name
	LastName      string    // users.last_name
	Phone         string    // users.phone (nullable, "" when unset)
	Role          string    // users.role
	IsActive      bool      // users.is_active
	EmailVerified bool      // users.email_verified
	CreatedAt     time.Time // users.created_at
	UpdatedAt     time.Time // users.updated_at
}

// Profile is the outward-facing projection of a user.  It carries everything
// a client may see and nothing it may not; there is deliberately no field
// for the password hash.
type Profile struct {
	ID            uint64    `json:"id"`
	Email         string    `json:"email"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Phone         string    `json:"phone,omitempty"`
	Role          string    `json:"role"`
	IsActive      bool      `json:"isActive"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Profile strips the credential material from a full user row.
func (u User) Profile() Profile {
	return Profile{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Phone:         u.Phone,
		Role:          u.Role,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
