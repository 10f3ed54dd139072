// Package service implements the business rules of the account subsystem on
// top of the persistence layer.  Dependencies are injected explicitly: the
// service holds a UserStore handle constructed once at startup, never a
// package-level singleton.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/ecommerce-backend/internal/auth"
	"github.com/iliyamo/ecommerce-backend/internal/model"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
)

// UserStore is the persistence contract the auth service consumes.
// *repository.UserRepo satisfies it; tests plug in an in-memory fake.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
	GetProfileByID(ctx context.Context, id uint64) (model.Profile, error)
	UpdateProfile(ctx context.Context, id uint64, upd repository.ProfileUpdate) (model.Profile, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	SetActive(ctx context.Context, id uint64, active bool) error
	Stats(ctx context.Context) (repository.UserStats, error)
}

// AuthService orchestrates registration, login, profile maintenance and
// token refresh.
type AuthService struct {
	users      UserStore
	secret     string
	accessTTL  time.Duration
	bcryptCost int
}

func NewAuthService(users UserStore, secret string, accessTTL time.Duration, bcryptCost int) *AuthService {
	if accessTTL <= 0 {
		accessTTL = auth.DefaultAccessTTL
	}
	if bcryptCost == 0 {
		bcryptCost = auth.DefaultBcryptCost
	}
	return &AuthService{users: users, secret: secret, accessTTL: accessTTL, bcryptCost: bcryptCost}
}

// RegisterInput is the payload of a registration request after transport
// binding.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// TokenPair is an access/refresh token set handed to the client.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn"` // access token lifetime in seconds
}

// AuthResult is the outcome of a successful register or login.
type AuthResult struct {
	User   model.Profile `json:"user"`
	Tokens TokenPair     `json:"tokens"`
}

// Register creates a new CUSTOMER account and issues a token pair.  The
// email pre-check and the unique-index violation both surface as
// repository.ErrEmailExists, so concurrent registrations racing at the
// constraint produce the same error as the fast path.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := auth.ValidatePassword(in.Password).Err(); err != nil {
		return nil, err
	}

	email := repository.NormalizeEmail(in.Email)
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, repository.ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := model.User{
		Email:         email,
		PasswordHash:  hash,
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		Phone:         strings.TrimSpace(in.Phone),
		Role:          model.RoleCustomer,
		IsActive:      true,
		EmailVerified: false,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		return nil, err
	}
	return s.authResult(u)
}

// Login verifies credentials and issues a fresh token pair.  An unknown
// email and a wrong password are indistinguishable to the caller; a
// deactivated account with correct credentials is not.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, repository.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(u.PasswordHash, password) {
		return nil, auth.ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, auth.ErrAccountDeactivated
	}
	return s.authResult(u)
}

// GetProfile returns the sanitized record for a user id.
func (s *AuthService) GetProfile(ctx context.Context, userID uint64) (model.Profile, error) {
	p, err := s.users.GetProfileByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Profile{}, auth.ErrUserNotFound
	}
	return p, err
}

// UpdateProfile applies a partial profile update; absent fields are left
// untouched.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, upd repository.ProfileUpdate) (model.Profile, error) {
	p, err := s.users.UpdateProfile(ctx, userID, upd)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Profile{}, auth.ErrUserNotFound
	}
	return p, err
}

// ChangePassword rotates a user's password after re-verifying the current
// one.  Failure precedence: unknown user, deactivated account, wrong current
// password, then policy violations on the new password.  Outstanding tokens
// stay valid until their natural expiry.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, current, next string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.ErrUserNotFound
		}
		return err
	}
	if !u.IsActive {
		return auth.ErrAccountDeactivated
	}
	if !auth.VerifyPassword(u.PasswordHash, current) {
		return auth.ErrIncorrectPassword
	}
	if err := auth.ValidatePassword(next).Err(); err != nil {
		return err
	}

	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return auth.ErrUserNotFound
		}
		return err
	}
	return nil
}

// RefreshAccessToken exchanges a valid refresh token for a new access token.
// The refresh token itself is not rotated.  Verification failures propagate
// as the token error kinds; a token without the refresh discriminator is
// ErrInvalidRefreshToken; a vanished or deactivated user is ErrUserInactive.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshRaw string) (*TokenPair, error) {
	claims, err := auth.VerifyToken(s.secret, refreshRaw)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefresh() {
		return nil, auth.ErrInvalidRefreshToken
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, auth.ErrUserInactive
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, auth.ErrUserInactive
	}

	access, err := auth.NewAccessToken(s.secret, u.ID, u.Email, u.Role, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, ExpiresIn: int64(s.accessTTL.Seconds())}, nil
}

// SetUserActive toggles the soft-deactivation flag (admin operation).
func (s *AuthService) SetUserActive(ctx context.Context, userID uint64, active bool) error {
	err := s.users.SetActive(ctx, userID, active)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.ErrUserNotFound
	}
	return err
}

// UserStats returns the admin reporting aggregate.  Role gating happens at
// the middleware layer, not here.
func (s *AuthService) UserStats(ctx context.Context) (repository.UserStats, error) {
	return s.users.Stats(ctx)
}

func (s *AuthService) authResult(u model.User) (*AuthResult, error) {
	access, err := auth.NewAccessToken(s.secret, u.ID, u.Email, u.Role, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.NewRefreshToken(s.secret, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User: u.Profile(),
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int64(s.accessTTL.Seconds()),
		},
	}, nil
}
