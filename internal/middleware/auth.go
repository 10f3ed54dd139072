// Package middleware provides the request gates applied before business
// handlers: bearer-token authentication, role and email-verification checks
// and rate limiting for the auth endpoints.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/auth"
	"github.com/iliyamo/ecommerce-backend/internal/model"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
)

// Context keys under which the resolved identity is stored.
const (
	ContextUserKey  = "auth_user"
	ContextTokenKey = "auth_token"
)

// UserDirectory resolves the safe projection of a user for the request
// context.  *repository.UserRepo satisfies it.
type UserDirectory interface {
	GetProfileByID(ctx context.Context, id uint64) (model.Profile, error)
}

// CurrentUser returns the authenticated user attached to the request, if
// any.
func CurrentUser(c echo.Context) (model.Profile, bool) {
	u, ok := c.Get(ContextUserKey).(model.Profile)
	return u, ok
}

// Authenticate returns the middleware protecting identity-bound routes.  It
// extracts and verifies the bearer token, resolves the user from the
// directory (safe fields only), rejects deactivated accounts, and attaches
// user and raw token to the request context.  Every failure exits with 401
// and a message specific to what went wrong.
func Authenticate(secret string, users UserDirectory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, raw, errMsg := resolveUser(c, secret, users)
			if errMsg != "" {
				return unauthorized(c, errMsg)
			}
			c.Set(ContextUserKey, user)
			c.Set(ContextTokenKey, raw)
			return next(c)
		}
	}
}

// OptionalAuth is the tolerant variant: any failure leaves the request
// anonymous instead of rejecting it, so downstream logic can branch on
// whether CurrentUser resolves.
func OptionalAuth(secret string, users UserDirectory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user, raw, errMsg := resolveUser(c, secret, users); errMsg == "" {
				c.Set(ContextUserKey, user)
				c.Set(ContextTokenKey, raw)
			}
			return next(c)
		}
	}
}

// resolveUser runs steps 1-4 of the authentication sequence and returns
// either a resolved user plus raw token or the 401 message describing the
// first failed step.
func resolveUser(c echo.Context, secret string, users UserDirectory) (model.Profile, string, string) {
	raw, err := auth.ExtractBearer(c.Request().Header.Get("Authorization"))
	if err != nil {
		return model.Profile{}, "", err.Error()
	}

	claims, err := auth.VerifyToken(secret, raw)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return model.Profile{}, "", "token expired, please log in again"
		case errors.Is(err, auth.ErrTokenSignature):
			return model.Profile{}, "", "invalid access token"
		default:
			return model.Profile{}, "", "malformed access token"
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	user, err := users.GetProfileByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Profile{}, "", "user not found"
		}
		c.Logger().Errorf("auth: load user %d failed: %v", claims.UserID, err)
		return model.Profile{}, "", "unable to verify user"
	}
	if !user.IsActive {
		return model.Profile{}, "", "account is deactivated"
	}
	return user, raw, ""
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{
		"success": false,
		"error":   "Unauthorized",
		"message": msg,
	})
}
