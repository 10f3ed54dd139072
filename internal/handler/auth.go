package handler

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ecommerce-backend/internal/auth"
	"github.com/iliyamo/ecommerce-backend/internal/config"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/queue"
	"github.com/iliyamo/ecommerce-backend/internal/repository"
	"github.com/iliyamo/ecommerce-backend/internal/service"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg config.Config
	Svc *service.AuthService
}

func NewAuthHandler(cfg config.Config, svc *service.AuthService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Svc: svc}
}

// ----- DTOs -----

type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type updateProfileReq struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register handles POST /v1/auth/register: create a CUSTOMER account and
// return the sanitized user with a fresh token pair.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "invalid request body")
	}

	var reasons []string
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		reasons = append(reasons, "please provide a valid email address")
	}
	reasons = append(reasons, nameReasons("first name", req.FirstName)...)
	reasons = append(reasons, nameReasons("last name", req.LastName)...)
	if len(reasons) > 0 {
		return respondValidation(c, reasons)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	result, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.PhoneNumber,
	})
	if err != nil {
		var policyErr *auth.PasswordPolicyError
		switch {
		case errors.As(err, &policyErr):
			return respondValidation(c, policyErr.Reasons)
		case errors.Is(err, repository.ErrEmailExists):
			return respondErr(c, http.StatusConflict, "Registration Failed", "user with this email already exists")
		default:
			c.Logger().Errorf("register: %v", err)
			return respondErr(c, http.StatusInternalServerError, "Registration Failed", h.safeMsg(err))
		}
	}

	queue.Emit(queue.AuthEvent{
		Type: queue.EventRegister, UserID: result.User.ID, Email: result.User.Email, ClientIP: c.RealIP(),
	})
	return respondOK(c, http.StatusCreated, "user registered successfully", result)
}

// Login handles POST /v1/auth/login.  Unknown email and wrong password are
// indistinguishable (401); a deactivated account is not (403).
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "invalid request body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "email and password are required")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	result, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			return respondErr(c, http.StatusUnauthorized, "Login Failed", "invalid email or password")
		case errors.Is(err, auth.ErrAccountDeactivated):
			return respondErr(c, http.StatusForbidden, "Login Failed", "account is deactivated, please contact support")
		default:
			c.Logger().Errorf("login: %v", err)
			return respondErr(c, http.StatusInternalServerError, "Login Failed", h.safeMsg(err))
		}
	}

	queue.Emit(queue.AuthEvent{
		Type: queue.EventLogin, UserID: result.User.ID, Email: result.User.Email, ClientIP: c.RealIP(),
	})
	return respondOK(c, http.StatusOK, "login successful", result)
}

// Refresh handles POST /v1/auth/refresh: exchange a refresh token for a new
// access token without rotating the refresh token.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return respondErr(c, http.StatusBadRequest, "Bad Request", "refresh token is required")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	pair, err := h.Svc.RefreshAccessToken(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return respondErr(c, http.StatusUnauthorized, "Token Refresh Failed", "refresh token expired, please log in again")
		case errors.Is(err, auth.ErrInvalidRefreshToken),
			errors.Is(err, auth.ErrTokenSignature),
			errors.Is(err, auth.ErrTokenMalformed):
			return respondErr(c, http.StatusUnauthorized, "Token Refresh Failed", "invalid refresh token")
		case errors.Is(err, auth.ErrUserInactive):
			return respondErr(c, http.StatusUnauthorized, "Token Refresh Failed", "user not found or inactive")
		default:
			c.Logger().Errorf("refresh: %v", err)
			return respondErr(c, http.StatusInternalServerError, "Token Refresh Failed", h.safeMsg(err))
		}
	}
	return respondOK(c, http.StatusOK, "token refreshed successfully", pair)
}

// Logout handles POST /v1/auth/logout (protected).  Tokens are stateless and
// not revocable server-side, so logout is a client-side discard; the server
// records an audit entry.
func (h *AuthHandler) Logout(c echo.Context) error {
	user, _ := middleware.CurrentUser(c)
	queue.Emit(queue.AuthEvent{
		Type: queue.EventLogout, UserID: user.ID, Email: user.Email, ClientIP: c.RealIP(),
	})
	return respondOK(c, http.StatusOK, "logged out successfully", nil)
}

// GetProfile handles GET /v1/auth/profile (protected).
func (h *AuthHandler) GetProfile(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	profile, err := h.Svc.GetProfile(ctx, user.ID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return respondErr(c, http.StatusNotFound, "Profile Not Found", "user not found")
		}
		c.Logger().Errorf("get profile: user %d: %v", user.ID, err)
		return respondErr(c, http.StatusInternalServerError, "Profile Not Found", h.safeMsg(err))
	}
	return respondOK(c, http.StatusOK, "profile retrieved successfully", echo.Map{"user": profile})
}

// UpdateProfile handles PUT /v1/auth/profile (protected).  Only the fields
// present in the body are touched.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "invalid request body")
	}

	var reasons []string
	if req.FirstName != nil {
		reasons = append(reasons, nameReasons("first name", *req.FirstName)...)
	}
	if req.LastName != nil {
		reasons = append(reasons, nameReasons("last name", *req.LastName)...)
	}
	if len(reasons) > 0 {
		return respondValidation(c, reasons)
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	profile, err := h.Svc.UpdateProfile(ctx, user.ID, repository.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return respondErr(c, http.StatusNotFound, "Profile Update Failed", "user not found")
		}
		c.Logger().Errorf("update profile: user %d: %v", user.ID, err)
		return respondErr(c, http.StatusInternalServerError, "Profile Update Failed", h.safeMsg(err))
	}
	return respondOK(c, http.StatusOK, "profile updated successfully", echo.Map{"user": profile})
}

// ChangePassword handles POST /v1/auth/change-password (protected).
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "invalid request body")
	}
	if req.CurrentPassword == "" {
		return respondValidation(c, []string{"current password is required"})
	}
	if req.ConfirmPassword != "" && req.ConfirmPassword != req.NewPassword {
		return respondValidation(c, []string{"password confirmation does not match"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	err := h.Svc.ChangePassword(ctx, user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		var policyErr *auth.PasswordPolicyError
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			return respondErr(c, http.StatusNotFound, "Password Change Failed", "user not found")
		case errors.Is(err, auth.ErrAccountDeactivated):
			return respondErr(c, http.StatusForbidden, "Password Change Failed", "account is deactivated")
		case errors.Is(err, auth.ErrIncorrectPassword):
			return respondErr(c, http.StatusUnauthorized, "Password Change Failed", "current password is incorrect")
		case errors.As(err, &policyErr):
			return respondValidation(c, policyErr.Reasons)
		default:
			c.Logger().Errorf("change password: user %d: %v", user.ID, err)
			return respondErr(c, http.StatusInternalServerError, "Password Change Failed", h.safeMsg(err))
		}
	}
	return respondOK(c, http.StatusOK, "password changed successfully", nil)
}

// Status handles GET /v1/auth/status (protected): confirms the presented
// token still resolves to an active user.
func (h *AuthHandler) Status(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return respondErr(c, http.StatusUnauthorized, "Unauthorized", "authentication required")
	}
	return respondOK(c, http.StatusOK, "user is authenticated", echo.Map{
		"isAuthenticated": true,
		"user":            user,
	})
}

// UserStats handles GET /v1/auth/admin/stats (ADMIN only, gated by
// middleware).
func (h *AuthHandler) UserStats(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	stats, err := h.Svc.UserStats(ctx)
	if err != nil {
		c.Logger().Errorf("user stats: %v", err)
		return respondErr(c, http.StatusInternalServerError, "Stats Retrieval Failed", h.safeMsg(err))
	}
	return respondOK(c, http.StatusOK, "user statistics retrieved successfully", stats)
}

// SetUserActive handles PATCH /v1/auth/admin/users/:id/active (ADMIN only):
// soft-deactivate or reactivate an account.
func (h *AuthHandler) SetUserActive(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "invalid user id")
	}
	var req struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind(&req); err != nil || req.Active == nil {
		return respondErr(c, http.StatusBadRequest, "Validation Error", "active flag is required")
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Svc.SetUserActive(ctx, id, *req.Active); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return respondErr(c, http.StatusNotFound, "User Update Failed", "user not found")
		}
		c.Logger().Errorf("set user active: user %d: %v", id, err)
		return respondErr(c, http.StatusInternalServerError, "User Update Failed", h.safeMsg(err))
	}

	evType := queue.EventDeactivate
	msg := "user deactivated"
	if *req.Active {
		evType = queue.EventReactivate
		msg = "user reactivated"
	}
	queue.Emit(queue.AuthEvent{Type: evType, UserID: id, ClientIP: c.RealIP()})
	return respondOK(c, http.StatusOK, msg, nil)
}

// safeMsg decides how much internal error detail leaves the process: the
// full message in dev, a generic one in production.
func (h *AuthHandler) safeMsg(err error) string {
	if h.Cfg.IsProd() {
		return "an internal error occurred"
	}
	return err.Error()
}

// nameReasons validates a person-name field: 2-50 characters after
// trimming.
func nameReasons(field, value string) []string {
	v := strings.TrimSpace(value)
	if len(v) < 2 || len(v) > 50 {
		return []string{field + " must be between 2 and 50 characters"}
	}
	return nil
}

// reqContext bounds every persistence call made on behalf of one request.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
