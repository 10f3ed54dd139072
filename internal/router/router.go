// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/ecommerce-backend/internal/config"
	"github.com/iliyamo/ecommerce-backend/internal/handler"
	"github.com/iliyamo/ecommerce-backend/internal/middleware"
	"github.com/iliyamo/ecommerce-backend/internal/model"
)

// RegisterRoutes registers routes that require no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the auth endpoints.  Credential operations under
// /v1/auth get the strict per-IP rate limiter; everything touching an
// existing session runs behind the Authenticate middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, users middleware.UserDirectory, cfg config.Config, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	// Unauthenticated credential endpoints, rate limited per client IP.
	g := e.Group("/v1/auth", middleware.AuthRateLimit(rlCfg, rdb))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	// Session-bound endpoints: bearer token resolved to an active user.
	authn := middleware.Authenticate(cfg.JWTSecret, users)
	s := e.Group("/v1/auth", authn)
	s.POST("/logout", a.Logout)
	s.GET("/status", a.Status)
	s.GET("/profile", a.GetProfile)
	s.PUT("/profile", a.UpdateProfile)
	s.POST("/change-password", a.ChangePassword)

	// Admin reporting and account administration.
	admin := e.Group("/v1/auth/admin", authn, middleware.RequireRole(model.RoleAdmin))
	admin.GET("/stats", a.UserStats)
	admin.PATCH("/users/:id/active", a.SetUserActive)
}

// RegisterAccount registers the address book and settings endpoints.  All of
// them require an authenticated, active user; address writes additionally
// require a verified email so orders cannot ship to addresses of
// unconfirmed accounts.
func RegisterAccount(e *echo.Echo, h *handler.AccountHandler, users middleware.UserDirectory, cfg config.Config) {
	authn := middleware.Authenticate(cfg.JWTSecret, users)
	verified := middleware.RequireVerifiedEmail()

	g := e.Group("/v1/account", authn)
	g.GET("/addresses", h.ListAddresses)
	g.POST("/addresses", h.CreateAddress, verified)
	g.PATCH("/addresses/:id", h.UpdateAddress, verified)
	g.DELETE("/addresses/:id", h.DeleteAddress, verified)
	g.POST("/addresses/:id/default", h.SetDefaultAddress, verified)
	g.GET("/settings", h.GetSettings)
	g.PATCH("/settings", h.UpdateSettings)
}
