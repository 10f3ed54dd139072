package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireVerifiedEmail rejects authenticated users who have not confirmed
// their email address yet.  Like RequireRole it assumes Authenticate already
// ran.
func RequireVerifiedEmail() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return unauthorized(c, "authentication required")
			}
			if !user.EmailVerified {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false,
					"error":   "Email Verification Required",
					"message": "please verify your email address to access this resource",
				})
			}
			return next(c)
		}
	}
}
