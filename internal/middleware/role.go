package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireRole enforces that the authenticated user's role is one of the
// allowed set.  It must run after Authenticate: a request with no resolved
// user gets 401, a resolved user with the wrong role gets 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return unauthorized(c, "authentication required")
			}
			if !allowed[user.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false,
					"error":   "Forbidden",
					"message": "access denied, required role: " + strings.Join(roles, " or "),
				})
			}
			return next(c)
		}
	}
}
