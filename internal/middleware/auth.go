package middleware

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
)

// AdminAPIKeyAuth validates the X-API-Key header against ADMIN_API_KEY.
// Used for ADMIN API endpoints. Returns 401 if authentication fails.
func AdminAPIKeyAuth() echo.MiddlewareFunc {
	adminKey := os.Getenv("ADMIN_API_KEY")

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if adminKey == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "ADMIN_API_KEY environment variable not configured")
			}

			key := c.Request().Header.Get("X-API-Key")
			if key == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing admin API key")
			}

			if !constantEqual(adminKey, key) {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid admin API key")
			}

			return next(c)
		}
	}
}

// constantEqual provides constant-time string equality to avoid timing attacks.
func constantEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
