package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// ServiceKey returns a middleware guarding the delivery-backend
// endpoints.  The backend presents its shared key in the
// X-Service-Key header; only the bcrypt hash of the key is ever
// configured on the API side, so a leaked config cannot be replayed
// as a credential.
func ServiceKey(keyHash string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get("X-Service-Key")
			if key == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing service key"})
			}
			if bcrypt.CompareHashAndPassword([]byte(keyHash), []byte(key)) != nil {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid service key"})
			}
			return next(c)
		}
	}
}
