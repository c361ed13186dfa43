package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aleccorey/reminder-api/internal/repository"
)

// RequireSetupComplete returns a middleware that blocks reminder
// routes until the user has finished onboarding (joined the Discord
// server, chosen a delivery preference, and received a test
// message).  It assumes JWTAuth already placed the user id in the
// context.  Users mid-setup get a 403 carrying their current step so
// the frontend can resume the wizard at the right screen.
func RequireSetupComplete(users *repository.UserRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, ok := c.Get("user_id").(int64)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()

			u, err := users.GetByID(ctx, userID)
			if err == sql.ErrNoRows {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
			}
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}
			if u.InSetup {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error":       "setup incomplete",
					"setup_flags": u.SetupFlags,
				})
			}
			return next(c)
		}
	}
}
