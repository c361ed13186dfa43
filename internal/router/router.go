package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/aleccorey/reminder-api/internal/handler"
	"github.com/aleccorey/reminder-api/internal/middleware"
	"github.com/aleccorey/reminder-api/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check, used by load balancers to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the Discord login flow and session endpoints.
// The browser-facing OAuth legs under /v1/auth carry no JWT; the
// session endpoints under /v1 require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	// GET because both are browser navigations: /login redirects to
	// Discord's consent screen, /callback is where Discord returns.
	g.GET("/login", a.Login)
	g.GET("/callback", a.Callback)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/auth/logout", a.Logout)
	auth.GET("/me", a.Me)
}

// RegisterReminders wires the reminder CRUD surface.  Everything
// here requires a valid JWT and a completed onboarding, except the
// forget-me endpoint which mid-setup users may also call.
func RegisterReminders(e *echo.Echo, r *handler.ReminderHandler, users *repository.UserRepo, jwtSecret string) {
	g := e.Group(
		"/v1/reminders",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireSetupComplete(users),
	)
	g.GET("", r.List)
	g.POST("", r.Create)
	g.GET("/:id", r.Get)
	g.PUT("/:id", r.Update)
	g.DELETE("/:id", r.Delete)

	e.DELETE("/v1/me", r.Forget, middleware.JWTAuth(jwtSecret))
}

// RegisterSetup wires the onboarding wizard steps.
func RegisterSetup(e *echo.Echo, s *handler.SetupHandler, jwtSecret string) {
	g := e.Group("/v1/setup", middleware.JWTAuth(jwtSecret))
	g.GET("", s.Status)
	g.POST("/joined", s.Joined)
	g.POST("/preference", s.Preference)
	g.POST("/test", s.Test)
}

// RegisterConsumer wires the delivery-backend API.  These routes are
// authenticated by the shared service key, never by user JWTs.
func RegisterConsumer(e *echo.Echo, ch *handler.ConsumerHandler, serviceKeyHash string) {
	g := e.Group("/v1/consumer", middleware.ServiceKey(serviceKeyHash))
	g.GET("/due", ch.Due)
	g.POST("/reminders/:id/finished", ch.Finished)
}
