package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aleccorey/reminder-api/internal/model"
	"github.com/aleccorey/reminder-api/internal/queue"
	"github.com/aleccorey/reminder-api/internal/repository"
	queue_publisher "github.com/aleccorey/reminder-api/internal/service"
)

// SetupHandler drives the onboarding wizard.  Steps must happen in
// order: join the Discord server, pick a delivery preference, then
// receive a test message.  Each step is a compare-and-set on the
// user record, so refreshing or replaying a step cannot skip ahead.
type SetupHandler struct {
	Users     *repository.UserRepo
	Publisher *queue_publisher.Publisher
}

func NewSetupHandler(u *repository.UserRepo, p *queue_publisher.Publisher) *SetupHandler {
	return &SetupHandler{Users: u, Publisher: p}
}

type preferenceReq struct {
	Preference string `json:"preference"`
}

// Status reports where the caller is in the wizard so the frontend
// can resume at the right screen.
func (h *SetupHandler) Status(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"setup_flags":        u.SetupFlags,
		"in_setup":           u.InSetup,
		"message_preference": u.MessagePreference,
	})
}

// Joined acknowledges that the user joined the Discord server.
func (h *SetupHandler) Joined(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.AdvanceSetup(ctx, userID, model.SetupNew, model.SetupJoined); err != nil {
		return h.setupError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"setup_flags": model.SetupJoined})
}

// Preference records how reminders should be delivered ("dm" or
// "channel").  Choosing channel delivery asks the bot to provision a
// private channel for the user.
func (h *SetupHandler) Preference(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	var req preferenceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	pref := strings.ToLower(strings.TrimSpace(req.Preference))
	if pref != "dm" && pref != "channel" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "preference must be dm or channel"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.AdvanceSetup(ctx, userID, model.SetupJoined, model.SetupPreference); err != nil {
		return h.setupError(c, err)
	}
	if err := h.Users.SetMessagePreference(ctx, userID, pref); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save preference failed"})
	}

	if pref == "channel" {
		u, err := h.Users.GetByID(ctx, userID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
		}
		// Best effort: the wizard can retry the test step if the
		// bot never saw this event.
		_ = h.Publisher.PublishChannelRequest(ctx, queue.ChannelProvisionRequested{
			UserID:      userID,
			Tag:         u.Tag,
			RequestedAt: time.Now().UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"setup_flags": model.SetupPreference, "message_preference": pref})
}

// Test asks the bot to send a test delivery and completes setup.
func (h *SetupHandler) Test(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	if err := h.Users.AdvanceSetup(ctx, userID, model.SetupPreference, model.SetupTested); err != nil {
		return h.setupError(c, err)
	}
	_ = h.Publisher.PublishTestRequest(ctx, queue.SetupTestRequested{
		UserID:      userID,
		Tag:         u.Tag,
		Preference:  u.MessagePreference,
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.JSON(http.StatusOK, echo.Map{"setup_flags": model.SetupTested, "in_setup": false})
}

func (h *SetupHandler) setupError(c echo.Context, err error) error {
	if err == repository.ErrSetupState {
		return c.JSON(http.StatusConflict, echo.Map{"error": "setup step out of order"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
