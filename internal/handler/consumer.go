package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aleccorey/reminder-api/internal/recurrence"
	"github.com/aleccorey/reminder-api/internal/repository"
)

// ConsumerHandler serves the delivery backend (the Discord bot).
// Routes are guarded by the service-key middleware, not user JWTs,
// and are the only place reminders cross account boundaries.
type ConsumerHandler struct {
	Reminders *repository.ReminderRepo
	Users     *repository.UserRepo
}

func NewConsumerHandler(r *repository.ReminderRepo, u *repository.UserRepo) *ConsumerHandler {
	return &ConsumerHandler{Reminders: r, Users: u}
}

type dueItem struct {
	ID         int64  `json:"id"`
	Message    string `json:"message"`
	Recipient  int64  `json:"recipient,string"`
	Preference string `json:"preference,omitempty"`
	Routine    bool   `json:"routine"`
	At         string `json:"at"`
}

// Due returns every unfinished reminder with an occurrence inside
// the window (after, before].  The bot calls this on its poll loop
// with after = previous poll time, so each occurrence fires once.
func (h *ConsumerHandler) Due(c echo.Context) error {
	before, err := time.Parse(time.RFC3339, c.QueryParam("before"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "before must be RFC3339"})
	}
	after := before.Add(-time.Minute)
	if raw := c.QueryParam("after"); raw != "" {
		after, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "after must be RFC3339"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	reminders, err := h.Reminders.ListUnfinished(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	prefs := map[int64]string{}
	items := make([]dueItem, 0)
	for _, rem := range reminders {
		next, ok := recurrence.NextAfter(rem, after)
		if !ok || next.After(before) {
			continue
		}
		pref, seen := prefs[rem.Recipient]
		if !seen {
			if u, err := h.Users.GetByID(ctx, rem.Recipient); err == nil {
				pref = u.MessagePreference
			}
			prefs[rem.Recipient] = pref
		}
		items = append(items, dueItem{
			ID:         rem.ID,
			Message:    rem.Message,
			Recipient:  rem.Recipient,
			Preference: pref,
			Routine:    rem.Routine(),
			At:         next.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"due": items})
}

// Finished marks a reminder as exhausted after its last delivery.
// One-shot reminders are finished after their single occurrence;
// routines when count or until runs out.
func (h *ConsumerHandler) Finished(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	affected, err := h.Reminders.MarkFinished(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if affected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found or already finished"})
	}
	return c.NoContent(http.StatusNoContent)
}
