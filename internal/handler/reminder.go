package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aleccorey/reminder-api/internal/recurrence"
	"github.com/aleccorey/reminder-api/internal/repository"
)

// ReminderHandler serves the reminder CRUD surface.  Every route is
// owner-scoped: the authenticated Discord id both filters queries
// and is checked against the recipient field of submitted forms.
type ReminderHandler struct {
	Reminders *repository.ReminderRepo
	Users     *repository.UserRepo
	Tokens    *repository.TokenRepo
}

func NewReminderHandler(r *repository.ReminderRepo, u *repository.UserRepo, t *repository.TokenRepo) *ReminderHandler {
	return &ReminderHandler{Reminders: r, Users: u, Tokens: t}
}

// reminderItem is the list representation.  Next is the first
// occurrence strictly after now, omitted when the schedule is
// exhausted or unparseable.
type reminderItem struct {
	ID       int64  `json:"id"`
	Message  string `json:"message"`
	Finished bool   `json:"finished"`
	Routine  bool   `json:"routine"`
	Next     string `json:"next,omitempty"`
}

// List returns the caller's reminders, soonest first.
func (h *ReminderHandler) List(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reminders, err := h.Reminders.ListForOwner(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	now := time.Now().UTC()
	items := make([]reminderItem, 0, len(reminders))
	for _, rem := range reminders {
		item := reminderItem{
			ID:       rem.ID,
			Message:  rem.Message,
			Finished: rem.Finished,
			Routine:  rem.Routine(),
		}
		if next, ok := recurrence.NextAfter(rem, now); ok {
			item.Next = next.Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return c.JSON(http.StatusOK, echo.Map{"reminders": items})
}

// Get returns one reminder rendered as form values in the caller's
// preferred timezone, ready to prefill the edit form.
func (h *ReminderHandler) Get(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rem, err := h.Reminders.Get(ctx, id, userID)
	if errors.Is(err, repository.ErrForbidden) {
		// Absent and foreign rows answer identically.
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	preferred := ""
	if u, err := h.Users.GetByID(ctx, userID); err == nil {
		preferred = u.PreferredTimezone
	}
	form := recurrence.FormValues(rem, preferred, time.Now().UTC())

	fields := make(map[string]string, len(form))
	for k, vs := range form {
		if len(vs) > 0 {
			fields[k] = vs[0]
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":       rem.ID,
		"finished": rem.Finished,
		"routine":  rem.Routine(),
		"fields":   fields,
		"hours":    form[recurrence.FieldHours],
		"days":     form[recurrence.FieldDays],
	})
}

// Create normalizes a submitted form into a canonical reminder and
// stores it.
func (h *ReminderHandler) Create(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	form, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid form"})
	}

	intent := recurrence.CreateIntent{Form: form, Caller: userID}
	rem, err := intent.Normalize(time.Now().UTC())
	if err != nil {
		return h.normalizeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Reminders.Create(ctx, rem); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	// Remember the zone the form was filled in; future edit forms
	// render in it.
	_ = h.Users.SetPreferredTimezone(ctx, userID, rem.Timezone)

	return c.JSON(http.StatusCreated, echo.Map{"id": rem.ID})
}

// Update renormalizes the submitted form and replaces the stored
// reminder in place.
func (h *ReminderHandler) Update(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	form, err := c.FormParams()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid form"})
	}

	intent := recurrence.EditIntent{Form: form, Caller: userID, ReminderID: id}
	rem, err := intent.Normalize(time.Now().UTC())
	if err != nil {
		return h.normalizeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	affected, err := h.Reminders.UpdateScoped(ctx, userID, rem)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if affected == 0 {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	_ = h.Users.SetPreferredTimezone(ctx, userID, rem.Timezone)

	return c.JSON(http.StatusOK, echo.Map{"id": rem.ID})
}

// Delete removes a single reminder.
func (h *ReminderHandler) Delete(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	affected, err := h.Reminders.DeleteScoped(ctx, id, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if affected == 0 {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Forget implements account deletion: reminders, sessions, then the
// user row, in that order, so a partial failure never leaves
// reminders without an owner.
func (h *ReminderHandler) Forget(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if _, err := h.Reminders.DeleteAllForOwner(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if err := h.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	if _, err := h.Users.Delete(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// normalizeError maps normalization failures onto HTTP statuses.
// Validation problems carry enough structure for the form to mark
// the offending fields.
func (h *ReminderHandler) normalizeError(c echo.Context, err error) error {
	var missing *recurrence.MissingFieldError
	if errors.As(err, &missing) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":  "missing required fields",
			"fields": missing.Fields,
		})
	}
	var invalid *recurrence.InvalidTimeError
	if errors.As(err, &invalid) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "invalid value",
			"field": invalid.Field,
			"value": invalid.Value,
		})
	}
	if errors.Is(err, recurrence.ErrPermission) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
