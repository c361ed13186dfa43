package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleccorey/reminder-api/internal/repository"
)

const testOwner = int64(80351110224678912)

func newReminderHandler(t *testing.T) (*ReminderHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewReminderHandler(
		repository.NewReminderRepo(db),
		repository.NewUserRepo(db),
		repository.NewTokenRepo(db),
	), mock
}

// formContext builds an authenticated echo context carrying a form
// submission, the way requests arrive after JWTAuth has run.
func formContext(t *testing.T, method, target string, form url.Values) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", testOwner)
	return c, rec
}

func validForm() url.Values {
	form := url.Values{}
	form.Set("timezone", "UTC")
	form.Set("start_date", "2030-01-15")
	form.Set("start_time", "09:30")
	form.Set("message", "take your medicine")
	form.Set("recipient", "80351110224678912")
	return form
}

func TestReminderCreate(t *testing.T) {
	t.Run("valid one-shot form returns 201", func(t *testing.T) {
		h, mock := newReminderHandler(t)
		mock.ExpectExec(`INSERT INTO reminders`).
			WithArgs(
				"take your medicine", testOwner, false, "UTC",
				time.Date(2030, 1, 15, 9, 30, 0, 0, time.UTC),
				"MINUTELY", 1, nil, nil,
				"", "", "", "", "", "", "", "", "", nil,
			).
			WillReturnResult(sqlmock.NewResult(42, 1))
		mock.ExpectExec(`UPDATE users SET preferred_timezone = \? WHERE id = \?`).
			WithArgs("UTC", testOwner).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c, rec := formContext(t, http.MethodPost, "/v1/reminders", validForm())
		require.NoError(t, h.Create(c))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Contains(t, rec.Body.String(), "42")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("recipient other than caller returns 403", func(t *testing.T) {
		h, mock := newReminderHandler(t)
		form := validForm()
		form.Set("recipient", "999")

		c, rec := formContext(t, http.MethodPost, "/v1/reminders", form)
		require.NoError(t, h.Create(c))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing fields reported together with 400", func(t *testing.T) {
		h, mock := newReminderHandler(t)
		form := validForm()
		form.Del("start_date")
		form.Del("message")

		c, rec := formContext(t, http.MethodPost, "/v1/reminders", form)
		require.NoError(t, h.Create(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "start_date")
		assert.Contains(t, rec.Body.String(), "message")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("malformed start time returns 400 with field name", func(t *testing.T) {
		h, mock := newReminderHandler(t)
		form := validForm()
		form.Set("start_time", "25:61")

		c, rec := formContext(t, http.MethodPost, "/v1/reminders", form)
		require.NoError(t, h.Create(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "start_time")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReminderGet(t *testing.T) {
	t.Run("reminder renders as prefilled form values", func(t *testing.T) {
		h, mock := newReminderHandler(t)
		rows := sqlmock.NewRows(reminderCols)
		oneShotRow(rows, 7, testOwner, time.Date(2030, 1, 15, 9, 30, 0, 0, time.UTC))
		mock.ExpectQuery(`SELECT .* FROM reminders WHERE id = \? AND recipient = \?`).
			WithArgs(int64(7), testOwner).
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).
			WithArgs(testOwner).
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(
				testOwner, "Nelly", "1337", "Nelly#1337", "", "en-US", false,
				0, 0, 3, false, "dm", "UTC",
				time.Now().UTC(), time.Now().UTC(), time.Now().UTC(),
			))

		c, rec := formContext(t, http.MethodGet, "/v1/reminders/7", nil)
		c.SetParamNames("id")
		c.SetParamValues("7")
		require.NoError(t, h.Get(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"start_date":"2030-01-15"`)
		assert.Contains(t, body, `"start_time":"09:30"`)
		assert.Contains(t, body, `"timezone":"UTC"`)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign reminder returns 403", func(t *testing.T) {
		h, mock := newReminderHandler(t)
		mock.ExpectQuery(`SELECT .* FROM reminders WHERE id = \? AND recipient = \?`).
			WithArgs(int64(7), testOwner).
			WillReturnError(sql.ErrNoRows)

		c, rec := formContext(t, http.MethodGet, "/v1/reminders/7", nil)
		c.SetParamNames("id")
		c.SetParamValues("7")
		require.NoError(t, h.Get(c))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReminderUpdate(t *testing.T) {
	t.Run("foreign or absent reminder returns 403", func(t *testing.T) {
		h, mock := newReminderHandler(t)
		mock.ExpectExec(`UPDATE reminders SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		c, rec := formContext(t, http.MethodPut, "/v1/reminders/7", validForm())
		c.SetParamNames("id")
		c.SetParamValues("7")
		require.NoError(t, h.Update(c))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-numeric id returns 400", func(t *testing.T) {
		h, _ := newReminderHandler(t)

		c, rec := formContext(t, http.MethodPut, "/v1/reminders/abc", validForm())
		c.SetParamNames("id")
		c.SetParamValues("abc")
		require.NoError(t, h.Update(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReminderDelete(t *testing.T) {
	t.Run("owned reminder returns 204", func(t *testing.T) {
		h, mock := newReminderHandler(t)
		mock.ExpectExec(`DELETE FROM reminders WHERE id = \? AND recipient = \?`).
			WithArgs(int64(7), testOwner).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c, rec := formContext(t, http.MethodDelete, "/v1/reminders/7", nil)
		c.SetParamNames("id")
		c.SetParamValues("7")
		require.NoError(t, h.Delete(c))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign reminder returns 403", func(t *testing.T) {
		h, mock := newReminderHandler(t)
		mock.ExpectExec(`DELETE FROM reminders WHERE id = \? AND recipient = \?`).
			WithArgs(int64(7), testOwner).
			WillReturnResult(sqlmock.NewResult(0, 0))

		c, rec := formContext(t, http.MethodDelete, "/v1/reminders/7", nil)
		c.SetParamNames("id")
		c.SetParamValues("7")
		require.NoError(t, h.Delete(c))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReminderForget(t *testing.T) {
	h, mock := newReminderHandler(t)
	mock.ExpectExec(`DELETE FROM reminders WHERE recipient = \?`).
		WithArgs(testOwner).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`UPDATE refresh_tokens SET revoked_at = NOW\(\)`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM users WHERE id = \?`).
		WithArgs(testOwner).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := formContext(t, http.MethodDelete, "/v1/me", nil)
	require.NoError(t, h.Forget(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}
