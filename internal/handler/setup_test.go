package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleccorey/reminder-api/internal/model"
	"github.com/aleccorey/reminder-api/internal/repository"
)

func newSetupHandler(t *testing.T) (*SetupHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	// nil publisher drops events, which is exactly what tests want
	return NewSetupHandler(repository.NewUserRepo(db), nil), mock
}

func setupContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set("user_id", testOwner)
	return c, rec
}

func userRowAt(setupFlags int, inSetup bool, pref string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(userCols).AddRow(
		testOwner, "Nelly", "1337", "Nelly#1337", "", "en-US", false,
		0, 0, setupFlags, inSetup, pref, "",
		now, now, now,
	)
}

func TestSetupStatus(t *testing.T) {
	h, mock := newSetupHandler(t)
	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).
		WithArgs(testOwner).
		WillReturnRows(userRowAt(model.SetupJoined, true, ""))

	c, rec := setupContext(t, http.MethodGet, "/v1/setup", "")
	require.NoError(t, h.Status(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"setup_flags":1`)
	assert.Contains(t, rec.Body.String(), `"in_setup":true`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetupJoined(t *testing.T) {
	t.Run("first step succeeds", func(t *testing.T) {
		h, mock := newSetupHandler(t)
		mock.ExpectExec(`UPDATE users SET setup_flags = \?, in_setup = \?`).
			WithArgs(model.SetupJoined, true, testOwner, model.SetupNew).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c, rec := setupContext(t, http.MethodPost, "/v1/setup/joined", "")
		require.NoError(t, h.Joined(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("replay returns 409", func(t *testing.T) {
		h, mock := newSetupHandler(t)
		mock.ExpectExec(`UPDATE users SET setup_flags = \?, in_setup = \?`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		c, rec := setupContext(t, http.MethodPost, "/v1/setup/joined", "")
		require.NoError(t, h.Joined(c))

		assert.Equal(t, http.StatusConflict, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSetupPreference(t *testing.T) {
	t.Run("dm preference advances and records", func(t *testing.T) {
		h, mock := newSetupHandler(t)
		mock.ExpectExec(`UPDATE users SET setup_flags = \?, in_setup = \?`).
			WithArgs(model.SetupPreference, true, testOwner, model.SetupJoined).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE users SET message_preference = \?`).
			WithArgs("dm", testOwner).
			WillReturnResult(sqlmock.NewResult(0, 1))

		c, rec := setupContext(t, http.MethodPost, "/v1/setup/preference", `{"preference":"DM"}`)
		require.NoError(t, h.Preference(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"message_preference":"dm"`)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("channel preference loads user for the provision event", func(t *testing.T) {
		h, mock := newSetupHandler(t)
		mock.ExpectExec(`UPDATE users SET setup_flags = \?, in_setup = \?`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE users SET message_preference = \?`).
			WithArgs("channel", testOwner).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).
			WithArgs(testOwner).
			WillReturnRows(userRowAt(model.SetupPreference, true, "channel"))

		c, rec := setupContext(t, http.MethodPost, "/v1/setup/preference", `{"preference":"channel"}`)
		require.NoError(t, h.Preference(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown preference returns 400", func(t *testing.T) {
		h, mock := newSetupHandler(t)

		c, rec := setupContext(t, http.MethodPost, "/v1/setup/preference", `{"preference":"carrier-pigeon"}`)
		require.NoError(t, h.Preference(c))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSetupTest(t *testing.T) {
	h, mock := newSetupHandler(t)
	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \?`).
		WithArgs(testOwner).
		WillReturnRows(userRowAt(model.SetupPreference, true, "dm"))
	mock.ExpectExec(`UPDATE users SET setup_flags = \?, in_setup = \?`).
		WithArgs(model.SetupTested, false, testOwner, model.SetupPreference).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := setupContext(t, http.MethodPost, "/v1/setup/test", "")
	require.NoError(t, h.Test(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"in_setup":false`)
	require.NoError(t, mock.ExpectationsWereMet())
}
