package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestServiceKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("backend-key"), bcrypt.MinCost)
	require.NoError(t, err)

	wrapped := ServiceKey(string(hash))(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	run := func(key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/consumer/due", nil)
		if key != "" {
			req.Header.Set("X-Service-Key", key)
		}
		rec := httptest.NewRecorder()
		require.NoError(t, wrapped(echo.New().NewContext(req, rec)))
		return rec
	}

	t.Run("correct key passes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, run("backend-key").Code)
	})
	t.Run("wrong key is forbidden", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, run("guessed-key").Code)
	})
	t.Run("missing key is unauthorized", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, run("").Code)
	})
}
