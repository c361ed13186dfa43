package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleccorey/reminder-api/internal/auth"
)

func TestJWTAuth(t *testing.T) {
	const secret = "test-secret"

	wrapped := JWTAuth(secret)(func(c echo.Context) error {
		uid := c.Get("user_id").(int64)
		return c.String(http.StatusOK, strconv.FormatInt(uid, 10))
	})

	run := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/reminders", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		require.NoError(t, wrapped(echo.New().NewContext(req, rec)))
		return rec
	}

	t.Run("valid token injects snowflake as int64", func(t *testing.T) {
		tok, err := auth.NewAccessToken(secret, 80351110224678912, 15)
		require.NoError(t, err)

		rec := run("Bearer " + tok.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "80351110224678912", rec.Body.String())
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		tok, err := auth.NewAccessToken("other-secret", 1, 15)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, run("Bearer "+tok.Token).Code)
	})

	t.Run("missing header is rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, run("").Code)
	})
}
