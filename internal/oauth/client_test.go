package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(apiBase string) *Client {
	return NewClient(Config{
		ClientID:     "157730590492196864",
		ClientSecret: "s3cret",
		RedirectURI:  "https://example.invalid/v1/auth/callback",
		Scopes:       []string{"identify"},
		APIBase:      apiBase,
	})
}

func TestAuthURL(t *testing.T) {
	c := testClient("")

	raw := c.AuthURL("nonce-123")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "discord.com", u.Host)
	assert.Equal(t, "/api/oauth2/authorize", u.Path)
	q := u.Query()
	assert.Equal(t, "157730590492196864", q.Get("client_id"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "identify", q.Get("scope"))
	assert.Equal(t, "nonce-123", q.Get("state"))
	assert.Equal(t, "https://example.invalid/v1/auth/callback", q.Get("redirect_uri"))
}

func TestExchange(t *testing.T) {
	t.Run("successful exchange posts form and returns token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "/oauth2/token", r.URL.Path)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
			assert.Equal(t, "the-code", r.PostForm.Get("code"))
			assert.Equal(t, "s3cret", r.PostForm.Get("client_secret"))

			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "bearer-token",
				"token_type":   "Bearer",
				"expires_in":   604800,
				"scope":        "identify",
			})
		}))
		defer srv.Close()

		token, err := testClient(srv.URL).Exchange(context.Background(), "the-code")
		require.NoError(t, err)
		assert.Equal(t, "bearer-token", token)
	})

	t.Run("non-200 surfaces status and body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
		}))
		defer srv.Close()

		_, err := testClient(srv.URL).Exchange(context.Background(), "stale-code")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid_grant")
	})
}

func TestIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/@me", r.URL.Path)
		require.Equal(t, "Bearer bearer-token", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]any{
			"id":            "80351110224678912",
			"username":      "Nelly",
			"discriminator": "1337",
			"avatar":        "8342729096ea3675442027381ff50dfe",
			"locale":        "en-US",
			"mfa_enabled":   true,
		})
	}))
	defer srv.Close()

	id, err := testClient(srv.URL).Identity(context.Background(), "bearer-token")
	require.NoError(t, err)

	uid, err := id.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(80351110224678912), uid)
	assert.Equal(t, "Nelly#1337", id.Tag())
	assert.True(t, id.MFAEnabled)
}

func TestTagPomeloAccounts(t *testing.T) {
	id := Identity{Username: "nelly", Discriminator: "0"}
	assert.Equal(t, "nelly", id.Tag())
}

func TestNewState(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 32)
}
