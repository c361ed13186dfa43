// Package oauth implements the Discord OAuth2 code flow used for
// login.  The service never sees a password: Discord authenticates
// the user, and the callback trades the authorization code for a
// bearer token that is used once to read the user's identity.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultAPIBase = "https://discord.com/api"

// Identity is the subset of the Discord /users/@me response the
// service stores.  The id is a snowflake and arrives as a JSON
// string.
type Identity struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`
	Locale        string `json:"locale"`
	MFAEnabled    bool   `json:"mfa_enabled"`
	PublicFlags   int    `json:"public_flags"`
	Flags         int    `json:"flags"`
}

// UserID parses the snowflake id.
func (i *Identity) UserID() (int64, error) {
	return strconv.ParseInt(i.ID, 10, 64)
}

// Tag renders the classic name#discriminator handle.  Accounts
// migrated to unique usernames report discriminator "0" and are
// shown by username alone.
func (i *Identity) Tag() string {
	if i.Discriminator == "" || i.Discriminator == "0" {
		return i.Username
	}
	return i.Username + "#" + i.Discriminator
}

// Config carries the application credentials registered with
// Discord.  APIBase is overridable for tests and defaults to the
// public Discord API.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	APIBase      string
}

// Client performs the OAuth2 exchanges against the Discord API.
type Client struct {
	cfg        Config
	apiBase    string
	httpClient *http.Client
}

// NewClient returns a Client with a 30s request timeout.
func NewClient(cfg Config) *Client {
	base := cfg.APIBase
	if base == "" {
		base = defaultAPIBase
	}
	return &Client{
		cfg:     cfg,
		apiBase: strings.TrimRight(base, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// AuthURL builds the authorization URL the browser is redirected to.
// The state parameter is echoed back on the callback and must be
// verified there.
func (c *Client) AuthURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.cfg.ClientID)
	params.Set("redirect_uri", c.cfg.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(c.cfg.Scopes, " "))
	params.Set("state", state)
	return c.apiBase + "/oauth2/authorize?" + params.Encode()
}

// Exchange trades an authorization code for a Discord bearer token.
func (c *Client) Exchange(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("client_id", c.cfg.ClientID)
	data.Set("client_secret", c.cfg.ClientSecret)
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", c.cfg.RedirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.apiBase+"/oauth2/token", strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("discord token endpoint: %s: %s", resp.Status, string(body))
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
		Scope       string `json:"scope"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	return tokenResp.AccessToken, nil
}

// Identity fetches the authenticated user's profile with a bearer
// token obtained from Exchange.
func (c *Client) Identity(ctx context.Context, bearer string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.apiBase+"/users/@me", nil)
	if err != nil {
		return nil, fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearer)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("discord identity endpoint: %s: %s", resp.Status, string(body))
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	return &id, nil
}

// NewState returns a random URL-safe nonce for the state parameter.
func NewState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
