package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/aleccorey/reminder-api/internal/auth"
	"github.com/aleccorey/reminder-api/internal/config"
	"github.com/aleccorey/reminder-api/internal/model"
	"github.com/aleccorey/reminder-api/internal/oauth"
	"github.com/aleccorey/reminder-api/internal/repository"
)

// stateTTL bounds how long a login attempt may sit between the
// redirect to Discord and the callback.
const stateTTL = 10 * time.Minute

const stateCookie = "oauth_state"

// AuthHandler bundles dependencies for the Discord login flow and
// session endpoints.
type AuthHandler struct {
	Cfg     config.Config
	Discord *oauth.Client
	Users   *repository.UserRepo
	Tokens  *repository.TokenRepo
	Redis   *redis.Client
}

func NewAuthHandler(cfg config.Config, d *oauth.Client, u *repository.UserRepo, t *repository.TokenRepo, rdb *redis.Client) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Discord: d, Users: u, Tokens: t, Redis: rdb}
}

// ----- DTOs -----

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID                int64  `json:"id,string"`
	Tag               string `json:"tag"`
	Avatar            string `json:"avatar,omitempty"`
	SetupFlags        int    `json:"setup_flags"`
	InSetup           bool   `json:"in_setup"`
	MessagePreference string `json:"message_preference,omitempty"`
	PreferredTimezone string `json:"preferred_timezone,omitempty"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u *model.User) userPart {
	return userPart{
		ID:                u.ID,
		Tag:               u.Tag,
		Avatar:            u.Avatar,
		SetupFlags:        u.SetupFlags,
		InSetup:           u.InSetup,
		MessagePreference: u.MessagePreference,
		PreferredTimezone: u.PreferredTimezone,
	}
}

// Login starts the OAuth flow: mint a state nonce, remember it, and
// redirect the browser to Discord's consent screen.
func (h *AuthHandler) Login(c echo.Context) error {
	state, err := oauth.NewState()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue state failed"})
	}
	if err := h.storeState(c, state); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store state failed"})
	}
	return c.Redirect(http.StatusFound, h.Discord.AuthURL(state))
}

// Callback completes the OAuth flow.  It verifies the state nonce,
// trades the code for a bearer token, reads the Discord identity,
// upserts the user record, and issues the session token pair.
func (h *AuthHandler) Callback(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" || state == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code and state required"})
	}
	if !h.consumeState(c, state) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "state mismatch"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	bearer, err := h.Discord.Exchange(ctx, code)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "code exchange failed"})
	}
	id, err := h.Discord.Identity(ctx, bearer)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "identity fetch failed"})
	}
	uid, err := id.UserID()
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "malformed identity"})
	}

	u, err := h.Users.Upsert(ctx, &model.User{
		ID:            uid,
		Username:      id.Username,
		Discriminator: id.Discriminator,
		Tag:           id.Tag(),
		Avatar:        id.Avatar,
		Locale:        id.Locale,
		MFAEnabled:    id.MFAEnabled,
		PublicFlags:   id.PublicFlags,
		Flags:         id.Flags,
	}, h.Cfg.Registration)
	if err != nil {
		if err == repository.ErrRegistrationClosed {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "registration is closed"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save user failed"})
	}

	return h.issueSession(ctx, c, u, http.StatusOK)
}

// Refresh validates a refresh token by hash, revokes it, and issues
// a fresh pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	hash := auth.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return h.issueSession(ctx, c, u, http.StatusOK)
}

// Logout revokes every refresh token of the authenticated user.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.RevokeAllForUser(ctx, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile and onboarding state.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := c.Get("user_id").(int64)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toUserPart(u)})
}

func (h *AuthHandler) issueSession(ctx context.Context, c echo.Context, u *model.User, status int) error {
	access, err := auth.NewAccessToken(h.Cfg.JWTSecret, u.ID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := auth.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, auth.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}
	return c.JSON(status, authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// storeState remembers the nonce for the callback.  With Redis the
// nonce is single-use across replicas; without it a short-lived
// HttpOnly cookie binds the attempt to this browser.
func (h *AuthHandler) storeState(c echo.Context, state string) error {
	if h.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		return h.Redis.SetEx(ctx, "oauth:state:"+state, "1", stateTTL).Err()
	}
	c.SetCookie(&http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (h *AuthHandler) consumeState(c echo.Context, state string) bool {
	if h.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		n, err := h.Redis.Del(ctx, "oauth:state:"+state).Result()
		return err == nil && n == 1
	}
	ck, err := c.Cookie(stateCookie)
	if err != nil || ck.Value != state {
		return false
	}
	c.SetCookie(&http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	return true
}
