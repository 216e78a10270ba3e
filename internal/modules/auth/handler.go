// Package auth hosts the interactive login flow that establishes an
// identity via the external provider. Session state handling lives in the
// session, notify and logout modules; this package only asserts identity.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ssorelay/core/internal/config"
	"github.com/ssorelay/core/internal/middleware"
	"github.com/ssorelay/core/internal/models"
	"github.com/ssorelay/core/internal/modules/notify"
	"github.com/ssorelay/core/internal/modules/session"
	jwtpkg "github.com/ssorelay/core/internal/pkg/jwt"
	"github.com/ssorelay/core/internal/pkg/response"
	"go.uber.org/zap"
)

const (
	stateCookie    = "relay-oauth-state"
	stateMaxAge    = 10 * 60
	assertionTTL   = 24 * time.Hour
	tokenCookieTTL = 24 * 60 * 60
)

type Handler struct {
	cfg        *config.AppConfig
	negotiator *Negotiator
	store      session.Store
	hub        *notify.Hub
	logger     *zap.Logger
}

// NewHandler wires the login flow. negotiator may be nil when no issuer
// is configured; only the local logout route is registered then.
func NewHandler(cfg *config.AppConfig, negotiator *Negotiator, store session.Store, hub *notify.Hub, logger *zap.Logger) *Handler {
	return &Handler{cfg: cfg, negotiator: negotiator, store: store, hub: hub, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/logout", middleware.OptionalAuth(), h.logout)
	if h.negotiator != nil {
		rg.GET("/login", h.login)
		rg.GET("/callback", h.callback)
	}
}

// GET /auth/login
func (h *Handler) login(c *gin.Context) {
	state, err := generateState()
	if err != nil {
		response.InternalError(c, err)
		return
	}

	secure := c.Request.TLS != nil
	c.SetCookie(stateCookie, state, stateMaxAge, "/", "", secure, true)
	c.Redirect(http.StatusFound, h.negotiator.AuthCodeURL(state))
}

// GET /auth/callback?code=...&state=...
func (h *Handler) callback(c *gin.Context) {
	storedState, err := c.Cookie(stateCookie)
	if err != nil || storedState == "" || storedState != c.Query("state") {
		response.BadRequest(c, "Invalid state")
		return
	}
	clearCookie(c, stateCookie)

	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "Missing code")
		return
	}

	ctx := c.Request.Context()
	token, err := h.negotiator.Exchange(ctx, code)
	if err != nil {
		h.logger.Error("token exchange failed", zap.Error(err))
		response.InternalError(c, err)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		response.InternalError(c, errors.New("provider response carries no id_token"))
		return
	}

	claims, err := h.negotiator.VerifyIDToken(ctx, rawIDToken)
	if err != nil {
		h.logger.Error("id token verification failed", zap.Error(err))
		response.InternalError(c, err)
		return
	}

	profile := ExtractProfile(claims)
	if profile.Subject == "" {
		response.InternalError(c, errors.New("id token carries no sub claim"))
		return
	}

	// A repeat login replaces the prior record; the session token is
	// regenerated every time.
	rec := &models.SessionRecord{
		Identity:      profile.Subject,
		SessionToken:  uuid.New().String(),
		EstablishedAt: time.Now(),
		Profile:       profile,
	}
	if err := h.store.Put(ctx, rec); err != nil {
		h.logger.Error("session record put failed", zap.String("identity", rec.Identity), zap.Error(err))
		response.InternalError(c, err)
		return
	}

	assertion, err := jwtpkg.Sign(rec.Identity, rec.SessionToken, assertionTTL)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	setAuthTokenCookie(c, assertion)

	h.logger.Info("user logged in", zap.String("identity", rec.Identity))
	c.Redirect(http.StatusFound, h.frontendURL())
}

// GET /auth/logout — explicit local logout.
func (h *Handler) logout(c *gin.Context) {
	if identity := middleware.CurrentUserID(c); identity != "" {
		if _, err := h.store.Remove(c.Request.Context(), identity); err != nil {
			h.logger.Warn("logout session removal failed", zap.String("identity", identity), zap.Error(err))
		}
		h.hub.Close(identity)
		h.logger.Info("user logged out", zap.String("identity", identity))
	}

	clearCookie(c, middleware.TokenCookie)

	logoutURL := h.frontendURL()
	if h.negotiator != nil {
		logoutURL = h.negotiator.LogoutURL(h.frontendURL())
	}
	response.OK(c, gin.H{"logoutUrl": logoutURL})
}

func (h *Handler) frontendURL() string {
	if h.cfg.FrontendURL != "" {
		return h.cfg.FrontendURL
	}
	return "/"
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func setAuthTokenCookie(c *gin.Context, token string) {
	secure := c.Request.TLS != nil
	c.SetCookie(middleware.TokenCookie, token, tokenCookieTTL, "/", "", secure, true)
}

func clearCookie(c *gin.Context, name string) {
	secure := c.Request.TLS != nil
	c.SetCookie(name, "", -1, "/", "", secure, true)
}
