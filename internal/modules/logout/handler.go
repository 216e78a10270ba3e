// Package logout accepts out-of-band revocation assertions from the
// identity provider and applies them to the local session registry.
package logout

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ssorelay/core/internal/modules/notify"
	"github.com/ssorelay/core/internal/modules/session"
	"github.com/ssorelay/core/internal/pkg/response"
	"go.uber.org/zap"
)

type Handler struct {
	store  session.Store
	hub    *notify.Hub
	logger *zap.Logger
}

func NewHandler(store session.Store, hub *notify.Hub, logger *zap.Logger) *Handler {
	return &Handler{store: store, hub: hub, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/backchannel-logout", h.probe)
	rg.POST("/backchannel-logout", h.handle)
}

// GET /auth/backchannel-logout — reachability probe for IdP configuration.
func (h *Handler) probe(c *gin.Context) {
	response.OK(c, gin.H{
		"message":   "Backchannel logout endpoint is accessible",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// POST /auth/backchannel-logout
//
// The caller only needs confirmation of receipt: once the token decodes,
// "no matching session" still acknowledges success because the desired
// end-state (no active session for that subject) already holds.
func (h *Handler) handle(c *gin.Context) {
	token := extractLogoutToken(c)
	if token == "" {
		h.logger.Warn("backchannel logout without logout_token")
		response.BadRequest(c, "Missing logout_token")
		return
	}

	claims, err := DecodeUnverified(token)
	if errors.Is(err, ErrMalformedToken) {
		h.logger.Warn("backchannel logout with malformed token")
		response.BadRequest(c, "Invalid token format")
		return
	}
	if err != nil {
		h.logger.Error("backchannel logout token decode failed", zap.Error(err))
		response.InternalError(c, err)
		return
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		err := errors.New("logout token carries no sub claim")
		h.logger.Error("backchannel logout token unusable", zap.Error(err))
		response.InternalError(c, err)
		return
	}

	removed, err := h.store.Remove(c.Request.Context(), subject)
	if err != nil {
		h.logger.Error("backchannel logout registry fault",
			zap.String("identity", subject), zap.Error(err))
		response.InternalError(c, err)
		return
	}

	if removed {
		h.hub.Send(subject, notify.EventSessionInvalidated)
		h.logger.Info("session invalidated via backchannel logout",
			zap.String("identity", subject))
	} else {
		// The IdP and the local registry disagree; non-fatal.
		h.logger.Warn("backchannel logout for untracked session",
			zap.String("identity", subject))
	}

	c.String(http.StatusOK, "OK")
}

// extractLogoutToken reads the form field the protocol specifies, falling
// back to a JSON body for hand-rolled callers.
func extractLogoutToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.PostForm("logout_token")); token != "" {
		return token
	}
	var body struct {
		LogoutToken string `json:"logout_token"`
	}
	if err := c.ShouldBindJSON(&body); err == nil {
		return strings.TrimSpace(body.LogoutToken)
	}
	return ""
}
