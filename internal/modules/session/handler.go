package session

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ssorelay/core/internal/middleware"
	"github.com/ssorelay/core/internal/pkg/response"
	"go.uber.org/zap"
)

// Handler serves the session read endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/user", middleware.Auth(), h.currentUser)
	rg.GET("/sessions", h.listSessions)
	rg.GET("/session-status", middleware.OptionalAuth(), h.sessionStatus)
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GET /api/user
func (h *Handler) currentUser(c *gin.Context) {
	identity := middleware.CurrentUserID(c)

	rec, err := h.store.Get(c.Request.Context(), identity)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if rec == nil {
		response.Unauthorized(c)
		return
	}

	c.JSON(200, gin.H{"user": userResponse{
		ID:    rec.Identity,
		Name:  rec.Profile.PresentedName(),
		Email: rec.Profile.PresentedEmail(),
	}})
}

type sessionListItem struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
	LoginTime string `json:"loginTime"`
	UserName  string `json:"userName"`
}

// GET /api/sessions — administrative read endpoint, unauthenticated in the
// reference behavior.
func (h *Handler) listSessions(c *gin.Context) {
	records, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}

	items := make([]sessionListItem, len(records))
	for i, rec := range records {
		items[i] = sessionListItem{
			UserID:    rec.Identity,
			SessionID: rec.SessionToken,
			LoginTime: rec.EstablishedAt.Format(time.RFC3339),
			UserName:  rec.Profile.PresentedName(),
		}
	}
	c.JSON(200, gin.H{"sessions": items})
}

type sessionStatusResponse struct {
	Authenticated bool   `json:"authenticated"`
	SessionActive bool   `json:"sessionActive"`
	UserID        string `json:"userId,omitempty"`
}

// GET /api/session-status — degrades gracefully: never fails, store
// trouble reads as an inactive session.
func (h *Handler) sessionStatus(c *gin.Context) {
	status := sessionStatusResponse{}

	if identity := middleware.CurrentUserID(c); identity != "" {
		status.Authenticated = true
		status.UserID = identity

		rec, err := h.store.Get(c.Request.Context(), identity)
		if err != nil {
			h.logger.Warn("session status lookup failed", zap.String("identity", identity), zap.Error(err))
		}
		status.SessionActive = rec != nil
	}

	c.JSON(200, status)
}
