package notify

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ssorelay/core/internal/middleware"
	"go.uber.org/zap"
)

// Handler pumps hub events onto Server-Sent Event streams.
type Handler struct {
	hub       *Hub
	keepalive time.Duration
	logger    *zap.Logger
}

// NewHandler creates the SSE endpoint handler. keepalive <= 0 disables
// the heartbeat comments.
func NewHandler(hub *Hub, keepalive time.Duration, logger *zap.Logger) *Handler {
	return &Handler{hub: hub, keepalive: keepalive, logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/events", middleware.Auth(), h.stream)
}

// GET /api/events
func (h *Handler) stream(c *gin.Context) {
	identity := middleware.CurrentUserID(c)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	ch := h.hub.Open(identity)
	defer h.hub.Detach(identity, ch)

	var heartbeat <-chan time.Time
	if h.keepalive > 0 {
		ticker := time.NewTicker(h.keepalive)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	for {
		select {
		case event := <-ch.Events():
			if !writeEvent(c, event) {
				return
			}

		case <-heartbeat:
			// Comment line keeps half-open connections detectable.
			if _, err := c.Writer.WriteString(": keepalive\n\n"); err != nil {
				return
			}
			c.Writer.Flush()

		case <-ch.Done():
			h.logger.Info("sse stream superseded or closed", zap.String("identity", identity))
			return

		case <-c.Request.Context().Done():
			h.logger.Info("sse client disconnected", zap.String("identity", identity))
			return
		}
	}
}

func writeEvent(c *gin.Context, name string) bool {
	if _, err := c.Writer.WriteString("data: " + name + "\n\n"); err != nil {
		return false
	}
	c.Writer.Flush()
	return true
}
