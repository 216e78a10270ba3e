package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ssorelay/core/internal/modules/auth"
	"github.com/ssorelay/core/internal/modules/logout"
	"github.com/ssorelay/core/internal/modules/notify"
	"github.com/ssorelay/core/internal/modules/session"
	"github.com/ssorelay/core/internal/pkg/response"
)

func (a *App) registerRoutes(store session.Store, negotiator *auth.Negotiator) {
	r := a.router

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	authGroup := r.Group("/auth")
	auth.NewHandler(a.cfg, negotiator, store, a.hub, a.logger).RegisterRoutes(authGroup)
	logout.NewHandler(store, a.hub, a.logger).RegisterRoutes(authGroup)

	api := r.Group("/api")
	session.NewHandler(store, a.logger).RegisterRoutes(api)

	keepalive := time.Duration(a.cfg.SSE.KeepaliveSeconds) * time.Second
	notify.NewHandler(a.hub, keepalive, a.logger).RegisterRoutes(api)

	api.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		storeOK := store.Ping(ctx) == nil
		status := "ok"
		code := http.StatusOK
		if !storeOK {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status": status,
			"store":  storeOK,
		})
	})
}
