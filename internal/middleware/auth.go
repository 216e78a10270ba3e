package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ssorelay/core/internal/pkg/jwt"
	"github.com/ssorelay/core/internal/pkg/response"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeySID    = "session_id"

	// TokenCookie carries the local identity assertion between requests.
	TokenCookie = "relay-token"
)

// Auth returns a middleware that enforces a valid identity assertion.
// Validity is signature-only: a revoked registry record does not
// invalidate an already-issued assertion (the client learns about
// revocation via /api/session-status or the event stream).
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := jwt.Parse(extractToken(c))
		if err != nil {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, claims.UserID)
		if claims.SessionID != "" {
			c.Set(ContextKeySID, claims.SessionID)
		}
		c.Next()
	}
}

// OptionalAuth sets the user ID if a valid assertion is present, but does
// not block the request.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := jwt.Parse(extractToken(c)); err == nil && claims.UserID != "" {
			c.Set(ContextKeyUserID, claims.UserID)
			if claims.SessionID != "" {
				c.Set(ContextKeySID, claims.SessionID)
			}
		}
		c.Next()
	}
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentSessionID extracts the session token bound to the assertion.
func CurrentSessionID(c *gin.Context) string {
	v, _ := c.Get(ContextKeySID)
	id, _ := v.(string)
	return id
}

// IsAuthenticated returns true if the request carries a valid assertion.
func IsAuthenticated(c *gin.Context) bool {
	return CurrentUserID(c) != ""
}

func extractToken(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		return NormalizeToken(auth)
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return NormalizeToken(cookie)
	}
	return NormalizeToken(c.Query("token"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
