package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/powervate/admin-api/internal/services"
	"github.com/powervate/admin-api/internal/utils"
)

// Context keys set by AuthMiddleware.
const (
	AdminIDKey   = "adminID"
	SessionIDKey = "sessionID"
	SessionKey   = "session"
)

// SessionLookup resolves the server-side session a token points at.
type SessionLookup interface {
	Session(ctx context.Context, sessionID string) (*services.Session, error)
}

// AuthMiddleware accepts a Bearer token only while its session is still alive,
// so logging out revokes the token.
func AuthMiddleware(tokens *utils.TokenManager, sessions SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Authorization header required"})
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token"})
			return
		}
		claims, err := tokens.ValidateJWT(tokenString)
		if err != nil || claims.SessionID == "" || claims.Role != services.AdminRole {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token"})
			return
		}

		sess, err := sessions.Session(c.Request.Context(), claims.SessionID)
		if errors.Is(err, services.ErrSessionNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Session expired, please sign in again"})
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not verify session"})
			return
		}
		if sess.Admin.UID != claims.UserID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid token"})
			return
		}

		c.Set(AdminIDKey, claims.UserID)
		c.Set(SessionIDKey, claims.SessionID)
		c.Set(SessionKey, sess)

		c.Next()
	}
}
