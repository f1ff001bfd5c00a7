package middleware

import (
	"errors"
	"net/http"
	"strings"

	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/session"
	"pub_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware.
const (
	SessionKey = "session"
	StaffIDKey = "staffID"
	RoleKey    = "userRole"
)

// AuthMiddleware resolves the bearer token into a session and stores it in the context.
func AuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authorization header required", ""))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid authorization header format. Use Bearer <token>", ""))
			c.Abort()
			return
		}

		sess, err := sessions.Parse(parts[1])
		if err != nil {
			msg := "Invalid or expired token"
			if errors.Is(err, session.ErrRevoked) {
				msg = "Session has been logged out"
			}
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, msg, err.Error()))
			c.Abort()
			return
		}

		c.Set(SessionKey, sess)
		c.Set(StaffIDKey, sess.StaffID)
		c.Set(RoleKey, sess.Role)

		c.Next()
	}
}

// CurrentSession returns the session stored by AuthMiddleware.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok && sess != nil
}

// RoleAuthMiddleware admits sessions whose role is one of allowedRoles.
// A superadmin session is admitted everywhere.
func RoleAuthMiddleware(allowedRoles ...models.StaffRole) gin.HandlerFunc {
	names := make([]string, len(allowedRoles))
	for i, r := range allowedRoles {
		names[i] = string(r)
	}

	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Session not found. Ensure AuthMiddleware runs first.", ""))
			c.Abort()
			return
		}

		if !sess.Allows(allowedRoles...) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden,
				"You do not have permission to access this resource. Required roles: "+strings.Join(names, ", "), ""))
			c.Abort()
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware attaches a session when a valid bearer token is present and
// lets anonymous requests through unchanged.
func OptionalAuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			if sess, err := sessions.Parse(parts[1]); err == nil {
				c.Set(SessionKey, sess)
				c.Set(StaffIDKey, sess.StaffID)
				c.Set(RoleKey, sess.Role)
			}
		}
		c.Next()
	}
}
