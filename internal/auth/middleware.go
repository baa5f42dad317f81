package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	"github.com/enterprise-pm/enterprise-project-management/pkg/auth"
	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the identity-provider session token.
const SessionCookie = "session_token"

const currentUserKey = "currentUser"

// ResolveUser resolves the acting user from request credentials. The cookie
// session is tried first; only when it yields nothing is the bearer header
// inspected. Both paths re-fetch the user record, so token claims are never
// trusted as current state.
func ResolveUser(c *gin.Context, db *database.Database, jwtManager *auth.JWTManager) (*models.User, int, string) {
	if token, err := c.Cookie(SessionCookie); err == nil && token != "" {
		session, err := db.GetSession(token)
		if err == nil && database.SessionValid(session, time.Now()) {
			user, err := db.GetUserByID(session.UserID)
			if err == nil {
				return user, 0, ""
			}
			// Session points at a deleted user; fall through to the header.
		}
	}

	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, http.StatusUnauthorized, "Not authenticated"
	}

	claims, err := jwtManager.Verify(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, http.StatusUnauthorized, "Token expired"
		}
		return nil, http.StatusUnauthorized, "Invalid token"
	}

	user, err := db.GetUserByID(claims.UserID)
	if err != nil {
		return nil, http.StatusUnauthorized, "User not found"
	}
	return user, 0, ""
}

// Authenticate resolves the acting user and aborts with 401 when no valid
// credential is presented.
func Authenticate(db *database.Database, jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, status, msg := ResolveUser(c, db, jwtManager)
		if user == nil {
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

// RequireRoles gates a route on role membership. It must run after
// Authenticate.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	}
}

// CurrentUser returns the user resolved by Authenticate, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(currentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
