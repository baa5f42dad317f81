package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	pkgauth "github.com/enterprise-pm/enterprise-project-management/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiddleware(t *testing.T) (*gin.Engine, *database.Database, *pkgauth.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(t.TempDir())
	require.NoError(t, err)
	jwtManager := pkgauth.NewJWTManager("test-secret", time.Hour)

	router := gin.New()
	router.GET("/whoami", Authenticate(db, jwtManager), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUser(c).UserID})
	})
	return router, db, jwtManager
}

func seedUser(t *testing.T, db *database.Database) *models.User {
	t.Helper()
	user := &models.User{
		UserID:    models.NewID("user_"),
		Name:      "Alice",
		Email:     "alice@example.com",
		Role:      models.UserRoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.CreateUser(user))
	return user
}

func TestAuthenticateViaSessionCookie(t *testing.T) {
	router, db, _ := setupMiddleware(t)
	user := seedUser(t, db)

	require.NoError(t, db.CreateSession(&models.Session{
		SessionToken: "sess-token",
		UserID:       user.UserID,
		ExpiresAt:    time.Now().UTC().Add(time.Hour),
		CreatedAt:    time.Now().UTC(),
	}))

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "sess-token"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), user.UserID)
}

func TestExpiredSessionFallsThroughToBearer(t *testing.T) {
	router, db, jwtManager := setupMiddleware(t)
	user := seedUser(t, db)

	require.NoError(t, db.CreateSession(&models.Session{
		SessionToken: "stale-token",
		UserID:       user.UserID,
		ExpiresAt:    time.Now().UTC().Add(-time.Hour),
		CreatedAt:    time.Now().UTC(),
	}))

	// Expired cookie alone is not enough.
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale-token"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// With a bearer token alongside, the header path still authenticates.
	token, err := jwtManager.Generate(user.UserID, user.Email, string(user.Role), user.Name)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "stale-token"})
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExpiredBearerToken(t *testing.T) {
	router, db, _ := setupMiddleware(t)
	user := seedUser(t, db)

	expired := pkgauth.NewJWTManager("test-secret", -time.Minute)
	token, err := expired.Generate(user.UserID, user.Email, string(user.Role), user.Name)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, err := database.NewDatabase(t.TempDir())
	require.NoError(t, err)
	jwtManager := pkgauth.NewJWTManager("test-secret", time.Hour)
	user := seedUser(t, db)

	router := gin.New()
	router.GET("/admin", Authenticate(db, jwtManager), RequireRoles(models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/pm", Authenticate(db, jwtManager), RequireRoles(models.UserRoleProjectManager), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	token, err := jwtManager.Generate(user.UserID, user.Email, string(user.Role), user.Name)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/pm", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
