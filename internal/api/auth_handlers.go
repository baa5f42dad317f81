package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/enterprise-pm/enterprise-project-management/internal/auth"
	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	pkgauth "github.com/enterprise-pm/enterprise-project-management/pkg/auth"
	"github.com/enterprise-pm/enterprise-project-management/pkg/identity"
	"github.com/gin-gonic/gin"
)

const sessionMaxAge = 7 * 24 * 3600

type AuthHandler struct {
	db         *database.Database
	jwtManager *pkgauth.JWTManager
	provider   *identity.Client
}

func NewAuthHandler(db *database.Database, jwtManager *pkgauth.JWTManager, provider *identity.Client) *AuthHandler {
	return &AuthHandler{
		db:         db,
		jwtManager: jwtManager,
		provider:   provider,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := h.db.GetUserByEmail(req.Email); err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	hashedPassword, err := pkgauth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	role := models.UserRole(req.Role)
	if role == "" {
		role = models.UserRoleTeamMember
	}

	user := &models.User{
		UserID:    models.NewID("user_"),
		Name:      req.Name,
		Email:     req.Email,
		Password:  hashedPassword,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.db.CreateUser(user); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	token, err := h.jwtManager.Generate(user.UserID, user.Email, string(user.Role), user.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.db.GetUserByEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := pkgauth.CheckPassword(req.Password, user.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.jwtManager.Generate(user.UserID, user.Email, string(user.Role), user.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

// ProcessSession exchanges an identity-provider session id for a local
// session: the user is upserted by email and a cookie-backed session is
// created alongside the returned bearer token.
func (h *AuthHandler) ProcessSession(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.SessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id required"})
		return
	}

	data, err := h.provider.ExchangeSession(c.Request.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidSession) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}
		slog.Error("identity provider exchange failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Auth service unavailable"})
		return
	}

	now := time.Now().UTC()

	user, err := h.db.GetUserByEmail(data.Email)
	if err == nil {
		// Known account: refresh profile fields, keep the stored role.
		if err := h.db.UpdateUserFields(user.UserID, map[string]interface{}{
			"name":    data.Name,
			"picture": data.Picture,
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		user.Name = data.Name
		user.Picture = data.Picture
	} else {
		user = &models.User{
			UserID:    models.NewID("user_"),
			Name:      data.Name,
			Email:     data.Email,
			Password:  "",
			Role:      models.UserRoleTeamMember,
			Picture:   data.Picture,
			CreatedAt: now,
		}
		if err := h.db.CreateUser(user); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
			return
		}
	}

	session := &models.Session{
		SessionToken: data.SessionToken,
		UserID:       user.UserID,
		ExpiresAt:    now.Add(7 * 24 * time.Hour),
		CreatedAt:    now,
	}
	if err := h.db.CreateSession(session); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(auth.SessionCookie, data.SessionToken, sessionMaxAge, "/", "", true, true)

	token, err := h.jwtManager.Generate(user.UserID, user.Email, string(user.Role), user.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: "bearer", User: user})
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, auth.CurrentUser(c))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(auth.SessionCookie); err == nil && token != "" {
		if err := h.db.DeleteSession(token); err != nil {
			slog.Error("failed to delete session", "error", err)
		}
	}
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(auth.SessionCookie, "", -1, "/", "", true, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
