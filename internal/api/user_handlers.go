package api

import (
	"net/http"
	"time"

	"github.com/enterprise-pm/enterprise-project-management/internal/auth"
	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	"github.com/enterprise-pm/enterprise-project-management/internal/service"
	"github.com/enterprise-pm/enterprise-project-management/internal/storage"
	pkgauth "github.com/enterprise-pm/enterprise-project-management/pkg/auth"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	db       *database.Database
	storage  *storage.FileStorage
	notifier *service.Notifier
}

func NewUserHandler(db *database.Database, fileStorage *storage.FileStorage, notifier *service.Notifier) *UserHandler {
	return &UserHandler{db: db, storage: fileStorage, notifier: notifier}
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.db.ListUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users"})
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.db.GetUserByID(c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type UserUpdateRequest struct {
	Name       *string `json:"name"`
	Department *string `json:"department"`
	Picture    *string `json:"picture"`
	Role       *string `json:"role"`
	Password   *string `json:"password"`
}

// Update lets a user edit their own profile; admins can edit anyone and are
// the only ones who may change roles.
func (h *UserHandler) Update(c *gin.Context) {
	actor := auth.CurrentUser(c)
	targetID := c.Param("user_id")

	if actor.UserID != targetID && actor.Role != models.UserRoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
		return
	}

	var req UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Department != nil {
		fields["department"] = *req.Department
	}
	if req.Picture != nil {
		fields["picture"] = *req.Picture
	}
	if req.Role != nil && actor.Role == models.UserRoleAdmin {
		fields["role"] = *req.Role
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := pkgauth.HashPassword(*req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		fields["password"] = hashed
	}

	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields"})
		return
	}

	if err := h.db.UpdateUserFields(targetID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	user, err := h.db.GetUserByID(targetID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Delete(c *gin.Context) {
	actor := auth.CurrentUser(c)
	targetID := c.Param("user_id")

	if targetID == actor.UserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete yourself"})
		return
	}

	target, err := h.db.GetUserByID(targetID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.db.DeleteUserCascade(target.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete user"})
		return
	}

	h.notifier.LogActivity(actor.UserID, actor.Name, "deleted user", "user", target.UserID, target.Name, "")

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

type CommentCreateRequest struct {
	Content    string `json:"content" binding:"required"`
	EntityType string `json:"entity_type" binding:"required"`
	EntityID   string `json:"entity_id" binding:"required"`
}

func (h *UserHandler) CreateComment(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req CommentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := &models.Comment{
		CommentID:   models.NewID("cmt_"),
		Content:     req.Content,
		EntityType:  req.EntityType,
		EntityID:    req.EntityID,
		UserID:      user.UserID,
		UserName:    user.Name,
		UserPicture: user.Picture,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.db.CreateComment(comment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	c.JSON(http.StatusOK, comment)
}

func (h *UserHandler) ListComments(c *gin.Context) {
	comments, err := h.db.ListComments(c.Param("entity_type"), c.Param("entity_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list comments"})
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (h *UserHandler) UploadFile(c *gin.Context) {
	user := auth.CurrentUser(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	entityType := c.PostForm("entity_type")
	if entityType == "" {
		entityType = "general"
	}
	entityID := c.PostForm("entity_id")

	fileID := models.NewID("file_")
	storedName := fileID + "_" + fileHeader.Filename
	if err := h.storage.Save(fileHeader, storedName); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	record := &models.File{
		FileID:         fileID,
		OriginalName:   fileHeader.Filename,
		StoredName:     storedName,
		EntityType:     entityType,
		EntityID:       entityID,
		UploadedBy:     user.UserID,
		UploadedByName: user.Name,
		Size:           fileHeader.Size,
		ContentType:    contentType,
		CreatedAt:      time.Now().UTC(),
	}

	if err := h.db.CreateFile(record); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record file"})
		return
	}

	h.notifier.LogActivity(user.UserID, user.Name, "uploaded file", "file", record.FileID, record.OriginalName, "")

	c.JSON(http.StatusOK, record)
}

func (h *UserHandler) ListFiles(c *gin.Context) {
	files, err := h.db.ListFiles(c.Param("entity_type"), c.Param("entity_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list files"})
		return
	}
	c.JSON(http.StatusOK, files)
}
