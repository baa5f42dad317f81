package api

import (
	"net/http"

	"github.com/enterprise-pm/enterprise-project-management/internal/auth"
	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	db *database.Database
}

func NewNotificationHandler(db *database.Database) *NotificationHandler {
	return &NotificationHandler{db: db}
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := auth.CurrentUser(c)
	notifications, err := h.db.ListNotifications(user.UserID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	user := auth.CurrentUser(c)
	count, err := h.db.UnreadNotificationCount(user.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	user := auth.CurrentUser(c)
	if err := h.db.MarkNotificationRead(c.Param("notification_id"), user.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	user := auth.CurrentUser(c)
	if err := h.db.MarkAllNotificationsRead(user.UserID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All marked as read"})
}
