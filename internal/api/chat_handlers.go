package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/enterprise-pm/enterprise-project-management/internal/auth"
	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	db *database.Database
}

func NewChatHandler(db *database.Database) *ChatHandler {
	return &ChatHandler{db: db}
}

// ChannelWithPreview is a channel plus its most recent message for the
// channel list view.
type ChannelWithPreview struct {
	models.ChatChannel
	LastMessage *models.ChatMessage `json:"last_message"`
}

func (h *ChatHandler) ListChannels(c *gin.Context) {
	user := auth.CurrentUser(c)

	channels, err := h.db.ChannelsVisibleTo(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list channels"})
		return
	}

	result := make([]ChannelWithPreview, 0, len(channels))
	for _, channel := range channels {
		preview := ChannelWithPreview{ChatChannel: channel}
		if msg, err := h.db.LastMessage(channel.ChannelID); err == nil {
			preview.LastMessage = msg
		}
		result = append(result, preview)
	}

	c.JSON(http.StatusOK, result)
}

func (h *ChatHandler) ListMessages(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := h.db.ListMessages(c.Param("channel_id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, messages)
}

type MessageCreateRequest struct {
	ChannelID string `json:"channel_id" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req MessageCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	message := &models.ChatMessage{
		MessageID:     models.NewID("msg_"),
		ChannelID:     req.ChannelID,
		SenderID:      user.UserID,
		SenderName:    user.Name,
		SenderPicture: user.Picture,
		Content:       req.Content,
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.db.CreateMessage(message); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send message"})
		return
	}

	c.JSON(http.StatusOK, message)
}

// GetOrCreateDM returns the direct channel between the caller and the target
// user, creating it on first use. The channel id is derived from the sorted
// pair, so both sides converge on the same channel.
func (h *ChatHandler) GetOrCreateDM(c *gin.Context) {
	user := auth.CurrentUser(c)
	targetID := c.Param("target_user_id")

	channelID := models.DMChannelID(user.UserID, targetID)
	if channel, err := h.db.GetChannel(channelID); err == nil {
		c.JSON(http.StatusOK, channel)
		return
	}

	target, err := h.db.GetUserByID(targetID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	channel := &models.ChatChannel{
		ChannelID: channelID,
		Name:      fmt.Sprintf("%s & %s", user.Name, target.Name),
		Type:      models.ChannelTypeDM,
		Members:   []string{user.UserID, target.UserID},
		MemberDetails: map[string]models.MemberDetail{
			user.UserID:   {Name: user.Name, Picture: user.Picture},
			target.UserID: {Name: target.Name, Picture: target.Picture},
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := h.db.CreateChannel(channel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create channel"})
		return
	}

	c.JSON(http.StatusOK, channel)
}
