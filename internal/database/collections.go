package database

import (
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
)

// Chat channels and messages

func (db *Database) CreateChannel(channel *models.ChatChannel) error {
	return db.DB.Create(channel).Error
}

func (db *Database) GetChannel(id string) (*models.ChatChannel, error) {
	var channel models.ChatChannel
	if err := db.DB.Where("channel_id = ?", id).First(&channel).Error; err != nil {
		return nil, err
	}
	return &channel, nil
}

// ChannelsVisibleTo returns channels the user is a member of; admins see
// every channel.
func (db *Database) ChannelsVisibleTo(user *models.User) ([]models.ChatChannel, error) {
	var channels []models.ChatChannel
	query := db.DB
	if user.Role != models.UserRoleAdmin {
		query = query.Where("members LIKE ?", memberPattern(user.UserID))
	}
	err := query.Find(&channels).Error
	return channels, err
}

func (db *Database) CreateMessage(message *models.ChatMessage) error {
	return db.DB.Create(message).Error
}

// ListMessages returns the channel's most recent messages, oldest first.
func (db *Database) ListMessages(channelID string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := db.DB.Where("channel_id = ?", channelID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (db *Database) LastMessage(channelID string) (*models.ChatMessage, error) {
	var message models.ChatMessage
	err := db.DB.Where("channel_id = ?", channelID).
		Order("created_at DESC").
		First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// Notifications

func (db *Database) CreateNotification(notification *models.Notification) error {
	return db.DB.Create(notification).Error
}

func (db *Database) ListNotifications(userID string, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := db.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (db *Database) UnreadNotificationCount(userID string) (int64, error) {
	var count int64
	err := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkNotificationRead is owner-scoped: a notification can only be marked by
// its recipient.
func (db *Database) MarkNotificationRead(notificationID, userID string) error {
	return db.DB.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Update("read", true).Error
}

func (db *Database) MarkAllNotificationsRead(userID string) error {
	return db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}

// Activity log

func (db *Database) CreateActivity(activity *models.Activity) error {
	return db.DB.Create(activity).Error
}

func (db *Database) ListActivities(limit int, projectID string) ([]models.Activity, error) {
	var activities []models.Activity
	query := db.DB
	if projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&activities).Error
	return activities, err
}

// Comments

func (db *Database) CreateComment(comment *models.Comment) error {
	return db.DB.Create(comment).Error
}

func (db *Database) ListComments(entityType, entityID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.DB.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Limit(200).
		Find(&comments).Error
	return comments, err
}

// Files

func (db *Database) CreateFile(file *models.File) error {
	return db.DB.Create(file).Error
}

func (db *Database) ListFiles(entityType, entityID string) ([]models.File, error) {
	var files []models.File
	err := db.DB.Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&files).Error
	return files, err
}
