package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// NewID returns a prefixed opaque id, e.g. proj_1a2b3c4d5e6f.
func NewID(prefix string) string {
	u := uuid.New()
	return fmt.Sprintf("%s%x", prefix, u[:6])
}

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type ChannelType string

const (
	ChannelTypeProject ChannelType = "project"
	ChannelTypeDM      ChannelType = "dm"
)

type Project struct {
	ProjectID     string        `json:"project_id" gorm:"primaryKey"`
	Name          string        `json:"name" gorm:"not null"`
	Description   string        `json:"description"`
	Priority      Priority      `json:"priority" gorm:"default:'medium'"`
	Status        ProjectStatus `json:"status" gorm:"default:'active'"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	TeamMembers   []string      `json:"team_members" gorm:"serializer:json"`
	CreatedBy     string        `json:"created_by" gorm:"index"`
	CreatedByName string        `json:"created_by_name"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// ChannelID returns the id of the project's default chat channel.
func (p *Project) ChannelID() string {
	return ProjectChannelID(p.ProjectID)
}

func ProjectChannelID(projectID string) string {
	return "proj_" + projectID
}

type Task struct {
	TaskID         string     `json:"task_id" gorm:"primaryKey"`
	Title          string     `json:"title" gorm:"not null"`
	Description    string     `json:"description"`
	ProjectID      string     `json:"project_id" gorm:"index"`
	ProjectName    string     `json:"project_name"` // snapshot, not re-synced on rename
	AssignedTo     string     `json:"assigned_to" gorm:"index"`
	AssignedToName string     `json:"assigned_to_name"` // snapshot
	Priority       Priority   `json:"priority" gorm:"default:'medium'"`
	Status         TaskStatus `json:"status" gorm:"default:'todo'"`
	DueDate        string     `json:"due_date"`
	CreatedBy      string     `json:"created_by"`
	CreatedByName  string     `json:"created_by_name"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type Milestone struct {
	MilestoneID string    `json:"milestone_id" gorm:"primaryKey"`
	ProjectID   string    `json:"project_id" gorm:"index"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	DueDate     string    `json:"due_date"`
	Completed   bool      `json:"completed" gorm:"default:false"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type MemberDetail struct {
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type ChatChannel struct {
	ChannelID     string                  `json:"channel_id" gorm:"primaryKey"`
	Name          string                  `json:"name"`
	Type          ChannelType             `json:"type"`
	ProjectID     string                  `json:"project_id,omitempty"`
	Members       []string                `json:"members" gorm:"serializer:json"`
	MemberDetails map[string]MemberDetail `json:"member_details,omitempty" gorm:"serializer:json"`
	CreatedAt     time.Time               `json:"created_at"`
}

// DMChannelID derives a deterministic channel id for a pair of users, so the
// same channel is found no matter which side initiates the conversation.
func DMChannelID(userA, userB string) string {
	ids := []string{userA, userB}
	sort.Strings(ids)
	return fmt.Sprintf("dm_%s_%s", ids[0], ids[1])
}

type ChatMessage struct {
	MessageID     string    `json:"message_id" gorm:"primaryKey"`
	ChannelID     string    `json:"channel_id" gorm:"index"`
	SenderID      string    `json:"sender_id"`
	SenderName    string    `json:"sender_name"`
	SenderPicture string    `json:"sender_picture"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

type Notification struct {
	NotificationID string    `json:"notification_id" gorm:"primaryKey"`
	UserID         string    `json:"user_id" gorm:"index"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	Read           bool      `json:"read" gorm:"default:false"`
	Link           string    `json:"link"`
	CreatedAt      time.Time `json:"created_at"`
}

type Activity struct {
	ActivityID string    `json:"activity_id" gorm:"primaryKey"`
	UserID     string    `json:"user_id"`
	UserName   string    `json:"user_name"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	EntityName string    `json:"entity_name"`
	ProjectID  string    `json:"project_id"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

type Comment struct {
	CommentID   string    `json:"comment_id" gorm:"primaryKey"`
	Content     string    `json:"content" gorm:"not null"`
	EntityType  string    `json:"entity_type" gorm:"index:idx_comments_entity"`
	EntityID    string    `json:"entity_id" gorm:"index:idx_comments_entity"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	UserPicture string    `json:"user_picture"`
	CreatedAt   time.Time `json:"created_at"`
}

type File struct {
	FileID         string    `json:"file_id" gorm:"primaryKey"`
	OriginalName   string    `json:"original_name"`
	StoredName     string    `json:"stored_name"`
	EntityType     string    `json:"entity_type" gorm:"index:idx_files_entity"`
	EntityID       string    `json:"entity_id" gorm:"index:idx_files_entity"`
	UploadedBy     string    `json:"uploaded_by"`
	UploadedByName string    `json:"uploaded_by_name"`
	Size           int64     `json:"size"`
	ContentType    string    `json:"content_type"`
	CreatedAt      time.Time `json:"created_at"`
}
