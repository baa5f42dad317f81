package database

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	*gorm.DB
}

func NewDatabase(dataDir string) (*Database, error) {
	dbPath := filepath.Join(dataDir, "db", "pm.db")

	// Ensure the db directory exists
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Project{},
		&models.Task{},
		&models.Milestone{},
		&models.ChatChannel{},
		&models.ChatMessage{},
		&models.Notification{},
		&models.Activity{},
		&models.Comment{},
		&models.File{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Database{DB: db}, nil
}

// memberPattern matches a user id inside a JSON-serialized member list.
func memberPattern(userID string) string {
	return `%"` + userID + `"%`
}

// User management

func (db *Database) CreateUser(user *models.User) error {
	return db.DB.Create(user).Error
}

func (db *Database) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := db.DB.Where("user_id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Database) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := db.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Database) ListUsers() ([]models.User, error) {
	var users []models.User
	if err := db.DB.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (db *Database) UpdateUserFields(id string, fields map[string]interface{}) error {
	return db.DB.Model(&models.User{}).Where("user_id = ?", id).Updates(fields).Error
}

// DeleteUserCascade removes the user and every session bound to it. The two
// deletes are independent steps; a failed session cleanup is logged and does
// not undo the user removal.
func (db *Database) DeleteUserCascade(id string) error {
	if err := db.DB.Where("user_id = ?", id).Delete(&models.User{}).Error; err != nil {
		return err
	}
	if err := db.DB.Where("user_id = ?", id).Delete(&models.Session{}).Error; err != nil {
		slog.Error("failed to delete user sessions", "user_id", id, "error", err)
	}
	return nil
}

// Sessions

func (db *Database) CreateSession(session *models.Session) error {
	return db.DB.Create(session).Error
}

func (db *Database) GetSession(token string) (*models.Session, error) {
	var session models.Session
	if err := db.DB.Where("session_token = ?", token).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (db *Database) DeleteSession(token string) error {
	return db.DB.Where("session_token = ?", token).Delete(&models.Session{}).Error
}

// Projects

func (db *Database) CreateProject(project *models.Project) error {
	return db.DB.Create(project).Error
}

func (db *Database) GetProject(id string) (*models.Project, error) {
	var project models.Project
	if err := db.DB.Where("project_id = ?", id).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ProjectsVisibleTo narrows the project list to the caller's visibility
// scope: admins see everything, project managers see projects they created
// or belong to, team members only projects they belong to.
func (db *Database) ProjectsVisibleTo(user *models.User) ([]models.Project, error) {
	var projects []models.Project
	query := db.DB
	switch user.Role {
	case models.UserRoleAdmin:
	case models.UserRoleProjectManager:
		query = query.Where("created_by = ? OR team_members LIKE ?", user.UserID, memberPattern(user.UserID))
	default:
		query = query.Where("team_members LIKE ?", memberPattern(user.UserID))
	}
	err := query.Find(&projects).Error
	return projects, err
}

// VisibleProjectIDs returns the ids of the projects ProjectsVisibleTo would
// return, for scoping task and dashboard queries.
func (db *Database) VisibleProjectIDs(user *models.User) ([]string, error) {
	projects, err := db.ProjectsVisibleTo(user)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ProjectID
	}
	return ids, nil
}

// MemberProjectIDs returns the projects the user belongs to, regardless of
// role.
func (db *Database) MemberProjectIDs(userID string) ([]string, error) {
	var projects []models.Project
	if err := db.DB.Where("team_members LIKE ?", memberPattern(userID)).Find(&projects).Error; err != nil {
		return nil, err
	}
	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ProjectID
	}
	return ids, nil
}

func (db *Database) UpdateProjectFields(id string, fields map[string]interface{}) error {
	return db.DB.Model(&models.Project{}).Where("project_id = ?", id).Updates(fields).Error
}

// DeleteProjectCascade removes a project and its owned records: tasks,
// milestones, the default chat channel and its messages, and the project's
// slice of the activity log. The steps are
// independent and best-effort; a downstream failure is logged and leaves
// orphans rather than rolling back the primary delete.
func (db *Database) DeleteProjectCascade(id string) error {
	if err := db.DB.Where("project_id = ?", id).Delete(&models.Project{}).Error; err != nil {
		return err
	}

	channelID := models.ProjectChannelID(id)
	steps := []struct {
		name string
		run  func() error
	}{
		{"tasks", func() error {
			return db.DB.Where("project_id = ?", id).Delete(&models.Task{}).Error
		}},
		{"milestones", func() error {
			return db.DB.Where("project_id = ?", id).Delete(&models.Milestone{}).Error
		}},
		{"channel", func() error {
			return db.DB.Where("channel_id = ?", channelID).Delete(&models.ChatChannel{}).Error
		}},
		{"messages", func() error {
			return db.DB.Where("channel_id = ?", channelID).Delete(&models.ChatMessage{}).Error
		}},
		{"activities", func() error {
			return db.DB.Where("project_id = ?", id).Delete(&models.Activity{}).Error
		}},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			slog.Error("project cascade step failed", "project_id", id, "step", step.name, "error", err)
		}
	}
	return nil
}

// Tasks

type TaskFilters struct {
	ProjectID  string
	Status     string
	AssignedTo string
}

func (db *Database) CreateTask(task *models.Task) error {
	return db.DB.Create(task).Error
}

func (db *Database) GetTask(id string) (*models.Task, error) {
	var task models.Task
	if err := db.DB.Where("task_id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// TasksVisibleTo applies the caller's explicit filters, then forces team
// members down to the union of tasks in their projects and tasks assigned to
// them, whatever the requested filters were.
func (db *Database) TasksVisibleTo(user *models.User, filters TaskFilters) ([]models.Task, error) {
	query := db.DB
	if filters.ProjectID != "" {
		query = query.Where("project_id = ?", filters.ProjectID)
	}
	if filters.Status != "" {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.AssignedTo != "" {
		query = query.Where("assigned_to = ?", filters.AssignedTo)
	}

	if user.Role == models.UserRoleTeamMember {
		projectIDs, err := db.MemberProjectIDs(user.UserID)
		if err != nil {
			return nil, err
		}
		query = query.Where("(project_id IN ? OR assigned_to = ?)", projectIDs, user.UserID)
	}

	var tasks []models.Task
	err := query.Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

func (db *Database) TasksForProject(projectID string) ([]models.Task, error) {
	var tasks []models.Task
	err := db.DB.Where("project_id = ?", projectID).Find(&tasks).Error
	return tasks, err
}

func (db *Database) UpdateTaskFields(id string, fields map[string]interface{}) error {
	return db.DB.Model(&models.Task{}).Where("task_id = ?", id).Updates(fields).Error
}

// DeleteTaskCascade removes the task and its comments; the comment cleanup
// is best-effort.
func (db *Database) DeleteTaskCascade(id string) error {
	if err := db.DB.Where("task_id = ?", id).Delete(&models.Task{}).Error; err != nil {
		return err
	}
	if err := db.DB.Where("entity_type = ? AND entity_id = ?", "task", id).Delete(&models.Comment{}).Error; err != nil {
		slog.Error("failed to delete task comments", "task_id", id, "error", err)
	}
	return nil
}

// Milestones

func (db *Database) CreateMilestone(milestone *models.Milestone) error {
	return db.DB.Create(milestone).Error
}

func (db *Database) GetMilestone(id string) (*models.Milestone, error) {
	var milestone models.Milestone
	if err := db.DB.Where("milestone_id = ?", id).First(&milestone).Error; err != nil {
		return nil, err
	}
	return &milestone, nil
}

func (db *Database) ListMilestones(projectID string) ([]models.Milestone, error) {
	var milestones []models.Milestone
	err := db.DB.Where("project_id = ?", projectID).Find(&milestones).Error
	return milestones, err
}

func (db *Database) SetMilestoneCompleted(id string, completed bool) error {
	return db.DB.Model(&models.Milestone{}).Where("milestone_id = ?", id).Update("completed", completed).Error
}

// SessionValid reports whether the session's expiry is still in the future.
// The check is advisory and read-time only; expired rows are not evicted.
func SessionValid(session *models.Session, now time.Time) bool {
	return session.ExpiresAt.After(now)
}
