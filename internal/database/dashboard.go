package database

import (
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	"gorm.io/gorm"
)

// TaskCounts is the per-status breakdown the dashboard reports.
type TaskCounts struct {
	Total      int64
	Completed  int64
	InProgress int64
	Todo       int64
}

// CompletionRate is completed/total as a percentage rounded to one decimal,
// defined as 0 when there are no tasks.
func (c TaskCounts) CompletionRate() float64 {
	if c.Total == 0 {
		return 0
	}
	rate := float64(c.Completed) / float64(c.Total) * 100
	return float64(int64(rate*10+0.5)) / 10
}

func (db *Database) countTasks(scope func(*gorm.DB) *gorm.DB) (TaskCounts, error) {
	var counts TaskCounts
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := scope(db.DB.Model(&models.Task{})).
		Select("status, COUNT(*) as n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return counts, err
	}
	for _, r := range rows {
		counts.Total += r.N
		switch models.TaskStatus(r.Status) {
		case models.TaskStatusCompleted:
			counts.Completed = r.N
		case models.TaskStatusInProgress:
			counts.InProgress = r.N
		case models.TaskStatusTodo:
			counts.Todo = r.N
		}
	}
	return counts, nil
}

func (db *Database) GlobalTaskCounts() (TaskCounts, error) {
	return db.countTasks(func(q *gorm.DB) *gorm.DB { return q })
}

func (db *Database) TaskCountsForProjects(projectIDs []string) (TaskCounts, error) {
	return db.countTasks(func(q *gorm.DB) *gorm.DB {
		return q.Where("project_id IN ?", projectIDs)
	})
}

func (db *Database) TaskCountsForAssignee(userID string) (TaskCounts, error) {
	return db.countTasks(func(q *gorm.DB) *gorm.DB {
		return q.Where("assigned_to = ?", userID)
	})
}

func (db *Database) CountUsers() (int64, error) {
	var count int64
	err := db.DB.Model(&models.User{}).Count(&count).Error
	return count, err
}

func (db *Database) CountProjects() (int64, error) {
	var count int64
	err := db.DB.Model(&models.Project{}).Count(&count).Error
	return count, err
}

func (db *Database) CountProjectsByStatus(status models.ProjectStatus) (int64, error) {
	var count int64
	err := db.DB.Model(&models.Project{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (db *Database) CountTasksByPriority(priority models.Priority) (int64, error) {
	var count int64
	err := db.DB.Model(&models.Task{}).Where("priority = ?", priority).Count(&count).Error
	return count, err
}

func (db *Database) CountTasksByProjectStatus(projectID string, status models.TaskStatus) (int64, error) {
	var count int64
	err := db.DB.Model(&models.Task{}).
		Where("project_id = ? AND status = ?", projectID, status).
		Count(&count).Error
	return count, err
}

// FirstProjects returns the earliest-created projects for the chart
// breakdown. The chart view is deliberately unscoped.
func (db *Database) FirstProjects(limit int) ([]models.Project, error) {
	var projects []models.Project
	err := db.DB.Order("created_at ASC").Limit(limit).Find(&projects).Error
	return projects, err
}
