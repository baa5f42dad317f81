package api

import (
	"net/http"
	"strconv"

	"github.com/enterprise-pm/enterprise-project-management/internal/auth"
	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	db *database.Database
}

func NewDashboardHandler(db *database.Database) *DashboardHandler {
	return &DashboardHandler{db: db}
}

// Stats reports role-scoped headline numbers: admins over everything,
// project managers over their visible projects, team members over their own
// assignments.
func (h *DashboardHandler) Stats(c *gin.Context) {
	user := auth.CurrentUser(c)

	switch user.Role {
	case models.UserRoleAdmin:
		counts, err := h.db.GlobalTaskCounts()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
		totalUsers, err := h.db.CountUsers()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
		totalProjects, err := h.db.CountProjects()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
		activeProjects, err := h.db.CountProjectsByStatus(models.ProjectStatusActive)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"total_users":       totalUsers,
			"total_projects":    totalProjects,
			"active_projects":   activeProjects,
			"total_tasks":       counts.Total,
			"completed_tasks":   counts.Completed,
			"tasks_in_progress": counts.InProgress,
			"completion_rate":   counts.CompletionRate(),
		})

	case models.UserRoleProjectManager:
		projectIDs, err := h.db.VisibleProjectIDs(user)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
		counts, err := h.db.TaskCountsForProjects(projectIDs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"total_projects":    len(projectIDs),
			"total_tasks":       counts.Total,
			"completed_tasks":   counts.Completed,
			"tasks_in_progress": counts.InProgress,
			"completion_rate":   counts.CompletionRate(),
		})

	default:
		counts, err := h.db.TaskCountsForAssignee(user.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
		projectIDs, err := h.db.MemberProjectIDs(user.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"my_projects":       len(projectIDs),
			"total_tasks":       counts.Total,
			"completed_tasks":   counts.Completed,
			"tasks_in_progress": counts.InProgress,
			"completion_rate":   counts.CompletionRate(),
		})
	}
}

// Charts returns the dashboard chart breakdowns. Unlike Stats this view is
// global for every role.
func (h *DashboardHandler) Charts(c *gin.Context) {
	priorities := []models.Priority{
		models.PriorityLow,
		models.PriorityMedium,
		models.PriorityHigh,
		models.PriorityCritical,
	}
	priorityDist := make([]gin.H, 0, len(priorities))
	for _, p := range priorities {
		count, err := h.db.CountTasksByPriority(p)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load charts"})
			return
		}
		priorityDist = append(priorityDist, gin.H{"name": titleCase(string(p)), "value": count})
	}

	statuses := []models.ProjectStatus{
		models.ProjectStatusActive,
		models.ProjectStatusCompleted,
		models.ProjectStatusOnHold,
		models.ProjectStatusCancelled,
	}
	statusDist := make([]gin.H, 0, len(statuses))
	for _, s := range statuses {
		count, err := h.db.CountProjectsByStatus(s)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load charts"})
			return
		}
		statusDist = append(statusDist, gin.H{"name": titleCase(string(s)), "value": count})
	}

	projects, err := h.db.FirstProjects(5)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load charts"})
		return
	}
	projectTasks := make([]gin.H, 0, len(projects))
	for _, p := range projects {
		todo, err := h.db.CountTasksByProjectStatus(p.ProjectID, models.TaskStatusTodo)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load charts"})
			return
		}
		inProgress, err := h.db.CountTasksByProjectStatus(p.ProjectID, models.TaskStatusInProgress)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load charts"})
			return
		}
		completed, err := h.db.CountTasksByProjectStatus(p.ProjectID, models.TaskStatusCompleted)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load charts"})
			return
		}
		name := p.Name
		if len(name) > 20 {
			name = name[:20]
		}
		projectTasks = append(projectTasks, gin.H{
			"name":        name,
			"Todo":        todo,
			"In Progress": inProgress,
			"Completed":   completed,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"priority_distribution": priorityDist,
		"project_statuses":      statusDist,
		"project_tasks":         projectTasks,
	})
}

func (h *DashboardHandler) Activity(c *gin.Context) {
	limit := 30
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	activities, err := h.db.ListActivities(limit, c.Query("project_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load activity"})
		return
	}
	c.JSON(http.StatusOK, activities)
}

func titleCase(s string) string {
	out := []byte(s)
	up := true
	for i := range out {
		if out[i] == '_' {
			out[i] = ' '
			up = true
			continue
		}
		if up && out[i] >= 'a' && out[i] <= 'z' {
			out[i] -= 'a' - 'A'
		}
		up = false
	}
	return string(out)
}
