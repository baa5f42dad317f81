package api

import (
	"net/http"
	"time"

	"github.com/enterprise-pm/enterprise-project-management/internal/auth"
	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	"github.com/enterprise-pm/enterprise-project-management/internal/service"
	"github.com/gin-gonic/gin"
)

type ProjectHandler struct {
	db       *database.Database
	notifier *service.Notifier
}

func NewProjectHandler(db *database.Database, notifier *service.Notifier) *ProjectHandler {
	return &ProjectHandler{db: db, notifier: notifier}
}

type ProjectCreateRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	TeamMembers []string        `json:"team_members"`
}

type ProjectUpdateRequest struct {
	Name        *string               `json:"name"`
	Description *string               `json:"description"`
	Priority    *models.Priority      `json:"priority"`
	Status      *models.ProjectStatus `json:"status"`
	StartDate   *string               `json:"start_date"`
	EndDate     *string               `json:"end_date"`
	TeamMembers *[]string             `json:"team_members"`
}

type TaskStats struct {
	Total      int64 `json:"total"`
	Completed  int64 `json:"completed"`
	InProgress int64 `json:"in_progress"`
	Todo       int64 `json:"todo"`
}

// ProjectDetail is a project plus the aggregates the detail view shows.
type ProjectDetail struct {
	models.Project
	TaskStats   TaskStats     `json:"task_stats"`
	TeamDetails []models.User `json:"team_details"`
}

func (h *ProjectHandler) List(c *gin.Context) {
	user := auth.CurrentUser(c)
	projects, err := h.db.ProjectsVisibleTo(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list projects"})
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (h *ProjectHandler) Create(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req ProjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	// The creator is always a member, whether or not the payload listed them.
	members := make([]string, 0, len(req.TeamMembers)+1)
	seen := map[string]bool{}
	for _, id := range append(req.TeamMembers, user.UserID) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		members = append(members, id)
	}

	now := time.Now().UTC()
	project := &models.Project{
		ProjectID:     models.NewID("proj_"),
		Name:          req.Name,
		Description:   req.Description,
		Priority:      req.Priority,
		Status:        models.ProjectStatusActive,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		TeamMembers:   members,
		CreatedBy:     user.UserID,
		CreatedByName: user.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := h.db.CreateProject(project); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}

	// Every project gets a chat channel with the same membership.
	channel := &models.ChatChannel{
		ChannelID: project.ChannelID(),
		Name:      project.Name,
		Type:      models.ChannelTypeProject,
		ProjectID: project.ProjectID,
		Members:   members,
		CreatedAt: now,
	}
	if err := h.db.CreateChannel(channel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project channel"})
		return
	}

	h.notifier.LogActivity(user.UserID, user.Name, "created project", "project", project.ProjectID, project.Name, project.ProjectID)

	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.db.GetProject(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	counts, err := h.db.TaskCountsForProjects([]string{project.ProjectID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load task stats"})
		return
	}

	team := make([]models.User, 0, len(project.TeamMembers))
	for _, uid := range project.TeamMembers {
		member, err := h.db.GetUserByID(uid)
		if err != nil {
			continue // stale member reference
		}
		team = append(team, *member)
	}

	c.JSON(http.StatusOK, ProjectDetail{
		Project: *project,
		TaskStats: TaskStats{
			Total:      counts.Total,
			Completed:  counts.Completed,
			InProgress: counts.InProgress,
			Todo:       counts.Todo,
		},
		TeamDetails: team,
	})
}

func (h *ProjectHandler) Update(c *gin.Context) {
	user := auth.CurrentUser(c)
	projectID := c.Param("project_id")

	var req ProjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.StartDate != nil {
		fields["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		fields["end_date"] = *req.EndDate
	}
	if req.TeamMembers != nil {
		fields["team_members"] = *req.TeamMembers
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}
	fields["updated_at"] = time.Now().UTC()

	if err := h.db.UpdateProjectFields(projectID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}

	project, err := h.db.GetProject(projectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	recipients := make([]string, 0, len(project.TeamMembers))
	for _, uid := range project.TeamMembers {
		if uid != user.UserID {
			recipients = append(recipients, uid)
		}
	}
	h.notifier.NotifyProjectUpdate(project, recipients, user.Name, "made updates")
	h.notifier.LogActivity(user.UserID, user.Name, "updated project", "project", project.ProjectID, project.Name, project.ProjectID)

	c.JSON(http.StatusOK, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	user := auth.CurrentUser(c)

	project, err := h.db.GetProject(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if err := h.db.DeleteProjectCascade(project.ProjectID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		return
	}

	h.notifier.LogActivity(user.UserID, user.Name, "deleted project", "project", project.ProjectID, project.Name, project.ProjectID)

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

type MilestoneCreateRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
}

func (h *ProjectHandler) CreateMilestone(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req MilestoneCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	milestone := &models.Milestone{
		MilestoneID: models.NewID("ms_"),
		ProjectID:   c.Param("project_id"),
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		CreatedBy:   user.UserID,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.db.CreateMilestone(milestone); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create milestone"})
		return
	}

	c.JSON(http.StatusOK, milestone)
}

func (h *ProjectHandler) ListMilestones(c *gin.Context) {
	milestones, err := h.db.ListMilestones(c.Param("project_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list milestones"})
		return
	}
	c.JSON(http.StatusOK, milestones)
}

// ToggleMilestone flips the completed flag; there is no explicit target state
// in the request.
func (h *ProjectHandler) ToggleMilestone(c *gin.Context) {
	milestone, err := h.db.GetMilestone(c.Param("milestone_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Milestone not found"})
		return
	}

	milestone.Completed = !milestone.Completed
	if err := h.db.SetMilestoneCompleted(milestone.MilestoneID, milestone.Completed); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update milestone"})
		return
	}

	c.JSON(http.StatusOK, milestone)
}
