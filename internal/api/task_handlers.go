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

type TaskHandler struct {
	db       *database.Database
	notifier *service.Notifier
}

func NewTaskHandler(db *database.Database, notifier *service.Notifier) *TaskHandler {
	return &TaskHandler{db: db, notifier: notifier}
}

type TaskCreateRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	ProjectID   string          `json:"project_id" binding:"required"`
	AssignedTo  string          `json:"assigned_to"`
	Priority    models.Priority `json:"priority"`
	DueDate     string          `json:"due_date"`
}

type TaskUpdateRequest struct {
	Title       *string            `json:"title"`
	Description *string            `json:"description"`
	AssignedTo  *string            `json:"assigned_to"`
	Priority    *models.Priority   `json:"priority"`
	Status      *models.TaskStatus `json:"status"`
	DueDate     *string            `json:"due_date"`
}

func (h *TaskHandler) List(c *gin.Context) {
	user := auth.CurrentUser(c)
	filters := database.TaskFilters{
		ProjectID:  c.Query("project_id"),
		Status:     c.Query("status"),
		AssignedTo: c.Query("assigned_to"),
	}
	tasks, err := h.db.TasksVisibleTo(user, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list tasks"})
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) Create(c *gin.Context) {
	user := auth.CurrentUser(c)

	var req TaskCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := h.db.GetProject(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	now := time.Now().UTC()
	task := &models.Task{
		TaskID:        models.NewID("task_"),
		Title:         req.Title,
		Description:   req.Description,
		ProjectID:     project.ProjectID,
		ProjectName:   project.Name,
		AssignedTo:    req.AssignedTo,
		Priority:      req.Priority,
		Status:        models.TaskStatusTodo,
		DueDate:       req.DueDate,
		CreatedBy:     user.UserID,
		CreatedByName: user.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	var assignee *models.User
	if req.AssignedTo != "" {
		if assignee, err = h.db.GetUserByID(req.AssignedTo); err == nil {
			task.AssignedToName = assignee.Name
		} else {
			assignee = nil // unknown assignee id is kept but never notified
		}
	}

	if err := h.db.CreateTask(task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	if assignee != nil {
		h.notifier.NotifyTaskAssigned(task, assignee, user.Name)
	}
	h.notifier.LogActivity(user.UserID, user.Name, "created task", "task", task.TaskID, task.Title, task.ProjectID)

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Get(c *gin.Context) {
	task, err := h.db.GetTask(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) Update(c *gin.Context) {
	user := auth.CurrentUser(c)

	task, err := h.db.GetTask(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if user.Role == models.UserRoleTeamMember {
		if task.AssignedTo != user.UserID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Can only update your own tasks"})
			return
		}
		// Team members may only move status; other fields are dropped, not
		// rejected.
		req = TaskUpdateRequest{Status: req.Status}
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		fields["title"] = *req.Title
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
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}

	var newAssignee *models.User
	if req.AssignedTo != nil && *req.AssignedTo != task.AssignedTo {
		fields["assigned_to"] = *req.AssignedTo
		fields["assigned_to_name"] = ""
		if assignee, err := h.db.GetUserByID(*req.AssignedTo); err == nil {
			fields["assigned_to_name"] = assignee.Name
			newAssignee = assignee
		}
	}

	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}
	fields["updated_at"] = time.Now().UTC()

	if err := h.db.UpdateTaskFields(task.TaskID, fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	if newAssignee != nil {
		h.notifier.NotifyTaskAssigned(task, newAssignee, user.Name)
	}
	if req.Status != nil && *req.Status != task.Status {
		h.notifier.NotifyTaskStatusChange(task, *req.Status, user)
	}
	h.notifier.LogActivity(user.UserID, user.Name, "updated task", "task", task.TaskID, task.Title, task.ProjectID)

	updated, err := h.db.GetTask(task.TaskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load task"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TaskHandler) Delete(c *gin.Context) {
	user := auth.CurrentUser(c)

	task, err := h.db.GetTask(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}

	if err := h.db.DeleteTaskCascade(task.TaskID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	h.notifier.LogActivity(user.UserID, user.Name, "deleted task", "task", task.TaskID, task.Title, task.ProjectID)

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}
