package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Database {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	return db
}

func newTestUser(t *testing.T, db *Database, name string, role models.UserRole) *models.User {
	t.Helper()
	user := &models.User{
		UserID:    models.NewID("user_"),
		Name:      name,
		Email:     fmt.Sprintf("%s@example.com", models.NewID("")),
		Role:      role,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.CreateUser(user))
	return user
}

func newTestProject(t *testing.T, db *Database, creator *models.User, members ...string) *models.Project {
	t.Helper()
	project := &models.Project{
		ProjectID:   models.NewID("proj_"),
		Name:        "Test Project",
		Status:      models.ProjectStatusActive,
		TeamMembers: append(members, creator.UserID),
		CreatedBy:   creator.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.CreateProject(project))
	return project
}

func TestProjectVisibilityByRole(t *testing.T) {
	db := setupTestDB(t)

	admin := newTestUser(t, db, "Admin", models.UserRoleAdmin)
	manager := newTestUser(t, db, "Manager", models.UserRoleProjectManager)
	member := newTestUser(t, db, "Member", models.UserRoleTeamMember)
	outsider := newTestUser(t, db, "Outsider", models.UserRoleTeamMember)

	// Manager creates one project with the member on the team, and a second
	// project exists that neither the manager nor the member belongs to.
	p1 := newTestProject(t, db, manager, member.UserID)
	newTestProject(t, db, admin)

	adminView, err := db.ProjectsVisibleTo(admin)
	require.NoError(t, err)
	assert.Len(t, adminView, 2)

	managerView, err := db.ProjectsVisibleTo(manager)
	require.NoError(t, err)
	require.Len(t, managerView, 1)
	assert.Equal(t, p1.ProjectID, managerView[0].ProjectID)

	memberView, err := db.ProjectsVisibleTo(member)
	require.NoError(t, err)
	require.Len(t, memberView, 1)
	assert.Equal(t, p1.ProjectID, memberView[0].ProjectID)

	outsiderView, err := db.ProjectsVisibleTo(outsider)
	require.NoError(t, err)
	assert.Empty(t, outsiderView)
}

func TestManagerSeesCreatedProjectsWithoutMembership(t *testing.T) {
	db := setupTestDB(t)

	manager := newTestUser(t, db, "Manager", models.UserRoleProjectManager)

	// Project created by the manager but without them in team_members.
	project := &models.Project{
		ProjectID:   models.NewID("proj_"),
		Name:        "Delegated",
		TeamMembers: []string{},
		CreatedBy:   manager.UserID,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, db.CreateProject(project))

	view, err := db.ProjectsVisibleTo(manager)
	require.NoError(t, err)
	assert.Len(t, view, 1)
}

func TestTasksVisibleToTeamMember(t *testing.T) {
	db := setupTestDB(t)

	manager := newTestUser(t, db, "Manager", models.UserRoleProjectManager)
	member := newTestUser(t, db, "Member", models.UserRoleTeamMember)

	inside := newTestProject(t, db, manager, member.UserID)
	outside := newTestProject(t, db, manager)

	mkTask := func(projectID, assignedTo string) *models.Task {
		task := &models.Task{
			TaskID:     models.NewID("task_"),
			Title:      "t",
			ProjectID:  projectID,
			AssignedTo: assignedTo,
			Status:     models.TaskStatusTodo,
			CreatedAt:  time.Now().UTC(),
		}
		require.NoError(t, db.CreateTask(task))
		return task
	}

	inProject := mkTask(inside.ProjectID, "")
	assignedOutside := mkTask(outside.ProjectID, member.UserID)
	hidden := mkTask(outside.ProjectID, "")

	tasks, err := db.TasksVisibleTo(member, TaskFilters{})
	require.NoError(t, err)
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.TaskID
	}
	assert.ElementsMatch(t, []string{inProject.TaskID, assignedOutside.TaskID}, ids)
	assert.NotContains(t, ids, hidden.TaskID)

	// Explicit filters cannot widen the member's scope.
	tasks, err = db.TasksVisibleTo(member, TaskFilters{ProjectID: outside.ProjectID})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, assignedOutside.TaskID, tasks[0].TaskID)
}

func TestDeleteProjectCascade(t *testing.T) {
	db := setupTestDB(t)

	manager := newTestUser(t, db, "Manager", models.UserRoleProjectManager)
	project := newTestProject(t, db, manager)

	task := &models.Task{
		TaskID:    models.NewID("task_"),
		Title:     "t",
		ProjectID: project.ProjectID,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.CreateTask(task))
	require.NoError(t, db.CreateMilestone(&models.Milestone{
		MilestoneID: models.NewID("ms_"),
		ProjectID:   project.ProjectID,
		Title:       "m",
		CreatedAt:   time.Now().UTC(),
	}))
	require.NoError(t, db.CreateChannel(&models.ChatChannel{
		ChannelID: project.ChannelID(),
		Name:      project.Name,
		Type:      models.ChannelTypeProject,
		ProjectID: project.ProjectID,
		Members:   project.TeamMembers,
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, db.CreateMessage(&models.ChatMessage{
		MessageID: models.NewID("msg_"),
		ChannelID: project.ChannelID(),
		Content:   "hello",
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, db.CreateActivity(&models.Activity{
		ActivityID: models.NewID("act_"),
		UserID:     manager.UserID,
		Action:     "created project",
		EntityType: "project",
		EntityID:   project.ProjectID,
		ProjectID:  project.ProjectID,
		CreatedAt:  time.Now().UTC(),
	}))

	require.NoError(t, db.DeleteProjectCascade(project.ProjectID))

	_, err := db.GetProject(project.ProjectID)
	assert.Error(t, err)

	tasks, err := db.TasksForProject(project.ProjectID)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	milestones, err := db.ListMilestones(project.ProjectID)
	require.NoError(t, err)
	assert.Empty(t, milestones)

	_, err = db.GetChannel(project.ChannelID())
	assert.Error(t, err)

	messages, err := db.ListMessages(project.ChannelID(), 10)
	require.NoError(t, err)
	assert.Empty(t, messages)

	activities, err := db.ListActivities(10, project.ProjectID)
	require.NoError(t, err)
	assert.Empty(t, activities)
}

func TestDeleteTaskCascadeRemovesComments(t *testing.T) {
	db := setupTestDB(t)

	task := &models.Task{
		TaskID:    models.NewID("task_"),
		Title:     "t",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, db.CreateTask(task))
	require.NoError(t, db.CreateComment(&models.Comment{
		CommentID:  models.NewID("cmt_"),
		Content:    "note",
		EntityType: "task",
		EntityID:   task.TaskID,
		CreatedAt:  time.Now().UTC(),
	}))

	require.NoError(t, db.DeleteTaskCascade(task.TaskID))

	comments, err := db.ListComments("task", task.TaskID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestCompletionRate(t *testing.T) {
	assert.Equal(t, 0.0, TaskCounts{}.CompletionRate())
	assert.Equal(t, 50.0, TaskCounts{Total: 2, Completed: 1}.CompletionRate())
	assert.Equal(t, 33.3, TaskCounts{Total: 3, Completed: 1}.CompletionRate())
	assert.Equal(t, 66.7, TaskCounts{Total: 3, Completed: 2}.CompletionRate())
	assert.Equal(t, 100.0, TaskCounts{Total: 4, Completed: 4}.CompletionRate())
}

func TestListMessagesOrder(t *testing.T) {
	db := setupTestDB(t)

	base := time.Now().UTC()
	for i := 0; i < 3; i++ {
		require.NoError(t, db.CreateMessage(&models.ChatMessage{
			MessageID: models.NewID("msg_"),
			ChannelID: "ch1",
			Content:   fmt.Sprintf("m%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	// Limit keeps the most recent messages but they come back oldest first.
	messages, err := db.ListMessages("ch1", 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "m1", messages[0].Content)
	assert.Equal(t, "m2", messages[1].Content)
}

func TestNotificationOwnerScoping(t *testing.T) {
	db := setupTestDB(t)

	owner := newTestUser(t, db, "Owner", models.UserRoleTeamMember)
	other := newTestUser(t, db, "Other", models.UserRoleTeamMember)

	notification := &models.Notification{
		NotificationID: models.NewID("notif_"),
		UserID:         owner.UserID,
		Type:           "task_assigned",
		Title:          "New Task Assigned",
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, db.CreateNotification(notification))

	// A non-recipient cannot mark it read.
	require.NoError(t, db.MarkNotificationRead(notification.NotificationID, other.UserID))
	count, err := db.UnreadNotificationCount(owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, db.MarkNotificationRead(notification.NotificationID, owner.UserID))
	count, err = db.UnreadNotificationCount(owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSessionValid(t *testing.T) {
	now := time.Now().UTC()
	assert.True(t, SessionValid(&models.Session{ExpiresAt: now.Add(time.Hour)}, now))
	assert.False(t, SessionValid(&models.Session{ExpiresAt: now.Add(-time.Hour)}, now))
}
