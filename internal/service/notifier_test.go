package service

import (
	"testing"
	"time"

	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupNotifier(t *testing.T) (*Notifier, *database.Database) {
	db, err := database.NewDatabase(t.TempDir())
	require.NoError(t, err)
	return NewNotifier(db, nil), db
}

func TestNotifyTaskStatusChangeSkipsSelf(t *testing.T) {
	notifier, db := setupNotifier(t)

	actor := &models.User{UserID: "user_a", Name: "Alice"}
	task := &models.Task{TaskID: "task_1", Title: "Ship it", CreatedBy: "user_a"}

	// The creator changing their own task gets no notification.
	notifier.NotifyTaskStatusChange(task, models.TaskStatusCompleted, actor)
	count, err := db.UnreadNotificationCount("user_a")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// A task with no recorded creator notifies nobody.
	orphan := &models.Task{TaskID: "task_2", Title: "Orphan"}
	notifier.NotifyTaskStatusChange(orphan, models.TaskStatusCompleted, actor)

	// Someone else changing the task notifies the creator.
	other := &models.User{UserID: "user_b", Name: "Bob"}
	notifier.NotifyTaskStatusChange(task, models.TaskStatusInProgress, other)
	notifications, err := db.ListNotifications("user_a", 10)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "task_status", notifications[0].Type)
	assert.Contains(t, notifications[0].Message, "In Progress")
}

func TestNotifyProjectUpdateFansOut(t *testing.T) {
	notifier, db := setupNotifier(t)

	project := &models.Project{ProjectID: "proj_1", Name: "Launch"}
	notifier.NotifyProjectUpdate(project, []string{"user_a", "user_b"}, "Paula", "made updates")

	for _, uid := range []string{"user_a", "user_b"} {
		notifications, err := db.ListNotifications(uid, 10)
		require.NoError(t, err)
		require.Len(t, notifications, 1)
		assert.Equal(t, "/projects/proj_1", notifications[0].Link)
	}
}

func TestLogActivity(t *testing.T) {
	notifier, db := setupNotifier(t)

	notifier.LogActivity("user_a", "Alice", "created project", "project", "proj_1", "Launch", "proj_1")

	activities, err := db.ListActivities(10, "proj_1")
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "created project", activities[0].Action)
	assert.WithinDuration(t, time.Now().UTC(), activities[0].CreatedAt, time.Minute)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "In Progress", statusLabel(models.TaskStatusInProgress))
	assert.Equal(t, "Todo", statusLabel(models.TaskStatusTodo))
	assert.Equal(t, "Completed", statusLabel(models.TaskStatusCompleted))
}
