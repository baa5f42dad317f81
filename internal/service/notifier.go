package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/enterprise-pm/enterprise-project-management/internal/database"
	"github.com/enterprise-pm/enterprise-project-management/internal/models"
	"github.com/enterprise-pm/enterprise-project-management/pkg/mail"
)

// Notifier owns the side effects of mutating operations: notification rows,
// best-effort emails and the activity log. Side effects run synchronously
// after the primary write; none of them may fail the request that triggered
// them.
type Notifier struct {
	db     *database.Database
	mailer mail.Mailer
}

func NewNotifier(db *database.Database, mailer mail.Mailer) *Notifier {
	return &Notifier{db: db, mailer: mailer}
}

func (n *Notifier) Notify(userID, notifType, title, message, link string) {
	notification := &models.Notification{
		NotificationID: models.NewID("notif_"),
		UserID:         userID,
		Type:           notifType,
		Title:          title,
		Message:        message,
		Link:           link,
		CreatedAt:      time.Now().UTC(),
	}
	if err := n.db.CreateNotification(notification); err != nil {
		slog.Error("failed to create notification", "user_id", userID, "type", notifType, "error", err)
	}
}

// LogActivity records one immutable audit entry. Unlike the other side
// effects it is expected to always succeed; a failure is still only logged.
func (n *Notifier) LogActivity(actorID, actorName, action, entityType, entityID, entityName, projectID string) {
	activity := &models.Activity{
		ActivityID: models.NewID("act_"),
		UserID:     actorID,
		UserName:   actorName,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		ProjectID:  projectID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := n.db.CreateActivity(activity); err != nil {
		slog.Error("failed to log activity", "action", action, "entity_id", entityID, "error", err)
	}
}

func (n *Notifier) NotifyTaskAssigned(task *models.Task, assignee *models.User, assignerName string) {
	n.Notify(
		assignee.UserID,
		"task_assigned",
		"New Task Assigned",
		fmt.Sprintf("%s assigned you the task: %s", assignerName, task.Title),
		"/tasks",
	)
	n.sendEmail(
		assignee.Email,
		fmt.Sprintf("New Task: %s", task.Title),
		taskAssignedHTML(task, assignerName),
	)
}

func (n *Notifier) NotifyProjectUpdate(project *models.Project, recipientIDs []string, updaterName, change string) {
	for _, uid := range recipientIDs {
		n.Notify(
			uid,
			"project_update",
			"Project Updated",
			fmt.Sprintf("%s %s in project: %s", updaterName, change, project.Name),
			"/projects/"+project.ProjectID,
		)
	}
}

// NotifyTaskStatusChange tells the task creator about a status change made
// by someone else.
func (n *Notifier) NotifyTaskStatusChange(task *models.Task, newStatus models.TaskStatus, actor *models.User) {
	if task.CreatedBy == "" || task.CreatedBy == actor.UserID {
		return
	}
	n.Notify(
		task.CreatedBy,
		"task_status",
		"Task Status Updated",
		fmt.Sprintf("%s changed '%s' to %s", actor.Name, task.Title, statusLabel(newStatus)),
		"/tasks",
	)
}

// sendEmail is fire-and-forget: delivery failures are logged and swallowed.
func (n *Notifier) sendEmail(to, subject, html string) {
	if n.mailer == nil {
		return
	}
	if err := n.mailer.Send(context.Background(), to, subject, html); err != nil {
		slog.Error("failed to send email", "to", to, "subject", subject, "error", err)
		return
	}
	slog.Info("email sent", "to", to, "subject", subject)
}

func statusLabel(status models.TaskStatus) string {
	words := strings.Split(string(status), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func taskAssignedHTML(task *models.Task, assignerName string) string {
	return fmt.Sprintf(`
	<div style="font-family:Arial,sans-serif;padding:20px;background:#09090b;color:#fafafa;">
		<h2 style="color:#6366f1;">New Task Assigned</h2>
		<p>%s assigned you a new task:</p>
		<div style="background:#18181b;padding:16px;border-radius:8px;margin:12px 0;">
			<h3 style="color:#fafafa;margin:0 0 8px;">%s</h3>
			<p style="color:#a1a1aa;margin:0;">%s</p>
			<p style="color:#a1a1aa;margin:8px 0 0;">Priority: %s</p>
		</div>
	</div>`, assignerName, task.Title, task.Description, strings.ToUpper(string(task.Priority)))
}
