package models

import "fmt"

// NotificationType classifies a feed entry.
type NotificationType string

const (
	NotificationTaskCompleted NotificationType = "task_completed"
	NotificationUrgent        NotificationType = "urgent"
)

// Notification is addressed to a single recipient inside an organization.
type Notification struct {
	ID             string           `json:"id" db:"id"`
	OrganizationID string           `json:"organizationId" db:"organization_id"`
	UserID         string           `json:"userId" db:"user_id"`
	Message        string           `json:"message" db:"message"`
	Read           bool             `json:"read" db:"is_read"`
	Date           string           `json:"date" db:"date"`
	Type           NotificationType `json:"type" db:"type"`
	Data           Payload          `json:"data,omitempty" db:"data"`
}

// CompletionNotification returns the notification a completion emits, or nil
// when the completer created the task themselves or the creator is unknown.
// Re-completing an already completed task never notifies again.
func CompletionNotification(id string, t Task, wasCompleted bool, completer *User, now string, report CompletionReport) *Notification {
	if wasCompleted || t.CreatedBy == nil || *t.CreatedBy == "" || completer == nil {
		return nil
	}
	if *t.CreatedBy == completer.ID {
		return nil
	}
	name := completer.Name
	if name == "" {
		name = completer.Email
	}
	data := Payload{"taskId": t.ID}
	if report.Note != nil {
		data["note"] = *report.Note
	}
	if report.Image != nil {
		data["image"] = *report.Image
	} else if len(report.Images) > 0 {
		data["image"] = report.Images[0]
	}
	return &Notification{
		ID:             id,
		OrganizationID: t.OrganizationID,
		UserID:         *t.CreatedBy,
		Message:        fmt.Sprintf("%s completed %q", name, t.Title),
		Read:           false,
		Date:           now,
		Type:           NotificationTaskCompleted,
		Data:           data,
	}
}
