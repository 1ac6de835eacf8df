package models

import "fmt"

// TaskStatus follows pending <-> in-progress -> completed -> pending.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// Task belongs to a Project; ProjectID is a back-reference, not ownership.
type Task struct {
	ID               string        `json:"id" db:"id"`
	ProjectID        string        `json:"projectId" db:"project_id"`
	OrganizationID   string        `json:"organizationId" db:"organization_id"`
	Title            string        `json:"title" db:"title"`
	Description      string        `json:"description" db:"description"`
	AssignedTo       *string       `json:"assignedTo,omitempty" db:"assigned_to"`
	Status           TaskStatus    `json:"status" db:"status"`
	RequiredDate     string        `json:"requiredDate" db:"required_date"`
	CompletedAt      *string       `json:"completedAt,omitempty" db:"completed_at"`
	CompletionNote   *string       `json:"completionNote,omitempty" db:"completion_note"`
	CompletionImage  *string       `json:"completionImage,omitempty" db:"completion_image"`
	CompletionImages List          `json:"completionImages" db:"completion_images"`
	CreatedBy        *string       `json:"createdBy,omitempty" db:"created_by"`
	Attachments      List          `json:"attachments" db:"attachments"`
	Comments         []TaskComment `json:"comments" db:"-"`
}

// CompletionReport is what a completer submits with a finished task.
type CompletionReport struct {
	Note   *string
	Image  *string
	Images List
}

// Normalize fills list fields and enforces the completion invariants.
func (t *Task) Normalize() {
	t.Attachments = t.Attachments.OrEmpty()
	t.CompletionImages = t.CompletionImages.OrEmpty()
	if t.Comments == nil {
		t.Comments = []TaskComment{}
	}
	for i := range t.Comments {
		t.Comments[i].Images = t.Comments[i].Images.OrEmpty()
	}
	if t.Status == "" {
		t.Status = TaskPending
	}
	if t.Status != TaskCompleted {
		t.clearCompletion()
	}
}

// Complete moves the task to completed. Completing an already completed task
// keeps the original completedAt and only replaces the report.
func (t *Task) Complete(now string, report CompletionReport) {
	if t.Status != TaskCompleted || t.CompletedAt == nil {
		t.CompletedAt = &now
	}
	t.Status = TaskCompleted
	t.CompletionNote = report.Note
	t.CompletionImage = report.Image
	t.CompletionImages = report.Images.OrEmpty().Clone()
}

// Reopen always returns the task to pending and erases the completion report,
// even when the task was in progress before it was completed.
func (t *Task) Reopen() {
	t.Status = TaskPending
	t.clearCompletion()
}

// SetStatus applies a pending/in-progress transition. Leaving completed must
// go through Reopen and entering completed must go through Complete.
func (t *Task) SetStatus(s TaskStatus) error {
	switch {
	case !s.Valid():
		return fmt.Errorf("unknown task status %q", s)
	case s == TaskCompleted:
		return fmt.Errorf("task %s must be completed with a completion report", t.ID)
	case t.Status == TaskCompleted:
		return fmt.Errorf("task %s is completed; reopen it first", t.ID)
	}
	t.Status = s
	return nil
}

func (t *Task) clearCompletion() {
	t.CompletedAt = nil
	t.CompletionNote = nil
	t.CompletionImage = nil
	t.CompletionImages = List{}
}

// Clone deep-copies the task.
func (t Task) Clone() Task {
	out := t
	out.Attachments = t.Attachments.OrEmpty().Clone()
	out.CompletionImages = t.CompletionImages.OrEmpty().Clone()
	out.Comments = make([]TaskComment, len(t.Comments))
	for i, c := range t.Comments {
		c.Images = c.Images.OrEmpty().Clone()
		out.Comments[i] = c
	}
	return out
}

// TaskComment is deletable only by its author or an org admin.
type TaskComment struct {
	ID             string `json:"id" db:"id"`
	TaskID         string `json:"taskId" db:"task_id"`
	OrganizationID string `json:"organizationId" db:"organization_id"`
	UserID         string `json:"userId" db:"user_id"`
	Message        string `json:"message" db:"message"`
	Images         List   `json:"images" db:"images"`
	CreatedAt      string `json:"createdAt" db:"created_at"`
}

// CanDelete reports whether u may remove the comment.
func (c TaskComment) CanDelete(u *User) bool {
	if u == nil {
		return false
	}
	return c.UserID == u.ID || u.CanModerate()
}
