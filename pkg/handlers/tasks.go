package handlers

import (
	"net/http"
	"strings"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/config"
	"buildsync-backend/pkg/database"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/utils"

	"github.com/charmbracelet/log"
)

// TasksHandler 任务与评论
type TasksHandler struct {
	base
}

func NewTasksHandler(cfg *config.Config, db database.DatabaseInterface) *TasksHandler {
	return &TasksHandler{base: newBase(cfg, db)}
}

// CreateTask POST /task
// The organization is stamped from the owning project.
func (h *TasksHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	t, ok := decode[models.Task](&h.base, w, r)
	if !ok {
		return
	}
	t.Title = strings.TrimSpace(t.Title)
	if !h.require(w, r, "projectId", t.ProjectID, "title", t.Title) {
		return
	}
	if t.Status != "" && !t.Status.Valid() {
		h.fail(w, r, errInvalidStatus("task", string(t.Status)))
		return
	}

	project, err := h.db.GetProject(r.Context(), t.ProjectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t.ID = h.idOr(t.ID)
	if err := stamp("task", t.ID, &t.OrganizationID, project.OrganizationID); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.db.CreateTask(r.Context(), t); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, t.ID)
}

// UpdateTask POST /task/update
// A full replace of the task's own fields; comments are untouched.
func (h *TasksHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	t, ok := decode[models.Task](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "id", t.ID) {
		return
	}
	if t.Status != "" && !t.Status.Valid() {
		h.fail(w, r, errInvalidStatus("task", string(t.Status)))
		return
	}

	existing, err := h.db.GetTask(r.Context(), t.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := stamp("task", t.ID, &t.OrganizationID, existing.OrganizationID); err != nil {
		h.fail(w, r, err)
		return
	}
	if t.ProjectID == "" {
		t.ProjectID = existing.ProjectID
	}
	// a task may only move between projects of its own organization
	if t.ProjectID != existing.ProjectID {
		project, err := h.db.GetProject(r.Context(), t.ProjectID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if project.OrganizationID != existing.OrganizationID {
			h.fail(w, r, apperr.TenantBoundary("task", t.ID, existing.OrganizationID))
			return
		}
	}
	if t.Status == models.TaskCompleted && t.CompletedAt == nil {
		now := h.timestamp()
		t.CompletedAt = &now
	}
	if err := h.db.UpdateTask(r.Context(), t); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, t.ID)
}

// SetTaskStatus POST /task/status
func (h *TasksHandler) SetTaskStatus(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.TaskStatusRequest](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "id", req.ID, "status", string(req.Status)) {
		return
	}

	t, err := h.db.GetTask(r.Context(), req.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := t.SetStatus(req.Status); err != nil {
		h.fail(w, r, apperr.Validation("%v", err))
		return
	}
	if err := h.db.UpdateTask(r.Context(), t); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, t.ID)
}

// CompleteTask POST /task/complete
// The task's creator is notified unless they completed it themselves or the
// task was already completed. Task and notification commit together.
func (h *TasksHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.CompleteTaskRequest](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "taskId", req.TaskID, "completedBy", req.CompletedBy) {
		return
	}

	ctx := r.Context()
	t, err := h.db.GetTask(ctx, req.TaskID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	completer, err := h.db.GetUserByID(ctx, req.CompletedBy)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if completer.OrganizationID != t.OrganizationID {
		h.fail(w, r, apperr.TenantBoundary("user", completer.ID, t.OrganizationID))
		return
	}

	now := h.timestamp()
	report := req.Report()
	wasCompleted := t.Status == models.TaskCompleted
	n := models.CompletionNotification(h.newID(), *t, wasCompleted, completer, now, report)
	t.Complete(now, report)

	if err := h.db.CompleteTask(ctx, t, n); err != nil {
		h.fail(w, r, err)
		return
	}
	log.FromContext(ctx).Info("task completed", "task", t.ID, "by", completer.ID, "notified", n != nil)
	utils.WriteSuccessResponse(w, models.CompleteTaskResponse{
		Success:      true,
		CompletedAt:  models.Deref(t.CompletedAt),
		Notification: n,
	})
}

// UncompleteTask POST /task/uncomplete
func (h *TasksHandler) UncompleteTask(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.TaskRefRequest](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "taskId", req.TaskID) {
		return
	}

	t, err := h.db.GetTask(r.Context(), req.TaskID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	t.Reopen()
	if err := h.db.UpdateTask(r.Context(), t); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, t.ID)
}

// DeleteTask DELETE /task
func (h *TasksHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.db.DeleteTask)
}

// AddComment POST /task/comment
func (h *TasksHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	c, ok := decode[models.TaskComment](&h.base, w, r)
	if !ok {
		return
	}
	c.Message = strings.TrimSpace(c.Message)
	if !h.require(w, r, "taskId", c.TaskID, "userId", c.UserID, "message", c.Message) {
		return
	}

	t, err := h.db.GetTask(r.Context(), c.TaskID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c.ID = h.idOr(c.ID)
	if err := stamp("comment", c.ID, &c.OrganizationID, t.OrganizationID); err != nil {
		h.fail(w, r, err)
		return
	}
	if c.CreatedAt == "" {
		c.CreatedAt = h.timestamp()
	}
	if err := h.db.CreateTaskComment(r.Context(), c); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, c.ID)
}

// DeleteComment DELETE /task/comment
// With userId, only the author or an admin may delete.
func (h *TasksHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.IDRequest](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "id", req.ID) {
		return
	}

	ctx := r.Context()
	if req.UserID != "" {
		c, err := h.db.GetTaskComment(ctx, req.ID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		u, err := h.db.GetUserByID(ctx, req.UserID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if u.OrganizationID != c.OrganizationID || !c.CanDelete(u) {
			h.fail(w, r, apperr.Forbidden("user %s may not delete comment %s", u.ID, c.ID))
			return
		}
	}
	if err := h.db.DeleteTaskComment(ctx, req.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, req.ID)
}
