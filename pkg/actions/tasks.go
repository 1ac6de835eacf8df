package actions

import (
	"context"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/store"
)

// AddTask appends a pending task to projectID. The current user becomes the
// creator unless t names one.
func (a *Actions) AddTask(ctx context.Context, projectID string, t models.Task) (models.Task, error) {
	s, err := a.begin("addTask")
	if err != nil {
		return t, err
	}
	if err := models.RequireFields("title", t.Title); err != nil {
		return t, err
	}
	if _, ok := s.view.Project(projectID); !ok {
		return t, apperr.NotFound("project", projectID)
	}
	t.ID = a.idOr(t.ID)
	t.ProjectID = projectID
	t.OrganizationID = s.org.ID
	t.Status = models.TaskPending
	t.Comments = nil
	if t.CreatedBy == nil {
		t.CreatedBy = models.StrPtr(s.user.ID)
	}
	t.Normalize()

	if err := a.gw.CreateTask(ctx, t); err != nil {
		return t, err
	}
	a.apply("addTask", func(st *store.State) { st.UpsertTask(t) })
	return t, nil
}

// UpdateTask replaces the task by id. Comments are not part of the write.
func (a *Actions) UpdateTask(ctx context.Context, t models.Task) error {
	s, err := a.begin("updateTask")
	if err != nil {
		return err
	}
	if _, ok := s.view.Task(t.ID); !ok {
		return apperr.NotFound("task", t.ID)
	}
	if _, ok := s.view.Project(t.ProjectID); !ok {
		return apperr.NotFound("project", t.ProjectID)
	}
	if t.Status != "" && !t.Status.Valid() {
		return apperr.Validation("unknown task status %q", t.Status)
	}
	t.OrganizationID = s.org.ID
	t.Comments = nil
	if t.Status == models.TaskCompleted && t.CompletedAt == nil {
		now := a.timestamp()
		t.CompletedAt = &now
	}
	t.Normalize()

	if err := a.gw.UpdateTask(ctx, t); err != nil {
		return err
	}
	a.apply("updateTask", func(st *store.State) { st.UpsertTask(t) })
	return nil
}

// SetTaskStatus moves a task between pending and in-progress.
func (a *Actions) SetTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	s, err := a.begin("setTaskStatus")
	if err != nil {
		return err
	}
	t, ok := s.view.Task(id)
	if !ok {
		return apperr.NotFound("task", id)
	}
	if err := t.SetStatus(status); err != nil {
		return apperr.Validation("%s", err)
	}
	if err := a.gw.SetTaskStatus(ctx, id, status); err != nil {
		return err
	}
	a.apply("setTaskStatus", func(st *store.State) {
		st.UpdateTask(id, func(t *models.Task) {
			if t.Status != models.TaskCompleted {
				t.Status = status
			}
		})
	})
	return nil
}

// CompleteTask marks the task completed by the current user. Completing an
// already completed task only replaces the report. The server decides whether
// the creator is notified; the returned notification, if any, is added to
// the feed.
func (a *Actions) CompleteTask(ctx context.Context, id string, report models.CompletionReport) (*models.CompleteTaskResponse, error) {
	s, err := a.begin("completeTask")
	if err != nil {
		return nil, err
	}
	if _, ok := s.view.Task(id); !ok {
		return nil, apperr.NotFound("task", id)
	}
	req := models.CompleteTaskRequest{
		TaskID:           id,
		CompletedBy:      s.user.ID,
		Note:             report.Note,
		Image:            report.Image,
		CompletionImages: report.Images.OrEmpty().Clone(),
	}
	resp, err := a.gw.CompleteTask(ctx, req)
	if err != nil {
		return nil, err
	}
	completedAt := resp.CompletedAt
	if completedAt == "" {
		completedAt = a.timestamp()
	}
	report = req.Report()
	var n *models.Notification
	if resp.Notification != nil {
		cp := *resp.Notification
		n = &cp
	}

	a.apply("completeTask", func(st *store.State) {
		st.UpdateTask(id, func(t *models.Task) { t.Complete(completedAt, report) })
		if n != nil {
			st.AddNotification(*n)
		}
	})
	if n != nil {
		a.logger.Debug("task completion notified creator", "task", id, "recipient", n.UserID)
	}
	return resp, nil
}

// UncompleteTask reopens the task. It always lands on pending and the
// completion report is discarded; an earlier notification stays.
func (a *Actions) UncompleteTask(ctx context.Context, id string) error {
	s, err := a.begin("uncompleteTask")
	if err != nil {
		return err
	}
	if _, ok := s.view.Task(id); !ok {
		return apperr.NotFound("task", id)
	}
	if err := a.gw.UncompleteTask(ctx, id); err != nil {
		return err
	}
	a.apply("uncompleteTask", func(st *store.State) {
		st.UpdateTask(id, func(t *models.Task) { t.Reopen() })
	})
	return nil
}

// DeleteTask removes the task and its comments.
func (a *Actions) DeleteTask(ctx context.Context, id string) error {
	s, err := a.begin("deleteTask")
	if err != nil {
		return err
	}
	if _, ok := s.view.Task(id); !ok {
		return apperr.NotFound("task", id)
	}
	if err := a.gw.DeleteTask(ctx, id); err != nil {
		return err
	}
	a.apply("deleteTask", func(st *store.State) { st.RemoveTask(id) })
	return nil
}

// AddComment appends a comment by the current user to the task.
func (a *Actions) AddComment(ctx context.Context, taskID, message string, images models.List) (models.TaskComment, error) {
	var c models.TaskComment
	s, err := a.begin("addComment")
	if err != nil {
		return c, err
	}
	if err := models.RequireFields("message", message); err != nil {
		return c, err
	}
	if _, ok := s.view.Task(taskID); !ok {
		return c, apperr.NotFound("task", taskID)
	}
	c = models.TaskComment{
		ID:             a.newID(),
		TaskID:         taskID,
		OrganizationID: s.org.ID,
		UserID:         s.user.ID,
		Message:        message,
		Images:         images.OrEmpty().Clone(),
		CreatedAt:      a.timestamp(),
	}
	if err := a.gw.AddComment(ctx, c); err != nil {
		return c, err
	}
	a.apply("addComment", func(st *store.State) { st.UpsertComment(c) })
	return c, nil
}

// DeleteComment removes a comment. Only its author or an admin may do so.
func (a *Actions) DeleteComment(ctx context.Context, taskID, commentID string) error {
	s, err := a.begin("deleteComment")
	if err != nil {
		return err
	}
	t, ok := s.view.Task(taskID)
	if !ok {
		return apperr.NotFound("task", taskID)
	}
	c, ok := find(t.Comments, commentID, func(c models.TaskComment) string { return c.ID })
	if !ok {
		return apperr.NotFound("comment", commentID)
	}
	if !c.CanDelete(s.user) {
		return apperr.Forbidden("only the author or an admin may delete comment %s", commentID)
	}
	if err := a.gw.DeleteComment(ctx, commentID, s.user.ID); err != nil {
		return err
	}
	a.apply("deleteComment", func(st *store.State) { st.RemoveComment(taskID, commentID) })
	return nil
}
