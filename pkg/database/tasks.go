package database

import (
	"context"
	"fmt"

	"buildsync-backend/pkg/models"

	"github.com/jmoiron/sqlx"
)

const taskColumns = `id, project_id, organization_id, title, description, assigned_to, status,
	required_date, completed_at, completion_note, completion_image, completion_images,
	created_by, attachments`

const updateTask = `
	UPDATE tasks
	SET project_id = :project_id, title = :title, description = :description,
		assigned_to = :assigned_to, status = :status, required_date = :required_date,
		completed_at = :completed_at, completion_note = :completion_note,
		completion_image = :completion_image, completion_images = :completion_images,
		created_by = :created_by, attachments = :attachments
	WHERE id = :id AND organization_id = :organization_id`

type taskRow struct {
	models.Task
	CreatedAt string `db:"created_at"`
}

func (d *SQLDatabase) CreateTask(ctx context.Context, t *models.Task) error {
	t.Normalize()
	_, err := d.namedExec(ctx, d.db, `
		INSERT INTO tasks (`+taskColumns+`, created_at)
		VALUES (:id, :project_id, :organization_id, :title, :description, :assigned_to, :status,
			:required_date, :completed_at, :completion_note, :completion_image, :completion_images,
			:created_by, :attachments, :created_at)`,
		taskRow{Task: *t, CreatedAt: d.timestamp()})
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// UpdateTask is a full replace by id. Normalize runs first so a task that is
// not completed never keeps a completion report in storage.
func (d *SQLDatabase) UpdateTask(ctx context.Context, t *models.Task) error {
	return d.updateTask(ctx, d.db, t)
}

func (d *SQLDatabase) updateTask(ctx context.Context, e sqlx.ExtContext, t *models.Task) error {
	t.Normalize()
	res, err := d.namedExec(ctx, e, updateTask, t)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	return expectOne(res, "task", t.ID)
}

func (d *SQLDatabase) CompleteTask(ctx context.Context, t *models.Task, n *models.Notification) error {
	return d.transaction(ctx, func(tx *sqlx.Tx) error {
		if err := d.updateTask(ctx, tx, t); err != nil {
			return err
		}
		if n == nil {
			return nil
		}
		return d.createNotification(ctx, tx, n)
	})
}

// GetTask returns the task with its comments.
func (d *SQLDatabase) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := d.get(ctx, d.db, &t, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "task", id)
	}
	comments := []models.TaskComment{}
	err := d.selectAll(ctx, d.db, &comments,
		`SELECT `+commentColumns+` FROM task_comments WHERE task_id = ? ORDER BY created_at, id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	t.Comments = comments
	t.Normalize()
	return &t, nil
}

func (d *SQLDatabase) ListTasks(ctx context.Context, orgID string) ([]models.Task, error) {
	return d.listTasks(ctx, d.db, orgID)
}

func (d *SQLDatabase) listTasks(ctx context.Context, q sqlx.ExtContext, orgID string) ([]models.Task, error) {
	tasks := []models.Task{}
	err := d.selectAll(ctx, q, &tasks,
		`SELECT `+taskColumns+` FROM tasks WHERE organization_id = ? ORDER BY created_at, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	comments := []models.TaskComment{}
	err = d.selectAll(ctx, q, &comments,
		`SELECT `+commentColumns+` FROM task_comments WHERE organization_id = ? ORDER BY created_at, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	byTask := make(map[string][]models.TaskComment, len(tasks))
	for _, c := range comments {
		byTask[c.TaskID] = append(byTask[c.TaskID], c)
	}

	for i := range tasks {
		tasks[i].Comments = byTask[tasks[i].ID]
		tasks[i].Normalize()
	}
	return tasks, nil
}

// DeleteTask removes the task and its comments together.
func (d *SQLDatabase) DeleteTask(ctx context.Context, id string) error {
	return d.transaction(ctx, func(tx *sqlx.Tx) error {
		if _, err := d.exec(ctx, tx, `DELETE FROM task_comments WHERE task_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete task comments: %w", err)
		}
		res, err := d.exec(ctx, tx, `DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return expectOne(res, "task", id)
	})
}

// ================= Comments =================

const commentColumns = `id, task_id, organization_id, user_id, message, images, created_at`

func (d *SQLDatabase) CreateTaskComment(ctx context.Context, c *models.TaskComment) error {
	c.Images = c.Images.OrEmpty()
	if c.CreatedAt == "" {
		c.CreatedAt = d.timestamp()
	}
	_, err := d.namedExec(ctx, d.db, `
		INSERT INTO task_comments (`+commentColumns+`)
		VALUES (:id, :task_id, :organization_id, :user_id, :message, :images, :created_at)`, c)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

func (d *SQLDatabase) GetTaskComment(ctx context.Context, id string) (*models.TaskComment, error) {
	var c models.TaskComment
	if err := d.get(ctx, d.db, &c, `SELECT `+commentColumns+` FROM task_comments WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "comment", id)
	}
	return &c, nil
}

func (d *SQLDatabase) DeleteTaskComment(ctx context.Context, id string) error {
	res, err := d.exec(ctx, d.db, `DELETE FROM task_comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return expectOne(res, "comment", id)
}
