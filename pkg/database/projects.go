package database

import (
	"context"
	"fmt"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"

	"github.com/jmoiron/sqlx"
)

const projectColumns = `id, organization_id, name, address, client_name, client_email, client_phone,
	status, progress, start_date, end_date, color`

// projectRow carries the insertion time, which orders list results but is
// not part of the wire model.
type projectRow struct {
	models.Project
	CreatedAt string `db:"created_at"`
}

func (d *SQLDatabase) CreateProject(ctx context.Context, p *models.Project) error {
	p.Normalize()
	_, err := d.namedExec(ctx, d.db, `
		INSERT INTO projects (`+projectColumns+`, created_at)
		VALUES (:id, :organization_id, :name, :address, :client_name, :client_email, :client_phone,
			:status, :progress, :start_date, :end_date, :color, :created_at)`,
		projectRow{Project: *p, CreatedAt: d.timestamp()})
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// UpdateProject is a full replace by id within the project's organization.
func (d *SQLDatabase) UpdateProject(ctx context.Context, p *models.Project) error {
	p.Normalize()
	res, err := d.namedExec(ctx, d.db, `
		UPDATE projects
		SET name = :name, address = :address, client_name = :client_name,
			client_email = :client_email, client_phone = :client_phone, status = :status,
			progress = :progress, start_date = :start_date, end_date = :end_date, color = :color
		WHERE id = :id AND organization_id = :organization_id`, p)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return expectOne(res, "project", p.ID)
}

func (d *SQLDatabase) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var p models.Project
	if err := d.get(ctx, d.db, &p, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "project", id)
	}
	p.Normalize()
	return &p, nil
}

func (d *SQLDatabase) ListProjects(ctx context.Context, orgID string) ([]models.Project, error) {
	return d.listProjects(ctx, d.db, orgID)
}

func (d *SQLDatabase) listProjects(ctx context.Context, q sqlx.ExtContext, orgID string) ([]models.Project, error) {
	projects := []models.Project{}
	err := d.selectAll(ctx, q, &projects,
		`SELECT `+projectColumns+` FROM projects WHERE organization_id = ? ORDER BY created_at, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	for i := range projects {
		projects[i].Normalize()
	}
	return projects, nil
}

// projectCascade lists the dependent rows of a project, deepest children
// first. Each statement takes the project id as its only argument.
var projectCascade = []struct {
	table string
	query string
}{
	{"task_comments", `DELETE FROM task_comments WHERE task_id IN (SELECT id FROM tasks WHERE project_id = ?)`},
	{"tasks", `DELETE FROM tasks WHERE project_id = ?`},
	{"project_updates", `DELETE FROM project_updates WHERE project_id = ?`},
	{"invoices", `DELETE FROM invoices WHERE project_id = ?`},
	{"meetings", `DELETE FROM meetings WHERE project_id = ?`},
}

// DeleteProject issues the whole cascade in one transaction. A failure at any
// step rolls back every earlier step, so no reader sees orphans.
func (d *SQLDatabase) DeleteProject(ctx context.Context, id string) error {
	removed := map[string]int64{}
	err := d.transaction(ctx, func(tx *sqlx.Tx) error {
		for _, step := range projectCascade {
			res, err := d.exec(ctx, tx, step.query, id)
			if err != nil {
				return fmt.Errorf("failed to delete %s of project %s: %w", step.table, id, err)
			}
			if n, err := res.RowsAffected(); err == nil {
				removed[step.table] = n
			}
		}
		res, err := d.exec(ctx, tx, `DELETE FROM projects WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		return expectOne(res, "project", id)
	})
	if err != nil {
		return err
	}
	d.logger.Info("project deleted", "id", id,
		"tasks", removed["tasks"], "comments", removed["task_comments"],
		"updates", removed["project_updates"], "invoices", removed["invoices"],
		"meetings", removed["meetings"])
	return nil
}

// ================= Project updates =================

const projectUpdateColumns = `id, project_id, organization_id, message, date, author_name, user_id`

func (d *SQLDatabase) CreateProjectUpdate(ctx context.Context, u *models.ProjectUpdate) error {
	_, err := d.namedExec(ctx, d.db, `
		INSERT INTO project_updates (`+projectUpdateColumns+`)
		VALUES (:id, :project_id, :organization_id, :message, :date, :author_name, :user_id)`, u)
	if err != nil {
		return fmt.Errorf("failed to create project update: %w", err)
	}
	return nil
}

// EditProjectUpdate only rewrites the message.
func (d *SQLDatabase) EditProjectUpdate(ctx context.Context, id, message string) error {
	if id == "" {
		return apperr.Validation("id is required")
	}
	res, err := d.exec(ctx, d.db, `UPDATE project_updates SET message = ? WHERE id = ?`, message, id)
	if err != nil {
		return fmt.Errorf("failed to edit project update: %w", err)
	}
	return expectOne(res, "project update", id)
}

func (d *SQLDatabase) DeleteProjectUpdate(ctx context.Context, id string) error {
	res, err := d.exec(ctx, d.db, `DELETE FROM project_updates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project update: %w", err)
	}
	return expectOne(res, "project update", id)
}

func (d *SQLDatabase) ListProjectUpdates(ctx context.Context, orgID string) ([]models.ProjectUpdate, error) {
	return d.listProjectUpdates(ctx, d.db, orgID)
}

func (d *SQLDatabase) listProjectUpdates(ctx context.Context, q sqlx.ExtContext, orgID string) ([]models.ProjectUpdate, error) {
	updates := []models.ProjectUpdate{}
	err := d.selectAll(ctx, q, &updates,
		`SELECT `+projectUpdateColumns+` FROM project_updates WHERE organization_id = ? ORDER BY date DESC, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list project updates: %w", err)
	}
	return updates, nil
}
