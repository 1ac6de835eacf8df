package database

import (
	"context"
	"fmt"

	"buildsync-backend/pkg/models"

	"github.com/jmoiron/sqlx"
)

// ================= Meetings =================

const meetingColumns = `id, organization_id, title, date, time, project_id, attendees, address,
	description, assigned_to, completed, completed_by`

func (d *SQLDatabase) CreateMeeting(ctx context.Context, m *models.Meeting) error {
	m.Attendees = m.Attendees.OrEmpty()
	_, err := d.namedExec(ctx, d.db, `
		INSERT INTO meetings (`+meetingColumns+`)
		VALUES (:id, :organization_id, :title, :date, :time, :project_id, :attendees, :address,
			:description, :assigned_to, :completed, :completed_by)`, m)
	if err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

func (d *SQLDatabase) UpdateMeeting(ctx context.Context, m *models.Meeting) error {
	m.Attendees = m.Attendees.OrEmpty()
	res, err := d.namedExec(ctx, d.db, `
		UPDATE meetings
		SET title = :title, date = :date, time = :time, project_id = :project_id,
			attendees = :attendees, address = :address, description = :description,
			assigned_to = :assigned_to, completed = :completed, completed_by = :completed_by
		WHERE id = :id AND organization_id = :organization_id`, m)
	if err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}
	return expectOne(res, "meeting", m.ID)
}

func (d *SQLDatabase) GetMeeting(ctx context.Context, id string) (*models.Meeting, error) {
	var m models.Meeting
	if err := d.get(ctx, d.db, &m, `SELECT `+meetingColumns+` FROM meetings WHERE id = ?`, id); err != nil {
		return nil, notFound(err, "meeting", id)
	}
	return &m, nil
}

func (d *SQLDatabase) ListMeetings(ctx context.Context, orgID string) ([]models.Meeting, error) {
	return d.listMeetings(ctx, d.db, orgID)
}

func (d *SQLDatabase) listMeetings(ctx context.Context, q sqlx.ExtContext, orgID string) ([]models.Meeting, error) {
	meetings := []models.Meeting{}
	err := d.selectAll(ctx, q, &meetings,
		`SELECT `+meetingColumns+` FROM meetings WHERE organization_id = ? ORDER BY date, time, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return meetings, nil
}

func (d *SQLDatabase) DeleteMeeting(ctx context.Context, id string) error {
	res, err := d.exec(ctx, d.db, `DELETE FROM meetings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}
	return expectOne(res, "meeting", id)
}

// ================= Reminders =================

const reminderColumns = `id, organization_id, title, description, date, completed, assigned_to, completed_by`

func (d *SQLDatabase) CreateReminder(ctx context.Context, r *models.Reminder) error {
	_, err := d.namedExec(ctx, d.db, `
		INSERT INTO reminders (`+reminderColumns+`)
		VALUES (:id, :organization_id, :title, :description, :date, :completed, :assigned_to, :completed_by)`, r)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (d *SQLDatabase) UpdateReminder(ctx context.Context, r *models.Reminder) error {
	res, err := d.namedExec(ctx, d.db, `
		UPDATE reminders
		SET title = :title, description = :description, date = :date, completed = :completed,
			assigned_to = :assigned_to, completed_by = :completed_by
		WHERE id = :id AND organization_id = :organization_id`, r)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return expectOne(res, "reminder", r.ID)
}

func (d *SQLDatabase) ListReminders(ctx context.Context, orgID string) ([]models.Reminder, error) {
	return d.listReminders(ctx, d.db, orgID)
}

func (d *SQLDatabase) listReminders(ctx context.Context, q sqlx.ExtContext, orgID string) ([]models.Reminder, error) {
	reminders := []models.Reminder{}
	err := d.selectAll(ctx, q, &reminders,
		`SELECT `+reminderColumns+` FROM reminders WHERE organization_id = ? ORDER BY date, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (d *SQLDatabase) DeleteReminder(ctx context.Context, id string) error {
	res, err := d.exec(ctx, d.db, `DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return expectOne(res, "reminder", id)
}

// ================= Other matters =================

const otherMatterColumns = `id, organization_id, title, address, note, date`

func (d *SQLDatabase) CreateOtherMatter(ctx context.Context, m *models.OtherMatter) error {
	_, err := d.namedExec(ctx, d.db, `
		INSERT INTO other_matters (`+otherMatterColumns+`)
		VALUES (:id, :organization_id, :title, :address, :note, :date)`, m)
	if err != nil {
		return fmt.Errorf("failed to create other matter: %w", err)
	}
	return nil
}

func (d *SQLDatabase) UpdateOtherMatter(ctx context.Context, m *models.OtherMatter) error {
	res, err := d.namedExec(ctx, d.db, `
		UPDATE other_matters
		SET title = :title, address = :address, note = :note, date = :date
		WHERE id = :id AND organization_id = :organization_id`, m)
	if err != nil {
		return fmt.Errorf("failed to update other matter: %w", err)
	}
	return expectOne(res, "other matter", m.ID)
}

func (d *SQLDatabase) ListOtherMatters(ctx context.Context, orgID string) ([]models.OtherMatter, error) {
	return d.listOtherMatters(ctx, d.db, orgID)
}

func (d *SQLDatabase) listOtherMatters(ctx context.Context, q sqlx.ExtContext, orgID string) ([]models.OtherMatter, error) {
	matters := []models.OtherMatter{}
	err := d.selectAll(ctx, q, &matters,
		`SELECT `+otherMatterColumns+` FROM other_matters WHERE organization_id = ? ORDER BY date DESC, id`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list other matters: %w", err)
	}
	return matters, nil
}

func (d *SQLDatabase) DeleteOtherMatter(ctx context.Context, id string) error {
	res, err := d.exec(ctx, d.db, `DELETE FROM other_matters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete other matter: %w", err)
	}
	return expectOne(res, "other matter", id)
}
