package database

import (
	"context"
	"errors"

	"buildsync-backend/pkg/apperr"
	"buildsync-backend/pkg/models"

	"github.com/jmoiron/sqlx"
)

// ReadSnapshot loads everything user can see in one read transaction, so a
// cascade delete that commits mid-read cannot leave children without their
// parent in the result. AsOf is left to the caller.
func (d *SQLDatabase) ReadSnapshot(ctx context.Context, user *models.User) (*models.Snapshot, error) {
	var snap *models.Snapshot
	err := d.withInvoiceAttachmentColumn(ctx, func() error {
		return d.readTransaction(ctx, func(tx *sqlx.Tx) (err error) {
			snap, err = d.readSnapshot(ctx, tx, user)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (d *SQLDatabase) readSnapshot(ctx context.Context, q sqlx.ExtContext, user *models.User) (*models.Snapshot, error) {
	orgID := user.OrganizationID
	snap := &models.Snapshot{User: user}

	org, err := d.getOrganization(ctx, q, orgID)
	switch {
	case errors.Is(err, apperr.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		snap.Organization = org
	}

	if snap.Users, err = d.listUsers(ctx, q, orgID); err != nil {
		return nil, err
	}
	if snap.Projects, err = d.listProjects(ctx, q, orgID); err != nil {
		return nil, err
	}
	if snap.Tasks, err = d.listTasks(ctx, q, orgID); err != nil {
		return nil, err
	}
	if snap.ProjectUpdates, err = d.listProjectUpdates(ctx, q, orgID); err != nil {
		return nil, err
	}
	if snap.Meetings, err = d.listMeetings(ctx, q, orgID); err != nil {
		return nil, err
	}
	if snap.Invoices, err = d.listInvoices(ctx, q, orgID); err != nil {
		return nil, err
	}
	if snap.Notifications, err = d.listNotifications(ctx, q, orgID, user.ID); err != nil {
		return nil, err
	}
	if snap.Reminders, err = d.listReminders(ctx, q, orgID); err != nil {
		return nil, err
	}
	if snap.OtherMatters, err = d.listOtherMatters(ctx, q, orgID); err != nil {
		return nil, err
	}
	return snap, nil
}
