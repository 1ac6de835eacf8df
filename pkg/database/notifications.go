package database

import (
	"context"
	"fmt"

	"buildsync-backend/pkg/models"

	"github.com/jmoiron/sqlx"
)

const notificationColumns = `id, organization_id, user_id, message, is_read, date, type, data`

func (d *SQLDatabase) CreateNotification(ctx context.Context, n *models.Notification) error {
	return d.createNotification(ctx, d.db, n)
}

func (d *SQLDatabase) createNotification(ctx context.Context, e sqlx.ExtContext, n *models.Notification) error {
	if n.Date == "" {
		n.Date = d.timestamp()
	}
	if n.Type == "" {
		n.Type = models.NotificationUrgent
	}
	_, err := d.namedExec(ctx, e, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES (:id, :organization_id, :user_id, :message, :is_read, :date, :type, :data)`, n)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// ListNotifications returns a recipient's feed, newest first.
func (d *SQLDatabase) ListNotifications(ctx context.Context, orgID, userID string) ([]models.Notification, error) {
	return d.listNotifications(ctx, d.db, orgID, userID)
}

func (d *SQLDatabase) listNotifications(ctx context.Context, q sqlx.ExtContext, orgID, userID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := d.selectAll(ctx, q, &notifications, `
		SELECT `+notificationColumns+` FROM notifications
		WHERE organization_id = ? AND user_id = ?
		ORDER BY date DESC, id`, orgID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (d *SQLDatabase) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := d.exec(ctx, d.db, `UPDATE notifications SET is_read = ? WHERE id = ?`, true, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return expectOne(res, "notification", id)
}
