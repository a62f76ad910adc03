package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sport-events/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, n *models.Notification) error
	ListByRecipient(ctx context.Context, recipientID int) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipientID int) (int, error)
	MarkAllRead(ctx context.Context, recipientID int) (int64, error)
	MarkRead(ctx context.Context, recipientID, id int) error
}

type postgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) Create(ctx context.Context, exec SQLExecutor, n *models.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, notification_type, title, message, related_event_id, related_event_title)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_read, created_at`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		n.RecipientID, n.Type, n.Title, n.Message, n.RelatedEventID, n.RelatedEventTitle,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *postgresNotificationRepository) ListByRecipient(ctx context.Context, recipientID int) ([]models.Notification, error) {
	query := `
		SELECT id, recipient_id, notification_type, title, message, is_read, related_event_id, related_event_title, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]models.Notification, 0)
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.Type, &n.Title, &n.Message, &n.IsRead,
			&n.RelatedEventID, &n.RelatedEventTitle, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *postgresNotificationRepository) CountUnread(ctx context.Context, recipientID int) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`, recipientID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (r *postgresNotificationRepository) MarkAllRead(ctx context.Context, recipientID int) (int64, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

func (r *postgresNotificationRepository) MarkRead(ctx context.Context, recipientID, id int) error {
	result, err := r.db.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return checkAffectedRows(result, ErrNotificationNotFound)
}
