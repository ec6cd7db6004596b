package postgres

import (
	"context"
	"database/sql"

	"podapi/internal/model"
	"podapi/internal/repository"
)

// NotificationPostgres is a PostgreSQL implementation of repository.NotificationRepository.
type NotificationPostgres struct {
	db *sql.DB
}

// NewNotificationPostgres creates a new NotificationPostgres repository.
func NewNotificationPostgres(db *sql.DB) *NotificationPostgres {
	return &NotificationPostgres{db: db}
}

var _ repository.NotificationRepository = (*NotificationPostgres)(nil)

func (r *NotificationPostgres) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	const q = `
		INSERT INTO notifications (text, related_url, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, text, related_url, timestamp, user_id
	`
	var out model.Notification
	if err := r.db.QueryRowContext(ctx, q, n.Text, n.RelatedURL, n.UserID).Scan(
		&out.ID,
		&out.Text,
		&out.RelatedURL,
		&out.Timestamp,
		&out.UserID,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationPostgres) ListByUser(ctx context.Context, userID int64) ([]model.Notification, error) {
	const q = `
		SELECT id, text, related_url, timestamp, user_id
		FROM notifications
		WHERE user_id = $1
		ORDER BY timestamp DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Notification, 0)
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.Text, &n.RelatedURL, &n.Timestamp, &n.UserID); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
