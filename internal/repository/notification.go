package repository

import (
	"context"

	"podapi/internal/model"
)

// NotificationRepository persists user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Notification, error)
}
