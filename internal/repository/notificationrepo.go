package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/portaltarot/oraculo/internal/model"
)

// NotificationRepository stores informational records addressed to users.
type NotificationRepository interface {
	// Create inserts a new notification.
	Create(ctx context.Context, n *model.Notification) error
	// ListForUser returns up to limit notifications for a recipient, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error)
	// MarkRead flags a notification as read. Returns errs.ErrNotFound if absent.
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}
