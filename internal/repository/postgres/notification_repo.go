package postgres

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/model"
)

// NotificationRepo implements NotificationRepository using PostgreSQL.
type NotificationRepo struct{ db *DB }

// NewNotificationRepo constructs a notification repository.
func NewNotificationRepo(db *DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts a new notification row.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	const q = `
INSERT INTO notifications (id, user_id, type, title, message,
  from_user_id, from_user_name, from_user_avatar, action_url, read)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,false)`
	_, err := r.db.Pool.Exec(ctx, q,
		n.ID, n.UserID, n.Type, n.Title, n.Message,
		n.FromUserID, n.FromUserName, n.FromUserAvatar, n.ActionURL)
	return err
}

// ListForUser returns up to limit notifications for a recipient, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]model.Notification, error) {
	const q = `
SELECT id, user_id, type, title, message,
  from_user_id, from_user_name, from_user_avatar, action_url, read, created_at
FROM notifications
WHERE user_id=$1
ORDER BY created_at DESC
LIMIT $2`
	rows, err := r.db.Pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.FromUserID, &n.FromUserName, &n.FromUserAvatar, &n.ActionURL,
			&n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a notification as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	const q = `UPDATE notifications SET read=true WHERE id=$1 AND user_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, notificationID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
