package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"

	"github.com/portaltarot/oraculo/internal/errs"
	"github.com/portaltarot/oraculo/internal/model"
)

func TestNotificationRepo_Create_OK(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNotificationRepo(db)

	n := &model.Notification{
		ID:             uuid.Must(uuid.NewV4()),
		UserID:         uuid.Must(uuid.NewV4()),
		Type:           model.NotificationNewConnection,
		Title:          "Nova Conexão!",
		Message:        "Luna conectou-se com você",
		FromUserID:     uuid.Must(uuid.NewV4()),
		FromUserName:   "Luna",
		FromUserAvatar: "https://cdn.example/luna.png",
		ActionURL:      "/perfil/luna",
	}

	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(n.ID, n.UserID, n.Type, n.Title, n.Message,
			n.FromUserID, n.FromUserName, n.FromUserAvatar, n.ActionURL).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, r.Create(context.Background(), n))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_ListForUser(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNotificationRepo(db)

	userID := uuid.Must(uuid.NewV4())
	fromID := uuid.Must(uuid.NewV4())
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "type", "title", "message",
		"from_user_id", "from_user_name", "from_user_avatar", "action_url", "read", "created_at",
	}).
		AddRow(uuid.Must(uuid.NewV4()), userID, model.NotificationNewConnection,
			"Nova Conexão!", "Sol conectou-se com você",
			fromID, "Sol", "https://cdn.example/sol.png", "/perfil/sol", false, now).
		AddRow(uuid.Must(uuid.NewV4()), userID, model.NotificationNewConnection,
			"Nova Conexão!", "Luna conectou-se com você",
			fromID, "Luna", "https://cdn.example/luna.png", "/perfil/luna", true, now.Add(-time.Hour))

	mock.ExpectQuery(`FROM notifications`).
		WithArgs(userID, 20).
		WillReturnRows(rows)

	got, err := r.ListForUser(context.Background(), userID, 20)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "Sol", got[0].FromUserName)
	require.False(t, got[0].Read)
	require.True(t, got[1].Read)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationRepo_MarkRead_NotFound(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewNotificationRepo(db)

	userID := uuid.Must(uuid.NewV4())
	notifID := uuid.Must(uuid.NewV4())

	mock.ExpectExec(`UPDATE notifications SET read=true`).
		WithArgs(notifID, userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := r.MarkRead(context.Background(), userID, notifID)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
