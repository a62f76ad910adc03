package repositories

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_MarkRead(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresNotificationRepository(db)

	mock.ExpectExec(`UPDATE notifications SET is_read = TRUE WHERE id = \$1 AND recipient_id = \$2`).
		WithArgs(4, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE notifications SET is_read = TRUE WHERE id = \$1 AND recipient_id = \$2`).
		WithArgs(4, 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkRead(context.Background(), 1, 4))
	assert.ErrorIs(t, repo.MarkRead(context.Background(), 2, 4), ErrNotificationNotFound)
}

func TestNotificationRepository_CountUnread(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresNotificationRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.CountUnread(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
