package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/sport-events/models"
)

func TestParticipantRepository_CreateConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresParticipantRepository(db)

	mock.ExpectQuery(`INSERT INTO event_participants`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "event_participants_event_user_key"})

	err := repo.Create(context.Background(), nil, &models.Participant{EventID: 1, UserID: 2, Status: models.ParticipantPending})
	assert.ErrorIs(t, err, ErrParticipantConflict)
}

func TestParticipantRepository_CreateInTransaction(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresParticipantRepository(db)
	joined := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO event_participants`).
		WithArgs(1, 2, models.ParticipantConfirmed, sqlmock.AnyArg(), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "joined_at"}).AddRow(15, joined))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	p := &models.Participant{EventID: 1, UserID: 2, Status: models.ParticipantConfirmed, ConfirmedAt: &joined}
	require.NoError(t, repo.Create(context.Background(), tx, p))
	require.NoError(t, tx.Commit())

	assert.Equal(t, 15, p.ID)
	assert.Equal(t, joined, p.JoinedAt)
}

func TestParticipantRepository_HistoryByUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresParticipantRepository(db)

	mock.ExpectQuery(`FROM event_participants p\s+JOIN events e`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "sport_id", "status", "rating"}).
			AddRow(1, 3, "confirmed", 5).
			AddRow(2, 3, "cancelled", nil))

	history, err := repo.HistoryByUser(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, history, 2)

	assert.Equal(t, models.ParticipantConfirmed, history[0].Status)
	require.NotNil(t, history[0].Rating)
	assert.Equal(t, 5, *history[0].Rating)
	assert.Nil(t, history[1].Rating)
}

func TestParticipantRepository_UpdateStatusNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresParticipantRepository(db)

	mock.ExpectExec(`UPDATE event_participants`).
		WithArgs(models.ParticipantRejected, nil, 9).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), nil, 9, models.ParticipantRejected, nil)
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestParticipantRepository_ListByEvent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPostgresParticipantRepository(db)
	joined := time.Now()

	mock.ExpectQuery(`FROM event_participants p\s+JOIN users u`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "event_id", "user_id", "status", "joined_at", "confirmed_at", "notes", "rating", "feedback",
			"username", "first_name", "last_name",
		}).AddRow(1, 4, 8, "pending", joined, nil, "bringing a ball", nil, nil, "bela", "", ""))

	participants, err := repo.ListByEvent(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, models.ParticipantPending, participants[0].Status)
	require.NotNil(t, participants[0].User)
	assert.Equal(t, 8, participants[0].User.ID)
	assert.Equal(t, "bela", participants[0].User.FullName)
}

func participantRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "event_id", "user_id", "status", "joined_at", "confirmed_at", "notes", "rating", "feedback",
		"username", "first_name", "last_name",
	})
}

func TestParticipantRepository_LockingReadsUseTransaction(t *testing.T) {
	joined := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("by id", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresParticipantRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`WHERE p\.id = \$1 AND p\.event_id = \$2 FOR UPDATE OF p`).
			WithArgs(7, 3).
			WillReturnRows(participantRows().AddRow(7, 3, 2, "pending", joined, nil, nil, nil, nil, "anna", "Anna", "K"))
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		p, err := repo.GetByIDForUpdate(context.Background(), tx, 3, 7)
		require.NoError(t, err)
		require.NoError(t, tx.Rollback())

		assert.Equal(t, models.ParticipantPending, p.Status)
		assert.Equal(t, "anna", p.User.Username)
	})

	t.Run("by event and user", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewPostgresParticipantRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`WHERE p\.event_id = \$1 AND p\.user_id = \$2 FOR UPDATE OF p`).
			WithArgs(3, 2).
			WillReturnRows(participantRows())
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		_, err = repo.GetByEventAndUserForUpdate(context.Background(), tx, 3, 2)
		require.NoError(t, tx.Rollback())

		assert.ErrorIs(t, err, ErrParticipantNotFound)
	})
}
