package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/sport-events/live"
	"github.com/Dosada05/sport-events/models"
)

type participantFixture struct {
	svc           *participantService
	mock          sqlmock.Sqlmock
	events        *fakeEventRepo
	participants  *fakeParticipantRepo
	notifications *fakeNotificationRepo
	pub           *fakePublisher
}

func newParticipantFixture(t *testing.T, events []*models.Event, participants ...*models.Participant) *participantFixture {
	t.Helper()
	db, mock := newMockDB(t)
	f := &participantFixture{
		mock:          mock,
		events:        newFakeEventRepo(events...),
		participants:  newFakeParticipantRepo(participants...),
		notifications: &fakeNotificationRepo{},
		pub:           &fakePublisher{},
	}
	users := newFakeUserRepo(
		&models.User{ID: 1, Username: "creator", IsActive: true},
		&models.User{ID: 2, Username: "anna", FirstName: "Anna", LastName: "Kovács", IsActive: true},
		&models.User{ID: 3, Username: "bela", IsActive: true},
	)
	f.svc = NewParticipantService(db, f.events, f.participants, users, f.notifications, f.pub, discardLogger()).(*participantService)
	f.svc.now = fixedNow
	return f
}

func upcomingEvent(id int, requiresApproval bool, max int) *models.Event {
	return &models.Event{
		ID:               id,
		Title:            "Sunday football",
		CreatorID:        1,
		StartDateTime:    testNow.Add(24 * time.Hour),
		MaxParticipants:  max,
		RequiresApproval: requiresApproval,
		Status:           models.EventStatusUpcoming,
		IsPublic:         true,
	}
}

func TestParticipantService_JoinAutoConfirms(t *testing.T) {
	f := newParticipantFixture(t, []*models.Event{upcomingEvent(10, false, 5)})
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	p, err := f.svc.JoinEvent(context.Background(), 2, 10, JoinEventInput{Notes: strPtr("bringing a ball")})
	require.NoError(t, err)

	assert.Equal(t, models.ParticipantConfirmed, p.Status)
	require.NotNil(t, p.ConfirmedAt)
	assert.Equal(t, testNow, *p.ConfirmedAt)
	require.NotNil(t, p.User)
	assert.Equal(t, "anna", p.User.Username)

	require.Len(t, f.notifications.created, 1)
	n := f.notifications.created[0]
	assert.Equal(t, 1, n.RecipientID)
	assert.Equal(t, models.NotificationJoinRequest, n.Type)
	assert.Contains(t, n.Message, "bringing a ball")
	assert.Equal(t, 10, *n.RelatedEventID)

	require.Len(t, f.pub.messages, 1)
	msg := f.pub.messages[0]
	assert.Equal(t, live.MessageParticipantsUpdated, msg.Type)
	assert.Equal(t, ParticipantsUpdate{EventID: 10, UserID: 2, Status: models.ParticipantConfirmed, ConfirmedCount: 1}, msg.Payload)
}

func TestParticipantService_JoinPendingWhenApprovalRequired(t *testing.T) {
	f := newParticipantFixture(t, []*models.Event{upcomingEvent(10, true, 5)})
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	p, err := f.svc.JoinEvent(context.Background(), 2, 10, JoinEventInput{})
	require.NoError(t, err)
	assert.Equal(t, models.ParticipantPending, p.Status)
	assert.Nil(t, p.ConfirmedAt)
}

func TestParticipantService_JoinRejections(t *testing.T) {
	past := upcomingEvent(11, false, 5)
	past.StartDateTime = testNow.Add(-time.Minute)
	ongoing := upcomingEvent(12, false, 5)
	ongoing.Status = models.EventStatusOngoing

	tests := []struct {
		name    string
		eventID int
		want    error
	}{
		{"full", 10, ErrEventFull},
		{"past", 11, ErrEventPast},
		{"not upcoming", 12, ErrEventNotUpcoming},
		{"already joined with any status", 13, ErrAlreadyJoined},
		{"missing event", 99, ErrEventNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newParticipantFixture(t,
				[]*models.Event{upcomingEvent(10, false, 2), past, ongoing, upcomingEvent(13, false, 5)},
				&models.Participant{ID: 1, EventID: 10, UserID: 1, Status: models.ParticipantConfirmed},
				&models.Participant{ID: 2, EventID: 10, UserID: 3, Status: models.ParticipantConfirmed},
				&models.Participant{ID: 3, EventID: 13, UserID: 2, Status: models.ParticipantCancelled},
			)
			f.mock.ExpectBegin()
			f.mock.ExpectRollback()

			_, err := f.svc.JoinEvent(context.Background(), 2, tt.eventID, JoinEventInput{})
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, f.notifications.created)
			assert.Empty(t, f.pub.messages)
		})
	}
}

func TestParticipantService_LeaveEvent(t *testing.T) {
	f := newParticipantFixture(t, []*models.Event{upcomingEvent(10, false, 5)},
		&models.Participant{ID: 1, EventID: 10, UserID: 2, Status: models.ParticipantConfirmed},
		&models.Participant{ID: 2, EventID: 10, UserID: 3, Status: models.ParticipantRejected},
	)
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	require.NoError(t, f.svc.LeaveEvent(context.Background(), 2, 10))
	assert.Equal(t, models.ParticipantCancelled, f.participants.participants[1].Status)
	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, models.NotificationJoinCancelled, f.notifications.created[0].Type)
	require.Len(t, f.pub.messages, 1)
	assert.Equal(t, 0, f.pub.messages[0].Payload.(ParticipantsUpdate).ConfirmedCount)

	require.Len(t, f.participants.lockedWith, 1)
	assert.IsType(t, &sql.Tx{}, f.participants.lockedWith[0])

	tests := []struct {
		name    string
		userID  int
		eventID int
		want    error
	}{
		{"already cancelled", 2, 10, ErrCannotLeave},
		{"rejected", 3, 10, ErrCannotLeave},
		{"never joined", 1, 10, ErrNotParticipant},
		{"missing event", 2, 99, ErrEventNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f.mock.ExpectBegin()
			f.mock.ExpectRollback()
			assert.ErrorIs(t, f.svc.LeaveEvent(context.Background(), tt.userID, tt.eventID), tt.want)
		})
	}
	assert.Len(t, f.notifications.created, 1)
	assert.Len(t, f.pub.messages, 1)
}

// Статус перечитывается под блокировкой: заявка, отменённая после загрузки
// вне транзакции, не может быть подтверждена.
func TestParticipantService_UpdateStatusReadsParticipantInTransaction(t *testing.T) {
	f := newParticipantFixture(t, []*models.Event{upcomingEvent(10, true, 5)},
		&models.Participant{ID: 1, EventID: 10, UserID: 2, Status: models.ParticipantPending},
	)
	ctx := context.Background()

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.svc.LeaveEvent(ctx, 2, 10))

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err := f.svc.UpdateParticipantStatus(ctx, 1, 10, 1, UpdateParticipantStatusInput{Status: models.ParticipantConfirmed})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	assert.Equal(t, models.ParticipantCancelled, f.participants.participants[1].Status)

	require.Len(t, f.participants.lockedWith, 2)
	for _, exec := range f.participants.lockedWith {
		assert.IsType(t, &sql.Tx{}, exec)
	}
	require.Len(t, f.pub.messages, 1)
	assert.Equal(t, models.ParticipantCancelled, f.pub.messages[0].Payload.(ParticipantsUpdate).Status)
}

func TestParticipantService_UpdateParticipantStatus(t *testing.T) {
	tests := []struct {
		name     string
		from     models.ParticipantStatus
		to       models.ParticipantStatus
		wantErr  error
		wantType models.NotificationType
	}{
		{"approve", models.ParticipantPending, models.ParticipantConfirmed, nil, models.NotificationJoinApproved},
		{"reject", models.ParticipantPending, models.ParticipantRejected, nil, models.NotificationJoinRejected},
		{"remove confirmed", models.ParticipantConfirmed, models.ParticipantCancelled, nil, ""},
		{"reopen rejected", models.ParticipantRejected, models.ParticipantConfirmed, ErrInvalidStatusTransition, ""},
		{"cancel pending", models.ParticipantPending, models.ParticipantCancelled, ErrInvalidStatusTransition, ""},
		{"reject confirmed", models.ParticipantConfirmed, models.ParticipantRejected, ErrInvalidStatusTransition, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newParticipantFixture(t, []*models.Event{upcomingEvent(10, true, 5)},
				&models.Participant{ID: 1, EventID: 10, UserID: 2, Status: tt.from},
			)
			f.mock.ExpectBegin()
			if tt.wantErr != nil {
				f.mock.ExpectRollback()
			} else {
				f.mock.ExpectCommit()
			}

			p, err := f.svc.UpdateParticipantStatus(context.Background(), 1, 10, 1, UpdateParticipantStatusInput{Status: tt.to})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, f.participants.participants[1].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, p.Status)
			if tt.to == models.ParticipantConfirmed {
				require.NotNil(t, p.ConfirmedAt)
			}
			if tt.wantType != "" {
				require.Len(t, f.notifications.created, 1)
				assert.Equal(t, tt.wantType, f.notifications.created[0].Type)
				assert.Equal(t, 2, f.notifications.created[0].RecipientID)
			} else {
				assert.Empty(t, f.notifications.created)
			}
			assert.Len(t, f.pub.messages, 1)
		})
	}
}

func TestParticipantService_UpdateParticipantStatusGuards(t *testing.T) {
	f := newParticipantFixture(t, []*models.Event{upcomingEvent(10, true, 2)},
		&models.Participant{ID: 1, EventID: 10, UserID: 2, Status: models.ParticipantPending},
		&models.Participant{ID: 2, EventID: 10, UserID: 3, Status: models.ParticipantConfirmed},
		&models.Participant{ID: 3, EventID: 10, UserID: 1, Status: models.ParticipantConfirmed},
	)
	ctx := context.Background()

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err := f.svc.UpdateParticipantStatus(ctx, 2, 10, 1, UpdateParticipantStatusInput{Status: models.ParticipantConfirmed})
	assert.ErrorIs(t, err, ErrForbiddenOperation)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.UpdateParticipantStatus(ctx, 1, 10, 1, UpdateParticipantStatusInput{Status: models.ParticipantConfirmed})
	assert.ErrorIs(t, err, ErrEventFull)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err = f.svc.UpdateParticipantStatus(ctx, 1, 10, 42, UpdateParticipantStatusInput{Status: models.ParticipantRejected})
	assert.ErrorIs(t, err, ErrParticipantNotFound)
}

func TestParticipantService_RateEvent(t *testing.T) {
	completed := upcomingEvent(10, false, 5)
	completed.Status = models.EventStatusCompleted
	completed.StartDateTime = testNow.Add(-48 * time.Hour)

	f := newParticipantFixture(t, []*models.Event{completed, upcomingEvent(11, false, 5)},
		&models.Participant{ID: 1, EventID: 10, UserID: 2, Status: models.ParticipantConfirmed},
		&models.Participant{ID: 2, EventID: 10, UserID: 3, Status: models.ParticipantCancelled},
		&models.Participant{ID: 3, EventID: 11, UserID: 2, Status: models.ParticipantConfirmed},
	)
	ctx := context.Background()

	p, err := f.svc.RateEvent(ctx, 2, 10, RateEventInput{Rating: 5, Feedback: strPtr("great game")})
	require.NoError(t, err)
	assert.Equal(t, 5, *p.Rating)
	assert.Equal(t, 5, *f.participants.participants[1].Rating)

	_, err = f.svc.RateEvent(ctx, 3, 10, RateEventInput{Rating: 4})
	assert.ErrorIs(t, err, ErrRatingNotAllowed)

	_, err = f.svc.RateEvent(ctx, 1, 10, RateEventInput{Rating: 4})
	assert.ErrorIs(t, err, ErrRatingNotAllowed)

	_, err = f.svc.RateEvent(ctx, 2, 11, RateEventInput{Rating: 4})
	assert.ErrorIs(t, err, ErrEventNotCompleted)

	_, err = f.svc.RateEvent(ctx, 2, 10, RateEventInput{Rating: 6})
	assert.Error(t, err)
}
