package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/sport-events/live"
	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/repositories"
	"github.com/Dosada05/sport-events/validation"
)

type ParticipantService interface {
	JoinEvent(ctx context.Context, userID, eventID int, input JoinEventInput) (*models.Participant, error)
	LeaveEvent(ctx context.Context, userID, eventID int) error
	ListParticipants(ctx context.Context, eventID int) ([]models.Participant, error)
	// UpdateParticipantStatus is used by the event creator to approve, reject or remove participants.
	UpdateParticipantStatus(ctx context.Context, currentUserID, eventID, participantID int, input UpdateParticipantStatusInput) (*models.Participant, error)
	RateEvent(ctx context.Context, userID, eventID int, input RateEventInput) (*models.Participant, error)
}

type JoinEventInput struct {
	Notes *string `json:"notes" validate:"omitempty,max=500"`
}

type UpdateParticipantStatusInput struct {
	Status models.ParticipantStatus `json:"status" validate:"required,oneof=confirmed rejected cancelled"`
}

type RateEventInput struct {
	Rating   int     `json:"rating" validate:"required,min=1,max=5"`
	Feedback *string `json:"feedback" validate:"omitempty,max=2000"`
}

// ParticipantsUpdate is the payload of participants_updated live messages.
type ParticipantsUpdate struct {
	EventID        int                      `json:"event_id"`
	UserID         int                      `json:"user_id"`
	Status         models.ParticipantStatus `json:"status"`
	ConfirmedCount int                      `json:"participants_count"`
}

type participantService struct {
	db               *sql.DB
	eventRepo        repositories.EventRepository
	participantRepo  repositories.ParticipantRepository
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	publisher        EventPublisher
	logger           *slog.Logger
	now              func() time.Time
}

func NewParticipantService(
	db *sql.DB,
	eventRepo repositories.EventRepository,
	participantRepo repositories.ParticipantRepository,
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	publisher EventPublisher,
	logger *slog.Logger,
) ParticipantService {
	return &participantService{
		db:               db,
		eventRepo:        eventRepo,
		participantRepo:  participantRepo,
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		publisher:        publisher,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *participantService) JoinEvent(ctx context.Context, userID, eventID int, input JoinEventInput) (*models.Participant, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	applicant, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	var participant *models.Participant
	var confirmed int
	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		// Блокировка строки события сериализует конкурентные заявки.
		event, err := s.eventRepo.GetByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return mapEventRepoError(err)
		}
		count, err := s.participantRepo.CountConfirmed(ctx, tx, eventID)
		if err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}
		event.ConfirmedCount = count

		now := s.now()
		switch {
		case event.IsFull():
			return ErrEventFull
		case event.IsPast(now):
			return ErrEventPast
		case event.Status != models.EventStatusUpcoming:
			return ErrEventNotUpcoming
		}

		participant = &models.Participant{
			EventID: eventID,
			UserID:  userID,
			Status:  models.ParticipantPending,
			Notes:   input.Notes,
		}
		if !event.RequiresApproval {
			participant.Status = models.ParticipantConfirmed
			participant.ConfirmedAt = &now
		}

		if err := s.participantRepo.Create(ctx, tx, participant); err != nil {
			if errors.Is(err, repositories.ErrParticipantConflict) {
				return ErrAlreadyJoined
			}
			return fmt.Errorf("failed to create participant: %w", err)
		}

		confirmed = count
		if participant.Status == models.ParticipantConfirmed {
			confirmed++
		}

		if err := s.notificationRepo.Create(ctx, tx, joinRequestNotification(event, applicant, input.Notes)); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	pub := applicant.Public()
	participant.User = &pub
	s.broadcast(eventID, userID, participant.Status, confirmed)
	return participant, nil
}

func (s *participantService) LeaveEvent(ctx context.Context, userID, eventID int) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	var confirmed int
	err = withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		// Та же блокировка события, что и в JoinEvent и UpdateParticipantStatus.
		event, err := s.eventRepo.GetByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return mapEventRepoError(err)
		}

		participant, err := s.participantRepo.GetByEventAndUserForUpdate(ctx, tx, eventID, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrParticipantNotFound) {
				return ErrNotParticipant
			}
			return fmt.Errorf("failed to get participant: %w", err)
		}
		if !participant.Status.Active() {
			return ErrCannotLeave
		}

		if err := s.participantRepo.UpdateStatus(ctx, tx, participant.ID, models.ParticipantCancelled, nil); err != nil {
			return mapParticipantRepoError(err)
		}
		if err := s.notificationRepo.Create(ctx, tx, joinCancelledNotification(event, user)); err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
		count, err := s.participantRepo.CountConfirmed(ctx, tx, eventID)
		if err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}
		confirmed = count
		return nil
	})
	if err != nil {
		return err
	}

	s.broadcast(eventID, userID, models.ParticipantCancelled, confirmed)
	return nil
}

func (s *participantService) ListParticipants(ctx context.Context, eventID int) ([]models.Participant, error) {
	if _, err := s.eventRepo.GetByID(ctx, eventID); err != nil {
		return nil, mapEventRepoError(err)
	}
	participants, err := s.participantRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

func (s *participantService) UpdateParticipantStatus(ctx context.Context, currentUserID, eventID, participantID int, input UpdateParticipantStatusInput) (*models.Participant, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	var participant *models.Participant
	var confirmed int
	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		event, err := s.eventRepo.GetByIDForUpdate(ctx, tx, eventID)
		if err != nil {
			return mapEventRepoError(err)
		}
		if event.CreatorID != currentUserID {
			return ErrForbiddenOperation
		}

		participant, err = s.participantRepo.GetByIDForUpdate(ctx, tx, eventID, participantID)
		if err != nil {
			return mapParticipantRepoError(err)
		}
		if !isValidParticipantTransition(participant.Status, input.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, participant.Status, input.Status)
		}

		count, err := s.participantRepo.CountConfirmed(ctx, tx, eventID)
		if err != nil {
			return fmt.Errorf("failed to count participants: %w", err)
		}

		var confirmedAt *time.Time
		switch input.Status {
		case models.ParticipantConfirmed:
			if count >= event.MaxParticipants {
				return ErrEventFull
			}
			now := s.now()
			confirmedAt = &now
			count++
		case models.ParticipantCancelled:
			count--
		}

		if err := s.participantRepo.UpdateStatus(ctx, tx, participant.ID, input.Status, confirmedAt); err != nil {
			return mapParticipantRepoError(err)
		}
		participant.Status = input.Status
		if confirmedAt != nil {
			participant.ConfirmedAt = confirmedAt
		}
		confirmed = count

		if n := statusChangeNotification(event, participant.UserID, input.Status); n != nil {
			if err := s.notificationRepo.Create(ctx, tx, n); err != nil {
				return fmt.Errorf("failed to create notification: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(eventID, participant.UserID, participant.Status, confirmed)
	return participant, nil
}

func (s *participantService) RateEvent(ctx context.Context, userID, eventID int, input RateEventInput) (*models.Participant, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return nil, mapEventRepoError(err)
	}

	participant, err := s.participantRepo.GetByEventAndUser(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrParticipantNotFound) {
			return nil, ErrRatingNotAllowed
		}
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	if participant.Status != models.ParticipantConfirmed {
		return nil, ErrRatingNotAllowed
	}
	if event.Status != models.EventStatusCompleted {
		return nil, ErrEventNotCompleted
	}

	if err := s.participantRepo.SetRating(ctx, participant.ID, input.Rating, input.Feedback); err != nil {
		return nil, mapParticipantRepoError(err)
	}
	participant.Rating = &input.Rating
	participant.Feedback = input.Feedback
	return participant, nil
}

func (s *participantService) broadcast(eventID, userID int, status models.ParticipantStatus, confirmed int) {
	s.publisher.PublishEvent(eventID, live.MessageParticipantsUpdated, ParticipantsUpdate{
		EventID:        eventID,
		UserID:         userID,
		Status:         status,
		ConfirmedCount: confirmed,
	})
}

func mapParticipantRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, repositories.ErrParticipantConflict):
		return ErrAlreadyJoined
	case errors.Is(err, repositories.ErrParticipantInvalid):
		return validation.FieldErrors{"rating": "must be between 1 and 5"}
	}
	return fmt.Errorf("participant storage error: %w", err)
}
