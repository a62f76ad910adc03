package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/sport-events/live"
	"github.com/Dosada05/sport-events/metrics"
	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/recommend"
	"github.com/Dosada05/sport-events/repositories"
	"github.com/Dosada05/sport-events/validation"
)

// DefaultListRadiusKm is the distance filter radius when the caller sends coordinates without one.
const DefaultListRadiusKm = 10.0

// EventPublisher рассылает изменения события подписчикам live-комнаты.
type EventPublisher interface {
	PublishEvent(eventID int, msgType string, payload interface{})
}

type EventService interface {
	ListEvents(ctx context.Context, input ListEventsInput) ([]models.EventView, error)
	CreateEvent(ctx context.Context, creatorID int, input CreateEventInput) (*models.EventView, error)
	GetEvent(ctx context.Context, id int, viewerID *int) (*models.EventView, error)
	UpdateEvent(ctx context.Context, id, currentUserID int, input UpdateEventInput) (*models.EventView, error)
	// CancelEvent мягко удаляет событие: статус становится cancelled.
	CancelEvent(ctx context.Context, id, currentUserID int) error
	ListMyEvents(ctx context.Context, userID int) ([]models.EventView, error)
	ListMyParticipations(ctx context.Context, userID int) ([]models.EventView, error)
	AutoUpdateEventStatuses(ctx context.Context) error
}

// ListEventsInput combines storage filters with the optional distance filter.
// The distance filter applies only when both UserLat and UserLng are set.
type ListEventsInput struct {
	Filter   repositories.EventFilter
	UserLat  *float64
	UserLng  *float64
	RadiusKm float64
}

type CreateEventInput struct {
	Title            string            `json:"title" validate:"required,max=200"`
	Description      string            `json:"description" validate:"required"`
	SportID          int               `json:"sport_type" validate:"required,gt=0"`
	StartDateTime    time.Time         `json:"start_date_time" validate:"required"`
	EndDateTime      *time.Time        `json:"end_date_time"`
	DurationMinutes  *int              `json:"duration_minutes" validate:"omitempty,min=15"`
	LocationName     string            `json:"location_name" validate:"required,max=200"`
	LocationAddress  *string           `json:"location_address" validate:"omitempty,max=300"`
	Latitude         *float64          `json:"latitude" validate:"required,latitude"`
	Longitude        *float64          `json:"longitude" validate:"required,longitude"`
	MaxParticipants  int               `json:"max_participants" validate:"required,min=2"`
	MinParticipants  *int              `json:"min_participants" validate:"omitempty,min=1"`
	Difficulty       models.Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	IsPublic         *bool             `json:"is_public"`
	RequiresApproval *bool             `json:"requires_approval"`
	IsFree           *bool             `json:"is_free"`
	Price            *float64          `json:"price" validate:"omitempty,gte=0"`
	Notes            *string           `json:"notes"`
}

// UpdateEventInput is a partial update; nil fields are left untouched.
type UpdateEventInput struct {
	Title            *string            `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string            `json:"description" validate:"omitempty,min=1"`
	SportID          *int               `json:"sport_type" validate:"omitempty,gt=0"`
	StartDateTime    *time.Time         `json:"start_date_time"`
	EndDateTime      *time.Time         `json:"end_date_time"`
	DurationMinutes  *int               `json:"duration_minutes" validate:"omitempty,min=15"`
	LocationName     *string            `json:"location_name" validate:"omitempty,min=1,max=200"`
	LocationAddress  *string            `json:"location_address" validate:"omitempty,max=300"`
	Latitude         *float64           `json:"latitude" validate:"omitempty,latitude"`
	Longitude        *float64           `json:"longitude" validate:"omitempty,longitude"`
	MaxParticipants  *int               `json:"max_participants" validate:"omitempty,min=2"`
	MinParticipants  *int               `json:"min_participants" validate:"omitempty,min=1"`
	Difficulty       *models.Difficulty `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	IsPublic         *bool              `json:"is_public"`
	RequiresApproval *bool              `json:"requires_approval"`
	IsFree           *bool              `json:"is_free"`
	Price            *float64           `json:"price" validate:"omitempty,gte=0"`
	Notes            *string            `json:"notes"`
}

type eventService struct {
	eventRepo       repositories.EventRepository
	participantRepo repositories.ParticipantRepository
	publisher       EventPublisher
	logger          *slog.Logger
	now             func() time.Time
}

func NewEventService(
	eventRepo repositories.EventRepository,
	participantRepo repositories.ParticipantRepository,
	publisher EventPublisher,
	logger *slog.Logger,
) EventService {
	return &eventService{
		eventRepo:       eventRepo,
		participantRepo: participantRepo,
		publisher:       publisher,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *eventService) ListEvents(ctx context.Context, input ListEventsInput) ([]models.EventView, error) {
	filter := input.Filter
	filter.PublicOnly = true

	withDistance := input.UserLat != nil && input.UserLng != nil
	limit, offset := filter.Limit, filter.Offset
	if withDistance {
		// Расстояние считается в Go, поэтому пагинация применяется после фильтра.
		filter.Limit, filter.Offset = 0, 0
	}

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidOrdering) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	now := s.now()
	if !withDistance {
		return s.views(events, now), nil
	}

	radius := input.RadiusKm
	if radius <= 0 {
		radius = DefaultListRadiusKm
	}

	views := make([]models.EventView, 0, len(events))
	for i := range events {
		d := recommend.DistanceKm(*input.UserLat, *input.UserLng, events[i].Latitude, events[i].Longitude)
		if d > radius {
			continue
		}
		v := models.NewEventView(&events[i], now)
		rounded := roundTo(d, 2)
		v.Distance = &rounded
		views = append(views, v)
	}

	return paginate(views, limit, offset), nil
}

func paginate(views []models.EventView, limit, offset int) []models.EventView {
	if offset >= len(views) {
		return []models.EventView{}
	}
	views = views[offset:]
	if limit > 0 && limit < len(views) {
		views = views[:limit]
	}
	return views
}

func (s *eventService) views(events []models.Event, now time.Time) []models.EventView {
	views := make([]models.EventView, len(events))
	for i := range events {
		views[i] = models.NewEventView(&events[i], now)
	}
	return views
}

func (s *eventService) CreateEvent(ctx context.Context, creatorID int, input CreateEventInput) (*models.EventView, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.LocationName = strings.TrimSpace(input.LocationName)
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	event := &models.Event{
		Title:            input.Title,
		Description:      input.Description,
		SportID:          input.SportID,
		CreatorID:        creatorID,
		StartDateTime:    input.StartDateTime,
		EndDateTime:      input.EndDateTime,
		DurationMinutes:  input.DurationMinutes,
		LocationName:     input.LocationName,
		LocationAddress:  input.LocationAddress,
		Latitude:         *input.Latitude,
		Longitude:        *input.Longitude,
		MaxParticipants:  input.MaxParticipants,
		MinParticipants:  2,
		Difficulty:       models.DifficultyMedium,
		IsPublic:         true,
		RequiresApproval: false,
		IsFree:           true,
		Price:            input.Price,
		Status:           models.EventStatusUpcoming,
		Notes:            input.Notes,
	}
	if input.MinParticipants != nil {
		event.MinParticipants = *input.MinParticipants
	}
	if input.Difficulty != "" {
		event.Difficulty = input.Difficulty
	}
	if input.IsPublic != nil {
		event.IsPublic = *input.IsPublic
	}
	if input.RequiresApproval != nil {
		event.RequiresApproval = *input.RequiresApproval
	}
	if input.IsFree != nil {
		event.IsFree = *input.IsFree
	}

	if err := s.validateEvent(event, true); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, mapEventRepoError(err)
	}

	// Перечитываем, чтобы заполнить sport и creator.
	created, err := s.eventRepo.GetByID(ctx, event.ID)
	if err != nil {
		return nil, mapEventRepoError(err)
	}

	s.logger.Info("event created", slog.Int("event_id", created.ID), slog.Int("creator_id", creatorID))
	view := models.NewEventView(created, s.now())
	return &view, nil
}

// validateEvent проверяет межполевые правила события.
func (s *eventService) validateEvent(event *models.Event, checkStart bool) error {
	if checkStart && event.StartDateTime.Before(s.now()) {
		return ErrStartInPast
	}
	if event.EndDateTime != nil && !event.EndDateTime.After(event.StartDateTime) {
		return ErrEndBeforeStart
	}
	if event.MinParticipants > event.MaxParticipants {
		return ErrMinExceedsMax
	}
	if !event.IsFree && event.Price == nil {
		return ErrPriceRequired
	}
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, id int, viewerID *int) (*models.EventView, error) {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapEventRepoError(err)
	}

	participants, err := s.participantRepo.ListByEvent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants of event %d: %w", id, err)
	}
	event.Participants = participants

	view := models.NewEventView(event, s.now())
	if viewerID != nil {
		for _, p := range participants {
			if p.UserID == *viewerID {
				view.UserParticipationStatus = &models.UserParticipationStatus{
					Status:    p.Status,
					JoinedAt:  p.JoinedAt,
					CanCancel: p.Status.Active(),
				}
				break
			}
		}
	}
	return &view, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, id, currentUserID int, input UpdateEventInput) (*models.EventView, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	if event.CreatorID != currentUserID {
		return nil, ErrForbiddenOperation
	}

	applyEventUpdate(event, input)
	if err := s.validateEvent(event, input.StartDateTime != nil); err != nil {
		return nil, err
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, mapEventRepoError(err)
	}

	updated, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapEventRepoError(err)
	}
	view := models.NewEventView(updated, s.now())
	s.publisher.PublishEvent(id, live.MessageEventUpdated, view)
	return &view, nil
}

func applyEventUpdate(event *models.Event, input UpdateEventInput) {
	if input.Title != nil {
		event.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.SportID != nil {
		event.SportID = *input.SportID
	}
	if input.StartDateTime != nil {
		event.StartDateTime = *input.StartDateTime
	}
	if input.EndDateTime != nil {
		event.EndDateTime = input.EndDateTime
	}
	if input.DurationMinutes != nil {
		event.DurationMinutes = input.DurationMinutes
	}
	if input.LocationName != nil {
		event.LocationName = strings.TrimSpace(*input.LocationName)
	}
	if input.LocationAddress != nil {
		event.LocationAddress = input.LocationAddress
	}
	if input.Latitude != nil {
		event.Latitude = *input.Latitude
	}
	if input.Longitude != nil {
		event.Longitude = *input.Longitude
	}
	if input.MaxParticipants != nil {
		event.MaxParticipants = *input.MaxParticipants
	}
	if input.MinParticipants != nil {
		event.MinParticipants = *input.MinParticipants
	}
	if input.Difficulty != nil {
		event.Difficulty = *input.Difficulty
	}
	if input.IsPublic != nil {
		event.IsPublic = *input.IsPublic
	}
	if input.RequiresApproval != nil {
		event.RequiresApproval = *input.RequiresApproval
	}
	if input.IsFree != nil {
		event.IsFree = *input.IsFree
	}
	if input.Price != nil {
		event.Price = input.Price
	}
	if input.Notes != nil {
		event.Notes = input.Notes
	}
}

func (s *eventService) CancelEvent(ctx context.Context, id, currentUserID int) error {
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return mapEventRepoError(err)
	}
	if event.CreatorID != currentUserID {
		return ErrForbiddenOperation
	}
	if event.Status == models.EventStatusCancelled {
		return nil
	}

	if err := s.eventRepo.UpdateStatus(ctx, id, models.EventStatusCancelled); err != nil {
		return mapEventRepoError(err)
	}
	event.Status = models.EventStatusCancelled
	s.publisher.PublishEvent(id, live.MessageEventUpdated, models.NewEventView(event, s.now()))
	return nil
}

func (s *eventService) ListMyEvents(ctx context.Context, userID int) ([]models.EventView, error) {
	events, err := s.eventRepo.List(ctx, repositories.EventFilter{CreatorID: &userID, Ordering: "-start_date_time"})
	if err != nil {
		return nil, fmt.Errorf("failed to list events of user %d: %w", userID, err)
	}
	return s.views(events, s.now()), nil
}

func (s *eventService) ListMyParticipations(ctx context.Context, userID int) ([]models.EventView, error) {
	events, err := s.eventRepo.List(ctx, repositories.EventFilter{
		ParticipantUserID:   &userID,
		ParticipantStatuses: []models.ParticipantStatus{models.ParticipantPending, models.ParticipantConfirmed},
		Ordering:            "start_date_time",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list participations of user %d: %w", userID, err)
	}
	return s.views(events, s.now()), nil
}

// AutoUpdateEventStatuses переводит события по времени: upcoming → ongoing → completed.
func (s *eventService) AutoUpdateEventStatuses(ctx context.Context) error {
	now := s.now()

	started, err := s.eventRepo.StartDue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to start due events: %w", err)
	}
	metrics.RecordStatusTransitions(string(models.EventStatusOngoing), started)

	completed, err := s.eventRepo.CompleteDue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to complete due events: %w", err)
	}
	metrics.RecordStatusTransitions(string(models.EventStatusCompleted), completed)

	if started > 0 || completed > 0 {
		s.logger.Info("event statuses updated",
			slog.Int64("started", started),
			slog.Int64("completed", completed))
	}
	return nil
}

func mapEventRepoError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, repositories.ErrEventSportInvalid):
		return ErrSportNotFound
	case errors.Is(err, repositories.ErrEventInvalid):
		return validation.FieldErrors{"event": "violates event constraints"}
	}
	return fmt.Errorf("event storage error: %w", err)
}
