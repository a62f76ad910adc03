package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/sport-events/metrics"
	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/recommend"
	"github.com/Dosada05/sport-events/repositories"
)

// MaxRecommendationLimit caps the limit a caller may ask for.
const MaxRecommendationLimit = 100

type RecommendationService interface {
	Recommend(ctx context.Context, userID, limit int) ([]RecommendedEvent, error)
}

// RecommendedEvent is one entry of the recommended events response.
// Distance is null for users without a home location and for fallback entries.
type RecommendedEvent struct {
	Event               models.EventView `json:"event"`
	RecommendationScore float64          `json:"recommendation_score"`
	Distance            *float64         `json:"distance"`
}

type recommendationService struct {
	userRepo        repositories.UserRepository
	prefRepo        repositories.PreferenceRepository
	participantRepo repositories.ParticipantRepository
	eventRepo       repositories.EventRepository
	maxResults      int
	logger          *slog.Logger
	now             func() time.Time
}

func NewRecommendationService(
	userRepo repositories.UserRepository,
	prefRepo repositories.PreferenceRepository,
	participantRepo repositories.ParticipantRepository,
	eventRepo repositories.EventRepository,
	maxResults int,
	logger *slog.Logger,
) RecommendationService {
	return &recommendationService{
		userRepo:        userRepo,
		prefRepo:        prefRepo,
		participantRepo: participantRepo,
		eventRepo:       eventRepo,
		maxResults:      maxResults,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *recommendationService) Recommend(ctx context.Context, userID, limit int) ([]RecommendedEvent, error) {
	started := time.Now()
	if limit > MaxRecommendationLimit {
		limit = MaxRecommendationLimit
	}

	input, err := s.loadSnapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	supplier := &eventCandidateSupplier{repo: s.eventRepo, now: now}
	engine := recommend.NewEngine(supplier, recommend.WithDefaultMaxResults(s.maxResults))

	result, err := engine.Recommend(ctx, *input, limit)
	if err != nil {
		s.logger.Error("recommendation failed", slog.Int("user_id", userID), slog.Any("error", err))
		return nil, fmt.Errorf("failed to build recommendations: %w", err)
	}
	metrics.RecordRecommendation(result.Fallback, result.Considered, time.Since(started))

	items := make([]RecommendedEvent, 0, len(result.Items))
	for _, rec := range result.Items {
		event, ok := supplier.event(rec.Candidate.EventID)
		if !ok {
			continue
		}
		items = append(items, RecommendedEvent{
			Event:               models.NewEventView(event, now),
			RecommendationScore: rec.Score,
			Distance:            rec.DistanceKm,
		})
	}

	s.logger.Debug("recommendations built",
		slog.Int("user_id", userID),
		slog.Bool("fallback", result.Fallback),
		slog.Int("considered", result.Considered),
		slog.Int("returned", len(items)))
	return items, nil
}

// loadSnapshot загружает профиль, предпочтения и историю участия параллельно.
func (s *recommendationService) loadSnapshot(ctx context.Context, userID int) (*recommend.Input, error) {
	var (
		user    *models.User
		prefs   []models.SportPreference
		history []models.ParticipationHistory
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.userRepo.GetByID(gctx, userID)
		if err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user %d: %w", userID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		prefs, err = s.prefRepo.ListByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load preferences: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = s.participantRepo.HistoryByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load participation history: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	input := &recommend.Input{
		User: recommend.UserProfile{
			ID:             user.ID,
			Latitude:       user.DefaultLatitude,
			Longitude:      user.DefaultLongitude,
			SearchRadiusKm: user.DefaultSearchRadius,
		},
		Preferences:    make([]recommend.SportPreference, len(prefs)),
		Participations: make([]recommend.ParticipationRecord, len(history)),
	}
	for i, p := range prefs {
		input.Preferences[i] = recommend.SportPreference{
			SportID:       p.SportID,
			SkillLevel:    recommend.SkillLevel(p.SkillLevel),
			InterestLevel: p.InterestLevel,
		}
	}
	for i, h := range history {
		input.Participations[i] = recommend.ParticipationRecord{
			EventID: h.EventID,
			SportID: h.SportID,
			Status:  recommend.ParticipationStatus(h.Status),
			Rating:  h.Rating,
		}
	}
	return input, nil
}

// eventCandidateSupplier отдает движку joinable-события из репозитория и
// запоминает их, чтобы ответ содержал полные данные события.
type eventCandidateSupplier struct {
	repo repositories.EventRepository
	now  time.Time

	mu     sync.Mutex
	events map[int]*models.Event
}

func (s *eventCandidateSupplier) Candidates(ctx context.Context, q recommend.CandidateQuery) ([]recommend.Candidate, error) {
	events, err := s.repo.Candidates(ctx, repositories.CandidateFilter{
		Now:             s.now,
		SportIDs:        q.SportIDs,
		ExcludeEventIDs: q.ExcludeEventIDs,
		Limit:           q.Limit,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.events == nil {
		s.events = make(map[int]*models.Event, len(events))
	}

	candidates := make([]recommend.Candidate, len(events))
	for i := range events {
		e := &events[i]
		s.events[e.ID] = e
		candidates[i] = recommend.Candidate{
			EventID:         e.ID,
			SportID:         e.SportID,
			Difficulty:      recommend.Difficulty(e.Difficulty),
			Latitude:        e.Latitude,
			Longitude:       e.Longitude,
			MaxParticipants: e.MaxParticipants,
			ConfirmedCount:  e.ConfirmedCount,
			StartsAt:        e.StartDateTime,
		}
	}
	return candidates, nil
}

func (s *eventCandidateSupplier) event(id int) (*models.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	return e, ok
}
