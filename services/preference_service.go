package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/repositories"
	"github.com/Dosada05/sport-events/validation"
)

type PreferenceService interface {
	List(ctx context.Context, userID int) ([]models.SportPreference, error)
	Get(ctx context.Context, userID, id int) (*models.SportPreference, error)
	Create(ctx context.Context, userID int, input PreferenceInput) (*models.SportPreference, error)
	Update(ctx context.Context, userID, id int, input UpdatePreferenceInput) (*models.SportPreference, error)
	Delete(ctx context.Context, userID, id int) error
	// ReplaceAll drops the user's preferences and stores inputs in one transaction.
	ReplaceAll(ctx context.Context, userID int, inputs []PreferenceInput) ([]models.SportPreference, error)
}

type PreferenceInput struct {
	SportID       int               `json:"sport_type" validate:"required,gt=0"`
	SkillLevel    models.SkillLevel `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	InterestLevel int               `json:"interest_level" validate:"omitempty,min=1,max=10"`
}

type UpdatePreferenceInput struct {
	SkillLevel    *models.SkillLevel `json:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced"`
	InterestLevel *int               `json:"interest_level" validate:"omitempty,min=1,max=10"`
}

type BulkPreferencesInput struct {
	Preferences []PreferenceInput `json:"preferences" validate:"dive"`
}

type preferenceService struct {
	db       *sql.DB
	prefRepo repositories.PreferenceRepository
	logger   *slog.Logger
}

func NewPreferenceService(db *sql.DB, prefRepo repositories.PreferenceRepository, logger *slog.Logger) PreferenceService {
	return &preferenceService{db: db, prefRepo: prefRepo, logger: logger}
}

func (s *preferenceService) List(ctx context.Context, userID int) ([]models.SportPreference, error) {
	prefs, err := s.prefRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	return prefs, nil
}

func (s *preferenceService) Get(ctx context.Context, userID, id int) (*models.SportPreference, error) {
	pref, err := s.prefRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapPreferenceError(err)
	}
	return pref, nil
}

func (s *preferenceService) Create(ctx context.Context, userID int, input PreferenceInput) (*models.SportPreference, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}
	pref := newPreference(userID, input)
	if err := s.prefRepo.Create(ctx, nil, pref); err != nil {
		return nil, mapPreferenceError(err)
	}
	return pref, nil
}

func (s *preferenceService) Update(ctx context.Context, userID, id int, input UpdatePreferenceInput) (*models.SportPreference, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	pref, err := s.prefRepo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapPreferenceError(err)
	}
	if input.SkillLevel != nil {
		pref.SkillLevel = *input.SkillLevel
	}
	if input.InterestLevel != nil {
		pref.InterestLevel = *input.InterestLevel
	}

	if err := s.prefRepo.Update(ctx, pref); err != nil {
		return nil, mapPreferenceError(err)
	}
	return pref, nil
}

func (s *preferenceService) Delete(ctx context.Context, userID, id int) error {
	if err := s.prefRepo.Delete(ctx, userID, id); err != nil {
		return mapPreferenceError(err)
	}
	return nil
}

func (s *preferenceService) ReplaceAll(ctx context.Context, userID int, inputs []PreferenceInput) ([]models.SportPreference, error) {
	if err := validation.Struct(&BulkPreferencesInput{Preferences: inputs}); err != nil {
		return nil, err
	}

	seen := make(map[int]struct{}, len(inputs))
	for _, in := range inputs {
		if _, dup := seen[in.SportID]; dup {
			return nil, ErrPreferenceConflict
		}
		seen[in.SportID] = struct{}{}
	}

	created := make([]models.SportPreference, 0, len(inputs))
	err := withTx(ctx, s.db, s.logger, func(tx *sql.Tx) error {
		if err := s.prefRepo.DeleteAllByUser(ctx, tx, userID); err != nil {
			return fmt.Errorf("failed to clear preferences: %w", err)
		}
		for _, in := range inputs {
			pref := newPreference(userID, in)
			if err := s.prefRepo.Create(ctx, tx, pref); err != nil {
				return mapPreferenceError(err)
			}
			created = append(created, *pref)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func newPreference(userID int, in PreferenceInput) *models.SportPreference {
	pref := &models.SportPreference{
		UserID:        userID,
		SportID:       in.SportID,
		SkillLevel:    in.SkillLevel,
		InterestLevel: in.InterestLevel,
	}
	if pref.SkillLevel == "" {
		pref.SkillLevel = models.SkillBeginner
	}
	if pref.InterestLevel == 0 {
		pref.InterestLevel = 5
	}
	return pref
}

func mapPreferenceError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPreferenceNotFound):
		return ErrPreferenceNotFound
	case errors.Is(err, repositories.ErrPreferenceConflict):
		return ErrPreferenceConflict
	case errors.Is(err, repositories.ErrPreferenceSportInvalid):
		return ErrSportNotFound
	case errors.Is(err, repositories.ErrPreferenceInvalid):
		return validation.FieldErrors{"interest_level": "must be between 1 and 10"}
	}
	return fmt.Errorf("preference storage error: %w", err)
}
