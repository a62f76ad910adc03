package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/repositories"
)

type SportService interface {
	ListSports(ctx context.Context) ([]models.Sport, error)
}

type sportService struct {
	sportRepo repositories.SportRepository
}

func NewSportService(sportRepo repositories.SportRepository) SportService {
	return &sportService{sportRepo: sportRepo}
}

func (s *sportService) ListSports(ctx context.Context) ([]models.Sport, error) {
	sports, err := s.sportRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sports: %w", err)
	}
	return sports, nil
}
