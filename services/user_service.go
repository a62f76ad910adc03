package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/repositories"
	"github.com/Dosada05/sport-events/validation"
)

type UserService interface {
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	GetPublicProfile(ctx context.Context, userID int) (*models.PublicUser, error)
	UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error)
}

// UpdateProfileInput is a partial update; nil fields are left untouched.
// ClearLocation removes the home location.
type UpdateProfileInput struct {
	FirstName           *string  `json:"first_name" validate:"omitempty,max=150"`
	LastName            *string  `json:"last_name" validate:"omitempty,max=150"`
	Bio                 *string  `json:"bio" validate:"omitempty,max=500"`
	PhoneNumber         *string  `json:"phone_number" validate:"omitempty,max=20"`
	DefaultLatitude     *float64 `json:"default_latitude" validate:"omitempty,latitude"`
	DefaultLongitude    *float64 `json:"default_longitude" validate:"omitempty,longitude"`
	DefaultLocationName *string  `json:"default_location_name" validate:"omitempty,max=200"`
	DefaultSearchRadius *int     `json:"default_search_radius" validate:"omitempty,min=1,max=100"`
	ClearLocation       bool     `json:"clear_location"`
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) GetPublicProfile(ctx context.Context, userID int) (*models.PublicUser, error) {
	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	pub := user.Public()
	return &pub, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int, input UpdateProfileInput) (*models.User, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Bio != nil {
		user.Bio = input.Bio
	}
	if input.PhoneNumber != nil {
		user.PhoneNumber = input.PhoneNumber
	}
	if input.DefaultSearchRadius != nil {
		user.DefaultSearchRadius = *input.DefaultSearchRadius
	}

	if input.ClearLocation {
		user.DefaultLatitude, user.DefaultLongitude, user.DefaultLocationName = nil, nil, nil
	} else {
		if input.DefaultLatitude != nil {
			user.DefaultLatitude = input.DefaultLatitude
		}
		if input.DefaultLongitude != nil {
			user.DefaultLongitude = input.DefaultLongitude
		}
		if input.DefaultLocationName != nil {
			user.DefaultLocationName = input.DefaultLocationName
		}
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrUserInvalidProfile):
			return nil, validation.FieldErrors{"default_search_radius": "must be between 1 and 100"}
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}
