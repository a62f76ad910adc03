package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/repositories"
	"github.com/Dosada05/sport-events/validation"
)

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
}

type RegisterInput struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
}

type LoginInput struct {
	// Login принимает username или email.
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type authService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	user := &models.User{
		Username:            input.Username,
		Email:               input.Email,
		FirstName:           strings.TrimSpace(input.FirstName),
		LastName:            strings.TrimSpace(input.LastName),
		PasswordHash:        string(hashedPassword),
		DefaultSearchRadius: models.DefaultSearchRadiusKm,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUserEmailConflict):
			return nil, ErrUserEmailConflict
		case errors.Is(err, repositories.ErrUserUsernameConflict):
			return nil, ErrUserUsernameConflict
		}
		return nil, fmt.Errorf("ошибка создания пользователя: %w", err)
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Login = strings.TrimSpace(input.Login)
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByLogin(ctx, input.Login)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	if !user.IsActive {
		return nil, ErrUserInactive
	}

	return s.issue(user)
}

func (s *authService) issue(user *models.User) (*AuthResult, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	user.PasswordHash = ""
	return &AuthResult{User: user, Token: token}, nil
}
