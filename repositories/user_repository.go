package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sport-events/models"
)

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("user email conflict")
	ErrUserUsernameConflict = errors.New("user username conflict")
	ErrUserInvalidProfile   = errors.New("user profile violates constraints")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	// GetByLogin ищет пользователя по username или email.
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `
	id, username, email, first_name, last_name, password_hash, is_active, bio, phone_number,
	default_latitude, default_longitude, default_location_name, default_search_radius,
	created_at, updated_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, first_name, last_name, password_hash, default_search_radius)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, is_active, created_at, updated_at`

	if user.DefaultSearchRadius == 0 {
		user.DefaultSearchRadius = models.DefaultSearchRadiusKm
	}

	err := r.db.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.DefaultSearchRadius,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return mapUserError(err)
	}
	return nil
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *postgresUserRepository) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR LOWER(email) = LOWER($1) LIMIT 1`
	return r.scanUser(r.db.QueryRowContext(ctx, query, login))
}

func (r *postgresUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			first_name = $1,
			last_name = $2,
			bio = $3,
			phone_number = $4,
			default_latitude = $5,
			default_longitude = $6,
			default_location_name = $7,
			default_search_radius = $8,
			updated_at = NOW()
		WHERE id = $9
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.Bio,
		user.PhoneNumber,
		user.DefaultLatitude,
		user.DefaultLongitude,
		user.DefaultLocationName,
		user.DefaultSearchRadius,
		user.ID,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return mapUserError(err)
	}
	return nil
}

func (r *postgresUserRepository) scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.PasswordHash,
		&user.IsActive,
		&user.Bio,
		&user.PhoneNumber,
		&user.DefaultLatitude,
		&user.DefaultLongitude,
		&user.DefaultLocationName,
		&user.DefaultSearchRadius,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

func mapUserError(err error) error {
	if pqErr, ok := pqError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			switch pqErr.Constraint {
			case "users_email_key":
				return ErrUserEmailConflict
			case "users_username_key":
				return ErrUserUsernameConflict
			}
		case pqCheckViolation:
			return ErrUserInvalidProfile
		}
	}
	return err
}
