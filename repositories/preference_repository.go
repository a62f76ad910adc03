package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/sport-events/models"
)

var (
	ErrPreferenceNotFound     = errors.New("sport preference not found")
	ErrPreferenceConflict     = errors.New("sport preference already exists for this sport")
	ErrPreferenceSportInvalid = errors.New("sport preference references an unknown sport")
	ErrPreferenceInvalid      = errors.New("sport preference violates constraints")
)

type PreferenceRepository interface {
	ListByUser(ctx context.Context, userID int) ([]models.SportPreference, error)
	GetByID(ctx context.Context, userID, id int) (*models.SportPreference, error)
	Create(ctx context.Context, exec SQLExecutor, pref *models.SportPreference) error
	Update(ctx context.Context, pref *models.SportPreference) error
	Delete(ctx context.Context, userID, id int) error
	DeleteAllByUser(ctx context.Context, exec SQLExecutor, userID int) error
}

type postgresPreferenceRepository struct {
	db *sql.DB
}

func NewPostgresPreferenceRepository(db *sql.DB) PreferenceRepository {
	return &postgresPreferenceRepository{db: db}
}

const preferenceSelect = `
	SELECT p.id, p.user_id, p.sport_id, p.skill_level, p.interest_level, p.created_at, p.updated_at,
	       s.id, s.name, s.description, s.icon, s.is_active, s.created_at
	FROM sport_preferences p
	JOIN sports s ON s.id = p.sport_id`

// ListByUser returns preferences ordered by interest, strongest first.
func (r *postgresPreferenceRepository) ListByUser(ctx context.Context, userID int) ([]models.SportPreference, error) {
	query := preferenceSelect + ` WHERE p.user_id = $1 ORDER BY p.interest_level DESC, p.id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %w", err)
	}
	defer rows.Close()

	prefs := make([]models.SportPreference, 0)
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		prefs = append(prefs, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prefs, nil
}

func (r *postgresPreferenceRepository) GetByID(ctx context.Context, userID, id int) (*models.SportPreference, error) {
	query := preferenceSelect + ` WHERE p.id = $1 AND p.user_id = $2`
	return scanPreference(r.db.QueryRowContext(ctx, query, id, userID))
}

func (r *postgresPreferenceRepository) Create(ctx context.Context, exec SQLExecutor, pref *models.SportPreference) error {
	query := `
		INSERT INTO sport_preferences (user_id, sport_id, skill_level, interest_level)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		pref.UserID, pref.SportID, pref.SkillLevel, pref.InterestLevel,
	).Scan(&pref.ID, &pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		return mapPreferenceError(err)
	}
	return nil
}

func (r *postgresPreferenceRepository) Update(ctx context.Context, pref *models.SportPreference) error {
	query := `
		UPDATE sport_preferences
		SET sport_id = $1, skill_level = $2, interest_level = $3, updated_at = NOW()
		WHERE id = $4 AND user_id = $5
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		pref.SportID, pref.SkillLevel, pref.InterestLevel, pref.ID, pref.UserID,
	).Scan(&pref.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPreferenceNotFound
		}
		return mapPreferenceError(err)
	}
	return nil
}

func (r *postgresPreferenceRepository) Delete(ctx context.Context, userID, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sport_preferences WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}
	return checkAffectedRows(result, ErrPreferenceNotFound)
}

func (r *postgresPreferenceRepository) DeleteAllByUser(ctx context.Context, exec SQLExecutor, userID int) error {
	if _, err := executor(r.db, exec).ExecContext(ctx, `DELETE FROM sport_preferences WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}
	return nil
}

func scanPreference(row rowScanner) (*models.SportPreference, error) {
	var p models.SportPreference
	var s models.Sport
	err := row.Scan(
		&p.ID, &p.UserID, &p.SportID, &p.SkillLevel, &p.InterestLevel, &p.CreatedAt, &p.UpdatedAt,
		&s.ID, &s.Name, &s.Description, &s.Icon, &s.IsActive, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPreferenceNotFound
		}
		return nil, fmt.Errorf("failed to scan preference: %w", err)
	}
	p.Sport = &s
	return &p, nil
}

func mapPreferenceError(err error) error {
	if pqErr, ok := pqError(err); ok {
		switch pqErr.Code {
		case pqUniqueViolation:
			if pqErr.Constraint == "sport_preferences_user_sport_key" {
				return ErrPreferenceConflict
			}
		case pqForeignKeyViolation:
			if pqErr.Constraint == "sport_preferences_sport_id_fkey" {
				return ErrPreferenceSportInvalid
			}
		case pqCheckViolation:
			return ErrPreferenceInvalid
		}
	}
	return err
}
