package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/sport-events/models"
)

type SportRepository interface {
	ListActive(ctx context.Context) ([]models.Sport, error)
}

type postgresSportRepository struct {
	db *sql.DB
}

func NewPostgresSportRepository(db *sql.DB) SportRepository {
	return &postgresSportRepository{db: db}
}

func (r *postgresSportRepository) ListActive(ctx context.Context) ([]models.Sport, error) {
	query := `
		SELECT id, name, description, icon, is_active, created_at
		FROM sports
		WHERE is_active = TRUE
		ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sports: %w", err)
	}
	defer rows.Close()

	sports := make([]models.Sport, 0)
	for rows.Next() {
		var s models.Sport
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.Icon, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sport: %w", err)
		}
		sports = append(sports, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sports, nil
}
