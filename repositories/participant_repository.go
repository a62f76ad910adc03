package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/sport-events/models"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantConflict = errors.New("user already participates in this event")
	ErrParticipantInvalid  = errors.New("participant violates constraints")
)

type ParticipantRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error
	// GetByIDForUpdate и GetByEventAndUserForUpdate блокируют строку участника до конца транзакции exec.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, eventID, id int) (*models.Participant, error)
	GetByEventAndUser(ctx context.Context, eventID, userID int) (*models.Participant, error)
	GetByEventAndUserForUpdate(ctx context.Context, exec SQLExecutor, eventID, userID int) (*models.Participant, error)
	ListByEvent(ctx context.Context, eventID int) ([]models.Participant, error)
	CountConfirmed(ctx context.Context, exec SQLExecutor, eventID int) (int, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ParticipantStatus, confirmedAt *time.Time) error
	SetRating(ctx context.Context, id int, rating int, feedback *string) error
	// HistoryByUser returns every participation of the user with the event's sport.
	HistoryByUser(ctx context.Context, userID int) ([]models.ParticipationHistory, error)
}

type postgresParticipantRepository struct {
	db *sql.DB
}

func NewPostgresParticipantRepository(db *sql.DB) ParticipantRepository {
	return &postgresParticipantRepository{db: db}
}

const participantSelect = `
	SELECT p.id, p.event_id, p.user_id, p.status, p.joined_at, p.confirmed_at, p.notes, p.rating, p.feedback,
	       u.username, u.first_name, u.last_name
	FROM event_participants p
	JOIN users u ON u.id = p.user_id`

func (r *postgresParticipantRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participant) error {
	query := `
		INSERT INTO event_participants (event_id, user_id, status, confirmed_at, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, joined_at`

	err := executor(r.db, exec).QueryRowContext(ctx, query,
		p.EventID, p.UserID, p.Status, p.ConfirmedAt, p.Notes,
	).Scan(&p.ID, &p.JoinedAt)
	if err != nil {
		if pqErr, ok := pqError(err); ok {
			switch pqErr.Code {
			case pqUniqueViolation:
				return ErrParticipantConflict
			case pqCheckViolation:
				return ErrParticipantInvalid
			}
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (r *postgresParticipantRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, eventID, id int) (*models.Participant, error) {
	query := participantSelect + ` WHERE p.id = $1 AND p.event_id = $2 FOR UPDATE OF p`
	return scanParticipant(executor(r.db, exec).QueryRowContext(ctx, query, id, eventID))
}

func (r *postgresParticipantRepository) GetByEventAndUser(ctx context.Context, eventID, userID int) (*models.Participant, error) {
	return scanParticipant(r.db.QueryRowContext(ctx, participantSelect+` WHERE p.event_id = $1 AND p.user_id = $2`, eventID, userID))
}

func (r *postgresParticipantRepository) GetByEventAndUserForUpdate(ctx context.Context, exec SQLExecutor, eventID, userID int) (*models.Participant, error) {
	query := participantSelect + ` WHERE p.event_id = $1 AND p.user_id = $2 FOR UPDATE OF p`
	return scanParticipant(executor(r.db, exec).QueryRowContext(ctx, query, eventID, userID))
}

func (r *postgresParticipantRepository) ListByEvent(ctx context.Context, eventID int) ([]models.Participant, error) {
	rows, err := r.db.QueryContext(ctx, participantSelect+` WHERE p.event_id = $1 ORDER BY p.joined_at ASC, p.id ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := make([]models.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *postgresParticipantRepository) CountConfirmed(ctx context.Context, exec SQLExecutor, eventID int) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM event_participants WHERE event_id = $1 AND status = 'confirmed'`
	if err := executor(r.db, exec).QueryRowContext(ctx, query, eventID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count confirmed participants: %w", err)
	}
	return n, nil
}

func (r *postgresParticipantRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.ParticipantStatus, confirmedAt *time.Time) error {
	query := `
		UPDATE event_participants
		SET status = $1, confirmed_at = COALESCE($2, confirmed_at)
		WHERE id = $3`

	result, err := executor(r.db, exec).ExecContext(ctx, query, status, confirmedAt, id)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) SetRating(ctx context.Context, id int, rating int, feedback *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE event_participants SET rating = $1, feedback = $2 WHERE id = $3`, rating, feedback, id)
	if err != nil {
		if pqErr, ok := pqError(err); ok && pqErr.Code == pqCheckViolation {
			return ErrParticipantInvalid
		}
		return fmt.Errorf("failed to rate event: %w", err)
	}
	return checkAffectedRows(result, ErrParticipantNotFound)
}

func (r *postgresParticipantRepository) HistoryByUser(ctx context.Context, userID int) ([]models.ParticipationHistory, error) {
	query := `
		SELECT p.event_id, e.sport_id, p.status, p.rating
		FROM event_participants p
		JOIN events e ON e.id = p.event_id
		WHERE p.user_id = $1
		ORDER BY p.id ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participation history: %w", err)
	}
	defer rows.Close()

	history := make([]models.ParticipationHistory, 0)
	for rows.Next() {
		var h models.ParticipationHistory
		if err := rows.Scan(&h.EventID, &h.SportID, &h.Status, &h.Rating); err != nil {
			return nil, fmt.Errorf("failed to scan participation history: %w", err)
		}
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}

func scanParticipant(row rowScanner) (*models.Participant, error) {
	var p models.Participant
	var u models.PublicUser
	err := row.Scan(
		&p.ID, &p.EventID, &p.UserID, &p.Status, &p.JoinedAt, &p.ConfirmedAt, &p.Notes, &p.Rating, &p.Feedback,
		&u.Username, &u.FirstName, &u.LastName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipantNotFound
		}
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}
	u.ID = p.UserID
	u.FullName = models.User{Username: u.Username, FirstName: u.FirstName, LastName: u.LastName}.FullName()
	p.User = &u
	return &p, nil
}
