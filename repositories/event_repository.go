package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/sport-events/models"
	"github.com/lib/pq"
)

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrEventSportInvalid = errors.New("event references an unknown sport")
	ErrEventInvalid      = errors.New("event violates constraints")
	ErrInvalidOrdering   = errors.New("invalid ordering field")
)

// EventFilter описывает фильтры списка событий. Nil-поля не применяются.
type EventFilter struct {
	PublicOnly bool
	CreatorID  *int
	// ParticipantUserID ограничивает выборку событиями, где пользователь
	// участвует с одним из ParticipantStatuses.
	ParticipantUserID   *int
	ParticipantStatuses []models.ParticipantStatus

	SportID    *int
	Status     *models.EventStatus
	Difficulty *models.Difficulty
	IsFree     *bool
	Search     string
	StartFrom  *time.Time
	StartTo    *time.Time

	// Ordering is a column name, optionally prefixed with "-" for descending order.
	Ordering string
	Limit    int
	Offset   int
}

// CandidateFilter selects joinable events: public, upcoming, starting at or
// after Now, with at least one free confirmed spot.
type CandidateFilter struct {
	Now             time.Time
	SportIDs        []int
	ExcludeEventIDs []int
	Limit           int
}

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id int) (*models.Event, error)
	// GetByIDForUpdate блокирует строку события до конца транзакции exec.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error)
	Update(ctx context.Context, event *models.Event) error
	UpdateStatus(ctx context.Context, id int, status models.EventStatus) error
	List(ctx context.Context, filter EventFilter) ([]models.Event, error)
	Candidates(ctx context.Context, filter CandidateFilter) ([]models.Event, error)
	// StartDue moves upcoming events whose start time has passed to ongoing.
	StartDue(ctx context.Context, now time.Time) (int64, error)
	// CompleteDue moves ongoing events whose end time has passed to completed.
	CompleteDue(ctx context.Context, now time.Time) (int64, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

const confirmedCountExpr = `(SELECT COUNT(*) FROM event_participants ep WHERE ep.event_id = e.id AND ep.status = 'confirmed')`

const eventSelect = `
	SELECT
		e.id, e.title, e.description, e.sport_id, e.creator_id, e.start_date_time, e.end_date_time,
		e.duration_minutes, e.location_name, e.location_address, e.latitude, e.longitude,
		e.max_participants, e.min_participants, e.difficulty, e.is_public, e.requires_approval,
		e.is_free, e.price, e.status, e.notes, e.created_at, e.updated_at,
		` + confirmedCountExpr + ` AS confirmed_count,
		s.id, s.name, s.icon,
		u.id, u.username, u.first_name, u.last_name
	FROM events e
	JOIN sports s ON s.id = e.sport_id
	JOIN users u ON u.id = e.creator_id`

var orderingColumns = map[string]string{
	"start_date_time":  "e.start_date_time",
	"created_at":       "e.created_at",
	"max_participants": "e.max_participants",
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (
			title, description, sport_id, creator_id, start_date_time, end_date_time, duration_minutes,
			location_name, location_address, latitude, longitude, max_participants, min_participants,
			difficulty, is_public, requires_approval, is_free, price, status, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at, updated_at`

	if event.Status == "" {
		event.Status = models.EventStatusUpcoming
	}

	err := r.db.QueryRowContext(ctx, query,
		event.Title, event.Description, event.SportID, event.CreatorID, event.StartDateTime,
		event.EndDateTime, event.DurationMinutes, event.LocationName, event.LocationAddress,
		event.Latitude, event.Longitude, event.MaxParticipants, event.MinParticipants,
		event.Difficulty, event.IsPublic, event.RequiresApproval, event.IsFree, event.Price,
		event.Status, event.Notes,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return mapEventError(err)
	}
	return nil
}

func (r *postgresEventRepository) GetByID(ctx context.Context, id int) (*models.Event, error) {
	return scanEvent(r.db.QueryRowContext(ctx, eventSelect+` WHERE e.id = $1`, id))
}

func (r *postgresEventRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error) {
	return scanEvent(executor(r.db, exec).QueryRowContext(ctx, eventSelect+` WHERE e.id = $1 FOR UPDATE OF e`, id))
}

func (r *postgresEventRepository) Update(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events SET
			title = $1, description = $2, sport_id = $3, start_date_time = $4, end_date_time = $5,
			duration_minutes = $6, location_name = $7, location_address = $8, latitude = $9,
			longitude = $10, max_participants = $11, min_participants = $12, difficulty = $13,
			is_public = $14, requires_approval = $15, is_free = $16, price = $17, notes = $18,
			updated_at = NOW()
		WHERE id = $19
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Title, event.Description, event.SportID, event.StartDateTime, event.EndDateTime,
		event.DurationMinutes, event.LocationName, event.LocationAddress, event.Latitude,
		event.Longitude, event.MaxParticipants, event.MinParticipants, event.Difficulty,
		event.IsPublic, event.RequiresApproval, event.IsFree, event.Price, event.Notes,
		event.ID,
	).Scan(&event.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEventNotFound
		}
		return mapEventError(err)
	}
	return nil
}

func (r *postgresEventRepository) UpdateStatus(ctx context.Context, id int, status models.EventStatus) error {
	result, err := r.db.ExecContext(ctx, `UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return mapEventError(err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) List(ctx context.Context, filter EventFilter) ([]models.Event, error) {
	var where []string
	args := []interface{}{}
	argID := 1

	add := func(cond string, val interface{}) {
		where = append(where, fmt.Sprintf(cond, argID))
		args = append(args, val)
		argID++
	}

	if filter.PublicOnly {
		where = append(where, "e.is_public = TRUE")
	}
	if filter.CreatorID != nil {
		add("e.creator_id = $%d", *filter.CreatorID)
	}
	if filter.ParticipantUserID != nil {
		statuses := make([]string, len(filter.ParticipantStatuses))
		for i, s := range filter.ParticipantStatuses {
			statuses[i] = string(s)
		}
		where = append(where, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM event_participants mp WHERE mp.event_id = e.id AND mp.user_id = $%d AND mp.status = ANY($%d))",
			argID, argID+1))
		args = append(args, *filter.ParticipantUserID, pq.Array(statuses))
		argID += 2
	}
	if filter.SportID != nil {
		add("e.sport_id = $%d", *filter.SportID)
	}
	if filter.Status != nil {
		add("e.status = $%d", *filter.Status)
	}
	if filter.Difficulty != nil {
		add("e.difficulty = $%d", *filter.Difficulty)
	}
	if filter.IsFree != nil {
		add("e.is_free = $%d", *filter.IsFree)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf(
			"(e.title ILIKE $%d OR e.description ILIKE $%d OR e.location_name ILIKE $%d)", argID, argID, argID))
		args = append(args, "%"+filter.Search+"%")
		argID++
	}
	if filter.StartFrom != nil {
		add("e.start_date_time >= $%d", *filter.StartFrom)
	}
	if filter.StartTo != nil {
		add("e.start_date_time <= $%d", *filter.StartTo)
	}

	orderBy, err := orderClause(filter.Ordering)
	if err != nil {
		return nil, err
	}

	query := eventSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + orderBy

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	return r.queryEvents(ctx, query, args...)
}

func (r *postgresEventRepository) Candidates(ctx context.Context, filter CandidateFilter) ([]models.Event, error) {
	query := eventSelect + `
	WHERE e.is_public = TRUE
	  AND e.status = 'upcoming'
	  AND e.start_date_time >= $1
	  AND ` + confirmedCountExpr + ` < e.max_participants`
	args := []interface{}{filter.Now}
	argID := 2

	if len(filter.SportIDs) > 0 {
		query += fmt.Sprintf(" AND e.sport_id = ANY($%d)", argID)
		args = append(args, pq.Array(filter.SportIDs))
		argID++
	}
	if len(filter.ExcludeEventIDs) > 0 {
		query += fmt.Sprintf(" AND e.id <> ALL($%d)", argID)
		args = append(args, pq.Array(filter.ExcludeEventIDs))
		argID++
	}
	query += " ORDER BY e.start_date_time ASC, e.id ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
	}

	return r.queryEvents(ctx, query, args...)
}

func (r *postgresEventRepository) StartDue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE events SET status = 'ongoing', updated_at = NOW()
		WHERE status = 'upcoming' AND start_date_time <= $1`
	return r.execCount(ctx, query, now)
}

func (r *postgresEventRepository) CompleteDue(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE events SET status = 'completed', updated_at = NOW()
		WHERE status = 'ongoing'
		  AND COALESCE(end_date_time, start_date_time + make_interval(mins => COALESCE(duration_minutes, 120))) <= $1`
	return r.execCount(ctx, query, now)
}

func (r *postgresEventRepository) execCount(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to update event statuses: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check affected rows: %w", err)
	}
	return n, nil
}

func (r *postgresEventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	events := make([]models.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	var sport models.Sport
	var creator models.PublicUser
	err := row.Scan(
		&e.ID, &e.Title, &e.Description, &e.SportID, &e.CreatorID, &e.StartDateTime, &e.EndDateTime,
		&e.DurationMinutes, &e.LocationName, &e.LocationAddress, &e.Latitude, &e.Longitude,
		&e.MaxParticipants, &e.MinParticipants, &e.Difficulty, &e.IsPublic, &e.RequiresApproval,
		&e.IsFree, &e.Price, &e.Status, &e.Notes, &e.CreatedAt, &e.UpdatedAt,
		&e.ConfirmedCount,
		&sport.ID, &sport.Name, &sport.Icon,
		&creator.ID, &creator.Username, &creator.FirstName, &creator.LastName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan event: %w", err)
	}
	sport.IsActive = true
	creator.FullName = models.User{Username: creator.Username, FirstName: creator.FirstName, LastName: creator.LastName}.FullName()
	e.Sport = &sport
	e.Creator = &creator
	return &e, nil
}

func orderClause(ordering string) (string, error) {
	if ordering == "" {
		return "e.start_date_time ASC, e.id ASC", nil
	}
	dir := "ASC"
	field := ordering
	if strings.HasPrefix(ordering, "-") {
		dir = "DESC"
		field = strings.TrimPrefix(ordering, "-")
	}
	col, ok := orderingColumns[field]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrdering, ordering)
	}
	return col + " " + dir + ", e.id " + dir, nil
}

func mapEventError(err error) error {
	if pqErr, ok := pqError(err); ok {
		switch pqErr.Code {
		case pqForeignKeyViolation:
			if pqErr.Constraint == "events_sport_id_fkey" {
				return ErrEventSportInvalid
			}
		case pqCheckViolation:
			return fmt.Errorf("%w: %s", ErrEventInvalid, pqErr.Constraint)
		}
	}
	return err
}
