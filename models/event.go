package models

import "time"

// EventStatus соответствует CHECK-ограничению events.status в БД.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DefaultEventLength is assumed when an event has neither an end time nor a duration.
const DefaultEventLength = 2 * time.Hour

type Event struct {
	ID               int         `json:"id" db:"id"`
	Title            string      `json:"title" db:"title"`
	Description      string      `json:"description" db:"description"`
	SportID          int         `json:"sport_type" db:"sport_id"`
	CreatorID        int         `json:"creator_id" db:"creator_id"`
	StartDateTime    time.Time   `json:"start_date_time" db:"start_date_time"`
	EndDateTime      *time.Time  `json:"end_date_time" db:"end_date_time"`
	DurationMinutes  *int        `json:"duration_minutes" db:"duration_minutes"`
	LocationName     string      `json:"location_name" db:"location_name"`
	LocationAddress  *string     `json:"location_address" db:"location_address"`
	Latitude         float64     `json:"latitude" db:"latitude"`
	Longitude        float64     `json:"longitude" db:"longitude"`
	MaxParticipants  int         `json:"max_participants" db:"max_participants"`
	MinParticipants  int         `json:"min_participants" db:"min_participants"`
	Difficulty       Difficulty  `json:"difficulty" db:"difficulty"`
	IsPublic         bool        `json:"is_public" db:"is_public"`
	RequiresApproval bool        `json:"requires_approval" db:"requires_approval"`
	IsFree           bool        `json:"is_free" db:"is_free"`
	Price            *float64    `json:"price" db:"price"`
	Status           EventStatus `json:"status" db:"status"`
	Notes            *string     `json:"notes" db:"notes"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`

	// Вычисляемые поля, заполняются репозиторием.
	ConfirmedCount int `json:"participants_count" db:"confirmed_count"`

	Sport        *Sport        `json:"sport,omitempty" db:"-"`
	Creator      *PublicUser   `json:"creator,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
}

func (e *Event) IsFull() bool {
	return e.ConfirmedCount >= e.MaxParticipants
}

func (e *Event) AvailableSpots() int {
	return max(0, e.MaxParticipants-e.ConfirmedCount)
}

func (e *Event) IsPast(now time.Time) bool {
	return e.StartDateTime.Before(now)
}

// EndsAt returns the explicit end time, or start plus duration, or start plus DefaultEventLength.
func (e *Event) EndsAt() time.Time {
	if e.EndDateTime != nil {
		return *e.EndDateTime
	}
	if e.DurationMinutes != nil && *e.DurationMinutes > 0 {
		return e.StartDateTime.Add(time.Duration(*e.DurationMinutes) * time.Minute)
	}
	return e.StartDateTime.Add(DefaultEventLength)
}

// EventView is an event as rendered in list and detail responses.
type EventView struct {
	*Event
	IsFull         bool     `json:"is_full"`
	AvailableSpots int      `json:"available_spots"`
	IsPast         bool     `json:"is_past"`
	Distance       *float64 `json:"distance,omitempty"`

	UserParticipationStatus *UserParticipationStatus `json:"user_participation_status,omitempty"`
}

// UserParticipationStatus describes the caller's own participation in an event.
type UserParticipationStatus struct {
	Status    ParticipantStatus `json:"status"`
	JoinedAt  time.Time         `json:"joined_at"`
	CanCancel bool              `json:"can_cancel"`
}

func NewEventView(e *Event, now time.Time) EventView {
	return EventView{
		Event:          e,
		IsFull:         e.IsFull(),
		AvailableSpots: e.AvailableSpots(),
		IsPast:         e.IsPast(now),
	}
}
