package models

import "time"

type ParticipantStatus string

const (
	ParticipantPending   ParticipantStatus = "pending"
	ParticipantConfirmed ParticipantStatus = "confirmed"
	ParticipantCancelled ParticipantStatus = "cancelled"
	ParticipantRejected  ParticipantStatus = "rejected"
)

// Active reports whether the participation still holds a place (or a request for one).
func (s ParticipantStatus) Active() bool {
	return s == ParticipantPending || s == ParticipantConfirmed
}

type Participant struct {
	ID          int               `json:"id" db:"id"`
	EventID     int               `json:"event" db:"event_id"`
	UserID      int               `json:"user_id" db:"user_id"`
	Status      ParticipantStatus `json:"status" db:"status"`
	JoinedAt    time.Time         `json:"joined_at" db:"joined_at"`
	ConfirmedAt *time.Time        `json:"confirmed_at" db:"confirmed_at"`
	Notes       *string           `json:"notes" db:"notes"`
	Rating      *int              `json:"rating" db:"rating"`
	Feedback    *string           `json:"feedback" db:"feedback"`

	User *PublicUser `json:"user,omitempty" db:"-"`
}

// ParticipationHistory is one row of a user's participation history joined with the event's sport.
type ParticipationHistory struct {
	EventID int
	SportID int
	Status  ParticipantStatus
	Rating  *int
}
