// Package recommend ranks upcoming sport events for a single user.
//
// The engine works over immutable snapshots supplied by the caller: the user's
// profile, declared sport preferences and participation history. Candidate
// events are pulled through a CandidateSupplier, so the package does not know
// about storage, HTTP or authentication.
package recommend

import "time"

// DefaultSearchRadiusKm is used when the profile carries no usable radius.
const DefaultSearchRadiusKm = 50

// DefaultMaxResults caps the result list when the caller passes no limit.
const DefaultMaxResults = 20

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

type ParticipationStatus string

const (
	ParticipationPending   ParticipationStatus = "pending"
	ParticipationConfirmed ParticipationStatus = "confirmed"
	ParticipationCancelled ParticipationStatus = "cancelled"
	ParticipationRejected  ParticipationStatus = "rejected"
)

// UserProfile is the slice of a user the scorer needs.
type UserProfile struct {
	ID             int
	Latitude       *float64
	Longitude      *float64
	SearchRadiusKm int
}

// HasHome reports whether both home coordinates are set.
func (u UserProfile) HasHome() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// EffectiveRadiusKm returns the search radius, falling back to DefaultSearchRadiusKm.
func (u UserProfile) EffectiveRadiusKm() float64 {
	if u.SearchRadiusKm <= 0 {
		return DefaultSearchRadiusKm
	}
	return float64(u.SearchRadiusKm)
}

// SportPreference is a user's declared interest in one sport.
type SportPreference struct {
	SportID       int
	SkillLevel    SkillLevel
	InterestLevel int // 1-10
}

// ParticipationRecord links the user to a past or current event.
// Rating is only set for confirmed participations the user rated.
type ParticipationRecord struct {
	EventID int
	SportID int
	Status  ParticipationStatus
	Rating  *int
}

// Candidate is an event eligible for scoring, annotated with its current
// confirmed participant count.
type Candidate struct {
	EventID         int
	SportID         int
	Difficulty      Difficulty
	Latitude        float64
	Longitude       float64
	MaxParticipants int
	ConfirmedCount  int
	StartsAt        time.Time
}

// IsFull reports whether the confirmed count has reached capacity.
func (c Candidate) IsFull() bool {
	return c.ConfirmedCount >= c.MaxParticipants
}

// Recommendation is one ranked entry. DistanceKm is nil when the user has no
// home coordinates or the entry comes from the fallback pool.
type Recommendation struct {
	Candidate  Candidate
	Score      float64
	DistanceKm *float64
}

// Result is the outcome of one recommendation pass.
type Result struct {
	Items []Recommendation
	// Fallback is set when the user had no preference or history signal and
	// the generic pool was returned unscored.
	Fallback bool
	// Considered is the number of candidates returned by the supplier.
	Considered int
}
