package models

import "time"

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// SportPreference is a user's declared interest in a sport. One per (user, sport).
type SportPreference struct {
	ID            int        `json:"id" db:"id"`
	UserID        int        `json:"-" db:"user_id"`
	SportID       int        `json:"sport_type" db:"sport_id"`
	SkillLevel    SkillLevel `json:"skill_level" db:"skill_level"`
	InterestLevel int        `json:"interest_level" db:"interest_level"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`

	Sport *Sport `json:"sport,omitempty" db:"-"`
}
