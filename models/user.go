package models

import "time"

// DefaultSearchRadiusKm is the radius new users start with.
const DefaultSearchRadiusKm = 10

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"-"`
	Bio          *string   `json:"bio"`
	PhoneNumber  *string   `json:"phone_number"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Домашняя локация, используется для рекомендаций и поиска по расстоянию.
	DefaultLatitude     *float64 `json:"default_latitude"`
	DefaultLongitude    *float64 `json:"default_longitude"`
	DefaultLocationName *string  `json:"default_location_name"`
	DefaultSearchRadius int      `json:"default_search_radius"`
}

// FullName returns "last first", or the username when both are empty.
func (u User) FullName() string {
	switch {
	case u.LastName != "" && u.FirstName != "":
		return u.LastName + " " + u.FirstName
	case u.LastName != "":
		return u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// PublicUser is the subset of a user shown to other users.
type PublicUser struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
	}
}
