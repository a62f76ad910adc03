package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrUserNotFound         = errors.New("user not found")
	ErrSportNotFound        = errors.New("sport not found")
	ErrEventNotFound        = errors.New("event not found")
	ErrParticipantNotFound  = errors.New("participant not found")
	ErrPreferenceNotFound   = errors.New("sport preference not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// Конфликты
	ErrUserEmailConflict    = errors.New("email address is already in use")
	ErrUserUsernameConflict = errors.New("username is already in use")
	ErrPreferenceConflict   = errors.New("a preference for this sport already exists")
	ErrAlreadyJoined        = errors.New("you have already applied to this event")
	ErrEventFull            = errors.New("the event is full")

	// Аутентификация и доступ
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	ErrUserInactive       = errors.New("user account is disabled")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Бизнес-правила
	ErrEventPast               = errors.New("the event has already started")
	ErrEventNotUpcoming        = errors.New("the event is not open for applications")
	ErrNotParticipant          = errors.New("you are not a participant of this event")
	ErrCannotLeave             = errors.New("participation can no longer be cancelled")
	ErrInvalidStatusTransition = errors.New("invalid participant status transition")
	ErrEventNotCompleted       = errors.New("only completed events can be rated")
	ErrRatingNotAllowed        = errors.New("only confirmed participants can rate an event")
	ErrStartInPast             = errors.New("start time cannot be in the past")
	ErrEndBeforeStart          = errors.New("end time must be after start time")
	ErrMinExceedsMax           = errors.New("minimum participants cannot exceed maximum participants")
	ErrPriceRequired           = errors.New("paid events must have a price")
	ErrInvalidFilter           = errors.New("invalid filter")
)
