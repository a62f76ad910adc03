package models

import "time"

type NotificationType string

const (
	NotificationJoinRequest   NotificationType = "join_request"
	NotificationJoinApproved  NotificationType = "join_approved"
	NotificationJoinRejected  NotificationType = "join_rejected"
	NotificationJoinCancelled NotificationType = "join_cancelled"
)

type Notification struct {
	ID                int              `json:"id" db:"id"`
	RecipientID       int              `json:"-" db:"recipient_id"`
	Type              NotificationType `json:"notification_type" db:"notification_type"`
	Title             string           `json:"title" db:"title"`
	Message           string           `json:"message" db:"message"`
	IsRead            bool             `json:"is_read" db:"is_read"`
	RelatedEventID    *int             `json:"related_event_id" db:"related_event_id"`
	RelatedEventTitle *string          `json:"related_event_title" db:"related_event_title"`
	CreatedAt         time.Time        `json:"created_at" db:"created_at"`
}
