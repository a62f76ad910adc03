package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/sport-events/models"
	"github.com/Dosada05/sport-events/repositories"
)

type NotificationService interface {
	List(ctx context.Context, userID int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID int) (int, error)
	MarkAllRead(ctx context.Context, userID int) (int64, error)
	MarkRead(ctx context.Context, userID, id int) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &notificationService{notificationRepo: notificationRepo}
}

func (s *notificationService) List(ctx context.Context, userID int) ([]models.Notification, error) {
	items, err := s.notificationRepo.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID int) (int, error) {
	n, err := s.notificationRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int) (int64, error) {
	n, err := s.notificationRepo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return n, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id int) error {
	if err := s.notificationRepo.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification %d as read: %w", id, err)
	}
	return nil
}

// --- Построение уведомлений об участии ---

func eventNotification(recipientID int, event *models.Event, typ models.NotificationType, title, message string) *models.Notification {
	eventID, eventTitle := event.ID, event.Title
	return &models.Notification{
		RecipientID:       recipientID,
		Type:              typ,
		Title:             title,
		Message:           message,
		RelatedEventID:    &eventID,
		RelatedEventTitle: &eventTitle,
	}
}

func joinRequestNotification(event *models.Event, applicant *models.User, notes *string) *models.Notification {
	message := fmt.Sprintf("%s (@%s) wants to join the event %q.", applicant.FullName(), applicant.Username, event.Title)
	if n := derefString(notes); n != "" {
		message += "\n\nMessage: " + n
	}
	return eventNotification(event.CreatorID, event, models.NotificationJoinRequest, "New join request", message)
}

func joinCancelledNotification(event *models.Event, participant *models.User) *models.Notification {
	message := fmt.Sprintf("%s (@%s) cancelled their participation in %q.", participant.FullName(), participant.Username, event.Title)
	return eventNotification(event.CreatorID, event, models.NotificationJoinCancelled, "Participation cancelled", message)
}

// statusChangeNotification returns nil for statuses the participant is not notified about.
func statusChangeNotification(event *models.Event, participantUserID int, status models.ParticipantStatus) *models.Notification {
	switch status {
	case models.ParticipantConfirmed:
		return eventNotification(participantUserID, event, models.NotificationJoinApproved,
			"Join request approved",
			fmt.Sprintf("Your request to join %q has been approved. See you there!", event.Title))
	case models.ParticipantRejected:
		return eventNotification(participantUserID, event, models.NotificationJoinRejected,
			"Join request rejected",
			fmt.Sprintf("Unfortunately your request to join %q has been rejected.", event.Title))
	}
	return nil
}
