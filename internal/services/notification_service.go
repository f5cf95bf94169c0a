package services

import (
	"github.com/rahhal/travel-backend/internal/models"
	"github.com/rahhal/travel-backend/internal/realtime"
	"github.com/sirupsen/logrus"
)

// NotificationStore persists notifications
type NotificationStore interface {
	Create(notification *models.Notification) error
	GetByRecipientID(recipientID string, limit, offset int) ([]models.Notification, error)
	MarkRead(notificationID, recipientID string) error
}

// NotificationService creates notifications for booking-state events and
// pushes them to live subscriber sessions. Failures here are logged and
// swallowed: a notification must never roll back the booking transition that
// triggered it.
type NotificationService struct {
	store  NotificationStore
	hub    *realtime.Hub
	logger *logrus.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(store NotificationStore, hub *realtime.Hub, logger *logrus.Logger) *NotificationService {
	return &NotificationService{
		store:  store,
		hub:    hub,
		logger: logger,
	}
}

// Notify creates and delivers a notification. Returns nil without creating
// anything when the recipient is absent or equals the actor (users are never
// notified about their own actions).
func (s *NotificationService) Notify(
	recipientID, actorID string,
	notifType models.NotificationType,
	message string,
	metadata models.NotificationMetadata,
) *models.Notification {
	if recipientID == "" || recipientID == actorID {
		return nil
	}

	notification := &models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Type:        notifType,
		Message:     message,
		Metadata:    metadata,
	}

	if err := s.store.Create(notification); err != nil {
		s.logger.WithFields(logrus.Fields{
			"recipient_id": recipientID,
			"type":         notifType,
			"error":        err.Error(),
		}).Error("Failed to persist notification")
		return nil
	}

	if s.hub != nil {
		s.hub.Push(notification)
	}

	return notification
}

// ListForRecipient returns a user's notifications, newest first
func (s *NotificationService) ListForRecipient(recipientID string, limit, offset int) ([]models.Notification, error) {
	return s.store.GetByRecipientID(recipientID, limit, offset)
}

// MarkRead marks one of the user's notifications as read
func (s *NotificationService) MarkRead(notificationID, recipientID string) error {
	return s.store.MarkRead(notificationID, recipientID)
}
