package services

import (
	"fmt"
	"testing"

	"github.com/rahhal/travel-backend/internal/models"
	"github.com/rahhal/travel-backend/internal/realtime"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotificationStore struct {
	created   []*models.Notification
	failNext  bool
	markCalls [][2]string
}

func (f *fakeNotificationStore) Create(notification *models.Notification) error {
	if f.failNext {
		f.failNext = false
		return fmt.Errorf("database error")
	}
	notification.ID = fmt.Sprintf("notif-%d", len(f.created)+1)
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeNotificationStore) GetByRecipientID(recipientID string, limit, offset int) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.created {
		if n.RecipientID == recipientID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(notificationID, recipientID string) error {
	f.markCalls = append(f.markCalls, [2]string{notificationID, recipientID})
	return nil
}

type fakeLiveSession struct {
	received []*models.Notification
}

func (s *fakeLiveSession) Send(notification *models.Notification) error {
	s.received = append(s.received, notification)
	return nil
}

func newNotificationFixture() (*NotificationService, *fakeNotificationStore, *realtime.Hub) {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	store := &fakeNotificationStore{}
	hub := realtime.NewHub(logger)
	return NewNotificationService(store, hub, logger), store, hub
}

func TestNotify(t *testing.T) {
	t.Run("Persists and pushes live", func(t *testing.T) {
		service, store, hub := newNotificationFixture()
		session := &fakeLiveSession{}
		hub.Register("operator-1", session, "")

		notification := service.Notify("operator-1", "traveler-1", models.NotifBookingCreated,
			"New booking RH-20260115-A1B2C3", models.NotificationMetadata{"event": "created"})

		require.NotNil(t, notification)
		assert.Len(t, store.created, 1)
		require.Len(t, session.received, 1)
		assert.Equal(t, models.NotifBookingCreated, session.received[0].Type)
	})

	t.Run("Actor never notifies themselves", func(t *testing.T) {
		service, store, _ := newNotificationFixture()

		notification := service.Notify("traveler-1", "traveler-1", models.NotifBookingCancelled, "msg", nil)
		assert.Nil(t, notification)
		assert.Empty(t, store.created)
	})

	t.Run("Empty recipient is skipped", func(t *testing.T) {
		service, store, _ := newNotificationFixture()

		notification := service.Notify("", "traveler-1", models.NotifBookingCreated, "msg", nil)
		assert.Nil(t, notification)
		assert.Empty(t, store.created)
	})

	t.Run("Persist failure is swallowed", func(t *testing.T) {
		service, store, _ := newNotificationFixture()
		store.failNext = true

		notification := service.Notify("operator-1", "traveler-1", models.NotifBookingCreated, "msg", nil)
		assert.Nil(t, notification)
	})

	t.Run("No live session still persists", func(t *testing.T) {
		service, store, _ := newNotificationFixture()

		notification := service.Notify("operator-1", "traveler-1", models.NotifBookingAccepted, "msg", nil)
		require.NotNil(t, notification)
		assert.Len(t, store.created, 1)
	})
}

func TestMarkRead(t *testing.T) {
	service, store, _ := newNotificationFixture()

	err := service.MarkRead("notif-1", "operator-1")
	require.NoError(t, err)
	require.Len(t, store.markCalls, 1)
	assert.Equal(t, [2]string{"notif-1", "operator-1"}, store.markCalls[0])
}
