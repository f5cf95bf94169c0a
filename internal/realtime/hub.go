package realtime

import (
	"sync"

	"github.com/rahhal/travel-backend/internal/models"
	"github.com/rahhal/travel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// Session is a live delivery channel to one connected client. The concrete
// transport (websocket, SSE, mobile push bridge) lives outside this module
// and plugs in through this interface.
type Session interface {
	Send(notification *models.Notification) error
}

type entry struct {
	session Session
	device  utils.DeviceInfo
}

// Hub tracks the live subscriber session registered for each user. Delivery
// is best-effort and at-most-once: a user without a session, or whose session
// errors, simply misses the live push; the persisted notification remains
// queryable.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]entry
	logger   *logrus.Logger
}

// NewHub creates a new Hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]entry),
		logger:   logger,
	}
}

// Register binds a live session to a user, replacing any previous one.
// Called by the realtime gateway when a client's connection is upgraded;
// no route in this service registers sessions directly. The user agent is
// parsed and kept for session diagnostics.
func (h *Hub) Register(userID string, session Session, userAgent string) {
	device := utils.ParseUserAgent(userAgent)

	h.mu.Lock()
	h.sessions[userID] = entry{session: session, device: device}
	h.mu.Unlock()

	h.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"device_type": device.DeviceType,
		"platform":    device.Platform,
	}).Info("Live session registered")
}

// Unregister removes a user's session if it is the given one. A stale
// unregister from a replaced session is a no-op.
func (h *Hub) Unregister(userID string, session Session) {
	h.mu.Lock()
	if current, ok := h.sessions[userID]; ok && current.session == session {
		delete(h.sessions, userID)
	}
	h.mu.Unlock()

	h.logger.WithField("user_id", userID).Info("Live session unregistered")
}

// Push delivers a notification to the recipient's live session, if any.
// Returns true when a session received it. A failed send evicts the session.
func (h *Hub) Push(notification *models.Notification) bool {
	h.mu.RLock()
	current, ok := h.sessions[notification.RecipientID]
	h.mu.RUnlock()

	if !ok {
		return false
	}

	if err := current.session.Send(notification); err != nil {
		h.logger.WithFields(logrus.Fields{
			"recipient_id": notification.RecipientID,
			"error":        err.Error(),
		}).Warn("Live push failed, dropping session")

		h.Unregister(notification.RecipientID, current.session)
		return false
	}

	return true
}

// SessionCount returns the number of connected sessions
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
