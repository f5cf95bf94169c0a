package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType categorizes booking-state events pushed to users
type NotificationType string

const (
	NotifBookingCreated   NotificationType = "booking_created"
	NotifBookingAccepted  NotificationType = "booking_accepted"
	NotifBookingRejected  NotificationType = "booking_rejected"
	NotifBookingCancelled NotificationType = "booking_cancelled"
	NotifSeatAssigned     NotificationType = "seat_assigned"
)

// NotificationMetadata is a free-form bag carrying booking reference, trip
// reference and the specific sub-event. Stored as jsonb.
type NotificationMetadata map[string]string

// Value implements driver.Valuer for jsonb storage
func (m NotificationMetadata) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for jsonb storage
func (m *NotificationMetadata) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported metadata type %T", src)
	}
	return json.Unmarshal(b, m)
}

// Notification is created by the fan-out as a side effect of booking-state
// changes, never directly by API callers
type Notification struct {
	ID          string               `json:"id" db:"id"`
	RecipientID string               `json:"recipient_id" db:"recipient_id"`
	ActorID     string               `json:"actor_id" db:"actor_id"`
	Type        NotificationType     `json:"type" db:"type"`
	Message     string               `json:"message" db:"message"`
	Metadata    NotificationMetadata `json:"metadata" db:"metadata"`
	Read        bool                 `json:"read" db:"read"`
	CreatedAt   time.Time            `json:"created_at" db:"created_at"`
}
