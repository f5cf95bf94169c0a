package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rahhal/travel-backend/internal/models"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create persists a notification
func (r *NotificationRepository) Create(notification *models.Notification) error {
	query := `
		INSERT INTO notifications (id, recipient_id, actor_id, type, message, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}

	return r.db.QueryRow(
		query,
		notification.ID, notification.RecipientID, notification.ActorID,
		notification.Type, notification.Message, notification.Metadata,
	).Scan(&notification.CreatedAt)
}

// GetByRecipientID retrieves notifications for a recipient, newest first
func (r *NotificationRepository) GetByRecipientID(recipientID string, limit, offset int) ([]models.Notification, error) {
	query := `
		SELECT id, recipient_id, actor_id, type, message, metadata, read, created_at
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(query, recipientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(
			&n.ID, &n.RecipientID, &n.ActorID, &n.Type,
			&n.Message, &n.Metadata, &n.Read, &n.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

// MarkRead marks a notification as read. Scoped to the recipient so users
// cannot mark others' notifications.
func (r *NotificationRepository) MarkRead(notificationID, recipientID string) error {
	query := `UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`

	result, err := r.db.Exec(query, notificationID, recipientID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("notification not found")
	}

	return nil
}
