package database

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// NotificationRepository handles database operations for the
// notifications table
type NotificationRepository struct {
	db DB
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Insert stores a notification for one recipient
func (r *NotificationRepository) Insert(n models.Notification) error {
	query := `
		INSERT INTO notifications (
			recipient_id, category, priority, title, message, action_url,
			template_id, template_data, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`

	_, err := r.db.Exec(query,
		n.RecipientID,
		n.Category,
		n.Priority,
		n.Title,
		n.Message,
		n.ActionURL,
		n.TemplateID,
		n.TemplateData,
	)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	return nil
}

// BroadcastToRoles fans a notification out to every user holding one of the
// given roles. Returns the number of recipients.
func (r *NotificationRepository) BroadcastToRoles(roles []string, n models.Notification) (int, error) {
	query := `
		INSERT INTO notifications (
			recipient_id, category, priority, title, message, action_url,
			template_id, template_data, created_at
		)
		SELECT u.id, $2, $3, $4, $5, $6, $7, $8, NOW()
		FROM users u
		WHERE u.role = ANY($1)
	`

	result, err := r.db.Exec(query,
		pq.Array(roles),
		n.Category,
		n.Priority,
		n.Title,
		n.Message,
		n.ActionURL,
		n.TemplateID,
		n.TemplateData,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to broadcast notification: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	return int(rowsAffected), nil
}
