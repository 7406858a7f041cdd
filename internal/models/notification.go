package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// NotificationPriority controls how urgently a message is surfaced
type NotificationPriority string

const (
	NotificationPriorityLow      NotificationPriority = "low"
	NotificationPriorityMedium   NotificationPriority = "medium"
	NotificationPriorityHigh     NotificationPriority = "high"
	NotificationPriorityCritical NotificationPriority = "critical"
)

// NotificationCategory groups messages for filtering and routing
type NotificationCategory string

const (
	NotificationCategoryBooking NotificationCategory = "booking"
	NotificationCategoryPayment NotificationCategory = "payment"
	NotificationCategoryDispute NotificationCategory = "dispute"
	NotificationCategoryPayout  NotificationCategory = "payout"
)

// Notification is the structured message handed to the notification
// emitter. TemplateID and TemplateData exist for future localization;
// Title and Message are the rendered fallback.
type Notification struct {
	ID           uuid.UUID            `json:"id" db:"id"`
	RecipientID  uuid.UUID            `json:"recipient_id" db:"recipient_id"`
	Category     NotificationCategory `json:"category" db:"category"`
	Priority     NotificationPriority `json:"priority" db:"priority"`
	Title        string               `json:"title" db:"title"`
	Message      string               `json:"message" db:"message"`
	ActionURL    *string              `json:"action_url" db:"action_url"`
	TemplateID   *string              `json:"template_id" db:"template_id"`
	TemplateData json.RawMessage      `json:"template_data" db:"template_data"`
	CreatedAt    time.Time            `json:"created_at" db:"created_at"`
}
