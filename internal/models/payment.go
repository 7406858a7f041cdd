package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PaymentType discriminates the two provider-tracked charges per booking
type PaymentType string

const (
	PaymentTypeDeposit PaymentType = "deposit"
	PaymentTypePayment PaymentType = "payment"
)

// PaymentStatus mirrors the provider-side status of a payment attempt
type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusCompleted         PaymentStatus = "completed"
	PaymentStatusFailed            PaymentStatus = "failed"
	PaymentStatusRefunded          PaymentStatus = "refunded"
	PaymentStatusPartiallyRefunded PaymentStatus = "partially_refunded"
)

// Payment is one provider-tracked monetary event tied to a checkout or
// payment-intent attempt. Created by the checkout flow, updated idempotently
// by webhook handlers, never deleted.
type Payment struct {
	ID                uuid.UUID       `json:"id" db:"id"`
	BookingID         uuid.UUID       `json:"booking_id" db:"booking_id"`
	Amount            float64         `json:"amount" db:"amount"`
	Type              PaymentType     `json:"type" db:"type"`
	Status            PaymentStatus   `json:"status" db:"status"`
	ProviderSessionID *string         `json:"provider_session_id" db:"provider_session_id"`
	ProviderIntentID  *string         `json:"provider_intent_id" db:"provider_intent_id"`
	ProcessedAt       *time.Time      `json:"processed_at" db:"processed_at"`
	ProviderMetadata  json.RawMessage `json:"provider_metadata" db:"provider_metadata"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}
