package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// HoldPurpose discriminates the two authorization holds placed per booking
type HoldPurpose string

const (
	// HoldPurposeVerify is the small card-verification authorization
	HoldPurposeVerify HoldPurpose = "verify_hold"

	// HoldPurposeSecurity is the security-deposit authorization held until
	// equipment return
	HoldPurposeSecurity HoldPurpose = "security_hold"
)

// ParseHoldPurpose validates a purpose tag from provider metadata.
// Unrecognized purposes are rejected loudly rather than silently ignored.
func ParseHoldPurpose(s string) (HoldPurpose, error) {
	switch HoldPurpose(s) {
	case HoldPurposeVerify, HoldPurposeSecurity:
		return HoldPurpose(s), nil
	}
	return "", fmt.Errorf("unrecognized hold purpose: %q", s)
}

// HoldStatus mirrors the provider PaymentIntent lifecycle for a hold
type HoldStatus string

const (
	HoldStatusPending   HoldStatus = "pending"
	HoldStatusSucceeded HoldStatus = "succeeded"
	HoldStatusCanceled  HoldStatus = "canceled"
	HoldStatusFailed    HoldStatus = "failed"
)

// BookingHold represents one of the two authorization holds per booking,
// keyed by the provider payment-intent id
type BookingHold struct {
	ID               uuid.UUID   `json:"id" db:"id"`
	BookingID        uuid.UUID   `json:"booking_id" db:"booking_id"`
	ProviderIntentID string      `json:"provider_intent_id" db:"provider_intent_id"`
	Purpose          HoldPurpose `json:"purpose" db:"purpose"`
	Amount           float64     `json:"amount" db:"amount"`
	Status           HoldStatus  `json:"status" db:"status"`
	FailureCode      *string     `json:"failure_code" db:"failure_code"`
	FailureMessage   *string     `json:"failure_message" db:"failure_message"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}
