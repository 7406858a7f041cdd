package database

import (
	"fmt"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// HoldRepository handles database operations for the booking_payments
// (authorization hold) table
type HoldRepository struct {
	db DB
}

// NewHoldRepository creates a new HoldRepository
func NewHoldRepository(db DB) *HoldRepository {
	return &HoldRepository{db: db}
}

// GetByIntentID retrieves a hold row by its provider payment-intent id
func (r *HoldRepository) GetByIntentID(intentID string) (*models.BookingHold, error) {
	query := `
		SELECT id, booking_id, provider_intent_id, purpose, amount, status,
			   failure_code, failure_message, created_at, updated_at
		FROM booking_payments
		WHERE provider_intent_id = $1
	`

	var hold models.BookingHold
	err := r.db.Get(&hold, query, intentID)
	if err != nil {
		return nil, err
	}

	return &hold, nil
}

// UpdateStatus transitions a hold row, recording the authorized amount and
// any gateway failure details. The status guard keeps redelivered events
// from re-firing notifications.
func (r *HoldRepository) UpdateStatus(intentID string, status models.HoldStatus, amount float64, failureCode, failureMessage *string) (bool, error) {
	query := `
		UPDATE booking_payments
		SET status = $1,
			amount = $2,
			failure_code = $3,
			failure_message = $4,
			updated_at = NOW()
		WHERE provider_intent_id = $5 AND status <> $1
	`

	result, err := r.db.Exec(query, status, amount, failureCode, failureMessage, intentID)
	if err != nil {
		return false, fmt.Errorf("failed to update hold %s to %s: %w", intentID, status, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
