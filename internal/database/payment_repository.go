package database

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// PaymentRepository handles database operations for the payments table
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// GetBySessionID retrieves a payment by its provider checkout-session id
func (r *PaymentRepository) GetBySessionID(sessionID string) (*models.Payment, error) {
	query := `
		SELECT id, booking_id, amount, type, status, provider_session_id,
			   provider_intent_id, processed_at, provider_metadata,
			   created_at, updated_at
		FROM payments
		WHERE provider_session_id = $1
	`

	var payment models.Payment
	err := r.db.Get(&payment, query, sessionID)
	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// CompleteBySessionID marks the payment row for a checkout session as
// completed. The status guard makes redelivered events no-ops; callers must
// only fire side effects when the returned changed flag is true.
func (r *PaymentRepository) CompleteBySessionID(sessionID string, amount float64, metadata []byte) (bool, error) {
	query := `
		UPDATE payments
		SET status = 'completed',
			amount = $1,
			provider_metadata = $2,
			processed_at = NOW(),
			updated_at = NOW()
		WHERE provider_session_id = $3 AND status <> 'completed'
	`

	result, err := r.db.Exec(query, amount, metadata, sessionID)
	if err != nil {
		return false, fmt.Errorf("failed to complete payment for session %s: %w", sessionID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// HasCompleted reports whether the booking has a completed payment row of
// the given type. The confirmed transition re-queries both rows through
// this instead of trusting handler-local flags, so out-of-order deposit and
// payment events still converge.
func (r *PaymentRepository) HasCompleted(bookingID uuid.UUID, paymentType models.PaymentType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM payments
			WHERE booking_id = $1 AND type = $2 AND status = 'completed'
		)
	`

	var exists bool
	err := r.db.Get(&exists, query, bookingID, paymentType)
	if err != nil {
		return false, err
	}

	return exists, nil
}

// ResolveBookingID finds the booking behind a provider payment-intent id,
// checking payment rows first and hold rows second
func (r *PaymentRepository) ResolveBookingID(intentID string) (uuid.UUID, error) {
	query := `
		SELECT booking_id FROM payments WHERE provider_intent_id = $1
		UNION
		SELECT booking_id FROM booking_payments WHERE provider_intent_id = $1
		LIMIT 1
	`

	var bookingID uuid.UUID
	err := r.db.Get(&bookingID, query, intentID)
	if err != nil {
		return uuid.Nil, err
	}

	return bookingID, nil
}

// MarkRefundedByIntentID records a lost dispute against the originating
// payment row
func (r *PaymentRepository) MarkRefundedByIntentID(intentID string) (bool, error) {
	query := `
		UPDATE payments
		SET status = 'refunded', updated_at = NOW()
		WHERE provider_intent_id = $1 AND status <> 'refunded'
	`

	result, err := r.db.Exec(query, intentID)
	if err != nil {
		return false, fmt.Errorf("failed to mark payment refunded for intent %s: %w", intentID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// IsNotFound reports whether an error is a lookup miss
func IsNotFound(err error) bool {
	return err == sql.ErrNoRows
}
