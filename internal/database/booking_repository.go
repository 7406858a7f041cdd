package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// GetByID retrieves a booking by its id
func (r *BookingRepository) GetByID(id uuid.UUID) (*models.Booking, error) {
	query := `
		SELECT id, booking_number, customer_id, equipment_id, accessory_ids,
			   start_date, end_date, subtotal, taxes, delivery_fee, waiver_fee,
			   coupon_discount, total, status, verify_hold_intent_id,
			   security_hold_intent_id, payment_method_id, delivery_address,
			   insurance_verified, identity_verified, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var booking models.Booking
	err := r.db.Get(&booking, query, id)
	if err != nil {
		return nil, err
	}

	return &booking, nil
}

// AdvanceStatus moves a booking to target only if its current status ranks
// strictly below target. Returns true when the row actually changed, which
// is what keeps replayed events from re-firing side effects.
func (r *BookingRepository) AdvanceStatus(id uuid.UUID, target models.BookingStatus) (bool, error) {
	allowedFrom := models.StatusesBelow(target)
	if len(allowedFrom) == 0 {
		return false, fmt.Errorf("no status ranks below %q", target)
	}

	from := make([]string, 0, len(allowedFrom))
	for _, s := range allowedFrom {
		from = append(from, string(s))
	}

	query := `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = ANY($3)
	`

	result, err := r.db.Exec(query, target, id, pq.Array(from))
	if err != nil {
		return false, fmt.Errorf("failed to advance booking %s to %s: %w", id, target, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// FindStatusLagging returns bookings whose status trails what their
// completed payment rows imply. Consumed by the reconciliation sweep.
func (r *BookingRepository) FindStatusLagging(limit int) ([]models.BookingProjection, error) {
	query := `
		SELECT b.id AS booking_id,
			   b.status AS status,
			   EXISTS (
				   SELECT 1 FROM payments p
				   WHERE p.booking_id = b.id AND p.type = 'payment' AND p.status = 'completed'
			   ) AS has_payment,
			   EXISTS (
				   SELECT 1 FROM payments p
				   WHERE p.booking_id = b.id AND p.type = 'deposit' AND p.status = 'completed'
			   ) AS has_deposit
		FROM bookings b
		WHERE b.status IN ('pending', 'paid', 'hold_placed')
		  AND EXISTS (
			  SELECT 1 FROM payments p
			  WHERE p.booking_id = b.id AND p.status = 'completed'
		  )
		ORDER BY b.updated_at
		LIMIT $1
	`

	var projections []models.BookingProjection
	err := r.db.Select(&projections, query, limit)
	if err != nil {
		return nil, err
	}

	return projections, nil
}
