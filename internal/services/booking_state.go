package services

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// bookingStateStore is the booking surface the state machine writes
type bookingStateStore interface {
	GetByID(id uuid.UUID) (*models.Booking, error)
	AdvanceStatus(id uuid.UUID, target models.BookingStatus) (bool, error)
}

// paymentProjectionStore is the payment surface the state machine reads
type paymentProjectionStore interface {
	HasCompleted(bookingID uuid.UUID, paymentType models.PaymentType) (bool, error)
}

// BookingStateService is the authoritative transition table for booking
// status. Booking status is a projection of payment rows: every decision
// re-reads the rows it needs and writes conditionally, so concurrent
// events for the same booking converge without locks.
type BookingStateService struct {
	bookings bookingStateStore
	payments paymentProjectionStore
	logger   *logrus.Logger
}

// NewBookingStateService creates a new BookingStateService
func NewBookingStateService(bookings bookingStateStore, payments paymentProjectionStore, logger *logrus.Logger) *BookingStateService {
	return &BookingStateService{
		bookings: bookings,
		payments: payments,
		logger:   logger,
	}
}

// DeriveStatus computes the status a booking's completed payment rows
// imply. Returns false when the rows imply no webhook-driven transition.
func DeriveStatus(hasPayment, hasDeposit bool) (models.BookingStatus, bool) {
	switch {
	case hasPayment && hasDeposit:
		return models.BookingStatusConfirmed, true
	case hasPayment:
		return models.BookingStatusPaid, true
	default:
		return "", false
	}
}

// Recompute re-derives a booking's status from its payment rows and applies
// it monotonically. Returns the derived target and whether the booking row
// changed. Safe to call any number of times.
func (s *BookingStateService) Recompute(bookingID uuid.UUID) (models.BookingStatus, bool, error) {
	hasPayment, err := s.payments.HasCompleted(bookingID, models.PaymentTypePayment)
	if err != nil {
		return "", false, fmt.Errorf("failed to check payment row for booking %s: %w", bookingID, err)
	}

	hasDeposit, err := s.payments.HasCompleted(bookingID, models.PaymentTypeDeposit)
	if err != nil {
		return "", false, fmt.Errorf("failed to check deposit row for booking %s: %w", bookingID, err)
	}

	target, ok := DeriveStatus(hasPayment, hasDeposit)
	if !ok {
		return "", false, nil
	}

	changed, err := s.bookings.AdvanceStatus(bookingID, target)
	if err != nil {
		return target, false, err
	}

	if changed {
		s.logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"status":     target,
		}).Info("Booking status advanced")
	}

	return target, changed, nil
}

// AdvanceTo applies one monotonic transition directly. Used for transitions
// that are not derived from payment rows, like hold_placed.
func (s *BookingStateService) AdvanceTo(bookingID uuid.UUID, target models.BookingStatus) (bool, error) {
	changed, err := s.bookings.AdvanceStatus(bookingID, target)
	if err != nil {
		return false, err
	}

	if changed {
		s.logger.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"status":     target,
		}).Info("Booking status advanced")
	}

	return changed, nil
}

// GetBooking loads a booking row
func (s *BookingStateService) GetBooking(bookingID uuid.UUID) (*models.Booking, error) {
	return s.bookings.GetByID(bookingID)
}
