package services

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rentworks/equipment-rental-backend/internal/database"
	"github.com/rentworks/equipment-rental-backend/internal/events"
	"github.com/rentworks/equipment-rental-backend/internal/models"
	"github.com/rentworks/equipment-rental-backend/internal/notifications"
)

// checkoutPaymentStore is the payment surface the checkout handler writes
type checkoutPaymentStore interface {
	GetBySessionID(sessionID string) (*models.Payment, error)
	CompleteBySessionID(sessionID string, amount float64, metadata []byte) (bool, error)
}

// PaymentService handles completed checkout sessions: it settles the
// payment row and lets the booking state machine re-derive booking status.
type PaymentService struct {
	payments checkoutPaymentStore
	state    *BookingStateService
	notifier notifications.Notifier
	logger   *logrus.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(payments checkoutPaymentStore, state *BookingStateService, notifier notifications.Notifier, logger *logrus.Logger) *PaymentService {
	return &PaymentService{
		payments: payments,
		state:    state,
		notifier: notifier,
		logger:   logger,
	}
}

// HandleCheckoutCompleted settles the payment row behind a completed
// checkout session and advances the booking projection. Replays are
// harmless: the completion write is status-guarded and the projection is
// monotonic.
func (s *PaymentService) HandleCheckoutCompleted(ev *events.CheckoutCompleted) error {
	payment, err := s.payments.GetBySessionID(ev.SessionID)
	if err != nil {
		if database.IsNotFound(err) {
			// Stale or foreign session id, not a system fault
			s.logger.WithFields(logrus.Fields{
				"session_id": ev.SessionID,
				"booking_id": ev.BookingID,
			}).Warn("No payment row for checkout session, dropping event")
			return nil
		}
		return fmt.Errorf("failed to load payment for session %s: %w", ev.SessionID, err)
	}

	// Gateway amounts arrive in minor units
	amount := float64(ev.AmountTotal) / 100

	metadata, _ := json.Marshal(map[string]interface{}{
		"checkout_session_id": ev.SessionID,
		"payment_type":        ev.PaymentType,
		"amount_total":        ev.AmountTotal,
	})

	completed, err := s.payments.CompleteBySessionID(ev.SessionID, amount, metadata)
	if err != nil {
		return err
	}

	if completed {
		s.logger.WithFields(logrus.Fields{
			"session_id":   ev.SessionID,
			"booking_id":   payment.BookingID,
			"payment_type": ev.PaymentType,
			"amount":       amount,
		}).Info("Payment completed")
	}

	// Re-derive booking status from payment rows regardless of whether this
	// delivery changed the payment row. Payment status is the source of
	// truth; a failed booking write here is logged, not fatal.
	status, advanced, err := s.state.Recompute(payment.BookingID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", payment.BookingID).
			Error("Failed to advance booking status after payment")
		return nil
	}

	if advanced && status == models.BookingStatusConfirmed {
		s.notifyConfirmed(payment.BookingID)
	}

	return nil
}

func (s *PaymentService) notifyConfirmed(bookingID uuid.UUID) {
	booking, err := s.state.GetBooking(bookingID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", bookingID).
			Warn("Booking confirmed but row could not be loaded for notification")
		return
	}

	templateID := "booking_confirmed"
	templateData, _ := json.Marshal(map[string]interface{}{
		"booking_number": booking.BookingNumber,
		"total":          booking.Total,
	})

	s.notifier.NotifyCustomer(booking.CustomerID, models.Notification{
		Category:     models.NotificationCategoryBooking,
		Priority:     models.NotificationPriorityMedium,
		Title:        "Booking confirmed",
		Message:      fmt.Sprintf("Your booking %s is confirmed. Payment and deposit are complete.", booking.BookingNumber),
		TemplateID:   &templateID,
		TemplateData: templateData,
	})
}
