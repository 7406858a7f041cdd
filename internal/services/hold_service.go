package services

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rentworks/equipment-rental-backend/internal/database"
	"github.com/rentworks/equipment-rental-backend/internal/events"
	"github.com/rentworks/equipment-rental-backend/internal/models"
	"github.com/rentworks/equipment-rental-backend/internal/notifications"
)

// holdStore is the hold surface the lifecycle manager writes
type holdStore interface {
	GetByIntentID(intentID string) (*models.BookingHold, error)
	UpdateStatus(intentID string, status models.HoldStatus, amount float64, failureCode, failureMessage *string) (bool, error)
}

// HoldService tracks the two authorization holds per booking through
// authorize, capture/release and failed states
type HoldService struct {
	holds    holdStore
	state    *BookingStateService
	notifier notifications.Notifier
	logger   *logrus.Logger
}

// NewHoldService creates a new HoldService
func NewHoldService(holds holdStore, state *BookingStateService, notifier notifications.Notifier, logger *logrus.Logger) *HoldService {
	return &HoldService{
		holds:    holds,
		state:    state,
		notifier: notifier,
		logger:   logger,
	}
}

// HandleSucceeded marks a hold authorized. A security hold additionally
// advances the booking to hold_placed and tells the customer the amount
// reserved.
func (s *HoldService) HandleSucceeded(ev *events.Hold) error {
	hold, ok, err := s.lookupHold(ev.IntentID)
	if err != nil || !ok {
		return err
	}

	amount := float64(ev.Amount) / 100

	changed, err := s.holds.UpdateStatus(ev.IntentID, models.HoldStatusSucceeded, amount, nil, nil)
	if err != nil {
		return err
	}
	if !changed {
		// Redelivered event, nothing left to do
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"intent_id":  ev.IntentID,
		"booking_id": hold.BookingID,
		"purpose":    ev.Purpose,
		"amount":     amount,
	}).Info("Hold authorized")

	if ev.Purpose != models.HoldPurposeSecurity {
		return nil
	}

	// Failed booking write is logged, not fatal; the hold row is the source
	// of truth and the sweep repairs the projection later
	if _, err := s.state.AdvanceTo(hold.BookingID, models.BookingStatusHoldPlaced); err != nil {
		s.logger.WithError(err).WithField("booking_id", hold.BookingID).
			Error("Failed to advance booking to hold_placed")
	}

	booking, err := s.state.GetBooking(hold.BookingID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", hold.BookingID).
			Warn("Security hold placed but booking could not be loaded for notification")
		return nil
	}

	templateID := "security_hold_placed"
	templateData, _ := json.Marshal(map[string]interface{}{
		"booking_number": booking.BookingNumber,
		"amount":         amount,
	})

	s.notifier.NotifyCustomer(booking.CustomerID, models.Notification{
		Category:     models.NotificationCategoryPayment,
		Priority:     models.NotificationPriorityMedium,
		Title:        "Security deposit hold placed",
		Message:      fmt.Sprintf("A security hold of %.2f has been placed for booking %s. It will be released when the equipment is returned.", amount, booking.BookingNumber),
		TemplateID:   &templateID,
		TemplateData: templateData,
	})

	return nil
}

// HandleCanceled marks a hold released. For a security hold this is a clean
// return: the authorization was never captured, so there is no refund to
// process, only a customer notice.
func (s *HoldService) HandleCanceled(ev *events.Hold) error {
	hold, ok, err := s.lookupHold(ev.IntentID)
	if err != nil || !ok {
		return err
	}

	amount := float64(ev.Amount) / 100

	changed, err := s.holds.UpdateStatus(ev.IntentID, models.HoldStatusCanceled, amount, nil, nil)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"intent_id":  ev.IntentID,
		"booking_id": hold.BookingID,
		"purpose":    ev.Purpose,
	}).Info("Hold released")

	if ev.Purpose != models.HoldPurposeSecurity {
		return nil
	}

	booking, err := s.state.GetBooking(hold.BookingID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", hold.BookingID).
			Warn("Security hold released but booking could not be loaded for notification")
		return nil
	}

	templateID := "security_hold_released"
	templateData, _ := json.Marshal(map[string]interface{}{
		"booking_number": booking.BookingNumber,
		"amount":         amount,
	})

	s.notifier.NotifyCustomer(booking.CustomerID, models.Notification{
		Category:     models.NotificationCategoryPayment,
		Priority:     models.NotificationPriorityLow,
		Title:        "Security deposit hold released",
		Message:      fmt.Sprintf("The security hold for booking %s has been released. Nothing was charged.", booking.BookingNumber),
		TemplateID:   &templateID,
		TemplateData: templateData,
	})

	return nil
}

// HandleFailed marks a hold failed with the gateway's failure details.
// A verify-hold failure is routine card trouble; a security-hold failure is
// urgent because equipment pickup may be imminent with no hold secured.
func (s *HoldService) HandleFailed(ev *events.Hold) error {
	hold, ok, err := s.lookupHold(ev.IntentID)
	if err != nil || !ok {
		return err
	}

	amount := float64(ev.Amount) / 100

	var failureCode, failureMessage *string
	if ev.FailureCode != "" {
		failureCode = &ev.FailureCode
	}
	if ev.FailureMessage != "" {
		failureMessage = &ev.FailureMessage
	}

	changed, err := s.holds.UpdateStatus(ev.IntentID, models.HoldStatusFailed, amount, failureCode, failureMessage)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"intent_id":    ev.IntentID,
		"booking_id":   hold.BookingID,
		"purpose":      ev.Purpose,
		"failure_code": ev.FailureCode,
	}).Warn("Hold authorization failed")

	booking, err := s.state.GetBooking(hold.BookingID)
	if err != nil {
		s.logger.WithError(err).WithField("booking_id", hold.BookingID).
			Warn("Hold failed but booking could not be loaded for notification")
		return nil
	}

	if ev.Purpose == models.HoldPurposeVerify {
		templateID := "verify_hold_failed"
		s.notifier.NotifyCustomer(booking.CustomerID, models.Notification{
			Category:   models.NotificationCategoryPayment,
			Priority:   models.NotificationPriorityMedium,
			Title:      "Card verification failed",
			Message:    fmt.Sprintf("We could not verify your card for booking %s. Please update your payment method.", booking.BookingNumber),
			TemplateID: &templateID,
		})
		return nil
	}

	templateID := "security_hold_failed"
	s.notifier.NotifyCustomer(booking.CustomerID, models.Notification{
		Category:   models.NotificationCategoryPayment,
		Priority:   models.NotificationPriorityHigh,
		Title:      "Security deposit hold failed",
		Message:    fmt.Sprintf("The security hold for booking %s could not be placed. Please update your payment method before pickup.", booking.BookingNumber),
		TemplateID: &templateID,
	})

	s.notifier.BroadcastAdmins(models.Notification{
		Category: models.NotificationCategoryPayment,
		Priority: models.NotificationPriorityCritical,
		Title:    "Security hold failed",
		Message: fmt.Sprintf("Security hold failed for booking %s (%s). Pickup may be imminent without a secured deposit. Failure: %s %s",
			booking.BookingNumber, booking.ID, ev.FailureCode, ev.FailureMessage),
	})

	return nil
}

// HandleCapturableUpdated logs hold capture eligibility. Capture is a
// separate, explicit operator action, not automated from this event.
func (s *HoldService) HandleCapturableUpdated(ev *events.Hold) error {
	s.logger.WithFields(logrus.Fields{
		"intent_id":         ev.IntentID,
		"purpose":           ev.Purpose,
		"amount_capturable": float64(ev.AmountCapturable) / 100,
	}).Info("Hold became capturable")
	return nil
}

// lookupHold loads a hold row, treating a missing row as an ignorable
// lookup miss per the error taxonomy
func (s *HoldService) lookupHold(intentID string) (*models.BookingHold, bool, error) {
	hold, err := s.holds.GetByIntentID(intentID)
	if err != nil {
		if database.IsNotFound(err) {
			s.logger.WithField("intent_id", intentID).
				Warn("No hold row for payment intent, dropping event")
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load hold for intent %s: %w", intentID, err)
	}
	return hold, true, nil
}
