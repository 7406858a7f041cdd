package services

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/rentworks/equipment-rental-backend/internal/events"
	"github.com/rentworks/equipment-rental-backend/internal/models"
	"github.com/rentworks/equipment-rental-backend/internal/notifications"
)

// payoutStore is the ledger surface the reconciler writes
type payoutStore interface {
	Upsert(payout models.PayoutReconciliation) (bool, error)
}

// PayoutService reconciles provider settlement events into the payout
// ledger. Failed bank transfers are flagged for manual triage, never
// auto-remediated.
type PayoutService struct {
	payouts  payoutStore
	notifier notifications.Notifier
	logger   *logrus.Logger
}

// NewPayoutService creates a new PayoutService
func NewPayoutService(payouts payoutStore, notifier notifications.Notifier, logger *logrus.Logger) *PayoutService {
	return &PayoutService{
		payouts:  payouts,
		notifier: notifier,
		logger:   logger,
	}
}

// HandleCreated records a newly announced payout as pending
func (s *PayoutService) HandleCreated(ev *events.Payout) error {
	_, err := s.apply(ev, models.PayoutStatusPending, "created")
	return err
}

// HandlePaid marks a payout settled and tells the operators
func (s *PayoutService) HandlePaid(ev *events.Payout) error {
	changed, err := s.apply(ev, models.PayoutStatusSettled, "paid")
	if err != nil {
		return err
	}

	if changed {
		s.notifier.BroadcastAdmins(models.Notification{
			Category: models.NotificationCategoryPayout,
			Priority: models.NotificationPriorityMedium,
			Title:    "Payout settled",
			Message: fmt.Sprintf("Payout %s of %.2f %s arrived on %s.",
				ev.PayoutID, float64(ev.Amount)/100, ev.Currency, ev.ArrivalDate.Format("2006-01-02")),
		})
	}

	return nil
}

// HandleFailed flags a payout as a discrepancy with the provider's failure
// details and raises a high-priority alert
func (s *PayoutService) HandleFailed(ev *events.Payout) error {
	changed, err := s.apply(ev, models.PayoutStatusDiscrepancy, "failed")
	if err != nil {
		return err
	}

	if changed {
		s.notifier.BroadcastAdmins(models.Notification{
			Category: models.NotificationCategoryPayout,
			Priority: models.NotificationPriorityHigh,
			Title:    "Payout failed",
			Message: fmt.Sprintf("Payout %s of %.2f %s failed: %s %s. Manual reconciliation with the bank is required.",
				ev.PayoutID, float64(ev.Amount)/100, ev.Currency, ev.FailureCode, ev.FailureMessage),
		})
	}

	return nil
}

// apply upserts the ledger row and reports whether the status actually
// changed, so redelivered events do not re-notify. The change detection
// lives inside the upsert statement, so concurrent deliveries of the same
// event cannot both claim the change.
func (s *PayoutService) apply(ev *events.Payout, status models.PayoutStatus, providerStatus string) (bool, error) {
	details, _ := json.Marshal(map[string]interface{}{
		"provider_status": providerStatus,
		"failure_code":    ev.FailureCode,
		"failure_message": ev.FailureMessage,
	})

	changed, err := s.payouts.Upsert(models.PayoutReconciliation{
		ProviderPayoutID: ev.PayoutID,
		Amount:           float64(ev.Amount) / 100,
		Currency:         ev.Currency,
		ArrivalDate:      ev.ArrivalDate,
		Status:           status,
		Details:          details,
	})
	if err != nil {
		return false, err
	}

	s.logger.WithFields(logrus.Fields{
		"payout_id": ev.PayoutID,
		"status":    status,
		"amount":    float64(ev.Amount) / 100,
		"changed":   changed,
	}).Info("Payout reconciled")

	return changed, nil
}
