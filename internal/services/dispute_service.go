package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rentworks/equipment-rental-backend/internal/database"
	"github.com/rentworks/equipment-rental-backend/internal/events"
	"github.com/rentworks/equipment-rental-backend/internal/gateway"
	"github.com/rentworks/equipment-rental-backend/internal/models"
	"github.com/rentworks/equipment-rental-backend/internal/notifications"
	"github.com/rentworks/equipment-rental-backend/pkg/contractlink"
)

// disputePaymentStore resolves bookings from payment-intent ids and records
// lost disputes
type disputePaymentStore interface {
	ResolveBookingID(intentID string) (uuid.UUID, error)
	MarkRefundedByIntentID(intentID string) (bool, error)
}

// disputeEvidenceStore loads evidence context and keeps the audit trail
type disputeEvidenceStore interface {
	GetDisputeContext(bookingID uuid.UUID) (*models.DisputeContext, error)
	UpsertDisputeRecord(record models.DisputeRecord) (bool, error)
	MarkEvidenceSubmitted(disputeID string) error
}

// DisputeService assembles and submits dispute evidence. Automation only
// pre-stages evidence; every dispute still goes to a human, so the admin
// broadcast fires no matter how submission went.
type DisputeService struct {
	payments disputePaymentStore
	evidence disputeEvidenceStore
	gateway  gateway.PaymentGateway
	signer   *contractlink.Signer
	notifier notifications.Notifier
	logger   *logrus.Logger
}

// NewDisputeService creates a new DisputeService
func NewDisputeService(
	payments disputePaymentStore,
	evidence disputeEvidenceStore,
	gw gateway.PaymentGateway,
	signer *contractlink.Signer,
	notifier notifications.Notifier,
	logger *logrus.Logger,
) *DisputeService {
	return &DisputeService{
		payments: payments,
		evidence: evidence,
		gateway:  gw,
		signer:   signer,
		notifier: notifier,
		logger:   logger,
	}
}

// HandleCreated assembles an evidence packet for a new dispute and submits
// it best-effort, then broadcasts to admin operators
func (s *DisputeService) HandleCreated(ev *events.DisputeCreated) error {
	if ev.IntentID == "" {
		s.logger.WithField("dispute_id", ev.DisputeID).
			Warn("Dispute carries no payment intent, dropping event")
		return nil
	}

	bookingID, err := s.payments.ResolveBookingID(ev.IntentID)
	if err != nil {
		if database.IsNotFound(err) {
			// Evidence cannot be assembled without booking context
			s.logger.WithFields(logrus.Fields{
				"dispute_id": ev.DisputeID,
				"intent_id":  ev.IntentID,
			}).Warn("No booking for disputed payment intent, dropping event")
			return nil
		}
		return fmt.Errorf("failed to resolve booking for dispute %s: %w", ev.DisputeID, err)
	}

	ctx, err := s.evidence.GetDisputeContext(bookingID)
	if err != nil {
		if database.IsNotFound(err) {
			s.logger.WithFields(logrus.Fields{
				"dispute_id": ev.DisputeID,
				"booking_id": bookingID,
			}).Warn("No evidence context for disputed booking, dropping event")
			return nil
		}
		return fmt.Errorf("failed to load evidence context for dispute %s: %w", ev.DisputeID, err)
	}

	amount := float64(ev.Amount) / 100

	// The audit row is written first and doubles as the idempotency gate:
	// a redelivered event finds the row already at needs_response and must
	// not re-submit evidence or re-page the operators
	firstSeen, err := s.evidence.UpsertDisputeRecord(models.DisputeRecord{
		ProviderDisputeID: ev.DisputeID,
		ProviderIntentID:  ev.IntentID,
		BookingID:         &bookingID,
		Reason:            ev.Reason,
		Amount:            amount,
		Status:            models.DisputeStatusNeedsResponse,
	})
	if err != nil {
		return fmt.Errorf("failed to record dispute %s: %w", ev.DisputeID, err)
	}
	if !firstSeen {
		s.logger.WithField("dispute_id", ev.DisputeID).
			Info("Dispute already recorded, dropping redelivered event")
		return nil
	}

	packet := s.assemble(ev, ctx)

	// Best-effort: a failed auto-submission must not block alerting a human
	submitted := false
	if err := s.gateway.SubmitDisputeEvidence(ev.DisputeID, packet); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"dispute_id": ev.DisputeID,
			"booking_id": bookingID,
		}).Error("Failed to submit dispute evidence")
	} else {
		submitted = true
		s.logger.WithFields(logrus.Fields{
			"dispute_id": ev.DisputeID,
			"booking_id": bookingID,
		}).Info("Dispute evidence submitted")

		if err := s.evidence.MarkEvidenceSubmitted(ev.DisputeID); err != nil {
			s.logger.WithError(err).WithField("dispute_id", ev.DisputeID).
				Error("Failed to record evidence submission")
		}
	}

	// Disputes always require human judgment
	s.notifier.BroadcastAdmins(models.Notification{
		Category: models.NotificationCategoryDispute,
		Priority: models.NotificationPriorityCritical,
		Title:    "Payment dispute opened",
		Message: fmt.Sprintf("Dispute %s opened for booking %s: %.2f, reason %q. Evidence auto-submitted: %t.",
			ev.DisputeID, ctx.BookingNumber, amount, ev.Reason, submitted),
	})

	return nil
}

// HandleClosed records a dispute outcome. A lost dispute marks the
// originating payment refunded; a dedicated financial-loss ledger is a
// known gap.
func (s *DisputeService) HandleClosed(ev *events.DisputeClosed) error {
	if _, err := s.evidence.UpsertDisputeRecord(models.DisputeRecord{
		ProviderDisputeID: ev.DisputeID,
		ProviderIntentID:  ev.IntentID,
		Status:            ev.Status,
	}); err != nil {
		s.logger.WithError(err).WithField("dispute_id", ev.DisputeID).
			Error("Failed to record dispute outcome")
	}

	s.logger.WithFields(logrus.Fields{
		"dispute_id": ev.DisputeID,
		"status":     ev.Status,
	}).Info("Dispute closed")

	if ev.Status != models.DisputeStatusLost || ev.IntentID == "" {
		return nil
	}

	changed, err := s.payments.MarkRefundedByIntentID(ev.IntentID)
	if err != nil {
		s.logger.WithError(err).WithField("dispute_id", ev.DisputeID).
			Error("Failed to mark disputed payment refunded")
		return nil
	}
	if changed {
		s.logger.WithFields(logrus.Fields{
			"dispute_id": ev.DisputeID,
			"intent_id":  ev.IntentID,
		}).Warn("Dispute lost, payment marked refunded")
	}

	return nil
}

// assemble builds the evidence packet from booking, customer and contract
// facts
func (s *DisputeService) assemble(ev *events.DisputeCreated, ctx *models.DisputeContext) models.DisputeEvidence {
	packet := models.DisputeEvidence{
		CustomerName:  ctx.CustomerName,
		CustomerEmail: ctx.CustomerEmail,
	}

	packet.ContractURL = s.contractURL(ctx)

	if ev.Reason == "fraudulent" {
		packet.UncategorizedText = s.fraudNarrative(ctx)
	} else {
		packet.UncategorizedText = fmt.Sprintf(
			"Booking %s was reserved and paid by the customer named above.", ctx.BookingNumber)
	}

	return packet
}

// contractURL prefers a freshly signed time-limited link and falls back to
// the stored public link if signing fails
func (s *DisputeService) contractURL(ctx *models.DisputeContext) string {
	if ctx.ContractID != nil {
		signed, err := s.signer.SignedURL(*ctx.ContractID)
		if err == nil {
			return signed
		}
		s.logger.WithError(err).WithField("contract_id", *ctx.ContractID).
			Warn("Failed to sign contract link, falling back to stored link")
	}

	if ctx.ContractPublicURL != nil {
		return *ctx.ContractPublicURL
	}

	return ""
}

// fraudNarrative synthesizes the narrative submitted for the fraudulent
// reason code
func (s *DisputeService) fraudNarrative(ctx *models.DisputeContext) string {
	signedAt := "not signed"
	if ctx.ContractSignedAt != nil {
		signedAt = ctx.ContractSignedAt.UTC().Format("2006-01-02 15:04:05 MST")
	}

	address := "not recorded"
	if ctx.DeliveryAddress != nil {
		address = *ctx.DeliveryAddress
	}

	verified := []string{}
	if ctx.IdentityVerified {
		verified = append(verified, "government identity")
	}
	if ctx.InsuranceVerified {
		verified = append(verified, "insurance documents")
	}
	verification := "No additional verification on file."
	if len(verified) > 0 {
		verification = fmt.Sprintf("Verified before rental: %s.", strings.Join(verified, " and "))
	}

	return fmt.Sprintf(
		"The rental contract for booking %s was signed at %s. Equipment was delivered to %s. %s",
		ctx.BookingNumber, signedAt, address, verification)
}
