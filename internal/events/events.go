// Package events decodes verified provider webhook payloads into a closed
// set of typed events. Handlers downstream never touch raw JSON; anything
// malformed or carrying an unknown discriminator is rejected here.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// Type is a provider webhook event type handled by this system
type Type string

const (
	TypeCheckoutCompleted       Type = "checkout.session.completed"
	TypeIntentSucceeded         Type = "payment_intent.succeeded"
	TypeIntentCanceled          Type = "payment_intent.canceled"
	TypeIntentFailed            Type = "payment_intent.payment_failed"
	TypeIntentCapturableUpdated Type = "payment_intent.amount_capturable_updated"
	TypeDisputeCreated          Type = "charge.dispute.created"
	TypeDisputeClosed           Type = "charge.dispute.closed"
	TypePayoutCreated           Type = "payout.created"
	TypePayoutPaid              Type = "payout.paid"
	TypePayoutFailed            Type = "payout.failed"
)

// Metadata keys the booking-creation flow stamps on provider objects
const (
	metadataKeyPurpose     = "purpose"
	metadataKeyPaymentType = "payment_type"
	metadataKeyBookingID   = "booking_id"
)

// CheckoutCompleted is a completed checkout session
type CheckoutCompleted struct {
	SessionID   string
	PaymentType models.PaymentType
	BookingID   string
	AmountTotal int64 // minor units
}

// Hold is a payment-intent lifecycle event for one of the two
// authorization holds
type Hold struct {
	IntentID         string
	Purpose          models.HoldPurpose
	Amount           int64 // minor units
	AmountCapturable int64 // minor units
	FailureCode      string
	FailureMessage   string
}

// DisputeCreated is a newly opened customer dispute
type DisputeCreated struct {
	DisputeID string
	IntentID  string
	Reason    string
	Amount    int64 // minor units
}

// DisputeClosed is a resolved dispute
type DisputeClosed struct {
	DisputeID string
	IntentID  string
	Status    models.DisputeStatus
}

// Payout is a provider settlement event
type Payout struct {
	PayoutID       string
	Amount         int64 // minor units
	Currency       string
	ArrivalDate    time.Time
	FailureCode    string
	FailureMessage string
}

// Event is the tagged union handed to the router. Exactly one payload
// field is non-nil, matching Type.
type Event struct {
	ID   string
	Type Type

	Checkout       *CheckoutCompleted
	Hold           *Hold
	DisputeCreated *DisputeCreated
	DisputeClosed  *DisputeClosed
	Payout         *Payout
}

// Decode maps a verified provider event to a typed Event. Returns
// (nil, nil) for event types this system does not handle; the router acks
// those. A non-nil error means the payload was malformed or carried an
// unknown discriminator.
func Decode(raw stripe.Event) (*Event, error) {
	event := &Event{
		ID:   raw.ID,
		Type: Type(raw.Type),
	}

	switch event.Type {
	case TypeCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(raw.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("failed to decode checkout session: %w", err)
		}
		paymentType, err := parsePaymentType(session.Metadata[metadataKeyPaymentType])
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", raw.ID, err)
		}
		event.Checkout = &CheckoutCompleted{
			SessionID:   session.ID,
			PaymentType: paymentType,
			BookingID:   session.Metadata[metadataKeyBookingID],
			AmountTotal: session.AmountTotal,
		}

	case TypeIntentSucceeded, TypeIntentCanceled, TypeIntentFailed, TypeIntentCapturableUpdated:
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(raw.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("failed to decode payment intent: %w", err)
		}
		purpose, err := models.ParseHoldPurpose(intent.Metadata[metadataKeyPurpose])
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", raw.ID, err)
		}
		hold := &Hold{
			IntentID:         intent.ID,
			Purpose:          purpose,
			Amount:           intent.Amount,
			AmountCapturable: intent.AmountCapturable,
		}
		if intent.LastPaymentError != nil {
			hold.FailureCode = string(intent.LastPaymentError.Code)
			hold.FailureMessage = intent.LastPaymentError.Msg
		}
		event.Hold = hold

	case TypeDisputeCreated:
		dispute, err := decodeDispute(raw.Data.Raw)
		if err != nil {
			return nil, err
		}
		event.DisputeCreated = &DisputeCreated{
			DisputeID: dispute.ID,
			IntentID:  disputeIntentID(dispute),
			Reason:    string(dispute.Reason),
			Amount:    dispute.Amount,
		}

	case TypeDisputeClosed:
		dispute, err := decodeDispute(raw.Data.Raw)
		if err != nil {
			return nil, err
		}
		status, err := parseDisputeStatus(string(dispute.Status))
		if err != nil {
			return nil, fmt.Errorf("event %s: %w", raw.ID, err)
		}
		event.DisputeClosed = &DisputeClosed{
			DisputeID: dispute.ID,
			IntentID:  disputeIntentID(dispute),
			Status:    status,
		}

	case TypePayoutCreated, TypePayoutPaid, TypePayoutFailed:
		var payout stripe.Payout
		if err := json.Unmarshal(raw.Data.Raw, &payout); err != nil {
			return nil, fmt.Errorf("failed to decode payout: %w", err)
		}
		event.Payout = &Payout{
			PayoutID:       payout.ID,
			Amount:         payout.Amount,
			Currency:       string(payout.Currency),
			ArrivalDate:    time.Unix(payout.ArrivalDate, 0).UTC(),
			FailureCode:    string(payout.FailureCode),
			FailureMessage: payout.FailureMessage,
		}

	default:
		// Not an event this system processes. The router acknowledges it so
		// the provider does not retire the subscription.
		return nil, nil
	}

	return event, nil
}

func decodeDispute(raw json.RawMessage) (*stripe.Dispute, error) {
	var dispute stripe.Dispute
	if err := json.Unmarshal(raw, &dispute); err != nil {
		return nil, fmt.Errorf("failed to decode dispute: %w", err)
	}
	return &dispute, nil
}

func disputeIntentID(dispute *stripe.Dispute) string {
	if dispute.PaymentIntent == nil {
		return ""
	}
	return dispute.PaymentIntent.ID
}

func parsePaymentType(s string) (models.PaymentType, error) {
	switch models.PaymentType(s) {
	case models.PaymentTypeDeposit, models.PaymentTypePayment:
		return models.PaymentType(s), nil
	}
	return "", fmt.Errorf("unrecognized payment type: %q", s)
}

func parseDisputeStatus(s string) (models.DisputeStatus, error) {
	switch models.DisputeStatus(s) {
	case models.DisputeStatusNeedsResponse, models.DisputeStatusUnderReview,
		models.DisputeStatusWon, models.DisputeStatusLost:
		return models.DisputeStatus(s), nil
	}
	return "", fmt.Errorf("unrecognized dispute status: %q", s)
}
