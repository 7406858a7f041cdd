// Package gateway abstracts the payment provider behind the narrow set of
// operations this system needs, so handlers can be tested against fakes
// and the provider SDK stays out of the services.
package gateway

import (
	"github.com/stripe/stripe-go/v82"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// PaymentGateway defines the provider operations used by the webhook core
type PaymentGateway interface {
	// VerifyWebhook authenticates a raw webhook body against the signature
	// header and returns the verified event. Must run before any parsing
	// that trusts field values.
	VerifyWebhook(payload []byte, signature string) (stripe.Event, error)

	// RetrievePaymentIntent fetches a payment intent from the provider
	RetrievePaymentIntent(intentID string) (*stripe.PaymentIntent, error)

	// SubmitDisputeEvidence uploads an assembled evidence packet for a
	// dispute
	SubmitDisputeEvidence(disputeID string, evidence models.DisputeEvidence) error
}
