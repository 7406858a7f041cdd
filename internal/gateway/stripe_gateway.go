package gateway

import (
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/rentworks/equipment-rental-backend/internal/config"
	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// StripeGateway implements PaymentGateway against the Stripe API
type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

// NewStripeGateway creates a gateway client from configuration. The client
// is constructed once at startup and injected; there is no package-level
// shared instance.
func NewStripeGateway(cfg config.StripeConfig) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)

	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
	}
}

// VerifyWebhook validates the timestamped HMAC signature on a raw webhook
// body and returns the verified event
func (g *StripeGateway) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return stripe.Event{}, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return event, nil
}

// RetrievePaymentIntent fetches a payment intent by id
func (g *StripeGateway) RetrievePaymentIntent(intentID string) (*stripe.PaymentIntent, error) {
	intent, err := g.api.PaymentIntents.Get(intentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent %s: %w", intentID, err)
	}
	return intent, nil
}

// SubmitDisputeEvidence uploads an evidence packet for a dispute
func (g *StripeGateway) SubmitDisputeEvidence(disputeID string, evidence models.DisputeEvidence) error {
	text := evidence.UncategorizedText
	if evidence.ContractURL != "" {
		text = fmt.Sprintf("%s\nSigned rental contract: %s", text, evidence.ContractURL)
	}

	params := &stripe.DisputeParams{
		Evidence: &stripe.DisputeEvidenceParams{
			CustomerName:         stripe.String(evidence.CustomerName),
			CustomerEmailAddress: stripe.String(evidence.CustomerEmail),
			UncategorizedText:    stripe.String(text),
		},
	}

	if _, err := g.api.Disputes.Update(disputeID, params); err != nil {
		return fmt.Errorf("failed to submit evidence for dispute %s: %w", disputeID, err)
	}

	return nil
}
