package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/rentworks/equipment-rental-backend/internal/events"
	"github.com/rentworks/equipment-rental-backend/internal/gateway"
	"github.com/rentworks/equipment-rental-backend/internal/services"
)

// WebhookHandler receives payment-gateway events, verifies them and routes
// them to the lifecycle services
type WebhookHandler struct {
	gateway  gateway.PaymentGateway
	payments *services.PaymentService
	holds    *services.HoldService
	disputes *services.DisputeService
	payouts  *services.PayoutService
	logger   *logrus.Logger
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(
	gw gateway.PaymentGateway,
	payments *services.PaymentService,
	holds *services.HoldService,
	disputes *services.DisputeService,
	payouts *services.PayoutService,
	logger *logrus.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		gateway:  gw,
		payments: payments,
		holds:    holds,
		disputes: disputes,
		payouts:  payouts,
		logger:   logger,
	}
}

// HandleStripeWebhook processes one provider event
// POST /api/v1/webhooks/stripe
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// The body must be read raw: signature verification runs over the exact
	// bytes the provider signed, before anything trusts field values
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if signature == "" {
		h.logger.WithField("ip", c.ClientIP()).Warn("Webhook request missing signature header")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing signature header"})
		return
	}

	verified, err := h.gateway.VerifyWebhook(payload, signature)
	if err != nil {
		h.logger.WithError(err).WithField("ip", c.ClientIP()).Warn("Webhook signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	event, err := events.Decode(verified)
	if err != nil {
		// Malformed payload or unknown discriminator. Acknowledged so the
		// provider does not retry a payload that will never decode.
		h.logger.WithError(err).WithFields(logrus.Fields{
			"event_id":   verified.ID,
			"event_type": verified.Type,
		}).Warn("Failed to decode webhook event, acknowledging")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if event == nil {
		// Unhandled event type. Acknowledged: webhook sources retire a
		// subscription that keeps failing.
		h.logger.WithFields(logrus.Fields{
			"event_id":   verified.ID,
			"event_type": verified.Type,
		}).Info("Unhandled webhook event type, acknowledging")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if err := h.dispatch(event); err != nil {
		// Surfaced as a 5xx so the provider's retry schedule re-delivers;
		// there is no internal retry loop
		h.logger.WithError(err).WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Error("Webhook handler failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Event processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// dispatch routes a decoded event to its handler. Panics are contained
// here so a bad handler cannot crash the process.
func (h *WebhookHandler) dispatch(event *events.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic for event %s: %v", event.ID, r)
		}
	}()

	switch event.Type {
	case events.TypeCheckoutCompleted:
		return h.payments.HandleCheckoutCompleted(event.Checkout)
	case events.TypeIntentSucceeded:
		return h.holds.HandleSucceeded(event.Hold)
	case events.TypeIntentCanceled:
		return h.holds.HandleCanceled(event.Hold)
	case events.TypeIntentFailed:
		return h.holds.HandleFailed(event.Hold)
	case events.TypeIntentCapturableUpdated:
		return h.holds.HandleCapturableUpdated(event.Hold)
	case events.TypeDisputeCreated:
		return h.disputes.HandleCreated(event.DisputeCreated)
	case events.TypeDisputeClosed:
		return h.disputes.HandleClosed(event.DisputeClosed)
	case events.TypePayoutCreated:
		return h.payouts.HandleCreated(event.Payout)
	case events.TypePayoutPaid:
		return h.payouts.HandlePaid(event.Payout)
	case events.TypePayoutFailed:
		return h.payouts.HandleFailed(event.Payout)
	}

	// Decode only emits the types above; anything else is a programming error
	return fmt.Errorf("no handler for event type %s", event.Type)
}
