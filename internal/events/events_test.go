package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

func rawEvent(t *testing.T, eventType string, object interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return stripe.Event{
		ID:   "evt_1",
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestDecode_CheckoutCompleted(t *testing.T) {
	event, err := Decode(rawEvent(t, "checkout.session.completed", map[string]interface{}{
		"id":           "cs_1",
		"amount_total": 75050,
		"metadata": map[string]string{
			"payment_type": "payment",
			"booking_id":   "b-1",
		},
	}))
	require.NoError(t, err)
	require.NotNil(t, event)
	require.NotNil(t, event.Checkout)

	assert.Equal(t, TypeCheckoutCompleted, event.Type)
	assert.Equal(t, "cs_1", event.Checkout.SessionID)
	assert.Equal(t, models.PaymentTypePayment, event.Checkout.PaymentType)
	assert.Equal(t, "b-1", event.Checkout.BookingID)
	assert.Equal(t, int64(75050), event.Checkout.AmountTotal)
}

func TestDecode_CheckoutRejectsUnknownPaymentType(t *testing.T) {
	_, err := Decode(rawEvent(t, "checkout.session.completed", map[string]interface{}{
		"id":       "cs_1",
		"metadata": map[string]string{"payment_type": "tip"},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized payment type")
}

func TestDecode_HoldEvents(t *testing.T) {
	for _, eventType := range []string{
		"payment_intent.succeeded",
		"payment_intent.canceled",
		"payment_intent.payment_failed",
		"payment_intent.amount_capturable_updated",
	} {
		t.Run(eventType, func(t *testing.T) {
			event, err := Decode(rawEvent(t, eventType, map[string]interface{}{
				"id":                "pi_1",
				"amount":            50000,
				"amount_capturable": 50000,
				"metadata":          map[string]string{"purpose": "security_hold"},
			}))
			require.NoError(t, err)
			require.NotNil(t, event)
			require.NotNil(t, event.Hold)

			assert.Equal(t, "pi_1", event.Hold.IntentID)
			assert.Equal(t, models.HoldPurposeSecurity, event.Hold.Purpose)
			assert.Equal(t, int64(50000), event.Hold.Amount)
		})
	}
}

func TestDecode_HoldRejectsUnknownPurpose(t *testing.T) {
	_, err := Decode(rawEvent(t, "payment_intent.succeeded", map[string]interface{}{
		"id":       "pi_1",
		"metadata": map[string]string{"purpose": "mystery_hold"},
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery_hold")
}

func TestDecode_HoldCarriesFailureDetails(t *testing.T) {
	event, err := Decode(rawEvent(t, "payment_intent.payment_failed", map[string]interface{}{
		"id":       "pi_1",
		"metadata": map[string]string{"purpose": "verify_hold"},
		"last_payment_error": map[string]interface{}{
			"code":    "card_declined",
			"message": "Your card was declined.",
		},
	}))
	require.NoError(t, err)
	require.NotNil(t, event.Hold)

	assert.Equal(t, "card_declined", event.Hold.FailureCode)
	assert.Equal(t, "Your card was declined.", event.Hold.FailureMessage)
}

func TestDecode_DisputeCreated(t *testing.T) {
	event, err := Decode(rawEvent(t, "charge.dispute.created", map[string]interface{}{
		"id":             "dp_1",
		"amount":         120000,
		"reason":         "fraudulent",
		"payment_intent": map[string]interface{}{"id": "pi_disputed"},
	}))
	require.NoError(t, err)
	require.NotNil(t, event.DisputeCreated)

	assert.Equal(t, "dp_1", event.DisputeCreated.DisputeID)
	assert.Equal(t, "pi_disputed", event.DisputeCreated.IntentID)
	assert.Equal(t, "fraudulent", event.DisputeCreated.Reason)
	assert.Equal(t, int64(120000), event.DisputeCreated.Amount)
}

func TestDecode_DisputeClosed(t *testing.T) {
	event, err := Decode(rawEvent(t, "charge.dispute.closed", map[string]interface{}{
		"id":             "dp_1",
		"status":         "lost",
		"payment_intent": map[string]interface{}{"id": "pi_disputed"},
	}))
	require.NoError(t, err)
	require.NotNil(t, event.DisputeClosed)

	assert.Equal(t, models.DisputeStatusLost, event.DisputeClosed.Status)
}

func TestDecode_DisputeClosedRejectsUnknownStatus(t *testing.T) {
	_, err := Decode(rawEvent(t, "charge.dispute.closed", map[string]interface{}{
		"id":     "dp_1",
		"status": "vanished",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unrecognized dispute status")
}

func TestDecode_Payout(t *testing.T) {
	event, err := Decode(rawEvent(t, "payout.failed", map[string]interface{}{
		"id":              "po_1",
		"amount":          250000,
		"currency":        "usd",
		"arrival_date":    1775001600,
		"failure_code":    "account_closed",
		"failure_message": "The bank account has been closed.",
	}))
	require.NoError(t, err)
	require.NotNil(t, event.Payout)

	assert.Equal(t, "po_1", event.Payout.PayoutID)
	assert.Equal(t, int64(250000), event.Payout.Amount)
	assert.Equal(t, "usd", event.Payout.Currency)
	assert.Equal(t, "account_closed", event.Payout.FailureCode)
	assert.Equal(t, 2026, event.Payout.ArrivalDate.Year())
}

func TestDecode_UnhandledTypeIsAcked(t *testing.T) {
	event, err := Decode(rawEvent(t, "invoice.finalized", map[string]interface{}{"id": "in_1"}))
	assert.NoError(t, err)
	assert.Nil(t, event, "unhandled types decode to nothing, not an error")
}

func TestDecode_MalformedPayloadErrors(t *testing.T) {
	_, err := Decode(stripe.Event{
		ID:   "evt_bad",
		Type: stripe.EventType("checkout.session.completed"),
		Data: &stripe.EventData{Raw: []byte(`{"amount_total": "not-a-number"}`)},
	})
	require.Error(t, err)
}
