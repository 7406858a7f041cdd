package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name       string
		hasPayment bool
		hasDeposit bool
		expected   models.BookingStatus
		ok         bool
	}{
		{
			name:       "Payment and deposit complete",
			hasPayment: true,
			hasDeposit: true,
			expected:   models.BookingStatusConfirmed,
			ok:         true,
		},
		{
			name:       "Payment only",
			hasPayment: true,
			hasDeposit: false,
			expected:   models.BookingStatusPaid,
			ok:         true,
		},
		{
			name:       "Deposit only",
			hasPayment: false,
			hasDeposit: true,
			ok:         false,
		},
		{
			name:       "Neither",
			hasPayment: false,
			hasDeposit: false,
			ok:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, ok := DeriveStatus(tt.hasPayment, tt.hasDeposit)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, status)
			}
		})
	}
}

func TestRecompute_DualCompletionConvergence(t *testing.T) {
	// Deposit and payment complete via two separate events in either order;
	// the booking must end confirmed regardless
	bookingID := uuid.New()
	sessionPayment := "cs_payment"
	sessionDeposit := "cs_deposit"

	orders := [][]string{
		{sessionPayment, sessionDeposit},
		{sessionDeposit, sessionPayment},
	}

	for _, order := range orders {
		booking := &models.Booking{ID: bookingID, Status: models.BookingStatusPending}
		bookings := newFakeBookingStore(booking)
		payments := newFakePaymentStore(
			&models.Payment{BookingID: bookingID, Type: models.PaymentTypePayment, Status: models.PaymentStatusPending, ProviderSessionID: &sessionPayment},
			&models.Payment{BookingID: bookingID, Type: models.PaymentTypeDeposit, Status: models.PaymentStatusPending, ProviderSessionID: &sessionDeposit},
		)
		state := NewBookingStateService(bookings, payments, testLogger())

		for _, session := range order {
			changed, err := payments.CompleteBySessionID(session, 100, nil)
			require.NoError(t, err)
			require.True(t, changed)

			_, _, err = state.Recompute(bookingID)
			require.NoError(t, err)
		}

		assert.Equal(t, models.BookingStatusConfirmed, booking.Status,
			"order %v should converge to confirmed", order)
	}
}

func TestRecompute_PaymentOnlyMovesToPaid(t *testing.T) {
	bookingID := uuid.New()
	session := "cs_only_payment"

	booking := &models.Booking{ID: bookingID, Status: models.BookingStatusPending}
	bookings := newFakeBookingStore(booking)
	payments := newFakePaymentStore(
		&models.Payment{BookingID: bookingID, Type: models.PaymentTypePayment, Status: models.PaymentStatusCompleted, ProviderSessionID: &session},
	)
	state := NewBookingStateService(bookings, payments, testLogger())

	status, changed, err := state.Recompute(bookingID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.BookingStatusPaid, status)
	assert.Equal(t, models.BookingStatusPaid, booking.Status)
}

func TestRecompute_NeverRegresses(t *testing.T) {
	// A confirmed booking must not move back to paid when a stale
	// payment-only projection is recomputed
	bookingID := uuid.New()

	booking := &models.Booking{ID: bookingID, Status: models.BookingStatusConfirmed}
	bookings := newFakeBookingStore(booking)
	payments := newFakePaymentStore(
		&models.Payment{BookingID: bookingID, Type: models.PaymentTypePayment, Status: models.PaymentStatusCompleted},
	)
	state := NewBookingStateService(bookings, payments, testLogger())

	_, changed, err := state.Recompute(bookingID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
}

func TestRecompute_Idempotent(t *testing.T) {
	bookingID := uuid.New()

	booking := &models.Booking{ID: bookingID, Status: models.BookingStatusPending}
	bookings := newFakeBookingStore(booking)
	payments := newFakePaymentStore(
		&models.Payment{BookingID: bookingID, Type: models.PaymentTypePayment, Status: models.PaymentStatusCompleted},
		&models.Payment{BookingID: bookingID, Type: models.PaymentTypeDeposit, Status: models.PaymentStatusCompleted},
	)
	state := NewBookingStateService(bookings, payments, testLogger())

	_, changed, err := state.Recompute(bookingID)
	require.NoError(t, err)
	assert.True(t, changed)

	// Replay: same derivation, but nothing changes the second time
	_, changed, err = state.Recompute(bookingID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, models.BookingStatusConfirmed, booking.Status)
}

func TestBookingStatusRanks(t *testing.T) {
	assert.Less(t, models.BookingStatusPending.Rank(), models.BookingStatusPaid.Rank())
	assert.Less(t, models.BookingStatusPaid.Rank(), models.BookingStatusHoldPlaced.Rank())
	assert.Less(t, models.BookingStatusHoldPlaced.Rank(), models.BookingStatusConfirmed.Rank())
	assert.True(t, models.BookingStatusCompleted.IsTerminal())
	assert.True(t, models.BookingStatusCancelled.IsTerminal())
}
