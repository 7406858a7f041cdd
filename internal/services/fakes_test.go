package services

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// testLogger returns a quiet logger for service tests
func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

type fakeBookingStore struct {
	bookings   map[uuid.UUID]*models.Booking
	lagging    []models.BookingProjection
	advanceErr error
}

func newFakeBookingStore(bookings ...*models.Booking) *fakeBookingStore {
	store := &fakeBookingStore{bookings: make(map[uuid.UUID]*models.Booking)}
	for _, b := range bookings {
		store.bookings[b.ID] = b
	}
	return store
}

func (f *fakeBookingStore) GetByID(id uuid.UUID) (*models.Booking, error) {
	booking, ok := f.bookings[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return booking, nil
}

func (f *fakeBookingStore) AdvanceStatus(id uuid.UUID, target models.BookingStatus) (bool, error) {
	if f.advanceErr != nil {
		return false, f.advanceErr
	}
	booking, ok := f.bookings[id]
	if !ok {
		return false, nil
	}
	if booking.Status.IsTerminal() || target.Rank() <= booking.Status.Rank() {
		return false, nil
	}
	booking.Status = target
	return true, nil
}

func (f *fakeBookingStore) FindStatusLagging(limit int) ([]models.BookingProjection, error) {
	if limit > len(f.lagging) {
		limit = len(f.lagging)
	}
	return f.lagging[:limit], nil
}

type fakePaymentStore struct {
	payments []*models.Payment
	byIntent map[string]uuid.UUID
	refunded map[string]bool
}

func newFakePaymentStore(payments ...*models.Payment) *fakePaymentStore {
	return &fakePaymentStore{
		payments: payments,
		byIntent: make(map[string]uuid.UUID),
		refunded: make(map[string]bool),
	}
}

func (f *fakePaymentStore) GetBySessionID(sessionID string) (*models.Payment, error) {
	for _, p := range f.payments {
		if p.ProviderSessionID != nil && *p.ProviderSessionID == sessionID {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakePaymentStore) CompleteBySessionID(sessionID string, amount float64, metadata []byte) (bool, error) {
	for _, p := range f.payments {
		if p.ProviderSessionID == nil || *p.ProviderSessionID != sessionID {
			continue
		}
		if p.Status == models.PaymentStatusCompleted {
			return false, nil
		}
		p.Status = models.PaymentStatusCompleted
		p.Amount = amount
		p.ProviderMetadata = metadata
		return true, nil
	}
	return false, nil
}

func (f *fakePaymentStore) HasCompleted(bookingID uuid.UUID, paymentType models.PaymentType) (bool, error) {
	for _, p := range f.payments {
		if p.BookingID == bookingID && p.Type == paymentType && p.Status == models.PaymentStatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePaymentStore) ResolveBookingID(intentID string) (uuid.UUID, error) {
	bookingID, ok := f.byIntent[intentID]
	if !ok {
		return uuid.Nil, sql.ErrNoRows
	}
	return bookingID, nil
}

func (f *fakePaymentStore) MarkRefundedByIntentID(intentID string) (bool, error) {
	if f.refunded[intentID] {
		return false, nil
	}
	f.refunded[intentID] = true
	return true, nil
}

type fakeHoldStore struct {
	holds map[string]*models.BookingHold
}

func newFakeHoldStore(holds ...*models.BookingHold) *fakeHoldStore {
	store := &fakeHoldStore{holds: make(map[string]*models.BookingHold)}
	for _, h := range holds {
		store.holds[h.ProviderIntentID] = h
	}
	return store
}

func (f *fakeHoldStore) GetByIntentID(intentID string) (*models.BookingHold, error) {
	hold, ok := f.holds[intentID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return hold, nil
}

func (f *fakeHoldStore) UpdateStatus(intentID string, status models.HoldStatus, amount float64, failureCode, failureMessage *string) (bool, error) {
	hold, ok := f.holds[intentID]
	if !ok || hold.Status == status {
		return false, nil
	}
	hold.Status = status
	hold.Amount = amount
	hold.FailureCode = failureCode
	hold.FailureMessage = failureMessage
	return true, nil
}

type fakeNotifier struct {
	customer   []models.Notification
	broadcasts []models.Notification
}

func (f *fakeNotifier) NotifyCustomer(recipientID uuid.UUID, n models.Notification) {
	n.RecipientID = recipientID
	f.customer = append(f.customer, n)
}

func (f *fakeNotifier) BroadcastAdmins(n models.Notification) {
	f.broadcasts = append(f.broadcasts, n)
}

type fakeEvidenceStore struct {
	contexts map[uuid.UUID]*models.DisputeContext
	records  map[string]models.DisputeRecord
}

func newFakeEvidenceStore() *fakeEvidenceStore {
	return &fakeEvidenceStore{
		contexts: make(map[uuid.UUID]*models.DisputeContext),
		records:  make(map[string]models.DisputeRecord),
	}
}

func (f *fakeEvidenceStore) GetDisputeContext(bookingID uuid.UUID) (*models.DisputeContext, error) {
	ctx, ok := f.contexts[bookingID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return ctx, nil
}

func (f *fakeEvidenceStore) UpsertDisputeRecord(record models.DisputeRecord) (bool, error) {
	prior, ok := f.records[record.ProviderDisputeID]
	if ok {
		if prior.Status == record.Status {
			return false, nil
		}
		prior.Status = record.Status
		f.records[record.ProviderDisputeID] = prior
		return true, nil
	}
	f.records[record.ProviderDisputeID] = record
	return true, nil
}

func (f *fakeEvidenceStore) MarkEvidenceSubmitted(disputeID string) error {
	record := f.records[disputeID]
	record.EvidenceSubmitted = true
	f.records[disputeID] = record
	return nil
}

type fakePayoutStore struct {
	rows map[string]models.PayoutReconciliation
}

func newFakePayoutStore() *fakePayoutStore {
	return &fakePayoutStore{rows: make(map[string]models.PayoutReconciliation)}
}

func (f *fakePayoutStore) Upsert(payout models.PayoutReconciliation) (bool, error) {
	prior, ok := f.rows[payout.ProviderPayoutID]
	if ok && prior.Status == payout.Status {
		return false, nil
	}
	f.rows[payout.ProviderPayoutID] = payout
	return true, nil
}

type fakeGateway struct {
	verifyEvent stripe.Event
	verifyErr   error
	submitErr   error
	submitted   []models.DisputeEvidence
}

func (f *fakeGateway) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	if f.verifyErr != nil {
		return stripe.Event{}, f.verifyErr
	}
	return f.verifyEvent, nil
}

func (f *fakeGateway) RetrievePaymentIntent(intentID string) (*stripe.PaymentIntent, error) {
	return &stripe.PaymentIntent{ID: intentID}, nil
}

func (f *fakeGateway) SubmitDisputeEvidence(disputeID string, evidence models.DisputeEvidence) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = append(f.submitted, evidence)
	return nil
}
