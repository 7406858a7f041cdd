package database

import (
	"fmt"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// PayoutRepository handles database operations for the
// payout_reconciliations table
type PayoutRepository struct {
	db DB
}

// NewPayoutRepository creates a new PayoutRepository
func NewPayoutRepository(db DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// Upsert creates or updates the ledger row for a provider payout id.
// The unique index on provider_payout_id guarantees exactly one row per
// payout no matter how many events arrive or in what order. Returns true
// only when the row was created or its status actually moved; the guard
// lives in the statement itself so concurrent deliveries of the same event
// cannot both observe a change.
func (r *PayoutRepository) Upsert(payout models.PayoutReconciliation) (bool, error) {
	query := `
		INSERT INTO payout_reconciliations (
			provider_payout_id, amount, currency, arrival_date, status, details,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (provider_payout_id) DO UPDATE
		SET amount = EXCLUDED.amount,
			currency = EXCLUDED.currency,
			arrival_date = EXCLUDED.arrival_date,
			status = EXCLUDED.status,
			details = EXCLUDED.details,
			updated_at = NOW()
		WHERE payout_reconciliations.status IS DISTINCT FROM EXCLUDED.status
	`

	result, err := r.db.Exec(query,
		payout.ProviderPayoutID,
		payout.Amount,
		payout.Currency,
		payout.ArrivalDate,
		payout.Status,
		payout.Details,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert payout %s: %w", payout.ProviderPayoutID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// GetByProviderPayoutID retrieves a ledger row by provider payout id
func (r *PayoutRepository) GetByProviderPayoutID(payoutID string) (*models.PayoutReconciliation, error) {
	query := `
		SELECT id, provider_payout_id, amount, currency, arrival_date, status,
			   details, created_at, updated_at
		FROM payout_reconciliations
		WHERE provider_payout_id = $1
	`

	var payout models.PayoutReconciliation
	err := r.db.Get(&payout, query, payoutID)
	if err != nil {
		return nil, err
	}

	return &payout, nil
}
