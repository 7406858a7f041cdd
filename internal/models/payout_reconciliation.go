package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PayoutStatus is the reconciliation state of a provider payout
type PayoutStatus string

const (
	PayoutStatusPending     PayoutStatus = "pending"
	PayoutStatusSettled     PayoutStatus = "settled"
	PayoutStatusDiscrepancy PayoutStatus = "discrepancy"
)

// PayoutReconciliation is one ledger row per provider payout id. The
// provider payout id is the upsert key; subsequent events for the same
// payout update the row in place.
type PayoutReconciliation struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	ProviderPayoutID string          `json:"provider_payout_id" db:"provider_payout_id"`
	Amount           float64         `json:"amount" db:"amount"`
	Currency         string          `json:"currency" db:"currency"`
	ArrivalDate      time.Time       `json:"arrival_date" db:"arrival_date"`
	Status           PayoutStatus    `json:"status" db:"status"`
	Details          json.RawMessage `json:"details" db:"details"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}
