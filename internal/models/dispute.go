package models

import (
	"time"

	"github.com/google/uuid"
)

// DisputeStatus is the gateway-side state of a dispute, observed via events
type DisputeStatus string

const (
	DisputeStatusNeedsResponse DisputeStatus = "needs_response"
	DisputeStatusUnderReview   DisputeStatus = "under_review"
	DisputeStatusWon           DisputeStatus = "won"
	DisputeStatusLost          DisputeStatus = "lost"
)

// DisputeRecord is the audit row kept per provider dispute id so operators
// can review what evidence was assembled and whether auto-submission worked.
type DisputeRecord struct {
	ID                uuid.UUID     `json:"id" db:"id"`
	ProviderDisputeID string        `json:"provider_dispute_id" db:"provider_dispute_id"`
	ProviderIntentID  string        `json:"provider_intent_id" db:"provider_intent_id"`
	BookingID         *uuid.UUID    `json:"booking_id" db:"booking_id"`
	Reason            string        `json:"reason" db:"reason"`
	Amount            float64       `json:"amount" db:"amount"`
	Status            DisputeStatus `json:"status" db:"status"`
	EvidenceSubmitted bool          `json:"evidence_submitted" db:"evidence_submitted"`
	CreatedAt         time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at" db:"updated_at"`
}

// DisputeEvidence is the assembled evidence packet submitted to the gateway
type DisputeEvidence struct {
	CustomerName      string
	CustomerEmail     string
	ContractURL       string
	UncategorizedText string
}

// DisputeContext holds the booking, customer and contract facts needed to
// assemble an evidence packet. Loaded in one read-joined query.
type DisputeContext struct {
	BookingID         uuid.UUID  `db:"booking_id"`
	BookingNumber     string     `db:"booking_number"`
	DeliveryAddress   *string    `db:"delivery_address"`
	InsuranceVerified bool       `db:"insurance_verified"`
	IdentityVerified  bool       `db:"identity_verified"`
	CustomerName      string     `db:"customer_name"`
	CustomerEmail     string     `db:"customer_email"`
	ContractID        *string    `db:"contract_id"`
	ContractSignedAt  *time.Time `db:"contract_signed_at"`
	ContractPublicURL *string    `db:"contract_public_url"`
}
