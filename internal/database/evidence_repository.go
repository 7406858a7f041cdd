package database

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rentworks/equipment-rental-backend/internal/models"
)

// EvidenceRepository loads the read-joined facts needed to assemble
// dispute evidence, and keeps the dispute audit trail
type EvidenceRepository struct {
	db DB
}

// NewEvidenceRepository creates a new EvidenceRepository
func NewEvidenceRepository(db DB) *EvidenceRepository {
	return &EvidenceRepository{db: db}
}

// GetDisputeContext joins booking, customer and contract facts for one
// booking. Contract columns are nullable since a dispute can arrive before
// the contract is signed.
func (r *EvidenceRepository) GetDisputeContext(bookingID uuid.UUID) (*models.DisputeContext, error) {
	query := `
		SELECT b.id AS booking_id,
			   b.booking_number,
			   b.delivery_address,
			   b.insurance_verified,
			   b.identity_verified,
			   u.full_name AS customer_name,
			   u.email AS customer_email,
			   c.id AS contract_id,
			   c.signed_at AS contract_signed_at,
			   c.public_url AS contract_public_url
		FROM bookings b
		JOIN users u ON u.id = b.customer_id
		LEFT JOIN contracts c ON c.booking_id = b.id
		WHERE b.id = $1
	`

	var ctx models.DisputeContext
	err := r.db.Get(&ctx, query, bookingID)
	if err != nil {
		return nil, err
	}

	return &ctx, nil
}

// UpsertDisputeRecord creates or updates the audit row for a provider
// dispute id. Returns true only when the row was created or its status
// actually moved; redelivered events hit the conflict guard and report
// false, which is what keeps callers from re-firing side effects.
func (r *EvidenceRepository) UpsertDisputeRecord(record models.DisputeRecord) (bool, error) {
	query := `
		INSERT INTO dispute_records (
			provider_dispute_id, provider_intent_id, booking_id, reason,
			amount, status, evidence_submitted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (provider_dispute_id) DO UPDATE
		SET status = EXCLUDED.status,
			updated_at = NOW()
		WHERE dispute_records.status IS DISTINCT FROM EXCLUDED.status
	`

	result, err := r.db.Exec(query,
		record.ProviderDisputeID,
		record.ProviderIntentID,
		record.BookingID,
		record.Reason,
		record.Amount,
		record.Status,
		record.EvidenceSubmitted,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert dispute record %s: %w", record.ProviderDisputeID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// MarkEvidenceSubmitted records that the evidence packet reached the gateway
func (r *EvidenceRepository) MarkEvidenceSubmitted(disputeID string) error {
	query := `
		UPDATE dispute_records
		SET evidence_submitted = TRUE, updated_at = NOW()
		WHERE provider_dispute_id = $1
	`

	_, err := r.db.Exec(query, disputeID)
	if err != nil {
		return fmt.Errorf("failed to mark evidence submitted for dispute %s: %w", disputeID, err)
	}

	return nil
}
