package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending           BookingStatus = "pending"
	BookingStatusPaid              BookingStatus = "paid"
	BookingStatusHoldPlaced        BookingStatus = "hold_placed"
	BookingStatusConfirmed         BookingStatus = "confirmed"
	BookingStatusInsuranceVerified BookingStatus = "insurance_verified"
	BookingStatusCompleted         BookingStatus = "completed"
	BookingStatusCancelled         BookingStatus = "cancelled"
)

// bookingStatusRank orders statuses so webhook handlers never move a booking
// backwards. Terminal statuses sit above everything a webhook can set.
var bookingStatusRank = map[BookingStatus]int{
	BookingStatusPending:           0,
	BookingStatusPaid:              1,
	BookingStatusHoldPlaced:        2,
	BookingStatusConfirmed:         3,
	BookingStatusInsuranceVerified: 4,
	BookingStatusCompleted:         5,
	BookingStatusCancelled:         5,
}

// Rank returns the monotonic ordering rank for a booking status.
// Unknown statuses rank highest so we never overwrite them.
func (s BookingStatus) Rank() int {
	rank, ok := bookingStatusRank[s]
	if !ok {
		return 99
	}
	return rank
}

// IsTerminal reports whether no further webhook transition applies
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled
}

// StatusesBelow returns every known status that ranks strictly below target.
// Used to build the conditional-update guard for monotonic transitions.
func StatusesBelow(target BookingStatus) []BookingStatus {
	below := []BookingStatus{}
	for status, rank := range bookingStatusRank {
		if status.IsTerminal() {
			continue
		}
		if rank < target.Rank() {
			below = append(below, status)
		}
	}
	return below
}

// Booking represents one equipment rental reservation
type Booking struct {
	ID                   uuid.UUID      `json:"id" db:"id"`
	BookingNumber        string         `json:"booking_number" db:"booking_number"`
	CustomerID           uuid.UUID      `json:"customer_id" db:"customer_id"`
	EquipmentID          uuid.UUID      `json:"equipment_id" db:"equipment_id"`
	AccessoryIDs         pq.StringArray `json:"accessory_ids" db:"accessory_ids"`
	StartDate            time.Time      `json:"start_date" db:"start_date"`
	EndDate              time.Time      `json:"end_date" db:"end_date"`
	Subtotal             float64        `json:"subtotal" db:"subtotal"`
	Taxes                float64        `json:"taxes" db:"taxes"`
	DeliveryFee          float64        `json:"delivery_fee" db:"delivery_fee"`
	WaiverFee            float64        `json:"waiver_fee" db:"waiver_fee"`
	CouponDiscount       float64        `json:"coupon_discount" db:"coupon_discount"`
	Total                float64        `json:"total" db:"total"`
	Status               BookingStatus  `json:"status" db:"status"`
	VerifyHoldIntentID   *string        `json:"verify_hold_intent_id" db:"verify_hold_intent_id"`
	SecurityHoldIntentID *string        `json:"security_hold_intent_id" db:"security_hold_intent_id"`
	PaymentMethodID      *string        `json:"payment_method_id" db:"payment_method_id"`
	DeliveryAddress      *string        `json:"delivery_address" db:"delivery_address"`
	InsuranceVerified    bool           `json:"insurance_verified" db:"insurance_verified"`
	IdentityVerified     bool           `json:"identity_verified" db:"identity_verified"`
	CreatedAt            time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at" db:"updated_at"`
}

// BookingProjection is the derived status a booking should hold given its
// completed payment rows. Used by the reconciliation sweep.
type BookingProjection struct {
	BookingID  uuid.UUID     `db:"booking_id"`
	Status     BookingStatus `db:"status"`
	HasPayment bool          `db:"has_payment"`
	HasDeposit bool          `db:"has_deposit"`
}
