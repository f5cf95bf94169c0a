package models

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// CommissionRate is the fixed platform cut of a booking's total price
const CommissionRate = 0.05

// BookingStatus represents the primary state of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// PaymentStatus represents the payment state of a booking, tracked as a
// label by the operator and mutated independently of the booking status
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusRefunded      PaymentStatus = "refunded"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
)

// ValidPaymentStatus reports whether s is a known payment status label
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusRefunded, PaymentStatusPartiallyPaid:
		return true
	}
	return false
}

// CancelledBy records which party cancelled a booking
type CancelledBy string

const (
	CancelledByRequester CancelledBy = "requester"
	CancelledByCompany   CancelledBy = "company"
)

// Booking represents a traveler's request for seats on a trip
type Booking struct {
	ID               string         `json:"id" db:"id"`
	BookingReference string         `json:"booking_reference" db:"booking_reference"`
	TripID           string         `json:"trip_id" db:"trip_id"`
	CompanyID        string         `json:"company_id" db:"company_id"`
	UserID           string         `json:"user_id" db:"user_id"`
	SeatCount        int            `json:"seat_count" db:"seat_count"`
	SeatLabels       pq.StringArray `json:"seat_labels" db:"seat_labels"`
	TravelDate       time.Time      `json:"travel_date" db:"travel_date"`
	ContactName      string         `json:"contact_name" db:"contact_name"`
	ContactPhone     string         `json:"contact_phone" db:"contact_phone"`
	SpecialRequests  *string        `json:"special_requests,omitempty" db:"special_requests"`

	// Financials are fixed at creation and recomputed only when the
	// requester edits seat count while the booking is still pending
	UnitPrice     float64 `json:"unit_price" db:"unit_price"`
	TotalPrice    float64 `json:"total_price" db:"total_price"`
	Commission    float64 `json:"commission" db:"commission"`
	NetToOperator float64 `json:"net_to_operator" db:"net_to_operator"`

	Status             BookingStatus `json:"status" db:"status"`
	PaymentStatus      PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentMethod      *string       `json:"payment_method,omitempty" db:"payment_method"`
	StatusUpdatedAt    *time.Time    `json:"status_updated_at,omitempty" db:"status_updated_at"`
	RejectionReason    *string       `json:"rejection_reason,omitempty" db:"rejection_reason"`
	CancellationReason *string       `json:"cancellation_reason,omitempty" db:"cancellation_reason"`
	CancelledBy        *CancelledBy  `json:"cancelled_by,omitempty" db:"cancelled_by"`
	CreatedAt          time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" db:"updated_at"`
}

// HasSeatSelection reports whether the booking carries explicit seat labels.
// Capacity-only bookings do not participate in per-seat conflict checking.
func (b *Booking) HasSeatSelection() bool {
	return len(b.SeatLabels) > 0
}

// CanAccept reports whether the booking may be accepted
func (b *Booking) CanAccept() bool {
	return b.Status == BookingStatusPending
}

// CanReject reports whether the booking may be rejected
func (b *Booking) CanReject() bool {
	return b.Status == BookingStatusPending
}

// CanCancel reports whether the booking may be cancelled.
// Terminal states (rejected, cancelled) never transition again.
func (b *Booking) CanCancel() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusAccepted
}

// CanEdit reports whether the requester may still edit mutable fields.
// Once accepted, capacity has been committed and self-edits are closed.
func (b *Booking) CanEdit() bool {
	return b.Status == BookingStatusPending
}

// ComputeFinancials derives total, commission and operator net from the unit
// price and seat count
func (b *Booking) ComputeFinancials() {
	b.TotalPrice = b.UnitPrice * float64(b.SeatCount)
	b.Commission = b.TotalPrice * CommissionRate
	b.NetToOperator = b.TotalPrice - b.Commission
}

// CreateBookingRequest represents the request to create a booking
type CreateBookingRequest struct {
	TripID          string   `json:"trip_id" binding:"required"`
	SeatCount       int      `json:"seat_count" binding:"required,min=1"`
	SeatLabels      []string `json:"seat_labels,omitempty"`
	TravelDate      string   `json:"travel_date" binding:"required"`
	ContactName     string   `json:"contact_name"`
	ContactPhone    string   `json:"contact_phone" binding:"required"`
	SpecialRequests *string  `json:"special_requests,omitempty"`
}

// Validate validates the create booking request
func (r *CreateBookingRequest) Validate() error {
	if r.SeatCount <= 0 {
		return errors.New("seat_count must be at least 1")
	}
	if r.SeatCount > 10 {
		return errors.New("maximum 10 seats can be booked at once")
	}
	if len(r.SeatLabels) > 0 && len(r.SeatLabels) != r.SeatCount {
		return errors.New("seat_labels must match seat_count when seats are selected")
	}
	if hasDuplicateLabels(r.SeatLabels) {
		return errors.New("seat_labels must not contain duplicates")
	}
	return nil
}

// UpdateBookingRequest represents a requester edit of a pending booking
type UpdateBookingRequest struct {
	SeatCount       *int     `json:"seat_count,omitempty"`
	SeatLabels      []string `json:"seat_labels,omitempty"`
	ContactName     *string  `json:"contact_name,omitempty"`
	ContactPhone    *string  `json:"contact_phone,omitempty"`
	SpecialRequests *string  `json:"special_requests,omitempty"`
}

// RejectBookingRequest carries the operator's rejection reason
type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CancelBookingRequest carries an optional cancellation reason
type CancelBookingRequest struct {
	Reason *string `json:"reason,omitempty"`
}

// UpdatePaymentRequest updates the payment label on an accepted booking
type UpdatePaymentRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" binding:"required"`
	PaymentMethod *string       `json:"payment_method,omitempty"`
}

func hasDuplicateLabels(labels []string) bool {
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			return true
		}
		seen[l] = struct{}{}
	}
	return false
}
