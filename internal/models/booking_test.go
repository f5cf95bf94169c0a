package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeFinancials(t *testing.T) {
	t.Run("Two seats on a 500 trip", func(t *testing.T) {
		booking := &Booking{UnitPrice: 500, SeatCount: 2}
		booking.ComputeFinancials()

		assert.Equal(t, 1000.0, booking.TotalPrice)
		assert.Equal(t, 50.0, booking.Commission)
		assert.Equal(t, 950.0, booking.NetToOperator)
	})

	t.Run("Single seat", func(t *testing.T) {
		booking := &Booking{UnitPrice: 120, SeatCount: 1}
		booking.ComputeFinancials()

		assert.Equal(t, 120.0, booking.TotalPrice)
		assert.Equal(t, 6.0, booking.Commission)
		assert.Equal(t, 114.0, booking.NetToOperator)
	})

	t.Run("Commission plus net always equals total", func(t *testing.T) {
		booking := &Booking{UnitPrice: 333, SeatCount: 7}
		booking.ComputeFinancials()

		assert.InDelta(t, booking.TotalPrice, booking.Commission+booking.NetToOperator, 1e-9)
	})

	t.Run("Recompute after seat count change", func(t *testing.T) {
		booking := &Booking{UnitPrice: 200, SeatCount: 2}
		booking.ComputeFinancials()
		assert.Equal(t, 400.0, booking.TotalPrice)

		booking.SeatCount = 5
		booking.ComputeFinancials()
		assert.Equal(t, 1000.0, booking.TotalPrice)
		assert.Equal(t, 50.0, booking.Commission)
		assert.Equal(t, 950.0, booking.NetToOperator)
	})
}

func TestBookingTransitionPredicates(t *testing.T) {
	tests := []struct {
		status    BookingStatus
		canAccept bool
		canReject bool
		canCancel bool
		canEdit   bool
	}{
		{BookingStatusPending, true, true, true, true},
		{BookingStatusAccepted, false, false, true, false},
		{BookingStatusRejected, false, false, false, false},
		{BookingStatusCancelled, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			booking := &Booking{Status: tt.status}
			assert.Equal(t, tt.canAccept, booking.CanAccept())
			assert.Equal(t, tt.canReject, booking.CanReject())
			assert.Equal(t, tt.canCancel, booking.CanCancel())
			assert.Equal(t, tt.canEdit, booking.CanEdit())
		})
	}
}

func TestHasSeatSelection(t *testing.T) {
	withSeats := &Booking{SeatLabels: []string{"A1", "A2"}}
	assert.True(t, withSeats.HasSeatSelection())

	capacityOnly := &Booking{SeatCount: 3}
	assert.False(t, capacityOnly.HasSeatSelection())
}

func TestCreateBookingRequestValidate(t *testing.T) {
	t.Run("Valid capacity-only request", func(t *testing.T) {
		req := &CreateBookingRequest{TripID: "t1", SeatCount: 3, TravelDate: "2026-03-01"}
		assert.NoError(t, req.Validate())
	})

	t.Run("Valid seat-selected request", func(t *testing.T) {
		req := &CreateBookingRequest{TripID: "t1", SeatCount: 2, SeatLabels: []string{"A1", "A2"}}
		assert.NoError(t, req.Validate())
	})

	t.Run("Zero seats", func(t *testing.T) {
		req := &CreateBookingRequest{SeatCount: 0}
		assert.Error(t, req.Validate())
	})

	t.Run("Too many seats", func(t *testing.T) {
		req := &CreateBookingRequest{SeatCount: 11}
		assert.Error(t, req.Validate())
	})

	t.Run("Label count mismatch", func(t *testing.T) {
		req := &CreateBookingRequest{SeatCount: 3, SeatLabels: []string{"A1", "A2"}}
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "seat_labels must match seat_count")
	})

	t.Run("Duplicate labels", func(t *testing.T) {
		req := &CreateBookingRequest{SeatCount: 2, SeatLabels: []string{"A1", "A1"}}
		err := req.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "duplicates")
	})
}

func TestValidPaymentStatus(t *testing.T) {
	assert.True(t, ValidPaymentStatus(PaymentStatusPending))
	assert.True(t, ValidPaymentStatus(PaymentStatusPaid))
	assert.True(t, ValidPaymentStatus(PaymentStatusRefunded))
	assert.True(t, ValidPaymentStatus(PaymentStatusPartiallyPaid))
	assert.False(t, ValidPaymentStatus("chargeback"))
	assert.False(t, ValidPaymentStatus(""))
}

func TestTransportCapacity(t *testing.T) {
	assert.Equal(t, 14, TransportVan14.Capacity())
	assert.Equal(t, 28, TransportMinibus28.Capacity())
	assert.Equal(t, 48, TransportBus48.Capacity())
	assert.Equal(t, 0, TransportType("rickshaw").Capacity())
}
