package models

import (
	"time"
)

// TransportType represents the vehicle class assigned to a trip
type TransportType string

const (
	TransportVan14     TransportType = "van_14"
	TransportMinibus28 TransportType = "minibus_28"
	TransportBus48     TransportType = "bus_48"
)

// transportCapacities maps each transport type to its fixed seat count
var transportCapacities = map[TransportType]int{
	TransportVan14:     14,
	TransportMinibus28: 28,
	TransportBus48:     48,
}

// Capacity returns the seat capacity for the transport type, 0 if unknown
func (t TransportType) Capacity() int {
	return transportCapacities[t]
}

// TripStatus represents the publication status of a trip
type TripStatus string

const (
	TripStatusDraft     TripStatus = "draft"
	TripStatusPublished TripStatus = "published"
	TripStatusCancelled TripStatus = "cancelled"
)

// Trip represents a scheduled departure published by a company.
// Trip content editing is owned by the trip management service; the booking
// core reads trips and mutates only their confirmed seat map.
type Trip struct {
	ID            string        `json:"id" db:"id"`
	CompanyID     string        `json:"company_id" db:"company_id"`
	Title         string        `json:"title" db:"title"`
	Destination   string        `json:"destination" db:"destination"`
	DepartureDate time.Time     `json:"departure_date" db:"departure_date"`
	TransportType TransportType `json:"transport_type" db:"transport_type"`
	PriceText     string        `json:"price_text" db:"price_text"`
	Status        TripStatus    `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// Capacity returns the total seat count derived from the transport type
func (t *Trip) Capacity() int {
	return t.TransportType.Capacity()
}

// IsBookable checks if the trip accepts new bookings
func (t *Trip) IsBookable() bool {
	return t.Status == TripStatusPublished
}

// ConfirmedSeat represents one confirmed seat on a trip, materialized only
// when the owning booking is accepted. UNIQUE(trip_id, seat_label) in the
// database is what makes seat claims atomic.
type ConfirmedSeat struct {
	ID               string    `json:"id" db:"id"`
	TripID           string    `json:"trip_id" db:"trip_id"`
	SeatLabel        string    `json:"seat_label" db:"seat_label"`
	OccupantName     string    `json:"occupant_name" db:"occupant_name"`
	OccupantUserID   string    `json:"occupant_user_id" db:"occupant_user_id"`
	BookingReference string    `json:"booking_reference" db:"booking_reference"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}
