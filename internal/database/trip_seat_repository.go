package database

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/rahhal/travel-backend/internal/models"
)

// TripSeatRepository handles the per-trip confirmed seat map. Seats are
// materialized here only for accepted bookings; the UNIQUE(trip_id,
// seat_label) index makes ClaimSeat the single serialization point for
// concurrent accepts, so two bookings can never hold the same seat.
type TripSeatRepository struct {
	db DB
}

// NewTripSeatRepository creates a new TripSeatRepository
func NewTripSeatRepository(db DB) *TripSeatRepository {
	return &TripSeatRepository{db: db}
}

// ClaimSeat atomically claims a seat for a booking. Returns true when the
// seat was inserted, false when the label is already taken on this trip.
// The conditional insert replaces a check-then-write pattern that would race
// under concurrent accepts.
func (r *TripSeatRepository) ClaimSeat(seat *models.ConfirmedSeat) (bool, error) {
	query := `
		INSERT INTO trip_confirmed_seats (
			id, trip_id, seat_label, occupant_name, occupant_user_id, booking_reference
		) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (trip_id, seat_label) DO NOTHING
	`

	if seat.ID == "" {
		seat.ID = uuid.New().String()
	}

	result, err := r.db.Exec(
		query,
		seat.ID, seat.TripID, seat.SeatLabel,
		seat.OccupantName, seat.OccupantUserID, seat.BookingReference,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

// GetByTripID retrieves all confirmed seats for a trip
func (r *TripSeatRepository) GetByTripID(tripID string) ([]models.ConfirmedSeat, error) {
	query := `
		SELECT id, trip_id, seat_label, occupant_name, occupant_user_id,
			   booking_reference, created_at
		FROM trip_confirmed_seats
		WHERE trip_id = $1
		ORDER BY seat_label
	`

	rows, err := r.db.Query(query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanSeats(rows)
}

// GetLabelsByTripID retrieves only the confirmed seat labels for a trip
func (r *TripSeatRepository) GetLabelsByTripID(tripID string) ([]string, error) {
	query := `SELECT seat_label FROM trip_confirmed_seats WHERE trip_id = $1 ORDER BY seat_label`

	rows, err := r.db.Query(query, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, err
		}
		labels = append(labels, label)
	}

	return labels, rows.Err()
}

// GetByBookingReference retrieves the confirmed seats held by one booking
func (r *TripSeatRepository) GetByBookingReference(reference string) ([]models.ConfirmedSeat, error) {
	query := `
		SELECT id, trip_id, seat_label, occupant_name, occupant_user_id,
			   booking_reference, created_at
		FROM trip_confirmed_seats
		WHERE booking_reference = $1
		ORDER BY seat_label
	`

	rows, err := r.db.Query(query, reference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanSeats(rows)
}

// ReleaseByBookingReference removes exactly one booking's seats from the
// trip's confirmed set. Returns the number of seats released.
func (r *TripSeatRepository) ReleaseByBookingReference(reference string) (int, error) {
	query := `DELETE FROM trip_confirmed_seats WHERE booking_reference = $1`

	result, err := r.db.Exec(query, reference)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rowsAffected), nil
}

// CountByTripID returns the number of confirmed seats on a trip, used for
// the capacity check on capacity-only bookings
func (r *TripSeatRepository) CountByTripID(tripID string) (int, error) {
	var count int
	err := r.db.QueryRow(
		`SELECT COUNT(*) FROM trip_confirmed_seats WHERE trip_id = $1`, tripID,
	).Scan(&count)
	return count, err
}

// scanSeats scans confirmed seats from rows
func (r *TripSeatRepository) scanSeats(rows *sql.Rows) ([]models.ConfirmedSeat, error) {
	seats := []models.ConfirmedSeat{}

	for rows.Next() {
		var seat models.ConfirmedSeat
		err := rows.Scan(
			&seat.ID, &seat.TripID, &seat.SeatLabel, &seat.OccupantName,
			&seat.OccupantUserID, &seat.BookingReference, &seat.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}
