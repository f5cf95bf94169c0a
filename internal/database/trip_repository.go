package database

import (
	"github.com/rahhal/travel-backend/internal/models"
)

// TripRepository handles read access to the trips table. Trip content
// mutation belongs to the trip management service; the booking core only
// reads trips and mutates their confirmed seat map (see TripSeatRepository).
type TripRepository struct {
	db DB
}

// NewTripRepository creates a new TripRepository
func NewTripRepository(db DB) *TripRepository {
	return &TripRepository{db: db}
}

// GetByID retrieves a trip by ID
func (r *TripRepository) GetByID(tripID string) (*models.Trip, error) {
	query := `
		SELECT id, company_id, title, destination, departure_date,
			   transport_type, price_text, status, created_at, updated_at
		FROM trips
		WHERE id = $1
	`

	trip := &models.Trip{}
	err := r.db.QueryRow(query, tripID).Scan(
		&trip.ID, &trip.CompanyID, &trip.Title, &trip.Destination, &trip.DepartureDate,
		&trip.TransportType, &trip.PriceText, &trip.Status, &trip.CreatedAt, &trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return trip, nil
}
