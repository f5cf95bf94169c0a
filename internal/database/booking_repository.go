package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rahhal/travel-backend/internal/models"
)

// BookingRepository handles database operations for the bookings table
type BookingRepository struct {
	db DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// GenerateBookingReference generates a unique booking reference
// Format: RH-YYYYMMDD-XXXXXX (6 char alphanumeric)
// Example: RH-20260115-A1B2C3
func (r *BookingRepository) GenerateBookingReference() (string, error) {
	todayStr := time.Now().Format("20060102")

	for attempts := 0; attempts < 10; attempts++ {
		randomBytes := make([]byte, 3)
		if _, err := rand.Read(randomBytes); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		randomStr := strings.ToUpper(hex.EncodeToString(randomBytes))

		newRef := fmt.Sprintf("RH-%s-%s", todayStr, randomStr)

		var count int
		err := r.db.QueryRow(`SELECT COUNT(*) FROM bookings WHERE booking_reference = $1`, newRef).Scan(&count)
		if err != nil {
			return "", fmt.Errorf("failed to check reference uniqueness: %w", err)
		}

		if count == 0 {
			return newRef, nil
		}
	}

	return "", fmt.Errorf("failed to generate unique booking reference after 10 attempts")
}

// Create creates a new booking
func (r *BookingRepository) Create(booking *models.Booking) error {
	query := `
		INSERT INTO bookings (
			id, booking_reference, trip_id, company_id, user_id,
			seat_count, seat_labels, travel_date, contact_name, contact_phone,
			special_requests, unit_price, total_price, commission, net_to_operator,
			status, payment_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
		RETURNING created_at, updated_at
	`

	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}

	err := r.db.QueryRow(
		query,
		booking.ID, booking.BookingReference, booking.TripID, booking.CompanyID, booking.UserID,
		booking.SeatCount, pq.Array(booking.SeatLabels), booking.TravelDate, booking.ContactName, booking.ContactPhone,
		booking.SpecialRequests, booking.UnitPrice, booking.TotalPrice, booking.Commission, booking.NetToOperator,
		booking.Status, booking.PaymentStatus,
	).Scan(&booking.CreatedAt, &booking.UpdatedAt)

	return err
}

const bookingColumns = `id, booking_reference, trip_id, company_id, user_id,
	   seat_count, seat_labels, travel_date, contact_name, contact_phone,
	   special_requests, unit_price, total_price, commission, net_to_operator,
	   status, payment_status, payment_method, status_updated_at,
	   rejection_reason, cancellation_reason, cancelled_by, created_at, updated_at`

// GetByID retrieves a booking by ID
func (r *BookingRepository) GetByID(bookingID string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return r.scanBooking(r.db.QueryRow(query, bookingID))
}

// GetByReference retrieves a booking by booking reference
func (r *BookingRepository) GetByReference(reference string) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE booking_reference = $1`
	return r.scanBooking(r.db.QueryRow(query, reference))
}

// GetByUserID retrieves all bookings created by a user
func (r *BookingRepository) GetByUserID(userID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByCompanyID retrieves all bookings on a company's trips
func (r *BookingRepository) GetByCompanyID(companyID string) ([]models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE company_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetPendingSeatLabels returns the requested seat labels of every pending
// booking on a trip, excluding the given booking. These seats are treated as
// provisionally reserved the moment a request is submitted, so two concurrent
// bookers are never shown the same seat as free. An empty excludeBookingID
// excludes nothing; the text cast keeps the comparison valid against a uuid
// id column.
func (r *BookingRepository) GetPendingSeatLabels(tripID, excludeBookingID string) ([]string, error) {
	query := `
		SELECT seat_labels
		FROM bookings
		WHERE trip_id = $1
		  AND status = 'pending'
		  AND ($2 = '' OR id::text != $2)
		  AND array_length(seat_labels, 1) > 0
	`

	rows, err := r.db.Query(query, tripID, excludeBookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var seatLabels pq.StringArray
		if err := rows.Scan(&seatLabels); err != nil {
			return nil, err
		}
		labels = append(labels, seatLabels...)
	}

	return labels, rows.Err()
}

// UpdateStatus updates the booking status and its audit fields
func (r *BookingRepository) UpdateStatus(booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET status = $2, status_updated_at = NOW(),
			rejection_reason = $3, cancellation_reason = $4, cancelled_by = $5,
			updated_at = NOW()
		WHERE id = $1
		RETURNING status_updated_at, updated_at
	`

	err := r.db.QueryRow(
		query,
		booking.ID, booking.Status,
		booking.RejectionReason, booking.CancellationReason, booking.CancelledBy,
	).Scan(&booking.StatusUpdatedAt, &booking.UpdatedAt)

	return err
}

// UpdateRequestFields persists a requester edit of a pending booking,
// including the explicitly recomputed financial fields
func (r *BookingRepository) UpdateRequestFields(booking *models.Booking) error {
	query := `
		UPDATE bookings
		SET seat_count = $2, seat_labels = $3, contact_name = $4, contact_phone = $5,
			special_requests = $6, total_price = $7, commission = $8, net_to_operator = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		query,
		booking.ID, booking.SeatCount, pq.Array(booking.SeatLabels), booking.ContactName, booking.ContactPhone,
		booking.SpecialRequests, booking.TotalPrice, booking.Commission, booking.NetToOperator,
	).Scan(&booking.UpdatedAt)

	return err
}

// UpdatePayment updates the payment status label of a booking
func (r *BookingRepository) UpdatePayment(bookingID string, status models.PaymentStatus, method *string) error {
	query := `
		UPDATE bookings
		SET payment_status = $2, payment_method = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(query, bookingID, status, method)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// GetAcceptedSeatTotal returns the total seat count across a trip's accepted
// bookings, used to check remaining capacity for capacity-only bookings
func (r *BookingRepository) GetAcceptedSeatTotal(tripID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(seat_count), 0)
		FROM bookings
		WHERE trip_id = $1 AND status = 'accepted'
	`

	var total int
	err := r.db.QueryRow(query, tripID).Scan(&total)
	return total, err
}

// GetCompanyStats aggregates booking counts and revenue rollups for a
// company's trips since the given time. A zero time aggregates everything.
func (r *BookingRepository) GetCompanyStats(companyID string, since time.Time) (*models.BookingStatsWindow, error) {
	query := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'accepted') AS accepted,
			COUNT(*) FILTER (WHERE status = 'rejected') AS rejected,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
			COALESCE(SUM(total_price) FILTER (WHERE status = 'accepted'), 0) AS gross_revenue,
			COALESCE(SUM(commission) FILTER (WHERE status = 'accepted'), 0) AS commission,
			COALESCE(SUM(net_to_operator) FILTER (WHERE status = 'accepted'), 0) AS net_revenue
		FROM bookings
		WHERE company_id = $1 AND created_at >= $2
	`

	stats := &models.BookingStatsWindow{}
	err := r.db.QueryRow(query, companyID, since).Scan(
		&stats.Total, &stats.Pending, &stats.Accepted, &stats.Rejected, &stats.Cancelled,
		&stats.GrossRevenue, &stats.Commission, &stats.NetRevenue,
	)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// scanBooking scans a single booking
func (r *BookingRepository) scanBooking(row scanner) (*models.Booking, error) {
	booking := &models.Booking{}
	var specialRequests sql.NullString
	var paymentMethod sql.NullString
	var statusUpdatedAt sql.NullTime
	var rejectionReason sql.NullString
	var cancellationReason sql.NullString
	var cancelledBy sql.NullString

	err := row.Scan(
		&booking.ID, &booking.BookingReference, &booking.TripID, &booking.CompanyID, &booking.UserID,
		&booking.SeatCount, &booking.SeatLabels, &booking.TravelDate, &booking.ContactName, &booking.ContactPhone,
		&specialRequests, &booking.UnitPrice, &booking.TotalPrice, &booking.Commission, &booking.NetToOperator,
		&booking.Status, &booking.PaymentStatus, &paymentMethod, &statusUpdatedAt,
		&rejectionReason, &cancellationReason, &cancelledBy, &booking.CreatedAt, &booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if specialRequests.Valid {
		booking.SpecialRequests = &specialRequests.String
	}
	if paymentMethod.Valid {
		booking.PaymentMethod = &paymentMethod.String
	}
	if statusUpdatedAt.Valid {
		booking.StatusUpdatedAt = &statusUpdatedAt.Time
	}
	if rejectionReason.Valid {
		booking.RejectionReason = &rejectionReason.String
	}
	if cancellationReason.Valid {
		booking.CancellationReason = &cancellationReason.String
	}
	if cancelledBy.Valid {
		by := models.CancelledBy(cancelledBy.String)
		booking.CancelledBy = &by
	}

	return booking, nil
}

// scanBookings scans multiple bookings from rows
func (r *BookingRepository) scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	bookings := []models.Booking{}

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}
