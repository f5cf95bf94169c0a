package database

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/rahhal/travel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingTestColumns = []string{
	"id", "booking_reference", "trip_id", "company_id", "user_id",
	"seat_count", "seat_labels", "travel_date", "contact_name", "contact_phone",
	"special_requests", "unit_price", "total_price", "commission", "net_to_operator",
	"status", "payment_status", "payment_method", "status_updated_at",
	"rejection_reason", "cancellation_reason", "cancelled_by", "created_at", "updated_at",
}

func bookingRow(now time.Time) []driver.Value {
	return []driver.Value{
		"booking-1", "RH-20260115-A1B2C3", "trip-1", "company-1", "user-1",
		2, []byte(`{"A1","A2"}`), now, "Sara", "0551234567",
		nil, 500.0, 1000.0, 50.0, 950.0,
		"pending", "pending", nil, nil,
		nil, nil, nil, now, now,
	}
}

func TestGenerateBookingReference(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: db})

	t.Run("Unique on first attempt", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE booking_reference`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		ref, err := repo.GenerateBookingReference()
		require.NoError(t, err)
		assert.Regexp(t, `^RH-\d{8}-[0-9A-F]{6}$`, ref)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Retries on collision", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE booking_reference`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE booking_reference`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

		ref, err := repo.GenerateBookingReference()
		require.NoError(t, err)
		assert.NotEmpty(t, ref)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCreateBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: db})

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		booking := &models.Booking{
			BookingReference: "RH-20260115-A1B2C3",
			TripID:           "trip-1",
			CompanyID:        "company-1",
			UserID:           "user-1",
			SeatCount:        2,
			SeatLabels:       pq.StringArray{"A1", "A2"},
			TravelDate:       now,
			ContactName:      "Sara",
			ContactPhone:     "0551234567",
			UnitPrice:        500,
			TotalPrice:       1000,
			Commission:       50,
			NetToOperator:    950,
			Status:           models.BookingStatusPending,
			PaymentStatus:    models.PaymentStatusPending,
		}

		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		err := repo.Create(booking)
		require.NoError(t, err)
		assert.NotEmpty(t, booking.ID)
		assert.Equal(t, now, booking.CreatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO bookings`).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(&models.Booking{BookingReference: "RH-20260115-FFFFFF"})
		assert.Error(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetBookingByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: db})

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs("booking-1").
			WillReturnRows(sqlmock.NewRows(bookingTestColumns).AddRow(bookingRow(now)...))

		booking, err := repo.GetByID("booking-1")
		require.NoError(t, err)
		assert.Equal(t, "RH-20260115-A1B2C3", booking.BookingReference)
		assert.Equal(t, models.BookingStatusPending, booking.Status)
		assert.Equal(t, []string{"A1", "A2"}, []string(booking.SeatLabels))
		assert.Nil(t, booking.RejectionReason)
		assert.Nil(t, booking.CancelledBy)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM bookings WHERE id`).
			WithArgs("booking-missing").
			WillReturnError(sql.ErrNoRows)

		booking, err := repo.GetByID("booking-missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, booking)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetPendingSeatLabels(t *testing.T) {
	t.Run("Excludes the given booking", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewBookingRepository(&mockDatabase{db: db})

		mock.ExpectQuery(`AND \(\$2 = '' OR id::text != \$2\)`).
			WithArgs("trip-1", "booking-1").
			WillReturnRows(sqlmock.NewRows([]string{"seat_labels"}).
				AddRow([]byte(`{"A1","A2"}`)).
				AddRow([]byte(`{"B5"}`)))

		labels, err := repo.GetPendingSeatLabels("trip-1", "booking-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"A1", "A2", "B5"}, labels)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty exclusion excludes nothing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := NewBookingRepository(&mockDatabase{db: db})

		// The creation-time conflict check passes "" and must not compare
		// the empty string against a uuid id column.
		mock.ExpectQuery(`AND \(\$2 = '' OR id::text != \$2\)`).
			WithArgs("trip-1", "").
			WillReturnRows(sqlmock.NewRows([]string{"seat_labels"}).
				AddRow([]byte(`{"A1"}`)))

		labels, err := repo.GetPendingSeatLabels("trip-1", "")
		require.NoError(t, err)
		assert.Equal(t, []string{"A1"}, labels)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateBookingStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: db})

	now := time.Now()
	reason := "Trip is full"
	booking := &models.Booking{
		ID:              "booking-1",
		Status:          models.BookingStatusRejected,
		RejectionReason: &reason,
	}

	mock.ExpectQuery(`UPDATE bookings`).
		WithArgs("booking-1", string(models.BookingStatusRejected), &reason, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"status_updated_at", "updated_at"}).AddRow(now, now))

	err = repo.UpdateStatus(booking)
	require.NoError(t, err)
	require.NotNil(t, booking.StatusUpdatedAt)
	assert.Equal(t, now, *booking.StatusUpdatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePayment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: db})

	t.Run("Success", func(t *testing.T) {
		method := "cash"
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs("booking-1", string(models.PaymentStatusPaid), &method).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdatePayment("booking-1", models.PaymentStatusPaid, &method)
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing booking", func(t *testing.T) {
		mock.ExpectExec(`UPDATE bookings`).
			WithArgs("booking-missing", string(models.PaymentStatusPaid), nil).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePayment("booking-missing", models.PaymentStatusPaid, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "booking not found")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetCompanyStats(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewBookingRepository(&mockDatabase{db: db})

	since := time.Time{}
	mock.ExpectQuery(`SELECT`).
		WithArgs("company-1", since).
		WillReturnRows(sqlmock.NewRows([]string{
			"total", "pending", "accepted", "rejected", "cancelled",
			"gross_revenue", "commission", "net_revenue",
		}).AddRow(10, 3, 5, 1, 1, 5000.0, 250.0, 4750.0))

	stats, err := repo.GetCompanyStats("company-1", since)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 5, stats.Accepted)
	assert.Equal(t, 5000.0, stats.GrossRevenue)
	assert.Equal(t, 250.0, stats.Commission)
	assert.Equal(t, 4750.0, stats.NetRevenue)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// mockDatabase wraps a *sql.DB from sqlmock behind the DB interface
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Get not implemented in mock")
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Select not implemented in mock")
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
