package services

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/rahhal/travel-backend/internal/models"
	"github.com/rahhal/travel-backend/internal/utils"
	"github.com/rahhal/travel-backend/pkg/apperror"
	"github.com/rahhal/travel-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

// BookingStore persists bookings
type BookingStore interface {
	GenerateBookingReference() (string, error)
	Create(booking *models.Booking) error
	GetByID(bookingID string) (*models.Booking, error)
	GetByUserID(userID string) ([]models.Booking, error)
	GetByCompanyID(companyID string) ([]models.Booking, error)
	GetPendingSeatLabels(tripID, excludeBookingID string) ([]string, error)
	GetAcceptedSeatTotal(tripID string) (int, error)
	UpdateStatus(booking *models.Booking) error
	UpdateRequestFields(booking *models.Booking) error
	UpdatePayment(bookingID string, status models.PaymentStatus, method *string) error
	GetCompanyStats(companyID string, since time.Time) (*models.BookingStatsWindow, error)
}

// TripStore reads trips
type TripStore interface {
	GetByID(tripID string) (*models.Trip, error)
}

// SeatStore mutates the per-trip confirmed seat map
type SeatStore interface {
	ClaimSeat(seat *models.ConfirmedSeat) (bool, error)
	GetLabelsByTripID(tripID string) ([]string, error)
	GetByBookingReference(reference string) ([]models.ConfirmedSeat, error)
	ReleaseByBookingReference(reference string) (int, error)
}

// CompanyStore reads companies
type CompanyStore interface {
	GetByID(companyID string) (*models.Company, error)
	GetByCreatedBy(userID string) (*models.Company, error)
}

// UserStore reads users
type UserStore interface {
	GetByID(userID string) (*models.User, error)
}

// Notifier delivers booking-state notifications. Implementations must never
// fail the caller; notification failures are logged and swallowed.
type Notifier interface {
	Notify(recipientID, actorID string, notifType models.NotificationType, message string, metadata models.NotificationMetadata) *models.Notification
}

// BookingService owns the booking lifecycle: creation with seat-conflict
// validation, the accept/reject/cancel state machine, seat materialization
// and release, financial computation, and notification fan-out. The trip's
// confirmed seat map is mutated only here.
type BookingService struct {
	bookings  BookingStore
	trips     TripStore
	seats     SeatStore
	companies CompanyStore
	users     UserStore
	notifier  Notifier
	phones    *validator.PhoneValidator
	logger    *logrus.Logger
}

// NewBookingService creates a new BookingService
func NewBookingService(
	bookings BookingStore,
	trips TripStore,
	seats SeatStore,
	companies CompanyStore,
	users UserStore,
	notifier Notifier,
	phones *validator.PhoneValidator,
	logger *logrus.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		trips:     trips,
		seats:     seats,
		companies: companies,
		users:     users,
		notifier:  notifier,
		phones:    phones,
		logger:    logger,
	}
}

// UnavailableSeats returns every seat label a new booker must treat as
// taken on a trip: confirmed seats plus the requested seats of all other
// pending bookings. Pending requests provisionally reserve their seats so
// two concurrent bookers are never shown the same seat as free.
func (s *BookingService) UnavailableSeats(tripID, excludeBookingID string) ([]string, error) {
	confirmed, err := s.seats.GetLabelsByTripID(tripID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	pending, err := s.bookings.GetPendingSeatLabels(tripID, excludeBookingID)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	set := make(map[string]struct{}, len(confirmed)+len(pending))
	for _, label := range confirmed {
		set[label] = struct{}{}
	}
	for _, label := range pending {
		set[label] = struct{}{}
	}

	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	return labels, nil
}

// Create validates and persists a new booking in state pending, then
// notifies the operator. No partial booking is ever written: every
// validation, including the seat-conflict check, runs before the insert.
func (s *BookingService) Create(userID string, req *models.CreateBookingRequest) (*models.Booking, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.Validation(err.Error())
	}

	phone, err := s.phones.Validate(req.ContactPhone)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	travelDate, err := time.Parse("2006-01-02", req.TravelDate)
	if err != nil {
		return nil, apperror.Validation("travel_date must be in YYYY-MM-DD format")
	}

	trip, err := s.trips.GetByID(req.TripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Trip not found")
		}
		return nil, apperror.Internal(err)
	}

	if !trip.IsBookable() {
		return nil, apperror.Validation("This trip is not open for booking")
	}

	capacity := trip.Capacity()
	if capacity == 0 {
		return nil, apperror.Validation("Trip has no transport assigned")
	}
	if req.SeatCount > capacity {
		return nil, apperror.Validation(fmt.Sprintf("seat_count exceeds trip capacity of %d", capacity))
	}

	unitPrice := utils.ParseUnitPrice(trip.PriceText)
	if unitPrice <= 0 {
		return nil, apperror.Validation("Trip pricing is invalid, booking cannot be created")
	}

	if len(req.SeatLabels) > 0 {
		unavailable, err := s.UnavailableSeats(trip.ID, "")
		if err != nil {
			return nil, err
		}
		if conflicts := intersect(req.SeatLabels, unavailable); len(conflicts) > 0 {
			return nil, apperror.SeatConflict(conflicts)
		}
	}

	company, err := s.companies.GetByID(trip.CompanyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Company not found")
		}
		return nil, apperror.Internal(err)
	}

	reference, err := s.bookings.GenerateBookingReference()
	if err != nil {
		return nil, apperror.Internal(err)
	}

	booking := &models.Booking{
		BookingReference: reference,
		TripID:           trip.ID,
		CompanyID:        trip.CompanyID,
		UserID:           userID,
		SeatCount:        req.SeatCount,
		SeatLabels:       req.SeatLabels,
		TravelDate:       travelDate,
		ContactName:      req.ContactName,
		ContactPhone:     phone,
		SpecialRequests:  req.SpecialRequests,
		UnitPrice:        unitPrice,
		Status:           models.BookingStatusPending,
		PaymentStatus:    models.PaymentStatusPending,
	}
	booking.ComputeFinancials()

	if err := s.bookings.Create(booking); err != nil {
		return nil, apperror.Internal(err)
	}

	s.notifier.Notify(
		company.CreatedBy, userID,
		models.NotifBookingCreated,
		fmt.Sprintf("New booking %s: %d seat(s) on %s", reference, booking.SeatCount, trip.Title),
		models.NotificationMetadata{
			"booking_reference": reference,
			"trip_id":           trip.ID,
			"event":             "created",
		},
	)

	return booking, nil
}

// GetForActor retrieves a booking visible to the actor: its requester or an
// operator of the owning company
func (s *BookingService) GetForActor(actorID, bookingID string) (*models.Booking, error) {
	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != actorID {
		if ok, err := s.isOperator(actorID, booking.CompanyID); err != nil {
			return nil, err
		} else if !ok {
			return nil, apperror.Forbidden("Not authorized to view this booking")
		}
	}

	return booking, nil
}

// ListMine returns the actor's own bookings
func (s *BookingService) ListMine(userID string) ([]models.Booking, error) {
	bookings, err := s.bookings.GetByUserID(userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return bookings, nil
}

// ListForOperator returns all bookings on the actor's company trips
func (s *BookingService) ListForOperator(actorID string) ([]models.Booking, error) {
	companyID, err := s.resolveOperatorCompany(actorID)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookings.GetByCompanyID(companyID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return bookings, nil
}

// Accept transitions a pending booking to accepted and materializes its
// seats into the trip's confirmed map. Each seat is claimed with an atomic
// conditional insert, so a concurrent accept of an overlapping booking loses
// cleanly instead of duplicating seat assignments. Retried accepts are
// idempotent: seats already claimed by this booking are left untouched.
func (s *BookingService) Accept(actorID, bookingID string) (*models.Booking, error) {
	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.requireOperator(actorID, booking.CompanyID); err != nil {
		return nil, err
	}

	if booking.Status != models.BookingStatusPending && booking.Status != models.BookingStatusAccepted {
		return nil, apperror.InvalidTransition(
			fmt.Sprintf("cannot accept a %s booking", booking.Status))
	}

	trip, err := s.trips.GetByID(booking.TripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Trip not found")
		}
		return nil, apperror.Internal(err)
	}

	if booking.HasSeatSelection() {
		if err := s.materializeSeats(booking); err != nil {
			return nil, err
		}
	} else if booking.Status == models.BookingStatusPending {
		// Capacity-only bookings have no per-seat claims; check the
		// remaining capacity against all accepted bookings instead.
		accepted, err := s.bookings.GetAcceptedSeatTotal(trip.ID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if accepted+booking.SeatCount > trip.Capacity() {
			return nil, apperror.New(http.StatusBadRequest, apperror.KindSeatConflict,
				"Trip does not have enough remaining capacity")
		}
	}

	if booking.Status == models.BookingStatusAccepted {
		// Retried accept: seat map already reconciled above
		return booking, nil
	}

	booking.Status = models.BookingStatusAccepted
	if err := s.bookings.UpdateStatus(booking); err != nil {
		return nil, apperror.Internal(err)
	}

	metadata := models.NotificationMetadata{
		"booking_reference": booking.BookingReference,
		"trip_id":           booking.TripID,
		"event":             "accepted",
	}
	if booking.HasSeatSelection() {
		metadata["event"] = "seat_assigned"
	}
	s.notifier.Notify(
		booking.UserID, actorID,
		models.NotifBookingAccepted,
		fmt.Sprintf("Your booking %s has been accepted", booking.BookingReference),
		metadata,
	)

	return booking, nil
}

// Reject transitions a pending booking to rejected and records the reason
func (s *BookingService) Reject(actorID, bookingID, reason string) (*models.Booking, error) {
	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.requireOperator(actorID, booking.CompanyID); err != nil {
		return nil, err
	}

	if !booking.CanReject() {
		return nil, apperror.InvalidTransition(
			fmt.Sprintf("cannot reject a %s booking", booking.Status))
	}

	booking.Status = models.BookingStatusRejected
	booking.RejectionReason = &reason
	if err := s.bookings.UpdateStatus(booking); err != nil {
		return nil, apperror.Internal(err)
	}

	s.notifier.Notify(
		booking.UserID, actorID,
		models.NotifBookingRejected,
		fmt.Sprintf("Your booking %s was rejected: %s", booking.BookingReference, reason),
		models.NotificationMetadata{
			"booking_reference": booking.BookingReference,
			"trip_id":           booking.TripID,
			"event":             "rejected",
		},
	)

	return booking, nil
}

// CancelByRequester cancels the actor's own booking. Seats are released only
// when the booking had been accepted; a pending booking never materialized
// any. The operator is notified when committed capacity is handed back.
func (s *BookingService) CancelByRequester(actorID, bookingID string, reason *string) (*models.Booking, error) {
	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != actorID {
		return nil, apperror.Forbidden("Not authorized to cancel this booking")
	}

	if !booking.CanCancel() {
		return nil, apperror.InvalidTransition(
			fmt.Sprintf("cannot cancel a %s booking", booking.Status))
	}

	wasAccepted := booking.Status == models.BookingStatusAccepted
	if wasAccepted && booking.HasSeatSelection() {
		if _, err := s.seats.ReleaseByBookingReference(booking.BookingReference); err != nil {
			return nil, apperror.Internal(err)
		}
	}

	by := models.CancelledByRequester
	booking.Status = models.BookingStatusCancelled
	booking.CancellationReason = reason
	booking.CancelledBy = &by
	if err := s.bookings.UpdateStatus(booking); err != nil {
		return nil, apperror.Internal(err)
	}

	if wasAccepted {
		company, err := s.companies.GetByID(booking.CompanyID)
		if err == nil {
			s.notifier.Notify(
				company.CreatedBy, actorID,
				models.NotifBookingCancelled,
				fmt.Sprintf("Booking %s was cancelled by the traveler", booking.BookingReference),
				models.NotificationMetadata{
					"booking_reference": booking.BookingReference,
					"trip_id":           booking.TripID,
					"event":             "cancelled_by_requester",
				},
			)
		} else {
			s.logger.WithError(err).Warn("Could not resolve company for cancellation notice")
		}
	}

	return booking, nil
}

// CancelByCompany cancels a booking on behalf of the operator, releasing any
// confirmed seats and notifying the requester with the reason
func (s *BookingService) CancelByCompany(actorID, bookingID, reason string) (*models.Booking, error) {
	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.requireOperator(actorID, booking.CompanyID); err != nil {
		return nil, err
	}

	if !booking.CanCancel() {
		return nil, apperror.InvalidTransition(
			fmt.Sprintf("cannot cancel a %s booking", booking.Status))
	}

	if booking.Status == models.BookingStatusAccepted && booking.HasSeatSelection() {
		if _, err := s.seats.ReleaseByBookingReference(booking.BookingReference); err != nil {
			return nil, apperror.Internal(err)
		}
	}

	by := models.CancelledByCompany
	booking.Status = models.BookingStatusCancelled
	booking.CancellationReason = &reason
	booking.CancelledBy = &by
	if err := s.bookings.UpdateStatus(booking); err != nil {
		return nil, apperror.Internal(err)
	}

	s.notifier.Notify(
		booking.UserID, actorID,
		models.NotifBookingCancelled,
		fmt.Sprintf("Your booking %s was cancelled by the operator: %s", booking.BookingReference, reason),
		models.NotificationMetadata{
			"booking_reference": booking.BookingReference,
			"trip_id":           booking.TripID,
			"event":             "cancelled_by_company",
		},
	)

	return booking, nil
}

// UpdatePayment updates the payment label on an accepted booking. Payment is
// tracked, not processed, and payment changes are not notified.
func (s *BookingService) UpdatePayment(actorID, bookingID string, req *models.UpdatePaymentRequest) (*models.Booking, error) {
	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if err := s.requireOperator(actorID, booking.CompanyID); err != nil {
		return nil, err
	}

	if !models.ValidPaymentStatus(req.PaymentStatus) {
		return nil, apperror.Validation("invalid payment_status")
	}

	if booking.Status != models.BookingStatusAccepted {
		return nil, apperror.InvalidTransition("payment can only be updated on an accepted booking")
	}

	if err := s.bookings.UpdatePayment(booking.ID, req.PaymentStatus, req.PaymentMethod); err != nil {
		return nil, apperror.Internal(err)
	}

	booking.PaymentStatus = req.PaymentStatus
	booking.PaymentMethod = req.PaymentMethod

	return booking, nil
}

// Edit applies a requester edit to a pending booking. Seat changes re-run
// the conflict check against everyone else's seats, and financials are
// recomputed and persisted with the edit so totals never go stale.
func (s *BookingService) Edit(actorID, bookingID string, req *models.UpdateBookingRequest) (*models.Booking, error) {
	booking, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != actorID {
		return nil, apperror.Forbidden("Not authorized to edit this booking")
	}

	if !booking.CanEdit() {
		return nil, apperror.InvalidTransition(
			"only pending bookings can be edited, contact the operator for accepted bookings")
	}

	if req.SeatCount != nil {
		if *req.SeatCount <= 0 {
			return nil, apperror.Validation("seat_count must be at least 1")
		}
		if *req.SeatCount > 10 {
			return nil, apperror.Validation("maximum 10 seats can be booked at once")
		}
		booking.SeatCount = *req.SeatCount
	}

	if req.SeatLabels != nil {
		if len(req.SeatLabels) != booking.SeatCount {
			return nil, apperror.Validation("seat_labels must match seat_count when seats are selected")
		}
		unavailable, err := s.UnavailableSeats(booking.TripID, booking.ID)
		if err != nil {
			return nil, err
		}
		if conflicts := intersect(req.SeatLabels, unavailable); len(conflicts) > 0 {
			return nil, apperror.SeatConflict(conflicts)
		}
		booking.SeatLabels = req.SeatLabels
	}

	// A seat-selected booking must keep labels and count in step, otherwise
	// accept would materialize fewer seats than the requester is charged for.
	if booking.HasSeatSelection() && len(booking.SeatLabels) != booking.SeatCount {
		return nil, apperror.Validation(
			"changing seat_count on a seat-selected booking requires seat_labels matching the new count")
	}

	if req.ContactName != nil {
		booking.ContactName = *req.ContactName
	}
	if req.ContactPhone != nil {
		phone, err := s.phones.Validate(*req.ContactPhone)
		if err != nil {
			return nil, apperror.Validation(err.Error())
		}
		booking.ContactPhone = phone
	}
	if req.SpecialRequests != nil {
		booking.SpecialRequests = req.SpecialRequests
	}

	booking.ComputeFinancials()

	if err := s.bookings.UpdateRequestFields(booking); err != nil {
		return nil, apperror.Internal(err)
	}

	return booking, nil
}

// Analytics returns booking counts and revenue rollups for the operator's
// company over the standard reporting windows
func (s *BookingService) Analytics(actorID string) (*models.BookingAnalytics, error) {
	companyID, err := s.resolveOperatorCompany(actorID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	windows := []struct {
		since time.Time
		dest  *models.BookingStatsWindow
	}{
		{midnight, nil},
		{now.AddDate(0, 0, -7), nil},
		{now.AddDate(0, 0, -30), nil},
		{time.Time{}, nil},
	}

	analytics := &models.BookingAnalytics{CompanyID: companyID}
	windows[0].dest = &analytics.Today
	windows[1].dest = &analytics.Last7Days
	windows[2].dest = &analytics.Last30Days
	windows[3].dest = &analytics.AllTime

	for _, w := range windows {
		stats, err := s.bookings.GetCompanyStats(companyID, w.since)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		*w.dest = *stats
	}

	return analytics, nil
}

// materializeSeats claims each of the booking's requested seats in the
// trip's confirmed map. Labels already held by this booking (retried accept)
// are skipped; a label held by anyone else fails the whole accept, releasing
// any claims made by this call.
func (s *BookingService) materializeSeats(booking *models.Booking) error {
	owned := make(map[string]struct{})
	existing, err := s.seats.GetByBookingReference(booking.BookingReference)
	if err != nil {
		return apperror.Internal(err)
	}
	for _, seat := range existing {
		owned[seat.SeatLabel] = struct{}{}
	}

	occupantName := booking.ContactName
	if occupantName == "" {
		if user, err := s.users.GetByID(booking.UserID); err == nil {
			occupantName = user.Name
		}
	}

	var conflicts []string
	for _, label := range booking.SeatLabels {
		if _, ok := owned[label]; ok {
			continue
		}

		claimed, err := s.seats.ClaimSeat(&models.ConfirmedSeat{
			TripID:           booking.TripID,
			SeatLabel:        label,
			OccupantName:     occupantName,
			OccupantUserID:   booking.UserID,
			BookingReference: booking.BookingReference,
		})
		if err != nil {
			return apperror.Internal(err)
		}
		if !claimed {
			conflicts = append(conflicts, label)
		}
	}

	if len(conflicts) > 0 {
		// A first-time accept lost one of its seats to a concurrent
		// booking: roll back this booking's claims and surface the loss.
		if booking.Status == models.BookingStatusPending {
			if _, err := s.seats.ReleaseByBookingReference(booking.BookingReference); err != nil {
				s.logger.WithError(err).WithField("booking_reference", booking.BookingReference).
					Error("Failed to release seats after lost claim")
			}
		}
		return apperror.SeatConflict(conflicts)
	}

	return nil
}

// getBooking maps missing rows to NotFound
func (s *BookingService) getBooking(bookingID string) (*models.Booking, error) {
	booking, err := s.bookings.GetByID(bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Booking not found")
		}
		return nil, apperror.Internal(err)
	}
	return booking, nil
}

// isOperator resolves operator rights over a company through either of the
// two onboarding paths: direct creation of the company record, or the
// company linkage stored on the actor's own profile. Either suffices.
func (s *BookingService) isOperator(actorID, companyID string) (bool, error) {
	company, err := s.companies.GetByID(companyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, apperror.NotFound("Company not found")
		}
		return false, apperror.Internal(err)
	}
	if company.CreatedBy == actorID {
		return true, nil
	}

	user, err := s.users.GetByID(actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, apperror.Internal(err)
	}

	return user.BelongsToCompany(companyID), nil
}

// requireOperator returns Forbidden unless the actor is an operator of the company
func (s *BookingService) requireOperator(actorID, companyID string) error {
	ok, err := s.isOperator(actorID, companyID)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.Forbidden("Only the trip's company can perform this action")
	}
	return nil
}

// resolveOperatorCompany finds the company the actor operates, through
// either linkage path
func (s *BookingService) resolveOperatorCompany(actorID string) (string, error) {
	company, err := s.companies.GetByCreatedBy(actorID)
	if err == nil {
		return company.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", apperror.Internal(err)
	}

	user, err := s.users.GetByID(actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperror.Forbidden("Not a company operator")
		}
		return "", apperror.Internal(err)
	}
	if user.CompanyID == nil {
		return "", apperror.Forbidden("Not a company operator")
	}

	return *user.CompanyID, nil
}

// intersect returns the requested labels present in the unavailable set
func intersect(requested, unavailable []string) []string {
	set := make(map[string]struct{}, len(unavailable))
	for _, label := range unavailable {
		set[label] = struct{}{}
	}

	var conflicts []string
	for _, label := range requested {
		if _, ok := set[label]; ok {
			conflicts = append(conflicts, label)
		}
	}
	return conflicts
}
