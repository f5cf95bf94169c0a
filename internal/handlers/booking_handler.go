package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rahhal/travel-backend/internal/middleware"
	"github.com/rahhal/travel-backend/internal/models"
	"github.com/rahhal/travel-backend/internal/services"
	"github.com/rahhal/travel-backend/pkg/apperror"
	"github.com/sirupsen/logrus"
)

// BookingHandler handles booking lifecycle endpoints
type BookingHandler struct {
	bookingService *services.BookingService
	logger         *logrus.Logger
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, logger *logrus.Logger) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		logger:         logger,
	}
}

// CreateBooking creates a new booking in state pending
// POST /api/v1/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.Create(userCtx.UserID.String(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// GetMyBookings lists the authenticated traveler's bookings
// GET /api/v1/bookings/mine
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	bookings, err := h.bookingService.ListMine(userCtx.UserID.String())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetCompanyBookings lists all bookings on the operator's company trips
// GET /api/v1/bookings/company
func (h *BookingHandler) GetCompanyBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	bookings, err := h.bookingService.ListForOperator(userCtx.UserID.String())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// GetBookingByID retrieves a booking visible to the actor
// GET /api/v1/bookings/:id
func (h *BookingHandler) GetBookingByID(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	booking, err := h.bookingService.GetForActor(userCtx.UserID.String(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels the actor's own booking
// POST /api/v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	var req models.CancelBookingRequest
	c.ShouldBindJSON(&req) // Reason is optional

	booking, err := h.bookingService.CancelByRequester(userCtx.UserID.String(), c.Param("id"), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// EditBooking applies a requester edit to a pending booking
// PUT /api/v1/bookings/:id
func (h *BookingHandler) EditBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	var req models.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.Edit(userCtx.UserID.String(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// AcceptBooking accepts a pending booking and materializes its seats
// POST /api/v1/bookings/:id/accept
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	booking, err := h.bookingService.Accept(userCtx.UserID.String(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// RejectBooking rejects a pending booking with a reason
// POST /api/v1/bookings/:id/reject
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	var req models.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Rejection reason is required"})
		return
	}

	booking, err := h.bookingService.Reject(userCtx.UserID.String(), c.Param("id"), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelByCompany cancels a booking on behalf of the operator
// POST /api/v1/bookings/:id/cancel-by-company
func (h *BookingHandler) CancelByCompany(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	var req models.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Cancellation reason is required"})
		return
	}

	booking, err := h.bookingService.CancelByCompany(userCtx.UserID.String(), c.Param("id"), req.Reason)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// UpdatePayment updates the payment label on an accepted booking
// PUT /api/v1/bookings/:id/payment
func (h *BookingHandler) UpdatePayment(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	var req models.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.UpdatePayment(userCtx.UserID.String(), c.Param("id"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetAnalytics returns booking counts and revenue rollups for the operator
// GET /api/v1/bookings/analytics
func (h *BookingHandler) GetAnalytics(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	analytics, err := h.bookingService.Analytics(userCtx.UserID.String())
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, analytics)
}

// GetUnavailableSeats returns the seat labels a new booker must treat as
// taken on a trip (confirmed plus provisionally reserved)
// GET /api/v1/trips/:id/unavailable-seats
func (h *BookingHandler) GetUnavailableSeats(c *gin.Context) {
	_, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "Unauthorized"})
		return
	}

	seats, err := h.bookingService.UnavailableSeats(c.Param("id"), "")
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trip_id": c.Param("id"), "unavailable_seats": seats})
}

// respondError maps service errors to HTTP responses
func (h *BookingHandler) respondError(c *gin.Context, err error) {
	appErr := apperror.From(err)
	if appErr.Code >= http.StatusInternalServerError {
		h.logger.WithError(appErr.Unwrap()).WithField("path", c.Request.URL.Path).Error("Request failed")
	}
	c.JSON(appErr.Code, gin.H{"error": appErr.Kind, "message": appErr.Message})
}
