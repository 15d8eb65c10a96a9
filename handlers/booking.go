package handlers

import (
	"errors"
	"net/http"

	"randevu/middleware"
	"randevu/models"
	"randevu/services/booking"
	"randevu/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AppointmentHandler exposes the booking engine over HTTP.
type AppointmentHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewAppointmentHandler(svc booking.BookingService, logger *zap.Logger) *AppointmentHandler {
	return &AppointmentHandler{Service: svc, Logger: logger}
}

// GetServices returns the bookable service catalogue.
func (h *AppointmentHandler) GetServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"services": h.Service.Services()})
}

// GetAvailability returns the free slots for ?service=&date=.
func (h *AppointmentHandler) GetAvailability(c *gin.Context) {
	service := c.Query("service")
	date := c.Query("date")

	result, err := h.Service.AvailableSlots(c.Request.Context(), service, date)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateBooking commits an appointment for the authenticated caller.
func (h *AppointmentHandler) CreateBooking(c *gin.Context) {
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	ident, _ := middleware.IdentityFrom(c)
	bookingID, err := h.Service.CommitBooking(c.Request.Context(), ident, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"bookingId": bookingID})
}

// writeError maps the booking error taxonomy onto HTTP statuses so the client
// can pick the right next action: fix the form, re-pick a slot, or retry later.
func (h *AppointmentHandler) writeError(c *gin.Context, err error) {
	var ve *booking.ValidationError
	var ce *booking.ConflictError
	var te *booking.TransientError

	switch {
	case errors.As(err, &ve):
		status := http.StatusBadRequest
		switch ve.Reason {
		case booking.ReasonAuthRequired:
			status = http.StatusUnauthorized
		case booking.ReasonPastDate, booking.ReasonClosedDay, booking.ReasonBeyondHorizon:
			status = http.StatusUnprocessableEntity
		}
		utils.JSONError(c, status, ve.Message, ve.Reason)
	case errors.As(err, &ce):
		utils.JSONError(c, http.StatusConflict, ce.Message, "slot_taken")
	case errors.As(err, &te):
		utils.JSONError(c, http.StatusServiceUnavailable, "service temporarily unavailable, please try again", "store_unavailable")
	default:
		h.Logger.Error("unclassified booking error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "internal")
	}
}
