// File: services/booking/interface.go
package booking

import (
	"context"

	"randevu/models"
)

// AvailabilityResult is the bookable slot set for one service and day.
type AvailabilityResult struct {
	Service string   `json:"service"`
	Date    string   `json:"date"` // normalized ISO form
	Slots   []string `json:"slots"`
}

// BookingService exposes the appointment operations: list the service
// catalogue, compute availability, and commit a booking without double-booking
// a slot.
type BookingService interface {
	Services() []string
	AvailableSlots(ctx context.Context, service, date string) (*AvailabilityResult, error)
	CommitBooking(ctx context.Context, identity models.Identity, input models.BookingInput) (string, error)
}
