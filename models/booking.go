package models

import "time"

// Booking represents a confirmed appointment record.
type Booking struct {
	ID        string    `bson:"id" json:"id"`           // Unique booking identifier (UUID)
	Service   string    `bson:"service" json:"service"` // Booked service category
	Date      string    `bson:"date" json:"date"`       // Booking date in "YYYY-MM-DD" format
	Time      string    `bson:"time" json:"time"`       // Slot label in "HH:MM" format
	Name      string    `bson:"name" json:"name"`       // Customer name
	Email     string    `bson:"email" json:"email"`     // Customer contact email
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Notes     string    `bson:"notes,omitempty" json:"notes,omitempty"`
	UserID    string    `bson:"user_id" json:"userId"` // Authenticated owner
	UserEmail string    `bson:"user_email,omitempty" json:"userEmail,omitempty"`
	Key       string    `bson:"key" json:"key"`              // Composite service|date|time, for traceability
	CreatedAt time.Time `bson:"created_at" json:"createdAt"` // Assigned by the store at commit
}

// BookingInput is the client payload for creating an appointment.
type BookingInput struct {
	Service string `json:"service" binding:"required"`
	Date    string `json:"date" binding:"required"`
	Time    string `json:"time" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone"`
	Notes   string `json:"notes"`
}

// SlotKey builds the composite key for this input. The date is expected to be
// normalized before key construction.
func (in BookingInput) SlotKey() SlotKey {
	return SlotKey{Service: in.Service, Date: in.Date, Time: in.Time}
}
