package models

import (
	"fmt"
	"time"
)

// SlotKey is the composite identity of a bookable slot. At most one confirmed
// appointment may ever exist per key.
type SlotKey struct {
	Service string `bson:"service" json:"service"`
	Date    string `bson:"date" json:"date"` // "YYYY-MM-DD"
	Time    string `bson:"time" json:"time"` // "HH:MM"
}

// Key returns the canonical composite form used as the marker document id.
func (k SlotKey) Key() string {
	return fmt.Sprintf("%s|%s|%s", k.Service, k.Date, k.Time)
}

// SlotKeyDoc is the uniqueness marker written alongside every appointment.
// It is read by unauthenticated availability queries, so it carries the key
// fields and nothing else - never customer name, email or phone.
type SlotKeyDoc struct {
	ID        string    `bson:"_id" json:"id"`
	Service   string    `bson:"service" json:"service"`
	Date      string    `bson:"date" json:"date"`
	Time      string    `bson:"time" json:"time"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
