// File: database/repository/appointment/interface.go
package appointmentRepo

import (
	"context"
	"errors"

	"randevu/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ErrSlotTaken reports that the uniqueness marker for a slot already existed
// when the booking transaction tried to claim it.
var ErrSlotTaken = errors.New("slot already taken")

// AppointmentRepository is the atomic-store capability the booking committer
// runs against. CreateTransactionally must behave as a single all-or-nothing
// unit: read the marker, abort if present, otherwise write marker and booking
// together. Any implementation honouring that contract - Mongo here, an
// in-memory double in tests - is substitutable.
type AppointmentRepository interface {
	// TakenSlots returns the set of booked time labels for a service and date.
	// It reads only the marker collection, never appointment records, so it is
	// safe to serve to unauthenticated availability queries.
	TakenSlots(ctx context.Context, service, date string) (map[string]struct{}, error)

	// CreateTransactionally claims the slot key and persists the booking in one
	// atomic unit. Returns ErrSlotTaken when the key is already held. The
	// booking's CreatedAt is assigned here, at commit.
	CreateTransactionally(ctx context.Context, key models.SlotKey, booking *models.Booking) error

	// PurgeExpiredKeys removes markers whose date is strictly before the given
	// ISO date. Markers only matter for future availability reads.
	PurgeExpiredKeys(ctx context.Context, before string) (int64, error)

	EnsureIndexes(ctx context.Context) error
}

type mongoAppointmentRepo struct {
	keyColl  *mongo.Collection
	apptColl *mongo.Collection
}

// NewMongoAppointmentRepo constructs the MongoDB-backed repository over the
// injected client.
func NewMongoAppointmentRepo(client *mongo.Client, dbName string) AppointmentRepository {
	db := client.Database(dbName)
	return &mongoAppointmentRepo{
		keyColl:  db.Collection("appointmentKeys"),
		apptColl: db.Collection("appointments"),
	}
}
