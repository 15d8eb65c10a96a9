// FILE: database/repository/appointment/indexes.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes backing availability reads and the
// uniqueness contract. The marker _id is the composite slot key, so its
// default unique index already guards contention; the bookings index is a
// backstop that turns any race the transaction misses into a duplicate-key
// error.
func (r *mongoAppointmentRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	keyIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "service", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("service_date_idx"),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("date_idx"),
		},
	}
	if _, err := r.keyColl.Indexes().CreateMany(ctx, keyIndexes); err != nil {
		return fmt.Errorf("failed to create appointment key indexes: %w", err)
	}

	apptIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_id"),
		},
		{
			Keys:    bson.D{{Key: "service", Value: 1}, {Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("unique_slot_idx"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("user_idx"),
		},
	}
	if _, err := r.apptColl.Indexes().CreateMany(ctx, apptIndexes); err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}
