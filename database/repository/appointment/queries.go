package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TakenSlots fetches the booked time labels for a service/date pair from the
// marker collection. Only the time field is projected.
func (r *mongoAppointmentRepo) TakenSlots(ctx context.Context, service, date string) (map[string]struct{}, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"service": service, "date": date}
	opts := options.Find().SetProjection(bson.M{"time": 1, "_id": 0})

	cursor, err := r.keyColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointment keys: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		Time string `bson:"time"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode appointment keys: %w", err)
	}

	taken := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		taken[d.Time] = struct{}{}
	}
	return taken, nil
}

// PurgeExpiredKeys deletes markers for dates that have already passed. The
// appointment records themselves are kept.
func (r *mongoAppointmentRepo) PurgeExpiredKeys(ctx context.Context, before string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := r.keyColl.DeleteMany(ctx, bson.M{"date": bson.M{"$lt": before}})
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired appointment keys: %w", err)
	}
	return res.DeletedCount, nil
}
