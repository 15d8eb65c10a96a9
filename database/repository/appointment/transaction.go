package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"randevu/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateTransactionally performs the conflict-avoiding commit as one Mongo
// multi-document transaction: read the marker document for the slot key, abort
// with ErrSlotTaken if it exists, otherwise insert the marker and the full
// booking record together. Either both writes become visible or neither does.
func (r *mongoAppointmentRepo) CreateTransactionally(ctx context.Context, key models.SlotKey, booking *models.Booking) error {
	client := r.keyColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		var existing models.SlotKeyDoc
		err := r.keyColl.FindOne(sc, bson.M{"_id": key.Key()}).Decode(&existing)
		if err == nil {
			return ErrSlotTaken
		}
		if err != mongo.ErrNoDocuments {
			return fmt.Errorf("failed to read slot key: %w", err)
		}

		now := time.Now().UTC()
		marker := models.SlotKeyDoc{
			ID:        key.Key(),
			Service:   key.Service,
			Date:      key.Date,
			Time:      key.Time,
			CreatedAt: now,
		}
		if _, err := r.keyColl.InsertOne(sc, marker); err != nil {
			return fmt.Errorf("insert slot key failed: %w", err)
		}

		booking.Key = key.Key()
		booking.CreatedAt = now
		if _, err := r.apptColl.InsertOne(sc, booking); err != nil {
			return fmt.Errorf("insert booking failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		// A concurrent transaction that won the race surfaces either as our own
		// marker read hit or as a duplicate key from the unique indexes.
		if err == ErrSlotTaken || mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
