package services

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"worknote-platform/internal/logger"
)

// EnqueueIndexFunc schedules a background index task for a note.
type EnqueueIndexFunc func(noteID string) error

// ReindexSweeper periodically re-enqueues notes whose vector entries are
// stale (indexed_at behind updated_at), catching writes whose index task
// failed or was lost.
type ReindexSweeper struct {
	notes     *mongo.Collection
	enqueue   EnqueueIndexFunc
	scheduler *gocron.Scheduler
}

func NewReindexSweeper(db *mongo.Database, enqueue EnqueueIndexFunc) *ReindexSweeper {
	return &ReindexSweeper{
		notes:     db.Collection("work_notes"),
		enqueue:   enqueue,
		scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start schedules the sweep every intervalMinutes and runs the scheduler
// asynchronously.
func (rs *ReindexSweeper) Start(intervalMinutes int) error {
	if intervalMinutes <= 0 {
		intervalMinutes = 10
	}
	_, err := rs.scheduler.Every(intervalMinutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := rs.Sweep(ctx); err != nil {
			logger.Error("reindex sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	rs.scheduler.StartAsync()
	logger.Info("reindex sweeper started", "interval_minutes", intervalMinutes)
	return nil
}

func (rs *ReindexSweeper) Stop() {
	rs.scheduler.Stop()
}

// Sweep enqueues an index task for every live note with stale vectors.
func (rs *ReindexSweeper) Sweep(ctx context.Context) error {
	filter := bson.M{
		"deleted": bson.M{"$ne": true},
		"$expr":   bson.M{"$lt": bson.A{"$indexed_at", "$updated_at"}},
	}

	cursor, err := rs.notes.Find(ctx, filter,
		options.Find().SetProjection(bson.M{"_id": 1}).SetLimit(500))
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	enqueued := 0
	for cursor.Next(ctx) {
		var row struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			continue
		}
		if err := rs.enqueue(row.ID.Hex()); err != nil {
			logger.Warn("failed to enqueue reindex", "note_id", row.ID.Hex(), "error", err)
			continue
		}
		enqueued++
	}
	if enqueued > 0 {
		logger.Info("reindex sweep enqueued notes", "count", enqueued)
	}
	return cursor.Err()
}
