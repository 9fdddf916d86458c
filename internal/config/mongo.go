package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	ctx := context.Background()

	notesCollection := db.Collection("work_notes")
	noteIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		{Keys: bson.D{{Key: "person_ids", Value: 1}}},
		{Keys: bson.D{{Key: "dept_name", Value: 1}}},
		{Keys: bson.D{{Key: "project_id", Value: 1}}},
	}
	if _, err := notesCollection.Indexes().CreateMany(ctx, noteIndexes); err != nil {
		return err
	}

	todosCollection := db.Collection("todos")
	todoIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "note_id", Value: 1}}},
		{Keys: bson.D{{Key: "note_id", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := todosCollection.Indexes().CreateMany(ctx, todoIndexes); err != nil {
		return err
	}

	minutesCollection := db.Collection("meeting_minutes")
	minuteIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "held_at", Value: -1}}},
	}
	if _, err := minutesCollection.Indexes().CreateMany(ctx, minuteIndexes); err != nil {
		return err
	}

	// Note chunks collection indexes for vector-search filters. The vector
	// index itself is an Atlas Search index and is managed out of band.
	chunksCollection := db.Collection("note_chunks")
	chunkIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "note_id", Value: 1}}},
		{
			Keys:    bson.D{{Key: "note_id", Value: 1}, {Key: "chunk_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := chunksCollection.Indexes().CreateMany(ctx, chunkIndexes); err != nil {
		return err
	}

	return nil
}
