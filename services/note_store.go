package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"worknote-platform/models"
)

// NoteStore hydrates full note records and their open todos for retrieval
// results.
type NoteStore interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.WorkNote, error)
	FindOpenTodosByNoteIDs(ctx context.Context, ids []string) (map[string][]models.Todo, error)
}

// MongoNoteStore is the Mongo-backed note store.
type MongoNoteStore struct {
	notes *mongo.Collection
	todos *mongo.Collection
}

func NewMongoNoteStore(db *mongo.Database) *MongoNoteStore {
	return &MongoNoteStore{
		notes: db.Collection("work_notes"),
		todos: db.Collection("todos"),
	}
}

// FindByIDs fetches notes in one batched call. Ids that do not resolve to a
// live note are simply absent from the result; callers treat them as stale
// vector entries.
func (s *MongoNoteStore) FindByIDs(ctx context.Context, ids []string) ([]models.WorkNote, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}
	if len(objIDs) == 0 {
		return []models.WorkNote{}, nil
	}

	cursor, err := s.notes.Find(ctx, bson.M{
		"_id":     bson.M{"$in": objIDs},
		"deleted": bson.M{"$ne": true},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notes: %w", err)
	}
	defer cursor.Close(ctx)

	notes := make([]models.WorkNote, 0, len(objIDs))
	if err := cursor.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("failed to decode notes: %w", err)
	}
	return notes, nil
}

// FindOpenTodosByNoteIDs fetches every open todo for the given notes in one
// batched call, grouped by note id.
func (s *MongoNoteStore) FindOpenTodosByNoteIDs(ctx context.Context, ids []string) (map[string][]models.Todo, error) {
	if len(ids) == 0 {
		return map[string][]models.Todo{}, nil
	}

	cursor, err := s.todos.Find(ctx, bson.M{
		"note_id": bson.M{"$in": ids},
		"status":  bson.M{"$ne": models.TodoStatusDone},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch todos: %w", err)
	}
	defer cursor.Close(ctx)

	grouped := make(map[string][]models.Todo)
	for cursor.Next(ctx) {
		var todo models.Todo
		if err := cursor.Decode(&todo); err != nil {
			return nil, fmt.Errorf("failed to decode todo: %w", err)
		}
		grouped[todo.NoteID] = append(grouped[todo.NoteID], todo)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("todo cursor failed: %w", err)
	}
	return grouped, nil
}
