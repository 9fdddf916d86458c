package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"worknote-platform/models"
)

// VectorMatch is one nearest-neighbor hit returned by the index.
type VectorMatch struct {
	ChunkID string
	Score   float64
}

// VectorIndex is the gateway to whatever vector store the deployment uses.
// The application only writes and queries records; it never mutates one.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int, filter *ScopeFilter) ([]VectorMatch, error)
	Upsert(ctx context.Context, records []models.NoteChunkIndex) error
	DeleteByNote(ctx context.Context, noteID string) error
}

// MongoVectorIndex backs the gateway with a note_chunks collection and an
// Atlas $vectorSearch index.
type MongoVectorIndex struct {
	chunks    *mongo.Collection
	indexName string
}

func NewMongoVectorIndex(db *mongo.Database, indexName string) *MongoVectorIndex {
	return &MongoVectorIndex{
		chunks:    db.Collection("note_chunks"),
		indexName: indexName,
	}
}

func (idx *MongoVectorIndex) Query(ctx context.Context, vector []float32, topK int, filter *ScopeFilter) ([]VectorMatch, error) {
	tracer := otel.Tracer("vector-index")
	ctx, span := tracer.Start(ctx, "vector.query")
	defer span.End()
	span.SetAttributes(
		attribute.String("vector.backend", "mongo"),
		attribute.Int("vector.top_k", topK),
	)

	search := bson.M{
		"index":         idx.indexName,
		"path":          "vector",
		"queryVector":   vector,
		"numCandidates": topK * 10,
		"limit":         topK,
	}
	if f := filter.MongoFilter(); f != nil {
		search["filter"] = f
	}

	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: search}},
		{{Key: "$project", Value: bson.M{
			"chunk_id": 1,
			"score":    bson.M{"$meta": "vectorSearchScore"},
		}}},
	}

	cursor, err := idx.chunks.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var matches []VectorMatch
	for cursor.Next(ctx) {
		var row struct {
			ChunkID string  `bson:"chunk_id"`
			Score   float64 `bson:"score"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode vector match: %w", err)
		}
		matches = append(matches, VectorMatch{ChunkID: row.ChunkID, Score: row.Score})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("vector search cursor failed: %w", err)
	}

	span.SetAttributes(attribute.Int("vector.matches", len(matches)))
	return matches, nil
}

func (idx *MongoVectorIndex) Upsert(ctx context.Context, records []models.NoteChunkIndex) error {
	if len(records) == 0 {
		return nil
	}

	batch := make([]mongo.WriteModel, 0, len(records))
	for _, rec := range records {
		doc := bson.M{
			"note_id":     rec.NoteID,
			"chunk_id":    rec.ChunkID,
			"order":       rec.Order,
			"text":        rec.Text,
			"vector":      rec.Vector,
			"scope":       rec.Scope,
			"person_ids":  rec.PersonIDs,
			"dept_name":   rec.DeptName,
			"project_id":  rec.ProjectID,
			"category":    rec.Category,
			"date_bucket": rec.DateBucket,
		}
		batch = append(batch, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"note_id": rec.NoteID, "chunk_id": rec.ChunkID}).
			SetUpdate(bson.M{"$set": doc}).
			SetUpsert(true))
	}

	_, err := idx.chunks.BulkWrite(ctx, batch, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return fmt.Errorf("chunk upsert failed: %w", err)
	}
	return nil
}

func (idx *MongoVectorIndex) DeleteByNote(ctx context.Context, noteID string) error {
	_, err := idx.chunks.DeleteMany(ctx, bson.M{"note_id": noteID})
	if err != nil {
		return fmt.Errorf("chunk delete failed: %w", err)
	}
	return nil
}
