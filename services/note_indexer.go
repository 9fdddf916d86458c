package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"worknote-platform/internal/logger"
	"worknote-platform/models"
)

// NoteIndexer runs the write-time pipeline: chunk a note, embed each chunk
// and upsert the resulting records into the vector index. It runs in the
// background worker, never on the request path.
type NoteIndexer struct {
	chunker  *Chunker
	embedder Embedder
	index    VectorIndex
	notes    *mongo.Collection
}

func NewNoteIndexer(chunker *Chunker, embedder Embedder, index VectorIndex, db *mongo.Database) *NoteIndexer {
	return &NoteIndexer{
		chunker:  chunker,
		embedder: embedder,
		index:    index,
		notes:    db.Collection("work_notes"),
	}
}

// IndexNote re-embeds a note and returns how many chunks were written.
// Existing vector entries for the note are dropped first so a shrinking note
// leaves no orphaned chunk tails. The note's indexed_at is only advanced
// after the index reflects all chunks.
func (ix *NoteIndexer) IndexNote(ctx context.Context, noteID string) (int, error) {
	objID, err := primitive.ObjectIDFromHex(noteID)
	if err != nil {
		return 0, fmt.Errorf("invalid note id %q: %w", noteID, err)
	}

	var note models.WorkNote
	err = ix.notes.FindOne(ctx, bson.M{"_id": objID, "deleted": bson.M{"$ne": true}}).Decode(&note)
	if err == mongo.ErrNoDocuments {
		// Note deleted between enqueue and processing; clean up instead.
		return 0, ix.RemoveNote(ctx, noteID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load note %s: %w", noteID, err)
	}

	started := time.Now()
	chunks := ix.chunker.Chunk(&note)
	for i := range chunks {
		vec, err := ix.embedder.Embed(ctx, chunks[i].Text)
		if err != nil {
			return 0, fmt.Errorf("failed to embed chunk %s: %w", chunks[i].ChunkID, err)
		}
		chunks[i].Vector = vec
	}

	if err := ix.index.DeleteByNote(ctx, noteID); err != nil {
		return 0, err
	}
	if err := ix.index.Upsert(ctx, chunks); err != nil {
		return 0, err
	}

	_, err = ix.notes.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"indexed_at": time.Now()}})
	if err != nil {
		return len(chunks), fmt.Errorf("failed to mark note %s indexed: %w", noteID, err)
	}

	logger.Info("note indexed",
		"note_id", noteID,
		"chunks", len(chunks),
		"duration_ms", time.Since(started).Milliseconds())
	return len(chunks), nil
}

// RemoveNote drops a deleted note's vector entries. The note itself is not
// re-indexed afterwards (soft invalidation).
func (ix *NoteIndexer) RemoveNote(ctx context.Context, noteID string) error {
	if err := ix.index.DeleteByNote(ctx, noteID); err != nil {
		return err
	}
	logger.Info("note deindexed", "note_id", noteID)
	return nil
}
