package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"worknote-platform/models"
)

// Embedder maps text to a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SimilarNote is one retrieval result: the best-matching chunk's score
// attached to the full source note, plus its open todos.
type SimilarNote struct {
	NoteID          string        `json:"work_id"`
	Title           string        `json:"title"`
	Content         string        `json:"content"`
	Category        string        `json:"category"`
	SimilarityScore float64       `json:"similarity_score"`
	BestChunk       int           `json:"-"`
	Todos           []models.Todo `json:"todos"`
}

// SimilarityRetriever turns free text plus a scope into the best-matching
// notes above a similarity threshold.
type SimilarityRetriever struct {
	embedder Embedder
	index    VectorIndex
	store    NoteStore
}

func NewSimilarityRetriever(embedder Embedder, index VectorIndex, store NoteStore) *SimilarityRetriever {
	return &SimilarityRetriever{embedder: embedder, index: index, store: store}
}

// FindSimilar embeds the query, asks the vector index for topK chunk hits
// under the scope filter, collapses multi-chunk matches to the single best
// chunk per note, drops notes scoring below minScore, and hydrates the
// survivors. Note and todo fetches run concurrently; stale vector entries
// (notes since deleted) are silently dropped.
func (r *SimilarityRetriever) FindSimilar(ctx context.Context, queryText string, topK int, minScore float64, filter *ScopeFilter) ([]SimilarNote, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", ErrInvalidParameters, topK)
	}

	tracer := otel.Tracer("similarity-retriever")
	ctx, span := tracer.Start(ctx, "retriever.find_similar")
	defer span.End()
	span.SetAttributes(
		attribute.Int("retriever.top_k", topK),
		attribute.Float64("retriever.min_score", minScore),
	)

	vector, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, err
	}

	matches, err := r.index.Query(ctx, vector, topK, filter)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []SimilarNote{}, nil
	}

	// Collapse chunk hits to the best score per note. firstSeen keeps the
	// index's original order so equal scores never reorder between runs.
	type bestMatch struct {
		score float64
		chunk int
	}
	best := make(map[string]bestMatch)
	var firstSeen []string
	for _, m := range matches {
		noteID, chunkIdx, err := ParseChunkID(m.ChunkID)
		if err != nil {
			return nil, err
		}
		prev, seen := best[noteID]
		if !seen {
			firstSeen = append(firstSeen, noteID)
		}
		if !seen || m.Score > prev.score {
			best[noteID] = bestMatch{score: m.Score, chunk: chunkIdx}
		}
	}

	surviving := make([]string, 0, len(firstSeen))
	for _, noteID := range firstSeen {
		if best[noteID].score >= minScore {
			surviving = append(surviving, noteID)
		}
	}
	sort.SliceStable(surviving, func(i, j int) bool {
		return best[surviving[i]].score > best[surviving[j]].score
	})
	if len(surviving) == 0 {
		return []SimilarNote{}, nil
	}

	// Hydrate notes and todos concurrently; neither depends on the other.
	var (
		wg       sync.WaitGroup
		notes    []models.WorkNote
		todos    map[string][]models.Todo
		noteErr  error
		todoErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		notes, noteErr = r.store.FindByIDs(ctx, surviving)
	}()
	go func() {
		defer wg.Done()
		todos, todoErr = r.store.FindOpenTodosByNoteIDs(ctx, surviving)
	}()
	wg.Wait()
	if noteErr != nil {
		return nil, noteErr
	}
	if todoErr != nil {
		return nil, todoErr
	}

	byID := make(map[string]models.WorkNote, len(notes))
	for _, note := range notes {
		byID[note.ID.Hex()] = note
	}

	results := make([]SimilarNote, 0, len(surviving))
	for _, noteID := range surviving {
		note, ok := byID[noteID]
		if !ok {
			// Stale vector entry for a deleted note; not an error.
			continue
		}
		noteTodos := todos[noteID]
		if noteTodos == nil {
			noteTodos = []models.Todo{}
		}
		match := best[noteID]
		results = append(results, SimilarNote{
			NoteID:          noteID,
			Title:           note.Title,
			Content:         note.Body,
			Category:        note.Category,
			SimilarityScore: match.score,
			BestChunk:       match.chunk,
			Todos:           noteTodos,
		})
	}

	span.SetAttributes(attribute.Int("retriever.results", len(results)))
	return results, nil
}
