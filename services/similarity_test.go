package services

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"worknote-platform/models"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeIndex struct {
	matches []VectorMatch
	err     error
	gotTopK int
	gotFil  *ScopeFilter
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int, filter *ScopeFilter) ([]VectorMatch, error) {
	f.gotTopK = topK
	f.gotFil = filter
	return f.matches, f.err
}

func (f *fakeIndex) Upsert(ctx context.Context, records []models.NoteChunkIndex) error {
	return nil
}

func (f *fakeIndex) DeleteByNote(ctx context.Context, noteID string) error {
	return nil
}

type fakeStore struct {
	notes map[string]models.WorkNote
	todos map[string][]models.Todo
}

func (f *fakeStore) FindByIDs(ctx context.Context, ids []string) ([]models.WorkNote, error) {
	var out []models.WorkNote
	for _, id := range ids {
		if note, ok := f.notes[id]; ok {
			out = append(out, note)
		}
	}
	return out, nil
}

func (f *fakeStore) FindOpenTodosByNoteIDs(ctx context.Context, ids []string) (map[string][]models.Todo, error) {
	return f.todos, nil
}

func storedNote(id primitive.ObjectID, title string) models.WorkNote {
	return models.WorkNote{ID: id, Title: title, Body: "body of " + title, Category: "general"}
}

func TestFindSimilarRanksAndFilters(t *testing.T) {
	noteA := primitive.NewObjectID()
	noteB := primitive.NewObjectID()
	noteC := primitive.NewObjectID()

	index := &fakeIndex{matches: []VectorMatch{
		{ChunkID: FormatChunkID(noteA.Hex(), 0), Score: 0.71},
		{ChunkID: FormatChunkID(noteB.Hex(), 2), Score: 0.93},
		{ChunkID: FormatChunkID(noteC.Hex(), 0), Score: 0.40}, // below threshold
	}}
	store := &fakeStore{
		notes: map[string]models.WorkNote{
			noteA.Hex(): storedNote(noteA, "Note A"),
			noteB.Hex(): storedNote(noteB, "Note B"),
			noteC.Hex(): storedNote(noteC, "Note C"),
		},
		todos: map[string][]models.Todo{},
	}
	r := NewSimilarityRetriever(&fakeEmbedder{vector: []float32{0.1}}, index, store)

	results, err := r.FindSimilar(context.Background(), "query", 5, 0.6, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].NoteID != noteB.Hex() || results[1].NoteID != noteA.Hex() {
		t.Errorf("wrong order: %s then %s", results[0].Title, results[1].Title)
	}
	if results[0].SimilarityScore != 0.93 {
		t.Errorf("score = %v, want 0.93", results[0].SimilarityScore)
	}
	if results[0].BestChunk != 2 {
		t.Errorf("best chunk = %d, want 2", results[0].BestChunk)
	}
	if index.gotTopK != 5 {
		t.Errorf("index queried with topK %d", index.gotTopK)
	}
	if results[0].Todos == nil {
		t.Error("todos must never be nil")
	}
}

func TestFindSimilarCollapsesChunksPerNote(t *testing.T) {
	noteA := primitive.NewObjectID()

	index := &fakeIndex{matches: []VectorMatch{
		{ChunkID: FormatChunkID(noteA.Hex(), 0), Score: 0.65},
		{ChunkID: FormatChunkID(noteA.Hex(), 3), Score: 0.88},
		{ChunkID: FormatChunkID(noteA.Hex(), 1), Score: 0.72},
	}}
	store := &fakeStore{
		notes: map[string]models.WorkNote{noteA.Hex(): storedNote(noteA, "Note A")},
	}
	r := NewSimilarityRetriever(&fakeEmbedder{vector: []float32{0.1}}, index, store)

	results, err := r.FindSimilar(context.Background(), "query", 5, 0.6, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Fatalf("expected chunks collapsed to one note, got %d results", len(results))
	}
	if results[0].SimilarityScore != 0.88 || results[0].BestChunk != 3 {
		t.Errorf("got score %v chunk %d, want best chunk kept",
			results[0].SimilarityScore, results[0].BestChunk)
	}
}

func TestFindSimilarDropsStaleEntries(t *testing.T) {
	alive := primitive.NewObjectID()
	deleted := primitive.NewObjectID()

	index := &fakeIndex{matches: []VectorMatch{
		{ChunkID: FormatChunkID(deleted.Hex(), 0), Score: 0.95},
		{ChunkID: FormatChunkID(alive.Hex(), 0), Score: 0.80},
	}}
	store := &fakeStore{
		notes: map[string]models.WorkNote{alive.Hex(): storedNote(alive, "Alive")},
	}
	r := NewSimilarityRetriever(&fakeEmbedder{vector: []float32{0.1}}, index, store)

	results, err := r.FindSimilar(context.Background(), "query", 5, 0.6, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].NoteID != alive.Hex() {
		t.Fatalf("stale entry should be dropped silently, got %d results", len(results))
	}
}

func TestFindSimilarEmptyIndex(t *testing.T) {
	r := NewSimilarityRetriever(&fakeEmbedder{vector: []float32{0.1}}, &fakeIndex{}, &fakeStore{})

	results, err := r.FindSimilar(context.Background(), "query", 5, 0.6, nil)
	if err != nil {
		t.Fatal(err)
	}
	if results == nil || len(results) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", results)
	}
}

func TestFindSimilarRejectsNonPositiveTopK(t *testing.T) {
	r := NewSimilarityRetriever(&fakeEmbedder{vector: []float32{0.1}}, &fakeIndex{}, &fakeStore{})

	if _, err := r.FindSimilar(context.Background(), "query", 0, 0.6, nil); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("topK=0: got %v, want ErrInvalidParameters", err)
	}
}

func TestFindSimilarMalformedChunkID(t *testing.T) {
	index := &fakeIndex{matches: []VectorMatch{{ChunkID: "garbage", Score: 0.9}}}
	r := NewSimilarityRetriever(&fakeEmbedder{vector: []float32{0.1}}, index, &fakeStore{})

	if _, err := r.FindSimilar(context.Background(), "query", 5, 0.6, nil); !errors.Is(err, ErrMalformedChunkID) {
		t.Errorf("got %v, want ErrMalformedChunkID", err)
	}
}

func TestFindSimilarPropagatesEmbedderError(t *testing.T) {
	wantErr := errors.New("embedding down")
	r := NewSimilarityRetriever(&fakeEmbedder{err: wantErr}, &fakeIndex{}, &fakeStore{})

	if _, err := r.FindSimilar(context.Background(), "query", 5, 0.6, nil); !errors.Is(err, wantErr) {
		t.Errorf("got %v, want embedder error", err)
	}
}
