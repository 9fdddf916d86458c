package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"worknote-platform/models"
)

type fakeGenerator struct {
	answer    string
	err       error
	gotBlocks []string
	calls     int
}

func (f *fakeGenerator) Complete(ctx context.Context, question string, contextBlocks []string) (string, error) {
	f.calls++
	f.gotBlocks = contextBlocks
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestRAG(index *fakeIndex, store *fakeStore, gen *fakeGenerator, maxContextChars int) *RAGService {
	retriever := NewSimilarityRetriever(&fakeEmbedder{vector: []float32{0.1}}, index, store)
	return NewRAGService(retriever, gen, 0.6, 8, maxContextChars)
}

func TestRAGQueryAssemblesContext(t *testing.T) {
	noteA := primitive.NewObjectID()
	noteB := primitive.NewObjectID()

	index := &fakeIndex{matches: []VectorMatch{
		{ChunkID: FormatChunkID(noteA.Hex(), 0), Score: 0.9},
		{ChunkID: FormatChunkID(noteB.Hex(), 0), Score: 0.7},
	}}
	store := &fakeStore{notes: map[string]models.WorkNote{
		noteA.Hex(): {ID: noteA, Title: "Outage postmortem", Body: "The cache node ran out of memory."},
		noteB.Hex(): {ID: noteB, Title: "Capacity review", Body: "Memory headroom is shrinking."},
	}}
	gen := &fakeGenerator{answer: "The cache ran out of memory."}
	rag := newTestRAG(index, store, gen, 6000)

	result, err := rag.Query(context.Background(), "why did the cache fail?", RAGOptions{Scope: ScopeGlobal})
	if err != nil {
		t.Fatal(err)
	}
	if result.Answer != gen.answer {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Contexts) != 2 {
		t.Fatalf("expected 2 contexts, got %d", len(result.Contexts))
	}
	if result.Contexts[0].WorkID != noteA.Hex() {
		t.Errorf("contexts should follow score order")
	}
	if len(gen.gotBlocks) != 2 {
		t.Fatalf("generator got %d blocks", len(gen.gotBlocks))
	}
	if !strings.HasPrefix(gen.gotBlocks[0], "Outage postmortem\n") {
		t.Errorf("block should start with the note title: %q", gen.gotBlocks[0])
	}
	if !strings.Contains(gen.gotBlocks[0], "out of memory") {
		t.Errorf("block should carry the body excerpt: %q", gen.gotBlocks[0])
	}
}

func TestRAGQueryEmptyRetrievalStillAnswers(t *testing.T) {
	gen := &fakeGenerator{answer: "I could not find any notes about that."}
	rag := newTestRAG(&fakeIndex{}, &fakeStore{}, gen, 6000)

	result, err := rag.Query(context.Background(), "anything?", RAGOptions{Scope: ScopeGlobal})
	if err != nil {
		t.Fatal(err)
	}
	if gen.calls != 1 {
		t.Fatalf("generator should be called once, got %d", gen.calls)
	}
	if len(gen.gotBlocks) != 0 {
		t.Errorf("generator should get no context blocks, got %d", len(gen.gotBlocks))
	}
	if result.Contexts == nil || len(result.Contexts) != 0 {
		t.Errorf("contexts must be an empty non-nil slice, got %v", result.Contexts)
	}
	if result.Answer == "" {
		t.Error("answer must still be populated")
	}
}

func TestRAGQueryContextBudgetDropsWholeNotes(t *testing.T) {
	noteA := primitive.NewObjectID()
	noteB := primitive.NewObjectID()

	index := &fakeIndex{matches: []VectorMatch{
		{ChunkID: FormatChunkID(noteA.Hex(), 0), Score: 0.9},
		{ChunkID: FormatChunkID(noteB.Hex(), 0), Score: 0.8},
	}}
	store := &fakeStore{notes: map[string]models.WorkNote{
		noteA.Hex(): {ID: noteA, Title: "First", Body: strings.Repeat("alpha ", 20)},
		noteB.Hex(): {ID: noteB, Title: "Second", Body: strings.Repeat("bravo ", 20)},
	}}
	gen := &fakeGenerator{answer: "ok"}
	// Budget fits the first block but not both.
	rag := newTestRAG(index, store, gen, 140)

	result, err := rag.Query(context.Background(), "q", RAGOptions{Scope: ScopeGlobal})
	if err != nil {
		t.Fatal(err)
	}
	if len(gen.gotBlocks) != 1 {
		t.Fatalf("expected 1 block within budget, got %d", len(gen.gotBlocks))
	}
	if len(result.Contexts) != 1 || result.Contexts[0].Title != "First" {
		t.Errorf("lower-ranked note should be dropped whole, got %v", result.Contexts)
	}
	if strings.Contains(gen.gotBlocks[0], "bravo") {
		t.Error("dropped note leaked into the prompt")
	}
}

func TestRAGQueryInvalidScope(t *testing.T) {
	gen := &fakeGenerator{}
	rag := newTestRAG(&fakeIndex{}, &fakeStore{}, gen, 6000)

	_, err := rag.Query(context.Background(), "q", RAGOptions{Scope: ScopePerson})
	if !errors.Is(err, ErrInvalidScopeParameters) {
		t.Fatalf("got %v, want ErrInvalidScopeParameters", err)
	}
	if gen.calls != 0 {
		t.Error("generator must not run for invalid scope parameters")
	}
}

func TestRAGQueryPropagatesGeneratorError(t *testing.T) {
	wantErr := errors.New("generation down")
	gen := &fakeGenerator{err: wantErr}
	rag := newTestRAG(&fakeIndex{}, &fakeStore{}, gen, 6000)

	if _, err := rag.Query(context.Background(), "q", RAGOptions{Scope: ScopeGlobal}); !errors.Is(err, wantErr) {
		t.Errorf("got %v, want generator error", err)
	}
}

func TestExcerptCutsOnWordBoundary(t *testing.T) {
	text := "one two three four five"
	got := excerpt(text, 12)
	if got != "one two..." {
		t.Errorf("excerpt = %q", got)
	}
	if excerpt("short", 100) != "short" {
		t.Error("text within the limit should pass through unchanged")
	}
}
