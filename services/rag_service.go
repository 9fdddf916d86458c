package services

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Generator produces a natural-language answer from a question and context
// blocks.
type Generator interface {
	Complete(ctx context.Context, question string, contextBlocks []string) (string, error)
}

// ContextSnippet is one cited context in a RAG answer, ordered by
// descending score so callers can correlate citations by position or id.
type ContextSnippet struct {
	WorkID  string  `json:"work_id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// QueryResult packages the generated answer with its supporting contexts.
type QueryResult struct {
	Answer   string           `json:"answer"`
	Contexts []ContextSnippet `json:"contexts"`
}

// RAGOptions carries the per-request scope and overrides.
type RAGOptions struct {
	Scope  Scope
	Params ScopeParams
	TopK   int // 0 means the configured default
}

// excerptChars bounds the per-note excerpt fed into the prompt. Whole
// excerpts are dropped, never truncated mid-note, once the total context
// budget is spent, so citations stay intact.
const excerptChars = 1200

// RAGService orchestrates a retrieval-grounded answer for a question.
type RAGService struct {
	retriever       *SimilarityRetriever
	generator       Generator
	minScore        float64
	defaultTopK     int
	maxContextChars int
}

func NewRAGService(retriever *SimilarityRetriever, generator Generator, minScore float64, defaultTopK, maxContextChars int) *RAGService {
	return &RAGService{
		retriever:       retriever,
		generator:       generator,
		minScore:        minScore,
		defaultTopK:     defaultTopK,
		maxContextChars: maxContextChars,
	}
}

// Query builds the scope filter, retrieves candidate notes, assembles a
// bounded context and asks the generator. Zero retrieved notes still
// produce a generation call with empty context, so callers always get an
// answer field.
func (s *RAGService) Query(ctx context.Context, question string, opts RAGOptions) (*QueryResult, error) {
	tracer := otel.Tracer("rag-service")
	ctx, span := tracer.Start(ctx, "rag.query")
	defer span.End()
	span.SetAttributes(attribute.String("rag.scope", string(opts.Scope)))

	filter, err := BuildScopeFilter(opts.Scope, opts.Params)
	if err != nil {
		return nil, err
	}

	topK := opts.TopK
	if topK == 0 {
		topK = s.defaultTopK
	}

	notes, err := s.retriever.FindSimilar(ctx, question, topK, s.minScore, filter)
	if err != nil {
		return nil, err
	}

	blocks := make([]string, 0, len(notes))
	contexts := make([]ContextSnippet, 0, len(notes))
	total := 0
	for _, note := range notes {
		snippet := excerpt(note.Content, excerptChars)
		block := note.Title + "\n" + snippet
		if total+len(block) > s.maxContextChars {
			break
		}
		total += len(block)
		blocks = append(blocks, block)
		contexts = append(contexts, ContextSnippet{
			WorkID:  note.NoteID,
			Title:   note.Title,
			Snippet: snippet,
			Score:   note.SimilarityScore,
		})
	}
	span.SetAttributes(
		attribute.Int("rag.retrieved", len(notes)),
		attribute.Int("rag.context_blocks", len(blocks)),
	)

	answer, err := s.generator.Complete(ctx, question, blocks)
	if err != nil {
		return nil, err
	}

	return &QueryResult{Answer: answer, Contexts: contexts}, nil
}

// excerpt bounds text to limit characters, cutting on a word boundary.
func excerpt(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	cut := limit
	for i := limit; i > 0; i-- {
		if text[i-1] == ' ' || text[i-1] == '\n' {
			cut = i - 1
			break
		}
	}
	if cut == 0 {
		cut = limit
	}
	return text[:cut] + "..."
}
