package ai

import (
	"context"
	"os"
	"testing"
)

func TestEmbedLive(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	ctx := context.Background()
	embedder, err := NewGeminiEmbedder(ctx, apiKey, "text-embedding-004")
	if err != nil {
		t.Fatalf("embedder init: %v", err)
	}
	defer embedder.Close()

	vec, err := embedder.Embed(ctx, "weekly planning notes")
	if err != nil {
		t.Fatalf("embedding error: %v", err)
	}
	if len(vec) == 0 {
		t.Fatal("empty embedding")
	}
}
