package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"worknote-platform/models"
)

// QdrantVectorIndex is a minimal REST gateway to Qdrant, for deployments
// without Atlas. Cosine distance; the collection is created on demand.
type QdrantVectorIndex struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

func NewQdrantVectorIndex(url, apiKey, collection string) *QdrantVectorIndex {
	return &QdrantVectorIndex{
		url:        url,
		apiKey:     apiKey,
		collection: collection,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// EnsureCollection creates the collection if missing. Qdrant returns OK for
// an existing collection with the same schema.
func (idx *QdrantVectorIndex) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dimension)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return idx.do(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s", idx.url, idx.collection), body, nil)
}

func (idx *QdrantVectorIndex) Query(ctx context.Context, vector []float32, topK int, filter *ScopeFilter) ([]VectorMatch, error) {
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	if f := filter.QdrantFilter(); f != nil {
		req["filter"] = f
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	err := idx.do(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/search", idx.url, idx.collection), req, &resp)
	if err != nil {
		return nil, err
	}

	matches := make([]VectorMatch, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunkID, _ := r.Payload["chunk_id"].(string)
		matches = append(matches, VectorMatch{ChunkID: chunkID, Score: r.Score})
	}
	return matches, nil
}

func (idx *QdrantVectorIndex) Upsert(ctx context.Context, records []models.NoteChunkIndex) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]map[string]any, len(records))
	for i, rec := range records {
		points[i] = map[string]any{
			// Qdrant point ids must be UUIDs; derive one from the chunk id
			// so re-indexing overwrites instead of duplicating.
			"id":     uuid.NewSHA1(uuid.NameSpaceOID, []byte(rec.ChunkID)).String(),
			"vector": rec.Vector,
			"payload": map[string]any{
				"note_id":     rec.NoteID,
				"chunk_id":    rec.ChunkID,
				"order":       rec.Order,
				"text":        rec.Text,
				"scope":       rec.Scope,
				"person_ids":  rec.PersonIDs,
				"dept_name":   rec.DeptName,
				"project_id":  rec.ProjectID,
				"category":    rec.Category,
				"date_bucket": rec.DateBucket,
			},
		}
	}
	body := map[string]any{"points": points}
	return idx.do(ctx, http.MethodPut,
		fmt.Sprintf("%s/collections/%s/points?wait=true", idx.url, idx.collection), body, nil)
}

func (idx *QdrantVectorIndex) DeleteByNote(ctx context.Context, noteID string) error {
	body := map[string]any{
		"filter": map[string]any{
			"must": []map[string]any{
				{"key": "note_id", "match": map[string]any{"value": noteID}},
			},
		},
	}
	return idx.do(ctx, http.MethodPost,
		fmt.Sprintf("%s/collections/%s/points/delete?wait=true", idx.url, idx.collection), body, nil)
}

func (idx *QdrantVectorIndex) do(ctx context.Context, method, url string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal qdrant payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if idx.apiKey != "" {
		req.Header.Set("api-key", idx.apiKey)
	}

	resp, err := idx.client.Do(req)
	if err != nil {
		return fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant returned %s for %s", resp.Status, url)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode qdrant response: %w", err)
		}
	}
	return nil
}
