package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"worknote-platform/models"
)

func testNote(title, body string) *models.WorkNote {
	return &models.WorkNote{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Body:      body,
		Category:  "meeting",
		PersonIDs: []string{"p1"},
		DeptName:  "platform",
		CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestEstimateTokenCount(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abcd", 1},
		{"abcde", 2},
		{strings.Repeat("x", 400), 100},
		{strings.Repeat("x", 401), 101},
	}
	for _, tc := range cases {
		if got := EstimateTokenCount(tc.text); got != tc.want {
			t.Errorf("EstimateTokenCount(%d chars) = %d, want %d", len(tc.text), got, tc.want)
		}
	}
}

func TestChunkEmptyBodyProducesTitleChunk(t *testing.T) {
	c := NewChunker(400)
	note := testNote("Sprint planning", "")

	chunks := c.Chunk(note)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "Sprint planning" {
		t.Errorf("unexpected chunk text: %q", chunks[0].Text)
	}
	if chunks[0].Order != 0 {
		t.Errorf("expected order 0, got %d", chunks[0].Order)
	}
}

func TestChunkSmallNoteIsSingleChunk(t *testing.T) {
	c := NewChunker(400)
	note := testNote("Standup", "Discussed the rollout schedule.")

	chunks := c.Chunk(note)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	want := "Standup\n\nDiscussed the rollout schedule."
	if chunks[0].Text != want {
		t.Errorf("chunk text = %q, want %q", chunks[0].Text, want)
	}
}

func TestChunkLargeNoteSplitsOnWordBoundaries(t *testing.T) {
	c := NewChunker(50) // 200-char windows
	body := strings.TrimSpace(strings.Repeat("alpha bravo charlie delta echo ", 30))
	note := testNote("Big note", body)

	chunks := c.Chunk(note)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, ch := range chunks {
		if ch.Order != i {
			t.Errorf("chunk %d has order %d", i, ch.Order)
		}
		if ch.ChunkID != FormatChunkID(note.ID.Hex(), i) {
			t.Errorf("chunk %d has id %q", i, ch.ChunkID)
		}
		if ch.Scope != ScopeTagWork {
			t.Errorf("chunk %d has scope %q", i, ch.Scope)
		}
		if ch.DateBucket != "2026-03" {
			t.Errorf("chunk %d has date bucket %q", i, ch.DateBucket)
		}
	}

	if !strings.HasPrefix(chunks[0].Text, "Big note\n\n") {
		t.Errorf("first chunk should carry the title, got %q", chunks[0].Text[:20])
	}
	if strings.Contains(chunks[1].Text, "Big note") {
		t.Error("title should not repeat in later chunks")
	}

	// No window may break a word apart.
	for i, ch := range chunks {
		for _, word := range strings.Fields(ch.Text) {
			switch word {
			case "alpha", "bravo", "charlie", "delta", "echo", "Big", "note":
			default:
				t.Errorf("chunk %d contains split word %q", i, word)
			}
		}
	}
}

func TestChunkWindowAgreesWithChunk(t *testing.T) {
	c := NewChunker(50)
	body := strings.TrimSpace(strings.Repeat("one two three four five six seven ", 40))
	note := testNote("Title", body)

	chunks := c.Chunk(note)
	for i := 1; i < len(chunks); i++ {
		window, err := c.ChunkWindow(body, i)
		if err != nil {
			t.Fatalf("ChunkWindow(%d): %v", i, err)
		}
		if window != chunks[i].Text {
			t.Errorf("window %d mismatch:\n got %q\nwant %q", i, window, chunks[i].Text)
		}
	}
}

func TestChunkWindowOutOfRange(t *testing.T) {
	c := NewChunker(400)
	if _, err := c.ChunkWindow("short text", 5); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("expected ErrInvalidParameters, got %v", err)
	}
	if _, err := c.ChunkWindow("short text", -1); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("expected ErrInvalidParameters for negative index, got %v", err)
	}
}

func TestChunkIDRoundTrip(t *testing.T) {
	noteID := primitive.NewObjectID().Hex()
	for _, index := range []int{0, 1, 42} {
		id := FormatChunkID(noteID, index)
		gotNote, gotIndex, err := ParseChunkID(id)
		if err != nil {
			t.Fatalf("ParseChunkID(%q): %v", id, err)
		}
		if gotNote != noteID || gotIndex != index {
			t.Errorf("round trip %q -> (%q, %d)", id, gotNote, gotIndex)
		}
	}
}

func TestParseChunkIDMalformed(t *testing.T) {
	for _, id := range []string{
		"",
		"no-separator",
		"#chunk3",
		"abc#chunk",
		"abc#chunkx",
		"abc#chunk-1",
	} {
		if _, _, err := ParseChunkID(id); !errors.Is(err, ErrMalformedChunkID) {
			t.Errorf("ParseChunkID(%q) = %v, want ErrMalformedChunkID", id, err)
		}
	}
}
