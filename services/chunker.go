package services

import (
	"fmt"
	"strconv"
	"strings"

	"worknote-platform/models"
)

// ScopeTagWork tags every note-derived vector record.
const ScopeTagWork = "WORK"

// tokenEstimateDivisor converts character counts to a cheap token estimate.
// Used only for chunk-boundary decisions, not billing.
const tokenEstimateDivisor = 4

const chunkIDSeparator = "#chunk"

// Chunker splits a note's title+body into size-bounded windows for
// embedding. Splitting is deterministic: the same note always produces the
// same chunks, so chunk text can be recomputed instead of persisted.
type Chunker struct {
	maxTokens int
}

func NewChunker(maxTokens int) *Chunker {
	if maxTokens <= 0 {
		maxTokens = 400
	}
	return &Chunker{maxTokens: maxTokens}
}

// EstimateTokenCount returns ceil(len/4), a cheap proxy good enough for
// boundary decisions. Empty text estimates to 0.
func EstimateTokenCount(text string) int {
	if len(text) == 0 {
		return 0
	}
	return (len(text) + tokenEstimateDivisor - 1) / tokenEstimateDivisor
}

// Chunk splits a note into ordered chunk records carrying the note's scope
// metadata. It always returns at least one chunk: a note with an empty body
// still gets a title-only chunk so it stays discoverable.
func (c *Chunker) Chunk(note *models.WorkNote) []models.NoteChunkIndex {
	noteID := note.ID.Hex()

	var texts []string
	body := strings.TrimSpace(note.Body)
	switch {
	case body == "":
		texts = []string{note.Title}
	case EstimateTokenCount(note.Title+"\n\n"+body) <= c.maxTokens:
		texts = []string{note.Title + "\n\n" + body}
	default:
		windows := splitWindows(body, c.maxTokens*tokenEstimateDivisor)
		texts = make([]string, len(windows))
		for i, w := range windows {
			if i == 0 {
				// Title rides along in the first chunk only; prefixing it
				// everywhere would skew every window toward the title terms.
				texts[i] = note.Title + "\n\n" + w
			} else {
				texts[i] = w
			}
		}
	}

	chunks := make([]models.NoteChunkIndex, len(texts))
	for i, text := range texts {
		chunks[i] = models.NoteChunkIndex{
			NoteID:     noteID,
			ChunkID:    FormatChunkID(noteID, i),
			Order:      i,
			Text:       text,
			Scope:      ScopeTagWork,
			PersonIDs:  note.PersonIDs,
			DeptName:   note.DeptName,
			ProjectID:  note.ProjectID,
			Category:   note.Category,
			DateBucket: note.DateBucket(),
		}
	}
	return chunks
}

// ChunkWindow recomputes the body window for a chunk index from the full
// body text. Pure function of (fullText, budget, index); agrees with the
// windows Chunk produces for multi-chunk notes.
func (c *Chunker) ChunkWindow(fullText string, index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("%w: negative chunk index %d", ErrInvalidParameters, index)
	}
	windows := splitWindows(strings.TrimSpace(fullText), c.maxTokens*tokenEstimateDivisor)
	if index >= len(windows) {
		return "", fmt.Errorf("%w: chunk index %d out of range (%d windows)", ErrInvalidParameters, index, len(windows))
	}
	return windows[index], nil
}

// splitWindows cuts text into successive windows of up to budgetChars,
// breaking on whitespace (never mid-word) with no overlap. A single word
// longer than the budget overflows its window rather than being split.
func splitWindows(text string, budgetChars int) []string {
	var out []string
	rest := strings.TrimSpace(text)
	for len(rest) > 0 {
		if len(rest) <= budgetChars {
			out = append(out, rest)
			break
		}
		cut := strings.LastIndexAny(rest[:budgetChars], " \t\n")
		if cut <= 0 {
			// No boundary inside the budget; extend to the next one.
			next := strings.IndexAny(rest[budgetChars:], " \t\n")
			if next < 0 {
				out = append(out, rest)
				break
			}
			cut = budgetChars + next
		}
		out = append(out, strings.TrimSpace(rest[:cut]))
		rest = strings.TrimSpace(rest[cut:])
	}
	return out
}

// FormatChunkID builds the composite vector-record id for a note chunk.
func FormatChunkID(noteID string, index int) string {
	return noteID + chunkIDSeparator + strconv.Itoa(index)
}

// ParseChunkID splits a composite chunk id back into (noteID, index).
func ParseChunkID(id string) (string, int, error) {
	sep := strings.LastIndex(id, chunkIDSeparator)
	if sep <= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedChunkID, id)
	}
	index, err := strconv.Atoi(id[sep+len(chunkIDSeparator):])
	if err != nil || index < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrMalformedChunkID, id)
	}
	return id[:sep], index, nil
}
