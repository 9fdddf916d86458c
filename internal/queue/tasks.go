package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"worknote-platform/internal/logger"
	"worknote-platform/internal/telemetry"
	"worknote-platform/services"
)

const (
	TaskIndexNote   = "note:index"
	TaskDeindexNote = "note:deindex"
)

type NoteIndexPayload struct {
	NoteID string `json:"note_id"`
}

type NoteDeindexPayload struct {
	NoteID string `json:"note_id"`
}

// Task creators
func NewNoteIndexTask(noteID string) (*asynq.Task, error) {
	payload, err := json.Marshal(NoteIndexPayload{NoteID: noteID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskIndexNote,
		payload,
		asynq.MaxRetry(5),
		asynq.Timeout(2*time.Minute),
		asynq.Queue("default"),
	), nil
}

func NewNoteDeindexTask(noteID string) (*asynq.Task, error) {
	payload, err := json.Marshal(NoteDeindexPayload{NoteID: noteID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskDeindexNote,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
		asynq.Queue("default"),
	), nil
}

// Task handlers
type TaskProcessor struct {
	indexer *services.NoteIndexer
	metrics *telemetry.Metrics
}

func NewTaskProcessor(indexer *services.NoteIndexer, metrics *telemetry.Metrics) *TaskProcessor {
	return &TaskProcessor{indexer: indexer, metrics: metrics}
}

func (p *TaskProcessor) HandleIndexNote(ctx context.Context, t *asynq.Task) error {
	var payload NoteIndexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}
	if payload.NoteID == "" {
		return fmt.Errorf("empty note_id: %w", asynq.SkipRetry)
	}

	logger.Info("indexing note", "note_id", payload.NoteID)
	started := time.Now()
	chunks, err := p.indexer.IndexNote(ctx, payload.NoteID)
	if p.metrics != nil {
		p.metrics.RecordNoteIndex(time.Since(started).Seconds(), chunks, err == nil)
	}
	return err
}

func (p *TaskProcessor) HandleDeindexNote(ctx context.Context, t *asynq.Task) error {
	var payload NoteDeindexPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %w", asynq.SkipRetry)
	}
	if payload.NoteID == "" {
		return fmt.Errorf("empty note_id: %w", asynq.SkipRetry)
	}

	logger.Info("removing note from index", "note_id", payload.NoteID)
	return p.indexer.RemoveNote(ctx, payload.NoteID)
}
