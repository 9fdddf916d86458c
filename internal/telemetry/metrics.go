package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter    metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	EmbeddingCalls    metric.Int64Counter
	VectorQueries     metric.Int64Counter
	GenerationCalls   metric.Int64Counter
	NoteIndexDuration metric.Float64Histogram
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("worknote-platform")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	embeddingCalls, err := meter.Int64Counter(
		"rag.embedding.calls",
		metric.WithDescription("Total embedding provider calls"),
	)
	if err != nil {
		return nil, err
	}

	vectorQueries, err := meter.Int64Counter(
		"rag.vector.queries",
		metric.WithDescription("Total vector index queries"),
	)
	if err != nil {
		return nil, err
	}

	generationCalls, err := meter.Int64Counter(
		"rag.generation.calls",
		metric.WithDescription("Total generation provider calls"),
	)
	if err != nil {
		return nil, err
	}

	noteIndexDuration, err := meter.Float64Histogram(
		"note.index.duration",
		metric.WithDescription("Note chunk/embed/upsert duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:    requestCounter,
		RequestDuration:   requestDuration,
		EmbeddingCalls:    embeddingCalls,
		VectorQueries:     vectorQueries,
		GenerationCalls:   generationCalls,
		NoteIndexDuration: noteIndexDuration,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordProviderCall records an external provider call outcome
func (m *Metrics) RecordProviderCall(counter metric.Int64Counter, provider string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("provider", provider),
		attribute.Bool("success", success),
	}
	counter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

// RecordNoteIndex records a note indexing run
func (m *Metrics) RecordNoteIndex(duration float64, chunks int, success bool) {
	attrs := []attribute.KeyValue{
		attribute.Int("note.chunks", chunks),
		attribute.Bool("success", success),
	}
	m.NoteIndexDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}
