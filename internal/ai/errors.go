package ai

import "errors"

// Provider failures are not retried here. Callers surface them as
// retryable-by-caller server errors.
var (
	ErrEmbeddingUnavailable  = errors.New("embedding provider unavailable")
	ErrGenerationUnavailable = errors.New("generation provider unavailable")
)
