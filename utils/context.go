package utils

import (
	"context"
	"time"
)

const (
	// DefaultTimeout bounds most database operations.
	DefaultTimeout = 10 * time.Second

	// LongTimeout is for embedding and generation round trips.
	LongTimeout = 45 * time.Second
)

func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, DefaultTimeout)
}

func WithLongTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, LongTimeout)
}
