package settings

import (
	"context"
)

// Repository is a small key/value store for client-local durable state.
// Get returns (nil, nil) for a missing key. Writes and deletes of several
// keys are atomic.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetMany(ctx context.Context, values map[string][]byte) error
	Delete(ctx context.Context, keys ...string) error
}
