package idempotency

import (
	"context"

	"github.com/google/uuid"
)

// Store persists editor command results keyed by the client-chosen
// Idempotency-Key, so an optimistic UI can retry a submitted command after a
// timeout and receive the original outcome instead of a duplicate write.
type Store interface {
	// Check looks up a processed command. Returns the stored result JSON and
	// whether the key exists.
	Check(ctx context.Context, key string) ([]byte, bool, error)

	// Record stores a processed command result. Recording the same key twice
	// is a no-op (first write wins).
	Record(ctx context.Context, key string, ownerID *uuid.UUID, commandType string, resultJSON []byte) error
}
