package cache

import (
	"context"
	"errors"

	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
)

// ErrMiss is returned by Get when no live entry exists for the key.
var ErrMiss = errors.New("cache: miss")

// ResolutionCache bounds the generation hot path to at most one store
// round-trip per TTL window per (owner, prompt key) pair. Implementations own
// the TTL; entries expire lazily on access. Writers must call Invalidate
// immediately after any config write or delete the cache could cover.
type ResolutionCache interface {
	// Get returns the live cached resolution for the key, or ErrMiss.
	Get(ctx context.Context, key string) (domainprompt.Resolved, error)

	// Set stores a resolution under the key with a fresh TTL.
	Set(ctx context.Context, key string, r domainprompt.Resolved) error

	// Invalidate removes the exact key.
	Invalidate(ctx context.Context, key string) error

	// InvalidateOwner removes every entry belonging to the owner prefix
	// (see domain prompt.OwnerCachePrefix).
	InvalidateOwner(ctx context.Context, ownerPrefix string) error

	// Clear drops every entry.
	Clear(ctx context.Context) error
}
