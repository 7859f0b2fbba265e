package prompt

import (
	"context"

	"github.com/google/uuid"

	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
)

// ConfigRepository is the storage abstraction for active prompt configs.
// [DIP] resolver and editor services depend on this interface, not on any
// concrete storage.
// [LSP] Postgres and in-memory implementations are valid substitutes.
type ConfigRepository interface {
	// GetActive returns the active config for (ownerID, promptKey).
	// ownerID = nil selects the system default row (owner IS NULL, is_default).
	// Returns domain ErrNotFound when no active row exists.
	GetActive(ctx context.Context, ownerID *uuid.UUID, promptKey string) (domainprompt.Config, error)

	// Insert creates a new config row. Returns domain ErrAlreadyExists when an
	// active row for the same (ownerID, promptKey) already exists.
	Insert(ctx context.Context, cfg domainprompt.Config) (domainprompt.Config, error)

	// SnapshotAndUpdate atomically appends a version snapshot of the current
	// row and applies the draft with version = expectedVersion + 1. The whole
	// operation is one transaction: the snapshot is written strictly before
	// the update, and neither survives alone. Returns domain
	// ErrVersionConflict when the row's version no longer equals
	// expectedVersion, domain ErrNotFound when the row is gone.
	SnapshotAndUpdate(ctx context.Context, id uuid.UUID, expectedVersion int, d domainprompt.Draft, changeNote string) (domainprompt.Config, error)

	// Delete removes the active override row for (ownerID, promptKey).
	// Returns the deleted config's ID and whether a row was deleted — deleting
	// a non-existent override is not an error (reset is idempotent).
	Delete(ctx context.Context, ownerID *uuid.UUID, promptKey string) (uuid.UUID, bool, error)
}

// HistoryRepository reads the append-only version history. Snapshots are
// written only by ConfigRepository.SnapshotAndUpdate and never mutated.
type HistoryRepository interface {
	// ListByConfig returns all snapshots for a config, newest version first.
	ListByConfig(ctx context.Context, configID uuid.UUID) ([]domainprompt.Snapshot, error)

	// GetByVersion returns the snapshot of one superseded version.
	// Returns domain ErrNotFound when the version was never snapshotted.
	GetByVersion(ctx context.Context, configID uuid.UUID, version int) (domainprompt.Snapshot, error)
}
