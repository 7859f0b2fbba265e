package editor

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"

	"github.com/google/uuid"

	"github.com/outflowhq/prompt-engine/internal/domain/event"
	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
	"github.com/outflowhq/prompt-engine/internal/domain/registry"
	portcache "github.com/outflowhq/prompt-engine/internal/port/cache"
	porteventbus "github.com/outflowhq/prompt-engine/internal/port/eventbus"
	portlocker "github.com/outflowhq/prompt-engine/internal/port/locker"
	portprompt "github.com/outflowhq/prompt-engine/internal/port/prompt"
)

// Service is the version manager behind the prompt editor: it creates and
// updates overrides, restores historical versions, resets to defaults, and
// keeps the resolution cache and event feed in step with every write.
//
// Concurrency: writers for the same (owner, key) are serialised by a Postgres
// advisory lock, and the store update is additionally conditioned on the
// version the caller last read. A mismatched expected version surfaces
// ErrVersionConflict — the operator re-reads and retries.
//
// [DIP] Depends on ports, never on adapters or transport.
type Service struct {
	repo    portprompt.ConfigRepository
	history portprompt.HistoryRepository
	cache   portcache.ResolutionCache
	bus     porteventbus.EventBus
	locker  portlocker.AdvisoryLocker
}

func NewService(
	repo portprompt.ConfigRepository,
	history portprompt.HistoryRepository,
	cache portcache.ResolutionCache,
	bus porteventbus.EventBus,
	locker portlocker.AdvisoryLocker,
) *Service {
	return &Service{
		repo:    repo,
		history: history,
		cache:   cache,
		bus:     bus,
		locker:  locker,
	}
}

// Upsert creates the first config for (ownerID, promptKey) at version 1, or
// snapshots the current state and writes the draft as version N+1.
// expectedVersion is the version the operator's editor last loaded: 0 for a
// first save, the current version otherwise. ownerID = nil edits the shared
// system default.
func (s *Service) Upsert(ctx context.Context, ownerID *uuid.UUID, promptKey string, d domainprompt.Draft, expectedVersion int, changeNote string) (domainprompt.Config, error) {
	entry, ok := registry.Lookup(promptKey)
	if !ok {
		return domainprompt.Config{}, fmt.Errorf("upsert %s: %w", promptKey, domainprompt.ErrUnknownKey)
	}
	if err := d.Validate(); err != nil {
		return domainprompt.Config{}, err
	}

	var saved domainprompt.Config
	err := s.locker.WithLock(ctx, advisoryKey(ownerID, promptKey), func(ctx context.Context) error {
		cur, err := s.repo.GetActive(ctx, ownerID, promptKey)
		switch {
		case errors.Is(err, domainprompt.ErrNotFound):
			if expectedVersion != 0 {
				// The editor loaded a row that has since been reset.
				return domainprompt.ErrVersionConflict
			}
			saved, err = s.repo.Insert(ctx, domainprompt.Config{
				ID:                uuid.New(),
				OwnerID:           ownerID,
				PromptKey:         promptKey,
				Category:          string(entry.Category),
				SystemInstruction: d.SystemInstruction,
				PromptTemplate:    d.PromptTemplate,
				Temperature:       d.Temperature,
				TopP:              d.TopP,
				Version:           1,
				IsActive:          true,
				IsDefault:         ownerID == nil,
			})
			if errors.Is(err, domainprompt.ErrAlreadyExists) {
				// Lost a create race with a writer outside the advisory lock.
				return domainprompt.ErrVersionConflict
			}
			if err != nil {
				return fmt.Errorf("creating prompt config: %w", err)
			}
			return nil
		case err != nil:
			return fmt.Errorf("reading current prompt config: %w", err)
		}

		saved, err = s.repo.SnapshotAndUpdate(ctx, cur.ID, expectedVersion, d, changeNote)
		if err != nil {
			if errors.Is(err, domainprompt.ErrVersionConflict) || errors.Is(err, domainprompt.ErrNotFound) {
				return domainprompt.ErrVersionConflict
			}
			return fmt.Errorf("updating prompt config: %w", err)
		}
		return nil
	})
	if err != nil {
		return domainprompt.Config{}, err
	}

	s.afterWrite(ctx, event.TypePromptUpdated, saved)
	return saved, nil
}

// Restore writes a new version whose field values come from the snapshot of a
// historical version. History stays monotonic: restoring never reuses or
// deletes a version number.
func (s *Service) Restore(ctx context.Context, ownerID *uuid.UUID, promptKey string, version int) (domainprompt.Config, error) {
	var saved domainprompt.Config
	err := s.locker.WithLock(ctx, advisoryKey(ownerID, promptKey), func(ctx context.Context) error {
		cur, err := s.repo.GetActive(ctx, ownerID, promptKey)
		if err != nil {
			if errors.Is(err, domainprompt.ErrNotFound) {
				return fmt.Errorf("restore %s: %w", promptKey, domainprompt.ErrNotFound)
			}
			return fmt.Errorf("reading current prompt config: %w", err)
		}

		snap, err := s.history.GetByVersion(ctx, cur.ID, version)
		if err != nil {
			if errors.Is(err, domainprompt.ErrNotFound) {
				return fmt.Errorf("restore %s version %d: %w", promptKey, version, domainprompt.ErrNotFound)
			}
			return fmt.Errorf("reading version snapshot: %w", err)
		}

		d := domainprompt.Draft{
			SystemInstruction: snap.SystemInstruction,
			PromptTemplate:    snap.PromptTemplate,
			Temperature:       snap.Temperature,
			TopP:              snap.TopP,
		}
		note := fmt.Sprintf("restored version %d", version)
		saved, err = s.repo.SnapshotAndUpdate(ctx, cur.ID, cur.Version, d, note)
		if err != nil {
			if errors.Is(err, domainprompt.ErrVersionConflict) {
				return domainprompt.ErrVersionConflict
			}
			return fmt.Errorf("writing restored prompt config: %w", err)
		}
		return nil
	})
	if err != nil {
		return domainprompt.Config{}, err
	}

	s.afterWrite(ctx, event.TypePromptRestored, saved)
	return saved, nil
}

// Reset deletes the owner's override so resolution falls back to the system
// default. Idempotent: resetting an override that does not exist is a no-op.
// Version snapshots are retained for the deleted config.
func (s *Service) Reset(ctx context.Context, ownerID *uuid.UUID, promptKey string) error {
	if ownerID == nil {
		return &domainprompt.ValidationError{Field: "owner_id", Reason: "system default cannot be reset"}
	}

	var (
		deletedID uuid.UUID
		deleted   bool
	)
	err := s.locker.WithLock(ctx, advisoryKey(ownerID, promptKey), func(ctx context.Context) error {
		var err error
		deletedID, deleted, err = s.repo.Delete(ctx, ownerID, promptKey)
		if err != nil {
			return fmt.Errorf("deleting prompt override: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if !deleted {
		return nil
	}

	if err := s.cache.Invalidate(ctx, domainprompt.CacheKey(ownerID, promptKey)); err != nil {
		slog.ErrorContext(ctx, "failed to invalidate prompt cache", "prompt_key", promptKey, "error", err)
	}
	e := event.New(event.TypePromptReset, deletedID, promptKey, ownerID, 0)
	if err := s.bus.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "failed to publish PromptReset event", "prompt_key", promptKey, "error", err)
	}
	return nil
}

// ActiveConfig returns the editable config for (ownerID, promptKey): the
// stored row when one exists, otherwise a synthetic version-0 config built
// from the registry so the editor works before anything is persisted.
func (s *Service) ActiveConfig(ctx context.Context, ownerID *uuid.UUID, promptKey string) (domainprompt.Config, error) {
	entry, ok := registry.Lookup(promptKey)
	if !ok {
		return domainprompt.Config{}, fmt.Errorf("get config %s: %w", promptKey, domainprompt.ErrUnknownKey)
	}

	cfg, err := s.repo.GetActive(ctx, ownerID, promptKey)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, domainprompt.ErrNotFound) {
		synthetic := entry.SyntheticConfig()
		synthetic.OwnerID = ownerID
		return synthetic, nil
	}
	return domainprompt.Config{}, fmt.Errorf("reading prompt config: %w", err)
}

// History returns the version snapshots for a config, newest first.
func (s *Service) History(ctx context.Context, configID uuid.UUID) ([]domainprompt.Snapshot, error) {
	snapshots, err := s.history.ListByConfig(ctx, configID)
	if err != nil {
		return nil, fmt.Errorf("listing version history: %w", err)
	}
	return snapshots, nil
}

// SeedDefaults inserts a system default row (version 1) for every registry
// entry that has none. Create-only: existing defaults are never overwritten,
// so operator edits survive restarts.
func (s *Service) SeedDefaults(ctx context.Context) error {
	seeded := 0
	for _, entry := range registry.All() {
		_, err := s.repo.GetActive(ctx, nil, entry.Key)
		if err == nil {
			continue
		}
		if !errors.Is(err, domainprompt.ErrNotFound) {
			return fmt.Errorf("checking default for %s: %w", entry.Key, err)
		}

		cfg := entry.SyntheticConfig()
		cfg.ID = uuid.New()
		cfg.Version = 1
		if _, err := s.repo.Insert(ctx, cfg); err != nil {
			if errors.Is(err, domainprompt.ErrAlreadyExists) {
				continue // another replica seeded it first
			}
			return fmt.Errorf("seeding default for %s: %w", entry.Key, err)
		}
		seeded++
	}
	if seeded > 0 {
		slog.InfoContext(ctx, "seeded system default prompts", "count", seeded)
	}
	return nil
}

// afterWrite invalidates the cache entry the write shadows and publishes the
// change event. Both are non-fatal: the write has committed, and the TTL
// bounds any staleness a failed invalidation leaves behind.
func (s *Service) afterWrite(ctx context.Context, t event.Type, cfg domainprompt.Config) {
	// A system-default write shadows the cached resolution of every owner
	// without an override, not just one key, so it clears the whole cache.
	var err error
	if cfg.OwnerID == nil {
		err = s.cache.Clear(ctx)
	} else {
		err = s.cache.Invalidate(ctx, domainprompt.CacheKey(cfg.OwnerID, cfg.PromptKey))
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to invalidate prompt cache",
			"prompt_key", cfg.PromptKey, "error", err)
	}
	e := event.New(t, cfg.ID, cfg.PromptKey, cfg.OwnerID, cfg.Version)
	if err := s.bus.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "failed to publish prompt event",
			"type", string(t), "prompt_key", cfg.PromptKey, "error", err)
	}
}

// advisoryKey hashes (owner, prompt key) into the int64 keyspace of
// pg_advisory_lock so same-config writers serialise across processes.
func advisoryKey(ownerID *uuid.UUID, promptKey string) int64 {
	h := fnv.New64a()
	h.Write([]byte(domainprompt.OwnerCachePrefix(ownerID))) //nolint:errcheck
	h.Write([]byte{0})                                      //nolint:errcheck
	h.Write([]byte(promptKey))                              //nolint:errcheck
	return int64(h.Sum64()) //nolint:gosec
}
