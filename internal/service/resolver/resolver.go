package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
	"github.com/outflowhq/prompt-engine/internal/domain/registry"
	portcache "github.com/outflowhq/prompt-engine/internal/port/cache"
	portprompt "github.com/outflowhq/prompt-engine/internal/port/prompt"
)

// Fallback carries caller-supplied prompt text used only when the key has no
// registry entry — the escape hatch for experimental prompts shipped in
// application code before they reach the catalog.
type Fallback struct {
	SystemInstruction string
	PromptTemplate    string
	Temperature       *float64
	TopP              *float64
}

// Defaults applied when an inline fallback omits generation parameters.
const (
	fallbackTemperature = 0.7
	fallbackTopP        = 0.9
)

// Service resolves a prompt key to the configuration a generation call should
// use: cache → per-owner override → system default → registry defaults →
// inline fallback. Store failures never propagate to generation callers; the
// resolver degrades to the registry tier and caches that, so an outage costs
// at most one failed store round-trip per TTL window per key.
//
// [SRP] Resolution and caching only — all writes go through the editor service.
// [DIP] Depends on ConfigRepository and ResolutionCache ports.
type Service struct {
	repo  portprompt.ConfigRepository
	cache portcache.ResolutionCache
}

func NewService(repo portprompt.ConfigRepository, cache portcache.ResolutionCache) *Service {
	return &Service{repo: repo, cache: cache}
}

// Resolve returns the effective prompt configuration for (promptKey, ownerID).
// ownerID = nil resolves straight to the system default tier. It fails only
// when the key is unknown to the registry and no inline fallback is given.
func (s *Service) Resolve(ctx context.Context, promptKey string, ownerID *uuid.UUID, fb *Fallback) (domainprompt.Resolved, error) {
	cacheKey := domainprompt.CacheKey(ownerID, promptKey)
	if r, err := s.cache.Get(ctx, cacheKey); err == nil {
		return r, nil
	}

	r, err := s.resolveFromStore(ctx, promptKey, ownerID, fb)
	if err != nil {
		return domainprompt.Resolved{}, err
	}

	if err := s.cache.Set(ctx, cacheKey, r); err != nil {
		slog.WarnContext(ctx, "failed to cache resolved prompt", "prompt_key", promptKey, "error", err)
	}
	return r, nil
}

// Invalidate exposes cache invalidation to callers outside the editor (e.g.
// an admin endpoint flushing after a manual DB fix). Both arguments nil clears
// everything; ownerID alone clears one owner; both clear one exact entry.
func (s *Service) Invalidate(ctx context.Context, ownerID *uuid.UUID, promptKey string) error {
	switch {
	case promptKey != "":
		return s.cache.Invalidate(ctx, domainprompt.CacheKey(ownerID, promptKey))
	case ownerID != nil:
		return s.cache.InvalidateOwner(ctx, domainprompt.OwnerCachePrefix(ownerID))
	default:
		return s.cache.Clear(ctx)
	}
}

func (s *Service) resolveFromStore(ctx context.Context, promptKey string, ownerID *uuid.UUID, fb *Fallback) (domainprompt.Resolved, error) {
	degraded := false

	// Tier: per-owner override.
	if ownerID != nil {
		cfg, err := s.repo.GetActive(ctx, ownerID, promptKey)
		switch {
		case err == nil:
			return resolvedFromConfig(cfg, ownerID, domainprompt.SourceOverride), nil
		case errors.Is(err, domainprompt.ErrNotFound):
			// fall through to the default tier
		default:
			slog.WarnContext(ctx, "prompt store unavailable, degrading to registry defaults",
				"prompt_key", promptKey, "error", err)
			degraded = true
		}
	}

	// Tier: system default.
	if !degraded {
		cfg, err := s.repo.GetActive(ctx, nil, promptKey)
		switch {
		case err == nil:
			return resolvedFromConfig(cfg, ownerID, domainprompt.SourceDefault), nil
		case errors.Is(err, domainprompt.ErrNotFound):
			// fall through to the registry tier
		default:
			slog.WarnContext(ctx, "prompt store unavailable, degrading to registry defaults",
				"prompt_key", promptKey, "error", err)
		}
	}

	// Tier: compiled-in registry defaults.
	if entry, ok := registry.Lookup(promptKey); ok {
		return domainprompt.Resolved{
			PromptKey:         promptKey,
			OwnerID:           ownerID,
			SystemInstruction: entry.DefaultSystemInstruction,
			PromptTemplate:    entry.DefaultPromptTemplate,
			Temperature:       entry.DefaultTemperature,
			TopP:              entry.DefaultTopP,
			Version:           0,
			Source:            domainprompt.SourceRegistry,
		}, nil
	}

	// Tier: caller-supplied inline fallback.
	if fb != nil {
		r := domainprompt.Resolved{
			PromptKey:         promptKey,
			OwnerID:           ownerID,
			SystemInstruction: fb.SystemInstruction,
			PromptTemplate:    fb.PromptTemplate,
			Temperature:       fallbackTemperature,
			TopP:              fallbackTopP,
			Version:           0,
			Source:            domainprompt.SourceInline,
		}
		if fb.Temperature != nil {
			r.Temperature = *fb.Temperature
		}
		if fb.TopP != nil {
			r.TopP = *fb.TopP
		}
		return r, nil
	}

	return domainprompt.Resolved{}, fmt.Errorf("resolve %s: %w", promptKey, domainprompt.ErrUnknownKey)
}

func resolvedFromConfig(cfg domainprompt.Config, ownerID *uuid.UUID, src domainprompt.Source) domainprompt.Resolved {
	return domainprompt.Resolved{
		PromptKey:         cfg.PromptKey,
		OwnerID:           ownerID,
		SystemInstruction: cfg.SystemInstruction,
		PromptTemplate:    cfg.PromptTemplate,
		Temperature:       cfg.Temperature,
		TopP:              cfg.TopP,
		Version:           cfg.Version,
		Source:            src,
	}
}
