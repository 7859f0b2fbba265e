package prompt

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no active config matches a lookup.
	ErrNotFound = errors.New("prompt config not found")
	// ErrAlreadyExists is returned when an insert collides with an existing
	// active config for the same (owner, prompt key).
	ErrAlreadyExists = errors.New("active prompt config already exists")
	// ErrVersionConflict is returned when a version-conditioned write finds a
	// different version than the caller last read. Re-read and retry.
	ErrVersionConflict = errors.New("prompt config changed elsewhere")
	// ErrUnknownKey is returned when a prompt key has no registry entry.
	ErrUnknownKey = errors.New("unknown prompt key")
)

// Source identifies which resolution tier produced a Resolved prompt.
type Source string

const (
	// SourceOverride means a per-owner override row was used.
	SourceOverride Source = "override"
	// SourceDefault means the shared system default row was used.
	SourceDefault Source = "default"
	// SourceRegistry means the compiled-in registry defaults were used —
	// nothing persisted exists (yet) for the key.
	SourceRegistry Source = "registry"
	// SourceInline means caller-supplied fallback text was used because the
	// key is not in the registry either.
	SourceInline Source = "inline"
)

// Config is an active prompt configuration row.
// OwnerID = nil means the system default shared by all users.
type Config struct {
	ID                uuid.UUID  `json:"id"`
	OwnerID           *uuid.UUID `json:"owner_id,omitempty"`
	PromptKey         string     `json:"prompt_key"`
	Category          string     `json:"category"`
	SystemInstruction string     `json:"system_instruction"`
	PromptTemplate    string     `json:"prompt_template"`
	Temperature       float64    `json:"temperature"`
	TopP              float64    `json:"top_p"`
	Version           int        `json:"version"`
	IsActive          bool       `json:"is_active"`
	IsDefault         bool       `json:"is_default"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Synthetic reports whether this config was synthesised from the registry
// rather than read from the store. Synthetic configs must never be persisted.
func (c Config) Synthetic() bool { return c.Version == 0 }

// Snapshot is one append-only version-history record. Version holds the
// config version the snapshotted field values belonged to — the version being
// superseded by the write that created the snapshot.
type Snapshot struct {
	ID                uuid.UUID `json:"id"`
	ConfigID          uuid.UUID `json:"config_id"`
	Version           int       `json:"version"`
	SystemInstruction string    `json:"system_instruction"`
	PromptTemplate    string    `json:"prompt_template"`
	Temperature       float64   `json:"temperature"`
	TopP              float64   `json:"top_p"`
	ChangeNote        string    `json:"change_note"`
	CreatedAt         time.Time `json:"created_at"`
}

// Resolved is the outcome of prompt resolution: the exact text and generation
// parameters a generation call should use.
type Resolved struct {
	PromptKey         string     `json:"prompt_key"`
	OwnerID           *uuid.UUID `json:"owner_id,omitempty"`
	SystemInstruction string     `json:"system_instruction"`
	PromptTemplate    string     `json:"prompt_template"`
	Temperature       float64    `json:"temperature"`
	TopP              float64    `json:"top_p"`
	Version           int        `json:"version"`
	Source            Source     `json:"source"`
}

// IsCustom reports whether a per-owner override won resolution.
func (r Resolved) IsCustom() bool { return r.Source == SourceOverride }

// Draft carries the editable fields of a config for create/update/restore.
type Draft struct {
	SystemInstruction string  `json:"system_instruction"`
	PromptTemplate    string  `json:"prompt_template"`
	Temperature       float64 `json:"temperature"`
	TopP              float64 `json:"top_p"`
}

// ValidationError rejects a draft before any write reaches the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks required fields and parameter ranges.
func (d Draft) Validate() error {
	if d.SystemInstruction == "" {
		return &ValidationError{Field: "system_instruction", Reason: "must not be empty"}
	}
	if d.PromptTemplate == "" {
		return &ValidationError{Field: "prompt_template", Reason: "must not be empty"}
	}
	if d.Temperature < 0 || d.Temperature > 1 {
		return &ValidationError{Field: "temperature", Reason: "must be within [0, 1]"}
	}
	if d.TopP < 0 || d.TopP > 1 {
		return &ValidationError{Field: "top_p", Reason: "must be within [0, 1]"}
	}
	return nil
}

// systemOwner is the cache-key segment used when no owner is given.
const systemOwner = "system"

// CacheKey builds the resolution cache key for an (owner, prompt key) pair.
func CacheKey(ownerID *uuid.UUID, promptKey string) string {
	return OwnerCachePrefix(ownerID) + "_" + promptKey
}

// OwnerCachePrefix is the cache-key prefix covering every key of one owner.
func OwnerCachePrefix(ownerID *uuid.UUID) string {
	if ownerID == nil {
		return systemOwner
	}
	return ownerID.String()
}
