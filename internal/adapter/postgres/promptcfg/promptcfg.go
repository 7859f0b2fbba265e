package promptcfg

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
)

const configFields = `id, owner_id, prompt_key, category, system_instruction, prompt_template,
	temperature, top_p, version, is_active, is_default, created_at, updated_at`

// Repository implements port/prompt.ConfigRepository using Postgres.
// [LSP] Any conforming ConfigRepository (in-memory, sqlite) can substitute.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanConfig(row pgx.Row) (domainprompt.Config, error) {
	var c domainprompt.Config
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.PromptKey, &c.Category, &c.SystemInstruction, &c.PromptTemplate,
		&c.Temperature, &c.TopP, &c.Version, &c.IsActive, &c.IsDefault, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// GetActive returns the active config for (ownerID, promptKey).
// ownerID = nil selects the shared system default row.
func (r *Repository) GetActive(ctx context.Context, ownerID *uuid.UUID, promptKey string) (domainprompt.Config, error) {
	var row pgx.Row
	if ownerID != nil {
		query := fmt.Sprintf(`SELECT %s FROM prompt_configs
			WHERE owner_id = $1 AND prompt_key = $2 AND is_active`, configFields)
		row = r.pool.QueryRow(ctx, query, *ownerID, promptKey)
	} else {
		query := fmt.Sprintf(`SELECT %s FROM prompt_configs
			WHERE owner_id IS NULL AND prompt_key = $1 AND is_default AND is_active`, configFields)
		row = r.pool.QueryRow(ctx, query, promptKey)
	}

	c, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainprompt.Config{}, domainprompt.ErrNotFound
		}
		return domainprompt.Config{}, fmt.Errorf("querying active prompt config: %w", err)
	}
	return c, nil
}

// Insert creates a new config row. The partial unique indexes on
// (owner_id, prompt_key) map concurrent duplicate creates to ErrAlreadyExists.
func (r *Repository) Insert(ctx context.Context, cfg domainprompt.Config) (domainprompt.Config, error) {
	if cfg.ID == uuid.Nil {
		cfg.ID = uuid.New()
	}

	query := `
		INSERT INTO prompt_configs
			(id, owner_id, prompt_key, category, system_instruction, prompt_template,
			 temperature, top_p, version, is_active, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		cfg.ID, cfg.OwnerID, cfg.PromptKey, cfg.Category, cfg.SystemInstruction, cfg.PromptTemplate,
		cfg.Temperature, cfg.TopP, cfg.Version, cfg.IsActive, cfg.IsDefault,
	).Scan(&cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return domainprompt.Config{}, domainprompt.ErrAlreadyExists
		}
		return domainprompt.Config{}, fmt.Errorf("inserting prompt config: %w", err)
	}
	return cfg, nil
}

// SnapshotAndUpdate appends a snapshot of the current row and applies the
// draft, all inside one transaction. The row is locked FOR UPDATE so the
// snapshot always captures exactly the state the conditioned update replaces;
// a version mismatch aborts with ErrVersionConflict before anything is written.
func (r *Repository) SnapshotAndUpdate(ctx context.Context, id uuid.UUID, expectedVersion int, d domainprompt.Draft, changeNote string) (domainprompt.Config, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domainprompt.Config{}, fmt.Errorf("beginning update transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cur, err := scanConfig(tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM prompt_configs WHERE id = $1 FOR UPDATE`, configFields), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainprompt.Config{}, domainprompt.ErrNotFound
		}
		return domainprompt.Config{}, fmt.Errorf("locking prompt config for update: %w", err)
	}
	if cur.Version != expectedVersion {
		return domainprompt.Config{}, domainprompt.ErrVersionConflict
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO prompt_versions
			(id, config_id, version, system_instruction, prompt_template, temperature, top_p, change_note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(), cur.ID, cur.Version, cur.SystemInstruction, cur.PromptTemplate,
		cur.Temperature, cur.TopP, changeNote,
	)
	if err != nil {
		return domainprompt.Config{}, fmt.Errorf("appending version snapshot: %w", err)
	}

	updated, err := scanConfig(tx.QueryRow(ctx, fmt.Sprintf(`
		UPDATE prompt_configs
		SET system_instruction = $1, prompt_template = $2, temperature = $3, top_p = $4,
		    version = version + 1, updated_at = NOW()
		WHERE id = $5 AND version = $6
		RETURNING %s`, configFields),
		d.SystemInstruction, d.PromptTemplate, d.Temperature, d.TopP, id, expectedVersion,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Row locked above, so this only fires if the version moved between
			// transactions that bypassed the lock. Treat as a conflict.
			return domainprompt.Config{}, domainprompt.ErrVersionConflict
		}
		return domainprompt.Config{}, fmt.Errorf("updating prompt config: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domainprompt.Config{}, fmt.Errorf("committing update transaction: %w", err)
	}
	return updated, nil
}

// Delete removes the active row for (ownerID, promptKey). Snapshots are kept —
// history outlives the override on reset.
func (r *Repository) Delete(ctx context.Context, ownerID *uuid.UUID, promptKey string) (uuid.UUID, bool, error) {
	var (
		row pgx.Row
		id  uuid.UUID
	)
	if ownerID != nil {
		row = r.pool.QueryRow(ctx, `DELETE FROM prompt_configs
			WHERE owner_id = $1 AND prompt_key = $2 AND is_active RETURNING id`, *ownerID, promptKey)
	} else {
		row = r.pool.QueryRow(ctx, `DELETE FROM prompt_configs
			WHERE owner_id IS NULL AND prompt_key = $1 AND is_active RETURNING id`, promptKey)
	}

	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("deleting prompt config: %w", err)
	}
	return id, true, nil
}
