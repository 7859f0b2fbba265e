package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainprompt "github.com/outflowhq/prompt-engine/internal/domain/prompt"
)

const snapshotFields = `id, config_id, version, system_instruction, prompt_template,
	temperature, top_p, change_note, created_at`

// Repository implements port/prompt.HistoryRepository using Postgres.
// Read-only: snapshots are appended inside the config repository's update
// transaction and never mutated here.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListByConfig returns all snapshots for the config, newest version first.
// Versions are gap-free per config, so descending version equals descending
// creation time.
func (r *Repository) ListByConfig(ctx context.Context, configID uuid.UUID) ([]domainprompt.Snapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM prompt_versions
		WHERE config_id = $1 ORDER BY version DESC`, snapshotFields)

	rows, err := r.pool.Query(ctx, query, configID)
	if err != nil {
		return nil, fmt.Errorf("listing version snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]domainprompt.Snapshot, 0)
	for rows.Next() {
		var s domainprompt.Snapshot
		if err := rows.Scan(
			&s.ID, &s.ConfigID, &s.Version, &s.SystemInstruction, &s.PromptTemplate,
			&s.Temperature, &s.TopP, &s.ChangeNote, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning version snapshot row: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// GetByVersion returns the snapshot capturing the given superseded version.
func (r *Repository) GetByVersion(ctx context.Context, configID uuid.UUID, version int) (domainprompt.Snapshot, error) {
	query := fmt.Sprintf(`SELECT %s FROM prompt_versions
		WHERE config_id = $1 AND version = $2`, snapshotFields)

	var s domainprompt.Snapshot
	err := r.pool.QueryRow(ctx, query, configID, version).Scan(
		&s.ID, &s.ConfigID, &s.Version, &s.SystemInstruction, &s.PromptTemplate,
		&s.Temperature, &s.TopP, &s.ChangeNote, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainprompt.Snapshot{}, domainprompt.ErrNotFound
		}
		return domainprompt.Snapshot{}, fmt.Errorf("querying version snapshot: %w", err)
	}
	return s, nil
}
