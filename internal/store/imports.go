package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ImportStore keeps the per-file audit trail. Orchestrator re-runs consult
// it to skip files that already completed.
type ImportStore struct {
	db *sqlx.DB
}

func (is *ImportStore) Create(ctx context.Context, record *ImportRecord) error {
	query := `INSERT INTO import_history (
		run_id,
		source_file,
		status,
		lots_created,
		sections_created,
		items_created,
		error_count
	) VALUES (
		:run_id,
		:source_file,
		:status,
		:lots_created,
		:sections_created,
		:items_created,
		:error_count
	) RETURNING id, started_at`

	rows, err := sqlx.NamedQueryContext(ctx, is.db, query, record)
	if err != nil {
		return fmt.Errorf("failed to insert import record: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&record.ID, &record.StartedAt); err != nil {
			return fmt.Errorf("failed to scan inserted import record: %w", err)
		}
	}
	return rows.Err()
}

// Finish closes the record identified by record.ID with its final status and
// counters.
func (is *ImportStore) Finish(ctx context.Context, record *ImportRecord) error {
	query := `UPDATE import_history SET
		status = :status,
		lots_created = :lots_created,
		sections_created = :sections_created,
		items_created = :items_created,
		error_count = :error_count,
		finished_at = NOW()
	WHERE id = :id`

	if _, err := is.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("failed to finish import record: %w", err)
	}
	return nil
}

func (is *ImportStore) GetLatest(ctx context.Context, limit int) ([]ImportRecord, error) {
	query := `SELECT id, run_id, source_file, status, lots_created, sections_created, items_created, error_count, started_at, finished_at
	FROM import_history
	ORDER BY started_at DESC
	LIMIT $1`

	records := []ImportRecord{}
	if err := is.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list import records: %w", err)
	}
	return records, nil
}

// GetBySourceFile returns the most recent import attempt for a file.
func (is *ImportStore) GetBySourceFile(ctx context.Context, sourceFile string) (*ImportRecord, error) {
	query := `SELECT id, run_id, source_file, status, lots_created, sections_created, items_created, error_count, started_at, finished_at
	FROM import_history
	WHERE source_file = $1
	ORDER BY started_at DESC
	LIMIT 1`

	record := &ImportRecord{}
	if err := is.db.GetContext(ctx, record, query, sourceFile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get import record by source file: %w", err)
	}
	return record, nil
}
