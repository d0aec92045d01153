package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type ProjectStore struct {
	db *sqlx.DB
}

func (ps *ProjectStore) ListByClient(ctx context.Context, clientID int64) ([]Project, error) {
	query := `SELECT id_dpgf, id_client, nom_projet, date_dpgf, statut_offre, fichier_source, created_at
	FROM dpgfs
	WHERE id_client = $1
	ORDER BY created_at DESC`

	projects := []Project{}
	if err := ps.db.SelectContext(ctx, &projects, query, clientID); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetBySourceFile is the project dedup lookup: the exact source file name
// under a client identifies the project.
func (ps *ProjectStore) GetBySourceFile(ctx context.Context, clientID int64, sourceFile string) (*Project, error) {
	query := `SELECT id_dpgf, id_client, nom_projet, date_dpgf, statut_offre, fichier_source, created_at
	FROM dpgfs
	WHERE id_client = $1 AND fichier_source = $2`

	project := &Project{}
	if err := ps.db.GetContext(ctx, project, query, clientID, sourceFile); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get project by source file: %w", err)
	}
	return project, nil
}

func (ps *ProjectStore) Create(ctx context.Context, project *Project) error {
	if project.OfferStatus == "" {
		project.OfferStatus = OfferStatusPending
	}

	query := `INSERT INTO dpgfs (
		id_client,
		nom_projet,
		date_dpgf,
		statut_offre,
		fichier_source
	) VALUES (
		:id_client,
		:nom_projet,
		:date_dpgf,
		:statut_offre,
		:fichier_source
	) RETURNING id_dpgf, created_at`

	rows, err := sqlx.NamedQueryContext(ctx, ps.db, query, project)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&project.ID, &project.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan inserted project: %w", err)
		}
	}
	return rows.Err()
}
