package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type LotStore struct {
	db *sqlx.DB
}

func (ls *LotStore) ListByProject(ctx context.Context, projectID int64) ([]Lot, error) {
	query := `SELECT id_lot, id_dpgf, numero_lot, nom_lot
	FROM lots
	WHERE id_dpgf = $1
	ORDER BY numero_lot`

	lots := []Lot{}
	if err := ls.db.SelectContext(ctx, &lots, query, projectID); err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	return lots, nil
}

func (ls *LotStore) Get(ctx context.Context, projectID int64, number string) (*Lot, error) {
	query := `SELECT id_lot, id_dpgf, numero_lot, nom_lot
	FROM lots
	WHERE id_dpgf = $1 AND numero_lot = $2`

	lot := &Lot{}
	if err := ls.db.GetContext(ctx, lot, query, projectID, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get lot: %w", err)
	}
	return lot, nil
}

func (ls *LotStore) Create(ctx context.Context, lot *Lot) error {
	query := `INSERT INTO lots (
		id_dpgf,
		numero_lot,
		nom_lot
	) VALUES (
		:id_dpgf,
		:numero_lot,
		:nom_lot
	) RETURNING id_lot`

	rows, err := sqlx.NamedQueryContext(ctx, ls.db, query, lot)
	if err != nil {
		return fmt.Errorf("failed to insert lot: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&lot.ID); err != nil {
			return fmt.Errorf("failed to scan inserted lot: %w", err)
		}
	}
	return rows.Err()
}
