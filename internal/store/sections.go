package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type SectionStore struct {
	db *sqlx.DB
}

func (ss *SectionStore) ListByLot(ctx context.Context, lotID int64) ([]Section, error) {
	query := `SELECT id_section, id_lot, section_parent_id, numero_section, titre_section, niveau_hierarchique
	FROM sections
	WHERE id_lot = $1
	ORDER BY id_section`

	sections := []Section{}
	if err := ss.db.SelectContext(ctx, &sections, query, lotID); err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return sections, nil
}

func (ss *SectionStore) Get(ctx context.Context, lotID int64, number string) (*Section, error) {
	query := `SELECT id_section, id_lot, section_parent_id, numero_section, titre_section, niveau_hierarchique
	FROM sections
	WHERE id_lot = $1 AND numero_section = $2`

	section := &Section{}
	if err := ss.db.GetContext(ctx, section, query, lotID, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return section, nil
}

func (ss *SectionStore) Create(ctx context.Context, section *Section) error {
	query := `INSERT INTO sections (
		id_lot,
		section_parent_id,
		numero_section,
		titre_section,
		niveau_hierarchique
	) VALUES (
		:id_lot,
		:section_parent_id,
		:numero_section,
		:titre_section,
		:niveau_hierarchique
	) RETURNING id_section`

	rows, err := sqlx.NamedQueryContext(ctx, ss.db, query, section)
	if err != nil {
		return fmt.Errorf("failed to insert section: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&section.ID); err != nil {
			return fmt.Errorf("failed to scan inserted section: %w", err)
		}
	}
	return rows.Err()
}
