package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type ItemStore struct {
	db *sqlx.DB
}

func (is *ItemStore) ListBySection(ctx context.Context, sectionID int64) ([]Item, error) {
	query := `SELECT id_element, id_section, designation_exacte, unite, quantite, prix_unitaire_ht, prix_total_ht, offre_acceptee
	FROM elements_ouvrage
	WHERE id_section = $1
	ORDER BY id_element`

	items := []Item{}
	if err := is.db.SelectContext(ctx, &items, query, sectionID); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (is *ItemStore) Create(ctx context.Context, item *Item) error {
	query := `INSERT INTO elements_ouvrage (
		id_section,
		designation_exacte,
		unite,
		quantite,
		prix_unitaire_ht,
		prix_total_ht,
		offre_acceptee
	) VALUES (
		:id_section,
		:designation_exacte,
		:unite,
		:quantite,
		:prix_unitaire_ht,
		:prix_total_ht,
		:offre_acceptee
	) RETURNING id_element`

	rows, err := sqlx.NamedQueryContext(ctx, is.db, query, item)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&item.ID); err != nil {
			return fmt.Errorf("failed to scan inserted item: %w", err)
		}
	}
	return rows.Err()
}
