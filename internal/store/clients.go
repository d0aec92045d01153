package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type ClientStore struct {
	db *sqlx.DB
}

func (cs *ClientStore) List(ctx context.Context) ([]Client, error) {
	query := `SELECT id_client, nom_client, created_at FROM clients ORDER BY nom_client`

	clients := []Client{}
	if err := cs.db.SelectContext(ctx, &clients, query); err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// GetByName matches case-insensitively so "EIFFAGE" and "Eiffage" resolve to
// the same client.
func (cs *ClientStore) GetByName(ctx context.Context, name string) (*Client, error) {
	query := `SELECT id_client, nom_client, created_at
	FROM clients
	WHERE LOWER(nom_client) = LOWER($1)`

	client := &Client{}
	if err := cs.db.GetContext(ctx, client, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client by name: %w", err)
	}
	return client, nil
}

func (cs *ClientStore) Create(ctx context.Context, client *Client) error {
	query := `INSERT INTO clients (
		nom_client
	) VALUES (
		:nom_client
	) RETURNING id_client, created_at`

	rows, err := sqlx.NamedQueryContext(ctx, cs.db, query, client)
	if err != nil {
		return fmt.Errorf("failed to insert client: %w", err)
	}
	defer rows.Close()

	if rows.Next() {
		if err := rows.Scan(&client.ID, &client.CreatedAt); err != nil {
			return fmt.Errorf("failed to scan inserted client: %w", err)
		}
	}
	return rows.Err()
}
