package store

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned by Get operations when no row matches.
var ErrNotFound = errors.New("record not found")

type Storage struct {
	Clients interface {
		List(ctx context.Context) ([]Client, error)
		GetByName(ctx context.Context, name string) (*Client, error)
		Create(ctx context.Context, client *Client) error
	}

	Projects interface {
		ListByClient(ctx context.Context, clientID int64) ([]Project, error)
		GetBySourceFile(ctx context.Context, clientID int64, sourceFile string) (*Project, error)
		Create(ctx context.Context, project *Project) error
	}

	Lots interface {
		ListByProject(ctx context.Context, projectID int64) ([]Lot, error)
		Get(ctx context.Context, projectID int64, number string) (*Lot, error)
		Create(ctx context.Context, lot *Lot) error
	}

	Sections interface {
		ListByLot(ctx context.Context, lotID int64) ([]Section, error)
		Get(ctx context.Context, lotID int64, number string) (*Section, error)
		Create(ctx context.Context, section *Section) error
	}

	Items interface {
		ListBySection(ctx context.Context, sectionID int64) ([]Item, error)
		Create(ctx context.Context, item *Item) error
	}

	Imports interface {
		Create(ctx context.Context, record *ImportRecord) error
		Finish(ctx context.Context, record *ImportRecord) error
		GetLatest(ctx context.Context, limit int) ([]ImportRecord, error)
		GetBySourceFile(ctx context.Context, sourceFile string) (*ImportRecord, error)
	}
}

func NewStorage(db *sqlx.DB) *Storage {
	return &Storage{
		Clients:  &ClientStore{db: db},
		Projects: &ProjectStore{db: db},
		Lots:     &LotStore{db: db},
		Sections: &SectionStore{db: db},
		Items:    &ItemStore{db: db},
		Imports:  &ImportStore{db: db},
	}
}
