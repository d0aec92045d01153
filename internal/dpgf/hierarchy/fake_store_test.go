package hierarchy

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/envelopa/dpgf-ingest/internal/store"
)

// fakeData backs an in-memory Storage with the same lookup semantics as the
// Postgres stores. failItemDesignation makes Items.Create fail for one
// designation, to exercise error isolation.
type fakeData struct {
	nextID int64

	clients  []store.Client
	projects []store.Project
	lots     []store.Lot
	sections []store.Section
	items    []store.Item

	failItemDesignation string
}

func (d *fakeData) id() int64 {
	d.nextID++
	return d.nextID
}

func newFakeStorage() (*store.Storage, *fakeData) {
	data := &fakeData{}
	storage := &store.Storage{
		Clients:  &fakeClients{data},
		Projects: &fakeProjects{data},
		Lots:     &fakeLots{data},
		Sections: &fakeSections{data},
		Items:    &fakeItems{data},
	}
	return storage, data
}

type fakeClients struct{ d *fakeData }

func (f *fakeClients) List(ctx context.Context) ([]store.Client, error) {
	return f.d.clients, nil
}

func (f *fakeClients) GetByName(ctx context.Context, name string) (*store.Client, error) {
	for i := range f.d.clients {
		if strings.EqualFold(f.d.clients[i].Name, name) {
			return &f.d.clients[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeClients) Create(ctx context.Context, client *store.Client) error {
	client.ID = f.d.id()
	client.CreatedAt = time.Now()
	f.d.clients = append(f.d.clients, *client)
	return nil
}

type fakeProjects struct{ d *fakeData }

func (f *fakeProjects) ListByClient(ctx context.Context, clientID int64) ([]store.Project, error) {
	var out []store.Project
	for _, p := range f.d.projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjects) GetBySourceFile(ctx context.Context, clientID int64, sourceFile string) (*store.Project, error) {
	for i := range f.d.projects {
		if f.d.projects[i].ClientID == clientID && f.d.projects[i].SourceFile == sourceFile {
			return &f.d.projects[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeProjects) Create(ctx context.Context, project *store.Project) error {
	if project.OfferStatus == "" {
		project.OfferStatus = store.OfferStatusPending
	}
	project.ID = f.d.id()
	project.CreatedAt = time.Now()
	f.d.projects = append(f.d.projects, *project)
	return nil
}

type fakeLots struct{ d *fakeData }

func (f *fakeLots) ListByProject(ctx context.Context, projectID int64) ([]store.Lot, error) {
	var out []store.Lot
	for _, l := range f.d.lots {
		if l.ProjectID == projectID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLots) Get(ctx context.Context, projectID int64, number string) (*store.Lot, error) {
	for i := range f.d.lots {
		if f.d.lots[i].ProjectID == projectID && f.d.lots[i].Number == number {
			return &f.d.lots[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeLots) Create(ctx context.Context, lot *store.Lot) error {
	lot.ID = f.d.id()
	f.d.lots = append(f.d.lots, *lot)
	return nil
}

type fakeSections struct{ d *fakeData }

func (f *fakeSections) ListByLot(ctx context.Context, lotID int64) ([]store.Section, error) {
	var out []store.Section
	for _, s := range f.d.sections {
		if s.LotID == lotID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSections) Get(ctx context.Context, lotID int64, number string) (*store.Section, error) {
	for i := range f.d.sections {
		if f.d.sections[i].LotID == lotID && f.d.sections[i].Number == number {
			return &f.d.sections[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeSections) Create(ctx context.Context, section *store.Section) error {
	section.ID = f.d.id()
	f.d.sections = append(f.d.sections, *section)
	return nil
}

type fakeItems struct{ d *fakeData }

func (f *fakeItems) ListBySection(ctx context.Context, sectionID int64) ([]store.Item, error) {
	var out []store.Item
	for _, it := range f.d.items {
		if it.SectionID == sectionID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItems) Create(ctx context.Context, item *store.Item) error {
	if f.d.failItemDesignation != "" && item.Designation == f.d.failItemDesignation {
		return errors.New("forced insert failure")
	}
	item.ID = f.d.id()
	f.d.items = append(f.d.items, *item)
	return nil
}
