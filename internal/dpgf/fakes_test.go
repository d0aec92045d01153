package dpgf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/remote"
	"github.com/envelopa/dpgf-ingest/internal/store"
)

// fakeSource hands out preset files and writes placeholder bytes on
// download. Names in failDownload fail instead.
type fakeSource struct {
	mu           sync.Mutex
	files        []remote.File
	failDownload map[string]bool
	downloaded   []string
}

func (fs *fakeSource) List(ctx context.Context) ([]remote.File, error) {
	return fs.files, nil
}

func (fs *fakeSource) Download(ctx context.Context, f remote.File, destDir string) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.failDownload[f.Name] {
		return "", errors.New("connection reset")
	}
	path := filepath.Join(destDir, filepath.Base(f.Name))
	if err := os.WriteFile(path, []byte("placeholder"), 0o644); err != nil {
		return "", err
	}
	fs.downloaded = append(fs.downloaded, f.Name)
	return path, nil
}

// stubImporter stands in for the real pipeline in orchestrator tests.
type stubImporter struct {
	mu       sync.Mutex
	imported []string
	fail     map[string]bool
	failAll  bool
	onImport func(name string)
}

func (si *stubImporter) ImportFile(ctx context.Context, path string, runID string) (*ImportResult, error) {
	base := filepath.Base(path)

	si.mu.Lock()
	si.imported = append(si.imported, base)
	si.mu.Unlock()

	if si.onImport != nil {
		si.onImport(base)
	}
	if si.failAll || si.fail[base] {
		return nil, errors.New("import blew up")
	}
	return &ImportResult{SourceFile: base, SheetsRead: 1, ItemsCreated: 3}, nil
}

// memData backs the in-memory Storage used by importer and orchestrator
// tests, with the same lookup semantics as the Postgres stores.
type memData struct {
	mu     sync.Mutex
	nextID int64

	clients  []store.Client
	projects []store.Project
	lots     []store.Lot
	sections []store.Section
	items    []store.Item
	imports  []store.ImportRecord
}

func (d *memData) id() int64 {
	d.nextID++
	return d.nextID
}

func newMemStorage() (*store.Storage, *memData) {
	data := &memData{}
	storage := &store.Storage{
		Clients:  &memClients{data},
		Projects: &memProjects{data},
		Lots:     &memLots{data},
		Sections: &memSections{data},
		Items:    &memItems{data},
		Imports:  &memImports{data},
	}
	return storage, data
}

func (d *memData) seedImport(sourceFile, status string, startedAt time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.imports = append(d.imports, store.ImportRecord{
		ID:         d.id(),
		RunID:      "previous-run",
		SourceFile: sourceFile,
		Status:     status,
		StartedAt:  startedAt,
	})
}

type memClients struct{ d *memData }

func (m *memClients) List(ctx context.Context) ([]store.Client, error) {
	return m.d.clients, nil
}

func (m *memClients) GetByName(ctx context.Context, name string) (*store.Client, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for i := range m.d.clients {
		if strings.EqualFold(m.d.clients[i].Name, name) {
			return &m.d.clients[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memClients) Create(ctx context.Context, client *store.Client) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	client.ID = m.d.id()
	client.CreatedAt = time.Now()
	m.d.clients = append(m.d.clients, *client)
	return nil
}

type memProjects struct{ d *memData }

func (m *memProjects) ListByClient(ctx context.Context, clientID int64) ([]store.Project, error) {
	var out []store.Project
	for _, p := range m.d.projects {
		if p.ClientID == clientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjects) GetBySourceFile(ctx context.Context, clientID int64, sourceFile string) (*store.Project, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for i := range m.d.projects {
		if m.d.projects[i].ClientID == clientID && m.d.projects[i].SourceFile == sourceFile {
			return &m.d.projects[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memProjects) Create(ctx context.Context, project *store.Project) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	if project.OfferStatus == "" {
		project.OfferStatus = store.OfferStatusPending
	}
	project.ID = m.d.id()
	project.CreatedAt = time.Now()
	m.d.projects = append(m.d.projects, *project)
	return nil
}

type memLots struct{ d *memData }

func (m *memLots) ListByProject(ctx context.Context, projectID int64) ([]store.Lot, error) {
	var out []store.Lot
	for _, l := range m.d.lots {
		if l.ProjectID == projectID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLots) Get(ctx context.Context, projectID int64, number string) (*store.Lot, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for i := range m.d.lots {
		if m.d.lots[i].ProjectID == projectID && m.d.lots[i].Number == number {
			return &m.d.lots[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memLots) Create(ctx context.Context, lot *store.Lot) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	lot.ID = m.d.id()
	m.d.lots = append(m.d.lots, *lot)
	return nil
}

type memSections struct{ d *memData }

func (m *memSections) ListByLot(ctx context.Context, lotID int64) ([]store.Section, error) {
	var out []store.Section
	for _, s := range m.d.sections {
		if s.LotID == lotID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSections) Get(ctx context.Context, lotID int64, number string) (*store.Section, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for i := range m.d.sections {
		if m.d.sections[i].LotID == lotID && m.d.sections[i].Number == number {
			return &m.d.sections[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memSections) Create(ctx context.Context, section *store.Section) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	section.ID = m.d.id()
	m.d.sections = append(m.d.sections, *section)
	return nil
}

type memItems struct{ d *memData }

func (m *memItems) ListBySection(ctx context.Context, sectionID int64) ([]store.Item, error) {
	var out []store.Item
	for _, it := range m.d.items {
		if it.SectionID == sectionID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *memItems) Create(ctx context.Context, item *store.Item) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	item.ID = m.d.id()
	m.d.items = append(m.d.items, *item)
	return nil
}

type memImports struct{ d *memData }

func (m *memImports) Create(ctx context.Context, record *store.ImportRecord) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	record.ID = m.d.id()
	if record.StartedAt.IsZero() {
		record.StartedAt = time.Now()
	}
	m.d.imports = append(m.d.imports, *record)
	return nil
}

func (m *memImports) Finish(ctx context.Context, record *store.ImportRecord) error {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for i := range m.d.imports {
		if m.d.imports[i].ID == record.ID {
			now := time.Now()
			m.d.imports[i].Status = record.Status
			m.d.imports[i].LotsCreated = record.LotsCreated
			m.d.imports[i].SectionsCreated = record.SectionsCreated
			m.d.imports[i].ItemsCreated = record.ItemsCreated
			m.d.imports[i].ErrorCount = record.ErrorCount
			m.d.imports[i].FinishedAt = &now
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memImports) GetLatest(ctx context.Context, limit int) ([]store.ImportRecord, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	out := make([]store.ImportRecord, 0, limit)
	for i := len(m.d.imports) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.d.imports[i])
	}
	return out, nil
}

func (m *memImports) GetBySourceFile(ctx context.Context, sourceFile string) (*store.ImportRecord, error) {
	m.d.mu.Lock()
	defer m.d.mu.Unlock()
	for i := len(m.d.imports) - 1; i >= 0; i-- {
		if m.d.imports[i].SourceFile == sourceFile {
			record := m.d.imports[i]
			return &record, nil
		}
	}
	return nil, store.ErrNotFound
}
