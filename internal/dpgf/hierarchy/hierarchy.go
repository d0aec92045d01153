// Package hierarchy replays structural events into the store, get-or-creating
// each level of the Client → Project → Lot → Section → Item chain. Replays
// are idempotent for everything but items: re-syncing the same file reuses
// lots and sections instead of duplicating them.
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/types"
	"github.com/envelopa/dpgf-ingest/internal/logger"
	"github.com/envelopa/dpgf-ingest/internal/store"
)

// Fallbacks for sheets that name no client or no lot.
const (
	defaultClientName = "Client non identifié"
	defaultLotNumber  = "00"
	defaultLotName    = "Lot non identifié"
)

// Input carries one detected sheet worth of events plus the file-level
// context the detector extracted.
type Input struct {
	ClientName  string
	ProjectName string
	SourceFile  string
	ProjectDate *time.Time
	Events      []types.Event
}

// Result counts what the replay did. Errors counts per-entity store
// failures that were isolated and skipped.
type Result struct {
	ClientID        int64
	ProjectID       int64
	LotsCreated     int
	LotsReused      int
	SectionsCreated int
	SectionsReused  int
	ItemsCreated    int
	Errors          int
}

type Synchronizer struct {
	storage   *store.Storage
	appLogger *logger.Logger
}

func New(storage *store.Storage, appLogger *logger.Logger) *Synchronizer {
	return &Synchronizer{
		storage:   storage,
		appLogger: appLogger,
	}
}

// replayState is the fold accumulator: the current lot, the last section
// seen per depth (for parent resolution), and the section cursor items
// attach to.
type replayState struct {
	lotID     int64
	sections  map[int]int64
	sectionID int64
}

// Sync replays the events in order. Client and project failures abort the
// whole sync; lot, section and item failures are counted, logged and
// skipped so one bad row never loses the rest of the sheet.
func (s *Synchronizer) Sync(ctx context.Context, in Input) (*Result, error) {
	const component = "hierarchy.Sync"

	res := &Result{}

	clientID, err := s.ensureClient(ctx, in.ClientName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve client: %w", err)
	}
	res.ClientID = clientID

	projectID, err := s.ensureProject(ctx, clientID, in)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project: %w", err)
	}
	res.ProjectID = projectID

	state := replayState{sections: map[int]int64{}}

	for _, ev := range in.Events {
		switch ev.Kind {
		case types.EventLot:
			lotID, err := s.ensureLot(ctx, res, projectID, ev.LotNumber, ev.LotName)
			if err != nil {
				s.appLogger.Error(component, "lot skipped: file=%s row=%d number=%s err=%v", in.SourceFile, ev.Row+1, ev.LotNumber, err)
				res.Errors++
				continue
			}
			state = replayState{lotID: lotID, sections: map[int]int64{}}

		case types.EventSection:
			if state.lotID == 0 {
				lotID, err := s.ensureLot(ctx, res, projectID, defaultLotNumber, defaultLotName)
				if err != nil {
					s.appLogger.Error(component, "default lot skipped: file=%s err=%v", in.SourceFile, err)
					res.Errors++
					continue
				}
				state.lotID = lotID
			}
			sectionID, err := s.ensureSection(ctx, res, &state, ev)
			if err != nil {
				s.appLogger.Error(component, "section skipped: file=%s row=%d number=%s err=%v", in.SourceFile, ev.Row+1, ev.SectionNumber, err)
				res.Errors++
				continue
			}
			state.sectionID = sectionID

		case types.EventItem:
			if state.sectionID == 0 {
				s.appLogger.Error(component, "item skipped, no section cursor: file=%s row=%d designation=%q", in.SourceFile, ev.Row+1, ev.Designation)
				res.Errors++
				continue
			}
			item := &store.Item{
				SectionID:   state.sectionID,
				Designation: ev.Designation,
				Unit:        ev.Unit,
				Quantity:    ev.Quantity,
				UnitPrice:   ev.UnitPrice,
				TotalPrice:  ev.TotalPrice,
			}
			if err := s.storage.Items.Create(ctx, item); err != nil {
				s.appLogger.Error(component, "item skipped: file=%s row=%d designation=%q err=%v", in.SourceFile, ev.Row+1, ev.Designation, err)
				res.Errors++
				continue
			}
			res.ItemsCreated++
		}
	}

	s.appLogger.Info(component, "sync complete: file=%s lots=%d/%d sections=%d/%d items=%d errors=%d",
		in.SourceFile, res.LotsCreated, res.LotsReused, res.SectionsCreated, res.SectionsReused, res.ItemsCreated, res.Errors)

	return res, nil
}

func (s *Synchronizer) ensureClient(ctx context.Context, name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		name = defaultClientName
	}

	client, err := s.storage.Clients.GetByName(ctx, name)
	if err == nil {
		return client.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	created := &store.Client{Name: name}
	if err := s.storage.Clients.Create(ctx, created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

// ensureProject dedups by exact source file under the client. The stored
// name gets the file name appended so two projects detected with the same
// title stay distinguishable.
func (s *Synchronizer) ensureProject(ctx context.Context, clientID int64, in Input) (int64, error) {
	project, err := s.storage.Projects.GetBySourceFile(ctx, clientID, in.SourceFile)
	if err == nil {
		return project.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	base := strings.TrimSuffix(filepath.Base(in.SourceFile), filepath.Ext(in.SourceFile))
	name := strings.TrimSpace(in.ProjectName)
	if name == "" {
		name = base
	} else if !strings.Contains(name, base) {
		name = name + " - " + base
	}

	created := &store.Project{
		ClientID:    clientID,
		Name:        name,
		ProjectDate: in.ProjectDate,
		SourceFile:  in.SourceFile,
	}
	if err := s.storage.Projects.Create(ctx, created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (s *Synchronizer) ensureLot(ctx context.Context, res *Result, projectID int64, number, name string) (int64, error) {
	lot, err := s.storage.Lots.Get(ctx, projectID, number)
	if err == nil {
		res.LotsReused++
		return lot.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	if name == "" {
		name = "Lot " + number
	}
	created := &store.Lot{ProjectID: projectID, Number: number, Name: name}
	if err := s.storage.Lots.Create(ctx, created); err != nil {
		return 0, err
	}
	res.LotsCreated++
	return created.ID, nil
}

// ensureSection dedups by (lot, number) and resolves the parent through the
// depth chain: a depth-n section hangs under the most recent depth n-1
// section. Deeper cursor entries are discarded so siblings never parent
// each other.
func (s *Synchronizer) ensureSection(ctx context.Context, res *Result, state *replayState, ev types.Event) (int64, error) {
	defer func() {
		for d := range state.sections {
			if d > ev.Depth {
				delete(state.sections, d)
			}
		}
	}()

	section, err := s.storage.Sections.Get(ctx, state.lotID, ev.SectionNumber)
	if err == nil {
		res.SectionsReused++
		state.sections[ev.Depth] = section.ID
		return section.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}

	var parentID *int64
	if ev.Depth > 1 {
		if pid, ok := state.sections[ev.Depth-1]; ok {
			parentID = &pid
		}
	}

	created := &store.Section{
		LotID:    state.lotID,
		ParentID: parentID,
		Number:   ev.SectionNumber,
		Title:    ev.SectionTitle,
		Depth:    ev.Depth,
	}
	if err := s.storage.Sections.Create(ctx, created); err != nil {
		return 0, err
	}
	res.SectionsCreated++
	state.sections[ev.Depth] = created.ID
	return created.ID, nil
}
