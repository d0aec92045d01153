package dpgf

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/detect"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/hierarchy"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/sheet"
	"github.com/envelopa/dpgf-ingest/internal/logger"
	"github.com/envelopa/dpgf-ingest/internal/store"
)

// ImportResult sums what one file contributed to the store.
type ImportResult struct {
	SourceFile      string
	SheetsRead      int
	LotsCreated     int
	SectionsCreated int
	ItemsCreated    int
	ErrorCount      int
	LowConfidence   bool
}

// Importer runs the sheet → detect → sync pipeline for one downloaded file
// and records the outcome in the import audit trail.
type Importer struct {
	storage    *store.Storage
	detector   *detect.Detector
	sync       *hierarchy.Synchronizer
	appLogger  *logger.Logger
	clientName string
}

// NewImporter wires the pipeline. clientName, when non-empty, overrides the
// client detected in every sheet.
func NewImporter(storage *store.Storage, detector *detect.Detector, sync *hierarchy.Synchronizer, appLogger *logger.Logger, clientName string) *Importer {
	return &Importer{
		storage:    storage,
		detector:   detector,
		sync:       sync,
		appLogger:  appLogger,
		clientName: clientName,
	}
}

// ImportFile ingests one local file. An IN_PROGRESS audit record is opened
// before any work and closed COMPLETED or FAILED whatever happens, so a
// crashed run leaves a stale IN_PROGRESS row the next run can recognize.
func (imp *Importer) ImportFile(ctx context.Context, path string, runID string) (*ImportResult, error) {
	const component = "dpgf.Importer.ImportFile"

	base := filepath.Base(path)
	record := &store.ImportRecord{
		RunID:      runID,
		SourceFile: base,
		Status:     store.ImportStatusInProgress,
	}
	if err := imp.storage.Imports.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to open import record for %s: %w", base, err)
	}

	result, err := imp.importSheets(ctx, path, base)

	record.Status = store.ImportStatusCompleted
	if err != nil {
		record.Status = store.ImportStatusFailed
	} else {
		record.LotsCreated = result.LotsCreated
		record.SectionsCreated = result.SectionsCreated
		record.ItemsCreated = result.ItemsCreated
		record.ErrorCount = result.ErrorCount
	}
	if finishErr := imp.storage.Imports.Finish(ctx, record); finishErr != nil {
		imp.appLogger.Error(component, "failed to close import record: file=%s err=%v", base, finishErr)
	}

	if err != nil {
		return nil, err
	}
	imp.appLogger.Info(component, "file imported: file=%s sheets=%d lots=%d sections=%d items=%d errors=%d",
		base, result.SheetsRead, result.LotsCreated, result.SectionsCreated, result.ItemsCreated, result.ErrorCount)
	return result, nil
}

func (imp *Importer) importSheets(ctx context.Context, path, base string) (*ImportResult, error) {
	const component = "dpgf.Importer.importSheets"

	sheets, err := sheet.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", base, err)
	}

	result := &ImportResult{SourceFile: base}
	for _, s := range sheets {
		detection := imp.detector.Detect(ctx, s, base)
		if len(detection.Events) == 0 {
			imp.appLogger.Debug(component, "sheet without usable rows: file=%s sheet=%s", base, s.Name)
			continue
		}

		input := hierarchy.Input{
			ClientName:  detection.ClientName,
			ProjectName: detection.ProjectName,
			SourceFile:  base,
			Events:      detection.Events,
		}
		if imp.clientName != "" {
			input.ClientName = imp.clientName
		}

		syncResult, err := imp.sync.Sync(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to persist sheet %s of %s: %w", s.Name, base, err)
		}

		result.SheetsRead++
		result.LotsCreated += syncResult.LotsCreated
		result.SectionsCreated += syncResult.SectionsCreated
		result.ItemsCreated += syncResult.ItemsCreated
		result.ErrorCount += syncResult.Errors
		if detection.LowConfidence {
			result.LowConfidence = true
		}
	}

	if result.SheetsRead == 0 {
		return nil, fmt.Errorf("no usable rows in %s", base)
	}
	return result, nil
}
