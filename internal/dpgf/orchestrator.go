package dpgf

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/remote"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/types"
	"github.com/envelopa/dpgf-ingest/internal/logger"
	"github.com/envelopa/dpgf-ingest/internal/store"
)

// FileImporter runs the full pipeline for one downloaded file. *Importer
// satisfies it; tests substitute their own.
type FileImporter interface {
	ImportFile(ctx context.Context, path string, runID string) (*ImportResult, error)
}

// Orchestrator walks an ingestion run through Discover, then one
// Download/Import/Cleanup cycle per batch, then Finalize. At most one
// batch's worth of files ever sits on local disk.
type Orchestrator struct {
	source    remote.Source
	importer  FileImporter
	storage   *store.Storage
	appLogger *logger.Logger
	config    Config

	// Settings
	staleTimeout time.Duration

	guard  *ResourceGuard
	ledger *Ledger
}

func NewOrchestrator(source remote.Source, importer FileImporter, storage *store.Storage, appLogger *logger.Logger, config Config) *Orchestrator {
	if config.WorkDir == "" {
		config.WorkDir = filepath.Join("tmp", "batches")
	}
	if config.MaxBatchFiles <= 0 {
		config.MaxBatchFiles = 10
	}
	if config.MaxBatchMB <= 0 {
		config.MaxBatchMB = 50
	}

	return &Orchestrator{
		source:       source,
		importer:     importer,
		storage:      storage,
		appLogger:    appLogger,
		config:       config,
		staleTimeout: 30 * time.Minute,
		guard:        NewResourceGuard(config.WorkDir, appLogger),
		ledger:       NewLedger(filepath.Join(config.WorkDir, "progress.json")),
	}
}

// Ledger exposes the run's checkpoint file, for readers like the API.
func (o *Orchestrator) Ledger() *Ledger {
	return o.ledger
}

// Run executes the whole ingestion run. It returns the final progress
// snapshot together with the first run-level failure: a discovery error, a
// batch that failed for every file, or the context cancellation observed at
// a batch boundary. Per-file failures never surface here; they are counted
// in the snapshot.
func (o *Orchestrator) Run(ctx context.Context) (*types.Progress, error) {
	const component = "dpgf.Orchestrator.Run"

	started := time.Now()

	if err := os.MkdirAll(o.config.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}
	o.reportPrevious()

	files, err := o.discover(ctx)
	if err != nil {
		return nil, err
	}

	progress := &types.Progress{
		RunID:      uuid.New().String(),
		TotalFiles: len(files),
	}
	if len(files) == 0 {
		o.appLogger.Info(component, "nothing to ingest: runId=%s", progress.RunID)
		if err := o.ledger.Save(progress); err != nil {
			o.appLogger.Error(component, "failed to checkpoint progress: err=%v", err)
		}
		return progress, nil
	}

	batches := PlanBatches(files, o.config.MaxBatchFiles, o.config.MaxBatchMB)
	progress.TotalBatches = len(batches)
	o.appLogger.Info(component, "run planned: runId=%s files=%d batches=%d workers=%d",
		progress.RunID, len(files), len(batches), o.config.ImportWorkers)

	var batchDurations []time.Duration

	for i, batch := range batches {
		o.guard.Check(ctx)

		batchStart := time.Now()
		stats := o.runBatch(ctx, i+1, batch, progress.RunID)
		batchDurations = append(batchDurations, time.Since(batchStart))

		progress.CurrentBatch = i + 1
		progress.FilesProcessed += stats.TotalFiles
		progress.FilesImported += stats.Imported
		progress.FilesFailed += stats.Failed
		progress.TotalDownloadMB += stats.DownloadSizeMB
		progress.TotalDurationSec = time.Since(started).Seconds()
		progress.EstimatedRemainingSec = estimateRemaining(batchDurations, len(batches)-(i+1)).Seconds()
		progress.LastBatchStats = stats

		if err := o.ledger.Save(progress); err != nil {
			o.appLogger.Error(component, "failed to checkpoint progress: batch=%d err=%v", i+1, err)
		}

		if err := ctx.Err(); err != nil {
			o.appLogger.Warn(component, "run cancelled: batch=%d of %d", i+1, len(batches))
			return progress, err
		}

		if stats.TotalFiles > 0 && stats.Failed == stats.TotalFiles {
			o.appLogger.Error(component, "batch failed for every file, aborting run: batch=%d files=%d", i+1, stats.TotalFiles)
			return progress, fmt.Errorf("batch %d failed for all %d files", i+1, stats.TotalFiles)
		}
		if stats.Failed > 0 {
			o.appLogger.Error(component, "batch finished with failures: batch=%d imported=%d failed=%d", i+1, stats.Imported, stats.Failed)
		}

		if o.config.PauseBetween > 0 && i+1 < len(batches) {
			select {
			case <-time.After(o.config.PauseBetween):
			case <-ctx.Done():
			}
		}
	}

	progress.TotalDurationSec = time.Since(started).Seconds()
	o.appLogger.Info(component, "run complete: runId=%s imported=%d failed=%d downloadedMB=%.2f durationSec=%.1f",
		progress.RunID, progress.FilesImported, progress.FilesFailed, progress.TotalDownloadMB, progress.TotalDurationSec)
	return progress, nil
}

func (o *Orchestrator) reportPrevious() {
	const component = "dpgf.Orchestrator.Run"

	previous, err := o.ledger.Load()
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			o.appLogger.Warn(component, "previous checkpoint unreadable: err=%v", err)
		}
		return
	}
	o.appLogger.Info(component, "previous run found: runId=%s batches=%d/%d imported=%d failed=%d",
		previous.RunID, previous.CurrentBatch, previous.TotalBatches, previous.FilesImported, previous.FilesFailed)
}

// discover lists the source, drops files under the confidence floor and
// files the audit trail says are done, then orders the rest by confidence.
func (o *Orchestrator) discover(ctx context.Context) ([]remote.File, error) {
	const component = "dpgf.Orchestrator.discover"

	listed, err := o.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}

	var files []remote.File
	skippedLow, skippedDone := 0, 0
	for _, f := range listed {
		if f.Confidence < o.config.MinConfidence {
			skippedLow++
			continue
		}
		process, err := o.shouldProcess(ctx, f)
		if err != nil {
			o.appLogger.Warn(component, "audit lookup failed, processing anyway: file=%s err=%v", f.Name, err)
			process = true
		}
		if !process {
			skippedDone++
			continue
		}
		files = append(files, f)
	}

	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Confidence > files[j].Confidence
	})
	if o.config.MaxFiles > 0 && len(files) > o.config.MaxFiles {
		files = files[:o.config.MaxFiles]
	}

	o.appLogger.Info(component, "discovery complete: listed=%d selected=%d lowConfidence=%d alreadyImported=%d",
		len(listed), len(files), skippedLow, skippedDone)
	return files, nil
}

// shouldProcess consults the import audit trail. COMPLETED files are skipped
// unless Force is set; an IN_PROGRESS record older than the stale timeout is
// presumed crashed and retried; FAILED files are always retried.
func (o *Orchestrator) shouldProcess(ctx context.Context, f remote.File) (bool, error) {
	if o.config.Force {
		return true, nil
	}

	record, err := o.storage.Imports.GetBySourceFile(ctx, filepath.Base(f.Name))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return true, nil
		}
		return true, err
	}

	switch record.Status {
	case store.ImportStatusCompleted:
		return false, nil
	case store.ImportStatusInProgress:
		return time.Since(record.StartedAt) > o.staleTimeout, nil
	default:
		return true, nil
	}
}

// runBatch downloads, imports and cleans up one batch. Per-file failures are
// captured in the returned stats; cleanup runs no matter how the batch went.
func (o *Orchestrator) runBatch(ctx context.Context, num int, batch []remote.File, runID string) *types.BatchStats {
	const component = "dpgf.Orchestrator.runBatch"

	stats := &types.BatchStats{
		BatchNum:   num,
		TotalFiles: len(batch),
		Errors:     []string{},
		Warnings:   []string{},
	}

	dir := o.batchDir(num)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		stats.Failed = len(batch)
		stats.Errors = append(stats.Errors, fmt.Sprintf("batch directory: %v", err))
		return stats
	}
	defer func() {
		cleanupStart := time.Now()
		freed, err := cleanupBatch(dir)
		if err != nil {
			o.appLogger.Warn(component, "cleanup incomplete: batch=%d err=%v", num, err)
			stats.Warnings = append(stats.Warnings, fmt.Sprintf("cleanup: %v", err))
		}
		stats.CleanupDurationSec = time.Since(cleanupStart).Seconds()
		o.appLogger.Debug(component, "batch cleaned: batch=%d freedMB=%.2f", num, float64(freed)/(1024*1024))
	}()

	o.appLogger.Info(component, "batch started: batch=%d files=%d", num, len(batch))

	type localFile struct {
		file remote.File
		path string
	}

	downloadStart := time.Now()
	var downloaded []localFile
	for _, f := range batch {
		path, err := o.source.Download(ctx, f, dir)
		if err != nil {
			o.appLogger.Error(component, "download failed: file=%s err=%v", f.Name, err)
			stats.Failed++
			stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", f.Name, err))
			continue
		}
		downloaded = append(downloaded, localFile{file: f, path: path})
		stats.Downloaded++
		stats.DownloadSizeMB += f.SizeMB
	}
	stats.DownloadDurationSec = time.Since(downloadStart).Seconds()

	importStart := time.Now()
	workers := o.config.ImportWorkers
	if workers < 1 {
		workers = 1
	}
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, workers)
	)
	for _, lf := range downloaded {
		wg.Add(1)
		sem <- struct{}{}
		go func(f remote.File, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := o.importer.ImportFile(ctx, path, runID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.appLogger.Error(component, "import failed: file=%s err=%v", f.Name, err)
				stats.Failed++
				stats.Errors = append(stats.Errors, fmt.Sprintf("%s: %v", f.Name, err))
				return
			}
			stats.Imported++
			if result.ErrorCount > 0 {
				stats.Warnings = append(stats.Warnings, fmt.Sprintf("%s: %d rows rejected", f.Name, result.ErrorCount))
			}
			if result.LowConfidence {
				stats.Warnings = append(stats.Warnings, fmt.Sprintf("%s: low confidence detection", f.Name))
			}
		}(lf.file, lf.path)
	}
	wg.Wait()
	stats.ImportDurationSec = time.Since(importStart).Seconds()

	return stats
}

// estimateRemaining projects the time left from the average duration of the
// batches finished so far.
func estimateRemaining(done []time.Duration, remaining int) time.Duration {
	if len(done) == 0 || remaining <= 0 {
		return 0
	}
	var total time.Duration
	for _, d := range done {
		total += d
	}
	return time.Duration(remaining) * (total / time.Duration(len(done)))
}
