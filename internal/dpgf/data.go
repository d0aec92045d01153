// Package dpgf drives ingestion runs end to end: discover candidate files on
// a source, download them in bounded batches, replay every sheet into the
// store and checkpoint progress after each batch.
package dpgf

import "time"

// Config bounds a run. Zero values fall back to the defaults applied by
// NewOrchestrator.
type Config struct {
	// WorkDir holds the per-batch download directories and the progress
	// ledger.
	WorkDir string

	// MaxBatchFiles and MaxBatchMB cap one batch; both bounds apply.
	MaxBatchFiles int
	MaxBatchMB    float64

	// MinConfidence drops listed files scored below it.
	MinConfidence float64

	// MaxFiles truncates the run after sorting by confidence. Zero means no
	// limit.
	MaxFiles int

	// ImportWorkers bounds parallel imports within a batch. Zero or one
	// keeps imports sequential.
	ImportWorkers int

	// PauseBetween inserts a delay between batches.
	PauseBetween time.Duration

	// Force reimports files the audit trail already marks COMPLETED.
	Force bool
}
