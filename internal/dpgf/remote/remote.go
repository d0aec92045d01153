// Package remote lists and fetches the candidate bid files an ingestion run
// works through. Sources only move bytes; deciding what a file contains is
// the detector's job.
package remote

import "context"

// File is one candidate advertised by a source. Confidence estimates how
// likely the file is a DPGF sheet; sources that cannot score content fall
// back to ScoreFilename.
type File struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	SizeMB     float64 `json:"sizeMB"`
	Confidence float64 `json:"confidence"`
}

// Source abstracts where candidate files come from.
type Source interface {
	List(ctx context.Context) ([]File, error)
	Download(ctx context.Context, f File, destDir string) (string, error)
}
