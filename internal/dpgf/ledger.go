package dpgf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/types"
)

// Ledger persists the run's progress snapshot as JSON. The orchestrator is
// the only writer; the API and the monitor read the file as-is. Writes go
// through a temp file and a rename so a reader never sees a half-written
// checkpoint.
type Ledger struct {
	path string
}

func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

func (l *Ledger) Path() string {
	return l.path
}

func (l *Ledger) Save(progress *types.Progress) error {
	data, err := json.MarshalIndent(progress, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write progress checkpoint: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("failed to replace progress checkpoint: %w", err)
	}
	return nil
}

// Load reads the last saved snapshot. Callers distinguish a missing file via
// fs.ErrNotExist.
func (l *Ledger) Load() (*types.Progress, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, err
	}

	progress := &types.Progress{}
	if err := json.Unmarshal(data, progress); err != nil {
		return nil, fmt.Errorf("failed to decode progress file %s: %w", l.path, err)
	}
	return progress, nil
}
