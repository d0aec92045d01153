package dpgf

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

func (o *Orchestrator) batchDir(num int) string {
	return filepath.Join(o.config.WorkDir, fmt.Sprintf("batch_%03d", num))
}

// cleanupBatch deletes a batch directory and reports the bytes that freed.
// The tally is best-effort; removal is what matters.
func cleanupBatch(dir string) (int64, error) {
	var freed int64
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil {
			freed += info.Size()
		}
		return nil
	})

	if err := os.RemoveAll(dir); err != nil {
		return freed, fmt.Errorf("failed to remove batch directory %s: %w", dir, err)
	}
	return freed, nil
}
