package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/envelopa/dpgf-ingest/internal/logger"
)

// DirSource serves candidate files from a local directory. It backs the
// ingest binary's offline mode and keeps tests off the network.
type DirSource struct {
	dir       string
	appLogger *logger.Logger
}

func NewDirSource(dir string, appLogger *logger.Logger) *DirSource {
	return &DirSource{
		dir:       dir,
		appLogger: appLogger,
	}
}

// List returns every spreadsheet in the directory, scored by filename.
func (ds *DirSource) List(ctx context.Context) ([]File, error) {
	const component = "remote.DirSource.List"

	entries, err := os.ReadDir(ds.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory %s: %w", ds.dir, err)
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".xlsx", ".xlsm", ".csv":
		default:
			continue
		}
		info, err := entry.Info()
		if err != nil {
			ds.appLogger.Warn(component, "failed to stat %s: %v", entry.Name(), err)
			continue
		}
		files = append(files, File{
			ID:         entry.Name(),
			Name:       entry.Name(),
			SizeMB:     float64(info.Size()) / (1024 * 1024),
			Confidence: ScoreFilename(entry.Name()),
		})
	}

	ds.appLogger.Info(component, "local listing built: dir=%s files=%d", ds.dir, len(files))
	return files, nil
}

// Download copies the file into destDir so batch cleanup can reclaim it
// without touching the source directory.
func (ds *DirSource) Download(ctx context.Context, f File, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src := filepath.Join(ds.dir, filepath.Base(f.Name))
	dest := filepath.Join(destDir, filepath.Base(f.Name))

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return "", fmt.Errorf("failed to copy %s: %w", f.Name, err)
	}
	return dest, nil
}
