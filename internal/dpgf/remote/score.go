package remote

import (
	"path/filepath"
	"strings"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/detect"
)

// ScoreFilename estimates how likely a file is a priced bid sheet from its
// name alone. Document-type tokens dominate, a recognizable lot marker and a
// spreadsheet extension add the rest. Result stays within [0, 1].
func ScoreFilename(name string) float64 {
	lower := strings.ToLower(filepath.Base(name))

	score := 0.0
	switch {
	case strings.Contains(lower, "dpgf"):
		score += 0.4
	case strings.Contains(lower, "bpu"), strings.Contains(lower, "dqe"):
		score += 0.3
	case strings.Contains(lower, "bordereau"), strings.Contains(lower, "estimatif"), strings.Contains(lower, "devis"):
		score += 0.2
	}

	if _, _, ok := detect.LotFromFilename(name); ok {
		score += 0.3
	}

	switch filepath.Ext(lower) {
	case ".xlsx", ".xlsm":
		score += 0.2
	case ".csv":
		score += 0.1
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}
