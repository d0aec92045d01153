package dpgf

import "github.com/envelopa/dpgf-ingest/internal/dpgf/remote"

// PlanBatches greedily packs files, in the order given, into batches bounded
// by a file-count cap and a cumulative-size cap. A single file larger than
// the size cap gets a batch of its own rather than being split, so peak disk
// usage stays bounded by max(maxMB, largest file).
func PlanBatches(files []remote.File, maxFiles int, maxMB float64) [][]remote.File {
	if maxFiles <= 0 {
		maxFiles = 1
	}

	var batches [][]remote.File
	var current []remote.File
	currentMB := 0.0

	flush := func() {
		if len(current) > 0 {
			batches = append(batches, current)
			current = nil
			currentMB = 0
		}
	}

	for _, f := range files {
		if f.SizeMB > maxMB {
			flush()
			batches = append(batches, []remote.File{f})
			continue
		}
		if len(current) >= maxFiles || currentMB+f.SizeMB > maxMB {
			flush()
		}
		current = append(current, f)
		currentMB += f.SizeMB
	}
	flush()

	return batches
}
