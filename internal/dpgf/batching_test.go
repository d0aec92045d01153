package dpgf

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/remote"
)

func filesOfSizes(sizes ...float64) []remote.File {
	files := make([]remote.File, len(sizes))
	for i, mb := range sizes {
		files[i] = remote.File{
			ID:     fmt.Sprintf("f%d", i+1),
			Name:   fmt.Sprintf("lot_%d.xlsx", i+1),
			SizeMB: mb,
		}
	}
	return files
}

func TestPlanBatchesRespectsBothCaps(t *testing.T) {
	batches := PlanBatches(filesOfSizes(2, 5, 8, 1, 3), 3, 10)

	require.Len(t, batches, 3)
	require.Equal(t, []string{"f1", "f2"}, batchIDs(batches[0]))
	require.Equal(t, []string{"f3", "f4"}, batchIDs(batches[1]))
	require.Equal(t, []string{"f5"}, batchIDs(batches[2]))

	for _, batch := range batches {
		require.LessOrEqual(t, len(batch), 3)
		total := 0.0
		for _, f := range batch {
			total += f.SizeMB
		}
		require.LessOrEqual(t, total, 10.0)
	}
}

func TestPlanBatchesOversizedFileGetsOwnBatch(t *testing.T) {
	batches := PlanBatches(filesOfSizes(2, 15, 3), 3, 10)

	require.Len(t, batches, 3)
	require.Equal(t, []string{"f1"}, batchIDs(batches[0]))
	require.Equal(t, []string{"f2"}, batchIDs(batches[1]))
	require.Equal(t, []string{"f3"}, batchIDs(batches[2]))
}

func TestPlanBatchesFileCap(t *testing.T) {
	batches := PlanBatches(filesOfSizes(1, 1, 1, 1, 1), 2, 100)

	require.Len(t, batches, 3)
	require.Len(t, batches[0], 2)
	require.Len(t, batches[1], 2)
	require.Len(t, batches[2], 1)
}

func TestPlanBatchesKeepsDiscoveryOrder(t *testing.T) {
	batches := PlanBatches(filesOfSizes(1, 1, 1), 10, 100)

	require.Len(t, batches, 1)
	require.Equal(t, []string{"f1", "f2", "f3"}, batchIDs(batches[0]))
}

func TestPlanBatchesEmpty(t *testing.T) {
	require.Empty(t, PlanBatches(nil, 3, 10))
}

func batchIDs(batch []remote.File) []string {
	ids := make([]string, len(batch))
	for i, f := range batch {
		ids[i] = f.ID
	}
	return ids
}
