// Package detect turns schema-less DPGF spreadsheet grids into structural
// events. Nothing here touches the store: the output is a Detection value
// that the hierarchy synchronizer replays.
package detect

import (
	"context"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/classify"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/sheet"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/types"
	"github.com/envelopa/dpgf-ingest/internal/logger"
)

type Detector struct {
	appLogger  *logger.Logger
	classifier classify.Classifier
}

// New builds a Detector. classifier may be nil, in which case ambiguous rows
// rely on the built-in heuristics alone.
func New(appLogger *logger.Logger, classifier classify.Classifier) *Detector {
	return &Detector{
		appLogger:  appLogger,
		classifier: classifier,
	}
}

// Detect analyses a single sheet. sourceFile is the original file name, used
// for lot detection when the sheet content names no lot. The returned
// Detection always has a column map; HeaderRow is -1 and LowConfidence true
// when the roles came from numeric profiling instead of a header row.
func (d *Detector) Detect(ctx context.Context, s sheet.Sheet, sourceFile string) *types.Detection {
	const component = "detect.Detect"

	det := &types.Detection{
		SheetName: s.Name,
		HeaderRow: -1,
	}

	headerRow, score := FindHeaderRow(s.Grid)
	if headerRow >= 0 {
		det.HeaderRow = headerRow
		det.Columns = BindColumns(s.Grid, headerRow)
		d.appLogger.Debug(component, "header row found: sheet=%s row=%d score=%d", s.Name, headerRow+1, score)
	} else {
		det.Columns = ProfileColumns(s.Grid)
		det.LowConfidence = true
		d.appLogger.Warn(component, "no header row, using numeric profiling: sheet=%s file=%s", s.Name, sourceFile)
	}

	if number, name, row, ok := FindLot(s.Grid); ok {
		det.Events = append(det.Events, types.Event{Kind: types.EventLot, Row: row, LotNumber: number, LotName: name})
	} else if number, name, ok := LotFromFilename(sourceFile); ok {
		det.Events = append(det.Events, types.Event{Kind: types.EventLot, Row: -1, LotNumber: number, LotName: name})
	}

	det.ClientName = FindClient(s.Grid)
	det.ProjectName = FindProjectName(s.Grid)

	det.Events = append(det.Events, d.segment(ctx, s.Grid, det.HeaderRow, det.Columns)...)

	d.appLogger.Info(component, "sheet analysed: sheet=%s events=%d lowConfidence=%v", s.Name, len(det.Events), det.LowConfidence)

	return det
}
