package sheet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// Grid is the raw cell matrix of one sheet. Rows may be ragged because Excel
// readers drop trailing empty cells; always go through Cell for access.
type Grid [][]string

type Sheet struct {
	Name string
	Grid Grid
}

// Cell returns the trimmed cell value, or "" when the coordinates fall
// outside the grid.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) {
		return ""
	}
	r := g[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// Rows returns the number of rows in the grid.
func (g Grid) Rows() int {
	return len(g)
}

// Width returns the widest row of the grid.
func (g Grid) Width() int {
	width := 0
	for _, r := range g {
		if len(r) > width {
			width = len(r)
		}
	}
	return width
}

// Load opens a spreadsheet and returns its non-empty sheets, dispatching on
// the file extension.
func Load(path string) ([]Sheet, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm":
		return LoadXLSX(path)
	case ".csv":
		return LoadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet format %q: %s", ext, path)
	}
}

func LoadXLSX(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s of %s: %w", name, path, err)
		}
		if len(rows) == 0 {
			continue
		}
		sheets = append(sheets, Sheet{Name: name, Grid: rows})
	}
	return sheets, nil
}

// LoadCSV reads a semicolon-separated export as a single sheet named after
// the file. French Excel installs write these files as Windows-1252.
func LoadCSV(path string) ([]Sheet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	decoded := charmap.Windows1252.NewDecoder().Reader(file)
	df := dataframe.ReadCSV(decoded,
		dataframe.WithDelimiter(';'),
		dataframe.WithLazyQuotes(true),
		dataframe.HasHeader(false),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Error() != nil {
		return nil, fmt.Errorf("failed to parse csv %s: %w", path, df.Error())
	}
	if df.Nrow() == 0 {
		return nil, fmt.Errorf("csv %s is empty", path)
	}

	grid := make(Grid, 0, df.Nrow())
	for i := 0; i < df.Nrow(); i++ {
		row := make([]string, 0, df.Ncol())
		for j := 0; j < df.Ncol(); j++ {
			row = append(row, df.Elem(i, j).String())
		}
		grid = append(grid, row)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return []Sheet{{Name: name, Grid: grid}}, nil
}
