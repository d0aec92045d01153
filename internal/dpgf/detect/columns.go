package detect

import (
	"sort"
	"strings"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/sheet"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/types"
)

// Content profiling window: skip the title block, sample a band of data rows
// across the columns where numbers can plausibly live.
const (
	profileFirstRow = 5
	profileLastRow  = 20
	profileLastCol  = 10
	profileMinHits  = 4
)

// BindColumns maps each role to the leftmost cell of the header row that
// names it, then repairs the gaps positionally. Designation falls back to
// column 0.
func BindColumns(g sheet.Grid, headerRow int) types.ColumnRoles {
	cols := types.ColumnRoles{}
	if headerRow < 0 || headerRow >= g.Rows() {
		return cols
	}

	row := g[headerRow]
	normCells := make([]string, len(row))
	for i, c := range row {
		normCells[i] = normalizeCell(c)
	}

	for _, role := range roleOrder {
		if col, ok := bindRole(role, normCells); ok {
			cols[role] = col
		}
	}

	if _, ok := cols[types.RoleDesignation]; !ok {
		cols[types.RoleDesignation] = 0
	}
	repairColumns(cols)
	return cols
}

// bindRole finds the leftmost cell matching any keyword of the role. Short
// keywords require an exact cell match, longer ones may be a substring of
// the cell ("PU HT (€)" still binds unit price).
func bindRole(role types.Role, normCells []string) (int, bool) {
	for col, cell := range normCells {
		if cell == "" {
			continue
		}
		for _, kw := range roleKeywords[role] {
			if cell == kw {
				return col, true
			}
			if len(kw) >= 3 && strings.Contains(cell, kw) {
				return col, true
			}
		}
	}
	return 0, false
}

// repairColumns fills unbound roles from the usual DPGF column order:
// unit sits just before quantity, total just after unit price, quantity just
// before unit price.
func repairColumns(cols types.ColumnRoles) {
	if _, ok := cols[types.RoleUnit]; !ok {
		if q, ok := cols[types.RoleQuantity]; ok && q-1 >= 1 {
			cols[types.RoleUnit] = q - 1
		}
	}
	if _, ok := cols[types.RoleTotalPrice]; !ok {
		if pu, ok := cols[types.RoleUnitPrice]; ok {
			cols[types.RoleTotalPrice] = pu + 1
		}
	}
	if _, ok := cols[types.RoleQuantity]; !ok {
		if pu, ok := cols[types.RoleUnitPrice]; ok && pu-1 >= 1 {
			cols[types.RoleQuantity] = pu - 1
		}
	}
}

// ProfileColumns infers column roles without a header row by counting
// numeric cells per column over a sample band. The most numeric columns
// become quantity, unit price and total price in left-to-right order;
// designation defaults to column 0 and unit to column 1.
func ProfileColumns(g sheet.Grid) types.ColumnRoles {
	type colCount struct {
		col  int
		hits int
	}

	var counts []colCount
	for c := 1; c <= profileLastCol; c++ {
		hits := 0
		for r := profileFirstRow; r <= profileLastRow && r < g.Rows(); r++ {
			if isNumericCell(g.Cell(r, c)) {
				hits++
			}
		}
		if hits >= profileMinHits {
			counts = append(counts, colCount{col: c, hits: hits})
		}
	}

	// Most numeric first; leftmost wins ties to keep the result stable.
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].hits != counts[j].hits {
			return counts[i].hits > counts[j].hits
		}
		return counts[i].col < counts[j].col
	})
	if len(counts) > 3 {
		counts = counts[:3]
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].col < counts[j].col })

	cols := types.ColumnRoles{types.RoleDesignation: 0}
	numericRoles := []types.Role{types.RoleQuantity, types.RoleUnitPrice, types.RoleTotalPrice}
	taken := map[int]bool{}
	for i, cc := range counts {
		cols[numericRoles[i]] = cc.col
		taken[cc.col] = true
	}
	if !taken[1] {
		cols[types.RoleUnit] = 1
	}
	return cols
}
