package detect

import (
	"fmt"
	"testing"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/sheet"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/types"
	"github.com/stretchr/testify/require"
)

func TestBindColumnsFullHeader(t *testing.T) {
	grid := sheet.Grid{
		{"N°", "Désignation", "Unité", "Qté", "PU HT", "Total HT"},
	}

	cols := BindColumns(grid, 0)
	require.Equal(t, types.ColumnRoles{
		types.RoleDesignation: 1,
		types.RoleUnit:        2,
		types.RoleQuantity:    3,
		types.RoleUnitPrice:   4,
		types.RoleTotalPrice:  5,
	}, cols)
}

func TestBindColumnsDesignationDefaultsToFirstColumn(t *testing.T) {
	grid := sheet.Grid{
		{"", "Unité", "Qté", "PU HT", "Total HT"},
	}

	cols := BindColumns(grid, 0)
	require.Equal(t, 0, cols[types.RoleDesignation])
}

func TestBindColumnsRepairsQuantityFromUnitPrice(t *testing.T) {
	// The quantity column exists in the data but its header cell is blank.
	grid := sheet.Grid{
		{"Désignation", "U", "", "PU HT", "Total HT"},
	}

	cols := BindColumns(grid, 0)
	require.Equal(t, 2, cols[types.RoleQuantity])
}

func TestBindColumnsRepairsTotalAfterUnitPrice(t *testing.T) {
	grid := sheet.Grid{
		{"Désignation", "Unité", "Qté", "PU HT"},
	}

	cols := BindColumns(grid, 0)
	require.Equal(t, 4, cols[types.RoleTotalPrice])
}

func TestBindColumnsRepairsUnitBeforeQuantity(t *testing.T) {
	grid := sheet.Grid{
		{"Désignation", "", "Qté", "PU HT", "Total HT"},
	}

	cols := BindColumns(grid, 0)
	require.Equal(t, 1, cols[types.RoleUnit])
}

func TestProfileColumns(t *testing.T) {
	grid := sheet.Grid{
		{"DPGF"}, {}, {}, {}, {},
	}
	for i := 0; i < 16; i++ {
		grid = append(grid, []string{
			fmt.Sprintf("Ouvrage %d", i), "m2", fmt.Sprintf("%d", i+1), "150,00", "300,00 €",
		})
	}

	cols := ProfileColumns(grid)
	require.Equal(t, types.ColumnRoles{
		types.RoleDesignation: 0,
		types.RoleUnit:        1,
		types.RoleQuantity:    2,
		types.RoleUnitPrice:   3,
		types.RoleTotalPrice:  4,
	}, cols)
}

func TestProfileColumnsPartial(t *testing.T) {
	grid := make(sheet.Grid, 21)
	for r := 5; r < 21; r++ {
		grid[r] = []string{"Libellé", "", "12,5", "", "", "99"}
	}

	cols := ProfileColumns(grid)
	require.Equal(t, 2, cols[types.RoleQuantity])
	require.Equal(t, 5, cols[types.RoleUnitPrice])
	_, hasTotal := cols[types.RoleTotalPrice]
	require.False(t, hasTotal)
	require.Equal(t, 1, cols[types.RoleUnit])
}

func TestProfileColumnsEmptyGrid(t *testing.T) {
	cols := ProfileColumns(sheet.Grid{})
	require.Equal(t, 0, cols[types.RoleDesignation])
	require.Equal(t, 1, cols[types.RoleUnit])
	_, hasQty := cols[types.RoleQuantity]
	require.False(t, hasQty)
}
