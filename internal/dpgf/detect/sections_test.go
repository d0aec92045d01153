package detect

import (
	"context"
	"testing"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/classify"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/sheet"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/types"
	"github.com/envelopa/dpgf-ingest/internal/logger"
	"github.com/stretchr/testify/require"
)

func testRoles() types.ColumnRoles {
	return types.ColumnRoles{
		types.RoleDesignation: 0,
		types.RoleUnit:        1,
		types.RoleQuantity:    2,
		types.RoleUnitPrice:   3,
		types.RoleTotalPrice:  4,
	}
}

func quietDetector() *Detector {
	return New(logger.New(logger.LevelError), nil)
}

func TestSegment(t *testing.T) {
	grid := sheet.Grid{
		{"Désignation", "U", "Qté", "PU", "Total"},
		{"1 Travaux préparatoires"},
		{"1.1 Installation de chantier"},
		{"Base vie", "ens", "1", "2 500,00", "2 500,00"},
		{"Sous-total", "", "", "", "5 000,00"},
		{"2 Gros œuvre"},
		{"Fouilles en tranchée", "m3", "120", "25,00", "3 000,00"},
	}

	events := quietDetector().segment(context.Background(), grid, 0, testRoles())
	require.Len(t, events, 5)

	require.Equal(t, types.EventSection, events[0].Kind)
	require.Equal(t, "1", events[0].SectionNumber)
	require.Equal(t, "Travaux préparatoires", events[0].SectionTitle)
	require.Equal(t, 1, events[0].Depth)

	require.Equal(t, types.EventSection, events[1].Kind)
	require.Equal(t, "1.1", events[1].SectionNumber)
	require.Equal(t, 2, events[1].Depth)

	require.Equal(t, types.EventItem, events[2].Kind)
	require.Equal(t, "Base vie", events[2].Designation)
	require.Equal(t, "ens", events[2].Unit)
	require.InDelta(t, 1.0, events[2].Quantity, 1e-9)
	require.InDelta(t, 2500.0, events[2].UnitPrice, 1e-9)
	require.InDelta(t, 2500.0, events[2].TotalPrice, 1e-9)

	require.Equal(t, types.EventSection, events[3].Kind)
	require.Equal(t, "2", events[3].SectionNumber)

	require.Equal(t, types.EventItem, events[4].Kind)
	require.InDelta(t, 120.0, events[4].Quantity, 1e-9)
}

func TestSegmentDefaultSectionBeforeOrphanItems(t *testing.T) {
	grid := sheet.Grid{
		{"Désignation", "U", "Qté", "PU", "Total"},
		{"Porte coupe-feu", "U", "2", "150,00", "300,00"},
	}

	events := quietDetector().segment(context.Background(), grid, 0, testRoles())
	require.Len(t, events, 2)

	require.Equal(t, types.EventSection, events[0].Kind)
	require.Equal(t, "1", events[0].SectionNumber)
	require.Equal(t, "Éléments du bordereau", events[0].SectionTitle)
	require.Equal(t, 1, events[0].Depth)

	require.Equal(t, types.EventItem, events[1].Kind)
	require.Equal(t, "Porte coupe-feu", events[1].Designation)
}

func TestSegmentDerivesMissingValues(t *testing.T) {
	grid := sheet.Grid{
		{"Désignation", "U", "Qté", "PU", "Total"},
		{"1 Menuiseries"},
		{"Porte", "U", "10", "25,5", ""},
		{"Fenêtre", "U", "", "50,00", "200,00"},
		{"Volet", "U", "8", "", "400,00"},
	}

	events := quietDetector().segment(context.Background(), grid, 0, testRoles())
	require.Len(t, events, 4)

	require.InDelta(t, 255.0, events[1].TotalPrice, 0.001, "total derived from quantity and unit price")
	require.InDelta(t, 4.0, events[2].Quantity, 0.001, "quantity derived from total and unit price")
	require.InDelta(t, 50.0, events[3].UnitPrice, 0.001, "unit price derived from total and quantity")
}

func TestSegmentSkipsRecapRows(t *testing.T) {
	grid := sheet.Grid{
		{"Désignation", "U", "Qté", "PU", "Total"},
		{"1 Maçonnerie"},
		{"TOTAL GÉNÉRAL HT", "", "", "", "15 000,00"},
		{"TVA 20%", "", "", "", "3 000,00"},
		{"Total TTC", "", "", "", "18 000,00"},
	}

	events := quietDetector().segment(context.Background(), grid, 0, testRoles())
	require.Len(t, events, 1)
	require.Equal(t, types.EventSection, events[0].Kind)
}

func TestSegmentClassifierUpgradesAmbiguousRows(t *testing.T) {
	appLogger := logger.New(logger.LevelError)
	cl := classify.NewRuleClassifier(appLogger, classify.NewMemoryKVStore())
	d := New(appLogger, cl)

	grid := sheet.Grid{
		{"Désignation", "U", "Qté", "PU", "Total"},
		{"Travaux de dépose :"},
		{"Dépose des menuiseries", "U", "8", "45,00", "360,00"},
	}

	events := d.segment(context.Background(), grid, 0, testRoles())
	require.Len(t, events, 2)

	require.Equal(t, types.EventSection, events[0].Kind)
	require.Equal(t, "Travaux de dépose :", events[0].SectionTitle)
	require.Equal(t, 1, events[0].Depth)
	require.Regexp(t, `^S\d{4}$`, events[0].SectionNumber)

	require.Equal(t, types.EventItem, events[1].Kind)
}

func TestClassifySection(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantNumber string
		wantTitle  string
		wantDepth  int
		wantOK     bool
	}{
		{"top level", "1 Travaux préparatoires", "1", "Travaux préparatoires", 1, true},
		{"nested", "1.2.3 Faïences murales", "1.2.3", "Faïences murales", 3, true},
		{"punctuated", "2.3. Cloisons de distribution", "2.3", "Cloisons de distribution", 2, true},
		{"parenthesis", "3) Peintures", "3", "Peintures", 1, true},
		{"dash separator", "1.2 - Menuiseries", "1.2", "Menuiseries", 2, true},
		{"uppercase heading", "TRAVAUX PREPARATOIRES", "S8639", "TRAVAUX PREPARATOIRES", 1, true},
		{"plain prose", "Fourniture et pose de porte", "", "", 0, false},
		{"too short caps", "CVC", "", "", 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			number, title, depth, ok := classifySection(tc.text)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.wantNumber, number)
			require.Equal(t, tc.wantTitle, title)
			require.Equal(t, tc.wantDepth, depth)
		})
	}
}

func TestSyntheticNumberStable(t *testing.T) {
	first := syntheticNumber("TRAVAUX PREPARATOIRES")
	for i := 0; i < 5; i++ {
		require.Equal(t, first, syntheticNumber("TRAVAUX PREPARATOIRES"))
	}
	require.NotEqual(t, first, syntheticNumber("MENUISERIES EXTERIEURES"))
}

func TestIsUppercaseTitle(t *testing.T) {
	require.True(t, isUppercaseTitle("TRAVAUX PREPARATOIRES"))
	require.True(t, isUppercaseTitle("GROS ŒUVRE"))
	require.True(t, isUppercaseTitle("LOT 2 - GROS ŒUVRE"))
	require.False(t, isUppercaseTitle("CVC"))
	require.False(t, isUppercaseTitle("Travaux préparatoires"))
	require.False(t, isUppercaseTitle("12345678"))
}
