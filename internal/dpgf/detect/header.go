package detect

import (
	"strings"
	"unicode"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/sheet"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/types"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// headerScanRows bounds how deep we look for a header row. DPGF sheets bury
// their column headers under title and cartouche rows, rarely past row 30.
const headerScanRows = 30

// minHeaderScore is the number of distinct roles a row must name to be
// accepted as the header row.
const minHeaderScore = 3

// roleOrder fixes iteration order wherever it could influence the outcome.
var roleOrder = []types.Role{
	types.RoleDesignation,
	types.RoleUnit,
	types.RoleQuantity,
	types.RoleUnitPrice,
	types.RoleTotalPrice,
}

// roleKeywords are matched against accent-folded lowercase text. Keywords
// shorter than three characters only match a whole cell, never a substring.
var roleKeywords = map[types.Role][]string{
	types.RoleDesignation: {
		"designation", "libelle", "description", "prestation", "article",
		"detail", "ouvrage", "intitule", "nature des travaux",
	},
	types.RoleUnit: {
		"unite de mesure", "unite", "unites", "un.", "u.", "u",
	},
	types.RoleQuantity: {
		"quantite", "quantites", "qte", "qtes", "qt", "quant.", "nombre", "nb",
	},
	types.RoleUnitPrice: {
		"prix unitaire ht", "prix unitaire", "prix unit", "p.u.", "pu ht",
		"pu", "prix u", "cout unitaire",
	},
	types.RoleTotalPrice: {
		"prix total ht", "prix total", "total ht", "montant ht", "montant",
		"p.t.", "pt ht", "pt", "total",
	},
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeCell lowers, trims and accent-folds text so "Désignation" and
// "DESIGNATION" compare equal.
func normalizeCell(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// FindHeaderRow scans the top of the grid and returns the first row naming
// enough distinct column roles, with its score. A row naming all five roles
// wins immediately; ties keep the topmost row. Returns (-1, score) when no
// row reaches minHeaderScore.
func FindHeaderRow(g sheet.Grid) (int, int) {
	bestRow := -1
	bestScore := 0

	for r := 0; r < headerScanRows && r < g.Rows(); r++ {
		score := scoreHeaderRow(g[r])
		if score > bestScore {
			bestRow = r
			bestScore = score
			if score == len(roleOrder) {
				break
			}
		}
	}

	if bestScore < minHeaderScore {
		return -1, bestScore
	}
	return bestRow, bestScore
}

func scoreHeaderRow(cells []string) int {
	normCells := make([]string, len(cells))
	for i, c := range cells {
		normCells[i] = normalizeCell(c)
	}
	rowText := strings.Join(normCells, " ")

	score := 0
	for _, role := range roleOrder {
		if roleInRow(role, rowText, normCells) {
			score++
		}
	}
	return score
}

func roleInRow(role types.Role, rowText string, normCells []string) bool {
	for _, kw := range roleKeywords[role] {
		if len(kw) < 3 {
			for _, cell := range normCells {
				if cell == kw {
					return true
				}
			}
			continue
		}
		if strings.Contains(rowText, kw) {
			return true
		}
	}
	return false
}
