package detect

import (
	"regexp"
	"strings"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/sheet"
)

const metaScanRows = 15

var (
	clientLinePattern = regexp.MustCompile(`(?i)^(?:client|ma[îi]tre\s+d['’]ouvrage|donneur\s+d['’]ordre|m\.?o\.?)\s*[:\-]\s*(.+)$`)

	projectLinePattern = regexp.MustCompile(`(?i)^(?:projet|affaire|op[ée]ration|chantier)\s*[:\-]\s*(.+)$`)

	// metaIgnoreWords rejects captures that are generic labels rather than
	// real names.
	metaIgnoreWords = map[string]struct{}{
		"dpgf":    {},
		"lot":     {},
		"date":    {},
		"page":    {},
		"tableau": {},
	}
)

// FindClient scans the title block for a labelled client line
// ("Maître d'ouvrage : Ville de Lyon"). Returns "" when nothing usable
// appears.
func FindClient(g sheet.Grid) string {
	return findLabelled(g, clientLinePattern)
}

// FindProjectName scans the title block for a labelled project line
// ("Opération : Restructuration du groupe scolaire").
func FindProjectName(g sheet.Grid) string {
	return findLabelled(g, projectLinePattern)
}

func findLabelled(g sheet.Grid, re *regexp.Regexp) string {
	for r := 0; r < metaScanRows && r < g.Rows(); r++ {
		for c := range g[r] {
			cell := g.Cell(r, c)
			if cell == "" {
				continue
			}
			m := re.FindStringSubmatch(cell)
			if m == nil {
				continue
			}
			v := strings.Join(strings.Fields(m[1]), " ")
			if v == "" {
				continue
			}
			if _, skip := metaIgnoreWords[strings.ToLower(v)]; skip {
				continue
			}
			return v
		}
	}
	return ""
}
