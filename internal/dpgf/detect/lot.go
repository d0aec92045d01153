package detect

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/sheet"
)

// lotScanRows bounds the in-content search; explicit lot lines sit in the
// title block at the very top of the sheet.
const lotScanRows = 15

// lotContentPattern matches lines such as "LOT 06 - MÉTALLERIE" or
// "Lot n°3 : Plomberie".
var lotContentPattern = regexp.MustCompile(`(?i)\blot\s+(?:n°?\s*)?(\d{1,2}[a-z]?)\s*[-–—:]\s*(\S.*)`)

// FindLot scans the top of the grid for an explicit lot line. Content wins
// over the filename; callers fall back to LotFromFilename when this misses.
func FindLot(g sheet.Grid) (number, name string, row int, ok bool) {
	for r := 0; r < lotScanRows && r < g.Rows(); r++ {
		for c := range g[r] {
			cell := g.Cell(r, c)
			if cell == "" {
				continue
			}
			if m := lotContentPattern.FindStringSubmatch(cell); m != nil {
				return m[1], strings.TrimSpace(m[2]), r, true
			}
		}
	}
	return "", "", -1, false
}

// filenameRules run most specific first. nameGroup is the submatch carrying
// the lot name, 0 when the pattern has none.
type filenameRule struct {
	re        *regexp.Regexp
	nameGroup int
}

// Separator classes spell dashes and underscores out because \b does not
// break on underscores ("_lot7" has no word boundary).
var filenameRules = []filenameRule{
	// LOT 06 - DPGF - METALLERIE, LOT 2_DPGF_Gros oeuvre
	{re: regexp.MustCompile(`(?i)lot[\s_-]*n?°?\s*(\d{1,2})\s*[–_-]\s*dpgf\s*[–_-]\s*(.+?)\s*$`), nameGroup: 2},
	// DPGF - LOT 3 - Plomberie, DPGF-LOT 3
	{re: regexp.MustCompile(`(?i)dpgf[\s_-]*lot[\s_-]*n?°?\s*(\d{1,2})[\s–_-]*(.*?)\s*$`), nameGroup: 2},
	// LOT 08 - Peinture; the dash-only separator keeps "_v2" suffixes out
	// of the name.
	{re: regexp.MustCompile(`(?i)lot[\s_-]*n?°?\s*(\d{1,2})\s*[–—-]\s*(.+?)\s*$`), nameGroup: 2},
	// lot7, LOT 3 anywhere in the name, number only
	{re: regexp.MustCompile(`(?i)lot[\s_-]*n?°?[\s_-]*(\d{1,2})`)},
	// 04-DPGF-plomberie
	{re: regexp.MustCompile(`(?i)\b(\d{1,2})\s*[–_-]\s*dpgf\b`)},
	// bare leading number: "06 - Métallerie"
	{re: regexp.MustCompile(`^(\d{1,2})\b`)},
}

// LotFromFilename applies the rule chain to the file's base name. Matched
// numbers outside [1, 99] are rejected so years and reference codes never
// pass as lots. The matched digits keep their original form ("06" stays
// "06").
func LotFromFilename(filename string) (number, name string, ok bool) {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = strings.TrimSpace(base)

	for _, rule := range filenameRules {
		m := rule.re.FindStringSubmatch(base)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > 99 {
			continue
		}
		name := ""
		if rule.nameGroup > 0 && rule.nameGroup < len(m) {
			name = cleanLotName(m[rule.nameGroup])
		}
		return m[1], name, true
	}
	return "", "", false
}

func cleanLotName(s string) string {
	s = strings.Trim(s, " -–_")
	return strings.Join(strings.Fields(s), " ")
}
