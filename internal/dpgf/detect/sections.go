package detect

import (
	"context"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/envelopa/dpgf-ingest/internal/dpgf/classify"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/sheet"
	"github.com/envelopa/dpgf-ingest/internal/dpgf/types"
)

var (
	// numberedSectionPattern matches "1.2 Menuiseries extérieures".
	numberedSectionPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s+(\S.*)$`)

	// punctuatedSectionPattern matches "1.2. Menuiseries" and "3) Gros œuvre".
	punctuatedSectionPattern = regexp.MustCompile(`^(\d+(?:\.\d+)*)\s*[.)\-–:]\s*(\S.*)$`)

	// noisePattern skips recap rows so totals never become items.
	noisePattern = regexp.MustCompile(`(?i)^(sous[\s-]*total|total|tva|montant\s+(ht|ttc|total)|report|arrondi)\b`)
)

// defaultSection parents items that appear before any section row, so every
// item has somewhere to hang.
var defaultSection = types.Event{
	Kind:          types.EventSection,
	SectionNumber: "1",
	SectionTitle:  "Éléments du bordereau",
	Depth:         1,
}

type markKind int

const (
	markAmbiguous markKind = iota
	markSection
	markItem
)

// rowMark is the per-row verdict of the first segmentation pass. Ambiguous
// rows may be upgraded to sections by the classifier before emission.
type rowMark struct {
	kind   markKind
	row    int
	text   string
	number string
	title  string
	depth  int
}

// segment walks the rows below the header and classifies each one as a
// section, an item, or noise. Rows with price data are items regardless of
// how their designation is written; section patterns are only consulted for
// rows without prices. Rows neither pattern explains are offered to the
// classifier, then dropped if still unresolved.
func (d *Detector) segment(ctx context.Context, g sheet.Grid, headerRow int, roles types.ColumnRoles) []types.Event {
	const component = "detect.segment"

	marks := make([]rowMark, 0, g.Rows())
	for row := headerRow + 1; row < g.Rows(); row++ {
		designation := roleCell(g, row, roles, types.RoleDesignation)
		if designation == "" {
			continue
		}
		if noisePattern.MatchString(designation) {
			continue
		}

		totalCell := roleCell(g, row, roles, types.RoleTotalPrice)
		qtyCell := roleCell(g, row, roles, types.RoleQuantity)
		puCell := roleCell(g, row, roles, types.RoleUnitPrice)

		if totalCell != "" || (qtyCell != "" && puCell != "") {
			marks = append(marks, rowMark{kind: markItem, row: row, text: designation})
			continue
		}

		if number, title, depth, ok := classifySection(designation); ok {
			marks = append(marks, rowMark{kind: markSection, row: row, text: designation, number: number, title: title, depth: depth})
			continue
		}

		marks = append(marks, rowMark{kind: markAmbiguous, row: row, text: designation})
	}

	d.refineAmbiguous(ctx, marks)

	events := make([]types.Event, 0, len(marks))
	sectionSeen := false
	for _, m := range marks {
		switch m.kind {
		case markSection:
			events = append(events, types.Event{
				Kind:          types.EventSection,
				Row:           m.row,
				SectionNumber: m.number,
				SectionTitle:  m.title,
				Depth:         m.depth,
			})
			sectionSeen = true
		case markItem:
			if !sectionSeen {
				ev := defaultSection
				ev.Row = m.row
				events = append(events, ev)
				sectionSeen = true
			}
			events = append(events, d.itemEvent(g, m.row, roles, m.text))
		default:
			d.appLogger.Debug(component, "unclassified row skipped: row=%d designation=%q", m.row+1, m.text)
		}
	}

	return events
}

// refineAmbiguous asks the classifier about rows the heuristics could not
// place. Only Section verdicts change anything: such rows become headings
// with a synthetic number. A missing or failing classifier leaves the marks
// untouched.
func (d *Detector) refineAmbiguous(ctx context.Context, marks []rowMark) {
	const component = "detect.refineAmbiguous"

	if d.classifier == nil {
		return
	}

	var idx []int
	var texts []string
	for i, m := range marks {
		if m.kind == markAmbiguous {
			idx = append(idx, i)
			texts = append(texts, m.text)
		}
	}
	if len(texts) == 0 {
		return
	}

	labels, err := d.classifier.Classify(ctx, texts)
	if err != nil || len(labels) != len(texts) {
		d.appLogger.Debug(component, "classifier unavailable, keeping heuristics: rows=%d err=%v", len(texts), err)
		return
	}

	for j, i := range idx {
		if labels[j] != classify.LabelSection {
			continue
		}
		marks[i].kind = markSection
		marks[i].number = syntheticNumber(marks[i].text)
		marks[i].title = marks[i].text
		marks[i].depth = 1
	}
}

func (d *Detector) itemEvent(g sheet.Grid, row int, roles types.ColumnRoles, designation string) types.Event {
	ev := types.Event{
		Kind:        types.EventItem,
		Row:         row,
		Designation: designation,
		Unit:        roleCell(g, row, roles, types.RoleUnit),
	}
	ev.Quantity = d.parseCell(g, row, roles, types.RoleQuantity)
	ev.UnitPrice = d.parseCell(g, row, roles, types.RoleUnitPrice)
	ev.TotalPrice = d.parseCell(g, row, roles, types.RoleTotalPrice)

	// A missing member of quantity, unit price and total is reconstructed
	// from the two others.
	switch {
	case ev.TotalPrice == 0 && ev.Quantity != 0 && ev.UnitPrice != 0:
		ev.TotalPrice = ev.Quantity * ev.UnitPrice
	case ev.Quantity == 0 && ev.TotalPrice != 0 && ev.UnitPrice != 0:
		ev.Quantity = ev.TotalPrice / ev.UnitPrice
	case ev.UnitPrice == 0 && ev.TotalPrice != 0 && ev.Quantity != 0:
		ev.UnitPrice = ev.TotalPrice / ev.Quantity
	}
	return ev
}

// parseCell reads a numeric role cell. Blank cells are zero without comment;
// non-blank cells that fail to parse are logged and read as zero.
func (d *Detector) parseCell(g sheet.Grid, row int, roles types.ColumnRoles, role types.Role) float64 {
	const component = "detect.parseCell"

	cell := roleCell(g, row, roles, role)
	if cell == "" {
		return 0
	}
	v, ok := ParseDecimal(cell)
	if !ok {
		d.appLogger.Warn(component, "unreadable numeric cell: row=%d role=%s value=%q", row+1, types.RoleNames[role], cell)
		return 0
	}
	return v
}

func roleCell(g sheet.Grid, row int, roles types.ColumnRoles, role types.Role) string {
	col, ok := roles[role]
	if !ok {
		return ""
	}
	return g.Cell(row, col)
}

// classifySection recognizes the section spellings found in DPGF sheets:
// numbered ("1.2 Title"), punctuated ("1.2. Title", "3) Title") and bare
// uppercase headings ("TRAVAUX PREPARATOIRES"). Uppercase headings get a
// synthetic stable number since the sheet carries none.
func classifySection(text string) (number, title string, depth int, ok bool) {
	if m := numberedSectionPattern.FindStringSubmatch(text); m != nil {
		return m[1], cleanSectionTitle(m[2]), strings.Count(m[1], ".") + 1, true
	}
	if m := punctuatedSectionPattern.FindStringSubmatch(text); m != nil {
		return m[1], cleanSectionTitle(m[2]), strings.Count(m[1], ".") + 1, true
	}
	if isUppercaseTitle(text) {
		return syntheticNumber(text), text, 1, true
	}
	return "", "", 0, false
}

// cleanSectionTitle drops separator residue left between the number and the
// title, as in "1.2 - Menuiseries".
func cleanSectionTitle(s string) string {
	return strings.TrimSpace(strings.TrimLeft(s, " -–—:.)"))
}

// isUppercaseTitle reports whether text reads as an all-caps heading: at
// least five runes, starting with an uppercase letter, no lowercase letters
// anywhere. Digits, spaces and light punctuation are allowed so headings
// like "LOT 2 - GROS ŒUVRE" qualify.
func isUppercaseTitle(text string) bool {
	if utf8.RuneCountInString(text) < 5 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(text)
	if !unicode.IsUpper(first) {
		return false
	}
	for _, r := range text {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r) || unicode.IsDigit(r):
		case strings.ContainsRune(" .,&'’()/\\-_", r):
		default:
			return false
		}
	}
	return true
}

// syntheticNumber derives a stable pseudo number for a heading that carries
// none of its own. The same title always maps to the same number, so
// re-imports reuse the stored section instead of duplicating it.
func syntheticNumber(title string) string {
	h := fnv.New32a()
	h.Write([]byte(title))
	return fmt.Sprintf("S%04d", h.Sum32()%10000)
}
