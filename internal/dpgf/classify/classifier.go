// Package classify gives second opinions on spreadsheet rows the structural
// heuristics could not place. Verdicts are memoized in a KV store keyed by
// the normalized row text, so recurring wordings across files are only
// evaluated once.
package classify

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/envelopa/dpgf-ingest/internal/logger"
)

type Label int

const (
	LabelUnknown Label = iota
	LabelSection
	LabelItem
	LabelNoise
)

var labelNames = map[Label]string{
	LabelUnknown: "UNKNOWN",
	LabelSection: "SECTION",
	LabelItem:    "ITEM",
	LabelNoise:   "NOISE",
}

func (l Label) String() string {
	if name, ok := labelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

func parseLabel(s string) (Label, bool) {
	for l, name := range labelNames {
		if name == s {
			return l, true
		}
	}
	return LabelUnknown, false
}

// Classifier labels designation texts. Implementations must return one label
// per input row, in order.
type Classifier interface {
	Classify(ctx context.Context, rows []string) ([]Label, error)
}

type rule struct {
	re    *regexp.Regexp
	label Label
}

// defaultRules run in order; the first match wins. They target the wordings
// that show up in DPGF sheets without numbering or price data.
var defaultRules = []rule{
	{regexp.MustCompile(`(?i)^(page\s+\d+|voir\s|cf\.|n\.?b\.?\s*[:.]|note\s*:|\(.*\)$)`), LabelNoise},
	{regexp.MustCompile(`(?i)^(chapitre|partie|sous[-\s]?lot|tranche(\s+(ferme|conditionnelle))?|option(s)?\b|variante(s)?\b)`), LabelSection},
	{regexp.MustCompile(`(?i)^(travaux|ouvrages|prestations|installations|fournitures)\s+(de|d['’]|du|des|et)\s`), LabelSection},
	{regexp.MustCompile(`(?i)^(g[ée]n[ée]ralit[ée]s|divers|rappel)\b`), LabelSection},
	{regexp.MustCompile(`:\s*$`), LabelSection},
}

const cacheKeyPrefix = "dpgf:classify:"

// cacheTTL keeps verdicts long enough to cover a full ingestion campaign
// while letting rule changes propagate within a day.
const cacheTTL = 24 * time.Hour

// RuleClassifier is the default Classifier: an ordered regex chain with a
// KV-memoized verdict per distinct row text. The cache is optional and its
// failures are soft.
type RuleClassifier struct {
	appLogger *logger.Logger
	cache     KVStore
	rules     []rule
	ttl       time.Duration
}

// NewRuleClassifier builds the default classifier. cache may be nil to
// disable memoization.
func NewRuleClassifier(appLogger *logger.Logger, cache KVStore) *RuleClassifier {
	return &RuleClassifier{
		appLogger: appLogger,
		cache:     cache,
		rules:     defaultRules,
		ttl:       cacheTTL,
	}
}

func (c *RuleClassifier) Classify(ctx context.Context, rows []string) ([]Label, error) {
	labels := make([]Label, len(rows))
	for i, row := range rows {
		labels[i] = c.classifyRow(ctx, row)
	}
	return labels, nil
}

func (c *RuleClassifier) classifyRow(ctx context.Context, row string) Label {
	const component = "classify.classifyRow"

	key := cacheKey(row)
	if c.cache != nil {
		v, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			if label, ok := parseLabel(v); ok {
				return label
			}
		case !errors.Is(err, ErrCacheMiss):
			c.appLogger.Debug(component, "verdict cache read failed: key=%s err=%v", key, err)
		}
	}

	label := LabelUnknown
	for _, r := range c.rules {
		if r.re.MatchString(row) {
			label = r.label
			break
		}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, label.String(), c.ttl); err != nil {
			c.appLogger.Debug(component, "verdict cache write failed: key=%s err=%v", key, err)
		}
	}
	return label
}

func cacheKey(row string) string {
	sum := sha1.Sum([]byte(strings.ToLower(strings.Join(strings.Fields(row), " "))))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
