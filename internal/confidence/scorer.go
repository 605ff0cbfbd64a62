package confidence

import (
	"net/url"
	"sort"
	"strings"

	"github.com/glazeops/glaze/internal/catalog"
	"github.com/glazeops/glaze/internal/metrics"
)

// DefaultMarketplaces are hosts treated as known retailers: trustworthy
// enough for MEDIUM, but not the brand's own word.
var DefaultMarketplaces = []string{
	"amazon.", "ebay.", "walmart.", "target.", "aliexpress.",
	"iherb.", "ulta.", "sephora.", "yesstyle.", "stylevana.",
	"lookfantastic.", "oliveyoung.", "cultbeauty.", "dermstore.",
}

// Scorer classifies enrichment facts, resolves one fact per field, and
// produces the aggregate score used for ranking.
type Scorer struct {
	Marketplaces []string
	// OverlapHigh / OverlapMedium are the ingredient token-overlap
	// thresholds for HIGH and MEDIUM.
	OverlapHigh   float64
	OverlapMedium float64
}

// NewScorer returns a Scorer with the standard rule table.
func NewScorer() *Scorer {
	return &Scorer{
		Marketplaces:  DefaultMarketplaces,
		OverlapHigh:   0.7,
		OverlapMedium: 0.3,
	}
}

// Classify assigns a confidence level to one fact for one product.
//
// Baseline is source-based: brand domain HIGH, known marketplace MEDIUM,
// anything else LOW. A fact lifted from a labelled structure is bumped
// one level. Ingredient facts ignore the baseline entirely and are rated
// by token overlap against the scraped ingredient list.
func (s *Scorer) Classify(f catalog.Fact, p catalog.Product) catalog.Confidence {
	if f.Field == catalog.FieldIngredients {
		return s.overlapConfidence(f.Value, p.Ingredients)
	}

	c := s.sourceConfidence(f.SourceURL, p.Brand)
	if f.Structured {
		c = c.Bump()
	}
	return c
}

// sourceConfidence rates the fact's source host.
func (s *Scorer) sourceConfidence(sourceURL, brand string) catalog.Confidence {
	u, err := url.Parse(sourceURL)
	if err != nil || u.Hostname() == "" {
		return catalog.Low
	}
	host := strings.ToLower(u.Hostname())

	if key := catalog.BrandKey(brand); key != "" && strings.Contains(host, key) {
		return catalog.High
	}

	for _, m := range s.Marketplaces {
		if strings.Contains(host, m) {
			return catalog.Medium
		}
	}
	return catalog.Low
}

// overlapConfidence rates an external ingredient candidate by its token
// overlap with the originally scraped list. The candidate text is split
// on commas and semicolons; names are compared lowercased and trimmed.
func (s *Scorer) overlapConfidence(external string, scraped []string) catalog.Confidence {
	scrapedSet := make(map[string]struct{}, len(scraped))
	for _, ing := range scraped {
		if n := normalizeIngredient(ing); n != "" {
			scrapedSet[n] = struct{}{}
		}
	}

	externalSet := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(external, func(r rune) bool { return r == ',' || r == ';' }) {
		if n := normalizeIngredient(tok); n != "" {
			externalSet[n] = struct{}{}
		}
	}

	if len(scrapedSet) == 0 || len(externalSet) == 0 {
		return catalog.Low
	}

	overlap := 0
	for n := range externalSet {
		if _, ok := scrapedSet[n]; ok {
			overlap++
		}
	}

	ratio := float64(overlap) / float64(len(scrapedSet))
	switch {
	case ratio >= s.OverlapHigh:
		return catalog.High
	case ratio >= s.OverlapMedium:
		return catalog.Medium
	default:
		return catalog.Low
	}
}

func normalizeIngredient(ing string) string {
	return strings.ToLower(strings.TrimSpace(ing))
}

// Resolve classifies every candidate fact and keeps at most one per
// field. Highest confidence wins; ties prefer a source domain that
// already produced a HIGH fact on another field of this product, then
// the earliest-collected candidate. The result carries the aggregate
// score (HIGH=2, MEDIUM=1, LOW=0 summed over resolved fields).
func (s *Scorer) Resolve(p catalog.Product, facts []catalog.Fact, sources []string) catalog.Enrichment {
	classified := make([]catalog.Fact, len(facts))
	highDomains := make(map[string]struct{})

	for i, f := range facts {
		f.Confidence = s.Classify(f, p)
		classified[i] = f
		if f.Confidence == catalog.High {
			if host := hostOf(f.SourceURL); host != "" {
				highDomains[host] = struct{}{}
			}
		}
	}

	resolved := make(map[catalog.Field]catalog.Fact)
	for _, f := range classified {
		cur, exists := resolved[f.Field]
		if !exists {
			resolved[f.Field] = f
			continue
		}
		if f.Confidence > cur.Confidence {
			resolved[f.Field] = f
			continue
		}
		if f.Confidence == cur.Confidence {
			_, curHigh := highDomains[hostOf(cur.SourceURL)]
			_, candHigh := highDomains[hostOf(f.SourceURL)]
			if candHigh && !curHigh {
				resolved[f.Field] = f
			}
		}
	}

	levels := make(map[catalog.Field]string, len(resolved))
	score := 0
	for field, f := range resolved {
		levels[field] = f.Confidence.String()
		score += f.Confidence.Weight()
		metrics.FactsTotal.WithLabelValues(string(field), f.Confidence.String()).Inc()
	}

	return catalog.Enrichment{
		ProductURL: p.URL,
		Facts:      resolved,
		Levels:     levels,
		SourceURLs: sources,
		Score:      score,
	}
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// SelectTop orders records by aggregate score descending and keeps
// exactly min(n, len(records)). Ties break by ascending scrape position,
// so reruns over the same input select the same set.
func SelectTop(records []catalog.Record, n int) []catalog.Record {
	out := make([]catalog.Record, len(records))
	copy(out, records)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Enrichment.Score != out[j].Enrichment.Score {
			return out[i].Enrichment.Score > out[j].Enrichment.Score
		}
		return out[i].Product.Position < out[j].Product.Position
	})

	if n < len(out) {
		out = out[:n]
	}
	return out
}
