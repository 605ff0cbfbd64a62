package enrich

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/glazeops/glaze/internal/catalog"
	"github.com/glazeops/glaze/internal/metrics"
	"github.com/glazeops/glaze/pkg/ratelimit"
)

var (
	barcodePattern = regexp.MustCompile(`\b(\d{8,14})\b`)
	originKeys     = []string{"made in", "manufactured in", "origin"}
	structuredKeys = []string{"made in", "ingredients", "inci"}
)

// Enricher issues one targeted search per enrichment field and collects
// candidate facts from the results. Classification happens later in the
// scorer; the enricher only gathers evidence.
type Enricher struct {
	provider SearchProvider
	limiter  *ratelimit.Limiter
	logger   *slog.Logger

	// ResultsPerQuery caps ranked results consumed per query.
	ResultsPerQuery int
}

// New creates an Enricher. limiter may be nil for unpaced queries.
func New(provider SearchProvider, limiter *ratelimit.Limiter, resultsPerQuery int, logger *slog.Logger) *Enricher {
	if resultsPerQuery <= 0 {
		resultsPerQuery = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		provider:        provider,
		limiter:         limiter,
		logger:          logger,
		ResultsPerQuery: resultsPerQuery,
	}
}

// Enrich collects candidate facts for one product. A failed query is
// logged and contributes nothing; the product stays in the run. The
// returned source list covers every consulted result URL, sorted.
func (e *Enricher) Enrich(ctx context.Context, p catalog.Product) ([]catalog.Fact, []string, error) {
	queries := BuildQueries(p)

	var facts []catalog.Fact
	sources := make(map[string]struct{})

	// Fields in fixed order so fact collection order is deterministic.
	for _, field := range catalog.Fields {
		query, ok := queries[field]
		if !ok {
			continue
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return facts, sortedKeys(sources), err
			}
		}

		results, err := e.provider.Search(ctx, query, e.ResultsPerQuery)
		if err != nil {
			e.logger.Warn("search query failed", "product", p.Name, "field", string(field), "err", err)
			metrics.SearchQueriesTotal.WithLabelValues(string(field), "error").Inc()
			continue
		}
		metrics.SearchQueriesTotal.WithLabelValues(string(field), "ok").Inc()

		for _, res := range results {
			if res.Link == "" {
				continue
			}
			sources[res.Link] = struct{}{}
			facts = append(facts, factsFromResult(field, res, p)...)
		}
	}

	return facts, sortedKeys(sources), nil
}

// factsFromResult derives candidate facts from one search result. A
// result answers its own field and may additionally yield an official
// page / brand website hit regardless of which query surfaced it.
func factsFromResult(field catalog.Field, res Result, p catalog.Product) []catalog.Fact {
	var facts []catalog.Fact
	snippet := strings.TrimSpace(res.Snippet)
	structured := containsAnyFold(snippet, structuredKeys)

	if looksOfficial(res.Link, p.Brand) {
		facts = append(facts, catalog.Fact{
			Field:     catalog.FieldOfficialPage,
			Value:     res.Link,
			SourceURL: res.Link,
			Snippet:   snippet,
		})
		if site := siteRoot(res.Link); site != "" {
			facts = append(facts, catalog.Fact{
				Field:     catalog.FieldBrandWebsite,
				Value:     site,
				SourceURL: res.Link,
			})
		}
	}

	switch field {
	case catalog.FieldBarcode:
		if m := barcodePattern.FindString(snippet); m != "" {
			facts = append(facts, catalog.Fact{
				Field:      catalog.FieldBarcode,
				Value:      m,
				SourceURL:  res.Link,
				Snippet:    snippet,
				Structured: structured,
			})
		}
	case catalog.FieldOrigin:
		if containsAnyFold(snippet, originKeys) {
			facts = append(facts, catalog.Fact{
				Field:      catalog.FieldOrigin,
				Value:      snippet,
				SourceURL:  res.Link,
				Snippet:    snippet,
				Structured: structured,
			})
		}
	case catalog.FieldIngredients:
		lower := strings.ToLower(snippet)
		if strings.Contains(lower, "ingredient") || strings.Contains(lower, "inci") {
			facts = append(facts, catalog.Fact{
				Field:      catalog.FieldIngredients,
				Value:      snippet,
				SourceURL:  res.Link,
				Snippet:    snippet,
				Structured: structured,
			})
		}
	case catalog.FieldDescription:
		if snippet != "" {
			facts = append(facts, catalog.Fact{
				Field:      catalog.FieldDescription,
				Value:      snippet,
				SourceURL:  res.Link,
				Snippet:    snippet,
				Structured: structured,
			})
		}
	}

	return facts
}

// looksOfficial reports whether the link host carries the brand key.
func looksOfficial(link, brand string) bool {
	key := catalog.BrandKey(brand)
	if key == "" {
		return false
	}

	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(u.Hostname()), key)
}

// siteRoot reduces a URL to scheme://host.
func siteRoot(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func containsAnyFold(text string, keys []string) bool {
	lower := strings.ToLower(text)
	for _, k := range keys {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
