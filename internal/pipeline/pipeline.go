package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/glazeops/glaze/internal/catalog"
	"github.com/glazeops/glaze/internal/collector"
	"github.com/glazeops/glaze/internal/confidence"
	"github.com/glazeops/glaze/internal/discovery"
	"github.com/glazeops/glaze/internal/enrich"
	"github.com/glazeops/glaze/internal/export"
	"github.com/glazeops/glaze/internal/extractor"
	"github.com/glazeops/glaze/internal/report"
	"github.com/glazeops/glaze/internal/storage"
	"github.com/google/uuid"
)

// Config carries the run parameters the pipeline needs beyond its
// components.
type Config struct {
	BaseURL        string
	CategoryPrefix string
	// ProductPathPrefix recognizes product pages in sitemap URLs; used
	// as a fallback seed source when the menu yields no listings.
	ProductPathPrefix string
	// MaxProducts caps how many collected listings go into extraction
	// (0 = all). The cap takes the head of the collected order, keeping
	// runs deterministic.
	MaxProducts int

	TopN           int
	ExportDir      string
	ExportBaseName string
}

// sitemapListings turns sitemap product URLs into listings when menu
// collection came up empty.
func sitemapListings(urls []string) []collector.Listing {
	var listings []collector.Listing
	seen := make(map[string]struct{})

	for _, raw := range urls {
		canonical, err := catalog.CanonicalURL(raw)
		if err != nil {
			continue
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		listings = append(listings, collector.Listing{
			Category: "sitemap",
			URL:      canonical,
		})
	}
	return listings
}

// Pipeline wires the batch stages together: discover categories, collect
// product URLs, extract product pages, enrich via search, score and
// select, export.
type Pipeline struct {
	cfg        Config
	discoverer *discovery.Discoverer
	collector  *collector.Collector
	extractor  *extractor.Extractor
	enricher   *enrich.Enricher
	scorer     *confidence.Scorer
	store      storage.Store
	logger     *slog.Logger
}

// New assembles a Pipeline. store may be nil to skip persistence.
func New(
	cfg Config,
	d *discovery.Discoverer,
	c *collector.Collector,
	x *extractor.Extractor,
	e *enrich.Enricher,
	s *confidence.Scorer,
	store storage.Store,
	logger *slog.Logger,
) (*Pipeline, error) {
	if d == nil || c == nil || x == nil || e == nil {
		return nil, errors.New("pipeline: missing stage component")
	}
	if s == nil {
		s = confidence.NewScorer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}

	return &Pipeline{
		cfg:        cfg,
		discoverer: d,
		collector:  c,
		extractor:  x,
		enricher:   e,
		scorer:     s,
		store:      store,
		logger:     logger,
	}, nil
}

// Run executes the full batch and returns the run summary. Individual
// product failures never abort the run; only stage-level failures
// (unreachable home page, canceled context) do.
func (p *Pipeline) Run(ctx context.Context) (*report.Summary, error) {
	summary := &report.Summary{
		RunID:     uuid.New().String(),
		StartTime: time.Now().UTC(),
	}
	logger := p.logger.With("run_id", summary.RunID)

	categories, err := p.discoverer.Categories(ctx, p.cfg.BaseURL, p.cfg.CategoryPrefix)
	if err != nil {
		return nil, fmt.Errorf("discover categories: %w", err)
	}
	summary.CategoriesDiscovered = len(categories)

	listings, err := p.collector.Collect(ctx, categories)
	if err != nil {
		return nil, fmt.Errorf("collect listings: %w", err)
	}
	if len(listings) == 0 && p.cfg.ProductPathPrefix != "" {
		urls, err := p.discoverer.SitemapProducts(ctx, p.cfg.BaseURL, p.cfg.ProductPathPrefix)
		if err != nil {
			logger.Warn("sitemap fallback failed", "err", err)
		}
		listings = sitemapListings(urls)
		logger.Info("fell back to sitemap seeds", "count", len(listings))
	}

	summary.ProductsCollected = len(listings)
	logger.Info("collected product urls", "count", len(listings))

	if p.cfg.MaxProducts > 0 && len(listings) > p.cfg.MaxProducts {
		listings = listings[:p.cfg.MaxProducts]
	}

	products, failures, err := p.extractor.Extract(ctx, listings)
	if err != nil {
		return nil, fmt.Errorf("extract products: %w", err)
	}
	summary.ProductsExtracted = len(products)
	summary.ExtractFailures = failures
	logger.Info("extracted products", "count", len(products), "failures", failures)

	if p.store != nil {
		for i := range products {
			if err := p.store.SaveProduct(ctx, &products[i]); err != nil {
				logger.Warn("failed to persist product", "url", products[i].URL, "err", err)
			}
		}
	}

	var candidates []catalog.Record
	for _, product := range products {
		facts, sources, err := p.enricher.Enrich(ctx, product)
		if err != nil {
			// Enrich only errors on context cancellation.
			return nil, fmt.Errorf("enrich %s: %w", product.URL, err)
		}

		enrichment := p.scorer.Resolve(product, facts, sources)
		candidates = append(candidates, catalog.Record{
			Product:    product,
			Enrichment: enrichment,
		})
		logger.Debug("scored product", "url", product.URL, "score", enrichment.Score)
	}
	summary.ProductsEnriched = len(candidates)

	selected := confidence.SelectTop(candidates, p.cfg.TopN)
	summary.Selected = len(selected)
	summary.FactsByLevel = report.Tally(selected)

	if p.store != nil {
		for i := range selected {
			if err := p.store.SaveRecord(ctx, &selected[i]); err != nil {
				logger.Warn("failed to persist record", "url", selected[i].Product.URL, "err", err)
			}
		}
	}

	if p.cfg.ExportDir != "" {
		csvPath, jsonPath, err := export.WriteFiles(p.cfg.ExportDir, p.cfg.ExportBaseName, selected)
		if err != nil {
			return nil, fmt.Errorf("export selected records: %w", err)
		}
		logger.Info("exported records", "csv", csvPath, "json", jsonPath, "count", len(selected))
	}

	summary.EndTime = time.Now().UTC()
	summary.Duration = summary.EndTime.Sub(summary.StartTime)
	return summary, nil
}
