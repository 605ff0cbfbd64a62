package extractor

import (
	"context"
	"log/slog"
	"time"

	"github.com/glazeops/glaze/internal/catalog"
	"github.com/glazeops/glaze/internal/collector"
	"github.com/glazeops/glaze/internal/metrics"
	"github.com/glazeops/glaze/internal/scraper"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Extractor fetches product pages and turns them into catalog Products.
type Extractor struct {
	fetcher *scraper.Fetcher
	logger  *slog.Logger

	// Concurrency bounds parallel page fetches. 1 keeps the run strictly
	// sequential; results keep listing order either way.
	Concurrency int
}

// New creates an Extractor.
func New(fetcher *scraper.Fetcher, concurrency int, logger *slog.Logger) *Extractor {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		fetcher:     fetcher,
		logger:      logger,
		Concurrency: concurrency,
	}
}

// Extract fetches and parses every listing. Fetch or parse failures skip
// the product and count as failures; they never abort the batch. Product
// positions follow listing order over the successful extractions.
func (e *Extractor) Extract(ctx context.Context, listings []collector.Listing) ([]catalog.Product, int, error) {
	slots := make([]*catalog.Product, len(listings))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(e.Concurrency)

	for i, listing := range listings {
		i, listing := i, listing
		g.Go(func() error {
			p, err := e.extractOne(gCtx, listing)
			if err != nil {
				e.logger.Warn("product extraction failed", "url", listing.URL, "err", err)
				metrics.ProductsExtracted.WithLabelValues("failure").Inc()
				return nil
			}
			metrics.ProductsExtracted.WithLabelValues("success").Inc()
			slots[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	var products []catalog.Product
	failures := 0
	for _, p := range slots {
		if p == nil {
			failures++
			continue
		}
		p.Position = len(products)
		products = append(products, *p)
	}

	return products, failures, nil
}

func (e *Extractor) extractOne(ctx context.Context, listing collector.Listing) (*catalog.Product, error) {
	result, err := e.fetcher.Fetch(ctx, listing.URL)
	if err != nil {
		return nil, err
	}
	if !result.OK() {
		return nil, &FetchError{URL: listing.URL, Status: result.StatusCode, Reason: result.Error}
	}

	data, err := Parse(result.Body)
	if err != nil {
		return nil, err
	}

	return &catalog.Product{
		ID:          uuid.New().String(),
		URL:         listing.URL,
		Name:        data.Name,
		Brand:       data.Brand,
		Category:    listing.Category,
		Size:        data.Size,
		Ingredients: data.Ingredients,
		Description: data.Description,
		ImageURL:    data.ImageURL,
		ScrapedAt:   time.Now().UTC(),
	}, nil
}

// FetchError describes a product page that responded but was unusable.
type FetchError struct {
	URL    string
	Status int
	Reason string
}

func (e *FetchError) Error() string {
	if e.Reason != "" {
		return "fetch " + e.URL + ": " + e.Reason
	}
	return "fetch " + e.URL + ": unexpected status"
}
