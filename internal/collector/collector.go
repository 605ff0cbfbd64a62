package collector

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/glazeops/glaze/internal/catalog"
	"github.com/glazeops/glaze/internal/discovery"
	"github.com/glazeops/glaze/internal/scraper"
)

// Listing is a product reference collected from a category listing page,
// before the product page itself has been fetched.
type Listing struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	URL      string `json:"url"` // canonical
}

// Collector paginates category listings and gathers unique product URLs.
type Collector struct {
	fetcher *scraper.Fetcher
	logger  *slog.Logger

	// ProductSelector locates product anchors on a listing page.
	ProductSelector string
	// PerCategory caps how many products are taken from one category.
	PerCategory int
}

// DefaultProductSelector matches WooCommerce loop product links.
const DefaultProductSelector = "a.woocommerce-LoopProduct-link.woocommerce-loop-product__link"

// New creates a Collector taking up to perCategory products per category.
func New(fetcher *scraper.Fetcher, perCategory int, logger *slog.Logger) *Collector {
	if perCategory <= 0 {
		perCategory = 10
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		fetcher:         fetcher,
		logger:          logger,
		ProductSelector: DefaultProductSelector,
		PerCategory:     perCategory,
	}
}

// Collect walks every category and returns the combined listing set,
// deduplicated by canonical URL with first occurrence winning. A category
// that fails to fetch is logged and skipped.
func (c *Collector) Collect(ctx context.Context, categories []discovery.Category) ([]Listing, error) {
	var all []Listing
	seen := make(map[string]struct{})

	for _, cat := range categories {
		items, err := c.collectCategory(ctx, cat)
		if err != nil {
			c.logger.Warn("category collection failed", "category", cat.Name, "err", err)
			continue
		}
		c.logger.Info("collected category", "category", cat.Name, "items", len(items))

		for _, item := range items {
			if _, dup := seen[item.URL]; dup {
				continue
			}
			seen[item.URL] = struct{}{}
			all = append(all, item)
		}
	}

	return all, nil
}

// collectCategory pages through one category until PerCategory products
// are found or a page yields no product anchors.
func (c *Collector) collectCategory(ctx context.Context, cat discovery.Category) ([]Listing, error) {
	var items []Listing

	for page := 1; len(items) < c.PerCategory; page++ {
		pageURL := cat.URL
		if page > 1 {
			pageURL = fmt.Sprintf("%spage/%d/", strings.TrimRight(cat.URL, "/")+"/", page)
		}

		result, err := c.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			return items, fmt.Errorf("fetch listing page: %w", err)
		}
		if !result.OK() {
			// Past the last page WooCommerce returns 404.
			break
		}

		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
		if err != nil {
			return items, fmt.Errorf("parse listing page: %w", err)
		}

		anchors := doc.Find(c.ProductSelector)
		if anchors.Length() == 0 {
			break
		}

		anchors.EachWithBreak(func(i int, s *goquery.Selection) bool {
			if len(items) >= c.PerCategory {
				return false
			}

			href, ok := s.Attr("href")
			if !ok || href == "" {
				return true
			}

			name := strings.TrimSpace(s.Text())
			if name == "" {
				name, _ = s.Attr("aria-label")
			}
			if name == "" {
				return true
			}

			canonical, err := catalog.CanonicalURL(href)
			if err != nil {
				c.logger.Debug("skipping malformed product url", "url", href, "err", err)
				return true
			}

			items = append(items, Listing{
				Category: cat.Name,
				Name:     name,
				URL:      canonical,
			})
			return true
		})
	}

	return items, nil
}
