package discovery

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/glazeops/glaze/internal/scraper"
)

// Category is one storefront product category discovered from the
// navigation menu.
type Category struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Discoverer enumerates product categories from the storefront home page
// and, alternatively, product URLs from the site's sitemaps.
type Discoverer struct {
	fetcher *scraper.Fetcher
	robots  *scraper.RobotsAuditor
	logger  *slog.Logger

	// MenuSelector locates category anchors in the navigation menu.
	MenuSelector string
}

// DefaultMenuSelector matches the category links of a WooCommerce theme
// dropdown menu.
const DefaultMenuSelector = "ul.sub-menu li.menu-item a.cg-menu-link"

// New creates a Discoverer. robots may be nil to skip sitemap discovery.
func New(fetcher *scraper.Fetcher, robots *scraper.RobotsAuditor, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{
		fetcher:      fetcher,
		robots:       robots,
		logger:       logger,
		MenuSelector: DefaultMenuSelector,
	}
}

// Categories fetches baseURL and returns the menu categories whose URL
// starts with prefix, deduplicated by URL with order preserved.
func (d *Discoverer) Categories(ctx context.Context, baseURL, prefix string) ([]Category, error) {
	result, err := d.fetcher.Fetch(ctx, baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch home page: %w", err)
	}
	if !result.OK() {
		return nil, fmt.Errorf("fetch home page %s: status %d %s", baseURL, result.StatusCode, result.Error)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(result.Body))
	if err != nil {
		return nil, fmt.Errorf("parse home page: %w", err)
	}

	var categories []Category
	seen := make(map[string]struct{})

	doc.Find(d.MenuSelector).Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		name := strings.TrimSpace(s.Text())
		if !ok || href == "" || name == "" {
			return
		}
		if !strings.HasPrefix(href, prefix) {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		categories = append(categories, Category{Name: name, URL: href})
	})

	d.logger.Info("discovered categories", "count", len(categories), "prefix", prefix)
	return categories, nil
}

// SitemapProducts reads the sitemaps advertised in robots.txt for the
// base URL's host and returns the product page URLs found there. Product
// pages are recognized by pathPrefix (e.g. "/product/").
func (d *Discoverer) SitemapProducts(ctx context.Context, baseURL, pathPrefix string) ([]string, error) {
	if d.robots == nil {
		return nil, nil
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	sitemaps, err := d.robots.Sitemaps(ctx, u.Scheme+"://"+u.Host)
	if err != nil || len(sitemaps) == 0 {
		return nil, err
	}

	sf := scraper.NewSitemapFetcher(d.fetcher, d.logger)

	var products []string
	seen := make(map[string]struct{})
	for _, sm := range sitemaps {
		urls, err := sf.Fetch(ctx, sm)
		if err != nil {
			d.logger.Warn("sitemap fetch failed", "url", sm, "err", err)
			continue
		}
		for _, raw := range urls {
			pu, err := url.Parse(raw)
			if err != nil || !strings.HasPrefix(pu.Path, pathPrefix) {
				continue
			}
			if _, dup := seen[raw]; dup {
				continue
			}
			seen[raw] = struct{}{}
			products = append(products, raw)
		}
	}

	return products, nil
}
