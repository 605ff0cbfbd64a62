package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	sitemap "github.com/oxffaa/gopher-parse-sitemap"
)

// SitemapFetcher discovers product URLs from a storefront's sitemap or
// sitemap index, as an alternative seed source to menu crawling.
type SitemapFetcher struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewSitemapFetcher initializes a SitemapFetcher.
func NewSitemapFetcher(fetcher *Fetcher, logger *slog.Logger) *SitemapFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapFetcher{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Fetch retrieves a sitemap XML or sitemap index and recursively extracts
// all page URLs.
func (s *SitemapFetcher) Fetch(ctx context.Context, sitemapURL string) ([]string, error) {
	s.logger.Debug("fetching sitemap", "url", sitemapURL)

	result, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("fetch sitemap: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("fetch sitemap: %s", result.Error)
	}
	if result.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch sitemap: status %d", result.StatusCode)
	}

	var urls []string
	err = sitemap.Parse(bytes.NewReader(result.Body), func(e sitemap.Entry) error {
		urls = append(urls, e.GetLocation())
		return nil
	})

	if err != nil || len(urls) == 0 {
		// Possibly a sitemap index; try nested sitemaps.
		var nested []string
		indexErr := sitemap.ParseIndex(bytes.NewReader(result.Body), func(e sitemap.IndexEntry) error {
			nested = append(nested, e.GetLocation())
			return nil
		})

		if indexErr != nil || (len(urls) == 0 && len(nested) == 0) {
			return nil, fmt.Errorf("parse as sitemap or index: %w", err)
		}

		for _, nestedURL := range nested {
			nestedURLs, fetchErr := s.Fetch(ctx, nestedURL)
			if fetchErr != nil {
				s.logger.Warn("failed to fetch nested sitemap", "url", nestedURL, "err", fetchErr)
				continue
			}
			urls = append(urls, nestedURLs...)
		}
	}

	return urls, nil
}
