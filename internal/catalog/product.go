package catalog

import (
	"net/url"
	"strings"
	"time"
)

// Product is a single scraped product listing. Identity is the canonical
// product URL; everything else is immutable once extraction finishes.
type Product struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand"`
	Category    string    `json:"category"`
	Size        string    `json:"size"`
	Ingredients []string  `json:"ingredients"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Position    int       `json:"position"` // 0-based extraction order, tie-break key
	ScrapedAt   time.Time `json:"scraped_at"`
}

// CanonicalURL normalizes a product URL for deduplication: query and
// fragment are dropped and the path gets exactly one trailing slash.
func CanonicalURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	return u.String(), nil
}

// BrandKey collapses a brand name into the form matched against source
// hosts: lowercase with spaces and hyphens removed.
func BrandKey(brand string) string {
	k := strings.ToLower(brand)
	k = strings.ReplaceAll(k, " ", "")
	k = strings.ReplaceAll(k, "-", "")
	return k
}
