package discovery

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glazeops/glaze/internal/fingerprint"
	"github.com/glazeops/glaze/internal/scraper"
)

func newTestFetcher(t *testing.T) *scraper.Fetcher {
	t.Helper()
	f, err := scraper.NewFetcher(scraper.FetchConfig{Fingerprint: fingerprint.ProfileGo})
	if err != nil {
		t.Fatalf("NewFetcher: %v", err)
	}
	return f
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func menuPage(base string) string {
	return fmt.Sprintf(`<html><body><nav><ul class="sub-menu">
<li class="menu-item"><a class="cg-menu-link" href="%[1]s/cat/wholesale-face-care/toners/">Toners</a></li>
<li class="menu-item"><a class="cg-menu-link" href="%[1]s/cat/wholesale-face-care/serums/">Serums</a></li>
<li class="menu-item"><a class="cg-menu-link" href="%[1]s/cat/wholesale-face-care/toners/">Toners</a></li>
<li class="menu-item"><a class="cg-menu-link" href="%[1]s/cat/wholesale-hair-care/">Hair Care</a></li>
<li class="menu-item"><a class="cg-menu-link" href="">Empty Href</a></li>
</ul></nav></body></html>`, base)
}

func TestCategories(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(menuPage(ts.URL)))
	}))
	defer ts.Close()

	d := New(newTestFetcher(t), nil, discardLogger())
	prefix := ts.URL + "/cat/wholesale-face-care/"

	categories, err := d.Categories(context.Background(), ts.URL, prefix)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}

	if len(categories) != 2 {
		t.Fatalf("categories = %+v, want 2 after prefix filter and dedupe", categories)
	}
	if categories[0].Name != "Toners" || categories[1].Name != "Serums" {
		t.Errorf("category order = %q, %q", categories[0].Name, categories[1].Name)
	}
	for _, c := range categories {
		if c.URL == "" || c.URL[:len(prefix)] != prefix {
			t.Errorf("category outside prefix: %+v", c)
		}
	}
}

func TestCategoriesHomePageDown(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	d := New(newTestFetcher(t), nil, discardLogger())
	if _, err := d.Categories(context.Background(), ts.URL, ts.URL); err == nil {
		t.Errorf("expected error for unreachable home page")
	}
}

func TestSitemapProducts(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			fmt.Fprintf(w, "User-agent: *\nAllow: /\nSitemap: %s/sitemap.xml\n", ts.URL)
		case "/sitemap.xml":
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>%[1]s/product/snail-essence/</loc></url>
<url><loc>%[1]s/about-us/</loc></url>
<url><loc>%[1]s/product/aloe-toner/</loc></url>
<url><loc>%[1]s/product/snail-essence/</loc></url>
</urlset>`, ts.URL)
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	fetcher := newTestFetcher(t)
	robots := scraper.NewRobotsAuditor(fetcher, discardLogger())
	d := New(fetcher, robots, discardLogger())

	products, err := d.SitemapProducts(context.Background(), ts.URL, "/product/")
	if err != nil {
		t.Fatalf("SitemapProducts: %v", err)
	}

	want := []string{
		ts.URL + "/product/snail-essence/",
		ts.URL + "/product/aloe-toner/",
	}
	if len(products) != len(want) {
		t.Fatalf("products = %v, want %v", products, want)
	}
	for i := range want {
		if products[i] != want[i] {
			t.Errorf("products[%d] = %q, want %q", i, products[i], want[i])
		}
	}
}

func TestSitemapProductsNoRobots(t *testing.T) {
	d := New(newTestFetcher(t), nil, discardLogger())
	products, err := d.SitemapProducts(context.Background(), "https://shop.example", "/product/")
	if err != nil || products != nil {
		t.Errorf("nil auditor should yield nothing: %v %v", products, err)
	}
}
