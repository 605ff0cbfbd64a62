package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const urlsetTmpl = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
%s</urlset>`

func TestSitemapFetchPlain(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entries := fmt.Sprintf("<url><loc>%s/product/a/</loc></url>\n<url><loc>%s/product/b/</loc></url>\n", ts.URL, ts.URL)
		fmt.Fprintf(w, urlsetTmpl, entries)
	}))
	defer ts.Close()

	sf := NewSitemapFetcher(newTestFetcher(t, FetchConfig{}), discardLogger())

	urls, err := sf.Fetch(context.Background(), ts.URL+"/sitemap.xml")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("urls = %v", urls)
	}
	if urls[0] != ts.URL+"/product/a/" {
		t.Errorf("urls[0] = %q", urls[0])
	}
}

func TestSitemapFetchIndex(t *testing.T) {
	var ts *httptest.Server
	ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sitemap_index.xml":
			fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<sitemap><loc>%s/sitemap-products.xml</loc></sitemap>
<sitemap><loc>%s/sitemap-pages.xml</loc></sitemap>
</sitemapindex>`, ts.URL, ts.URL)
		case "/sitemap-products.xml":
			fmt.Fprintf(w, urlsetTmpl, fmt.Sprintf("<url><loc>%s/product/a/</loc></url>\n", ts.URL))
		case "/sitemap-pages.xml":
			fmt.Fprintf(w, urlsetTmpl, fmt.Sprintf("<url><loc>%s/about/</loc></url>\n", ts.URL))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	sf := NewSitemapFetcher(newTestFetcher(t, FetchConfig{}), discardLogger())

	urls, err := sf.Fetch(context.Background(), ts.URL+"/sitemap_index.xml")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("urls = %v", urls)
	}
}

func TestSitemapFetchBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(http.NotFound))
	defer ts.Close()

	sf := NewSitemapFetcher(newTestFetcher(t, FetchConfig{}), discardLogger())
	if _, err := sf.Fetch(context.Background(), ts.URL+"/sitemap.xml"); err == nil {
		t.Errorf("expected error for 404 sitemap")
	}
}
