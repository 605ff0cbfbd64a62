package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestRobotsIsAllowed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("User-agent: *\nDisallow: /wp-admin/\nDisallow: /cart/\n"))
	}))
	defer ts.Close()

	auditor := NewRobotsAuditor(newTestFetcher(t, FetchConfig{}), discardLogger())
	ctx := context.Background()

	cases := []struct {
		path string
		want bool
	}{
		{"/product/toner/", true},
		{"/wp-admin/options.php", false},
		{"/cart/", false},
	}
	for _, c := range cases {
		got, err := auditor.IsAllowed(ctx, ts.URL+c.path, "glaze")
		if err != nil {
			t.Fatalf("IsAllowed(%s): %v", c.path, err)
		}
		if got != c.want {
			t.Errorf("IsAllowed(%s) = %v, want %v", c.path, got, c.want)
		}
	}
}

func TestRobotsMissingFailsOpen(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	auditor := NewRobotsAuditor(newTestFetcher(t, FetchConfig{}), discardLogger())

	allowed, err := auditor.IsAllowed(context.Background(), ts.URL+"/anything", "glaze")
	if err != nil {
		t.Fatalf("IsAllowed: %v", err)
	}
	if !allowed {
		t.Errorf("missing robots.txt should allow everything")
	}
}

func TestRobotsCachesPerHost(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			hits.Add(1)
		}
		w.Write([]byte("User-agent: *\nAllow: /\n"))
	}))
	defer ts.Close()

	auditor := NewRobotsAuditor(newTestFetcher(t, FetchConfig{}), discardLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := auditor.IsAllowed(ctx, ts.URL+"/page", "glaze"); err != nil {
			t.Fatalf("IsAllowed: %v", err)
		}
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", got)
	}
}

func TestRobotsSitemaps(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nAllow: /\nSitemap: https://shop.example/sitemap_index.xml\n"))
	}))
	defer ts.Close()

	auditor := NewRobotsAuditor(newTestFetcher(t, FetchConfig{}), discardLogger())

	sitemaps, err := auditor.Sitemaps(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("Sitemaps: %v", err)
	}
	if len(sitemaps) != 1 || sitemaps[0] != "https://shop.example/sitemap_index.xml" {
		t.Errorf("Sitemaps = %v", sitemaps)
	}
}
