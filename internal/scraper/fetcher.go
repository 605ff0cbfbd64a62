package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/glazeops/glaze/internal/bypass"
	"github.com/glazeops/glaze/internal/fingerprint"
	"github.com/glazeops/glaze/internal/metrics"
	"github.com/glazeops/glaze/pkg/httpclient"
	"github.com/glazeops/glaze/pkg/proxy"
	"github.com/glazeops/glaze/pkg/ratelimit"
	"github.com/glazeops/glaze/pkg/useragent"
	"github.com/google/uuid"
)

type contextKey string

const proxyKey contextKey = "proxy_url"

// FetchResult is the outcome of fetching one page. Transport-level
// failures land in Error rather than an error return, so a bad page never
// aborts a batch.
type FetchResult struct {
	ID           string
	URL          string
	StatusCode   int
	Headers      map[string][]string
	Body         []byte
	Duration     time.Duration
	DetectedBot  bool
	DetectionSrc string
	FetchedAt    time.Time
	Error        string
}

// OK reports whether the fetch produced a usable 2xx page.
func (r *FetchResult) OK() bool {
	return r.Error == "" && r.StatusCode >= 200 && r.StatusCode < 300
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	UseCookieJar bool
	ProxyPool    *proxy.Pool
	UAPool       *useragent.Pool
	Fingerprint  fingerprint.Profile
	Limiter      *ratelimit.Limiter
	// Robots, when set, gates every fetch on the host's robots.txt.
	Robots          *RobotsAuditor
	RobotsUserAgent string
}

// Fetcher performs single URL fetches. One client is held for the fetcher
// lifetime so cookie jars and pooled connections persist across pages.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher initializes a Fetcher with the given configuration.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UAPool == nil {
		cfg.UAPool = useragent.NewPool(nil)
	}
	if string(cfg.Fingerprint) == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}

	// Per-request proxy rotation: the transport's proxy func reads the
	// proxy URL out of the request context.
	proxyFunc := func(req *http.Request) (*url.URL, error) {
		if val := req.Context().Value(proxyKey); val != nil {
			if u, ok := val.(*url.URL); ok {
				return u, nil
			}
		}
		if req.URL.Host == "example.com" || req.URL.Hostname() == "127.0.0.1" {
			// Keep env proxies out of local test traffic.
			return nil, nil
		}
		return http.ProxyFromEnvironment(req)
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, proxyFunc)
	if err != nil {
		return nil, fmt.Errorf("setup transport: %w", err)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &Fetcher{
		config: cfg,
		client: client,
	}, nil
}

// Fetch executes a GET against targetURL, honoring the rate limiter and
// recording metrics. Detection of bot challenges runs on every response.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*FetchResult, error) {
	if f.config.Robots != nil {
		ua := f.config.RobotsUserAgent
		if ua == "" {
			ua = "*"
		}
		allowed, err := f.config.Robots.IsAllowed(ctx, targetURL, ua)
		if err == nil && !allowed {
			return &FetchResult{
				ID:        uuid.New().String(),
				URL:       targetURL,
				FetchedAt: time.Now().UTC(),
				Error:     "blocked by robots.txt",
			}, nil
		}
	}

	if f.config.Limiter != nil {
		if err := f.config.Limiter.Wait(ctx); err != nil {
			return &FetchResult{
				ID:        uuid.New().String(),
				URL:       targetURL,
				FetchedAt: time.Now().UTC(),
				Error:     fmt.Sprintf("rate limiter: %v", err),
			}, nil
		}
	}

	start := time.Now()
	result := &FetchResult{
		ID:        uuid.New().String(),
		URL:       targetURL,
		FetchedAt: start.UTC(),
	}

	var activeProxy *url.URL
	if f.config.ProxyPool != nil {
		activeProxy = f.config.ProxyPool.Next()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		result.Duration = time.Since(start)
		return result, nil
	}

	if activeProxy != nil {
		req = req.WithContext(context.WithValue(req.Context(), proxyKey, activeProxy))
	}

	req.Header.Set("User-Agent", f.config.UAPool.Next())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req.Context(), req)
	if err != nil {
		if activeProxy != nil {
			_ = f.config.ProxyPool.MarkFailure(activeProxy)
			metrics.ProxyFailures.WithLabelValues(activeProxy.String()).Inc()
		}
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Duration = time.Since(start)
		recordFetch(result)
		return result, nil
	}
	defer resp.Body.Close()

	if activeProxy != nil {
		_ = f.config.ProxyPool.MarkSuccess(activeProxy)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Error = fmt.Sprintf("read body: %v", err)
	}

	result.StatusCode = resp.StatusCode
	result.Headers = resp.Header
	result.Body = body
	result.Duration = time.Since(start)

	result.DetectedBot, result.DetectionSrc = bypass.Analyze(bypass.Response{
		StatusCode: result.StatusCode,
		Headers:    result.Headers,
		Body:       result.Body,
	}, bypass.DefaultDetectors())

	recordFetch(result)
	return result, nil
}

func recordFetch(res *FetchResult) {
	domain := ""
	if u, err := url.Parse(res.URL); err == nil {
		domain = u.Hostname()
	}

	status := fmt.Sprintf("%d", res.StatusCode)
	if res.Error != "" {
		status = "error"
	}

	metrics.RecordFetch(domain, status, res.DetectedBot, res.DetectionSrc, res.Duration, len(res.Body))
}
