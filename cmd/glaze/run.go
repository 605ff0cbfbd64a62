package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/glazeops/glaze/internal/collector"
	"github.com/glazeops/glaze/internal/confidence"
	"github.com/glazeops/glaze/internal/discovery"
	"github.com/glazeops/glaze/internal/enrich"
	"github.com/glazeops/glaze/internal/extractor"
	"github.com/glazeops/glaze/internal/fingerprint"
	"github.com/glazeops/glaze/internal/metrics"
	"github.com/glazeops/glaze/internal/pipeline"
	"github.com/glazeops/glaze/internal/report"
	"github.com/glazeops/glaze/internal/scraper"
	"github.com/glazeops/glaze/internal/storage"
	"github.com/glazeops/glaze/internal/storage/postgres"
	"github.com/glazeops/glaze/internal/storage/sqlite"
	"github.com/glazeops/glaze/pkg/proxy"
	"github.com/glazeops/glaze/pkg/ratelimit"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the full scrape, enrich, score, and export batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		return runPipeline(ctx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runPipeline(ctx context.Context) error {
	logger := slog.Default()

	if cfg.Search.APIKey == "" || cfg.Search.CX == "" {
		return errors.New("search.api_key and search.cx are required (GLAZE_SEARCH_API_KEY / GLAZE_SEARCH_CX)")
	}

	var proxyPool *proxy.Pool
	if cfg.Fetch.ProxyFile != "" {
		proxyPool = proxy.NewPool(proxy.Config{})
		if err := proxyPool.LoadFile(cfg.Fetch.ProxyFile); err != nil {
			return fmt.Errorf("load proxies: %w", err)
		}
	}

	pageLimiter := ratelimit.NewLimiter(cfg.Fetch.RequestsPerSecond, cfg.Fetch.Jitter)
	defer pageLimiter.Stop()

	fetchCfg := scraper.FetchConfig{
		Timeout:      cfg.Fetch.Timeout,
		MaxRedirects: cfg.Fetch.MaxRedirects,
		UseCookieJar: cfg.Fetch.CookieJar,
		ProxyPool:    proxyPool,
		Fingerprint:  fingerprint.Profile(cfg.Fetch.Fingerprint),
		Limiter:      pageLimiter,
	}

	var robots *scraper.RobotsAuditor
	if cfg.Fetch.RespectRobots {
		// The auditor fetches robots.txt through an ungated fetcher.
		robotsFetcher, err := scraper.NewFetcher(fetchCfg)
		if err != nil {
			return fmt.Errorf("create robots fetcher: %w", err)
		}
		robots = scraper.NewRobotsAuditor(robotsFetcher, logger)
		fetchCfg.Robots = robots
		fetchCfg.RobotsUserAgent = cfg.Fetch.UserAgent
	}

	fetcher, err := scraper.NewFetcher(fetchCfg)
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}

	provider, err := enrich.NewGoogleCSE(cfg.Search.APIKey, cfg.Search.CX)
	if err != nil {
		return fmt.Errorf("create search provider: %w", err)
	}

	queryLimiter := ratelimit.NewLimiter(cfg.Search.QueriesPerSecond, 0)
	defer queryLimiter.Stop()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	if cfg.Metrics.Enabled {
		srv := metrics.Start(cfg.Metrics.Port)
		defer func() { _ = srv.Stop(context.Background()) }()
		logger.Info("metrics server started", "port", cfg.Metrics.Port)
	}

	p, err := pipeline.New(
		pipeline.Config{
			BaseURL:           cfg.BaseURL,
			CategoryPrefix:    cfg.CategoryPrefix,
			ProductPathPrefix: cfg.ProductPathPrefix,
			MaxProducts:       cfg.MaxProducts,
			TopN:              cfg.TopN,
			ExportDir:         cfg.Export.Dir,
			ExportBaseName:    cfg.Export.BaseName,
		},
		discovery.New(fetcher, robots, logger),
		collector.New(fetcher, cfg.PerCategory, logger),
		extractor.New(fetcher, cfg.Concurrency, logger),
		enrich.New(provider, queryLimiter, cfg.Search.ResultsPerQuery, logger),
		confidence.NewScorer(),
		store,
		logger,
	)
	if err != nil {
		return fmt.Errorf("assemble pipeline: %w", err)
	}

	summary, err := p.Run(ctx)
	if err != nil {
		return err
	}

	return report.WriteText(os.Stdout, *summary)
}

func openStore(ctx context.Context) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		store, err := sqlite.New(cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	case "postgres":
		store, err := postgres.New(ctx, cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	default:
		return nil, nil
	}
}
