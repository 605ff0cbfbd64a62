package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full run configuration. Values come from defaults, an
// optional YAML file, and GLAZE_* environment variables, in that order.
type Config struct {
	BaseURL           string `mapstructure:"base_url"`
	CategoryPrefix    string `mapstructure:"category_prefix"`
	ProductPathPrefix string `mapstructure:"product_path_prefix"`
	PerCategory       int    `mapstructure:"per_category"`
	MaxProducts       int    `mapstructure:"max_products"`
	TopN              int    `mapstructure:"top_n"`
	Concurrency       int    `mapstructure:"concurrency"`
	LogLevel          string `mapstructure:"log_level"`

	Fetch   FetchConfig   `mapstructure:"fetch"`
	Search  SearchConfig  `mapstructure:"search"`
	Storage StorageConfig `mapstructure:"storage"`
	Export  ExportConfig  `mapstructure:"export"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// FetchConfig tunes the page fetcher.
type FetchConfig struct {
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxRedirects      int           `mapstructure:"max_redirects"`
	CookieJar         bool          `mapstructure:"cookie_jar"`
	Fingerprint       string        `mapstructure:"fingerprint"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Jitter            float64       `mapstructure:"jitter"`
	RespectRobots     bool          `mapstructure:"respect_robots"`
	UserAgent         string        `mapstructure:"user_agent"`
	ProxyFile         string        `mapstructure:"proxy_file"`
}

// SearchConfig configures the hosted search API used for enrichment.
type SearchConfig struct {
	APIKey           string  `mapstructure:"api_key"`
	CX               string  `mapstructure:"cx"`
	ResultsPerQuery  int     `mapstructure:"results_per_query"`
	QueriesPerSecond float64 `mapstructure:"queries_per_second"`
}

// StorageConfig selects the product store.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres, or none
	DSN    string `mapstructure:"dsn"`
}

// ExportConfig selects where the final CSV/JSON land.
type ExportConfig struct {
	Dir      string `mapstructure:"dir"`
	BaseName string `mapstructure:"base_name"`
}

// MetricsConfig controls the optional Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// Load reads the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("base_url", "https://qudobeauty.com")
	v.SetDefault("category_prefix", "https://qudobeauty.com/cat/wholesale-face-care/")
	v.SetDefault("product_path_prefix", "/product/")
	v.SetDefault("per_category", 10)
	v.SetDefault("max_products", 40)
	v.SetDefault("top_n", 10)
	v.SetDefault("concurrency", 1)
	v.SetDefault("log_level", "info")

	v.SetDefault("fetch.timeout", 15*time.Second)
	v.SetDefault("fetch.max_redirects", 5)
	v.SetDefault("fetch.cookie_jar", true)
	v.SetDefault("fetch.fingerprint", "chrome")
	v.SetDefault("fetch.requests_per_second", 1.0)
	v.SetDefault("fetch.jitter", 0.2)
	v.SetDefault("fetch.respect_robots", true)
	v.SetDefault("fetch.user_agent", "glaze")
	v.SetDefault("fetch.proxy_file", "")

	// Empty defaults so GLAZE_SEARCH_API_KEY / GLAZE_SEARCH_CX are
	// visible to Unmarshal via AutomaticEnv.
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.cx", "")
	v.SetDefault("search.results_per_query", 5)
	v.SetDefault("search.queries_per_second", 2.0)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.dsn", "glaze.db")

	v.SetDefault("export.dir", ".")
	v.SetDefault("export.base_name", "enriched_products")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)

	v.SetEnvPrefix("GLAZE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive")
	}
	switch c.Storage.Driver {
	case "sqlite", "postgres", "none":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
