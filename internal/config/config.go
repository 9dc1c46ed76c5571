package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned by Validate when no classifier credential is configured
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY not found: set it in .env or the environment")

// AppConfig holds the complete application configuration
type AppConfig struct {
	Scraper  ScraperConfig  `yaml:"scraper"`
	Browser  BrowserConfig  `yaml:"browser"`
	Proxies  ProxyConfig    `yaml:"proxies"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	IO       IOConfig       `yaml:"io"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ScraperConfig holds the location scraper configuration
type ScraperConfig struct {
	MaxRetries          int           `yaml:"max_retries"`
	BaseDelay           time.Duration `yaml:"base_delay"`
	NavigationTimeout   time.Duration `yaml:"navigation_timeout"`
	SettleTime          time.Duration `yaml:"settle_time"`
	RateLimitBackoff    time.Duration `yaml:"rate_limit_backoff"`
	RetryBackoff        time.Duration `yaml:"retry_backoff"`
	UserAgents          []string      `yaml:"user_agents,omitempty"`
	Locale              string        `yaml:"locale"`
	Timezone            string        `yaml:"timezone"`
	ViewportWidth       int           `yaml:"viewport_width"`
	ViewportHeight      int           `yaml:"viewport_height"`
	FailFastOnLoginWall bool          `yaml:"fail_fast_on_login_wall"`
}

// BrowserConfig holds the headless browser configuration
type BrowserConfig struct {
	Headless bool   `yaml:"headless"`
	ExecPath string `yaml:"exec_path"`
}

// ProxyConfig holds the proxy configuration
type ProxyConfig struct {
	Enabled bool     `yaml:"enabled"`
	Rotate  bool     `yaml:"rotate"`
	List    []string `yaml:"list"`
}

// AnalyzerConfig holds the vibe analysis configuration
type AnalyzerConfig struct {
	Provider          string        `yaml:"provider"`
	Model             string        `yaml:"model"`
	APIKey            string        `yaml:"-"`
	Concurrency       int           `yaml:"concurrency"`
	Pacing            time.Duration `yaml:"pacing"`
	RequestsPerMinute int           `yaml:"requests_per_minute"`
	FetchTimeout      time.Duration `yaml:"fetch_timeout"`
	MaxImageBytes     int64         `yaml:"max_image_bytes"`
	MaxOutputTokens   int32         `yaml:"max_output_tokens"`
	UserAgent         string        `yaml:"user_agent"`
}

// IOConfig holds the input/output configuration
type IOConfig struct {
	InputFile    string `yaml:"input_file"`
	OutputFile   string `yaml:"output_file"`
	OutputFormat string `yaml:"output_format"`
}

// LoggingConfig holds the logging configuration
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load loads the configuration from a YAML file on top of the defaults
func Load(filename string) (*AppConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	// Set default user agents if none provided
	if len(config.Scraper.UserAgents) == 0 {
		config.Scraper.UserAgents = DefaultUserAgents
	}

	return config, nil
}

// Default creates the default configuration
func Default() *AppConfig {
	return &AppConfig{
		Scraper: ScraperConfig{
			MaxRetries:        3,
			BaseDelay:         3 * time.Second,
			NavigationTimeout: 30 * time.Second,
			SettleTime:        2 * time.Second,
			RateLimitBackoff:  30 * time.Second,
			RetryBackoff:      5 * time.Second,
			UserAgents:        DefaultUserAgents,
			Locale:            "en-US",
			Timezone:          "America/Los_Angeles",
			ViewportWidth:     1920,
			ViewportHeight:    1080,
		},
		Browser: BrowserConfig{
			Headless: true,
		},
		Proxies: ProxyConfig{
			Rotate: true,
			List:   []string{},
		},
		Analyzer: AnalyzerConfig{
			Provider:        "google",
			Model:           DefaultModel,
			Concurrency:     2,
			Pacing:          500 * time.Millisecond,
			FetchTimeout:    30 * time.Second,
			MaxImageBytes:   8 << 20,
			MaxOutputTokens: 500,
			UserAgent:       DefaultUserAgents[0],
		},
		IO: IOConfig{
			OutputFormat: "json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadEnv reads envFile (missing files are ignored) and applies environment
// overrides to the configuration.
func (c *AppConfig) LoadEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return c.ApplyEnv(os.LookupEnv)
}

// ApplyEnv applies overrides from lookup, which has the signature of os.LookupEnv
func (c *AppConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("GEMINI_API_KEY"); ok {
		c.Analyzer.APIKey = strings.TrimSpace(v)
	}

	if v, ok := lookup("PROXY_URL"); ok && strings.TrimSpace(v) != "" {
		c.Proxies.Enabled = true
		c.Proxies.List = append([]string{strings.TrimSpace(v)}, c.Proxies.List...)
	}

	if v, ok := lookup("SCRAPE_DELAY_SECONDS"); ok && v != "" {
		secs, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("SCRAPE_DELAY_SECONDS: %w", err)
		}
		c.Scraper.BaseDelay = time.Duration(secs * float64(time.Second))
	}

	if v, ok := lookup("MAX_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_RETRIES: %w", err)
		}
		c.Scraper.MaxRetries = n
	}

	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Logging.Level = strings.ToLower(v)
	}

	if v, ok := lookup("CHROME_PATH"); ok && v != "" {
		c.Browser.ExecPath = v
	}

	return nil
}

// Validate checks the configuration before the pipeline starts
func (c *AppConfig) Validate() error {
	if c.Analyzer.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Analyzer.Provider != "google" {
		return fmt.Errorf("unsupported classifier provider: %s", c.Analyzer.Provider)
	}
	if c.Scraper.MaxRetries < 1 {
		return fmt.Errorf("scraper.max_retries must be at least 1, got %d", c.Scraper.MaxRetries)
	}
	if c.Analyzer.Concurrency < 1 {
		return fmt.Errorf("analyzer.concurrency must be at least 1, got %d", c.Analyzer.Concurrency)
	}
	return nil
}
