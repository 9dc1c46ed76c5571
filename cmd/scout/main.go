package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/williampepple1/vibe-scout/internal/analyzer"
	"github.com/williampepple1/vibe-scout/internal/browser"
	"github.com/williampepple1/vibe-scout/internal/classifier"
	"github.com/williampepple1/vibe-scout/internal/config"
	"github.com/williampepple1/vibe-scout/internal/fetcher"
	"github.com/williampepple1/vibe-scout/internal/io"
	"github.com/williampepple1/vibe-scout/internal/logger"
	"github.com/williampepple1/vibe-scout/internal/proxy"
	"github.com/williampepple1/vibe-scout/internal/scout"
	"github.com/williampepple1/vibe-scout/internal/scraper"
	"github.com/williampepple1/vibe-scout/pkg/models"
)

func main() {
	// Define command-line flags
	configFile := flag.String("config", "", "Path to configuration file (YAML)")
	envFile := flag.String("env", ".env", "Path to a .env file with GEMINI_API_KEY and friends")
	inputFile := flag.String("input", "", "File containing location URLs (one per line)")
	outputFile := flag.String("output", "", "File to save the report to (default stdout)")
	maxPosts := flag.Int("max-posts", 10, "Maximum number of posts to scrape per location")
	noAnalyze := flag.Bool("no-analyze", false, "Only scrape, skip vibe analysis")
	concurrency := flag.Int("concurrency", 0, "Concurrent classifier calls (default from config)")
	scoreOnly := flag.Bool("score", false, "Treat arguments as image URLs and score them directly")
	headful := flag.Bool("headful", false, "Show the browser window")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <location_url>\n       %s -score [flags] <image_url>...\n\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load configuration
	appConfig := config.Default()
	if *configFile != "" {
		var err error
		appConfig, err = config.Load(*configFile)
		if err != nil {
			fatalf("Error loading configuration: %v", err)
		}
	}
	if err := appConfig.LoadEnv(*envFile); err != nil {
		fatalf("Error reading environment: %v", err)
	}

	// Override config with command-line flags if provided
	if *inputFile != "" {
		appConfig.IO.InputFile = *inputFile
	}
	if *outputFile != "" {
		appConfig.IO.OutputFile = *outputFile
	}
	if *concurrency > 0 {
		appConfig.Analyzer.Concurrency = *concurrency
	}
	if *headful {
		appConfig.Browser.Headless = false
	}

	if err := appConfig.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			fatalf("Error: %v", err)
		}
		fatalf("Invalid configuration: %v", err)
	}

	// Logs go to stderr so stdout carries only the report
	log := logger.NewWriter(appConfig.Logging.Level, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gemini, err := classifier.NewGemini(ctx, &appConfig.Analyzer, "")
	if err != nil {
		fatalf("Error creating classifier: %v", err)
	}
	vibes := analyzer.New(&appConfig.Analyzer, fetcher.NewHTTPFetcher(&appConfig.Analyzer), gemini,
		analyzer.WithLogger(log.With(logger.Fields{"component": "analyzer"})),
	)
	writer := io.NewResultWriter(&appConfig.IO)

	if *scoreOnly {
		if flag.NArg() == 0 {
			flag.Usage()
			os.Exit(2)
		}
		scores := vibes.AnalyzeBatch(ctx, flag.Args(), appConfig.Analyzer.Concurrency)
		if err := writer.Write(io.Payload(scores, false)); err != nil {
			fatalf("Error writing results: %v", err)
		}
		return
	}

	urlReader := io.NewURLReader(&appConfig.IO)
	urls, err := urlReader.GetURLs(flag.Args())
	if err != nil {
		if errors.Is(err, io.ErrNoLocations) {
			flag.Usage()
			os.Exit(2)
		}
		fatalf("Error reading URLs: %v", err)
	}

	locations := scraper.NewLocationScraper(appConfig, browser.NewChromedp(),
		scraper.WithLogger(log.With(logger.Fields{"component": "scraper"})),
		scraper.WithProxies(proxy.NewManager(&appConfig.Proxies, nil)),
	)
	engine := scout.NewEngine(locations, vibes, appConfig.Analyzer.Concurrency,
		scout.WithLogger(log.With(logger.Fields{"component": "engine"})),
	)

	reports := make([]models.Report, 0, len(urls))
	failures := 0
	for _, u := range urls {
		r := engine.Run(ctx, u, *maxPosts, !*noAnalyze)
		if !r.Success {
			failures++
		}
		reports = append(reports, r)
	}

	// One location from the command line keeps the single-object output shape
	if err := writer.Write(io.Payload(reports, appConfig.IO.InputFile != "")); err != nil {
		fatalf("Error writing results: %v", err)
	}

	log.Infof("processed %d locations, %d failed", len(reports), failures)
	if appConfig.IO.OutputFile != "" {
		log.Infof("results saved to %s", appConfig.IO.OutputFile)
	}
	if failures == len(reports) {
		stop()
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
