// Package scout composes scraping, scoring and aggregation into a Report.
package scout

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/williampepple1/vibe-scout/internal/aggregate"
	"github.com/williampepple1/vibe-scout/internal/logger"
	"github.com/williampepple1/vibe-scout/pkg/models"
)

const (
	msgNoPosts      = "No posts found at this location"
	msgNoThumbnails = "No thumbnails available for analysis"
)

// Scraper produces media references for a location page
type Scraper interface {
	Scrape(ctx context.Context, locationURL string, maxItems int) models.ScrapeResult
}

// BatchAnalyzer scores a list of image URLs
type BatchAnalyzer interface {
	AnalyzeBatch(ctx context.Context, imageURLs []string, concurrency int) []models.VibeScore
}

// Engine runs the scrape, score and aggregate pipeline for one location
type Engine struct {
	scraper     Scraper
	analyzer    BatchAnalyzer
	concurrency int
	log         logger.Logger
	now         func() time.Time
	newID       func() string
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithClock sets the clock used for report timestamps
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRunID sets the run ID generator
func WithRunID(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates an engine. concurrency bounds in-flight classifier calls.
func NewEngine(s Scraper, a BatchAnalyzer, concurrency int, opts ...Option) *Engine {
	e := &Engine{
		scraper:     s,
		analyzer:    a,
		concurrency: concurrency,
		log:         logger.Nop(),
		now:         time.Now,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run scrapes locationURL for up to maxPosts posts and, when analyze is set,
// scores their thumbnails and summarizes the venue.
func (e *Engine) Run(ctx context.Context, locationURL string, maxPosts int, analyze bool) models.Report {
	runID := e.newID()
	log := e.log.With(logger.Fields{"run_id": runID, "location": locationURL})

	log.Infof("[1/3] scraping up to %d posts", maxPosts)
	scraped := e.scraper.Scrape(ctx, locationURL, maxPosts)

	report := models.Report{
		RunID:        runID,
		Success:      scraped.Success,
		LocationURL:  locationURL,
		LocationName: scraped.LocationName,
		PostCount:    len(scraped.MediaItems),
		Posts:        scraped.MediaItems,
		Analyses:     []models.VibeScore{},
		ScrapedAt:    scraped.ScrapedAt,
	}
	if report.ScrapedAt.IsZero() {
		report.ScrapedAt = e.now().UTC()
	}
	if report.Posts == nil {
		report.Posts = []models.MediaReference{}
	}

	if !scraped.Success {
		log.Errorf("scrape failed after %d attempts: %s", scraped.Attempts, scraped.Err)
		report.Err = scraped.Err
		return report
	}

	if len(scraped.MediaItems) == 0 {
		log.Warnf("no posts found")
		report.Message = msgNoPosts
		return report
	}
	log.Infof("found %d posts", len(scraped.MediaItems))

	if !analyze {
		return report
	}

	urls := thumbnails(scraped.MediaItems)
	if len(urls) == 0 {
		log.Warnf("no thumbnails to analyze")
		report.Message = msgNoThumbnails
		return report
	}

	log.Infof("[2/3] analyzing %d images with concurrency %d", len(urls), e.concurrency)
	report.Analyses = e.analyzer.AnalyzeBatch(ctx, urls, e.concurrency)

	log.Infof("[3/3] aggregating vibe scores")
	summary := aggregate.Summarize(report.Analyses)
	report.VibeSummary = &summary

	log.With(logger.Fields{
		"avg_energy":    summary.AvgEnergy,
		"avg_crowd":     summary.AvgCrowd,
		"top_vibe_tags": summary.TopVibeTags,
		"status":        summary.Status,
		"sample_size":   summary.SampleSize,
	}).Infof("vibe: energy %.1f/10, crowd %.1f/10, top vibes %s, status %s",
		summary.AvgEnergy, summary.AvgCrowd, strings.Join(summary.TopVibeTags, ", "), summary.Status)

	return report
}

func thumbnails(items []models.MediaReference) []string {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		if item.ThumbnailURL != "" {
			urls = append(urls, item.ThumbnailURL)
		}
	}
	return urls
}
