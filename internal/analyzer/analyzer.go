// Package analyzer scores venue images with an external vision classifier.
//
// Every public entry point returns a VibeScore and never an error: fetch,
// classifier and parse failures all degrade to a zero-confidence score so a
// single bad image cannot abort a batch.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/williampepple1/vibe-scout/internal/config"
	"github.com/williampepple1/vibe-scout/internal/fetcher"
	"github.com/williampepple1/vibe-scout/internal/logger"
	"github.com/williampepple1/vibe-scout/internal/worker"
	"github.com/williampepple1/vibe-scout/pkg/models"
)

// ImageFetcher downloads an image
type ImageFetcher interface {
	Fetch(ctx context.Context, imageURL string) (fetcher.Image, error)
}

// Classifier submits an image and an instruction and returns the raw reply text
type Classifier interface {
	Classify(ctx context.Context, img fetcher.Image, prompt string) (string, error)
}

// Analyzer scores images one at a time or in paced batches
type Analyzer struct {
	fetcher    ImageFetcher
	classifier Classifier
	pacing     time.Duration
	limiter    *rate.Limiter
	log        logger.Logger
}

// Option customizes an Analyzer
type Option func(*Analyzer)

// WithLogger sets the logger
func WithLogger(log logger.Logger) Option {
	return func(a *Analyzer) { a.log = log }
}

// WithPacing overrides the delay a batch slot waits after each call
func WithPacing(d time.Duration) Option {
	return func(a *Analyzer) { a.pacing = d }
}

// New creates an analyzer
func New(cfg *config.AnalyzerConfig, f ImageFetcher, c Classifier, opts ...Option) *Analyzer {
	a := &Analyzer{
		fetcher:    f,
		classifier: c,
		pacing:     cfg.Pacing,
		limiter:    worker.LimiterPerMinute(cfg.RequestsPerMinute),
		log:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores a single image URL
func (a *Analyzer) Analyze(ctx context.Context, imageURL string) (score models.VibeScore) {
	defer func() {
		if r := recover(); r != nil {
			score = Degraded(imageURL, "Analysis failed", fmt.Sprint(r))
		}
		score = Normalize(score)
	}()

	img, err := a.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		a.log.Warnf("fetching %s: %v", imageURL, err)
		if errors.Is(err, fetcher.ErrFetch) {
			return Degraded(imageURL, "Failed to fetch image", fmt.Sprintf("fetch error: %v", err))
		}
		return Degraded(imageURL, "Analysis failed", err.Error())
	}

	text, err := a.classifier.Classify(ctx, img, VibePrompt)
	if err != nil {
		a.log.Warnf("classifying %s: %v", imageURL, err)
		return Degraded(imageURL, "Analysis failed", err.Error())
	}

	score = ParseReply(imageURL, text)
	if !score.Success {
		a.log.Warnf("unparseable reply for %s: %s", imageURL, *score.Err)
	}
	return score
}

// AnalyzeBatch scores every URL with at most concurrency calls in flight.
// Results are in input order.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, imageURLs []string, concurrency int) []models.VibeScore {
	pool := worker.NewPool(concurrency, a.pacing, a.Analyze)
	pool.Log = a.log
	pool.Limiter = a.limiter
	pool.OnLimiterError = func(imageURL string, err error) models.VibeScore {
		return Degraded(imageURL, "Analysis failed", err.Error())
	}
	return pool.Run(ctx, imageURLs)
}
