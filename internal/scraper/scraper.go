package scraper

import (
	"context"
	"errors"

	"github.com/williampepple1/vibe-scout/pkg/models"
)

var (
	// ErrRateLimited marks an attempt answered with HTTP 429
	ErrRateLimited = errors.New("rate limited (HTTP 429)")
	// ErrLoginWall marks an attempt blocked by the anonymous-access login form
	ErrLoginWall = errors.New("login required: anonymous access blocked")
	// ErrHTTPStatus marks an attempt answered with a non-success status
	ErrHTTPStatus = errors.New("unexpected HTTP status")
)

// Scraper defines the interface for a location scraper.
// Scrape never returns an error; failures are encoded in the result.
type Scraper interface {
	Scrape(ctx context.Context, locationURL string, maxItems int) models.ScrapeResult
}
