package scraper

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/williampepple1/vibe-scout/internal/browser"
	"github.com/williampepple1/vibe-scout/internal/config"
	"github.com/williampepple1/vibe-scout/internal/extraction"
	"github.com/williampepple1/vibe-scout/internal/logger"
	"github.com/williampepple1/vibe-scout/internal/proxy"
	"github.com/williampepple1/vibe-scout/pkg/models"
)

const scrollToBottomScript = "window.scrollTo(0, document.body.scrollHeight)"

// LocationScraper scrapes recent posts from a location page through a headless browser
type LocationScraper struct {
	Config *config.ScraperConfig

	browserConfig *config.BrowserConfig
	browser       browser.Browser
	proxies       *proxy.Manager
	extractor     *extraction.Extractor
	log           logger.Logger
	sleep         func(ctx context.Context, d time.Duration) error
	now           func() time.Time

	randMu sync.Mutex
	rand   *rand.Rand
}

// Option customizes a LocationScraper
type Option func(*LocationScraper)

// WithRand sets the random source used for jitter and user-agent selection
func WithRand(r *rand.Rand) Option {
	return func(s *LocationScraper) { s.rand = r }
}

// WithSleep replaces the context-aware sleep used for jitter and backoff
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *LocationScraper) { s.sleep = sleep }
}

// WithClock sets the clock used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *LocationScraper) { s.now = now }
}

// WithLogger sets the logger
func WithLogger(log logger.Logger) Option {
	return func(s *LocationScraper) { s.log = log }
}

// WithProxies sets the proxy manager consulted for every session
func WithProxies(m *proxy.Manager) Option {
	return func(s *LocationScraper) { s.proxies = m }
}

// NewLocationScraper creates a new location scraper
func NewLocationScraper(cfg *config.AppConfig, b browser.Browser, opts ...Option) *LocationScraper {
	s := &LocationScraper{
		Config:        &cfg.Scraper,
		browserConfig: &cfg.Browser,
		browser:       b,
		log:           logger.Nop(),
		sleep:         Sleep,
		now:           time.Now,
		rand:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.extractor = extraction.NewExtractor(s.now)
	return s
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Jitter returns a random delay in [min(1s, base), base]
func Jitter(r *rand.Rand, base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	lo := time.Second
	if base < lo {
		lo = base
	}
	return lo + time.Duration(r.Int63n(int64(base-lo)+1))
}

// Scrape fetches up to maxItems posts from locationURL, retrying with linear
// backoff. A 429 waits RateLimitBackoff*attempt, any other failure waits
// RetryBackoff*attempt.
func (s *LocationScraper) Scrape(ctx context.Context, locationURL string, maxItems int) models.ScrapeResult {
	maxRetries := s.Config.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	log := s.log.With(logger.Fields{"location_url": locationURL})
	var lastErr error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Infof("navigating to %s (attempt %d/%d)", locationURL, attempt, maxRetries)

		name, items, err := s.attempt(ctx, locationURL, maxItems)
		if err == nil {
			return models.ScrapeResult{
				LocationURL:  locationURL,
				LocationName: name,
				MediaItems:   items,
				ScrapedAt:    s.now().UTC(),
				Success:      true,
				Attempts:     attempt,
			}
		}
		lastErr = err

		wait := s.Config.RetryBackoff * time.Duration(attempt)
		switch {
		case errors.Is(err, ErrRateLimited):
			log.Warnf("rate limited on attempt %d", attempt)
			wait = s.Config.RateLimitBackoff * time.Duration(attempt)
		case errors.Is(err, ErrLoginWall):
			log.Warnf("login wall detected on attempt %d", attempt)
			if s.Config.FailFastOnLoginWall {
				return s.failure(locationURL, attempt, err)
			}
		default:
			log.Warnf("attempt %d failed: %v", attempt, err)
		}

		if attempt == maxRetries {
			return s.failure(locationURL, attempt, lastErr)
		}
		if err := s.sleep(ctx, wait); err != nil {
			return s.failure(locationURL, attempt, fmt.Errorf("%v; retry aborted: %w", lastErr, err))
		}
	}

	return s.failure(locationURL, maxRetries, lastErr)
}

func (s *LocationScraper) failure(locationURL string, attempts int, err error) models.ScrapeResult {
	msg := "max retries exceeded"
	switch {
	case err == nil:
	case errors.Is(err, ErrRateLimited):
		msg = fmt.Sprintf("max retries exceeded: %v", err)
	default:
		msg = err.Error()
	}
	return models.ScrapeResult{
		LocationURL: locationURL,
		MediaItems:  []models.MediaReference{},
		ScrapedAt:   s.now().UTC(),
		Success:     false,
		Err:         msg,
		Attempts:    attempts,
	}
}

// attempt runs one browser session end to end. The session is closed on every
// return path, including panics raised by the browser implementation.
func (s *LocationScraper) attempt(ctx context.Context, locationURL string, maxItems int) (name *string, items []models.MediaReference, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scrape attempt panicked: %v", r)
		}
	}()

	userAgent := s.pickUserAgent()
	proxyServer, err := s.proxies.Server()
	if err != nil {
		return nil, nil, err
	}

	session, err := s.browser.Launch(ctx, browser.LaunchOptions{
		Headless:  s.browserConfig.Headless,
		ExecPath:  s.browserConfig.ExecPath,
		Proxy:     proxyServer,
		UserAgent: userAgent,
		Args:      browser.StealthArgs,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			s.log.Warnf("closing browser session: %v", cerr)
		}
	}()

	page, err := session.NewPage(ctx, browser.PageOptions{
		ViewportWidth:  s.Config.ViewportWidth,
		ViewportHeight: s.Config.ViewportHeight,
		UserAgent:      userAgent,
		Locale:         s.Config.Locale,
		Timezone:       s.Config.Timezone,
		InitScripts:    []string{browser.StealthScript},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open page: %w", err)
	}

	if err := s.sleep(ctx, s.jitter()); err != nil {
		return nil, nil, err
	}

	status, err := page.Goto(ctx, locationURL, s.Config.NavigationTimeout)
	if err != nil {
		return nil, nil, err
	}
	if status == 429 {
		return nil, nil, ErrRateLimited
	}
	if status != 0 && (status < 200 || status > 299) {
		return nil, nil, fmt.Errorf("%w: HTTP %d", ErrHTTPStatus, status)
	}

	doc, err := page.Document(ctx)
	if err != nil {
		return nil, nil, err
	}
	if extraction.HasLoginWall(doc) {
		return nil, nil, ErrLoginWall
	}
	name = extraction.LocationName(doc)

	items, err = s.extract(ctx, page, maxItems)
	if err != nil {
		return nil, nil, err
	}

	if len(items) == 0 {
		if err := page.Evaluate(ctx, scrollToBottomScript); err != nil {
			return nil, nil, fmt.Errorf("scroll: %w", err)
		}
		if err := page.Wait(ctx, s.Config.SettleTime); err != nil {
			return nil, nil, err
		}
		items, err = s.extract(ctx, page, maxItems)
		if err != nil {
			return nil, nil, err
		}
	}

	return name, items, nil
}

func (s *LocationScraper) extract(ctx context.Context, page browser.Page, maxItems int) ([]models.MediaReference, error) {
	if err := page.Wait(ctx, s.Config.SettleTime); err != nil {
		return nil, err
	}
	doc, err := page.Document(ctx)
	if err != nil {
		return nil, err
	}
	return s.extractor.ExtractMedia(doc, maxItems), nil
}

func (s *LocationScraper) jitter() time.Duration {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return Jitter(s.rand, s.Config.BaseDelay)
}

func (s *LocationScraper) pickUserAgent() string {
	agents := s.Config.UserAgents
	if len(agents) == 0 {
		agents = config.DefaultUserAgents
	}
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return agents[s.rand.Intn(len(agents))]
}
