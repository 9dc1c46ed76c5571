// Package browser defines the headless browser capability the location scraper
// depends on and provides a chromedp implementation of it.
package browser

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// LaunchOptions configures a browser process
type LaunchOptions struct {
	Headless  bool
	ExecPath  string
	Proxy     string
	UserAgent string
	Args      map[string]interface{}
}

// PageOptions configures the fingerprint of a new page
type PageOptions struct {
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	Locale         string
	Timezone       string
	InitScripts    []string
}

// Browser launches sessions
type Browser interface {
	Launch(ctx context.Context, opts LaunchOptions) (Session, error)
}

// Session is one browser process. It is owned by a single scrape attempt and
// must be closed on every exit path.
type Session interface {
	NewPage(ctx context.Context, opts PageOptions) (Page, error)
	Close() error
}

// Page is a single tab
type Page interface {
	// Goto navigates to url and waits for the network to go quiet.
	// It returns the HTTP status of the main document, or 0 when the browser
	// reported no response.
	Goto(ctx context.Context, url string, timeout time.Duration) (int, error)
	// Document returns a snapshot of the current DOM.
	Document(ctx context.Context) (*goquery.Document, error)
	Evaluate(ctx context.Context, script string) error
	Wait(ctx context.Context, d time.Duration) error
}
