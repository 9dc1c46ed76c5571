package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Chromedp launches Chrome through chromedp
type Chromedp struct{}

// NewChromedp creates a chromedp-backed Browser
func NewChromedp() *Chromedp {
	return &Chromedp{}
}

// Launch creates a new ExecAllocator. The browser process itself is started
// lazily by the first page.
func (b *Chromedp) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, allocatorOptions(opts)...)
	return &chromedpSession{allocCtx: allocCtx, cancels: []context.CancelFunc{cancel}}, nil
}

func allocatorOptions(opts LaunchOptions) []chromedp.ExecAllocatorOption {
	options := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
	)
	for name, value := range opts.Args {
		options = append(options, chromedp.Flag(name, value))
	}
	if opts.ExecPath != "" {
		options = append(options, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		options = append(options, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		options = append(options, chromedp.ProxyServer(opts.Proxy))
	}
	return options
}

type chromedpSession struct {
	mu       sync.Mutex
	allocCtx context.Context
	cancels  []context.CancelFunc
	closed   bool
}

func (s *chromedpSession) NewPage(ctx context.Context, opts PageOptions) (Page, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("browser session closed")
	}
	tabCtx, cancel := chromedp.NewContext(s.allocCtx)
	s.cancels = append(s.cancels, cancel)
	s.mu.Unlock()

	actions := []chromedp.Action{
		page.SetLifecycleEventsEnabled(true),
	}
	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		actions = append(actions, emulation.SetDeviceMetricsOverride(int64(opts.ViewportWidth), int64(opts.ViewportHeight), 1, false))
	}
	if opts.UserAgent != "" {
		ua := emulation.SetUserAgentOverride(opts.UserAgent)
		if opts.Locale != "" {
			ua = ua.WithAcceptLanguage(opts.Locale)
		}
		actions = append(actions, ua)
	}
	if opts.Locale != "" {
		actions = append(actions, emulation.SetLocaleOverride().WithLocale(strings.ReplaceAll(opts.Locale, "-", "_")))
	}
	if opts.Timezone != "" {
		actions = append(actions, emulation.SetTimezoneOverride(opts.Timezone))
	}
	for _, script := range opts.InitScripts {
		src := script
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(src).Do(ctx)
			return err
		}))
	}

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return nil, fmt.Errorf("prepare page: %w", err)
	}

	// The main frame of a page target shares the target's ID
	var frameID cdp.FrameID
	if c := chromedp.FromContext(tabCtx); c != nil && c.Target != nil {
		frameID = cdp.FrameID(c.Target.TargetID)
	}
	return &chromedpPage{ctx: tabCtx, frameID: frameID}, nil
}

// Close tears down every tab and the browser process
func (s *chromedpSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for i := len(s.cancels) - 1; i >= 0; i-- {
		s.cancels[i]()
	}
	return nil
}

type chromedpPage struct {
	ctx     context.Context
	frameID cdp.FrameID
}

// idleWatcher reports networkIdle for the document a navigation loads into
// the main frame. Events from subframes and from the previous document are
// ignored.
type idleWatcher struct {
	mu      sync.Mutex
	frameID cdp.FrameID
	loader  cdp.LoaderID
}

func (w *idleWatcher) observe(ev *page.EventLifecycleEvent) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.frameID != "" && ev.FrameID != w.frameID {
		return false
	}
	switch ev.Name {
	case "init":
		w.loader = ev.LoaderID
	case "networkIdle":
		return w.loader != "" && ev.LoaderID == w.loader
	}
	return false
}

// runCtx derives an action context from the tab that also honours caller cancellation
func (p *chromedpPage) runCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(p.ctx)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (p *chromedpPage) Goto(ctx context.Context, url string, timeout time.Duration) (int, error) {
	runCtx, cancel := p.runCtx(ctx)
	defer cancel()
	if timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, timeout)
		defer cancelTimeout()
	}

	idle := make(chan struct{}, 1)
	watcher := &idleWatcher{frameID: p.frameID}
	chromedp.ListenTarget(runCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventLifecycleEvent); ok && watcher.observe(e) {
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	resp, err := chromedp.RunResponse(runCtx, chromedp.Navigate(url))
	if err != nil {
		return 0, fmt.Errorf("navigate %s: %w", url, err)
	}

	select {
	case <-idle:
	case <-runCtx.Done():
		return 0, fmt.Errorf("navigate %s: waiting for network idle: %w", url, runCtx.Err())
	}

	if resp == nil {
		return 0, nil
	}
	return int(resp.Status), nil
}

func (p *chromedpPage) Document(ctx context.Context) (*goquery.Document, error) {
	runCtx, cancel := p.runCtx(ctx)
	defer cancel()

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (p *chromedpPage) Evaluate(ctx context.Context, script string) error {
	runCtx, cancel := p.runCtx(ctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Evaluate(script, nil))
}

func (p *chromedpPage) Wait(ctx context.Context, d time.Duration) error {
	runCtx, cancel := p.runCtx(ctx)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Sleep(d))
}
