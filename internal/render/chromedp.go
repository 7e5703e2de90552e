package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight);`

// ChromedpConfig controls the headless browser session.
type ChromedpConfig struct {
	// Settle is how long to wait after scrolling for lazy content to load.
	Settle time.Duration
	// Timeout bounds the whole session. Zero means no limit.
	Timeout   time.Duration
	UserAgent string
	// ExecPath overrides the Chrome binary lookup.
	ExecPath string
}

// ChromedpRenderer renders pages using headless Chrome via chromedp.
// Each Render call starts and stops its own browser process.
type ChromedpRenderer struct {
	cfg    ChromedpConfig
	logger *zap.Logger
}

// NewChromedp creates a renderer backed by chromedp.
func NewChromedp(cfg ChromedpConfig, logger *zap.Logger) (*ChromedpRenderer, error) {
	if cfg.Settle < 0 {
		return nil, fmt.Errorf("settle duration must be >= 0")
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromedpRenderer{cfg: cfg, logger: logger}, nil
}

// Render navigates to url, scrolls to the bottom, waits for the page to
// settle, and returns the outer HTML of the document.
func (r *ChromedpRenderer) Render(ctx context.Context, url string) (string, error) {
	if r == nil {
		return "", ErrRendererDisabled
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	taskCtx := browserCtx
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		taskCtx, cancel = context.WithTimeout(browserCtx, r.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	r.logger.Info("browser session starting", zap.String("url", url))

	var html string
	if err := chromedp.Run(taskCtx, r.tasks(url, &html)); err != nil {
		return "", fmt.Errorf("chromedp run: %w", err)
	}

	r.logger.Info("page rendered",
		zap.String("url", url),
		zap.Int("bytes", len(html)),
		zap.Duration("duration", time.Since(start)),
	)
	return html, nil
}

func (r *ChromedpRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("enable-automation", false),
	)
	if r.cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ExecPath))
	}
	return opts
}

func (r *ChromedpRenderer) tasks(url string, html *string) chromedp.Tasks {
	tasks := chromedp.Tasks{}
	if r.cfg.UserAgent != "" {
		tasks = append(tasks, emulation.SetUserAgentOverride(r.cfg.UserAgent))
	}
	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(scrollToBottomJS, nil),
	)
	if r.cfg.Settle > 0 {
		tasks = append(tasks, chromedp.Sleep(r.cfg.Settle))
	}
	tasks = append(tasks, chromedp.OuterHTML("html", html, chromedp.ByQuery))
	return tasks
}
