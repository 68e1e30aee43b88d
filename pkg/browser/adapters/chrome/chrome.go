// Package chrome implements the browser driver port on top of the
// chromedp Chrome DevTools Protocol bindings. All page control is
// delegated to chromedp and the browser; this package only translates
// between the port's types and chromedp actions.
package chrome

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/odvcencio/browserd/pkg/browser"
)

// Driver launches chromedp-backed sessions.
type Driver struct {
	logger *zap.Logger
}

// NewDriver creates a chrome driver.
func NewDriver(logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{logger: logger}
}

// NewSession launches a browser and returns a live session. The
// session owns its own contexts; it outlives the caller's ctx.
func (d *Driver) NewSession(ctx context.Context, cfg browser.SessionConfig) (browser.Session, error) {
	if d == nil {
		return nil, browser.ErrNoSession
	}
	if cfg.Viewport.Width <= 0 || cfg.Viewport.Height <= 0 {
		cfg.Viewport = browser.DefaultSessionConfig().Viewport
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.WindowSize(cfg.Viewport.Width, cfg.Viewport.Height),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if cfg.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(cfg.UserAgent))
	}
	if cfg.ProxyURL != "" {
		opts = append(opts, chromedp.ProxyServer(cfg.ProxyURL))
	}

	logger := d.logger.With(zap.String("component", "chrome"))

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	// First Run launches the browser process.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, browser.WrapDriverError("launch", "failed to start browser", err)
	}

	logger.Info("browser launched",
		zap.Bool("headless", cfg.Headless),
		zap.Int("viewport_w", cfg.Viewport.Width),
		zap.Int("viewport_h", cfg.Viewport.Height))

	return &Session{
		ctx:         tabCtx,
		cancel:      tabCancel,
		allocCancel: allocCancel,
		cfg:         cfg,
		logger:      logger,
	}, nil
}
