package browser

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Holder owns the process-wide browser session: at most one live
// Session, created on Start and released on Stop. All driver access
// goes through the holder so concurrent requests against the single
// handle are serialized; there is no queuing or ordering guarantee
// beyond mutual exclusion.
type Holder struct {
	driver Driver
	cfg    SessionConfig
	logger *zap.Logger

	mu   sync.Mutex
	sess Session
}

// NewHolder creates a Holder backed by the provided driver.
func NewHolder(driver Driver, cfg SessionConfig, logger *zap.Logger) *Holder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Holder{
		driver: driver,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "holder")),
	}
}

// Start creates the browser session if none exists. Starting an
// already-running holder is a success no-op; the second return value
// reports whether a new session was created.
func (h *Holder) Start(ctx context.Context) (bool, error) {
	if h == nil || h.driver == nil {
		return false, ErrNoSession
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sess != nil {
		return false, nil
	}

	start := time.Now()
	sess, err := h.driver.NewSession(ctx, h.cfg)
	if err != nil {
		recordSessionStart(false)
		return false, err
	}
	h.sess = sess
	recordSessionStart(true)
	h.logger.Info("browser session started",
		zap.Bool("headless", h.cfg.Headless),
		zap.Duration("took", time.Since(start)))
	return true, nil
}

// Stop releases the session if present. Stopping a stopped holder is a
// success no-op; the return value reports whether a session was closed.
func (h *Holder) Stop() (bool, error) {
	if h == nil {
		return false, nil
	}
	h.mu.Lock()
	sess := h.sess
	h.sess = nil
	h.mu.Unlock()

	if sess == nil {
		return false, nil
	}
	err := sess.Close()
	recordSessionStop()
	h.logger.Info("browser session stopped", zap.Error(err))
	return true, err
}

// Running reports whether a session is currently held.
func (h *Holder) Running() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sess != nil
}

// Status probes the live session for its current location. A probe
// failure means the browser died underneath us: the handle is cleared
// and ErrSessionClosed is returned so callers can report the death.
func (h *Holder) Status(ctx context.Context) (Status, error) {
	if h == nil {
		return Status{}, nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sess == nil {
		return Status{Running: false}, nil
	}

	loc, err := h.sess.Location(ctx)
	if err != nil {
		h.logger.Warn("session probe failed, dropping handle", zap.Error(err))
		_ = h.sess.Close()
		h.sess = nil
		recordSessionStop()
		return Status{}, WrapDriverError("session_died", "browser session died", ErrSessionClosed)
	}

	vp := h.cfg.Viewport
	return Status{
		Running:  true,
		URL:      loc.URL,
		Title:    loc.Title,
		Viewport: &vp,
	}, nil
}

// withSession runs fn against the live session under the holder lock.
func (h *Holder) withSession(op string, fn func(Session) error) error {
	if h == nil {
		return ErrNoSession
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sess == nil {
		return ErrNoSession
	}

	start := time.Now()
	err := fn(h.sess)
	recordOperation(op, err == nil, time.Since(start))
	return err
}

// Navigate loads a URL in the live session.
func (h *Holder) Navigate(ctx context.Context, url string) error {
	return h.withSession("navigate", func(s Session) error {
		return s.Navigate(ctx, url)
	})
}

// Back moves one step back in session history.
func (h *Holder) Back(ctx context.Context) error {
	return h.withSession("back", func(s Session) error {
		return s.Back(ctx)
	})
}

// Forward moves one step forward in session history.
func (h *Holder) Forward(ctx context.Context) error {
	return h.withSession("forward", func(s Session) error {
		return s.Forward(ctx)
	})
}

// Reload refreshes the current page.
func (h *Holder) Reload(ctx context.Context) error {
	return h.withSession("refresh", func(s Session) error {
		return s.Reload(ctx)
	})
}

// Location returns the current URL and title.
func (h *Holder) Location(ctx context.Context) (Location, error) {
	var loc Location
	err := h.withSession("location", func(s Session) (e error) {
		loc, e = s.Location(ctx)
		return e
	})
	return loc, err
}

// Screenshot captures the current page.
func (h *Holder) Screenshot(ctx context.Context) (*Screenshot, error) {
	var shot *Screenshot
	err := h.withSession("screenshot", func(s Session) (e error) {
		shot, e = s.Screenshot(ctx)
		return e
	})
	return shot, err
}

// Click clicks the element matched by the selector.
func (h *Holder) Click(ctx context.Context, sel Selector) error {
	return h.withSession("click", func(s Session) error {
		return s.Click(ctx, sel)
	})
}

// Fill types a value into the element matched by the selector.
func (h *Holder) Fill(ctx context.Context, sel Selector, value string, clear bool) error {
	return h.withSession("fill", func(s Session) error {
		return s.Fill(ctx, sel, value, clear)
	})
}

// Evaluate runs a script in the page and returns its JSON-encoded result.
func (h *Holder) Evaluate(ctx context.Context, script string) (json.RawMessage, error) {
	var result json.RawMessage
	err := h.withSession("execute", func(s Session) (e error) {
		result, e = s.Evaluate(ctx, script)
		return e
	})
	return result, err
}

// Source returns the serialized HTML of the current document.
func (h *Holder) Source(ctx context.Context) (string, error) {
	var src string
	err := h.withSession("source", func(s Session) (e error) {
		src, e = s.Source(ctx)
		return e
	})
	return src, err
}

// Links lists anchors on the current page.
func (h *Holder) Links(ctx context.Context) ([]Link, error) {
	var links []Link
	err := h.withSession("links", func(s Session) (e error) {
		links, e = s.Links(ctx)
		return e
	})
	return links, err
}

// FormFields lists form controls on the current page.
func (h *Holder) FormFields(ctx context.Context) ([]FormField, error) {
	var fields []FormField
	err := h.withSession("forms", func(s Session) (e error) {
		fields, e = s.FormFields(ctx)
		return e
	})
	return fields, err
}

// Buttons lists buttons on the current page.
func (h *Holder) Buttons(ctx context.Context) ([]Button, error) {
	var buttons []Button
	err := h.withSession("buttons", func(s Session) (e error) {
		buttons, e = s.Buttons(ctx)
		return e
	})
	return buttons, err
}

// Close is Stop with the error swallowed, for defer chains.
func (h *Holder) Close() error {
	_, err := h.Stop()
	return err
}
