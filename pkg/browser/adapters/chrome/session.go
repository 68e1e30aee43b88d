package chrome

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/odvcencio/browserd/pkg/browser"
)

// Session drives a single browser tab over CDP. Methods run their
// chromedp actions against the session's tab context; the caller's ctx
// only bounds how long we wait.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	cfg         browser.SessionConfig
	logger      *zap.Logger

	mu     sync.Mutex
	closed bool
}

func (s *Session) ensureOpen() error {
	if s == nil {
		return browser.ErrSessionClosed
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return browser.ErrSessionClosed
	}
	return nil
}

// run executes chromedp actions against the tab, bounded by the
// caller's deadline or the configured operation timeout.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := s.ensureOpen(); err != nil {
		return err
	}

	timeout := s.cfg.OpTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}

	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(runCtx, actions...)
	}()
	select {
	case err := <-done:
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			return browser.ErrOperationTimeout
		}
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

// Navigate loads the URL and waits for the load to settle.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("navigating", zap.String("url", url))
	if err := s.run(ctx, chromedp.Navigate(url)); err != nil {
		return browser.WrapDriverError("navigate", "navigation failed", err)
	}
	return nil
}

// Back moves one entry back in tab history.
func (s *Session) Back(ctx context.Context) error {
	if err := s.run(ctx, chromedp.NavigateBack()); err != nil {
		return browser.WrapDriverError("back", "history back failed", err)
	}
	return nil
}

// Forward moves one entry forward in tab history.
func (s *Session) Forward(ctx context.Context) error {
	if err := s.run(ctx, chromedp.NavigateForward()); err != nil {
		return browser.WrapDriverError("forward", "history forward failed", err)
	}
	return nil
}

// Reload refreshes the current page.
func (s *Session) Reload(ctx context.Context) error {
	if err := s.run(ctx, chromedp.Reload()); err != nil {
		return browser.WrapDriverError("refresh", "reload failed", err)
	}
	return nil
}

// Location returns the current URL and document title.
func (s *Session) Location(ctx context.Context) (browser.Location, error) {
	var loc browser.Location
	err := s.run(ctx,
		chromedp.Location(&loc.URL),
		chromedp.Title(&loc.Title),
	)
	if err != nil {
		return browser.Location{}, browser.WrapDriverError("location", "failed to read location", err)
	}
	return loc, nil
}

// Screenshot captures the viewport as PNG.
func (s *Session) Screenshot(ctx context.Context) (*browser.Screenshot, error) {
	var buf []byte
	var loc browser.Location
	err := s.run(ctx,
		chromedp.CaptureScreenshot(&buf),
		chromedp.Location(&loc.URL),
		chromedp.Title(&loc.Title),
	)
	if err != nil {
		return nil, browser.WrapDriverError("screenshot", "screenshot failed", err)
	}
	return &browser.Screenshot{
		Data:      buf,
		URL:       loc.URL,
		Title:     loc.Title,
		Timestamp: time.Now(),
	}, nil
}

// Click clicks the first element matched by the selector. CDP element
// queries wait for a match, so a missing element surfaces as a timeout;
// that is reported as not-found rather than a generic driver failure.
func (s *Session) Click(ctx context.Context, sel browser.Selector) error {
	query, opt, err := resolveSelector(sel)
	if err != nil {
		return err
	}
	s.logger.Debug("clicking", zap.String("selector", query))
	if err := s.run(ctx, chromedp.Click(query, opt)); err != nil {
		return elementError("click", sel, err)
	}
	return nil
}

// Fill types a value into the matched element, clearing it first when
// requested.
func (s *Session) Fill(ctx context.Context, sel browser.Selector, value string, clear bool) error {
	query, opt, err := resolveSelector(sel)
	if err != nil {
		return err
	}

	actions := make([]chromedp.Action, 0, 2)
	if clear {
		actions = append(actions, chromedp.Clear(query, opt))
	}
	actions = append(actions, chromedp.SendKeys(query, value, opt))

	if err := s.run(ctx, actions...); err != nil {
		return elementError("fill", sel, err)
	}
	return nil
}

// Evaluate runs the script in the page and returns its result as raw
// JSON. Results the page cannot serialize come back as JSON null.
func (s *Session) Evaluate(ctx context.Context, script string) (json.RawMessage, error) {
	var raw []byte
	err := s.run(ctx, chromedp.Evaluate(script, &raw))
	if err != nil {
		if isUnserializable(err) {
			return json.RawMessage("null"), nil
		}
		return nil, browser.WrapDriverError("execute", "script execution failed", err)
	}
	if len(raw) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(raw), nil
}

// Source returns the serialized HTML of the current document.
func (s *Session) Source(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", browser.WrapDriverError("source", "failed to read page source", err)
	}
	return html, nil
}

// Links lists anchors with a non-empty href, capped at 100.
func (s *Session) Links(ctx context.Context) ([]browser.Link, error) {
	links := []browser.Link{}
	if err := s.run(ctx, chromedp.Evaluate(linksJS, &links)); err != nil {
		return nil, browser.WrapDriverError("links", "link scan failed", err)
	}
	return links, nil
}

// FormFields lists inputs, textareas and selects in document order.
func (s *Session) FormFields(ctx context.Context) ([]browser.FormField, error) {
	fields := []browser.FormField{}
	if err := s.run(ctx, chromedp.Evaluate(formsJS, &fields)); err != nil {
		return nil, browser.WrapDriverError("forms", "form scan failed", err)
	}
	return fields, nil
}

// Buttons lists button elements and submit inputs.
func (s *Session) Buttons(ctx context.Context) ([]browser.Button, error) {
	buttons := []browser.Button{}
	if err := s.run(ctx, chromedp.Evaluate(buttonsJS, &buttons)); err != nil {
		return nil, browser.WrapDriverError("buttons", "button scan failed", err)
	}
	return buttons, nil
}

// Close tears down the tab and the browser process.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.logger.Info("closing browser")
	s.cancel()
	s.allocCancel()
	return nil
}

func elementError(op string, sel browser.Selector, err error) error {
	if errors.Is(err, browser.ErrOperationTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return browser.WrapDriverError("not_found",
			"element not found: "+sel.Value, browser.ErrElementNotFound)
	}
	return browser.WrapDriverError(op, op+" failed", err)
}

// isUnserializable matches chromedp's errors for script results that
// have no JSON representation (undefined, functions, DOM nodes).
func isUnserializable(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "undefined") ||
		strings.Contains(msg, "unserializable") ||
		strings.Contains(msg, "Object reference chain is too long")
}
