// Package browsertest provides a scriptable in-memory driver for
// exercising the holder, API and client without a real browser.
package browsertest

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/odvcencio/browserd/pkg/browser"
)

// FillCall records one Fill invocation.
type FillCall struct {
	Selector browser.Selector
	Value    string
	Clear    bool
}

// FakeSession implements browser.Session against canned data.
type FakeSession struct {
	mu sync.Mutex

	// Canned outputs.
	Loc        browser.Location
	Shot       *browser.Screenshot
	LinksOut   []browser.Link
	FieldsOut  []browser.FormField
	ButtonsOut []browser.Button
	EvalResult json.RawMessage
	SourceOut  string

	// Scripted failures.
	NavigateErr error
	LocationErr error
	ClickErr    error
	FillErr     error
	EvalErr     error

	// Recorded calls.
	Navigations []string
	Clicks      []browser.Selector
	Fills       []FillCall
	Scripts     []string
	CloseCount  int
}

var _ browser.Session = (*FakeSession)(nil)

func (f *FakeSession) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NavigateErr != nil {
		return f.NavigateErr
	}
	f.Navigations = append(f.Navigations, url)
	f.Loc.URL = url
	return nil
}

func (f *FakeSession) Back(ctx context.Context) error    { return nil }
func (f *FakeSession) Forward(ctx context.Context) error { return nil }
func (f *FakeSession) Reload(ctx context.Context) error  { return nil }

func (f *FakeSession) Location(ctx context.Context) (browser.Location, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LocationErr != nil {
		return browser.Location{}, f.LocationErr
	}
	return f.Loc, nil
}

func (f *FakeSession) Screenshot(ctx context.Context) (*browser.Screenshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Shot != nil {
		return f.Shot, nil
	}
	return &browser.Screenshot{Data: []byte("png"), URL: f.Loc.URL, Title: f.Loc.Title}, nil
}

func (f *FakeSession) Click(ctx context.Context, sel browser.Selector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ClickErr != nil {
		return f.ClickErr
	}
	f.Clicks = append(f.Clicks, sel)
	return nil
}

func (f *FakeSession) Fill(ctx context.Context, sel browser.Selector, value string, clear bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FillErr != nil {
		return f.FillErr
	}
	f.Fills = append(f.Fills, FillCall{Selector: sel, Value: value, Clear: clear})
	return nil
}

func (f *FakeSession) Evaluate(ctx context.Context, script string) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.EvalErr != nil {
		return nil, f.EvalErr
	}
	f.Scripts = append(f.Scripts, script)
	if f.EvalResult == nil {
		return json.RawMessage("null"), nil
	}
	return f.EvalResult, nil
}

func (f *FakeSession) Source(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.SourceOut, nil
}

func (f *FakeSession) Links(ctx context.Context) ([]browser.Link, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.LinksOut, nil
}

func (f *FakeSession) FormFields(ctx context.Context) ([]browser.FormField, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.FieldsOut, nil
}

func (f *FakeSession) Buttons(ctx context.Context) ([]browser.Button, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ButtonsOut, nil
}

func (f *FakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CloseCount++
	return nil
}

// FakeDriver hands out a fixed session.
type FakeDriver struct {
	mu sync.Mutex

	Sess       *FakeSession
	LaunchErr  error
	LaunchCnt  int
	LastConfig browser.SessionConfig
}

var _ browser.Driver = (*FakeDriver)(nil)

// NewDriver creates a FakeDriver around the given session. A nil
// session gets a zero-value FakeSession.
func NewDriver(sess *FakeSession) *FakeDriver {
	if sess == nil {
		sess = &FakeSession{}
	}
	return &FakeDriver{Sess: sess}
}

func (d *FakeDriver) NewSession(ctx context.Context, cfg browser.SessionConfig) (browser.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.LaunchCnt++
	d.LastConfig = cfg
	if d.LaunchErr != nil {
		return nil, d.LaunchErr
	}
	return d.Sess, nil
}

// Launches reports how many sessions were requested.
func (d *FakeDriver) Launches() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.LaunchCnt
}
