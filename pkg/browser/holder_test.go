package browser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/odvcencio/browserd/pkg/browser"
	"github.com/odvcencio/browserd/pkg/browser/browsertest"
)

func TestHolderStartIsIdempotent(t *testing.T) {
	driver := browsertest.NewDriver(nil)
	holder := browser.NewHolder(driver, browser.DefaultSessionConfig(), nil)
	ctx := context.Background()

	created, err := holder.Start(ctx)
	if err != nil {
		t.Fatalf("first start failed: %v", err)
	}
	if !created {
		t.Error("expected first start to create a session")
	}

	created, err = holder.Start(ctx)
	if err != nil {
		t.Fatalf("second start failed: %v", err)
	}
	if created {
		t.Error("expected second start to be a no-op")
	}
	if got := driver.Launches(); got != 1 {
		t.Errorf("expected 1 launch, got %d", got)
	}
}

func TestHolderStopIsNoOpWhenStopped(t *testing.T) {
	holder := browser.NewHolder(browsertest.NewDriver(nil), browser.DefaultSessionConfig(), nil)

	stopped, err := holder.Stop()
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if stopped {
		t.Error("expected stop of a stopped holder to report no session")
	}
}

func TestHolderStopClosesSession(t *testing.T) {
	sess := &browsertest.FakeSession{}
	holder := browser.NewHolder(browsertest.NewDriver(sess), browser.DefaultSessionConfig(), nil)
	ctx := context.Background()

	if _, err := holder.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	stopped, err := holder.Stop()
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if !stopped {
		t.Error("expected stop to close the live session")
	}
	if sess.CloseCount != 1 {
		t.Errorf("expected 1 close, got %d", sess.CloseCount)
	}
	if holder.Running() {
		t.Error("holder still reports running after stop")
	}
}

func TestHolderOperationsRequireSession(t *testing.T) {
	holder := browser.NewHolder(browsertest.NewDriver(nil), browser.DefaultSessionConfig(), nil)
	ctx := context.Background()

	if err := holder.Navigate(ctx, "https://example.com"); !errors.Is(err, browser.ErrNoSession) {
		t.Errorf("navigate: expected ErrNoSession, got %v", err)
	}
	if err := holder.Click(ctx, browser.Selector{Type: browser.SelectorCSS, Value: "#go"}); !errors.Is(err, browser.ErrNoSession) {
		t.Errorf("click: expected ErrNoSession, got %v", err)
	}
	if _, err := holder.Links(ctx); !errors.Is(err, browser.ErrNoSession) {
		t.Errorf("links: expected ErrNoSession, got %v", err)
	}
	if _, err := holder.Evaluate(ctx, "1+1"); !errors.Is(err, browser.ErrNoSession) {
		t.Errorf("execute: expected ErrNoSession, got %v", err)
	}
}

func TestHolderStatusReflectsNavigation(t *testing.T) {
	sess := &browsertest.FakeSession{}
	holder := browser.NewHolder(browsertest.NewDriver(sess), browser.DefaultSessionConfig(), nil)
	ctx := context.Background()

	st, err := holder.Status(ctx)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if st.Running {
		t.Error("expected stopped status before start")
	}

	if _, err := holder.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := holder.Navigate(ctx, "https://example.com/page"); err != nil {
		t.Fatalf("navigate failed: %v", err)
	}

	st, err = holder.Status(ctx)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !st.Running {
		t.Fatal("expected running status after start")
	}
	if st.URL != "https://example.com/page" {
		t.Errorf("expected status URL to reflect navigation, got %q", st.URL)
	}
}

func TestHolderStatusDropsDeadSession(t *testing.T) {
	sess := &browsertest.FakeSession{LocationErr: errors.New("tab crashed")}
	holder := browser.NewHolder(browsertest.NewDriver(sess), browser.DefaultSessionConfig(), nil)
	ctx := context.Background()

	if _, err := holder.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	_, err := holder.Status(ctx)
	if !errors.Is(err, browser.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed from dead probe, got %v", err)
	}
	if holder.Running() {
		t.Error("holder kept a dead handle")
	}
	if sess.CloseCount != 1 {
		t.Errorf("expected dead session to be closed, got %d closes", sess.CloseCount)
	}
}

func TestHolderStartFailurePropagates(t *testing.T) {
	driver := browsertest.NewDriver(nil)
	driver.LaunchErr = errors.New("chrome not found")
	holder := browser.NewHolder(driver, browser.DefaultSessionConfig(), nil)

	if _, err := holder.Start(context.Background()); err == nil {
		t.Fatal("expected launch error")
	}
	if holder.Running() {
		t.Error("holder reports running after failed start")
	}
}

func TestHolderFillDelegates(t *testing.T) {
	sess := &browsertest.FakeSession{}
	holder := browser.NewHolder(browsertest.NewDriver(sess), browser.DefaultSessionConfig(), nil)
	ctx := context.Background()

	if _, err := holder.Start(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	sel := browser.Selector{Type: browser.SelectorName, Value: "q"}
	if err := holder.Fill(ctx, sel, "golang", true); err != nil {
		t.Fatalf("fill failed: %v", err)
	}
	if len(sess.Fills) != 1 {
		t.Fatalf("expected 1 fill call, got %d", len(sess.Fills))
	}
	call := sess.Fills[0]
	if call.Selector != sel || call.Value != "golang" || !call.Clear {
		t.Errorf("unexpected fill call: %+v", call)
	}
}
