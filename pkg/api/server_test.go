package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/odvcencio/browserd/pkg/browser"
	"github.com/odvcencio/browserd/pkg/browser/browsertest"
)

func newTestServer(t *testing.T, sess *browsertest.FakeSession) (*Server, *browser.Holder) {
	t.Helper()
	holder := browser.NewHolder(browsertest.NewDriver(sess), browser.DefaultSessionConfig(), nil)
	server := NewServer(Config{MaxWait: time.Second}, holder, nil)
	return server, holder
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestStatusBeforeStartReportsStopped(t *testing.T) {
	server, _ := newTestServer(t, nil)

	rec := doRequest(t, server, http.MethodGet, "/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeBody[StatusResponse](t, rec)
	if resp.Status != "stopped" {
		t.Errorf("expected stopped, got %q", resp.Status)
	}
}

func TestStartThenStatusReportsRunning(t *testing.T) {
	sess := &browsertest.FakeSession{Loc: browser.Location{URL: "about:blank", Title: "blank"}}
	server, _ := newTestServer(t, sess)

	rec := doRequest(t, server, http.MethodPost, "/start", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodGet, "/status", nil)
	resp := decodeBody[StatusResponse](t, rec)
	if resp.Status != "running" {
		t.Fatalf("expected running, got %q", resp.Status)
	}
	if resp.URL != "about:blank" || resp.Title != "blank" {
		t.Errorf("unexpected location: %q %q", resp.URL, resp.Title)
	}
	if resp.WindowSize == nil || resp.WindowSize.Width != 1920 {
		t.Errorf("expected window size from config, got %+v", resp.WindowSize)
	}
}

func TestStartTwiceReportsAlreadyRunning(t *testing.T) {
	server, _ := newTestServer(t, nil)

	doRequest(t, server, http.MethodPost, "/start", nil)
	rec := doRequest(t, server, http.MethodPost, "/start", nil)
	resp := decodeBody[MessageResponse](t, rec)
	if resp.Status != "success" || resp.Message != "browser already running" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestStopThenInteractionReportsNoSession(t *testing.T) {
	server, _ := newTestServer(t, nil)

	doRequest(t, server, http.MethodPost, "/start", nil)
	rec := doRequest(t, server, http.MethodPost, "/stop", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodPost, "/click", ClickRequest{Selector: "#go"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Message != "no active browser session" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestGotoReflectsURL(t *testing.T) {
	sess := &browsertest.FakeSession{Loc: browser.Location{Title: "Example"}}
	server, _ := newTestServer(t, sess)

	doRequest(t, server, http.MethodPost, "/start", nil)
	rec := doRequest(t, server, http.MethodPost, "/goto", GotoRequest{URL: "https://example.com"})
	if rec.Code != http.StatusOK {
		t.Fatalf("goto: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeBody[NavigateResponse](t, rec)
	if resp.URL != "https://example.com" {
		t.Errorf("expected navigated URL, got %q", resp.URL)
	}

	rec = doRequest(t, server, http.MethodGet, "/status", nil)
	status := decodeBody[StatusResponse](t, rec)
	if status.URL != "https://example.com" {
		t.Errorf("status does not reflect navigation: %q", status.URL)
	}
}

func TestGotoWithoutURLIsBadRequest(t *testing.T) {
	server, _ := newTestServer(t, nil)
	doRequest(t, server, http.MethodPost, "/start", nil)

	rec := doRequest(t, server, http.MethodPost, "/goto", GotoRequest{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFormsReturnsAllFields(t *testing.T) {
	sess := &browsertest.FakeSession{
		FieldsOut: []browser.FormField{
			{Kind: "input", Index: 0, InputType: "text", Name: "user", ID: "user", Visible: true},
			{Kind: "input", Index: 1, InputType: "password", Name: "pass", ID: "pass", Visible: true},
			{Kind: "select", Index: 2, Name: "lang", Options: []string{"Go", "Python"}, Visible: true},
		},
	}
	server, _ := newTestServer(t, sess)

	doRequest(t, server, http.MethodPost, "/start", nil)
	rec := doRequest(t, server, http.MethodGet, "/elements/forms", nil)
	resp := decodeBody[FormsResponse](t, rec)

	if resp.Count != 3 || len(resp.Fields) != 3 {
		t.Fatalf("expected 3 fields, got count=%d len=%d", resp.Count, len(resp.Fields))
	}
	if resp.Fields[0].Name != "user" || resp.Fields[0].InputType != "text" {
		t.Errorf("unexpected first field: %+v", resp.Fields[0])
	}
	if resp.Fields[2].Kind != "select" || len(resp.Fields[2].Options) != 2 {
		t.Errorf("unexpected select field: %+v", resp.Fields[2])
	}
}

func TestClickNotFoundIs404(t *testing.T) {
	sess := &browsertest.FakeSession{
		ClickErr: browser.WrapDriverError("not_found", "element not found", browser.ErrElementNotFound),
	}
	server, _ := newTestServer(t, sess)

	doRequest(t, server, http.MethodPost, "/start", nil)
	rec := doRequest(t, server, http.MethodPost, "/click", ClickRequest{Selector: "#missing"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	resp := decodeBody[ErrorResponse](t, rec)
	if resp.Message != "element not found" {
		t.Errorf("unexpected message: %q", resp.Message)
	}
}

func TestClickDispatchesSelectorType(t *testing.T) {
	sess := &browsertest.FakeSession{}
	server, _ := newTestServer(t, sess)

	doRequest(t, server, http.MethodPost, "/start", nil)
	rec := doRequest(t, server, http.MethodPost, "/click",
		ClickRequest{Selector: "Sign in", Type: "link_text"})
	if rec.Code != http.StatusOK {
		t.Fatalf("click: expected 200, got %d", rec.Code)
	}
	if len(sess.Clicks) != 1 {
		t.Fatalf("expected 1 click, got %d", len(sess.Clicks))
	}
	if sess.Clicks[0].Type != browser.SelectorLinkText {
		t.Errorf("expected link_text strategy, got %q", sess.Clicks[0].Type)
	}
}

func TestFillDefaultsClearToTrue(t *testing.T) {
	sess := &browsertest.FakeSession{}
	server, _ := newTestServer(t, sess)

	doRequest(t, server, http.MethodPost, "/start", nil)
	rec := doRequest(t, server, http.MethodPost, "/fill",
		FillRequest{Selector: "[name=q]", Value: "hello"})
	if rec.Code != http.StatusOK {
		t.Fatalf("fill: expected 200, got %d", rec.Code)
	}
	if len(sess.Fills) != 1 || !sess.Fills[0].Clear {
		t.Errorf("expected clear to default to true: %+v", sess.Fills)
	}
}

func TestExecuteReturnsResultVerbatim(t *testing.T) {
	sess := &browsertest.FakeSession{EvalResult: json.RawMessage(`{"n":42}`)}
	server, _ := newTestServer(t, sess)

	doRequest(t, server, http.MethodPost, "/start", nil)
	rec := doRequest(t, server, http.MethodPost, "/execute",
		ExecuteRequest{Script: "({n: 42})"})
	if rec.Code != http.StatusOK {
		t.Fatalf("execute: expected 200, got %d", rec.Code)
	}
	resp := decodeBody[ExecuteResponse](t, rec)
	if string(resp.Result) != `{"n":42}` {
		t.Errorf("result not passed through verbatim: %s", resp.Result)
	}
}

func TestScreenshotBase64Envelope(t *testing.T) {
	sess := &browsertest.FakeSession{
		Shot: &browser.Screenshot{Data: []byte{0x89, 'P', 'N', 'G'}, URL: "https://example.com", Title: "Example"},
	}
	server, _ := newTestServer(t, sess)

	doRequest(t, server, http.MethodPost, "/start", nil)
	rec := doRequest(t, server, http.MethodGet, "/screenshot/base64", nil)
	resp := decodeBody[ScreenshotResponse](t, rec)
	if resp.Screenshot == "" || resp.URL != "https://example.com" {
		t.Errorf("unexpected envelope: %+v", resp)
	}
}

func TestScreenshotRawServesPNG(t *testing.T) {
	sess := &browsertest.FakeSession{
		Shot: &browser.Screenshot{Data: []byte("fake-png")},
	}
	server, _ := newTestServer(t, sess)

	doRequest(t, server, http.MethodPost, "/start", nil)
	rec := doRequest(t, server, http.MethodGet, "/screenshot", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if rec.Body.String() != "fake-png" {
		t.Error("raw screenshot bytes were altered")
	}
}

func TestWaitParameterDelaysResponse(t *testing.T) {
	sess := &browsertest.FakeSession{}
	server, _ := newTestServer(t, sess)

	doRequest(t, server, http.MethodPost, "/start", nil)

	start := time.Now()
	rec := doRequest(t, server, http.MethodPost, "/refresh?wait=0.2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d", rec.Code)
	}
	if took := time.Since(start); took < 200*time.Millisecond {
		t.Errorf("wait parameter not honored, took %v", took)
	}
}

func TestWaitParameterIsCapped(t *testing.T) {
	sess := &browsertest.FakeSession{}
	holder := browser.NewHolder(browsertest.NewDriver(sess), browser.DefaultSessionConfig(), nil)
	server := NewServer(Config{MaxWait: 100 * time.Millisecond}, holder, nil)

	doRequest(t, server, http.MethodPost, "/start", nil)

	start := time.Now()
	doRequest(t, server, http.MethodPost, "/refresh?wait=60", nil)
	if took := time.Since(start); took > 2*time.Second {
		t.Errorf("wait cap not applied, took %v", took)
	}
}

func TestRequestIDHeader(t *testing.T) {
	server, _ := newTestServer(t, nil)
	rec := doRequest(t, server, http.MethodGet, "/healthz", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request id header")
	}
}
