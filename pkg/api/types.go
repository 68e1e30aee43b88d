package api

import (
	"encoding/json"

	"github.com/odvcencio/browserd/pkg/browser"
)

// Wire shapes. The envelope is status plus endpoint-specific fields;
// errors always carry a message. These shapes are the public API
// contract, mirrored by pkg/client.

const (
	statusSuccess = "success"
	statusError   = "error"
)

// GotoRequest asks for navigation to a URL.
type GotoRequest struct {
	URL string `json:"url"`
}

// ClickRequest identifies an element to click.
type ClickRequest struct {
	Selector string `json:"selector"`
	Type     string `json:"type,omitempty"`
}

// FillRequest identifies a form field and the value to type into it.
// Clear defaults to true when omitted.
type FillRequest struct {
	Selector string `json:"selector"`
	Type     string `json:"type,omitempty"`
	Value    string `json:"value"`
	Clear    *bool  `json:"clear,omitempty"`
}

// ExecuteRequest carries a script to run in the page.
type ExecuteRequest struct {
	Script string `json:"script"`
}

// MessageResponse is the generic success envelope.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the error envelope.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StatusResponse reports the session state.
type StatusResponse struct {
	Status     string            `json:"status"`
	URL        string            `json:"url,omitempty"`
	Title      string            `json:"title,omitempty"`
	WindowSize *browser.Viewport `json:"window_size,omitempty"`
}

// NavigateResponse reports the page reached by goto/back/forward/refresh.
type NavigateResponse struct {
	Status string `json:"status"`
	URL    string `json:"url"`
	Title  string `json:"title,omitempty"`
}

// ClickResponse reports a click and the URL it landed on.
type ClickResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	CurrentURL string `json:"current_url,omitempty"`
}

// ScreenshotResponse carries a base64 PNG with its origin.
type ScreenshotResponse struct {
	Status     string `json:"status"`
	Screenshot string `json:"screenshot"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
}

// LinksResponse lists discovered anchors.
type LinksResponse struct {
	Status string         `json:"status"`
	Count  int            `json:"count"`
	Links  []browser.Link `json:"links"`
}

// FormsResponse lists discovered form controls.
type FormsResponse struct {
	Status string              `json:"status"`
	Count  int                 `json:"count"`
	Fields []browser.FormField `json:"fields"`
}

// ButtonsResponse lists discovered buttons.
type ButtonsResponse struct {
	Status  string           `json:"status"`
	Count   int              `json:"count"`
	Buttons []browser.Button `json:"buttons"`
}

// ExecuteResponse carries a script result verbatim.
type ExecuteResponse struct {
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
}

// SourceResponse carries the current document HTML.
type SourceResponse struct {
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
	Source string `json:"source"`
}

// selectorFromWire builds a Selector from the request fields. The
// strategy tag defaults to css; unknown tags are passed through and
// resolved (with the same css fallback) by the driver.
func selectorFromWire(selector, typ string) browser.Selector {
	t := browser.SelectorType(typ)
	if typ == "" {
		t = browser.SelectorCSS
	}
	return browser.Selector{Type: t, Value: selector}
}
