// Package client is a Go client for the browserd REST API. Every
// method maps to one endpoint; the only logic here is request
// building and response decoding.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/odvcencio/browserd/pkg/api"
)

// Client talks to a browserd daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// New creates a client for the daemon at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-success response from the daemon.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("browserd: %s (HTTP %d)", e.Message, e.StatusCode)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
			return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Status returns the daemon's session state.
func (c *Client) Status(ctx context.Context) (*api.StatusResponse, error) {
	var out api.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Start starts the browser session.
func (c *Client) Start(ctx context.Context) (*api.MessageResponse, error) {
	var out api.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/start", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stop stops the browser session.
func (c *Client) Stop(ctx context.Context) (*api.MessageResponse, error) {
	var out api.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/stop", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Goto navigates to a URL.
func (c *Client) Goto(ctx context.Context, url string) (*api.NavigateResponse, error) {
	var out api.NavigateResponse
	if err := c.do(ctx, http.MethodPost, "/goto", api.GotoRequest{URL: url}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Back goes back in browser history.
func (c *Client) Back(ctx context.Context) (*api.NavigateResponse, error) {
	var out api.NavigateResponse
	if err := c.do(ctx, http.MethodPost, "/back", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Forward goes forward in browser history.
func (c *Client) Forward(ctx context.Context) (*api.NavigateResponse, error) {
	var out api.NavigateResponse
	if err := c.do(ctx, http.MethodPost, "/forward", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh reloads the current page.
func (c *Client) Refresh(ctx context.Context) (*api.NavigateResponse, error) {
	var out api.NavigateResponse
	if err := c.do(ctx, http.MethodPost, "/refresh", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Screenshot fetches the current page as PNG bytes, optionally saving
// them to a file.
func (c *Client) Screenshot(ctx context.Context, saveTo string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/screenshot", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Message != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: apiErr.Message}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if saveTo != "" {
		if err := os.WriteFile(saveTo, data, 0o644); err != nil {
			return nil, fmt.Errorf("saving screenshot: %w", err)
		}
	}
	return data, nil
}

// Source fetches the current page HTML.
func (c *Client) Source(ctx context.Context) (*api.SourceResponse, error) {
	var out api.SourceResponse
	if err := c.do(ctx, http.MethodGet, "/source", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Links lists all links on the current page.
func (c *Client) Links(ctx context.Context) (*api.LinksResponse, error) {
	var out api.LinksResponse
	if err := c.do(ctx, http.MethodGet, "/elements/links", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Forms lists all form fields on the current page.
func (c *Client) Forms(ctx context.Context) (*api.FormsResponse, error) {
	var out api.FormsResponse
	if err := c.do(ctx, http.MethodGet, "/elements/forms", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Buttons lists all buttons on the current page.
func (c *Client) Buttons(ctx context.Context) (*api.ButtonsResponse, error) {
	var out api.ButtonsResponse
	if err := c.do(ctx, http.MethodGet, "/elements/buttons", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Click clicks an element. selectorType defaults to css when empty.
func (c *Client) Click(ctx context.Context, selector, selectorType string) (*api.ClickResponse, error) {
	var out api.ClickResponse
	req := api.ClickRequest{Selector: selector, Type: selectorType}
	if err := c.do(ctx, http.MethodPost, "/click", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Fill types a value into a form field, clearing it first when clear
// is true. selectorType defaults to css when empty.
func (c *Client) Fill(ctx context.Context, selector, selectorType, value string, clear bool) (*api.MessageResponse, error) {
	var out api.MessageResponse
	req := api.FillRequest{Selector: selector, Type: selectorType, Value: value, Clear: &clear}
	if err := c.do(ctx, http.MethodPost, "/fill", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Execute runs a script in the page and returns its raw JSON result.
func (c *Client) Execute(ctx context.Context, script string) (*api.ExecuteResponse, error) {
	var out api.ExecuteResponse
	if err := c.do(ctx, http.MethodPost, "/execute", api.ExecuteRequest{Script: script}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
