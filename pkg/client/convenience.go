package client

import (
	"context"
	"strings"

	"github.com/odvcencio/browserd/pkg/api"
	"github.com/odvcencio/browserd/pkg/browser"
)

// High-level convenience helpers built on the endpoint methods.

// Browse navigates to a URL and optionally saves a screenshot of the
// landed page.
func (c *Client) Browse(ctx context.Context, url, screenshotPath string) (*api.NavigateResponse, error) {
	result, err := c.Goto(ctx, url)
	if err != nil {
		return nil, err
	}
	if screenshotPath != "" {
		if _, err := c.Screenshot(ctx, screenshotPath); err != nil {
			return result, err
		}
	}
	return result, nil
}

// SearchLinks returns the links whose text or href contains the query,
// case-insensitively.
func (c *Client) SearchLinks(ctx context.Context, text string) ([]browser.Link, error) {
	resp, err := c.Links(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(text)
	var matched []browser.Link
	for _, link := range resp.Links {
		if strings.Contains(strings.ToLower(link.Text), needle) ||
			strings.Contains(strings.ToLower(link.Href), needle) {
			matched = append(matched, link)
		}
	}
	return matched, nil
}

// FindFormField locates a form field by name, id or placeholder. The
// first non-empty criterion that matches wins; nil means no match.
func (c *Client) FindFormField(ctx context.Context, name, id, placeholder string) (*browser.FormField, error) {
	resp, err := c.Forms(ctx)
	if err != nil {
		return nil, err
	}
	for i := range resp.Fields {
		field := &resp.Fields[i]
		if name != "" && field.Name == name {
			return field, nil
		}
		if id != "" && field.ID == id {
			return field, nil
		}
		if placeholder != "" && field.Placeholder == placeholder {
			return field, nil
		}
	}
	return nil, nil
}
