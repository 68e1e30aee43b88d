package browser

import "time"

// SelectorType identifies the lookup strategy for an element selector.
type SelectorType string

const (
	SelectorCSS             SelectorType = "css"
	SelectorXPath           SelectorType = "xpath"
	SelectorID              SelectorType = "id"
	SelectorName            SelectorType = "name"
	SelectorLinkText        SelectorType = "link_text"
	SelectorPartialLinkText SelectorType = "partial_link_text"
	SelectorTag             SelectorType = "tag"
	SelectorClass           SelectorType = "class"
)

// Selector pairs a selector expression with its lookup strategy.
type Selector struct {
	Type  SelectorType `json:"type"`
	Value string       `json:"value"`
}

// Viewport defines the browser window size.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Location is the current page address and title.
type Location struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Status reports the holder state for status checks.
type Status struct {
	Running  bool      `json:"running"`
	URL      string    `json:"url,omitempty"`
	Title    string    `json:"title,omitempty"`
	Viewport *Viewport `json:"window_size,omitempty"`
}

// Screenshot is a captured page image with its origin metadata.
type Screenshot struct {
	Data      []byte    `json:"data,omitempty"`
	URL       string    `json:"url,omitempty"`
	Title     string    `json:"title,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Link is a projected anchor element.
type Link struct {
	Index   int    `json:"index"`
	Href    string `json:"href"`
	Text    string `json:"text"`
	Visible bool   `json:"visible"`
}

// FormField is a projected form control. Kind is input, textarea or
// select; InputType carries the type attribute for inputs only and
// Options carries the option texts for selects only.
type FormField struct {
	Kind        string   `json:"type"`
	Index       int      `json:"index"`
	InputType   string   `json:"input_type,omitempty"`
	Name        string   `json:"name"`
	ID          string   `json:"id"`
	Placeholder string   `json:"placeholder,omitempty"`
	Value       string   `json:"value,omitempty"`
	Options     []string `json:"options,omitempty"`
	Visible     bool     `json:"visible"`
}

// Button is a projected button or submit input.
type Button struct {
	Index   int    `json:"index"`
	Text    string `json:"text"`
	Type    string `json:"type"`
	ID      string `json:"id"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

// SessionConfig configures a browser session.
type SessionConfig struct {
	Headless  bool          `json:"headless"`
	Viewport  Viewport      `json:"viewport"`
	UserAgent string        `json:"user_agent,omitempty"`
	ProxyURL  string        `json:"proxy_url,omitempty"`
	OpTimeout time.Duration `json:"op_timeout,omitempty"`
}

// DefaultSessionConfig returns the recommended session defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Headless: true,
		Viewport: Viewport{
			Width:  1920,
			Height: 1080,
		},
		OpTimeout: 30 * time.Second,
	}
}
