package browser

import (
	"context"
	"encoding/json"
)

// Driver launches browser sessions.
type Driver interface {
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
}

// Session is the port implemented by browser driver adapters. Every
// call acts against the single live page of the session.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Back(ctx context.Context) error
	Forward(ctx context.Context) error
	Reload(ctx context.Context) error
	Location(ctx context.Context) (Location, error)
	Screenshot(ctx context.Context) (*Screenshot, error)
	Click(ctx context.Context, sel Selector) error
	Fill(ctx context.Context, sel Selector, value string, clear bool) error
	Evaluate(ctx context.Context, script string) (json.RawMessage, error)
	Source(ctx context.Context) (string, error)
	Links(ctx context.Context) ([]Link, error)
	FormFields(ctx context.Context) ([]FormField, error)
	Buttons(ctx context.Context) ([]Button, error)
	Close() error
}
