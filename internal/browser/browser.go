// Package browser drives a headless Chromium page for the interactive terminals.
//
// Adapters only see the Page and Launcher interfaces; the go-rod implementation
// lives in rod.go and tests substitute fakes.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// DefaultNavigationTimeout bounds Navigate when no timeout is given.
const DefaultNavigationTimeout = 30 * time.Second

var (
	// ErrNavigationTimeout is returned when a page did not load in time.
	ErrNavigationTimeout = errors.New("navigation timeout")
	// ErrWaitTimeout is returned when a predicate never became true. Callers
	// proceed with best-effort extraction.
	ErrWaitTimeout = errors.New("wait timeout")
	// ErrElementNotFound is returned when no element matched any selector.
	ErrElementNotFound = errors.New("element not found")
	// ErrOptionNotFound is returned when a <select> exists but no option names the match.
	ErrOptionNotFound = errors.New("no matching option")
)

// WaitStrategy decides when Navigate considers a page loaded.
type WaitStrategy int

const (
	// DOMReady waits for the document to finish parsing.
	DOMReady WaitStrategy = iota
	// NetworkIdle additionally waits for in-flight requests to settle.
	NetworkIdle
)

// NavigateOptions tunes one navigation.
type NavigateOptions struct {
	Wait    WaitStrategy
	Timeout time.Duration
}

// Options configures a browser launch.
type Options struct {
	Headless       bool
	NoSandbox      bool
	ViewportWidth  int
	ViewportHeight int
	UserAgent      string
	Bin            string
	Proxy          string
	Flags          []string
	Evasion        EvasionPolicy
}

// Page is one browser tab owned by a single adapter invocation.
type Page interface {
	Navigate(ctx context.Context, url string, opts NavigateOptions) error
	WaitFor(ctx context.Context, pred Predicate, timeout time.Duration) error
	Evaluate(ctx context.Context, js string, args ...any) (json.RawMessage, error)

	// Options lists the visible texts of a <select>.
	Options(ctx context.Context, selector string) ([]string, error)
	// SelectOption chooses the option that loosely names match and returns its text.
	SelectOption(ctx context.Context, selector, match string) (string, error)
	// SelectIndex chooses the option at index and fires change events.
	SelectIndex(ctx context.Context, selector string, index int) error

	Type(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	// ClickFirst clicks the first visible match among selectors and returns it.
	ClickFirst(ctx context.Context, selectors []string) (string, error)
	// ClickByText clicks the first button-like element whose text or value contains
	// any of words, case-insensitively.
	ClickByText(ctx context.Context, words []string) (bool, error)
	PressEnter(ctx context.Context) error

	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context, path string) error
	// Close releases the tab and its browser. Safe to call more than once.
	Close() error
}

// Launcher starts a browser session.
type Launcher interface {
	Launch(ctx context.Context, opts Options) (Page, error)
}

// DecodeStrings decodes an Evaluate result holding a string array.
func DecodeStrings(raw json.RawMessage) ([]string, error) {
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
