package crawler

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"sjsage522/vesselschedule/internal/browser"
	"sjsage522/vesselschedule/internal/extract"
)

// fakePage serves canned HTML. pages[current] is the visible document; SelectIndex
// moves current, and clicking advanceOn moves to the next page while one exists.
type fakePage struct {
	mu sync.Mutex

	pages     []string
	current   int
	options   map[string][]string
	inputs    map[string]bool
	clickable map[string]bool
	advanceOn string

	navigateErr   error
	waitErr       error
	blockNavigate bool
	panicOnHTML   bool

	navigations []string
	typed       []string
	clicked     []string
	selected    []int
	screenshots []string
	closes      int
}

func newFakePage(pages ...string) *fakePage {
	return &fakePage{
		pages:     pages,
		options:   map[string][]string{},
		inputs:    map[string]bool{},
		clickable: map[string]bool{},
	}
}

func (f *fakePage) Navigate(ctx context.Context, url string, _ browser.NavigateOptions) error {
	f.mu.Lock()
	f.navigations = append(f.navigations, url)
	block, err := f.blockNavigate, f.navigateErr
	f.mu.Unlock()
	if block {
		<-ctx.Done()
		return ctx.Err()
	}
	return err
}

func (f *fakePage) WaitFor(context.Context, browser.Predicate, time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.waitErr
}

func (f *fakePage) Evaluate(context.Context, string, ...any) (json.RawMessage, error) {
	return json.RawMessage(`""`), nil
}

func (f *fakePage) Options(_ context.Context, selector string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	opts, ok := f.options[selector]
	if !ok {
		return nil, browser.ErrElementNotFound
	}
	return opts, nil
}

func (f *fakePage) SelectOption(ctx context.Context, selector, match string) (string, error) {
	opts, err := f.Options(ctx, selector)
	if err != nil {
		return "", err
	}
	idx, ok := extract.MatchOption(opts, match)
	if !ok {
		return "", browser.ErrOptionNotFound
	}
	if err := f.SelectIndex(ctx, selector, idx); err != nil {
		return "", err
	}
	return opts[idx], nil
}

func (f *fakePage) SelectIndex(_ context.Context, selector string, index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.options[selector]; !ok {
		return browser.ErrElementNotFound
	}
	f.selected = append(f.selected, index)
	if index < len(f.pages) {
		f.current = index
	}
	return nil
}

func (f *fakePage) Type(_ context.Context, selector, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.inputs[selector] {
		return browser.ErrElementNotFound
	}
	f.typed = append(f.typed, text)
	return nil
}

func (f *fakePage) Click(ctx context.Context, selector string) error {
	_, err := f.ClickFirst(ctx, []string{selector})
	return err
}

func (f *fakePage) ClickFirst(_ context.Context, selectors []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sel := range selectors {
		if !f.clickable[sel] {
			continue
		}
		if sel == f.advanceOn {
			if f.current+1 >= len(f.pages) {
				continue
			}
			f.current++
		}
		f.clicked = append(f.clicked, sel)
		return sel, nil
	}
	return "", browser.ErrElementNotFound
}

func (f *fakePage) ClickByText(context.Context, []string) (bool, error) {
	return false, nil
}

func (f *fakePage) PressEnter(context.Context) error {
	return nil
}

func (f *fakePage) HTML(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOnHTML {
		panic("renderer crashed")
	}
	if len(f.pages) == 0 {
		return "<html><body></body></html>", nil
	}
	return f.pages[f.current], nil
}

func (f *fakePage) Screenshot(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.screenshots = append(f.screenshots, path)
	return nil
}

func (f *fakePage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakePage) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

type fakeLauncher struct {
	page     *fakePage
	err      error
	launches int
}

func (l *fakeLauncher) Launch(context.Context, browser.Options) (browser.Page, error) {
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return l.page, nil
}

func testDeps(page *fakePage) Deps {
	return Deps{
		Launcher:          &fakeLauncher{page: page},
		NavigationTimeout: time.Second,
		WaitTimeout:       time.Second,
		PageCap:           20,
	}
}
