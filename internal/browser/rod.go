package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/rod/lib/utils"

	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/logger"
)

// RodLauncher starts a local Chromium through go-rod.
type RodLauncher struct{}

// NewRodLauncher returns the production launcher.
func NewRodLauncher() *RodLauncher {
	return &RodLauncher{}
}

// Launch starts a browser, opens one tab and applies viewport, user agent and the
// evasion scripts. The launch itself is bound to ctx; later calls take their own.
func (RodLauncher) Launch(ctx context.Context, opts Options) (Page, error) {
	log := logger.ForComponent("browser")
	evasion := opts.Evasion
	if evasion == nil {
		evasion = NoEvasion{}
	}

	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		NoSandbox(opts.NoSandbox).
		Set("disable-dev-shm-usage").
		Set("disable-gpu")
	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.Proxy != "" {
		l = l.Proxy(opts.Proxy)
	}
	for _, f := range append(evasion.LaunchFlags(), opts.Flags...) {
		name, value, hasValue := strings.Cut(f, "=")
		if hasValue {
			l = l.Set(flags.Flag(name), value)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}

	u, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	p := &rodPage{browser: b, page: page, launcher: l, evasion: evasion}

	if opts.ViewportWidth > 0 && opts.ViewportHeight > 0 {
		if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             opts.ViewportWidth,
			Height:            opts.ViewportHeight,
			DeviceScaleFactor: 1,
		}); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to set viewport: %w", err)
		}
	}
	if opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      opts.UserAgent,
			AcceptLanguage: "en-US,en;q=0.9,th;q=0.8",
		}); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to set user agent: %w", err)
		}
	}
	for _, script := range evasion.Scripts() {
		if _, err := page.EvalOnNewDocument(script); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to install evasion script: %w", err)
		}
	}

	log.Debug().
		Bool("headless", opts.Headless).
		Str("evasion", evasion.Name()).
		Msg("Browser launched")
	return p, nil
}

type rodPage struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	evasion  EvasionPolicy

	closeOnce sync.Once
}

func (p *rodPage) Navigate(ctx context.Context, url string, opts NavigateOptions) error {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultNavigationTimeout
	}
	nctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	page := p.page.Context(nctx)

	var waitIdle func()
	if opts.Wait == NetworkIdle {
		waitIdle = page.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)
	}

	err := page.Navigate(url)
	if err == nil {
		err = page.Wait(rod.Eval(`() => document.readyState !== 'loading'`))
	}
	if err == nil && waitIdle != nil {
		waitIdle()
		err = nctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: %s after %v", ErrNavigationTimeout, url, timeout)
		}
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *rodPage) WaitFor(ctx context.Context, pred Predicate, timeout time.Duration) error {
	wctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.page.Context(wctx).Wait(rod.Eval(pred.JS)); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: %s", ErrWaitTimeout, pred.Name)
		}
		return err
	}
	return nil
}

func (p *rodPage) Evaluate(ctx context.Context, js string, args ...any) (json.RawMessage, error) {
	res, err := p.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Value.JSON("", "")), nil
}

const optionsJS = `(sel) => {
	const s = document.querySelector(sel);
	if (!s || !s.options) return null;
	return Array.from(s.options).map(o => (o.textContent || '').trim());
}`

const selectIndexJS = `(sel, i) => {
	const s = document.querySelector(sel);
	if (!s || !s.options || i < 0 || i >= s.options.length) return false;
	s.selectedIndex = i;
	s.dispatchEvent(new Event('input', { bubbles: true }));
	s.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

func (p *rodPage) Options(ctx context.Context, selector string) ([]string, error) {
	raw, err := p.Evaluate(ctx, optionsJS, selector)
	if err != nil {
		return nil, err
	}
	opts, err := DecodeStrings(raw)
	if err != nil || opts == nil {
		return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
	}
	return opts, nil
}

func (p *rodPage) SelectOption(ctx context.Context, selector, match string) (string, error) {
	opts, err := p.Options(ctx, selector)
	if err != nil {
		return "", err
	}
	idx, ok := extract.MatchOption(opts, match)
	if !ok {
		return "", fmt.Errorf("%w: %q in %s", ErrOptionNotFound, match, selector)
	}
	if err := p.SelectIndex(ctx, selector, idx); err != nil {
		return "", err
	}
	return opts[idx], nil
}

func (p *rodPage) SelectIndex(ctx context.Context, selector string, index int) error {
	if el, err := p.firstVisible(ctx, selector); err == nil {
		if err := p.evasion.BeforeInteract(ctx, center(el), p.pointer()); err != nil {
			return err
		}
	}
	raw, err := p.Evaluate(ctx, selectIndexJS, selector, index)
	if err != nil {
		return err
	}
	var ok bool
	if err := json.Unmarshal(raw, &ok); err != nil || !ok {
		return fmt.Errorf("%w: option %d of %s", ErrElementNotFound, index, selector)
	}
	return nil
}

func (p *rodPage) Type(ctx context.Context, selector, text string) error {
	el, err := p.firstVisible(ctx, selector)
	if err != nil {
		return err
	}
	if err := p.evasion.BeforeInteract(ctx, center(el), p.pointer()); err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		logger.Debug("select-all before typing failed: %v", err)
	}
	return el.Input(text)
}

func (p *rodPage) Click(ctx context.Context, selector string) error {
	el, err := p.firstVisible(ctx, selector)
	if err != nil {
		return err
	}
	if err := p.evasion.BeforeInteract(ctx, center(el), p.pointer()); err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (p *rodPage) ClickFirst(ctx context.Context, selectors []string) (string, error) {
	for _, sel := range selectors {
		if _, err := p.firstVisible(ctx, sel); err != nil {
			continue
		}
		if err := p.Click(ctx, sel); err != nil {
			logger.Debug("click %s failed: %v", sel, err)
			continue
		}
		return sel, nil
	}
	return "", ErrElementNotFound
}

const markByTextJS = `(words) => {
	document.querySelectorAll('[data-vs-click]').forEach(e => e.removeAttribute('data-vs-click'));
	const els = document.querySelectorAll('button, input[type=submit], input[type=button], a, [role=button]');
	for (const el of els) {
		const text = ((el.innerText || el.value || el.textContent || '') + '').trim().toLowerCase();
		if (!text || el.offsetParent === null) continue;
		if (words.some(w => text.includes(w))) {
			el.setAttribute('data-vs-click', '1');
			return true;
		}
	}
	return false;
}`

func (p *rodPage) ClickByText(ctx context.Context, words []string) (bool, error) {
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}
	raw, err := p.Evaluate(ctx, markByTextJS, lower)
	if err != nil {
		return false, err
	}
	var marked bool
	if err := json.Unmarshal(raw, &marked); err != nil || !marked {
		return false, nil
	}
	if err := p.Click(ctx, `[data-vs-click="1"]`); err != nil {
		return false, err
	}
	return true, nil
}

func (p *rodPage) PressEnter(ctx context.Context) error {
	if err := p.evasion.BeforeInteract(ctx, nil, nil); err != nil {
		return err
	}
	return p.page.Keyboard.Type(input.Enter)
}

func (p *rodPage) HTML(ctx context.Context) (string, error) {
	return p.page.Context(ctx).HTML()
}

func (p *rodPage) Screenshot(ctx context.Context, path string) error {
	data, err := p.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return err
	}
	return utils.OutputFile(path, data)
}

// Close tears down the tab, the browser connection and the process. Errors from the
// first two are expected when the context was already cancelled.
func (p *rodPage) Close() error {
	p.closeOnce.Do(func() {
		if err := p.page.Close(); err != nil {
			logger.Debug("page close: %v", err)
		}
		if err := p.browser.Close(); err != nil {
			logger.Debug("browser close: %v", err)
		}
		p.launcher.Kill()
		p.launcher.Cleanup()
		logger.Debug("Browser closed")
	})
	return nil
}

func (p *rodPage) firstVisible(ctx context.Context, selector string) (*rod.Element, error) {
	els, err := p.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	for _, el := range els {
		if visible, err := el.Visible(); err == nil && visible {
			return el, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrElementNotFound, selector)
}

func (p *rodPage) pointer() Pointer {
	return rodPointer{page: p.page}
}

type rodPointer struct {
	page *rod.Page
}

func (r rodPointer) MoveLinear(to Point, steps int) error {
	return r.page.Mouse.MoveLinear(proto.NewPoint(to.X, to.Y), steps)
}

func center(el *rod.Element) *Point {
	shape, err := el.Shape()
	if err != nil {
		return nil
	}
	box := shape.Box()
	if box == nil {
		return nil
	}
	return &Point{X: box.X + box.Width/2, Y: box.Y + box.Height/2}
}
