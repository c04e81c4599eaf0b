package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"sjsage522/vesselschedule/internal/browser"
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
	scrapeerrors "sjsage522/vesselschedule/pkg/errors"
)

const defaultPageCap = 20

// staticTableFlow renders the whole schedule in a browser and filters client-side
type staticTableFlow struct{}

func (staticTableFlow) lookup(ctx context.Context, s *session, q schedule.Query) ([]schedule.Record, error) {
	return staticTableFlow{}.load(ctx, s, q.VesselName)
}

func (staticTableFlow) all(ctx context.Context, s *session) ([]schedule.Record, error) {
	return staticTableFlow{}.load(ctx, s, "")
}

func (staticTableFlow) load(ctx context.Context, s *session, vessel string) ([]schedule.Record, error) {
	if err := s.navigate(ctx, s.cfg.URL); err != nil {
		return nil, err
	}
	if err := s.waitResults(ctx); err != nil {
		return nil, err
	}
	return s.extractPage(ctx, vessel)
}

// httpTableFlow reads a server-rendered schedule without a browser
type httpTableFlow struct{}

func (httpTableFlow) lookup(ctx context.Context, s *session, q schedule.Query) ([]schedule.Record, error) {
	body, err := s.fetch(ctx, s.cfg.URL)
	if err != nil {
		return nil, err
	}
	return s.extractHTML(body, q.VesselName)
}

func (httpTableFlow) all(ctx context.Context, s *session) ([]schedule.Record, error) {
	body, err := s.fetch(ctx, s.cfg.URL)
	if err != nil {
		return nil, err
	}
	return s.extractHTML(body, "")
}

// dropdownFlow picks the vessel from a <select> and submits
type dropdownFlow struct{}

func (dropdownFlow) lookup(ctx context.Context, s *session, q schedule.Query) ([]schedule.Record, error) {
	opts, err := dropdownFlow{}.open(ctx, s)
	if err != nil {
		return nil, err
	}
	chosen, err := s.page.SelectOption(ctx, s.cfg.VesselSelect, q.VesselName)
	if errors.Is(err, browser.ErrOptionNotFound) {
		s.log.Info().Str("vessel", q.VesselName).Int("options", len(opts)).Msg("Vessel not in dropdown")
		return nil, nil
	}
	if err != nil {
		return nil, scrapeerrors.New(scrapeerrors.ErrorTypeSearchSurface, s.cfg.Name, "failed to select vessel", err)
	}
	s.log.Debug().Str("option", chosen).Msg("Selected vessel option")
	if err := s.submit(ctx); err != nil {
		return nil, err
	}
	if err := s.waitResults(ctx); err != nil {
		return nil, err
	}
	return s.extractPage(ctx, q.VesselName)
}

// all walks every option serially on one page, throttled between iterations. A
// failure on one vessel is logged and the walk continues.
func (dropdownFlow) all(ctx context.Context, s *session) ([]schedule.Record, error) {
	opts, err := dropdownFlow{}.open(ctx, s)
	if err != nil {
		return nil, err
	}
	limiter := newLimiter(s.deps.BulkDelay)
	var out []schedule.Record
	for i, opt := range opts {
		if isPlaceholder(opt) {
			continue
		}
		if err := limiter.Wait(ctx); err != nil {
			return out, err
		}
		recs, err := dropdownFlow{}.visit(ctx, s, i, opt)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			s.log.Warn().Err(err).Str("option", opt).Msg("Skipping vessel")
			continue
		}
		out = append(out, recs...)
	}
	s.log.Info().Int("options", len(opts)).Int("records", len(out)).Msg("Dropdown walk finished")
	return out, nil
}

func (dropdownFlow) visit(ctx context.Context, s *session, idx int, opt string) ([]schedule.Record, error) {
	if err := s.page.SelectIndex(ctx, s.cfg.VesselSelect, idx); err != nil {
		// the submit may have replaced the form
		if _, oerr := (dropdownFlow{}).open(ctx, s); oerr != nil {
			return nil, oerr
		}
		if err := s.page.SelectIndex(ctx, s.cfg.VesselSelect, idx); err != nil {
			return nil, err
		}
	}
	if err := s.submit(ctx); err != nil {
		return nil, err
	}
	if err := s.waitResults(ctx); err != nil {
		return nil, err
	}
	return s.extractPage(ctx, opt)
}

func (dropdownFlow) open(ctx context.Context, s *session) ([]string, error) {
	if err := s.navigate(ctx, s.cfg.URL); err != nil {
		return nil, err
	}
	if err := s.wait(ctx, browser.SelectorExists(s.cfg.VesselSelect)); err != nil {
		return nil, err
	}
	opts, err := s.page.Options(ctx, s.cfg.VesselSelect)
	if err != nil || len(opts) == 0 {
		return nil, scrapeerrors.NewSearchSurface(s.cfg.Name, "vessel dropdown "+s.cfg.VesselSelect+" not found")
	}
	return opts, nil
}

func isPlaceholder(opt string) bool {
	o := strings.ToLower(strings.TrimSpace(opt))
	return o == "" || strings.HasPrefix(o, "--") || strings.Contains(o, "select") ||
		strings.Contains(o, "please") || strings.Contains(o, "เลือก") || o == "all"
}

func newLimiter(every time.Duration) *rate.Limiter {
	if every <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(every), 1)
}

// formSearchFlow types the vessel into a search box behind an optional cookie banner
type formSearchFlow struct{}

func (formSearchFlow) lookup(ctx context.Context, s *session, q schedule.Query) ([]schedule.Record, error) {
	if err := s.navigate(ctx, s.cfg.URL); err != nil {
		return nil, err
	}
	s.dismissConsent(ctx)

	typed := false
	for _, sel := range s.cfg.SearchInputs {
		if err := s.page.Type(ctx, sel, q.VesselName); err == nil {
			s.log.Debug().Str("selector", sel).Msg("Typed vessel name")
			typed = true
			break
		}
	}
	if !typed {
		return nil, scrapeerrors.NewSearchSurface(s.cfg.Name, "vessel search input not found")
	}
	if err := s.submit(ctx); err != nil {
		return nil, err
	}
	if err := s.waitResults(ctx); err != nil {
		return nil, err
	}
	return s.extractPage(ctx, q.VesselName)
}

func (formSearchFlow) all(context.Context, *session) ([]schedule.Record, error) {
	return nil, errBulkUnsupported
}

var errBulkUnsupported = scrapeerrors.NewConfiguration("full schedule mode is not supported by this flow", nil)

// apexPagedFlow iterates the options of a pagination <select> ("row(s) 1 - 15 of 54")
type apexPagedFlow struct{}

func (apexPagedFlow) lookup(ctx context.Context, s *session, q schedule.Query) ([]schedule.Record, error) {
	return apexPagedFlow{}.scan(ctx, s, q.VesselName)
}

func (apexPagedFlow) all(ctx context.Context, s *session) ([]schedule.Record, error) {
	return apexPagedFlow{}.scan(ctx, s, "")
}

func (apexPagedFlow) scan(ctx context.Context, s *session, vessel string) ([]schedule.Record, error) {
	if err := s.navigate(ctx, s.cfg.URL); err != nil {
		return nil, err
	}
	if err := s.waitResults(ctx); err != nil {
		return nil, err
	}
	out, err := s.extractPage(ctx, vessel)
	if err != nil || found(out, vessel) {
		return out, err
	}

	pages, err := s.page.Options(ctx, s.cfg.PagerSelect)
	if err != nil {
		s.log.Debug().Msg("No pagination select, single page")
		return out, nil
	}
	limit := min(len(pages), pageCap(s.cfg))
	for i := 1; i < limit; i++ {
		before := s.tableText(ctx)
		if err := s.page.SelectIndex(ctx, s.cfg.PagerSelect, i); err != nil {
			return out, scrapeerrors.New(scrapeerrors.ErrorTypeSearchSurface, s.cfg.Name, "failed to change page", err)
		}
		if err := s.wait(ctx, browser.TextChanged(s.tableSelector(), before)); err != nil {
			return out, err
		}
		recs, err := s.extractPage(ctx, vessel)
		if err != nil {
			return out, err
		}
		s.log.Debug().Str("page", pages[i]).Int("records", len(recs)).Msg("Scanned page")
		out = append(out, recs...)
		if found(recs, vessel) {
			break
		}
	}
	return out, nil
}

// nextPagerFlow clicks Next until it disappears or the page cap is reached
type nextPagerFlow struct{}

func (nextPagerFlow) lookup(ctx context.Context, s *session, q schedule.Query) ([]schedule.Record, error) {
	return nextPagerFlow{}.scan(ctx, s, q.VesselName)
}

func (nextPagerFlow) all(ctx context.Context, s *session) ([]schedule.Record, error) {
	return nextPagerFlow{}.scan(ctx, s, "")
}

func (nextPagerFlow) scan(ctx context.Context, s *session, vessel string) ([]schedule.Record, error) {
	if err := s.navigate(ctx, s.cfg.URL); err != nil {
		return nil, err
	}
	if err := s.waitResults(ctx); err != nil {
		return nil, err
	}
	limit := pageCap(s.cfg)
	var out []schedule.Record
	for page := 1; ; page++ {
		recs, err := s.extractPage(ctx, vessel)
		if err != nil {
			return out, err
		}
		out = append(out, recs...)
		if found(recs, vessel) {
			return out, nil
		}
		if page >= limit {
			s.log.Warn().Int("cap", limit).Msg("Page cap reached")
			return out, nil
		}
		before := s.tableText(ctx)
		if _, err := s.page.ClickFirst(ctx, s.cfg.NextSelectors); err != nil {
			s.log.Debug().Int("pages", page).Msg("No enabled Next control")
			return out, nil
		}
		if err := s.wait(ctx, browser.TextChanged(s.tableSelector(), before)); err != nil {
			return out, err
		}
	}
}

// found reports whether a paged lookup can stop: the page named the vessel exactly.
// Substring hits keep the scan going since a later page may hold the exact name.
func found(recs []schedule.Record, vessel string) bool {
	return vessel != "" && extract.HasExactVessel(recs, vessel)
}

func pageCap(cfg TerminalConfig) int {
	if cfg.PageCap > 0 {
		return cfg.PageCap
	}
	return defaultPageCap
}

func (s *session) tableSelector() string {
	if s.cfg.Table.Selector != "" {
		return s.cfg.Table.Selector
	}
	return "table"
}

// tableText reads the current result table text to detect in-place page swaps
func (s *session) tableText(ctx context.Context) string {
	raw, err := s.page.Evaluate(ctx, browser.TextOfJS, s.tableSelector())
	if err != nil {
		return ""
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return ""
	}
	return text
}
