package crawler

import (
	"context"
	"errors"

	"sjsage522/vesselschedule/internal/browser"
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
	"sjsage522/vesselschedule/logger"
	scrapeerrors "sjsage522/vesselschedule/pkg/errors"
)

// session is the per-call state handed to a flow. page is nil for HTTP flows.
type session struct {
	cfg  TerminalConfig
	deps Deps
	page browser.Page
	log  *logger.Logger

	// lastHTML is the most recent snapshot, kept for failure dumps
	lastHTML string
}

// navigate opens url with the terminal's wait strategy
func (s *session) navigate(ctx context.Context, url string) error {
	s.log.Debug().Str("url", url).Msg("Navigating")
	err := s.page.Navigate(ctx, url, browser.NavigateOptions{
		Wait:    s.cfg.Wait,
		Timeout: s.deps.NavigationTimeout,
	})
	if err != nil {
		return scrapeerrors.NewNavigation(s.cfg.Name, "failed to load "+url, err)
	}
	return nil
}

// wait polls pred; a timeout is not fatal and extraction proceeds on whatever rendered
func (s *session) wait(ctx context.Context, pred browser.Predicate) error {
	err := s.page.WaitFor(ctx, pred, s.deps.WaitTimeout)
	if errors.Is(err, browser.ErrWaitTimeout) {
		s.log.Debug().Str("predicate", pred.Name).Msg("Wait timed out, extracting best-effort")
		return nil
	}
	return err
}

func (s *session) waitResults(ctx context.Context) error {
	return s.wait(ctx, s.cfg.resultPredicate())
}

// dismissConsent clears a cookie banner if one is present
func (s *session) dismissConsent(ctx context.Context) {
	if len(s.cfg.ConsentSelectors) > 0 {
		if sel, err := s.page.ClickFirst(ctx, s.cfg.ConsentSelectors); err == nil {
			s.log.Debug().Str("selector", sel).Msg("Dismissed cookie consent")
			return
		}
	}
	if ok, err := s.page.ClickByText(ctx, s.cfg.consentWords()); err == nil && ok {
		s.log.Debug().Msg("Dismissed cookie consent by text")
	}
}

// submit tries the configured selectors, then a button text scan, then Enter
func (s *session) submit(ctx context.Context) error {
	if len(s.cfg.SubmitSelectors) > 0 {
		if sel, err := s.page.ClickFirst(ctx, s.cfg.SubmitSelectors); err == nil {
			s.log.Debug().Str("selector", sel).Msg("Submitted search")
			return nil
		}
	}
	if ok, err := s.page.ClickByText(ctx, s.cfg.submitWords()); err == nil && ok {
		s.log.Debug().Msg("Submitted search by button text")
		return nil
	}
	s.log.Debug().Msg("No search button found, pressing Enter")
	return s.page.PressEnter(ctx)
}

// snapshot reads the current page HTML
func (s *session) snapshot(ctx context.Context) (string, error) {
	html, err := s.page.HTML(ctx)
	if err != nil {
		return "", err
	}
	s.lastHTML = html
	return html, nil
}

// extractHTML runs the strategy chain over html. vessel "" asks for every row.
func (s *session) extractHTML(html, vessel string) ([]schedule.Record, error) {
	rows, method, ok, err := s.cfg.engine().RunHTML(html, vessel)
	if err != nil {
		return nil, scrapeerrors.NewInternal(s.cfg.Name, "failed to parse page", err)
	}
	if !ok {
		return nil, nil
	}
	s.log.Debug().Str("method", method).Int("rows", len(rows)).Msg("Extracted rows")
	return s.normalize(rows, method), nil
}

// extractPage snapshots the page and extracts from it
func (s *session) extractPage(ctx context.Context, vessel string) ([]schedule.Record, error) {
	html, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return s.extractHTML(html, vessel)
}

func (s *session) normalize(rows []extract.Row, method string) []schedule.Record {
	records := make([]schedule.Record, 0, len(rows))
	for _, row := range rows {
		rec := schedule.Normalize(row, s.cfg.Name, method)
		if rec.VesselName == "" {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// fetch performs an HTTP GET through the injected fetch function
func (s *session) fetch(ctx context.Context, url string) (string, error) {
	if s.deps.Fetch == nil {
		return "", scrapeerrors.NewConfiguration("no fetch function configured", nil)
	}
	s.log.Debug().Str("url", url).Msg("Fetching")
	body, err := s.deps.Fetch(ctx, url, s.cfg.Headers)
	if err != nil {
		return "", scrapeerrors.NewFetch(s.cfg.Name, "failed to fetch "+url, err)
	}
	s.lastHTML = body
	return body, nil
}
