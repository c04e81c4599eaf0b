package crawler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"sjsage522/vesselschedule/helpers"
	"sjsage522/vesselschedule/internal/browser"
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
	"sjsage522/vesselschedule/logger"
	scrapeerrors "sjsage522/vesselschedule/pkg/errors"
)

// flow is one navigation pattern. lookup returns the records naming q's vessel;
// all returns every listed vessel.
type flow interface {
	lookup(ctx context.Context, s *session, q schedule.Query) ([]schedule.Record, error)
	all(ctx context.Context, s *session) ([]schedule.Record, error)
}

// BaseAdapter provides the session lifecycle shared by all terminals
type BaseAdapter struct {
	Config TerminalConfig
	deps   Deps
	flow   flow
	log    *logger.Logger
}

// NewBaseAdapter wires a terminal configuration to its flow
func NewBaseAdapter(cfg TerminalConfig, deps Deps, f flow) *BaseAdapter {
	if cfg.PageCap <= 0 {
		cfg.PageCap = deps.PageCap
	}
	return &BaseAdapter{
		Config: cfg,
		deps:   deps,
		flow:   f,
		log:    logger.ForTerminal(cfg.Name).WithFields(logger.Fields{"flow": cfg.Flow.String()}),
	}
}

func (a *BaseAdapter) Name() string       { return a.Config.Name }
func (a *BaseAdapter) Terminal() string   { return a.Config.Terminal }
func (a *BaseAdapter) SupportsBulk() bool { return a.Config.Bulk }

// FetchSchedule implements Adapter
func (a *BaseAdapter) FetchSchedule(ctx context.Context, q schedule.Query) schedule.Result {
	var records []schedule.Record
	err := a.run(ctx, "lookup", func(ctx context.Context, s *session) error {
		var err error
		records, err = a.flow.lookup(ctx, s, q)
		return err
	})
	if err != nil {
		return schedule.Failure(a.Terminal(), err)
	}
	return a.resolve(q, records)
}

// FetchAll implements Adapter
func (a *BaseAdapter) FetchAll(ctx context.Context) schedule.BulkResult {
	if !a.Config.Bulk {
		return schedule.BulkFailure(a.Terminal(),
			scrapeerrors.NewConfiguration(a.Name()+" does not support full schedule mode", nil))
	}
	var records []schedule.Record
	err := a.run(ctx, "bulk", func(ctx context.Context, s *session) error {
		var err error
		records, err = a.flow.all(ctx, s)
		return err
	})
	if err != nil {
		return schedule.BulkFailure(a.Terminal(), err)
	}
	return schedule.BulkSuccess(a.Terminal(), schedule.Dedupe(records))
}

// resolve narrows records to the vessel and, when one was requested, the voyage.
// Without a voyage match every vessel record is returned with voyage_found=false.
func (a *BaseAdapter) resolve(q schedule.Query, records []schedule.Record) schedule.Result {
	vessel := schedule.Dedupe(extract.SelectVessel(records, q.VesselName))
	if len(vessel) == 0 {
		a.log.Info().Str("vessel", q.VesselName).Msg("Vessel not listed")
		return schedule.NotFound(a.Terminal())
	}
	vessel = atTerminal(vessel, q.TerminalHint)

	if q.VoyageCode == nil {
		voyageFound := false
		for _, r := range vessel {
			if r.Voyage != nil || r.VoyageOut != nil {
				voyageFound = true
				break
			}
		}
		return schedule.Found(a.Terminal(), vessel, voyageFound)
	}

	var voyage []schedule.Record
	for _, r := range vessel {
		if q.VoyageMatches(r.Voyage, r.VoyageOut) {
			voyage = append(voyage, r)
		}
	}
	if len(voyage) == 0 {
		a.log.Info().Str("vessel", q.VesselName).Str("voyage", *q.VoyageCode).Msg("Voyage not listed")
		return schedule.Found(a.Terminal(), vessel, false)
	}
	return schedule.Found(a.Terminal(), voyage, true)
}

// atTerminal keeps the records whose berth or port terminal mentions hint. A hint
// that matches nothing is ignored so that a stale berth never hides the vessel.
func atTerminal(records []schedule.Record, hint *string) []schedule.Record {
	if hint == nil || *hint == "" {
		return records
	}
	var out []schedule.Record
	for _, r := range records {
		if (r.Berth != nil && helpers.ContainsFold(*r.Berth, *hint)) ||
			(r.PortTerminal != nil && helpers.ContainsFold(*r.PortTerminal, *hint)) {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return records
	}
	return out
}

// run opens a session, runs fn and guarantees that the browser is closed exactly
// once, whether fn returns, fails, panics or ctx is cancelled underneath it.
func (a *BaseAdapter) run(ctx context.Context, op string, fn func(context.Context, *session) error) (err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = scrapeerrors.NewInternal(a.Name(), fmt.Sprintf("panic during %s: %v", op, r), nil)
			a.log.Error().Str("stack", string(debug.Stack())).Msg("Recovered panic")
		}
		elapsed := time.Since(start)
		if err != nil {
			a.log.Warn().Err(err).Str("op", op).Dur("elapsed", elapsed).Msg("Terminal call failed")
			return
		}
		a.log.Info().Str("op", op).Dur("elapsed", elapsed).Msg("Terminal call finished")
	}()

	a.log.Debug().Str("op", op).Msg("Starting terminal call")
	s := &session{cfg: a.Config, deps: a.deps, log: a.log}

	if a.Config.Flow.NeedsBrowser() {
		page, err := a.launch(ctx)
		if err != nil {
			return a.classify(ctx, start, err)
		}
		var once sync.Once
		closePage := func() {
			once.Do(func() {
				if cerr := page.Close(); cerr != nil {
					a.log.Warn().Err(cerr).Msg("Failed to close browser")
				}
			})
		}
		stop := context.AfterFunc(ctx, closePage)
		defer func() {
			stop()
			closePage()
		}()
		s.page = page
	}

	// registered after the close so diagnostics see a live page
	defer func() {
		if r := recover(); r != nil {
			a.log.Error().Str("stack", string(debug.Stack())).Msg("Recovered panic")
			err = scrapeerrors.NewInternal(a.Name(), fmt.Sprintf("panic during %s: %v", op, r), nil)
		}
		if err != nil {
			err = a.classify(ctx, start, err)
			a.diagnose(ctx, s, err)
		}
	}()

	return fn(ctx, s)
}

func (a *BaseAdapter) launch(ctx context.Context) (browser.Page, error) {
	if a.deps.Launcher == nil {
		return nil, scrapeerrors.NewLaunch(a.Name(), errors.New("no browser launcher configured"))
	}
	page, err := a.deps.Launcher.Launch(ctx, a.deps.Browser)
	if err != nil {
		return nil, scrapeerrors.NewLaunch(a.Name(), err)
	}
	return page, nil
}

// classify maps an arbitrary failure onto a typed ScrapeError
func (a *BaseAdapter) classify(ctx context.Context, start time.Time, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		if scrapeerrors.TypeOf(err) == scrapeerrors.ErrorTypeTimeout {
			return err
		}
		timeout := scrapeerrors.NewTimeout(a.Name(), time.Since(start).Round(time.Millisecond))
		timeout.Err = err
		return timeout
	}
	var se *scrapeerrors.ScrapeError
	if errors.As(err, &se) {
		return err
	}
	switch {
	case errors.Is(err, browser.ErrNavigationTimeout):
		return scrapeerrors.NewNavigation(a.Name(), "page did not load in time", err)
	case errors.Is(err, browser.ErrElementNotFound):
		return scrapeerrors.New(scrapeerrors.ErrorTypeSearchSurface, a.Name(), "search surface not found", err)
	case errors.Is(err, context.DeadlineExceeded):
		return scrapeerrors.NewNavigation(a.Name(), "operation timed out", err)
	default:
		return scrapeerrors.NewInternal(a.Name(), "unexpected failure", err)
	}
}

// diagnose writes the error log line, an HTML dump and a screenshot. The page may
// already be closed when ctx expired, so it works on a detached context.
func (a *BaseAdapter) diagnose(ctx context.Context, s *session, err error) {
	d := a.deps.Diagnostics
	if d == nil || !d.Enabled() {
		return
	}
	d.LogError(a.Name(), err)

	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	html := s.lastHTML
	if s.page != nil && ctx.Err() == nil {
		if live, herr := s.page.HTML(dctx); herr == nil {
			html = live
		}
		if path := d.ScreenshotPath(a.Name()); path != "" {
			if serr := s.page.Screenshot(dctx, path); serr != nil {
				a.log.Debug().Err(serr).Msg("Screenshot failed")
			} else {
				a.log.Info().Str("path", path).Msg("Saved failure screenshot")
			}
		}
	}
	if html != "" {
		if path := d.DumpHTML(a.Name(), html); path != "" {
			a.log.Info().Str("path", path).Msg("Saved failure HTML")
		}
	}
}
