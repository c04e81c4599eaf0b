package crawler

import (
	"context"
	"time"

	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
	scrapeerrors "sjsage522/vesselschedule/pkg/errors"
)

const defaultXMLRetention = 90 * 24 * time.Hour

// xmlFlow queries an XML endpoint with a wildcard vessel parameter and filters
// locally. The endpoint returns history too, so stale arrivals are dropped.
type xmlFlow struct {
	// endpoint builds the wildcard request URL from the configured base
	endpoint func(base string) string
	// decode turns the response body into raw rows
	decode func(body string) ([]extract.Row, error)
}

func (f xmlFlow) lookup(ctx context.Context, s *session, q schedule.Query) ([]schedule.Record, error) {
	records, err := f.load(ctx, s)
	if err != nil {
		return nil, err
	}
	return extract.SelectVessel(records, q.VesselName), nil
}

func (f xmlFlow) all(ctx context.Context, s *session) ([]schedule.Record, error) {
	return f.load(ctx, s)
}

func (f xmlFlow) load(ctx context.Context, s *session) ([]schedule.Record, error) {
	body, err := s.fetch(ctx, f.endpoint(s.cfg.URL))
	if err != nil {
		return nil, err
	}
	rows, err := f.decode(body)
	if err != nil {
		return nil, scrapeerrors.NewFetch(s.cfg.Name, "malformed XML response", err)
	}
	records := s.normalize(rows, extract.MethodXMLAPI)
	fresh := dropStale(records, s.deps.now(), retention(s.deps))
	s.log.Debug().Int("entries", len(records)).Int("fresh", len(fresh)).Msg("Decoded XML schedule")
	return fresh, nil
}

func retention(d Deps) time.Duration {
	if d.XMLRetention > 0 {
		return d.XMLRetention
	}
	return defaultXMLRetention
}

// dropStale removes records whose ETA is older than window. Records without an ETA
// are kept.
func dropStale(records []schedule.Record, now time.Time, window time.Duration) []schedule.Record {
	cutoff := now.Add(-window)
	out := make([]schedule.Record, 0, len(records))
	for _, r := range records {
		if r.ETA != nil && r.ETA.Before(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out
}
