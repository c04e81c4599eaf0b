package crawler

import (
	"context"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/vesselschedule/helpers"
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
	scrapeerrors "sjsage522/vesselschedule/pkg/errors"
)

// voyageSection is one voyage block on a vessel page. Ports, Arrivals and
// Departures are parallel arrays.
type voyageSection struct {
	Voyage     string
	Ports      []string
	Arrivals   []string
	Departures []string
}

// directLinkFlow skips the search UI: vessel names map to codes and the vessel page
// is opened by URL.
type directLinkFlow struct {
	codes    map[string]string
	link     func(base, code string) string
	ports    []string
	sections func(doc *goquery.Document) []voyageSection
}

func (f directLinkFlow) lookup(ctx context.Context, s *session, q schedule.Query) ([]schedule.Record, error) {
	name, code, ok := f.code(q.VesselName)
	if !ok {
		s.log.Info().Str("vessel", q.VesselName).Msg("Vessel not in code table")
		return nil, nil
	}
	if err := s.navigate(ctx, f.link(s.cfg.URL, code)); err != nil {
		return nil, err
	}
	if err := s.waitResults(ctx); err != nil {
		return nil, err
	}
	html, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := extract.ParseDocument(html)
	if err != nil {
		return nil, scrapeerrors.NewInternal(s.cfg.Name, "failed to parse vessel page", err)
	}

	sections := f.sections(doc)
	if q.VoyageCode != nil {
		var picked []voyageSection
		for _, sec := range sections {
			v := sec.Voyage
			if q.VoyageMatches(&v) {
				picked = append(picked, sec)
			}
		}
		if len(picked) > 0 {
			sections = picked
		}
	}

	var rows []extract.Row
	ambiguous := 0
	for _, sec := range sections {
		row, ok, err := f.pair(name, code, sec)
		if err != nil {
			s.log.Warn().Err(err).Str("voyage", sec.Voyage).Msg("Skipping voyage section")
			ambiguous++
			continue
		}
		if ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 && ambiguous > 0 {
		return nil, scrapeerrors.New(scrapeerrors.ErrorTypeExtractionAmbiguous, s.cfg.Name,
			"port and date columns do not line up", nil)
	}
	return s.normalize(rows, extract.MethodDirectLink), nil
}

func (directLinkFlow) all(context.Context, *session) ([]schedule.Record, error) {
	return nil, errBulkUnsupported
}

// code resolves a query to a table entry. Voyage suffixes are stripped first.
func (f directLinkFlow) code(query string) (string, string, bool) {
	name, _ := schedule.ParseQuery(query)
	names := make([]string, 0, len(f.codes))
	for n := range f.codes {
		names = append(names, n)
	}
	slices.Sort(names)
	idx, ok := extract.MatchOption(names, name)
	if !ok {
		return "", "", false
	}
	return names[idx], f.codes[names[idx]], true
}

// pair finds this terminal in the port list and reads the dates at the same index
func (f directLinkFlow) pair(name, code string, sec voyageSection) (extract.Row, bool, error) {
	if len(sec.Arrivals) != len(sec.Ports) ||
		(len(sec.Departures) > 0 && len(sec.Departures) != len(sec.Ports)) {
		return extract.Row{}, false, scrapeerrors.New(scrapeerrors.ErrorTypeExtractionAmbiguous, "",
			"ports and dates differ in length", nil)
	}
	at := slices.IndexFunc(sec.Ports, func(p string) bool {
		return slices.ContainsFunc(f.ports, func(want string) bool { return helpers.ContainsFold(p, want) })
	})
	if at < 0 {
		return extract.Row{}, false, nil
	}
	row := schedule.NewRawRow()
	row.Set(schedule.FieldVessel, name)
	row.Set(schedule.FieldVoyage, sec.Voyage)
	row.Set(schedule.FieldETA, sec.Arrivals[at])
	if len(sec.Departures) > 0 {
		row.Set(schedule.FieldETD, sec.Departures[at])
	}
	row.Set(schedule.FieldTerminal, sec.Ports[at])
	row.Raw["vessel_code"] = code
	row.Raw["port"] = sec.Ports[at]
	row.Raw["ports"] = strings.Join(sec.Ports, " | ")
	return row, true, nil
}
