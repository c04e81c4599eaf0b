package extract

import (
	"slices"
	"strings"

	"sjsage522/vesselschedule/internal/schedule"
)

// NormalizeName reduces a vessel name for comparison: uppercase, no M.V. prefix,
// no trailing voyage token, single spaces.
func NormalizeName(name string) string {
	name = schedule.CleanVesselName(name)
	name, _ = schedule.ParseQuery(name)
	name = strings.NewReplacer(".", " ", ",", " ", "(", " ", ")", " ").Replace(name)
	return strings.Join(strings.Fields(name), " ")
}

// MatchVessel reports whether candidate (a table cell or option text) names the
// queried vessel: equal after normalization, or containing the query.
func MatchVessel(candidate, query string) bool {
	c, q := NormalizeName(candidate), NormalizeName(query)
	if c == "" || q == "" {
		return false
	}
	return c == q || strings.Contains(c, q)
}

// ExactVessel reports whether candidate and query name the same vessel after
// normalization.
func ExactVessel(candidate, query string) bool {
	c := NormalizeName(candidate)
	return c != "" && c == NormalizeName(query)
}

// SelectVessel keeps the records naming query. Exact names win; substring matches
// ("EVER BUILDER" for "EVER BUILD") are returned only when no record is exact.
func SelectVessel(records []schedule.Record, query string) []schedule.Record {
	var exact, loose []schedule.Record
	for _, r := range records {
		switch {
		case ExactVessel(r.VesselName, query):
			exact = append(exact, r)
		case MatchVessel(r.VesselName, query):
			loose = append(loose, r)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return loose
}

// HasExactVessel reports whether any record names query exactly.
func HasExactVessel(records []schedule.Record, query string) bool {
	return slices.ContainsFunc(records, func(r schedule.Record) bool {
		return ExactVessel(r.VesselName, query)
	})
}

// MatchOption picks the option that best names query. Preference: exact, option
// contains query, query contains option (longest wins), every query word present.
func MatchOption(options []string, query string) (int, bool) {
	q := NormalizeName(query)
	if q == "" {
		return -1, false
	}
	norm := make([]string, len(options))
	for i, o := range options {
		norm[i] = NormalizeName(o)
	}

	for i, o := range norm {
		if o == q {
			return i, true
		}
	}
	for i, o := range norm {
		if o != "" && strings.Contains(o, q) {
			return i, true
		}
	}
	best := -1
	for i, o := range norm {
		if len(o) >= 3 && strings.Contains(q, o) && (best < 0 || len(o) > len(norm[best])) {
			best = i
		}
	}
	if best >= 0 {
		return best, true
	}
	words := strings.Fields(q)
	for i, o := range norm {
		if o == "" {
			continue
		}
		optWords := strings.Fields(o)
		all := true
		for _, w := range words {
			if !slices.Contains(optWords, w) {
				all = false
				break
			}
		}
		if all {
			return i, true
		}
	}
	return -1, false
}
