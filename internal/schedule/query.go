package schedule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"sjsage522/vesselschedule/helpers"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Query is the input to a single-vessel lookup.
type Query struct {
	VesselName   string  `json:"vessel_name" validate:"required,min=2,max=80"`
	VoyageCode   *string `json:"voyage_code" validate:"omitempty"`
	TerminalHint *string `json:"terminal_hint" validate:"omitempty"`
}

// voyageToken matches a trailing voyage code such as 0815-079S, 123S, V.123S or
// 24N01. A bare number is deliberately not a voyage ("WAN HAI 517").
var voyageToken = regexp.MustCompile(`(?i)^(?:V\.?)?(?:\d{2,4}[NSEW]\d{0,3}|\d{3,4}-\d{2,4}[NSEW]?|\d{2,4}[NSEW]-\d{2,4}[NSEW])$`)

// NewQuery builds and validates a Query. An empty voyage or terminal means absent;
// when voyage is absent it is split off the vessel name if one is embedded.
func NewQuery(vessel, voyage, terminal string) (Query, error) {
	q := Query{
		VesselName:   helpers.CollapseSpaces(vessel),
		VoyageCode:   helpers.StringPtr(voyage),
		TerminalHint: helpers.StringPtr(terminal),
	}
	if q.VoyageCode == nil {
		name, voy := ParseQuery(q.VesselName)
		if voy != "" {
			q.VesselName = name
			q.VoyageCode = &voy
		}
	}
	if err := validate.Struct(q); err != nil {
		return Query{}, fmt.Errorf("invalid query: %w", err)
	}
	return q, nil
}

// ParseQuery splits a trailing voyage token off a vessel name. When there is none,
// the name is returned unchanged with an empty voyage.
func ParseQuery(vessel string) (name, voyage string) {
	vessel = helpers.CollapseSpaces(vessel)
	parts := strings.Split(vessel, " ")
	if len(parts) < 2 {
		return vessel, ""
	}
	last := parts[len(parts)-1]
	if !voyageToken.MatchString(last) {
		return vessel, ""
	}
	return strings.Join(parts[:len(parts)-1], " "), strings.ToUpper(last)
}

// Voyage returns the voyage code or "".
func (q Query) Voyage() string {
	if q.VoyageCode == nil {
		return ""
	}
	return *q.VoyageCode
}

// VoyageMatches reports whether a record's voyage refers to the queried voyage.
// Combined codes like 0815-079S match either half.
func (q Query) VoyageMatches(voyages ...*string) bool {
	want := voyageParts(q.Voyage())
	if len(want) == 0 {
		return false
	}
	for _, v := range voyages {
		if v == nil {
			continue
		}
		for _, got := range voyageParts(*v) {
			for _, w := range want {
				if strings.Contains(got, w) || strings.Contains(w, got) {
					return true
				}
			}
		}
	}
	return false
}

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]+`)

func voyageParts(v string) []string {
	v = strings.ToUpper(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(v)), "V."))
	var out []string
	for _, p := range strings.FieldsFunc(v, func(r rune) bool { return r == '-' || r == '/' || r == ' ' }) {
		if p = nonAlnum.ReplaceAllString(p, ""); len(p) >= 2 {
			out = append(out, p)
		}
	}
	return out
}
