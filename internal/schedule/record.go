package schedule

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sjsage522/vesselschedule/internal/dateparse"
)

// Timestamp is a terminal-local wall-clock time rendered as "YYYY-MM-DD HH:MM:SS".
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// Now returns the current time in the terminals' zone.
func Now() Timestamp {
	return Timestamp{Time: time.Now().In(dateparse.Location).Truncate(time.Second)}
}

func (t Timestamp) String() string {
	return dateparse.Format(t.Time)
}

// MarshalJSON implements json.Marshaler
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseInLocation(dateparse.CanonicalLayout, s, dateparse.Location)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// Record is one vessel call at one terminal. Absent fields marshal as null.
type Record struct {
	VesselName       string            `json:"vessel_name"`
	Voyage           *string           `json:"voyage"`
	VoyageOut        *string           `json:"voyage_out"`
	ETA              *Timestamp        `json:"eta"`
	ETD              *Timestamp        `json:"etd"`
	ATB              *Timestamp        `json:"atb"`
	Berth            *string           `json:"berth"`
	PortTerminal     *string           `json:"port_terminal"`
	Status           *string           `json:"status"`
	OpenGate         *Timestamp        `json:"opengate"`
	Cutoff           *Timestamp        `json:"cutoff"`
	RawData          map[string]string `json:"raw_data"`
	Source           string            `json:"source"`
	ExtractionMethod string            `json:"extraction_method"`
}

// Field names a canonical slot that an extractor can fill from a source cell.
type Field string

const (
	FieldVessel    Field = "vessel"
	FieldVoyage    Field = "voyage"
	FieldVoyageOut Field = "voyage_out"
	FieldATB       Field = "atb"
	FieldETB       Field = "etb"
	FieldETA       Field = "eta"
	FieldATD       Field = "atd"
	FieldETD       Field = "etd"
	FieldText      Field = "text_date"
	FieldBerth     Field = "berth"
	FieldTerminal  Field = "terminal"
	FieldStatus    Field = "status"
	FieldOpenGate  Field = "opengate"
	FieldCutoff    Field = "cutoff"
	FieldSkip      Field = ""
)

// RawRow is what an extraction strategy produces before normalization: the cells it
// could attribute to canonical fields plus every source cell it saw.
type RawRow struct {
	Fields map[Field]string
	Raw    map[string]string
}

// NewRawRow returns an empty row ready for filling.
func NewRawRow() RawRow {
	return RawRow{Fields: map[Field]string{}, Raw: map[string]string{}}
}

// Get returns the trimmed value for f.
func (r RawRow) Get(f Field) string {
	return strings.TrimSpace(r.Fields[f])
}

// Set stores v under f unless f is already filled or v is blank.
func (r RawRow) Set(f Field, v string) {
	if f == FieldSkip || strings.TrimSpace(v) == "" {
		return
	}
	if _, ok := r.Fields[f]; ok {
		return
	}
	r.Fields[f] = v
}

// fillFirst stores v under the first of fields that is still empty.
func (r RawRow) fillFirst(v string, fields ...Field) {
	for _, f := range fields {
		if _, ok := r.Fields[f]; !ok {
			r.Set(f, v)
			return
		}
	}
}
