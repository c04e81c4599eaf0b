package schedule

import (
	"encoding/json"

	scrapeerrors "sjsage522/vesselschedule/pkg/errors"
)

// Result is the envelope returned by every single-vessel lookup.
type Result struct {
	Success     bool      `json:"success"`
	Terminal    string    `json:"terminal"`
	VesselFound bool      `json:"vessel_found"`
	VoyageFound bool      `json:"voyage_found"`
	Records     []Record  `json:"records"`
	Error       *string   `json:"error"`
	ErrorType   *string   `json:"error_type"`
	ScrapedAt   Timestamp `json:"scraped_at"`
}

// BulkResult is the envelope for full-schedule mode.
type BulkResult struct {
	Success   bool      `json:"success"`
	Terminal  string    `json:"terminal"`
	Vessels   []Record  `json:"vessels"`
	Error     *string   `json:"error"`
	ScrapedAt Timestamp `json:"scraped_at"`
}

// Found builds a successful result. An empty records slice means the search ran
// and the vessel is not listed.
func Found(terminal string, records []Record, voyageFound bool) Result {
	return Result{
		Success:     true,
		Terminal:    terminal,
		VesselFound: len(records) > 0,
		VoyageFound: voyageFound && len(records) > 0,
		Records:     records,
		ScrapedAt:   Now(),
	}.Finalize()
}

// NotFound is a successful search that did not list the vessel.
func NotFound(terminal string) Result {
	return Found(terminal, nil, false)
}

// Failure converts err into a success=false result.
func Failure(terminal string, err error) Result {
	msg := err.Error()
	typ := string(scrapeerrors.TypeOf(err))
	return Result{
		Terminal:  terminal,
		Error:     &msg,
		ErrorType: &typ,
		ScrapedAt: Now(),
	}.Finalize()
}

// Finalize enforces the envelope invariants: records is never nil, and a failed
// result carries no records and no found flags.
func (r Result) Finalize() Result {
	if !r.Success {
		r.Records = []Record{}
		r.VesselFound = false
		r.VoyageFound = false
		if r.Error == nil {
			msg := "unknown failure"
			r.Error = &msg
		}
	}
	if r.Records == nil {
		r.Records = []Record{}
	}
	if r.ScrapedAt.IsZero() {
		r.ScrapedAt = Now()
	}
	return r
}

// MarshalJSON finalizes a copy before encoding so callers cannot emit a broken envelope.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(plain(r.Finalize()))
}

// BulkSuccess builds a full-schedule result.
func BulkSuccess(terminal string, vessels []Record) BulkResult {
	if vessels == nil {
		vessels = []Record{}
	}
	return BulkResult{Success: true, Terminal: terminal, Vessels: vessels, ScrapedAt: Now()}
}

// BulkFailure converts err into a failed full-schedule result.
func BulkFailure(terminal string, err error) BulkResult {
	msg := err.Error()
	return BulkResult{Terminal: terminal, Vessels: []Record{}, Error: &msg, ScrapedAt: Now()}
}

// MarshalJSON keeps vessels as [] rather than null.
func (b BulkResult) MarshalJSON() ([]byte, error) {
	type plain BulkResult
	if b.Vessels == nil {
		b.Vessels = []Record{}
	}
	return json.Marshal(plain(b))
}
