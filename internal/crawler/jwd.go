package crawler

import (
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
)

// JWD (Bangkok). Whole schedule rendered client-side into the second table on the
// page; the first is a legend.
//
//	0 Vessel | 1 Agent | 2 Voyage | 3 ETA | 4 ETD | 5 Berth
var jwdLayout = extract.Layout{
	schedule.FieldVessel,
	schedule.FieldSkip,
	schedule.FieldVoyage,
	schedule.FieldETA,
	schedule.FieldETD,
	schedule.FieldBerth,
}

// NewJWD creates the JWD adapter
func NewJWD(url string, deps Deps) Adapter {
	return NewBaseAdapter(TerminalConfig{
		Name:       "jwd",
		Terminal:   "JWD",
		URL:        url,
		Flow:       FlowStaticTable,
		Bulk:       true,
		ResultRows: 4,
		Table: extract.PrimaryTable{
			Selector: "table",
			Index:    1,
			Layout:   jwdLayout,
			MinCells: 5,
		},
	}, deps, staticTableFlow{})
}
