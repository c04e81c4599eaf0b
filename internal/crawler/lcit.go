package crawler

import (
	"sjsage522/vesselschedule/internal/browser"
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
)

// LCIT (Laem Chabang B5/C3). No query API: a vessel <select> drives the search and
// bulk mode walks every option.
//
// Result table #schedule-result table:
//
//	0 Vessel | 1 Voyage In | 2 Voyage Out | 3 Berth | 4 ETB | 5 ETD | 6 Closing | 7 Open Gate
//
// Dates are "22/07/2025 - 04:00".
var lcitLayout = extract.Layout{
	schedule.FieldVessel,
	schedule.FieldVoyage,
	schedule.FieldVoyageOut,
	schedule.FieldBerth,
	schedule.FieldETB,
	schedule.FieldETD,
	schedule.FieldCutoff,
	schedule.FieldOpenGate,
}

// NewLCIT creates the LCIT adapter
func NewLCIT(url string, deps Deps) Adapter {
	return NewBaseAdapter(TerminalConfig{
		Name:            "lcit",
		Terminal:        "LCIT",
		URL:             url,
		Flow:            FlowDropdown,
		Bulk:            true,
		Wait:            browser.NetworkIdle,
		VesselSelect:    "select#vesselName",
		SubmitSelectors: []string{"#btnSearch", "button[type=submit]", "input[type=submit]"},
		ResultRows:      2,
		Table: extract.PrimaryTable{
			Selector: "#schedule-result table",
			Layout:   lcitLayout,
			MinCells: 6,
		},
	}, deps, dropdownFlow{})
}
