package crawler

import (
	"sjsage522/vesselschedule/internal/browser"
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
)

// ESCO (Laem Chabang B3). Oracle APEX classic report; pagination is itself a
// <select> ("row(s) 1 - 15 of 54") and there is no cross-page search.
//
// Report table .t-Report-report:
//
//	0 Vessel | 1 Voyage | 2 Service | 3 Berth | 4 ETA | 5 ETD | 6 Status
var escoLayout = extract.Layout{
	schedule.FieldVessel,
	schedule.FieldVoyage,
	schedule.FieldSkip,
	schedule.FieldBerth,
	schedule.FieldETA,
	schedule.FieldETD,
	schedule.FieldStatus,
}

// NewESCO creates the ESCO adapter
func NewESCO(url string, deps Deps) Adapter {
	return NewBaseAdapter(TerminalConfig{
		Name:        "esco",
		Terminal:    "ESCO",
		URL:         url,
		Flow:        FlowApexPaged,
		Bulk:        true,
		Wait:        browser.NetworkIdle,
		PagerSelect: ".t-Report-paginationText select",
		ResultWords: []string{"row(s)", "ETA"},
		Table: extract.PrimaryTable{
			Selector: "table.t-Report-report",
			Layout:   escoLayout,
			MinCells: 5,
		},
	}, deps, apexPagedFlow{})
}
