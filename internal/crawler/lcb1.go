package crawler

import (
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
)

// LCB1 (Laem Chabang A0/B1). DataTables grid paged with a Next link.
//
// Grid #berthSchedule:
//
//	0 No. | 1 Vessel | 2 Voyage In | 3 Voyage Out | 4 Terminal | 5 ETA | 6 ETD | 7 Status
var lcb1Layout = extract.Layout{
	schedule.FieldSkip,
	schedule.FieldVessel,
	schedule.FieldVoyage,
	schedule.FieldVoyageOut,
	schedule.FieldTerminal,
	schedule.FieldETA,
	schedule.FieldETD,
	schedule.FieldStatus,
}

// NewLCB1 creates the LCB1 adapter
func NewLCB1(url string, deps Deps) Adapter {
	return NewBaseAdapter(TerminalConfig{
		Name:     "lcb1",
		Terminal: "LCB1",
		URL:      url,
		Flow:     FlowNextPager,
		Bulk:     true,
		NextSelectors: []string{
			"a.paginate_button.next:not(.disabled)",
			"li.next:not(.disabled) > a",
			"a[rel=next]",
		},
		Table: extract.PrimaryTable{
			Selector: "#berthSchedule",
			Layout:   lcb1Layout,
			MinCells: 7,
		},
	}, deps, nextPagerFlow{})
}
