package crawler

import (
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
)

// Unithai (Laem Chabang A3). Berth schedule table; dates are "04 OCT 25/21:00".
//
// Table #berth-schedule table:
//
//	0 Berth | 1 Vessel | 2 Voyage | 3 ETB | 4 ETD | 5 Cut-off
var unithaiLayout = extract.Layout{
	schedule.FieldBerth,
	schedule.FieldVessel,
	schedule.FieldVoyage,
	schedule.FieldETB,
	schedule.FieldETD,
	schedule.FieldCutoff,
}

// NewUnithai creates the Unithai adapter
func NewUnithai(url string, deps Deps) Adapter {
	return NewBaseAdapter(TerminalConfig{
		Name:     "unithai",
		Terminal: "Unithai",
		URL:      url,
		Flow:     FlowStaticTable,
		Bulk:     true,
		Table: extract.PrimaryTable{
			Selector: "#berth-schedule table",
			Layout:   unithaiLayout,
			MinCells: 5,
		},
	}, deps, staticTableFlow{})
}
