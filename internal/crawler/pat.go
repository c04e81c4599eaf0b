package crawler

import (
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
)

// PAT Bangkok Port (BKP). Server-rendered, no JS needed. Vessel cells carry an
// "M.V." prefix.
//
// Table #schedule table.grid:
//
//	0 Vessel | 1 Voyage In | 2 Voyage Out | 3 Status | 4 ETA | 5 ETD
//
// Dates are "01/01/2025 - 10:00".
var patLayout = extract.Layout{
	schedule.FieldVessel,
	schedule.FieldVoyage,
	schedule.FieldVoyageOut,
	schedule.FieldStatus,
	schedule.FieldETA,
	schedule.FieldETD,
}

// NewPAT creates the Bangkok Port adapter
func NewPAT(url string, deps Deps) Adapter {
	return NewBaseAdapter(TerminalConfig{
		Name:     "pat",
		Terminal: "PAT Bangkok Port",
		URL:      url,
		Flow:     FlowHTTPTable,
		Bulk:     true,
		Table: extract.PrimaryTable{
			Selector: "#schedule table.grid",
			Layout:   patLayout,
			MinCells: 6,
		},
	}, deps, httpTableFlow{})
}
