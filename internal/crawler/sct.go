package crawler

import (
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
)

// SCT Sahathai (Bangkok). Server-rendered Thai page; headers are Thai and dates use
// Thai month abbreviations with Buddhist-era years ("22 ก.ค. 68 14:00").
//
// Table table.schedule:
//
//	0 ชื่อเรือ | 1 เที่ยวเข้า | 2 เที่ยวออก | 3 ท่า | 4 วันที่เรือเข้า | 5 วันที่เรือออก
var sctLayout = extract.Layout{
	schedule.FieldVessel,
	schedule.FieldVoyage,
	schedule.FieldVoyageOut,
	schedule.FieldBerth,
	schedule.FieldETA,
	schedule.FieldETD,
}

// NewSCT creates the Sahathai adapter
func NewSCT(url string, deps Deps) Adapter {
	return NewBaseAdapter(TerminalConfig{
		Name:     "sct",
		Terminal: "SCT Sahathai",
		URL:      url,
		Flow:     FlowHTTPTable,
		Bulk:     true,
		Table: extract.PrimaryTable{
			Selector: "table.schedule",
			Layout:   sctLayout,
			MinCells: 5,
		},
		TextWindow: 4,
	}, deps, httpTableFlow{})
}
