package crawler

import (
	"sjsage522/vesselschedule/internal/browser"
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
)

// Hutchison Ports Thailand (Laem Chabang C1/C2/D). Search box behind a cookie banner
// that swallows clicks until accepted; bot-hostile, so evasion matters here most.
//
// Result table table.vessel-schedule:
//
//	0 Vessel | 1 Voyage In | 2 Voyage Out | 3 Terminal | 4 ETB | 5 ETD | 6 CY Cut-off
var hutchisonLayout = extract.Layout{
	schedule.FieldVessel,
	schedule.FieldVoyage,
	schedule.FieldVoyageOut,
	schedule.FieldTerminal,
	schedule.FieldETB,
	schedule.FieldETD,
	schedule.FieldCutoff,
}

// NewHutchison creates the Hutchison adapter
func NewHutchison(url string, deps Deps) Adapter {
	return NewBaseAdapter(TerminalConfig{
		Name:     "hutchison",
		Terminal: "Hutchison Ports Thailand",
		URL:      url,
		Flow:     FlowFormSearch,
		Wait:     browser.NetworkIdle,
		ConsentSelectors: []string{
			"#onetrust-accept-btn-handler",
			".cookie-consent button.accept",
			"button[data-action=accept-cookies]",
		},
		SearchInputs: []string{
			"input#vesselName",
			"input[name=vessel]",
			"input[type=search]",
		},
		SubmitSelectors: []string{"button#search", "form.vessel-search button[type=submit]"},
		Table: extract.PrimaryTable{
			Selector: "table.vessel-schedule",
			Layout:   hutchisonLayout,
			MinCells: 5,
		},
	}, deps, formSearchFlow{})
}
