package crawler

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/vesselschedule/helpers"
	"sjsage522/vesselschedule/internal/extract"
)

// Kerry Siam Seaport (KSSP). Each vessel has its own page keyed by an internal code;
// the page lists many voyages, each with a port rotation and parallel ETA/ETD rows.
//
//	div.voyage-block
//	  .voyage-no            "Voyage: 0815-079S"
//	  table.route tr.ports  th | port 1 | port 2 | ...
//	  table.route tr.eta    th | ETA 1  | ETA 2  | ...
//	  table.route tr.etd    th | ETD 1  | ETD 2  | ...
var kerryVesselCodes = map[string]string{
	"EVER BUILD":        "EVBD",
	"EVER BLOOM":        "EVBL",
	"WAN HAI 517":       "WH517",
	"WAN HAI 302":       "WH302",
	"KMTC SHANGHAI":     "KMSH",
	"KMTC NINGBO":       "KMNB",
	"SITC HAKATA":       "SCHK",
	"SITC MAKASSAR":     "SCMK",
	"INTERASIA PURSUIT": "IAPU",
	"INTERASIA ENGAGE":  "IAEN",
	"YM INTEGRITY":      "YMIN",
	"HMM DAON":          "HMDA",
	"ONE REINFORCEMENT": "ONRF",
	"CAPE FAWLEY":       "CPFW",
	"MOUNT CAMERON":     "MTCM",
}

var kerryPorts = []string{"KSSP", "KERRY"}

func kerryLink(base, code string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?code=" + url.QueryEscape(code)
	}
	q := u.Query()
	q.Set("code", code)
	u.RawQuery = q.Encode()
	return u.String()
}

func kerrySections(doc *goquery.Document) []voyageSection {
	var out []voyageSection
	doc.Find("div.voyage-block").Each(func(_ int, block *goquery.Selection) {
		heading := extract.CellText(block.Find(".voyage-no").First())
		if label, err := helpers.GetSplitPart(heading, ":", 1); err == nil {
			heading = label
		}
		fields := strings.Fields(heading)
		if len(fields) == 0 {
			return
		}
		out = append(out, voyageSection{
			Voyage:     fields[len(fields)-1],
			Ports:      routeCells(block, "tr.ports"),
			Arrivals:   routeCells(block, "tr.eta"),
			Departures: routeCells(block, "tr.etd"),
		})
	})
	return out
}

func routeCells(block *goquery.Selection, row string) []string {
	var cells []string
	block.Find("table.route " + row + " td").Each(func(_ int, td *goquery.Selection) {
		cells = append(cells, extract.CellText(td))
	})
	return cells
}

// NewKerry creates the Kerry Siam Seaport adapter
func NewKerry(url string, deps Deps) Adapter {
	return NewBaseAdapter(TerminalConfig{
		Name:        "kerry",
		Terminal:    "Kerry Siam Seaport",
		URL:         url,
		Flow:        FlowDirectLink,
		ResultWords: []string{"Voyage", "ETA"},
	}, deps, directLinkFlow{
		codes:    kerryVesselCodes,
		link:     kerryLink,
		ports:    kerryPorts,
		sections: kerrySections,
	})
}
