package crawler

import (
	"encoding/xml"
	"net/url"
	"strings"

	"sjsage522/vesselschedule/helpers"
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
)

// TIPS (Laem Chabang B4). XML endpoint queried with a wildcard vessel; the response
// includes past calls, so stale entries are dropped.
//
//	<VesselSchedules>
//	  <Schedule>
//	    <VesselName/> <VoyageIn/> <VoyageOut/> <Berth/> <ETA/> <ETD/> <ATB/>
//	    <OpenGate/> <CutOff/> <Status/>
//	  </Schedule>
//	</VesselSchedules>
type tipsSchedules struct {
	XMLName   xml.Name    `xml:"VesselSchedules"`
	Schedules []tipsEntry `xml:"Schedule"`
}

type tipsEntry struct {
	VesselName string `xml:"VesselName"`
	VoyageIn   string `xml:"VoyageIn"`
	VoyageOut  string `xml:"VoyageOut"`
	Berth      string `xml:"Berth"`
	ETA        string `xml:"ETA"`
	ETD        string `xml:"ETD"`
	ATB        string `xml:"ATB"`
	OpenGate   string `xml:"OpenGate"`
	CutOff     string `xml:"CutOff"`
	Status     string `xml:"Status"`
}

func (e tipsEntry) row() extract.Row {
	row := schedule.NewRawRow()
	fields := []struct {
		key   string
		field schedule.Field
		value string
	}{
		{"VesselName", schedule.FieldVessel, e.VesselName},
		{"VoyageIn", schedule.FieldVoyage, e.VoyageIn},
		{"VoyageOut", schedule.FieldVoyageOut, e.VoyageOut},
		{"Berth", schedule.FieldBerth, e.Berth},
		{"ATB", schedule.FieldATB, e.ATB},
		{"ETA", schedule.FieldETA, e.ETA},
		{"ETD", schedule.FieldETD, e.ETD},
		{"OpenGate", schedule.FieldOpenGate, e.OpenGate},
		{"CutOff", schedule.FieldCutoff, e.CutOff},
		{"Status", schedule.FieldStatus, e.Status},
	}
	for _, f := range fields {
		v := strings.TrimSpace(f.value)
		if v == "" {
			continue
		}
		row.Raw[f.key] = v
		row.Set(f.field, v)
	}
	return row
}

func decodeTIPS(body string) ([]extract.Row, error) {
	var doc tipsSchedules
	if err := xml.Unmarshal([]byte(body), &doc); err != nil {
		return nil, err
	}
	rows := make([]extract.Row, 0, len(doc.Schedules))
	for _, e := range doc.Schedules {
		rows = append(rows, e.row())
	}
	return rows, nil
}

// tipsEndpoint sets vessel=% on the configured URL
func tipsEndpoint(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	q := u.Query()
	q.Set("vessel", "%")
	u.RawQuery = q.Encode()
	return u.String()
}

// NewTIPS creates the TIPS adapter
func NewTIPS(url string, deps Deps) Adapter {
	return NewBaseAdapter(TerminalConfig{
		Name:     "tips",
		Terminal: "TIPS",
		URL:      url,
		Flow:     FlowXMLAPI,
		Bulk:     true,
		Headers:  helpers.XHRHeaders(url),
	}, deps, xmlFlow{endpoint: tipsEndpoint, decode: decodeTIPS})
}
