package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/vesselschedule/helpers"
	"sjsage522/vesselschedule/internal/schedule"
)

func TestMatchOption(t *testing.T) {
	options := []string{"EVER BUILD", "WAN HAI 517"}

	idx, ok := MatchOption(options, "ever build 0815-079s")
	require.True(t, ok)
	assert.Equal(t, "EVER BUILD", options[idx])

	idx, ok = MatchOption(options, "wan hai")
	require.True(t, ok)
	assert.Equal(t, "WAN HAI 517", options[idx])

	_, ok = MatchOption(options, "MAERSK KOLKATA")
	assert.False(t, ok)

	_, ok = MatchOption(options, "")
	assert.False(t, ok)
}

func TestMatchOptionPreferences(t *testing.T) {
	// exact beats contains
	options := []string{"EVER BUILDER", "M.V. EVER BUILD"}
	idx, ok := MatchOption(options, "EVER BUILD")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	// longest option contained in the query
	options = []string{"-- select --", "ONE", "ONE APUS"}
	idx, ok = MatchOption(options, "ONE APUS EXPRESS")
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	// all words present in any order
	options = []string{"HAI WAN 517"}
	idx, ok = MatchOption(options, "WAN HAI")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestMatchVessel(t *testing.T) {
	assert.True(t, MatchVessel("M.V. EVER BUILD", "ever build 0815-079S"))
	assert.True(t, MatchVessel("EVER BUILD 0815-079S", "EVER BUILD"))
	assert.False(t, MatchVessel("EVER", "EVER BUILD"))
	assert.False(t, MatchVessel("", "EVER BUILD"))
}

func TestSelectVesselPrefersExactName(t *testing.T) {
	records := []schedule.Record{
		{VesselName: "EVER BUILDER", Voyage: helpers.StringPtr("777S")},
		{VesselName: "EVER BUILD", Voyage: helpers.StringPtr("123S")},
		{VesselName: "EVER BUILD", Voyage: helpers.StringPtr("200S")},
	}
	assert.True(t, ExactVessel("M.V. EVER BUILD", "ever build"))
	assert.False(t, ExactVessel("EVER BUILDER", "EVER BUILD"))

	got := SelectVessel(records, "EVER BUILD")
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, "EVER BUILD", r.VesselName)
	}
	assert.True(t, HasExactVessel(records, "EVER BUILD"))

	// only a longer name is listed: fall back to it
	got = SelectVessel(records[:1], "EVER BUILD")
	require.Len(t, got, 1)
	assert.Equal(t, "EVER BUILDER", got[0].VesselName)
	assert.False(t, HasExactVessel(records[:1], "EVER BUILD"))

	assert.Empty(t, SelectVessel(records, "KMTC SEOUL"))
}

var patLayout = Layout{
	schedule.FieldVessel, schedule.FieldVoyage, schedule.FieldVoyageOut,
	schedule.FieldStatus, schedule.FieldETA, schedule.FieldETD,
}

func TestLayoutMapsFixtureRow(t *testing.T) {
	cells := []string{"M.V. EXAMPLE", "123S", "124N", "BERTHED", "01/01/2025 - 10:00", "01/01/2025 - 18:00"}
	rec := schedule.Normalize(patLayout.Map(cells, nil), "pat", MethodPrimaryTable)

	assert.Equal(t, "EXAMPLE", rec.VesselName)
	assert.Equal(t, "123S", *rec.Voyage)
	assert.Equal(t, "124N", *rec.VoyageOut)
	assert.Equal(t, "BERTHED", *rec.Status)
	assert.Equal(t, "2025-01-01 10:00:00", rec.ETA.String())
	assert.Equal(t, "2025-01-01 18:00:00", rec.ETD.String())
	assert.Equal(t, "M.V. EXAMPLE", rec.RawData["col_0"])
}

const scheduleFixture = `<html><body>
<div id="schedule">
<table class="grid">
  <thead><tr><th>Vessel</th><th>Voy In</th><th>Voy Out</th><th>Status</th><th>ETA</th><th>ETD</th></tr></thead>
  <tbody>
    <tr><td>M.V. EXAMPLE</td><td>123S</td><td>124N</td><td>BERTHED</td><td>01/01/2025 - 10:00</td><td>01/01/2025 - 18:00</td></tr>
    <tr><td>WAN HAI 517</td><td>W001</td><td>W002</td><td>PLANNED</td><td>03/01/2025<br>06:00</td><td>04/01/2025 12:00</td></tr>
  </tbody>
</table>
</div>
</body></html>`

func TestPrimaryTable(t *testing.T) {
	doc, err := ParseDocument(scheduleFixture)
	require.NoError(t, err)

	p := PrimaryTable{Selector: "#schedule table.grid", Layout: patLayout, MinCells: 6}
	rows, ok := p.Extract(doc, "wan hai 517")
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, "03/01/2025 06:00", rows[0].Get(schedule.FieldETA))
	assert.Equal(t, "PLANNED", rows[0].Raw["Status"])

	all, ok := p.Extract(doc, "")
	require.True(t, ok)
	assert.Len(t, all, 2)

	_, ok = p.Extract(doc, "MAERSK")
	assert.False(t, ok)

	_, ok = PrimaryTable{Selector: "#missing", Layout: patLayout}.Extract(doc, "EXAMPLE")
	assert.False(t, ok)
}

const headerFixture = `<html><body>
<table><tr><td>Welcome to the terminal</td></tr></table>
<table>
  <tr><th>No.</th><th>Vessel Name</th><th>Voyage</th><th>Berth</th><th>Est. Arrival</th><th>Est. Departure</th></tr>
  <tr><td>1</td><td>EVER BUILD</td><td>0815-079S</td><td>B2</td><td>22/07/2025 04:00</td><td>23/07/2025 10:00</td></tr>
  <tr><td>2</td><td>KMTC SEOUL</td><td>2401N</td><td>C1</td><td>24/07/2025 04:00</td><td>25/07/2025 10:00</td></tr>
</table>
</body></html>`

func TestHeaderScan(t *testing.T) {
	doc, err := ParseDocument(headerFixture)
	require.NoError(t, err)

	rows, ok := HeaderScan{}.Extract(doc, "EVER BUILD 0815-079S")
	require.True(t, ok)
	require.Len(t, rows, 1)
	rec := schedule.Normalize(rows[0], "lcb1", MethodHeaderScan)
	assert.Equal(t, "EVER BUILD", rec.VesselName)
	assert.Equal(t, "0815-079S", *rec.Voyage)
	assert.Equal(t, "B2", *rec.Berth)
	assert.Equal(t, "2025-07-22 04:00:00", rec.ETA.String())
	assert.Equal(t, "2025-07-23 10:00:00", rec.ETD.String())
}

func TestHeaderScanLeavesMappedDatesAlone(t *testing.T) {
	doc, err := ParseDocument(`<html><body><table>
  <tr><th>Vessel</th><th>Voyage</th><th>Closing</th><th>ETB</th></tr>
  <tr><td>EVER BUILD</td><td>0815-079S</td><td>21/07/2025 12:00</td><td>22/07/2025 04:00</td></tr>
</table></body></html>`)
	require.NoError(t, err)

	rows, ok := HeaderScan{}.Extract(doc, "EVER BUILD")
	require.True(t, ok)
	require.Len(t, rows, 1)
	rec := schedule.Normalize(rows[0], "lcb1", MethodHeaderScan)
	require.NotNil(t, rec.ETA)
	assert.Equal(t, "2025-07-22 04:00:00", rec.ETA.String())
	assert.Nil(t, rec.ETD)
	require.NotNil(t, rec.Cutoff)
	assert.Equal(t, "2025-07-21 12:00:00", rec.Cutoff.String())
}

func TestHeaderField(t *testing.T) {
	assert.Equal(t, schedule.FieldVoyageOut, HeaderField("Voy. Out"))
	assert.Equal(t, schedule.FieldVoyage, HeaderField("Voy In"))
	assert.Equal(t, schedule.FieldVessel, HeaderField("ชื่อเรือ"))
	assert.Equal(t, schedule.FieldCutoff, HeaderField("CUT-OFF"))
	assert.Equal(t, schedule.FieldSkip, HeaderField("No."))
}

const textFixture = `<html><body>
<div class="news">Berth plan for this week</div>
<div class="card"><h3>EVER BUILD</h3><p>Voyage 0815-079S</p><p>Berth B2</p><p>ETA 22/07/2025 04:00</p><p>ETD 23/07/2025 18:30</p></div>
<div class="card"><h3>KMTC SEOUL</h3><p>ETA 24/07/2025 04:00</p></div>
</body></html>`

func TestEngineFallsBackToTextSearch(t *testing.T) {
	engine := NewEngine(
		PrimaryTable{Selector: "#schedule table", Layout: patLayout},
		HeaderScan{},
		nil,
		TextSearch{Window: 4},
	)
	rows, method, ok, err := engine.RunHTML(textFixture, "EVER BUILD")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, MethodTextSearch, method)
	require.Len(t, rows, 1)

	rec := schedule.Normalize(rows[0], "kerry", method)
	assert.Equal(t, "2025-07-22 04:00:00", rec.ETA.String())
	assert.Equal(t, "2025-07-23 18:30:00", rec.ETD.String())
	assert.Equal(t, "0815-079S", *rec.Voyage)
	assert.Equal(t, "B2", *rec.Berth)
}

func TestEngineStopsAtFirstSuccess(t *testing.T) {
	engine := NewEngine(
		PrimaryTable{Selector: "#schedule table", Layout: patLayout},
		HeaderScan{},
		TextSearch{},
	)
	_, method, ok, err := engine.RunHTML(scheduleFixture, "EXAMPLE")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, MethodPrimaryTable, method)

	_, _, ok, err = engine.RunHTML(scheduleFixture, "NOT LISTED")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBodyLines(t *testing.T) {
	doc, err := ParseDocument(`<html><body><p>one</p><div>two<br>three</div><script>var x</script></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, BodyLines(doc))
}
