package schedule

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scrapeerrors "sjsage522/vesselschedule/pkg/errors"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		in         string
		wantName   string
		wantVoyage string
	}{
		{"EVER BUILD 0815-079S", "EVER BUILD", "0815-079S"},
		{"ever build 123s", "ever build", "123S"},
		{"KMTC SEOUL 24N01", "KMTC SEOUL", "24N01"},
		{"WAN HAI 517", "WAN HAI 517", ""},
		{"MAERSK", "MAERSK", ""},
		{"  ONE   APUS   V.045E ", "ONE APUS", "V.045E"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, voyage := ParseQuery(tt.in)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantVoyage, voyage)
		})
	}
}

func TestNewQuery(t *testing.T) {
	q, err := NewQuery("EVER BUILD 0815-079S", "", "")
	require.NoError(t, err)
	assert.Equal(t, "EVER BUILD", q.VesselName)
	assert.Equal(t, "0815-079S", q.Voyage())
	assert.Nil(t, q.TerminalHint)

	// an explicit voyage wins and the name is left alone
	q, err = NewQuery("EVER BUILD 0815-079S", "080S", "B2")
	require.NoError(t, err)
	assert.Equal(t, "EVER BUILD 0815-079S", q.VesselName)
	assert.Equal(t, "080S", q.Voyage())
	assert.Equal(t, "B2", *q.TerminalHint)

	_, err = NewQuery("  ", "", "")
	assert.Error(t, err)
}

func TestVoyageMatches(t *testing.T) {
	q, _ := NewQuery("EVER BUILD", "0815-079S", "")
	s := func(v string) *string { return &v }
	assert.True(t, q.VoyageMatches(s("079S")))
	assert.True(t, q.VoyageMatches(nil, s("0815")))
	assert.False(t, q.VoyageMatches(s("080N")))

	noVoyage, _ := NewQuery("EVER BUILD", "", "")
	assert.False(t, noVoyage.VoyageMatches(s("079S")))
}

func TestCleanVesselName(t *testing.T) {
	for in, want := range map[string]string{
		"M.V. EXAMPLE":    "EXAMPLE",
		"MV EXAMPLE":      "EXAMPLE",
		"M/V Example Two": "EXAMPLE TWO",
		"MV. EXAMPLE":     "EXAMPLE",
		"MVSKY":           "MVSKY",
		" WAN  HAI 517 ":  "WAN HAI 517",
	} {
		assert.Equal(t, want, CleanVesselName(in), in)
	}
}

func TestShapes(t *testing.T) {
	assert.True(t, IsVoyageShaped("123S"))
	assert.True(t, IsVoyageShaped("0815-079S"))
	assert.False(t, IsVoyageShaped("BERTHED"))
	assert.True(t, IsBerthShaped("B2"))
	assert.True(t, IsBerthShaped("c1"))
	assert.False(t, IsBerthShaped("B2B"))
}

func TestNormalizeETAPreference(t *testing.T) {
	row := NewRawRow()
	row.Set(FieldVessel, "M.V. EXAMPLE")
	row.Set(FieldETA, "01/01/2025 08:00")
	row.Set(FieldETB, "01/01/2025 10:00")
	row.Set(FieldText, "02/01/2025 10:00")
	rec := Normalize(row, "lcit", "primary_table")
	require.NotNil(t, rec.ETA)
	assert.Equal(t, "2025-01-01 10:00:00", rec.ETA.String())
	assert.Nil(t, rec.ATB)

	row.Set(FieldATB, "01/01/2025 11:30")
	rec = Normalize(row, "lcit", "primary_table")
	assert.Equal(t, "2025-01-01 11:30:00", rec.ETA.String())
	assert.Equal(t, "2025-01-01 11:30:00", rec.ATB.String())
}

func TestNormalizeOutboundFallbackAndNulls(t *testing.T) {
	row := NewRawRow()
	row.Set(FieldVessel, "EXAMPLE")
	row.Set(FieldVoyageOut, "124n")
	row.Set(FieldETD, "not a date")
	row.Raw["0"] = "EXAMPLE"
	rec := Normalize(row, "jwd", "header_scan")

	assert.Equal(t, "124N", *rec.Voyage)
	assert.Nil(t, rec.ETD)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, key := range []string{"vessel_name", "voyage", "voyage_out", "eta", "etd", "atb", "berth",
		"port_terminal", "status", "opengate", "cutoff", "raw_data", "source", "extraction_method"} {
		assert.Contains(t, m, key)
	}
	assert.Nil(t, m["eta"])
	assert.Nil(t, m["berth"])
	assert.Equal(t, map[string]any{"0": "EXAMPLE"}, m["raw_data"])
}

func TestClassify(t *testing.T) {
	row := Classify(NewRawRow(), []string{"EXAMPLE", "123S", "124N", "B2", "01/01/2025 - 10:00", "01/01/2025 - 18:00"})
	assert.Equal(t, "123S", row.Get(FieldVoyage))
	assert.Equal(t, "124N", row.Get(FieldVoyageOut))
	assert.Equal(t, "B2", row.Get(FieldBerth))
	assert.Equal(t, "01/01/2025 - 10:00", row.Get(FieldETA))
	assert.Equal(t, "01/01/2025 - 18:00", row.Get(FieldETD))
}

func TestClassifyKeepsMappedFields(t *testing.T) {
	row := NewRawRow()
	row.Set(FieldETA, "02/01/2025 08:00")
	row.Set(FieldVoyage, "123S")
	row = Classify(row, []string{"124N", "03/01/2025 20:00"})
	assert.Equal(t, "02/01/2025 08:00", row.Get(FieldETA))
	assert.Equal(t, "03/01/2025 20:00", row.Get(FieldETD))
	assert.Equal(t, "123S", row.Get(FieldVoyage))
	assert.Equal(t, "124N", row.Get(FieldVoyageOut))
}

func TestDedupeIsStable(t *testing.T) {
	row := NewRawRow()
	row.Set(FieldVessel, "EXAMPLE")
	row.Set(FieldETA, "01/01/2025 10:00")
	a := Normalize(row, "pat", "primary_table")
	b := Normalize(row, "pat", "primary_table")

	first, _ := json.Marshal(a)
	second, _ := json.Marshal(b)
	assert.Equal(t, string(first), string(second))
	assert.Len(t, Dedupe([]Record{a, b}), 1)
}

func TestResultInvariants(t *testing.T) {
	res := NotFound("lcit")
	assert.True(t, res.Success)
	assert.False(t, res.VesselFound)
	assert.NotNil(t, res.Records)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"records":[]`)
	assert.Contains(t, string(data), `"error":null`)

	failed := Failure("lcit", scrapeerrors.NewNavigation("lcit", "load", errors.New("timeout")))
	assert.False(t, failed.Success)
	assert.Equal(t, "navigation", *failed.ErrorType)

	// a broken envelope is repaired on the way out
	broken := Result{Success: false, VesselFound: true, Records: []Record{{VesselName: "X"}}}
	data, err = json.Marshal(broken)
	require.NoError(t, err)
	var decoded Result
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.VesselFound)
	assert.Empty(t, decoded.Records)
	assert.NotNil(t, decoded.Error)
}

func TestTimestampJSON(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2025-07-22 04:00:00"`), &ts))
	out, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2025-07-22 04:00:00"`, string(out))
	assert.Error(t, json.Unmarshal([]byte(`"22/07/2025"`), &ts))
}

func TestBulkResultJSON(t *testing.T) {
	data, err := json.Marshal(BulkResult{Success: true, Terminal: "tips"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"vessels":[]`)
}
