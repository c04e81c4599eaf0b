package extract

import (
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/vesselschedule/internal/dateparse"
	"sjsage522/vesselschedule/internal/schedule"
)

// Extraction method labels carried into every record.
const (
	MethodPrimaryTable = "primary_table"
	MethodHeaderScan   = "header_scan"
	MethodTextSearch   = "text_search"
	MethodXMLAPI       = "xml_api"
	MethodDirectLink   = "direct_link"
)

// Strategy is one way of pulling rows for a vessel out of a page. An empty vessel
// asks for every row (full schedule mode).
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, vessel string) ([]Row, bool)
}

// Engine runs strategies in order and stops at the first that yields rows.
type Engine struct {
	Strategies []Strategy
}

// NewEngine returns an engine over strategies, skipping nil entries.
func NewEngine(strategies ...Strategy) *Engine {
	e := &Engine{}
	for _, s := range strategies {
		if s != nil {
			e.Strategies = append(e.Strategies, s)
		}
	}
	return e
}

// Run returns the rows and the name of the strategy that produced them.
func (e *Engine) Run(doc *goquery.Document, vessel string) ([]Row, string, bool) {
	for _, s := range e.Strategies {
		if rows, ok := s.Extract(doc, vessel); ok && len(rows) > 0 {
			return rows, s.Name(), true
		}
	}
	return nil, "", false
}

// RunHTML parses html and runs the engine.
func (e *Engine) RunHTML(html, vessel string) ([]Row, string, bool, error) {
	doc, err := ParseDocument(html)
	if err != nil {
		return nil, "", false, err
	}
	rows, method, ok := e.Run(doc, vessel)
	return rows, method, ok, nil
}

// PrimaryTable reads a known table by selector and maps columns by position.
type PrimaryTable struct {
	Selector string
	// Index picks among several tables matching Selector.
	Index    int
	Layout   Layout
	MinCells int
	// VesselColumn is the cell compared against the query; defaults to the column
	// the Layout maps to FieldVessel.
	VesselColumn int
}

func (p PrimaryTable) Name() string { return MethodPrimaryTable }

func (p PrimaryTable) Extract(doc *goquery.Document, vessel string) ([]Row, bool) {
	sel := doc.Find(p.Selector)
	if !sel.Is("table") {
		sel = sel.Find("table")
	}
	if sel.Length() <= p.Index {
		return nil, false
	}
	return p.FromTable(ParseTable(sel.Eq(p.Index)), vessel)
}

// FromTable applies the layout to an already parsed table.
func (p PrimaryTable) FromTable(t Table, vessel string) ([]Row, bool) {
	col := p.vesselColumn()
	var rows []Row
	for _, cells := range t.Rows {
		if len(cells) < max(p.MinCells, col+1) {
			continue
		}
		name := cells[col]
		if strings.TrimSpace(name) == "" {
			continue
		}
		if vessel != "" && !MatchVessel(name, vessel) {
			continue
		}
		rows = append(rows, p.Layout.Map(cells, t.Headers))
	}
	return rows, len(rows) > 0
}

func (p PrimaryTable) vesselColumn() int {
	if p.VesselColumn > 0 {
		return p.VesselColumn
	}
	if i := slices.Index(p.Layout, schedule.FieldVessel); i >= 0 {
		return i
	}
	return 0
}

// headerKeywords maps lowercase header fragments to fields; longer, more specific
// fragments come first.
var headerKeywords = []struct {
	word  string
	field schedule.Field
}{
	{"voyage out", schedule.FieldVoyageOut},
	{"voy out", schedule.FieldVoyageOut},
	{"out voy", schedule.FieldVoyageOut},
	{"outbound", schedule.FieldVoyageOut},
	{"voyage in", schedule.FieldVoyage},
	{"voy in", schedule.FieldVoyage},
	{"in voy", schedule.FieldVoyage},
	{"voyage", schedule.FieldVoyage},
	{"voy", schedule.FieldVoyage},
	{"vessel", schedule.FieldVessel},
	{"ship name", schedule.FieldVessel},
	{"ชื่อเรือ", schedule.FieldVessel},
	{"atb", schedule.FieldATB},
	{"actual berth", schedule.FieldATB},
	{"etb", schedule.FieldETB},
	{"eta", schedule.FieldETA},
	{"arrival", schedule.FieldETA},
	{"atd", schedule.FieldATD},
	{"etd", schedule.FieldETD},
	{"departure", schedule.FieldETD},
	{"berth", schedule.FieldBerth},
	{"terminal", schedule.FieldTerminal},
	{"status", schedule.FieldStatus},
	{"open gate", schedule.FieldOpenGate},
	{"opengate", schedule.FieldOpenGate},
	{"gate open", schedule.FieldOpenGate},
	{"cut off", schedule.FieldCutoff},
	{"cutoff", schedule.FieldCutoff},
	{"closing", schedule.FieldCutoff},
}

// scheduleFields are the header words that make a table look like a schedule.
var scheduleFields = []schedule.Field{
	schedule.FieldVessel, schedule.FieldVoyage, schedule.FieldETA,
	schedule.FieldETD, schedule.FieldBerth, schedule.FieldTerminal,
}

// HeaderField classifies a header text, or returns FieldSkip.
func HeaderField(header string) schedule.Field {
	h := strings.ToLower(strings.Join(strings.Fields(strings.NewReplacer(".", " ", "_", " ", "-", " ", "/", " ").Replace(header)), " "))
	if h == "" {
		return schedule.FieldSkip
	}
	for _, kw := range headerKeywords {
		if strings.Contains(h, kw.word) {
			return kw.field
		}
	}
	return schedule.FieldSkip
}

// HeaderScan looks at every table whose header carries at least MinKeywords schedule
// words, maps columns by header and finds the vessel row by substring in any cell.
type HeaderScan struct {
	MinKeywords int
}

func (h HeaderScan) Name() string { return MethodHeaderScan }

func (h HeaderScan) Extract(doc *goquery.Document, vessel string) ([]Row, bool) {
	minKeywords := h.MinKeywords
	if minKeywords <= 0 {
		minKeywords = 2
	}
	var rows []Row
	for _, t := range ParseTables(doc) {
		layout, hits := headerLayout(t.Headers)
		if hits < minKeywords {
			continue
		}
		vesselCol := slices.Index(layout, schedule.FieldVessel)
		for _, cells := range t.Rows {
			if !rowNamesVessel(cells, vesselCol, vessel) {
				continue
			}
			row := layout.Map(cells, t.Headers)
			rows = append(rows, schedule.Classify(row, unmapped(layout, cells)))
		}
	}
	return rows, len(rows) > 0
}

func headerLayout(headers []string) (Layout, int) {
	layout := make(Layout, len(headers))
	seen := map[schedule.Field]bool{}
	for i, hdr := range headers {
		f := HeaderField(hdr)
		if seen[f] {
			// keep the first column for a field; later duplicates stay raw only
			f = schedule.FieldSkip
		}
		layout[i] = f
		seen[f] = true
	}
	hits := 0
	for _, f := range scheduleFields {
		if seen[f] {
			hits++
		}
	}
	return layout, hits
}

// unmapped returns the cells whose column carries no known header.
func unmapped(layout Layout, cells []string) []string {
	var out []string
	for i, c := range cells {
		if i >= len(layout) || layout[i] == schedule.FieldSkip {
			out = append(out, c)
		}
	}
	return out
}

func rowNamesVessel(cells []string, vesselCol int, vessel string) bool {
	if vessel == "" {
		return vesselCol >= 0 && vesselCol < len(cells) && strings.TrimSpace(cells[vesselCol]) != ""
	}
	if vesselCol >= 0 && vesselCol < len(cells) {
		return MatchVessel(cells[vesselCol], vessel)
	}
	for _, c := range cells {
		if MatchVessel(c, vessel) {
			return true
		}
	}
	return false
}

// TextSearch is the low-confidence fallback: find the vessel name in the body text
// and read date tokens from a window of following lines.
type TextSearch struct {
	Window int
}

func (t TextSearch) Name() string { return MethodTextSearch }

func (t TextSearch) Extract(doc *goquery.Document, vessel string) ([]Row, bool) {
	if vessel == "" {
		return nil, false
	}
	window := t.Window
	if window <= 0 {
		window = 6
	}
	want := NormalizeName(vessel)
	lines := BodyLines(doc)
	for i, line := range lines {
		if !strings.Contains(strings.ToUpper(line), want) {
			continue
		}
		end := min(len(lines), i+window+1)
		text := strings.Join(lines[i:end], "\n")
		dates := dateparse.FindDates(text)
		if len(dates) == 0 {
			continue
		}
		row := schedule.NewRawRow()
		row.Set(schedule.FieldVessel, vessel)
		row.Set(schedule.FieldText, dates[0])
		if len(dates) > 1 {
			row.Set(schedule.FieldETD, dates[1])
		}
		for _, tok := range strings.Fields(text) {
			switch {
			case schedule.IsVoyageShaped(tok):
				row.Set(schedule.FieldVoyage, tok)
			case schedule.IsBerthShaped(tok):
				row.Set(schedule.FieldBerth, tok)
			}
		}
		row.Raw["line"] = line
		row.Raw["window"] = text
		for j, d := range dates {
			row.Raw["date_"+strconv.Itoa(j)] = d
		}
		return []Row{row}, true
	}
	return nil, false
}
