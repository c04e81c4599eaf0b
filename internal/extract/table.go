package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/vesselschedule/helpers"
	"sjsage522/vesselschedule/internal/schedule"
)

// Row is one extracted source row awaiting normalization.
type Row = schedule.RawRow

// Table is a parsed HTML table: header texts and body cell texts.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Layout maps column index to canonical field. FieldSkip leaves a column unmapped.
type Layout []schedule.Field

// Map builds a Row from cells. Raw keys are header texts when known, else col_N.
func (l Layout) Map(cells, headers []string) Row {
	row := schedule.NewRawRow()
	for i, c := range cells {
		row.Raw[rawKey(headers, i)] = c
		if i < len(l) {
			row.Set(l[i], c)
		}
	}
	return row
}

func rawKey(headers []string, i int) string {
	if i < len(headers) && strings.TrimSpace(headers[i]) != "" {
		return headers[i]
	}
	return "col_" + strconv.Itoa(i)
}

// ParseDocument parses an HTML snapshot.
func ParseDocument(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return doc, nil
}

// ParseTable reads one <table>. The header is the first row made of <th> cells, or
// the <thead> row; every other row with <td> cells is a body row.
func ParseTable(sel *goquery.Selection) Table {
	var t Table
	sel.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		// nested tables are parsed on their own
		if tr.Closest("table").Get(0) != sel.Get(0) {
			return
		}
		ths := tr.ChildrenFiltered("th")
		tds := tr.ChildrenFiltered("td")
		if ths.Length() > 0 && tds.Length() == 0 {
			if t.Headers == nil {
				t.Headers = cellTexts(ths)
			}
			return
		}
		if tds.Length() == 0 {
			return
		}
		if t.Headers == nil && tr.ParentsFiltered("thead").Length() > 0 {
			t.Headers = cellTexts(tr.Children())
			return
		}
		t.Rows = append(t.Rows, cellTexts(tr.Children()))
	})
	return t
}

// ParseTables reads every table in the document, outermost first.
func ParseTables(doc *goquery.Document) []Table {
	var tables []Table
	doc.Find("table").Each(func(_ int, s *goquery.Selection) {
		tables = append(tables, ParseTable(s))
	})
	return tables
}

func cellTexts(cells *goquery.Selection) []string {
	out := make([]string, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		out = append(out, CellText(c))
	})
	return out
}

// CellText returns the visible text of a cell with <br> treated as a space.
func CellText(c *goquery.Selection) string {
	c = c.Clone()
	c.Find("br").ReplaceWithHtml(" ")
	c.Find("script,style").Remove()
	return helpers.CollapseSpaces(c.Text())
}

// BodyLines returns the document body text split into non-empty lines, one per
// block-level element.
func BodyLines(doc *goquery.Document) []string {
	body := doc.Find("body").Clone()
	if body.Length() == 0 {
		body = doc.Selection.Clone()
	}
	body.Find("script,style,noscript").Remove()
	body.Find("br").ReplaceWithHtml("\n")
	body.Find("p,div,tr,li,h1,h2,h3,h4,h5,h6,table,section,article").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	body.Find("td,th").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})
	var lines []string
	for _, line := range strings.Split(body.Text(), "\n") {
		if line = helpers.CollapseSpaces(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
