package crawler

import (
	"context"
	"time"

	"sjsage522/vesselschedule/helpers"
	"sjsage522/vesselschedule/internal/browser"
	"sjsage522/vesselschedule/internal/extract"
	"sjsage522/vesselschedule/internal/schedule"
)

// Adapter interface defines the contract for all terminal implementations
type Adapter interface {
	// Name is the short CLI name, e.g. "lcit"
	Name() string

	// Terminal is the human-readable terminal name
	Terminal() string

	// FetchSchedule looks up one vessel. It never panics and never returns an error;
	// every failure is a success=false result.
	FetchSchedule(ctx context.Context, q schedule.Query) schedule.Result

	// FetchAll returns every vessel currently listed (full schedule mode)
	FetchAll(ctx context.Context) schedule.BulkResult

	// SupportsBulk reports whether FetchAll is meaningful for this terminal
	SupportsBulk() bool
}

// FetchFunc performs one HTTP GET and returns the UTF-8 body
type FetchFunc func(ctx context.Context, url string, headers map[string]string) (string, error)

// Flow identifies the navigation pattern a terminal needs
type Flow int

const (
	FlowStaticTable Flow = iota
	FlowHTTPTable
	FlowDropdown
	FlowFormSearch
	FlowApexPaged
	FlowNextPager
	FlowXMLAPI
	FlowDirectLink
)

var flowNames = map[Flow]string{
	FlowStaticTable: "static_table",
	FlowHTTPTable:   "http_table",
	FlowDropdown:    "dropdown",
	FlowFormSearch:  "form_search",
	FlowApexPaged:   "apex_paged",
	FlowNextPager:   "next_pager",
	FlowXMLAPI:      "xml_api",
	FlowDirectLink:  "direct_link",
}

func (f Flow) String() string {
	if name, ok := flowNames[f]; ok {
		return name
	}
	return "unknown"
}

// NeedsBrowser reports whether the flow drives a browser session
func (f Flow) NeedsBrowser() bool {
	return f != FlowHTTPTable && f != FlowXMLAPI
}

var (
	defaultSubmitWords  = []string{"search", "submit", "go", "find", "ค้นหา", "ตกลง"}
	defaultConsentWords = []string{"accept", "agree", "ok", "ยอมรับ", "ตกลง"}
	defaultResultWords  = []string{"ETA", "ETD", "Arrival", "Departure"}
)

// TerminalConfig is the declarative description of one terminal, consumed by the
// generic flows
type TerminalConfig struct {
	Name     string
	Terminal string
	URL      string
	Flow     Flow
	Bulk     bool

	Wait browser.WaitStrategy

	// Search surface
	VesselSelect     string
	SearchInputs     []string
	SubmitSelectors  []string
	SubmitWords      []string
	ConsentSelectors []string
	ConsentWords     []string

	// Pagination
	PagerSelect   string
	NextSelectors []string
	PageCap       int

	// Result detection
	ResultRows  int
	ResultWords []string

	// Extraction
	Table       extract.PrimaryTable
	MinKeywords int
	TextWindow  int
	NoTextScan  bool

	// HTTP terminals
	Headers map[string]string
}

func (c TerminalConfig) submitWords() []string {
	if len(c.SubmitWords) > 0 {
		return c.SubmitWords
	}
	return defaultSubmitWords
}

func (c TerminalConfig) consentWords() []string {
	if len(c.ConsentWords) > 0 {
		return c.ConsentWords
	}
	return defaultConsentWords
}

func (c TerminalConfig) resultPredicate() browser.Predicate {
	rows := c.ResultRows
	if rows <= 0 {
		rows = 3
	}
	words := c.ResultWords
	if len(words) == 0 {
		words = defaultResultWords
	}
	return browser.Any(browser.TableRowsAtLeast(rows), browser.TextContainsAny(words...))
}

// engine builds the strategy chain: the terminal's primary table, then a header scan,
// then free-text search unless disabled
func (c TerminalConfig) engine() *extract.Engine {
	var primary extract.Strategy
	if c.Table.Selector != "" {
		primary = c.Table
	}
	var text extract.Strategy
	if !c.NoTextScan {
		text = extract.TextSearch{Window: c.TextWindow}
	}
	return extract.NewEngine(primary, extract.HeaderScan{MinKeywords: c.MinKeywords}, text)
}

// Deps are the collaborators shared by every adapter
type Deps struct {
	Launcher    browser.Launcher
	Fetch       FetchFunc
	Diagnostics helpers.DiagnosticsWriter
	Browser     browser.Options

	NavigationTimeout time.Duration
	WaitTimeout       time.Duration
	BulkDelay         time.Duration
	PageCap           int
	XMLRetention      time.Duration

	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
