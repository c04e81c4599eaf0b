// Package dateparse turns the date fragments found on terminal pages into one
// canonical wall-clock timestamp.
//
// All supported terminals share one timezone, so values are built in Location and
// never converted. A fragment that matches no known layout yields ok=false; that is
// an expected outcome, not an error.
package dateparse

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// CanonicalLayout is the rendering used in every JSON record.
const CanonicalLayout = "2006-01-02 15:04:05"

// Location is the terminals' local zone (Indochina Time, no DST).
var Location = time.FixedZone("ICT", 7*60*60)

var months = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March, "APR": time.April,
	"MAY": time.May, "JUN": time.June, "JUL": time.July, "AUG": time.August,
	"SEP": time.September, "OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// thaiMonths maps Thai month names (full and abbreviated) to English abbreviations.
// Full names come first so an abbreviation never matches inside one.
var thaiMonths = []struct{ thai, en string }{
	{"มกราคม", "JAN"}, {"กุมภาพันธ์", "FEB"}, {"มีนาคม", "MAR"}, {"เมษายน", "APR"},
	{"พฤษภาคม", "MAY"}, {"มิถุนายน", "JUN"}, {"กรกฎาคม", "JUL"}, {"สิงหาคม", "AUG"},
	{"กันยายน", "SEP"}, {"ตุลาคม", "OCT"}, {"พฤศจิกายน", "NOV"}, {"ธันวาคม", "DEC"},
	{"ม.ค.", "JAN"}, {"ก.พ.", "FEB"}, {"มี.ค.", "MAR"}, {"เม.ย.", "APR"},
	{"พ.ค.", "MAY"}, {"มิ.ย.", "JUN"}, {"ก.ค.", "JUL"}, {"ส.ค.", "AUG"},
	{"ก.ย.", "SEP"}, {"ต.ค.", "OCT"}, {"พ.ย.", "NOV"}, {"ธ.ค.", "DEC"},
}

// thaiDigits rewrites ๐-๙ to 0-9.
var thaiDigits = runes.Map(func(r rune) rune {
	if r >= '๐' && r <= '๙' {
		return '0' + (r - '๐')
	}
	return r
})

type fields struct {
	year, month, day, hour, min, sec int
	twoDigitYear                     bool
	noYear                           bool
}

type layout struct {
	name  string
	re    *regexp.Regexp
	build func(m []string) (fields, bool)
}

const clock = `(?:\s*-?\s*(\d{1,2})[:.](\d{2})(?::(\d{2}))?(?:\s*([AP]M))?)`

// layouts are tried in order; the first match wins.
var layouts = []layout{
	{
		name: "DD/MM/YYYY HH:MM",
		re:   regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})` + clock),
		build: func(m []string) (fields, bool) {
			return dmy(m[1], m[2], m[3], m[4:8])
		},
	},
	{
		name: "DD/MM/YYYY",
		re:   regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`),
		build: func(m []string) (fields, bool) {
			return dmy(m[1], m[2], m[3], nil)
		},
	},
	{
		name: "YYYY-MM-DD HH:MM",
		re:   regexp.MustCompile(`(\d{4})-(\d{1,2})-(\d{1,2})(?:[ T]` + clock + `)?`),
		build: func(m []string) (fields, bool) {
			return dmy(m[3], m[2], m[1], m[4:8])
		},
	},
	{
		name: "DD MMM YY/HH:MM",
		re:   regexp.MustCompile(`(\d{1,2})\s*([A-Z]{3})[A-Z]*\.?\s*(\d{2})/(\d{1,2}):(\d{2})`),
		build: func(m []string) (fields, bool) {
			mon, ok := months[m[2]]
			if !ok {
				return fields{}, false
			}
			return dmy(m[1], strconv.Itoa(int(mon)), m[3], []string{m[4], m[5], "", ""})
		},
	},
	{
		name: "DD-MMM-YYYY HH:MM",
		re:   regexp.MustCompile(`(\d{1,2})-([A-Z]{3})[A-Z]*-(\d{2,4})` + clock + `?`),
		build: func(m []string) (fields, bool) {
			mon, ok := months[m[2]]
			if !ok {
				return fields{}, false
			}
			return dmy(m[1], strconv.Itoa(int(mon)), m[3], m[4:8])
		},
	},
	{
		name: "DD MMM YYYY HH:MM",
		re:   regexp.MustCompile(`(\d{1,2})\s+([A-Z]{3})[A-Z]*\.?,?\s+(\d{2,4})\b` + clock + `?`),
		build: func(m []string) (fields, bool) {
			mon, ok := months[m[2]]
			if !ok {
				return fields{}, false
			}
			return dmy(m[1], strconv.Itoa(int(mon)), m[3], m[4:8])
		},
	},
	{
		name: "DD/MM/YY HH:MM",
		re:   regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{2})\b` + clock + `?`),
		build: func(m []string) (fields, bool) {
			return dmy(m[1], m[2], m[3], m[4:8])
		},
	},
	{
		name: "MM/DD HH:MM",
		re:   regexp.MustCompile(`(?:^|\s)(\d{1,2})/(\d{1,2})(?:\s+(\d{1,2}):(\d{2}))?(?:[^\d/:]|$)`),
		build: func(m []string) (fields, bool) {
			f, ok := dmy(m[2], m[1], "0", []string{m[3], m[4], "", ""})
			f.noYear = true
			return f, ok
		},
	},
}

// Parse parses raw relative to the current time.
func Parse(raw string) (time.Time, bool) {
	return ParseAt(raw, time.Now())
}

// ParseAt parses raw; now is only consulted for formats without a year.
func ParseAt(raw string, now time.Time) (time.Time, bool) {
	text, thai := normalize(raw)
	if text == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		for _, m := range l.re.FindAllStringSubmatch(text, -1) {
			f, ok := l.build(m)
			if !ok {
				continue
			}
			if t, ok := f.resolve(now, thai); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// Format renders t in the canonical layout.
func Format(t time.Time) string {
	return t.Format(CanonicalLayout)
}

// FindDates returns every date-shaped token in text, in reading order. Tokens are
// returned in normalized form so they can be handed straight back to Parse.
func FindDates(text string) []string {
	norm, thai := normalize(text)
	now := time.Now()
	type span struct{ start, end int }
	var spans []span
	overlaps := func(s span) bool {
		for _, o := range spans {
			if s.start < o.end && o.start < s.end {
				return true
			}
		}
		return false
	}
	for _, l := range layouts {
		for _, idx := range l.re.FindAllStringSubmatchIndex(norm, -1) {
			m := make([]string, len(idx)/2)
			for g := range m {
				if idx[2*g] >= 0 {
					m[g] = norm[idx[2*g]:idx[2*g+1]]
				}
			}
			f, ok := l.build(m)
			if !ok {
				continue
			}
			if _, ok := f.resolve(now, thai); !ok {
				continue
			}
			// from the first group to the last matched group, skipping boundary guards
			s := span{idx[2], idx[3]}
			for g := 2; g < len(idx); g += 2 {
				if idx[g+1] > s.end {
					s.end = idx[g+1]
				}
			}
			if !overlaps(s) {
				spans = append(spans, s)
			}
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	out := make([]string, 0, len(spans))
	for _, s := range spans {
		out = append(out, norm[s.start:s.end])
	}
	return out
}

// normalize maps Thai digits and month names, uppercases and collapses spaces.
// The second return reports whether Thai month names were present.
func normalize(raw string) (string, bool) {
	s, _, err := transform.String(thaiDigits, raw)
	if err != nil {
		s = raw
	}
	thai := false
	for _, tm := range thaiMonths {
		if strings.Contains(s, tm.thai) {
			s = strings.ReplaceAll(s, tm.thai, " "+tm.en+" ")
			thai = true
		}
	}
	s = strings.ToUpper(strings.ReplaceAll(s, "\u00a0", " "))
	return strings.Join(strings.Fields(s), " "), thai
}

func dmy(day, month, year string, clk []string) (fields, bool) {
	var f fields
	var err error
	if f.day, err = strconv.Atoi(day); err != nil {
		return f, false
	}
	if f.month, err = strconv.Atoi(month); err != nil {
		return f, false
	}
	if f.year, err = strconv.Atoi(year); err != nil {
		return f, false
	}
	f.twoDigitYear = len(year) == 2
	if len(clk) >= 2 && clk[0] != "" {
		if f.hour, err = strconv.Atoi(clk[0]); err != nil {
			return f, false
		}
		if f.min, err = strconv.Atoi(clk[1]); err != nil {
			return f, false
		}
		if len(clk) >= 3 && clk[2] != "" {
			if f.sec, err = strconv.Atoi(clk[2]); err != nil {
				return f, false
			}
		}
		if len(clk) >= 4 {
			switch clk[3] {
			case "PM":
				if f.hour < 12 {
					f.hour += 12
				}
			case "AM":
				if f.hour == 12 {
					f.hour = 0
				}
			}
		}
	}
	return f, true
}

func (f fields) resolve(now time.Time, thai bool) (time.Time, bool) {
	year := f.year
	switch {
	case f.noYear:
		local := now.In(Location)
		year = local.Year()
		if local.Month() >= time.October && f.month <= int(time.March) {
			year++
		}
	case f.twoDigitYear && thai:
		// short Buddhist-era year, e.g. 68 for 2568
		year = 2500 + year - 543
	case f.twoDigitYear && year < 50:
		year += 2000
	case f.twoDigitYear:
		year += 1900
	case year >= 2400:
		year -= 543
	}

	if year < 1900 || year > 2200 {
		return time.Time{}, false
	}
	if f.month < 1 || f.month > 12 || f.day < 1 || f.day > 31 {
		return time.Time{}, false
	}
	if f.hour > 23 || f.min > 59 || f.sec > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(f.month), f.day, f.hour, f.min, f.sec, 0, Location)
	if t.Day() != f.day || int(t.Month()) != f.month {
		return time.Time{}, false
	}
	return t, true
}
