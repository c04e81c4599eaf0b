package browser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Predicate is a page-side condition polled by WaitFor. JS is an arrow function
// returning a truthy value once the condition holds.
type Predicate struct {
	Name string
	JS   string
}

func jsString(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// TableRowsAtLeast holds once some table on the page has at least n rows.
func TableRowsAtLeast(n int) Predicate {
	return Predicate{
		Name: fmt.Sprintf("table rows >= %d", n),
		JS:   fmt.Sprintf(`() => Array.from(document.querySelectorAll('table')).some(t => t.querySelectorAll('tr').length >= %d)`, n),
	}
}

// TextContainsAny holds once the visible body text contains any of words.
func TextContainsAny(words ...string) Predicate {
	upper := make([]string, len(words))
	for i, w := range words {
		upper[i] = strings.ToUpper(w)
	}
	return Predicate{
		Name: "text contains " + strings.Join(words, "|"),
		JS: fmt.Sprintf(`() => {
	const text = ((document.body && document.body.innerText) || '').toUpperCase();
	return %s.some(w => text.includes(w));
}`, jsString(upper)),
	}
}

// SelectorExists holds once selector matches an element.
func SelectorExists(selector string) Predicate {
	return Predicate{
		Name: "exists " + selector,
		JS:   fmt.Sprintf(`() => document.querySelector(%s) !== null`, jsString(selector)),
	}
}

// Any holds once any of preds holds.
func Any(preds ...Predicate) Predicate {
	names := make([]string, len(preds))
	fns := make([]string, len(preds))
	for i, p := range preds {
		names[i] = p.Name
		fns[i] = "(" + p.JS + ")"
	}
	return Predicate{
		Name: "any(" + strings.Join(names, ", ") + ")",
		JS:   fmt.Sprintf(`() => [%s].some(f => { try { return !!f(); } catch (e) { return false; } })`, strings.Join(fns, ", ")),
	}
}

// TextChanged holds once the inner text of selector differs from before. Used after
// in-place pagination where the table is swapped without a navigation.
func TextChanged(selector, before string) Predicate {
	return Predicate{
		Name: "text of " + selector + " changed",
		JS: fmt.Sprintf(`() => {
	const el = document.querySelector(%s);
	return el !== null && (el.innerText || '') !== %s;
}`, jsString(selector), jsString(before)),
	}
}

// TextOfJS returns the inner text of the first element matching its argument.
const TextOfJS = `(sel) => { const el = document.querySelector(sel); return el ? (el.innerText || '') : ''; }`
