package schedule

import (
	"encoding/json"
	"maps"
	"regexp"
	"strings"

	"sjsage522/vesselschedule/helpers"
	"sjsage522/vesselschedule/internal/dateparse"
)

var (
	vesselPrefix = regexp.MustCompile(`(?i)^\s*(?:M\.\s*V\.?\s*|M/V\.?\s*|MV\.\s*|MV\s+)`)
	voyageShape  = regexp.MustCompile(`(?i)^(?:V\.?\s*)?\d{3,4}[NSEW]\d{0,2}$|^\d{3,4}-\d{2,4}[NSEW]?$`)
	berthShape   = regexp.MustCompile(`^[A-Z]\d+$`)
)

// CleanVesselName strips M.V./MV/M/V prefixes, collapses spaces and uppercases.
func CleanVesselName(name string) string {
	name = helpers.CollapseSpaces(name)
	name = vesselPrefix.ReplaceAllString(name, "")
	return strings.ToUpper(strings.TrimSpace(name))
}

// IsVoyageShaped reports whether s looks like a voyage code (123S, 0815-079S).
func IsVoyageShaped(s string) bool {
	return voyageShape.MatchString(strings.TrimSpace(s))
}

// IsBerthShaped reports whether s looks like a berth code (B2, C1).
func IsBerthShaped(s string) bool {
	return berthShape.MatchString(strings.ToUpper(strings.TrimSpace(s)))
}

// Normalize maps a raw row to the canonical record.
//
// ETA preference is actual berthing, then estimated berthing, then estimated arrival,
// then any date found near the vessel name in free text. Voyage prefers inbound.
func Normalize(row RawRow, source, method string) Record {
	rec := Record{
		VesselName:       CleanVesselName(row.Get(FieldVessel)),
		Berth:            helpers.StringPtr(row.Get(FieldBerth)),
		PortTerminal:     helpers.StringPtr(row.Get(FieldTerminal)),
		Status:           helpers.StringPtr(strings.ToUpper(row.Get(FieldStatus))),
		Source:           source,
		ExtractionMethod: method,
		RawData:          map[string]string{},
	}
	maps.Copy(rec.RawData, row.Raw)

	inbound := helpers.StringPtr(strings.ToUpper(row.Get(FieldVoyage)))
	outbound := helpers.StringPtr(strings.ToUpper(row.Get(FieldVoyageOut)))
	if inbound != nil {
		rec.Voyage = inbound
		rec.VoyageOut = outbound
	} else {
		rec.Voyage = outbound
		rec.VoyageOut = outbound
	}

	rec.ATB = parseField(row, FieldATB)
	rec.ETA = firstTimestamp(row, FieldATB, FieldETB, FieldETA, FieldText)
	rec.ETD = firstTimestamp(row, FieldATD, FieldETD)
	rec.OpenGate = parseField(row, FieldOpenGate)
	rec.Cutoff = parseField(row, FieldCutoff)
	return rec
}

func parseField(row RawRow, f Field) *Timestamp {
	raw := row.Get(f)
	if raw == "" {
		return nil
	}
	t, ok := dateparse.Parse(raw)
	if !ok {
		return nil
	}
	ts := NewTimestamp(t)
	return &ts
}

func firstTimestamp(row RawRow, fields ...Field) *Timestamp {
	for _, f := range fields {
		if ts := parseField(row, f); ts != nil {
			return ts
		}
	}
	return nil
}

// Classify fills a row from cells by content shape when positions are unreliable.
// Voyage-shaped cells become inbound then outbound voyage, the first berth-shaped
// cell becomes the berth and date cells become ETA then ETD in reading order.
// Fields already present in row are left alone and take up their slot.
func Classify(row RawRow, cells []string) RawRow {
	for _, c := range cells {
		c = helpers.CollapseSpaces(c)
		switch {
		case c == "":
		case IsVoyageShaped(c):
			row.fillFirst(c, FieldVoyage, FieldVoyageOut)
		case IsBerthShaped(c):
			row.fillFirst(c, FieldBerth)
		default:
			if _, ok := dateparse.Parse(c); ok {
				row.fillFirst(c, FieldETA, FieldETD)
			}
		}
	}
	return row
}

// Dedupe drops records that are identical in every field, keeping first occurrence.
func Dedupe(records []Record) []Record {
	seen := make(map[string]struct{}, len(records))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		key, err := json.Marshal(r)
		if err != nil {
			out = append(out, r)
			continue
		}
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		out = append(out, r)
	}
	return out
}
