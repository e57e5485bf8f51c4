package importer

import (
	"sort"
	"strings"
)

// Field is a canonical column of a candidate record.
type Field string

const (
	FieldName     Field = "name"
	FieldDate     Field = "date"
	FieldLocation Field = "location"
	FieldCheckIn  Field = "check_in"
	FieldCheckOut Field = "check_out"
)

// headerSynonyms lists the known spellings per canonical field, matched
// after whitespace stripping and case folding.
var headerSynonyms = map[Field][]string{
	FieldName: {
		"name", "staff name", "full name", "vendor name", "contractor name",
		"worker", "person", "executor",
	},
	FieldDate: {
		"date", "work date", "record date",
	},
	FieldLocation: {
		"location", "factory", "factory location", "site", "plant", "area",
	},
	FieldCheckIn: {
		"check in", "check-in", "checkin", "check in time", "start time",
		"starttime", "time in", "entry time", "clock in",
		"actual entry time", "entry date time",
	},
	FieldCheckOut: {
		"check out", "check-out", "checkout", "check out time", "end time",
		"endtime", "time out", "exit time", "clock out",
		"actual exit time", "exit date time",
	},
}

var allFields = []Field{FieldName, FieldDate, FieldLocation, FieldCheckIn, FieldCheckOut}

// HeaderMap maps canonical fields to resolved source column names.
type HeaderMap map[Field]string

func normalizeHeader(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// ResolveHeaders maps canonical fields onto the source columns: exact
// synonym match first, then substring containment in either direction.
// The missing list applies the optionality rules: check-out is never
// required, and date is only required when check-in is also unresolved
// (a full check-in timestamp can carry the date).
func ResolveHeaders(headers []string) (HeaderMap, []Field) {
	type normalized struct {
		raw  string
		norm string
	}
	cols := make([]normalized, len(headers))
	for i, h := range headers {
		cols[i] = normalized{raw: h, norm: normalizeHeader(h)}
	}

	hm := make(HeaderMap)
	for _, field := range allFields {
		keywords := make([]string, len(headerSynonyms[field]))
		for i, kw := range headerSynonyms[field] {
			keywords[i] = normalizeHeader(kw)
		}

		matched := ""
		for _, col := range cols {
			for _, kw := range keywords {
				if col.norm == kw {
					matched = col.raw
					break
				}
			}
			if matched != "" {
				break
			}
		}
		if matched == "" {
			for _, col := range cols {
				for _, kw := range keywords {
					if strings.Contains(col.norm, kw) || strings.Contains(kw, col.norm) {
						matched = col.raw
						break
					}
				}
				if matched != "" {
					break
				}
			}
		}

		if matched != "" {
			hm[field] = matched
		}
	}

	return hm, MissingRequiredFields(hm)
}

// MissingRequiredFields re-evaluates a header map, including caller-supplied
// overrides, against the required-field rules.
func MissingRequiredFields(hm HeaderMap) []Field {
	var missing []Field
	for _, field := range allFields {
		if _, ok := hm[field]; ok {
			continue
		}
		switch field {
		case FieldCheckOut:
			// optional: records without a check-out stay open
		case FieldDate:
			if _, hasCheckIn := hm[FieldCheckIn]; !hasCheckIn {
				missing = append(missing, field)
			}
		default:
			missing = append(missing, field)
		}
	}
	return missing
}

// HeaderSignature identifies a header layout regardless of column order,
// used as the cache key for stored header overrides.
func HeaderSignature(headers []string) string {
	norm := make([]string, len(headers))
	for i, h := range headers {
		norm[i] = normalizeHeader(h)
	}
	sort.Strings(norm)
	return strings.Join(norm, "|")
}
