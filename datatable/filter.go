package datatable

import (
	"fmt"
	"strings"
)

// Filter returns the rows with at least one field whose string form
// contains query, ignoring case. An empty query returns rows unchanged.
func Filter(rows []Row, query string) []Row {
	if query == "" {
		return rows
	}
	needle := strings.ToLower(query)
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if recordContains(row.Data, needle) {
			out = append(out, row)
		}
	}
	return out
}

func recordContains(rec Record, needle string) bool {
	for _, v := range rec {
		if strings.Contains(strings.ToLower(FormatField(v)), needle) {
			return true
		}
	}
	return false
}

// FormatField returns the text a raw field is matched and exported as.
// nil formats as the empty string.
func FormatField(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return formatValue(v, InferType(v))
}
