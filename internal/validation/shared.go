package validation

import (
	"maps"
	"slices"
	"strings"
)

// Error collects per-field validation messages, keyed by JSON field name.
type Error struct {
	Fields map[string]string
}

// Error joins the field messages in field order so the text is stable.
func (e *Error) Error() string {
	fields := slices.Sorted(maps.Keys(e.Fields))
	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, field+": "+e.Fields[field])
	}
	return strings.Join(msgs, "; ")
}
