package volume

import (
	"strings"

	"github.com/ssargent/fsbx/pkg/codec"
)

// Filter selects records by kind and category. Empty fields match anything;
// comparisons ignore case.
type Filter struct {
	Kind     string
	Category string
}

// Match reports whether rec passes the filter
func (f Filter) Match(rec codec.Record) bool {
	if f.Kind != "" && !strings.EqualFold(f.Kind, string(rec.Kind())) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(f.Category, rec.Category()) {
		return false
	}
	return true
}

// IsZero reports whether the filter matches every record
func (f Filter) IsZero() bool {
	return f.Kind == "" && f.Category == ""
}
