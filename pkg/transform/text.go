package transform

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Clean normalizes a free-text value: whitespace runs collapse to single
// spaces, the result is trimmed, and anything empty after trimming becomes
// nil. Idempotent.
func Clean(value interface{}) *string {
	if value == nil {
		return nil
	}
	s := strings.TrimSpace(cast.ToString(value))
	s = whitespaceRun.ReplaceAllString(s, " ")
	if s == "" {
		return nil
	}
	return &s
}
