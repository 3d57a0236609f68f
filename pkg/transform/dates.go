package transform

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// dateFormats is the fixed priority order for textual dates; first match
// wins.
var dateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04:05",
}

// ParseDate tries each known format in order, returning nil when none
// matches. Never errors.
func ParseDate(value interface{}) *time.Time {
	if value == nil {
		return nil
	}
	s := strings.TrimSpace(cast.ToString(value))
	if s == "" {
		return nil
	}
	for _, format := range dateFormats {
		if parsed, err := time.Parse(format, s); err == nil {
			return &parsed
		}
	}
	return nil
}

// DurationDays is completion minus start in whole days, nil unless both
// dates are present.
func DurationDays(start, end *time.Time) *int {
	if start == nil || end == nil {
		return nil
	}
	days := int(end.Sub(*start).Hours() / 24)
	return &days
}
