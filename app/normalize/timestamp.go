package normalize

import (
	"time"
)

// timestampLayouts are tried in order; the first successful parse wins.
// No locale or timezone inference happens beyond literal matching, so the
// result is fully deterministic.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999Z", // ISO with fractional seconds
	"2006-01-02T15:04:05Z",        // ISO without fractional seconds
	"2006-01-02 15:04:05",         // standard datetime
	"2006-01-02",                  // date only
	"2006-01-02T15:04:05",         // ISO without Z
}

// ParseTimestamp converts a free-form date/time string into a canonical
// instant plus an uncertainty flag. Absent or unrecognized input yields
// (nil, true); it never fails.
func ParseTimestamp(value string) (*time.Time, bool) {
	if value == "" {
		return nil, true
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return &parsed, false
		}
	}

	return nil, true
}
