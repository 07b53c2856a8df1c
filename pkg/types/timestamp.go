package types

import (
	"fmt"
	"strings"
	"time"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

const dateLayout = "2006-01-02"

// ParseTimestamp accepts RFC 3339 timestamps, zone-less datetime-local values
// (interpreted as UTC) and bare dates. dateOnly reports whether the input
// carried no time of day.
func ParseTimestamp(value string) (t time.Time, dateOnly bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), false, nil
		}
	}

	if t, err := time.Parse(dateLayout, value); err == nil {
		return t.UTC(), true, nil
	}

	return time.Time{}, false, fmt.Errorf("unrecognized timestamp %q", value)
}
