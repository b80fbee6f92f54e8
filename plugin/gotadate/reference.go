package gotadate

import (
	"time"

	"github.com/pkg/errors"
)

// referenceLayouts are the accepted forms of an explicit reference instant.
var referenceLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseReference parses a reference instant given on the command line or in
// an API request. Values without an offset are read in loc. An empty value
// yields the zero time, which the service treats as now.
func ParseReference(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range referenceLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid reference %q (want RFC3339 or 2006-01-02)", value)
}
