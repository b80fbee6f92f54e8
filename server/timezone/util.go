// Package timezone resolves the reference timezone used for extraction and
// formats extracted timestamps for display.
package timezone

import (
	"fmt"
	"time"
)

// Default location constants
var (
	// UTC is the coordinated universal time timezone
	UTC = time.UTC

	// Local is the local timezone
	Local = time.Local
)

// LocalName is the identifier that selects the process-local timezone.
const LocalName = "Local"

// ParseTimezone parses an IANA timezone identifier (e.g., "Europe/Paris").
// "" and "Local" select the local timezone. If the timezone is invalid,
// returns Local and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	switch tz {
	case "", LocalName:
		return Local, nil
	case "UTC":
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Local, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// FormatExtracted formats an extracted timestamp for display.
// Rules:
//   - midnight: "2006-01-02"
//   - otherwise: "2006-01-02 15:04:05"
func FormatExtracted(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01-02 15:04:05")
}

