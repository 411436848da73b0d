package plots

import (
	"fmt"
	"strings"
	"time"
)

// isoLayouts are the accepted time_of_track formats: RFC 3339 with an
// offset or Z suffix, or a bare local form assumed to be UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

// ISOToSecondsSinceMidnight converts an ISO-8601 UTC timestamp to
// floating-point seconds since midnight of the same UTC day. The wire format
// carries no date; CAT62 I062/070 stores this value at a 1/128 s LSB.
func ISOToSecondsSinceMidnight(iso string) (float64, error) {
	var parsed time.Time
	var err error
	for _, layout := range isoLayouts {
		parsed, err = time.Parse(layout, strings.TrimSpace(iso))
		if err == nil {
			break
		}
	}
	if err != nil {
		return 0, fmt.Errorf("invalid ISO-8601 timestamp %q: %w", iso, err)
	}

	utc := parsed.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return utc.Sub(midnight).Seconds(), nil
}

// SecondsSinceMidnightToISO reconstructs an ISO-8601 UTC timestamp from
// seconds-since-midnight. referenceDate is an optional YYYY-MM-DD string
// naming the UTC day; when empty, today's UTC date is used, which is only
// correct for same-day round trips.
func SecondsSinceMidnightToISO(seconds float64, referenceDate string) (string, error) {
	var base time.Time
	if referenceDate != "" {
		parsed, err := time.Parse("2006-01-02", referenceDate)
		if err != nil {
			return "", fmt.Errorf("invalid reference date %q: %w", referenceDate, err)
		}
		base = parsed
	} else {
		now := time.Now().UTC()
		base = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	ts := base.Add(time.Duration(seconds * float64(time.Second)))
	return ts.UTC().Format("2006-01-02T15:04:05.999999999Z07:00"), nil
}
