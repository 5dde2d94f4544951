package util

import (
	"strconv"
	"strings"
	"time"
)

// unixMilliCutoff separates epoch seconds from epoch milliseconds. Seconds
// stay below it until the year 5138.
const unixMilliCutoff = 100_000_000_000

// ParseTime accepts RFC3339, RFC3339Nano, unix seconds and unix milliseconds.
// Surrounding quotes are ignored so raw JSON values can be passed directly.
// Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
	s = strings.Trim(strings.TrimSpace(s), `"`)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		if ts > unixMilliCutoff {
			return time.UnixMilli(ts), true
		}
		return time.Unix(ts, 0), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 && f < unixMilliCutoff {
		sec := int64(f)
		return time.Unix(sec, int64((f-float64(sec))*1e9)), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}
