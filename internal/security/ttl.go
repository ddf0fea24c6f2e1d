package security

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTTL is returned when a token lifetime cannot be resolved
var ErrInvalidTTL = errors.New("invalid token ttl")

var ttlPattern = regexp.MustCompile(`^(-?(?:\d+)?\.?\d+) *([a-z]*)$`)

const (
	day  = 24 * time.Hour
	week = 7 * day
	year = time.Duration(365.25 * float64(day))
)

var ttlUnits = map[string]time.Duration{
	"ms": time.Millisecond, "msec": time.Millisecond, "msecs": time.Millisecond,
	"millisecond": time.Millisecond, "milliseconds": time.Millisecond,
	"s": time.Second, "sec": time.Second, "secs": time.Second,
	"second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute,
	"minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour,
	"hour": time.Hour, "hours": time.Hour,
	"d": day, "day": day, "days": day,
	"w": week, "week": week, "weeks": week,
	"y": year, "yr": year, "yrs": year, "year": year, "years": year,
}

// ParseTTL resolves a token lifetime. A value made only of digits is a
// number of seconds; anything else is a number followed by a unit such as
// "1d", "2h", "1.5h" or "10 minutes".
func ParseTTL(raw string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidTTL)
	}

	if isDigits(s) {
		secs, err := strconv.ParseInt(s, 10, 64)
		if err != nil || secs <= 0 || secs > math.MaxInt64/int64(time.Second) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, raw)
		}
		return time.Duration(secs) * time.Second, nil
	}

	m := ttlPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, raw)
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTTL, raw)
	}

	unit := time.Millisecond
	if m[2] != "" {
		u, ok := ttlUnits[m[2]]
		if !ok {
			return 0, fmt.Errorf("%w: unknown unit %q", ErrInvalidTTL, m[2])
		}
		unit = u
	}

	d := n * float64(unit)
	if d < float64(time.Second) || d > float64(math.MaxInt64) {
		return 0, fmt.Errorf("%w: %q out of range", ErrInvalidTTL, raw)
	}

	return time.Duration(d), nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
