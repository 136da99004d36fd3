package optparse

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// converterFor returns the built-in converter for T, or nil.
func converterFor[T any]() func(string) (T, error) {
	var zero T
	var fn any
	switch any(zero).(type) {
	case string:
		fn = func(s string) (string, error) { return s, nil }
	case bool:
		fn = parseBool
	case int:
		fn = parseInt
	case int64:
		fn = func(s string) (int64, error) { return parseSigned(s, 64) }
	case uint:
		fn = func(s string) (uint, error) {
			n, err := parseUnsigned(s, strconv.IntSize)
			return uint(n), err
		}
	case uint64:
		fn = func(s string) (uint64, error) { return parseUnsigned(s, 64) }
	case float64:
		fn = parseFloat
	case time.Duration:
		fn = parseDuration
	case *semver.Version:
		fn = parseVersion
	default:
		return nil
	}
	return fn.(func(string) (T, error))
}

func defaultMetaVar[T any]() string {
	var zero T
	switch any(zero).(type) {
	case int, int64, uint, uint64, float64:
		return "NUM"
	case time.Duration:
		return "DURATION"
	case *semver.Version:
		return "VERSION"
	case bool:
		return "BOOL"
	default:
		return "VALUE"
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a valid boolean", s)
}

func parseInt(s string) (int, error) {
	n, err := parseSigned(s, strconv.IntSize)
	return int(n), err
}

// parseSigned accepts base prefixes: 0x, 0o, 0b.
func parseSigned(s string, bits int) (int64, error) {
	n, err := strconv.ParseInt(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid integer", s)
	}
	return n, nil
}

func parseUnsigned(s string, bits int) (uint64, error) {
	n, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid unsigned integer", s)
	}
	return n, nil
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid number", s)
	}
	return f, nil
}

func parseVersion(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not a valid version: %w", s, err)
	}
	return v, nil
}

// parseDuration accepts Go durations ("1h30m"), clock forms ("MM:SS",
// "HH:MM:SS") and the calendar units d, w, M (30 days) and Y (365 days).
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if strings.Contains(s, ":") {
		return parseClockDuration(s)
	}
	if d, ok, err := parseCalendarDuration(s); ok {
		return d, err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid duration", s)
	}
	return d, nil
}

func parseClockDuration(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("%q is not a valid duration: too many colons", s)
	}
	units := []time.Duration{time.Second, time.Minute, time.Hour}
	var total time.Duration
	for i := range parts {
		// walk right to left: seconds, minutes, hours
		field := parts[len(parts)-1-i]
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%q is not a valid duration", s)
		}
		d, ok := scaleDuration(n, units[i])
		if !ok || d > math.MaxInt64-total {
			return 0, fmt.Errorf("%q is not a valid duration: out of range", s)
		}
		total += d
	}
	return total, nil
}

// parseCalendarDuration reports ok when s has a calendar unit suffix and a
// plain count; err is set only for counts that overflow.
func parseCalendarDuration(s string) (d time.Duration, ok bool, err error) {
	if len(s) < 2 {
		return 0, false, nil
	}
	var unit time.Duration
	switch s[len(s)-1] {
	case 'd', 'D':
		unit = 24 * time.Hour
	case 'w', 'W':
		unit = 7 * 24 * time.Hour
	case 'M':
		unit = 30 * 24 * time.Hour
	case 'y', 'Y':
		unit = 365 * 24 * time.Hour
	default:
		return 0, false, nil
	}
	n, perr := strconv.ParseInt(s[:len(s)-1], 10, 64)
	if (perr != nil && !errors.Is(perr, strconv.ErrRange)) || n < 0 {
		return 0, false, nil
	}
	d, fits := scaleDuration(n, unit)
	if perr != nil || !fits {
		return 0, true, fmt.Errorf("%q is not a valid duration: out of range", s)
	}
	return d, true, nil
}

// scaleDuration multiplies n by unit, reporting false on overflow.
func scaleDuration(n int64, unit time.Duration) (time.Duration, bool) {
	if n > math.MaxInt64/int64(unit) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}
