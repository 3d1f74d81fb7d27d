// Package isodate parses zone-qualified ISO-8601 date strings into
// milliseconds since the Unix epoch.
//
// Accepted layout:
//
//	YYYY-MM-DDTHH:MM[:SS[.mmm]]ZONE
//
// where ZONE is "Z", "±HHMM" or "±HH:MM". The zone is mandatory. Milliseconds
// take one to three digits and are scaled by position (".5" is 500ms).
package isodate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minYear = 1970
	maxYear = 9999

	layout = "2006-01-02T15:04:05.000Z07:00"

	npos = -1
)

// ParseError describes a date string that could not be parsed. Token is the
// offending substring (empty when something is missing altogether).
type ParseError struct {
	Input  string
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

func parseErrf(input, token string, format string, args ...any) error {
	return &ParseError{input, token, fmt.Sprintf(format, args...)}
}

// Parse returns the number of milliseconds since the Unix epoch represented
// by s.
func Parse(s string) (int64, error) {
	f, err := tokenize(s)
	if err != nil {
		return 0, err
	}
	return f.toMillis(s)
}

// ParseTime is like Parse, but returns a UTC time.Time.
func ParseTime(s string) (time.Time, error) {
	ms, err := Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}

// Format renders millis as a UTC string that Parse accepts.
func Format(millis int64) string {
	return time.UnixMilli(millis).UTC().Format(layout)
}

type fields struct {
	year, month, day, hour, min, sec, millis string
	zone                                     string
}

// nextToken returns s[start:end] where end is the first index at or after
// start holding one of the terminals, and that index (npos when the string
// ran out first).
func nextToken(s, terminals string, start int) (string, int) {
	if start < 0 || start > len(s) {
		return "", npos
	}
	i := start
	for i < len(s) && strings.IndexByte(terminals, s[i]) < 0 {
		i++
	}
	if i < len(s) {
		return s[start:i], i
	}
	return s[start:], npos
}

func after(end int) int {
	if end == npos {
		return npos
	}
	return end + 1
}

func tokenize(s string) (fields, error) {
	var f fields
	var yearEnd, monthEnd, dayEnd, hourEnd, minEnd int
	secEnd, millisEnd := npos, npos

	f.year, yearEnd = nextToken(s, "-", 0)
	f.month, monthEnd = nextToken(s, "-", after(yearEnd))
	f.day, dayEnd = nextToken(s, "T", after(monthEnd))
	f.hour, hourEnd = nextToken(s, ":", after(dayEnd))
	f.min, minEnd = nextToken(s, ":+-Z", after(hourEnd))

	if minEnd != npos && s[minEnd] == ':' {
		if minEnd == len(s)-1 {
			return f, parseErrf(s, ":", `ends with ":" character`)
		}
		f.sec, secEnd = nextToken(s, ".+-Z", minEnd+1)
		if f.sec == "" {
			return f, parseErrf(s, "", "missing seconds")
		}
	}

	if secEnd != npos && s[secEnd] == '.' {
		if secEnd == len(s)-1 {
			return f, parseErrf(s, ".", `ends with "." character`)
		}
		f.millis, millisEnd = nextToken(s, "+-Z", secEnd+1)
		if f.millis == "" {
			return f, parseErrf(s, "", "missing milliseconds")
		}
	}

	switch {
	case millisEnd != npos:
		f.zone = s[millisEnd:]
	case secEnd != npos && s[secEnd] != '.':
		f.zone = s[secEnd:]
	case minEnd != npos && s[minEnd] != ':':
		f.zone = s[minEnd:]
	}
	return f, nil
}

func (f *fields) toMillis(s string) (int64, error) {
	year, err := parseComponent(s, "year", f.year, 4, minYear, maxYear)
	if err != nil {
		return 0, err
	}
	month, err := parseComponent(s, "month", f.month, 2, 1, 12)
	if err != nil {
		return 0, err
	}
	day, err := parseComponent(s, "day", f.day, 2, 1, 31)
	if err != nil {
		return 0, err
	}
	hour, err := parseComponent(s, "hour", f.hour, 2, 0, 23)
	if err != nil {
		return 0, err
	}
	min, err := parseComponent(s, "minute", f.min, 2, 0, 59)
	if err != nil {
		return 0, err
	}
	var sec int
	if f.sec != "" {
		sec, err = parseComponent(s, "second", f.sec, 2, 0, 59)
		if err != nil {
			return 0, err
		}
	}

	tzAdjSecs, err := parseZone(s, f.zone)
	if err != nil {
		return 0, err
	}

	ms, err := parseMillis(s, f.millis)
	if err != nil {
		return 0, err
	}

	t := time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
	return t.Unix()*1000 + int64(ms) + int64(tzAdjSecs)*1000, nil
}

func parseComponent(s, name, tok string, digits, lo, hi int) (int, error) {
	if len(tok) != digits || !isOnlyDigits(tok) {
		return 0, parseErrf(s, tok, "%s string should be %s: %q", name, digitCount(digits), tok)
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, parseErrf(s, tok, "%s: %v", name, err)
	}
	if v < lo || v > hi {
		return 0, parseErrf(s, tok, "%s out of range: %d", name, v)
	}
	return v, nil
}

func digitCount(n int) string {
	switch n {
	case 2:
		return "two digits"
	case 4:
		return "four digits"
	default:
		return strconv.Itoa(n) + " digits"
	}
}

// parseZone returns the number of seconds to add to the local components to
// get UTC. The sign is inverted relative to the zone designator: "+0230"
// means the clock runs ahead of UTC, so the correction goes backwards.
func parseZone(s, tz string) (int, error) {
	if tz == "" {
		return 0, parseErrf(s, "", "missing required time zone specifier")
	}
	switch tz[0] {
	case 'Z':
		if len(tz) != 1 {
			return 0, parseErrf(s, tz, "trailing characters in time zone specifier: %q", tz)
		}
		return 0, nil
	case '+', '-':
		digits := tz[1:]
		if len(digits) == 5 && digits[2] == ':' {
			digits = digits[:2] + digits[3:]
		}
		if len(digits) != 4 || !isOnlyDigits(digits) {
			return 0, parseErrf(s, tz, "time zone adjustment should be four digits: %q", tz)
		}
		hours, _ := strconv.Atoi(digits[:2])
		if hours > 23 {
			return 0, parseErrf(s, tz, "time zone hours adjustment out of range: %d", hours)
		}
		minutes, _ := strconv.Atoi(digits[2:])
		if minutes > 59 {
			return 0, parseErrf(s, tz, "time zone minutes adjustment out of range: %d", minutes)
		}
		adj := hours*3600 + minutes*60
		if tz[0] == '+' {
			adj = -adj
		}
		return adj, nil
	default:
		return 0, parseErrf(s, tz, "invalid character %q at the beginning of time zone specifier %q", tz[0], tz)
	}
}

func parseMillis(s, tok string) (int, error) {
	if tok == "" {
		return 0, nil
	}
	if len(tok) > 3 || !isOnlyDigits(tok) {
		return 0, parseErrf(s, tok, "millisecond string should be at most three digits: %q", tok)
	}
	v, _ := strconv.Atoi(tok)
	switch len(tok) {
	case 1:
		v *= 100
	case 2:
		v *= 10
	}
	return v, nil
}

func isOnlyDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
