// Package codec holds date formatters for jsonkit settings and the parser the
// converter uses to read dates back. Every formatter has a Format(time.Time)
// string method and so satisfies jsonkit.DateFormatter.
package codec

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// RFC3339Formatter renders times as RFC 3339 in UTC with trailing zeros of the
// fraction trimmed.
type RFC3339Formatter struct{}

// RFC3339 returns the canonical RFC 3339 formatter.
func RFC3339() RFC3339Formatter { return RFC3339Formatter{} }

func (RFC3339Formatter) Format(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// layouts accepted by ParseTime, tried in order.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	time.DateTime,
	"2006-01-02 15:04:05.999",
	time.DateOnly,
}

// ErrUnrecognizedTime is returned when no known layout matches.
var ErrUnrecognizedTime = errors.New("codec: unrecognized time format")

// ParseTime reads a time written by any formatter in this package: RFC 3339,
// common date/time layouts (zone-less ones are taken as UTC) or epoch
// milliseconds.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, nil
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), nil
	}
	return time.Time{}, ErrUnrecognizedTime
}
