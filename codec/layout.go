package codec

import (
	"strconv"
	"time"
)

// LayoutFormatter renders times with a time.Format layout, optionally in a
// fixed location.
type LayoutFormatter struct {
	layout string
	loc    *time.Location
}

// Layout returns a formatter for layout. A nil loc keeps each time's own
// location.
func Layout(layout string, loc *time.Location) LayoutFormatter {
	return LayoutFormatter{layout: layout, loc: loc}
}

func (f LayoutFormatter) Format(t time.Time) string {
	if f.loc != nil {
		t = t.In(f.loc)
	}
	return t.Format(f.layout)
}

// EpochMillisFormatter renders times as a decimal count of milliseconds since
// the Unix epoch. Installed as a settings formatter the value is written as a
// quoted string; leave the formatter unset for an unquoted number.
type EpochMillisFormatter struct{}

// EpochMillis returns the epoch milliseconds formatter.
func EpochMillis() EpochMillisFormatter { return EpochMillisFormatter{} }

func (EpochMillisFormatter) Format(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}
