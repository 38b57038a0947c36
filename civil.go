package jsonkit

import (
	"fmt"
	"time"
)

// Char is a single character. It encodes as a one-character string, while a
// plain rune encodes as a number.
type Char rune

// LocalDate is a calendar date without time zone. It encodes as "2006-01-02".
type LocalDate struct {
	Year  int
	Month time.Month
	Day   int
}

// LocalTime is a wall clock time without date or zone. It encodes as
// "15:04:05" with fractional seconds when non-zero.
type LocalTime struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// LocalDateTime combines a LocalDate and a LocalTime, encoded with a "T"
// separator.
type LocalDateTime struct {
	Date LocalDate
	Time LocalTime
}

// LocalDateOf returns the date part of t in t's location.
func LocalDateOf(t time.Time) LocalDate {
	y, m, d := t.Date()
	return LocalDate{Year: y, Month: m, Day: d}
}

// LocalTimeOf returns the clock part of t in t's location.
func LocalTimeOf(t time.Time) LocalTime {
	return LocalTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond()}
}

// LocalDateTimeOf returns the civil date and time of t in t's location.
func LocalDateTimeOf(t time.Time) LocalDateTime {
	return LocalDateTime{Date: LocalDateOf(t), Time: LocalTimeOf(t)}
}

func (d LocalDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (t LocalTime) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Nanosecond != 0 {
		// Trim trailing zeros the way time.RFC3339Nano does.
		frac := time.Date(0, 1, 1, 0, 0, 0, t.Nanosecond, time.UTC).Format(".999999999")
		s += frac
	}
	return s
}

func (dt LocalDateTime) String() string {
	return dt.Date.String() + "T" + dt.Time.String()
}

// In returns the instant of dt in loc.
func (dt LocalDateTime) In(loc *time.Location) time.Time {
	return time.Date(dt.Date.Year, dt.Date.Month, dt.Date.Day, dt.Time.Hour, dt.Time.Minute, dt.Time.Second, dt.Time.Nanosecond, loc)
}

// ParseLocalDate parses "2006-01-02".
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return LocalDate{}, err
	}
	return LocalDateOf(t), nil
}

// ParseLocalTime parses "15:04:05" with optional fractional seconds.
func ParseLocalTime(s string) (LocalTime, error) {
	t, err := time.Parse("15:04:05.999999999", s)
	if err != nil {
		return LocalTime{}, err
	}
	return LocalTimeOf(t), nil
}

// ParseLocalDateTime parses "2006-01-02T15:04:05" with optional fractional
// seconds.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	t, err := time.Parse("2006-01-02T15:04:05.999999999", s)
	if err != nil {
		return LocalDateTime{}, err
	}
	return LocalDateTimeOf(t), nil
}
