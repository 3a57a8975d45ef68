package core

import (
	"fmt"
	"time"
)

var spanishMonths = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// timestampLayout mirrors the es-AR short date-time, which Sheets parses
// into a date cell when the spreadsheet locale is Spanish.
const timestampLayout = "2/1/2006 15:04:05"

// Clock is the time source used to pick the monthly sheet and stamp rows.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock returns wall-clock time in loc (UTC when loc is nil).
func SystemClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return ClockFunc(func() time.Time { return time.Now().In(loc) })
}

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// MonthName returns the Spanish name of m.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return spanishMonths[m-1]
}

// SheetName returns the monthly sheet for t, e.g. "Marzo-2025".
func SheetName(t time.Time) string {
	return fmt.Sprintf("%s-%d", MonthName(t.Month()), t.Year())
}

// FormatTimestamp renders t as the row timestamp, e.g. "5/3/2025 14:07:09".
func FormatTimestamp(t time.Time) string {
	return t.Format(timestampLayout)
}
