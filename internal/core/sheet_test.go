package core

import (
	"testing"
	"time"
)

func TestSheetName(t *testing.T) {
	cases := []struct {
		t    time.Time
		want string
	}{
		{time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC), "Marzo-2025"},
		{time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC), "Diciembre-2025"},
		{time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), "Enero-2026"},
		{time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC), "Septiembre-2026"},
	}
	for _, tc := range cases {
		if got := SheetName(tc.t); got != tc.want {
			t.Fatalf("SheetName(%v) = %q, want %q", tc.t, got, tc.want)
		}
	}
}

func TestSheetNameFollowsClockLocation(t *testing.T) {
	// 02:00 UTC on April 1st is still March 31st in Buenos Aires (UTC-3).
	loc := time.FixedZone("ART", -3*60*60)
	utc := time.Date(2025, time.April, 1, 2, 0, 0, 0, time.UTC)
	if got := SheetName(utc.In(loc)); got != "Marzo-2025" {
		t.Fatalf("expected Marzo-2025, got %q", got)
	}
}

func TestFixedClock(t *testing.T) {
	ts := time.Date(2025, 3, 5, 9, 7, 3, 0, time.UTC)
	c := FixedClock(ts)
	if !c.Now().Equal(ts) {
		t.Fatalf("fixed clock drifted")
	}
	if got := FormatTimestamp(c.Now()); got != "5/3/2025 09:07:03" {
		t.Fatalf("unexpected timestamp %q", got)
	}
}

func TestMonthNameOutOfRange(t *testing.T) {
	if MonthName(0) != "" || MonthName(13) != "" {
		t.Fatalf("expected empty names for invalid months")
	}
}
