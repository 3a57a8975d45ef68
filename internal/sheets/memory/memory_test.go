package memory

import (
	"context"
	"testing"
	"time"

	"gastos/internal/core"
	ports "gastos/internal/sheets"
)

func expense(c core.Category, amount float64, note string) core.Expense {
	return core.Expense{
		Timestamp: time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC),
		Category:  c,
		Note:      note,
		Submitter: "Ana",
		Amount:    amount,
	}
}

func TestMemoryStoreAppendAndRows(t *testing.T) {
	s := New(ports.DefaultLayout(), Balance{})
	ref, err := s.Append(context.Background(), "Marzo-2025", expense(core.Super, 3500.5, "frutas"))
	if err != nil || ref != "mem:Marzo-2025:1" {
		t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
	}
	rows := s.Rows("Marzo-2025")
	if len(rows) != 1 || rows[0].Amount != 3500.5 || rows[0].Note != "frutas" || rows[0].Category != core.Super {
		t.Fatalf("round trip mismatch: %+v", rows)
	}
	if len(s.Rows("Abril-2025")) != 0 {
		t.Fatalf("sheets must be isolated")
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New(ports.DefaultLayout(), Balance{})
	if _, err := s.Append(context.Background(), "Marzo-2025", expense("Comida", 1, "")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestMemoryStoreReadRanges(t *testing.T) {
	layout := ports.DefaultLayout()
	s := New(layout, Balance{Budget: 10000, FixedTotal: 2000})
	ctx := context.Background()
	for _, e := range []core.Expense{
		expense(core.Super, 1000, ""),
		expense(core.Super, 500.5, ""),
		expense(core.Agua, 99.5, ""),
	} {
		if _, err := s.Append(ctx, "Marzo-2025", e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.ReadRanges(ctx, "Marzo-2025", append(layout.ReportRanges(), "Z1"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("expected 6 results, got %d", len(got))
	}
	if len(got[ports.RangeExpenses]) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(got[ports.RangeExpenses]))
	}
	totals := got[ports.RangeCategoryTotals]
	if totals[1][0] != "99,50" || totals[4][0] != "1.500,50" || totals[0][0] != "0,00" {
		t.Fatalf("unexpected category totals: %v", totals)
	}
	if got[ports.RangeFixedTotal][0][0] != "2.000,00" {
		t.Fatalf("unexpected fixed: %v", got[ports.RangeFixedTotal])
	}
	if got[ports.RangeVariableTotal][0][0] != "1.600,00" {
		t.Fatalf("unexpected variable: %v", got[ports.RangeVariableTotal])
	}
	if got[ports.RangeAvailable][0][0] != "6.400,00" {
		t.Fatalf("unexpected available: %v", got[ports.RangeAvailable])
	}
	if len(got[5]) != 0 {
		t.Fatalf("unknown range should be empty")
	}
}

func TestMemoryStoreReadRangesCancelled(t *testing.T) {
	s := New(ports.DefaultLayout(), Balance{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.ReadRanges(ctx, "Marzo-2025", []string{"D9"}); err == nil {
		t.Fatalf("expected context error")
	}
}
