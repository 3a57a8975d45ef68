package sheets

import "testing"

func TestDefaultLayoutValid(t *testing.T) {
	if err := DefaultLayout().Validate(); err != nil {
		t.Fatalf("expected default layout to be valid: %v", err)
	}
}

func TestLayoutValidateRejectsBadRanges(t *testing.T) {
	l := DefaultLayout()
	l.FixedTotalRange = "D10!"
	l.AvailableRange = ""
	if err := l.Validate(); err == nil {
		t.Fatal("expected error")
	}
}

func TestReportRangesOrder(t *testing.T) {
	l := DefaultLayout()
	r := l.ReportRanges()
	if len(r) != 5 {
		t.Fatalf("expected 5 ranges, got %d", len(r))
	}
	if r[RangeExpenses] != "G4:K" || r[RangeCategoryTotals] != "D26:D31" ||
		r[RangeFixedTotal] != "D10" || r[RangeVariableTotal] != "D9" || r[RangeAvailable] != "D11" {
		t.Fatalf("unexpected order: %v", r)
	}
}

func TestQualify(t *testing.T) {
	if got := Qualify("Marzo-2025", "G4:K"); got != "'Marzo-2025'!G4:K" {
		t.Fatalf("unexpected %q", got)
	}
	if got := Qualify("O'Brien", "A1"); got != "'O''Brien'!A1" {
		t.Fatalf("unexpected %q", got)
	}
}
