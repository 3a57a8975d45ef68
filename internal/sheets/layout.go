package sheets

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Layout holds the fixed cell regions of a monthly sheet, in A1 notation
// without the sheet prefix.
type Layout struct {
	// ExpensesRange is the append target and the expenses table.
	ExpensesRange       string
	CategoryTotalsRange string
	FixedTotalRange     string
	VariableTotalRange  string
	AvailableRange      string
}

// DefaultLayout matches the household template sheet.
func DefaultLayout() Layout {
	return Layout{
		ExpensesRange:       "G4:K",
		CategoryTotalsRange: "D26:D31",
		FixedTotalRange:     "D10",
		VariableTotalRange:  "D9",
		AvailableRange:      "D11",
	}
}

// Report range positions inside ReportRanges.
const (
	RangeExpenses = iota
	RangeCategoryTotals
	RangeFixedTotal
	RangeVariableTotal
	RangeAvailable
)

// ReportRanges returns the five ranges read for a report, indexed by the
// Range* constants.
func (l Layout) ReportRanges() []string {
	return []string{
		l.ExpensesRange,
		l.CategoryTotalsRange,
		l.FixedTotalRange,
		l.VariableTotalRange,
		l.AvailableRange,
	}
}

var a1Pattern = regexp.MustCompile(`^[A-Z]+[0-9]*(:[A-Z]+[0-9]*)?$`)

func (l Layout) Validate() error {
	var errs []error
	for name, r := range map[string]string{
		"expenses":        l.ExpensesRange,
		"category totals": l.CategoryTotalsRange,
		"fixed total":     l.FixedTotalRange,
		"variable total":  l.VariableTotalRange,
		"available":       l.AvailableRange,
	} {
		if !a1Pattern.MatchString(strings.TrimSpace(r)) {
			errs = append(errs, fmt.Errorf("invalid %s range %q", name, r))
		}
	}
	return errors.Join(errs...)
}

// Qualify prefixes rng with the quoted sheet name, e.g. 'Marzo-2025'!G4:K.
func Qualify(sheet, rng string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(sheet, "'", "''"), rng)
}
