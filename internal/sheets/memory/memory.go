// Package memory is an in-process ledger that answers the monthly sheet
// ranges the way the spreadsheet formulas would.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"gastos/internal/core"
	ports "gastos/internal/sheets"
)

// Balance feeds the fixed-cost and available-balance cells.
type Balance struct {
	Budget     float64
	FixedTotal float64
}

type Store struct {
	mu      sync.Mutex
	layout  ports.Layout
	balance Balance
	sheets  map[string][]core.Expense
}

var _ ports.Ledger = (*Store)(nil)

func New(layout ports.Layout, balance Balance) *Store {
	return &Store{
		layout:  layout,
		balance: balance,
		sheets:  make(map[string][]core.Expense),
	}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, sheet string, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets[sheet] = append(s.sheets[sheet], e)
	return fmt.Sprintf("mem:%s:%d", sheet, len(s.sheets[sheet])), nil
}

// Rows returns a copy of the expenses stored in sheet.
func (s *Store) Rows(sheet string) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expense(nil), s.sheets[sheet]...)
}

// ReadRanges answers the layout ranges; unknown ranges read as empty.
func (s *Store) ReadRanges(ctx context.Context, sheet string, ranges []string) ([][][]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	rows := append([]core.Expense(nil), s.sheets[sheet]...)
	s.mu.Unlock()

	byCat := make(map[core.Category]float64)
	var variable float64
	for _, e := range rows {
		byCat[e.Category] += e.Amount
		variable += e.Amount
	}

	out := make([][][]any, len(ranges))
	for i, r := range ranges {
		switch strings.TrimSpace(r) {
		case s.layout.ExpensesRange:
			m := make([][]any, 0, len(rows))
			for _, e := range rows {
				m = append(m, []any{
					core.FormatTimestamp(e.Timestamp),
					string(e.Category),
					e.Note,
					e.Submitter,
					core.FormatAmount(e.Amount),
				})
			}
			out[i] = m
		case s.layout.CategoryTotalsRange:
			cats := core.Categories()
			m := make([][]any, len(cats))
			for j, c := range cats {
				m[j] = []any{core.FormatAmount(byCat[c.Category])}
			}
			out[i] = m
		case s.layout.FixedTotalRange:
			out[i] = cell(s.balance.FixedTotal)
		case s.layout.VariableTotalRange:
			out[i] = cell(variable)
		case s.layout.AvailableRange:
			out[i] = cell(s.balance.Budget - s.balance.FixedTotal - variable)
		default:
			out[i] = [][]any{}
		}
	}
	return out, nil
}

func cell(v float64) [][]any {
	return [][]any{{core.FormatAmount(v)}}
}
