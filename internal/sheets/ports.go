package sheets

import (
	"context"

	"gastos/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseAppender writes one expense row into the named sheet.
	ExpenseAppender interface {
		Append(ctx context.Context, sheet string, e core.Expense) (rowRef string, err error)
	}

	// RangeReader reads several A1 ranges of the named sheet. The result has
	// one cell matrix per requested range, in request order.
	RangeReader interface {
		ReadRanges(ctx context.Context, sheet string, ranges []string) ([][][]any, error)
	}

	// Ledger is the full backing store used by the bot.
	Ledger interface {
		ExpenseAppender
		RangeReader
	}
)
