// Package report assembles the monthly summary from the sheet ranges and
// renders it as Telegram HTML.
package report

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gastos/internal/core"
	ports "gastos/internal/sheets"
)

// ErrEmpty is returned when the expenses table has no rows.
var ErrEmpty = errors.New("no expenses recorded")

// emptyValue is shown for cells the sheet left blank.
const emptyValue = "0"

// CategoryLine is one category with its displayed total.
type CategoryLine struct {
	Category core.Category
	Icon     string
	Value    string
}

// Snapshot is the data of a single report reply.
type Snapshot struct {
	Sheet      string
	Rows       int
	Categories []CategoryLine
	Variable   string
	Fixed      string
	Available  string
}

// FromRanges builds a Snapshot from the matrices returned for
// Layout.ReportRanges. It returns ErrEmpty when the expenses table is empty.
func FromRanges(sheet string, ranges [][][]any) (Snapshot, error) {
	if len(ranges) != len(ports.Layout{}.ReportRanges()) {
		return Snapshot{}, fmt.Errorf("expected %d ranges, got %d", len(ports.Layout{}.ReportRanges()), len(ranges))
	}
	rows := countRows(ranges[ports.RangeExpenses])
	if rows == 0 {
		return Snapshot{Sheet: sheet}, ErrEmpty
	}

	cats := core.Categories()
	s := Snapshot{
		Sheet:      sheet,
		Rows:       rows,
		Categories: make([]CategoryLine, len(cats)),
		Variable:   cellAt(ranges[ports.RangeVariableTotal], 0),
		Fixed:      cellAt(ranges[ports.RangeFixedTotal], 0),
		Available:  cellAt(ranges[ports.RangeAvailable], 0),
	}
	for i, c := range cats {
		s.Categories[i] = CategoryLine{
			Category: c.Category,
			Icon:     c.Icon,
			Value:    cellAt(ranges[ports.RangeCategoryTotals], i),
		}
	}
	return s, nil
}

// countRows skips rows where every cell is blank.
func countRows(m [][]any) int {
	n := 0
	for _, row := range m {
		for _, v := range row {
			if v != nil && strings.TrimSpace(fmt.Sprint(v)) != "" {
				n++
				break
			}
		}
	}
	return n
}

// cellAt returns the first cell of row i, or "0" when missing or blank.
func cellAt(m [][]any, i int) string {
	if i < 0 || i >= len(m) || len(m[i]) == 0 || m[i][0] == nil {
		return emptyValue
	}
	v := strings.TrimSpace(fmt.Sprint(m[i][0]))
	if v == "" {
		return emptyValue
	}
	return v
}

// Build renders s. Cell values are escaped since they come from the sheet.
func Build(s Snapshot) string {
	var b strings.Builder
	b.WriteString("📊 <b>Reporte de gastos</b>\n")
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "\n%s <b>%s:</b> %s", c.Icon, escape(string(c.Category)), escape(c.Value))
	}
	fmt.Fprintf(&b, "\n\n💵 <b>Total variable:</b> %s", escape(s.Variable))
	fmt.Fprintf(&b, "\n\n💵 <b>Total fijo:</b> %s", escape(s.Fixed))
	fmt.Fprintf(&b, "\n\n💵 <b>Disponible:</b> %s", escape(s.Available))
	return b.String()
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}
