package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gastos/internal/core"
)

// Replies are Telegram HTML; anything typed by users or read from the
// sheet goes through escape first.
const (
	usageHint = "Usá: <code>categoria monto nota</code>\nEjemplo: <code>Super 3.500,50 frutas</code>"

	msgBadFormat     = "⚠️ Formato incorrecto.\n" + usageHint
	msgEmptyReport   = "⚠️ No hay gastos registrados todavía."
	msgSaveFailed    = "⚠️ No pude guardar el gasto. Probá de nuevo en un rato."
	msgReportFailed  = "⚠️ No pude armar el reporte. Probá de nuevo en un rato."
	msgInternalError = "⚠️ Algo salió mal procesando tu mensaje."
	noNote           = "sin nota"
)

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

func invalidCategoryText(input string, valid []string) string {
	return fmt.Sprintf("❌ Categoría inválida: <b>%s</b>\nLas categorías permitidas son:\n%s",
		escape(input), escape(strings.Join(valid, ", ")))
}

func invalidAmountText(input string) string {
	return fmt.Sprintf("❌ Monto inválido: <b>%s</b>\n%s", escape(input), usageHint)
}

func savedText(e core.Expense) string {
	note := e.Note
	if note == "" {
		note = noNote
	}
	return fmt.Sprintf("✅ Gasto guardado: %s - %s (%s)",
		escape(string(e.Category)), core.FormatAmount(e.Amount), escape(note))
}
