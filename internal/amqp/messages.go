package amqp

import (
	"encoding/json"
	"time"

	"gastos/internal/core"
)

// ExpenseRecordedMessage announces an expense appended to the spreadsheet.
type ExpenseRecordedMessage struct {
	Sheet      string    `json:"sheet"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount"`
	Note       string    `json:"note"`
	Submitter  string    `json:"submitter"`
	RecordedAt time.Time `json:"recorded_at"`
	SheetRef   string    `json:"sheet_ref"`
	ChatID     int64     `json:"chat_id"`
}

// NewExpenseRecordedMessage builds the event for e stored at ref.
func NewExpenseRecordedMessage(sheet string, e core.Expense, ref string, chatID int64) *ExpenseRecordedMessage {
	return &ExpenseRecordedMessage{
		Sheet:      sheet,
		Category:   string(e.Category),
		Amount:     e.Amount,
		Note:       e.Note,
		Submitter:  e.Submitter,
		RecordedAt: e.Timestamp,
		SheetRef:   ref,
		ChatID:     chatID,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseRecordedMessageFromJSON creates a message from JSON bytes
func ExpenseRecordedMessageFromJSON(data []byte) (*ExpenseRecordedMessage, error) {
	var msg ExpenseRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
