package log

import (
	"context"
	"log/slog"
)

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldUpdateID  = "update_id"
	FieldChatID    = "chat_id"
	FieldSubmitter = "submitter"
	FieldCommand   = "command"
	FieldSheet     = "sheet"
	FieldSheetsRef = "sheets_ref"
	FieldCategory  = "category"
	FieldAmount    = "amount"
	FieldNote      = "note"
	FieldRows      = "rows"
	FieldOutcome   = "outcome"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldErrorType = "error_type"
	FieldOperation = "operation"
	FieldSuccess   = "success"
	FieldTraceID   = "trace_id"
	FieldLimited   = "rate_limited"
)

// Components defines standard component names
const (
	ComponentApp      = "app"
	ComponentBot      = "bot"
	ComponentTelegram = "telegram"
	ComponentExpense  = "expense"
	ComponentReport   = "report"
	ComponentSheets   = "sheets"
	ComponentStorage  = "storage"
	ComponentAMQP     = "amqp"
	ComponentBackend  = "backend"
)

// Operations defines standard operation names
const (
	OpAppend   = "append"
	OpRead     = "read"
	OpParse    = "parse"
	OpReport   = "report"
	OpJournal  = "journal"
	OpPublish  = "publish"
	OpSend     = "send"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)

// ErrorTypes defines standard error type categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeRemoteStore   = "remote_store_error"
	ErrorTypeTransport     = "transport_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeTimeout       = "timeout_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(errorType string) LogFields {
	f[FieldErrorType] = errorType
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithChat adds the chat and sender of an update
func (f LogFields) WithChat(chatID int64, submitter string) LogFields {
	f[FieldChatID] = chatID
	if submitter != "" {
		f[FieldSubmitter] = submitter
	}
	return f
}

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(sheet, category string, amount float64, note string) LogFields {
	f[FieldSheet] = sheet
	f[FieldCategory] = category
	f[FieldAmount] = amount
	f[FieldNote] = note
	return f
}

// ToSlice converts LogFields to a slice for slog. The component key is left
// out since Logger adds its own.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		if k == FieldComponent {
			continue
		}
		slice = append(slice, k, v)
	}
	return slice
}

// StructuredLogger provides domain-level logging helpers
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogExpenseRecorded logs a successful append
func (sl *StructuredLogger) LogExpenseRecorded(ctx context.Context, sheet, category string, amount float64, note, ref string) {
	fields := NewFields().
		WithExpense(sheet, category, amount, note).
		WithOperation(OpAppend).
		ToSlice()
	fields = append(fields, FieldSheetsRef, ref)

	sl.logger.WithComponent(ComponentExpense).InfoContext(ctx, "Expense recorded", fields...)
}

// LogReportServed logs a report built from sheet
func (sl *StructuredLogger) LogReportServed(ctx context.Context, sheet string, rows int, durationMs int64) {
	sl.logger.WithComponent(ComponentReport).InfoContext(ctx, "Report served",
		FieldSheet, sheet,
		FieldRows, rows,
		FieldDuration, durationMs,
		FieldOperation, OpReport)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation, errorType string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	all := fields.
		WithError(err).
		WithOperation(operation).
		WithErrorType(errorType)

	sl.logger.WithComponent(component).Logger.Log(ctx, slog.LevelError, msg,
		append([]any{FieldComponent, component}, all.ToSlice()...)...)
}
