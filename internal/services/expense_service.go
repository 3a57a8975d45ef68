package services

import (
	"context"
	"fmt"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/parser"
	"gastos/internal/report"
	"gastos/internal/sheets"
	"gastos/internal/storage"
)

type (
	// Journal keeps a local copy of appended expenses.
	Journal interface {
		RecordExpense(ctx context.Context, e storage.Entry) (int64, error)
	}

	// Publisher announces appended expenses.
	Publisher interface {
		PublishExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error
	}
)

// Submission is a parsed entry plus who sent it and from where.
type Submission struct {
	Entry     parser.Entry
	Submitter string
	ChatID    int64
}

// Recorded is the outcome of a successful Record.
type Recorded struct {
	Sheet   string
	Expense core.Expense
	Ref     string
}

// ExpenseService records expenses into the monthly sheet and builds reports
// from it. Journal and Publisher are optional and best effort.
type ExpenseService struct {
	ledger    sheets.Ledger
	layout    sheets.Layout
	clock     core.Clock
	journal   Journal
	publisher Publisher
	logger    *log.StructuredLogger
}

// Option configures an ExpenseService.
type Option func(*ExpenseService)

func WithJournal(j Journal) Option { return func(s *ExpenseService) { s.journal = j } }

func WithPublisher(p Publisher) Option { return func(s *ExpenseService) { s.publisher = p } }

func WithLogger(l *log.Logger) Option {
	return func(s *ExpenseService) { s.logger = log.NewStructuredLogger(l) }
}

func NewExpenseService(ledger sheets.Ledger, layout sheets.Layout, clock core.Clock, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		ledger: ledger,
		layout: layout,
		clock:  clock,
		logger: log.NewStructuredLogger(log.Discard()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record stamps the submission with the current time, appends it to the
// sheet of the current month and then journals and publishes it.
func (s *ExpenseService) Record(ctx context.Context, sub Submission) (Recorded, error) {
	now := s.clock.Now()
	sheet := core.SheetName(now)

	submitter := sub.Submitter
	if submitter == "" {
		submitter = core.UnknownSubmitter
	}
	e := core.Expense{
		Timestamp: now,
		Category:  sub.Entry.Category,
		Note:      sub.Entry.Note,
		Submitter: submitter,
		Amount:    sub.Entry.Amount,
	}

	ref, err := s.ledger.Append(ctx, sheet, e)
	if err != nil {
		return Recorded{}, fmt.Errorf("append expense to %s: %w", sheet, err)
	}
	s.logger.LogExpenseRecorded(ctx, sheet, string(e.Category), e.Amount, e.Note, ref)

	// The sheet is the source of truth: side copies never fail the request.
	if s.journal != nil {
		if _, err := s.journal.RecordExpense(ctx, storage.Entry{Sheet: sheet, Expense: e, SheetRef: ref, ChatID: sub.ChatID}); err != nil {
			s.logger.LogError(ctx, "Failed to journal expense", err, log.ComponentStorage, log.OpJournal, log.ErrorTypeDatabase,
				log.NewFields().WithChat(sub.ChatID, submitter))
		}
	}
	if s.publisher != nil {
		msg := amqp.NewExpenseRecordedMessage(sheet, e, ref, sub.ChatID)
		if err := s.publisher.PublishExpenseRecorded(ctx, msg); err != nil {
			s.logger.LogError(ctx, "Failed to publish expense event", err, log.ComponentAMQP, log.OpPublish, log.ErrorTypeTransport,
				log.NewFields().WithChat(sub.ChatID, submitter))
		}
	}

	return Recorded{Sheet: sheet, Expense: e, Ref: ref}, nil
}

// Report reads the report ranges of the current month. It returns
// report.ErrEmpty when nothing was recorded yet.
func (s *ExpenseService) Report(ctx context.Context) (report.Snapshot, error) {
	start := time.Now()
	sheet := core.SheetName(s.clock.Now())

	values, err := s.ledger.ReadRanges(ctx, sheet, s.layout.ReportRanges())
	if err != nil {
		return report.Snapshot{}, fmt.Errorf("read report ranges of %s: %w", sheet, err)
	}
	snap, err := report.FromRanges(sheet, values)
	if err != nil {
		return snap, err
	}
	s.logger.LogReportServed(ctx, sheet, snap.Rows, time.Since(start).Milliseconds())
	return snap, nil
}
