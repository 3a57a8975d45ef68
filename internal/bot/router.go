// Package bot routes chat messages to the expense service and turns every
// outcome, failures included, into a reply.
package bot

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"gastos/internal/log"
	"gastos/internal/parser"
	"gastos/internal/report"
	"gastos/internal/services"
)

// CommandReport is the only command the bot answers.
const CommandReport = "reporte"

// Outcome classifies how a message was handled.
type Outcome string

const (
	OutcomeRecorded        Outcome = "recorded"
	OutcomeReported        Outcome = "reported"
	OutcomeMalformedInput  Outcome = "malformed_input"
	OutcomeInvalidCategory Outcome = "invalid_category"
	OutcomeEmptyReport     Outcome = "empty_report"
	OutcomeRemoteFailure   Outcome = "remote_store_failure"
	OutcomeInternalError   Outcome = "internal_error"
	OutcomeIgnored         Outcome = "ignored"
)

// Message is an inbound chat message.
type Message struct {
	UpdateID int
	ChatID   int64
	Sender   string
	Text     string
}

// Reply is an outbound HTML message.
type Reply struct {
	ChatID int64
	Text   string
}

// Service is what the router needs from the expense service.
type Service interface {
	Record(ctx context.Context, sub services.Submission) (services.Recorded, error)
	Report(ctx context.Context) (report.Snapshot, error)
}

type Router struct {
	svc    Service
	logger *log.Logger
	sl     *log.StructuredLogger
}

func NewRouter(svc Service, logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentBot)
	return &Router{svc: svc, logger: logger, sl: log.NewStructuredLogger(logger)}
}

// Handle processes msg and returns the reply to send, if any. It never
// panics: a failing handler is logged and answered with a generic error.
func (r *Router) Handle(ctx context.Context, msg Message) (reply Reply, ok bool) {
	logger := r.logger.With(log.FieldUpdateID, msg.UpdateID, log.FieldChatID, msg.ChatID)

	defer func() {
		if p := recover(); p != nil {
			r.sl.LogError(ctx, "Handler panicked", fmt.Errorf("panic: %v", p), log.ComponentBot, log.OpParse, log.ErrorTypeInternal,
				log.NewFields().WithChat(msg.ChatID, msg.Sender))
			logger.DebugContext(ctx, "Panic stack", "stack", string(debug.Stack()))
			reply, ok = r.reply(msg, msgInternalError), true
		}
	}()

	text, outcome, send := r.dispatch(ctx, msg)
	logger.DebugContext(ctx, "Message handled", log.FieldOutcome, string(outcome))
	if !send {
		return Reply{}, false
	}
	return r.reply(msg, text), true
}

func (r *Router) reply(msg Message, text string) Reply {
	return Reply{ChatID: msg.ChatID, Text: text}
}

func (r *Router) dispatch(ctx context.Context, msg Message) (string, Outcome, bool) {
	text := strings.TrimSpace(msg.Text)
	switch {
	case text == "":
		return "", OutcomeIgnored, false
	case parser.IsCommand(text):
		return r.handleCommand(ctx, msg, text)
	default:
		return r.handleExpense(ctx, msg, text)
	}
}

func (r *Router) handleCommand(ctx context.Context, msg Message, text string) (string, Outcome, bool) {
	name, _ := parser.Command(text)
	switch name {
	case CommandReport:
		return r.handleReport(ctx, msg)
	default:
		// Unknown commands get no answer.
		return "", OutcomeIgnored, false
	}
}

func (r *Router) handleExpense(ctx context.Context, msg Message, text string) (string, Outcome, bool) {
	entry, err := parser.Parse(text)
	if err != nil {
		var (
			catErr *parser.InvalidCategoryError
			amtErr *parser.InvalidAmountError
		)
		switch {
		case errors.As(err, &catErr):
			return invalidCategoryText(catErr.Input, catErr.Valid), OutcomeInvalidCategory, true
		case errors.As(err, &amtErr):
			return invalidAmountText(amtErr.Input), OutcomeMalformedInput, true
		default:
			return msgBadFormat, OutcomeMalformedInput, true
		}
	}

	rec, err := r.svc.Record(ctx, services.Submission{Entry: entry, Submitter: msg.Sender, ChatID: msg.ChatID})
	if err != nil {
		r.sl.LogError(ctx, "Failed to record expense", err, log.ComponentSheets, log.OpAppend, log.ErrorTypeRemoteStore,
			log.NewFields().WithChat(msg.ChatID, msg.Sender))
		return msgSaveFailed, OutcomeRemoteFailure, true
	}
	return savedText(rec.Expense), OutcomeRecorded, true
}

func (r *Router) handleReport(ctx context.Context, msg Message) (string, Outcome, bool) {
	snap, err := r.svc.Report(ctx)
	switch {
	case errors.Is(err, report.ErrEmpty):
		return msgEmptyReport, OutcomeEmptyReport, true
	case err != nil:
		r.sl.LogError(ctx, "Failed to build report", err, log.ComponentSheets, log.OpRead, log.ErrorTypeRemoteStore,
			log.NewFields().WithChat(msg.ChatID, msg.Sender))
		return msgReportFailed, OutcomeRemoteFailure, true
	}
	return report.Build(snap), OutcomeReported, true
}
