package trace

import (
	"context"
	"sync/atomic"
	"time"

	"gastos/internal/bot"
	"gastos/internal/log"
)

// Middleware tags every update with a trace ID and logs its handling time.
type Middleware struct {
	logger *log.Logger

	totalUpdates  int64
	totalDuration int64 // in microseconds
}

// Metrics tracks handled updates.
type Metrics struct {
	TotalUpdates        int64
	AverageResponseTime time.Duration
}

// NewMiddleware creates a new trace middleware
func NewMiddleware(logger *log.Logger) *Middleware {
	if logger == nil {
		logger = log.Discard()
	}
	return &Middleware{
		logger: logger.WithComponent(log.ComponentBot),
	}
}

// Wrap returns next decorated with tracing. An update that already carries
// a trace ID keeps it.
func (m *Middleware) Wrap(next bot.Handler) bot.Handler {
	return bot.HandlerFunc(func(ctx context.Context, msg bot.Message) (bot.Reply, bool) {
		start := time.Now()

		if log.TraceID(ctx) == "" {
			ctx = log.WithTraceID(ctx, log.NewTraceID())
		}

		m.logger.DebugContext(ctx, "Update received",
			log.FieldUpdateID, msg.UpdateID,
			log.FieldChatID, msg.ChatID,
			"text_length", len(msg.Text))

		reply, ok := next.Handle(ctx, msg)

		duration := time.Since(start)
		m.record(duration)

		m.logger.InfoContext(ctx, "Update handled",
			log.FieldUpdateID, msg.UpdateID,
			log.FieldChatID, msg.ChatID,
			log.FieldDuration, duration.Milliseconds(),
			"replied", ok)
		return reply, ok
	})
}

func (m *Middleware) record(d time.Duration) {
	atomic.AddInt64(&m.totalDuration, d.Microseconds())
	atomic.AddInt64(&m.totalUpdates, 1)
}

// GetMetrics returns the update count and the mean handling time.
func (m *Middleware) GetMetrics() Metrics {
	total := atomic.LoadInt64(&m.totalUpdates)
	if total == 0 {
		return Metrics{}
	}
	return Metrics{
		TotalUpdates:        total,
		AverageResponseTime: time.Duration(atomic.LoadInt64(&m.totalDuration)/total) * time.Microsecond,
	}
}
