// Package ratelimit throttles chats that send more messages per minute
// than the bot is willing to forward to the spreadsheet.
package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"gastos/internal/bot"
	"gastos/internal/log"
)

// ThrottledText is sent once per window to a chat that went over the limit.
const ThrottledText = "⏳ Demasiados mensajes. Esperá un minuto y volvé a intentar."

// Limiter provides per-chat rate limiting over fixed one-minute windows.
type Limiter struct {
	mu           sync.Mutex
	chats        map[int64]*chatInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
	now          func() time.Time
	hits         int64

	// Configuration
	requestsPerMinute int
	cleanupInterval   time.Duration
}

type chatInfo struct {
	windowStart time.Time
	requests    int
}

// Config holds rate limiter configuration
type Config struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 30,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter creates a new rate limiter and starts its cleanup loop.
func NewLimiter(config Config) *Limiter {
	rl := newLimiter(config, time.Now)
	go rl.startCleanup()
	return rl
}

func newLimiter(config Config, now func() time.Time) *Limiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = DefaultConfig().RequestsPerMinute
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}
	return &Limiter{
		chats:             make(map[int64]*chatInfo),
		stopCleanup:       make(chan struct{}),
		now:               now,
		requestsPerMinute: config.RequestsPerMinute,
		cleanupInterval:   config.CleanupInterval,
	}
}

// Allow reports whether a message from chatID fits in the current window.
// first is true only for the first rejected message of a window.
func (rl *Limiter) Allow(chatID int64) (allowed, first bool) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	chat, exists := rl.chats[chatID]
	if !exists || now.Sub(chat.windowStart) >= time.Minute {
		rl.chats[chatID] = &chatInfo{windowStart: now, requests: 1}
		return true, false
	}

	chat.requests++
	if chat.requests <= rl.requestsPerMinute {
		return true, false
	}
	atomic.AddInt64(&rl.hits, 1)
	return false, chat.requests == rl.requestsPerMinute+1
}

// startCleanup runs periodic cleanup to remove stale chat entries
func (rl *Limiter) startCleanup() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

// cleanupStaleEntries removes chats whose window ended over 10 minutes ago.
func (rl *Limiter) cleanupStaleEntries() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-10 * time.Minute)
	removed := 0
	for id, chat := range rl.chats {
		if chat.windowStart.Before(cutoff) {
			delete(rl.chats, id)
			removed++
		}
	}
	return removed
}

// ActiveChats returns the number of currently tracked chats
func (rl *Limiter) ActiveChats() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.chats)
}

// Hits returns how many messages were rejected so far.
func (rl *Limiter) Hits() int64 {
	return atomic.LoadInt64(&rl.hits)
}

// Stop gracefully shuts down the rate limiter cleanup goroutine
func (rl *Limiter) Stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// Middleware drops messages from chats over the limit. The first dropped
// message of a window is answered with ThrottledText, the rest silently.
func (rl *Limiter) Middleware(logger *log.Logger) bot.Middleware {
	if logger == nil {
		logger = log.Discard()
	}
	return func(next bot.Handler) bot.Handler {
		return bot.HandlerFunc(func(ctx context.Context, msg bot.Message) (bot.Reply, bool) {
			allowed, first := rl.Allow(msg.ChatID)
			if allowed {
				return next.Handle(ctx, msg)
			}
			logger.WarnContext(ctx, "Chat rate limited",
				log.FieldChatID, msg.ChatID,
				log.FieldUpdateID, msg.UpdateID,
				log.FieldLimited, true)
			if !first {
				return bot.Reply{}, false
			}
			return bot.Reply{ChatID: msg.ChatID, Text: ThrottledText}, true
		})
	}
}
