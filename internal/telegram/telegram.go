// Package telegram connects the router to the Telegram Bot API using long
// polling. Each update is handled in its own goroutine.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"gastos/internal/bot"
	"gastos/internal/log"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler is the message handler the bot feeds; usually a bot.Router
// wrapped in middleware.
type Handler = bot.Handler

type Config struct {
	Token         string
	PollTimeout   int
	MaxConcurrent int
	Debug         bool
}

type Bot struct {
	api           API
	handler       Handler
	pollTimeout   int
	maxConcurrent int
	logger        *log.Logger
	sl            *log.StructuredLogger
}

// New authenticates against the Bot API and returns a ready Bot.
func New(cfg Config, handler Handler, logger *log.Logger) (*Bot, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("missing telegram token")
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	api.Debug = cfg.Debug
	b := NewWithAPI(api, handler, cfg, logger)
	b.logger.Info("Authorized on Telegram", "bot_username", api.Self.UserName)
	return b, nil
}

// NewWithAPI builds a Bot on an existing API client.
func NewWithAPI(api API, handler Handler, cfg Config, logger *log.Logger) *Bot {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentTelegram)
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 60
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 16
	}
	return &Bot{
		api:           api,
		handler:       handler,
		pollTimeout:   cfg.PollTimeout,
		maxConcurrent: cfg.MaxConcurrent,
		logger:        logger,
		sl:            log.NewStructuredLogger(logger),
	}
}

// Run polls for updates until ctx is done, then waits for in-flight
// handlers. Handlers are not cancelled by ctx so replies still go out
// during shutdown. At most maxConcurrent updates are handled at once; an
// update still waiting for a slot when ctx ends is dropped.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout
	cfg.AllowedUpdates = []string{"message"}
	updates := b.api.GetUpdatesChan(cfg)

	var g errgroup.Group
	slots := make(chan struct{}, b.maxConcurrent)
	handlerCtx := context.WithoutCancel(ctx)

	b.logger.InfoContext(ctx, "Polling for updates", "timeout_s", b.pollTimeout, "max_concurrent", b.maxConcurrent)
	for {
		select {
		case <-ctx.Done():
			return b.shutdown(&g)
		case upd, ok := <-updates:
			if !ok {
				_ = g.Wait()
				return errors.New("updates channel closed")
			}
			msg, ok := toMessage(upd)
			if !ok {
				continue
			}
			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				b.logger.Warn("Shutting down with all handlers busy, update dropped",
					log.FieldUpdateID, msg.UpdateID, log.FieldChatID, msg.ChatID)
				return b.shutdown(&g)
			}
			g.Go(func() error {
				defer func() { <-slots }()
				b.process(handlerCtx, msg)
				return nil
			})
		}
	}
}

func (b *Bot) shutdown(g *errgroup.Group) error {
	b.api.StopReceivingUpdates()
	_ = g.Wait()
	b.logger.Info("Stopped polling", log.FieldOperation, log.OpShutdown)
	return nil
}

// process runs one update. The trace ID set here also tags the send
// failure log, which happens outside the handler.
func (b *Bot) process(ctx context.Context, msg bot.Message) {
	ctx = log.WithTraceID(ctx, log.NewTraceID())
	reply, ok := b.handler.Handle(ctx, msg)
	if !ok {
		return
	}
	if err := b.Send(ctx, reply); err != nil {
		b.sl.LogError(ctx, "Failed to send reply", err, log.ComponentTelegram, log.OpSend, log.ErrorTypeTransport,
			log.NewFields().WithChat(msg.ChatID, msg.Sender))
	}
}

// toMessage keeps plain text messages; edits, stickers and the like are skipped.
func toMessage(upd tgbotapi.Update) (bot.Message, bool) {
	m := upd.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return bot.Message{}, false
	}
	sender := ""
	if m.From != nil {
		sender = m.From.FirstName
	}
	return bot.Message{
		UpdateID: upd.UpdateID,
		ChatID:   m.Chat.ID,
		Sender:   sender,
		Text:     m.Text,
	}, true
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Send delivers r as HTML. If Telegram refuses the markup the text is sent
// again without formatting.
func (b *Bot) Send(ctx context.Context, r bot.Reply) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := tgbotapi.NewMessage(r.ChatID, r.Text)
	m.ParseMode = tgbotapi.ModeHTML
	m.DisableWebPagePreview = true

	_, err := b.api.Send(m)
	if err == nil {
		return nil
	}
	if !isMarkupError(err) {
		return fmt.Errorf("send message: %w", err)
	}

	b.logger.WarnContext(ctx, "Markup rejected, sending plain text", log.FieldChatID, r.ChatID, log.FieldError, err.Error())
	plain := tgbotapi.NewMessage(r.ChatID, html.UnescapeString(tagPattern.ReplaceAllString(r.Text, "")))
	plain.DisableWebPagePreview = true
	if _, err := b.api.Send(plain); err != nil {
		return fmt.Errorf("send plain message: %w", err)
	}
	return nil
}

func isMarkupError(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "can't parse entities")
}
