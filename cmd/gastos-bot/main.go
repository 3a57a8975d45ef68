package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gastos/internal/amqp"
	"gastos/internal/backend"
	"gastos/internal/bot"
	"gastos/internal/config"
	"gastos/internal/core"
	"gastos/internal/log"
	"gastos/internal/middleware/ratelimit"
	"gastos/internal/middleware/trace"
	"gastos/internal/services"
	"gastos/internal/storage"
	"gastos/internal/telegram"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	level, err := log.ParseLevel(cfg.LogLevel)
	logger := log.New(log.Config{Level: level, Component: log.ComponentApp})
	log.SetDefault(logger)
	if err != nil {
		logger.Warn("Unknown log level, using info", "log_level", cfg.LogLevel)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Failed to load timezone", "error", err, "timezone", cfg.Timezone)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", "error", err)
			}
		}()
	}

	opts := []services.Option{services.WithLogger(logger)}

	if cfg.JournalDBPath != "" {
		journal, err := storage.NewSQLiteRepository(cfg.JournalDBPath)
		if err != nil {
			logger.Error("Failed to initialize expense journal", "error", err, "path", cfg.JournalDBPath)
			os.Exit(1)
		}
		defer journal.Close()
		opts = append(opts, services.WithJournal(journal))
		logger.Info("Expense journal enabled", "path", cfg.JournalDBPath)
	}

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			defer amqpClient.Close()
			opts = append(opts, services.WithPublisher(amqpClient))
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
		}
	}

	svc := services.NewExpenseService(result.Backend, cfg.Layout(), core.SystemClock(loc), opts...)
	router := bot.NewRouter(svc, logger)

	tracer := trace.NewMiddleware(logger)
	mws := []bot.Middleware{tracer.Wrap}
	var limiter *ratelimit.Limiter
	if cfg.RateLimitPerMinute > 0 {
		limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute})
		defer limiter.Stop()
		mws = append(mws, limiter.Middleware(logger))
	}
	handler := bot.Chain(router, mws...)

	tg, err := telegram.New(telegram.Config{
		Token:         cfg.TelegramToken,
		PollTimeout:   cfg.TelegramPollTimeout,
		MaxConcurrent: cfg.MaxConcurrentUpdates,
		Debug:         cfg.TelegramDebug,
	}, handler, logger)
	if err != nil {
		logger.Error("Failed to start Telegram bot", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting gastos bot",
		"backend", cfg.DataBackend,
		"timezone", loc.String(),
		"max_concurrent_updates", cfg.MaxConcurrentUpdates)

	runErr := tg.Run(ctx)

	m := tracer.GetMetrics()
	stats := []any{
		"updates_handled", m.TotalUpdates,
		"avg_handling_ms", m.AverageResponseTime.Milliseconds(),
	}
	if limiter != nil {
		stats = append(stats, "rate_limited", limiter.Hits(), "tracked_chats", limiter.ActiveChats())
	}
	logger.Info("Update statistics", stats...)

	if runErr != nil {
		logger.Error("Bot stopped with error", "error", runErr)
		os.Exit(1)
	}

	logger.Info("Bot stopped gracefully")
}
