package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gastos/internal/log"
	"gastos/internal/sheets"
)

const DefaultTimezone = "America/Argentina/Buenos_Aires"

type Config struct {
	// Telegram
	TelegramToken        string
	TelegramPollTimeout  int
	TelegramDebug        bool
	MaxConcurrentUpdates int
	RateLimitPerMinute   int

	// Backend selection
	DataBackend string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleClientEmail        string
	GooglePrivateKey         string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	SheetAppendRange         string
	SheetCategoryTotalsRange string
	SheetFixedTotalRange     string
	SheetVariableTotalRange  string
	SheetAvailableRange      string

	// Memory backend
	MemoryBudget     float64
	MemoryFixedTotal float64

	// Journal
	JournalDBPath string

	// AMQP
	AMQPURL        string
	AMQPExchange   string
	AMQPRoutingKey string

	Timezone string
	LogLevel string
}

func Load() *Config {
	def := sheets.DefaultLayout()
	cfg := &Config{
		TelegramToken:        getEnv("TELEGRAM_TOKEN", ""),
		TelegramPollTimeout:  getEnvInt("TELEGRAM_POLL_TIMEOUT", 60),
		TelegramDebug:        getEnvBool("TELEGRAM_DEBUG", false),
		MaxConcurrentUpdates: getEnvInt("MAX_CONCURRENT_UPDATES", 16),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 30),

		DataBackend: getEnv("DATA_BACKEND", "sheets"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleClientEmail:        getEnv("GOOGLE_CLIENT_EMAIL", ""),
		GooglePrivateKey:         expandNewlines(getEnv("GOOGLE_PRIVATE_KEY", "")),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),
		SheetAppendRange:         getEnv("SHEET_APPEND_RANGE", def.ExpensesRange),
		SheetCategoryTotalsRange: getEnv("SHEET_CATEGORY_TOTALS_RANGE", def.CategoryTotalsRange),
		SheetFixedTotalRange:     getEnv("SHEET_FIXED_TOTAL_RANGE", def.FixedTotalRange),
		SheetVariableTotalRange:  getEnv("SHEET_VARIABLE_TOTAL_RANGE", def.VariableTotalRange),
		SheetAvailableRange:      getEnv("SHEET_AVAILABLE_RANGE", def.AvailableRange),

		MemoryBudget:     getEnvFloat("MEMORY_BUDGET", 0),
		MemoryFixedTotal: getEnvFloat("MEMORY_FIXED_TOTAL", 0),

		JournalDBPath: getEnv("JOURNAL_DB_PATH", ""),

		AMQPURL:        getEnv("AMQP_URL", ""),
		AMQPExchange:   getEnv("AMQP_EXCHANGE", "gastos"),
		AMQPRoutingKey: getEnv("AMQP_ROUTING_KEY", "expense.recorded"),

		Timezone: getEnv("TIMEZONE", DefaultTimezone),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Layout returns the sheet ranges the bot writes to and reports from.
func (c *Config) Layout() sheets.Layout {
	return sheets.Layout{
		ExpensesRange:       c.SheetAppendRange,
		CategoryTotalsRange: c.SheetCategoryTotalsRange,
		FixedTotalRange:     c.SheetFixedTotalRange,
		VariableTotalRange:  c.SheetVariableTotalRange,
		AvailableRange:      c.SheetAvailableRange,
	}
}

// Location resolves Timezone. An empty value means the default zone.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone '%s': %w", tz, err)
	}
	return loc, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.TelegramToken) == "" {
		errors = append(errors, "TELEGRAM_TOKEN is required")
	}
	if c.TelegramPollTimeout < 1 || c.TelegramPollTimeout > 600 {
		errors = append(errors, fmt.Sprintf("invalid poll timeout %d: must be between 1 and 600 seconds", c.TelegramPollTimeout))
	}
	if c.MaxConcurrentUpdates < 1 || c.MaxConcurrentUpdates > 1024 {
		errors = append(errors, fmt.Sprintf("invalid max concurrent updates %d: must be between 1 and 1024", c.MaxConcurrentUpdates))
	}

	if c.RateLimitPerMinute < 0 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be 0 (disabled) or positive", c.RateLimitPerMinute))
	}

	validBackends := []string{"sheets", "memory"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sheets" {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "Google Spreadsheet ID is required when using sheets backend")
		}

		hasKeyPair := c.GoogleClientEmail != "" && c.GooglePrivateKey != ""
		hasJSON := c.GoogleServiceAccountJSON != ""
		hasFile := c.GoogleServiceAccountFile != ""
		if !hasKeyPair && !hasJSON && !hasFile {
			errors = append(errors, "either GOOGLE_CLIENT_EMAIL and GOOGLE_PRIVATE_KEY, GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend")
		}
		if (c.GoogleClientEmail == "") != (c.GooglePrivateKey == "") {
			errors = append(errors, "GOOGLE_CLIENT_EMAIL and GOOGLE_PRIVATE_KEY must be set together")
		}
		if hasFile {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if err := c.Layout().Validate(); err != nil {
		errors = append(errors, fmt.Sprintf("invalid sheet layout: %v", err))
	}

	if _, err := c.Location(); err != nil {
		errors = append(errors, err.Error())
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPRoutingKey == "" {
			errors = append(errors, "AMQP routing key cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// expandNewlines turns literal \n sequences into newlines so a PEM key fits
// on a single env line.
func expandNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
