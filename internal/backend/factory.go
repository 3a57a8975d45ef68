package backend

import (
	"context"
	"fmt"
	"os"

	"gastos/internal/log"
	gsheet "gastos/internal/sheets/google"
	"gastos/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	creds, err := credentials(config)
	if err != nil {
		return nil, err
	}

	cli, err := gsheet.New(ctx, config.GoogleSpreadsheetID, creds, config.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend",
		"append_range", config.Layout.ExpensesRange,
		"key_pair", creds.JSON == nil)

	return &BackendResult{
		Backend: cli,
		Cleanup: nil, // No cleanup needed for sheets backend
	}, nil
}

// credentials prefers the key pair, then inline JSON, then the JSON file.
func credentials(config Config) (gsheet.Credentials, error) {
	switch {
	case config.GoogleClientEmail != "" && config.GooglePrivateKey != "":
		return gsheet.Credentials{
			ClientEmail: config.GoogleClientEmail,
			PrivateKey:  config.GooglePrivateKey,
		}, nil
	case config.GoogleServiceAccountJSON != "":
		return gsheet.Credentials{JSON: []byte(config.GoogleServiceAccountJSON)}, nil
	case config.GoogleServiceAccountFile != "":
		b, err := os.ReadFile(config.GoogleServiceAccountFile)
		if err != nil {
			return gsheet.Credentials{}, fmt.Errorf("read service account file: %w", err)
		}
		return gsheet.Credentials{JSON: b}, nil
	default:
		return gsheet.Credentials{}, fmt.Errorf("no service account credentials configured")
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store := memory.New(config.Layout, config.MemoryBalance)

	f.logger.Info("Initialized memory backend",
		"budget", config.MemoryBalance.Budget,
		"fixed_total", config.MemoryBalance.FixedTotal)

	return &BackendResult{
		Backend: store,
		Cleanup: nil, // No cleanup needed for memory backend
	}, nil
}
