package backend

import (
	"context"

	"gastos/internal/sheets"
	"gastos/internal/sheets/memory"
)

// Backend is the ledger the bot records expenses into and reports from.
type Backend interface {
	sheets.Ledger
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates a backend instance based on the provided config
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type   BackendType
	Layout sheets.Layout

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleClientEmail        string
	GooglePrivateKey         string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Memory backend specific
	MemoryBalance memory.Balance
}

// BackendType represents the type of backend
type BackendType string

const (
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
