package backend

import (
	"fmt"
	"strings"

	"gastos/internal/config"
	"gastos/internal/sheets/memory"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s (valid: %s)",
			appConfig.DataBackend, strings.Join(GetBackendTypeStrings(), ", "))
	}

	return Config{
		Type:   backendType,
		Layout: appConfig.Layout(),

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleClientEmail:        appConfig.GoogleClientEmail,
		GooglePrivateKey:         appConfig.GooglePrivateKey,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,

		MemoryBalance: memory.Balance{
			Budget:     appConfig.MemoryBudget,
			FixedTotal: appConfig.MemoryFixedTotal,
		},
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s (valid: %s)", c.Type, strings.Join(GetBackendTypeStrings(), ", "))
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("invalid layout: %w", err)
	}

	switch c.Type {
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
		hasKeyPair := c.GoogleClientEmail != "" && c.GooglePrivateKey != ""
		if !hasKeyPair && c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("service account credentials are required for sheets backend")
		}

	case MemoryBackend:
		// Memory backend doesn't require additional validation
	}

	return nil
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := []BackendType{SheetsBackend, MemoryBackend}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return names
}
