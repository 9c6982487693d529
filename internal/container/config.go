// Package container provides dependency injection and lifecycle management
// for the claim desk following Clean Architecture principles.
package container

import (
	"fmt"
	"time"

	"github.com/garyjia/claimdesk/internal/domain/entity"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Store configuration
	Store StoreConfig

	// Documents configuration
	Documents DocumentsConfig

	// Claims configuration
	Claims ClaimsConfig

	// Currency configuration
	Currency CurrencyConfig

	// Export configuration
	Export ExportConfig

	// Server configuration
	Server ServerConfig
}

// StoreConfig selects the claim store.
type StoreConfig struct {
	// Backend is "memory" or "sqlite"; sqlite keeps a private in-memory database
	Backend string
}

// DocumentsConfig holds supporting-document settings.
type DocumentsConfig struct {
	// MaxSize is the largest accepted file length in bytes
	MaxSize int64

	// AllowedExtensions lists accepted extensions including the dot
	AllowedExtensions []string

	// StartDir is where the terminal file picker opens
	StartDir string
}

// ClaimsConfig holds claim workflow settings.
type ClaimsConfig struct {
	Policy workflow.Policy
}

// CurrencyConfig holds money display settings.
type CurrencyConfig struct {
	// Code is an ISO 4217 currency code
	Code string

	// Locale is a BCP 47 tag used for number formatting
	Locale string
}

// ExportConfig holds spreadsheet export settings.
type ExportConfig struct {
	// Dir receives exported workbooks
	Dir string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host to bind to
	Host string

	// Port to listen on
	Port int

	// ReadTimeout for HTTP server
	ReadTimeout time.Duration

	// WriteTimeout for HTTP server
	WriteTimeout time.Duration
}

// Store backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendMemory,
		},
		Documents: DocumentsConfig{
			MaxSize:           entity.MaxDocumentSize,
			AllowedExtensions: entity.DefaultDocumentExtensions(),
		},
		Claims: ClaimsConfig{
			Policy: workflow.PolicyPermissive,
		},
		Currency: CurrencyConfig{
			Code:   "ZAR",
			Locale: "en-ZA",
		},
		Export: ExportConfig{
			Dir: "exports",
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("store.backend %q is not supported", c.Store.Backend)
	}

	if c.Documents.MaxSize <= 0 {
		return fmt.Errorf("documents.max_size must be positive")
	}

	if _, err := workflow.ParsePolicy(string(c.Claims.Policy)); err != nil {
		return fmt.Errorf("claims.policy: %w", err)
	}

	if c.Currency.Code == "" {
		return fmt.Errorf("currency.code is required")
	}

	if c.Export.Dir == "" {
		return fmt.Errorf("export.dir is required")
	}

	return nil
}
