package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/garyjia/claimdesk/internal/domain/workflow"
	"github.com/garyjia/claimdesk/pkg/utils"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// EnvPrefix prefixes every environment override, e.g. CLAIMDESK_SERVER_PORT
const EnvPrefix = "CLAIMDESK"

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Documents DocumentsConfig `mapstructure:"documents"`
	Claims    ClaimsConfig    `mapstructure:"claims"`
	Currency  CurrencyConfig  `mapstructure:"currency"`
	Export    ExportConfig    `mapstructure:"export"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// StoreConfig selects the claim store backend; both keep claims in memory only
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // memory or sqlite
}

// DocumentsConfig holds supporting-document limits
type DocumentsConfig struct {
	MaxSizeBytes      int64    `mapstructure:"max_size_bytes"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
	StartDir          string   `mapstructure:"start_dir"`
}

// ClaimsConfig holds claim workflow configuration
type ClaimsConfig struct {
	TransitionPolicy string `mapstructure:"transition_policy"` // permissive or strict
}

// CurrencyConfig holds display formatting for totals
type CurrencyConfig struct {
	Code   string `mapstructure:"code"`
	Locale string `mapstructure:"locale"`
}

// ExportConfig holds spreadsheet export configuration
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level             string `mapstructure:"level"`
	OutputPath        string `mapstructure:"output_path"`
	Format            string `mapstructure:"format"`
	ConsoleOutputPath string `mapstructure:"console_output_path"`
}

// Store backends
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Load loads configuration from an optional YAML file, a .env file in the
// working directory and the environment. Missing files leave the defaults in place.
func Load(configPath string) (*Config, error) {
	return load(configPath, ".env")
}

func load(configPath, envPath string) (*Config, error) {
	if envPath != "" {
		if err := gotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Override with environment variables
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	// Store defaults
	v.SetDefault("store.backend", BackendMemory)

	// Document defaults
	v.SetDefault("documents.max_size_bytes", 5*1024*1024)
	v.SetDefault("documents.allowed_extensions", []string{".pdf", ".docx", ".xlsx"})
	v.SetDefault("documents.start_dir", "")

	// Claim defaults
	v.SetDefault("claims.transition_policy", string(workflow.PolicyPermissive))

	// Currency defaults
	v.SetDefault("currency.code", "ZAR")
	v.SetDefault("currency.locale", "en-ZA")

	// Export defaults
	v.SetDefault("export.dir", "exports")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.console_output_path", "logs/claimdesk.log")
}

// bindEnvVars binds conventional unprefixed variables
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("logger.level", EnvPrefix+"_LOGGER_LEVEL", "LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Store.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("store.backend must be %q or %q, got %q", BackendMemory, BackendSQLite, c.Store.Backend)
	}

	if c.Documents.MaxSizeBytes <= 0 {
		return fmt.Errorf("documents.max_size_bytes must be positive")
	}
	if len(c.Documents.AllowedExtensions) == 0 {
		return fmt.Errorf("documents.allowed_extensions is required")
	}
	for _, ext := range c.Documents.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("documents.allowed_extensions: %q must look like \".pdf\"", ext)
		}
	}

	if _, err := workflow.ParsePolicy(c.Claims.TransitionPolicy); err != nil {
		return fmt.Errorf("claims.transition_policy: %w", err)
	}

	if _, err := utils.NewMoneyFormatter(c.Currency.Code, c.Currency.Locale); err != nil {
		return fmt.Errorf("currency: %w", err)
	}

	if c.Export.Dir == "" {
		return fmt.Errorf("export.dir is required")
	}

	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}

	return nil
}

// ConsoleLogger returns the logger settings for the terminal desk, which
// cannot share the terminal with log output
func (c *Config) ConsoleLogger() LoggerConfig {
	out := c.Logger
	switch out.OutputPath {
	case "", "stdout", "stderr":
		out.OutputPath = c.Logger.ConsoleOutputPath
	}
	return out
}
