package framework

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"

	"github.com/garunski/extension-conductor/pkg/framework/server"
	"github.com/garunski/extension-conductor/pkg/framework/validation"
)

// Config holds all framework configuration
type Config struct {
	// Application metadata
	AppName    string
	AppVersion string

	// Storage configuration
	DataPath string
	SeedPath string // optional YAML file of entries added on startup

	// Server configuration
	Port string

	// Request-add validation
	ValidateTimeout time.Duration
	AutoAdd         bool

	// Logging configuration
	LogRetentionDays   int
	LogCleanupInterval time.Duration
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		AppName:            "extensions",
		AppVersion:         getEnvOrDefault("VERSION", "dev"),
		DataPath:           getEnvOrDefault("BADGER_DATA_PATH", "/data/badger"),
		SeedPath:           os.Getenv("SEED_PATH"),
		Port:               getEnvOrDefault("PORT", "8081"),
		ValidateTimeout:    parseDurationOrDefault("VALIDATE_TIMEOUT", validation.DefaultTimeout),
		AutoAdd:            parseBoolOrDefault("AUTO_ADD", false),
		LogRetentionDays:   parseIntOrDefault("LOG_RETENTION_DAYS", 7),
		LogCleanupInterval: parseDurationOrDefault("LOG_CLEANUP_INTERVAL", 1*time.Hour),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.AppName == "" {
		return fmt.Errorf("AppName cannot be empty")
	}
	if c.DataPath == "" {
		return fmt.Errorf("DataPath cannot be empty")
	}
	if c.Port == "" {
		return fmt.Errorf("Port cannot be empty")
	}
	if c.ValidateTimeout <= 0 {
		return fmt.Errorf("ValidateTimeout must be positive")
	}
	if c.LogRetentionDays < 0 {
		return fmt.Errorf("LogRetentionDays cannot be negative")
	}
	if c.LogCleanupInterval <= 0 {
		return fmt.Errorf("LogCleanupInterval must be positive")
	}
	return nil
}

// ServerConfig converts c into the server package's configuration.
func (c *Config) ServerConfig() *server.Config {
	return &server.Config{
		AppName:            c.AppName,
		AppVersion:         c.AppVersion,
		DataPath:           c.DataPath,
		Port:               c.Port,
		SeedPath:           c.SeedPath,
		ValidateTimeout:    c.ValidateTimeout,
		AutoAdd:            c.AutoAdd,
		LogRetentionDays:   c.LogRetentionDays,
		LogCleanupInterval: c.LogCleanupInterval,
	}
}

// NewLogger returns the zap-backed development logger used by Run.
func NewLogger() (logr.Logger, error) {
	zapLog, err := zap.NewDevelopment()
	if err != nil {
		return logr.Discard(), fmt.Errorf("failed to create logger: %w", err)
	}
	return zapr.NewLogger(zapLog), nil
}

// Run starts the framework with the given configuration
// It handles the complete lifecycle: initialization, startup, and shutdown
func Run(ctx context.Context, cfg Config) error {
	logger, err := NewLogger()
	if err != nil {
		return err
	}
	return RunWithLogger(ctx, cfg, logger)
}

func RunWithLogger(ctx context.Context, cfg Config, logger logr.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("Starting framework", "appName", cfg.AppName, "version", cfg.AppVersion)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv, err := server.NewServer(cfg.ServerConfig(), logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error(err, "failed to close server")
		}
	}()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	if err := srv.WaitForShutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	return nil
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// parseIntOrDefault accepts a plain integer or a day count such as "7d".
func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n := len(value); n > 1 && value[n-1] == 'd' {
			value = value[:n-1]
		}
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
