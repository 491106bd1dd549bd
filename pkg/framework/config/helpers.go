package config

import (
	"fmt"
	"time"

	"github.com/garunski/extension-conductor/pkg/framework"
)

// Builder provides a fluent interface for building framework configuration.
type Builder struct {
	config framework.Config
}

// NewBuilder creates a new configuration builder with default values.
func NewBuilder() *Builder {
	return &Builder{
		config: framework.DefaultConfig(),
	}
}

// WithAppName sets the application name.
func (b *Builder) WithAppName(name string) *Builder {
	b.config.AppName = name
	return b
}

// WithAppVersion sets the application version.
func (b *Builder) WithAppVersion(version string) *Builder {
	b.config.AppVersion = version
	return b
}

// WithDataPath sets the data storage path.
func (b *Builder) WithDataPath(path string) *Builder {
	b.config.DataPath = path
	return b
}

// WithSeedPath sets the YAML file whose entries are added on startup.
func (b *Builder) WithSeedPath(path string) *Builder {
	b.config.SeedPath = path
	return b
}

// WithPort sets the HTTP server port.
func (b *Builder) WithPort(port string) *Builder {
	b.config.Port = port
	return b
}

// WithValidateTimeout sets how long a reachability check may take before
// the request-add resolves as timed out.
func (b *Builder) WithValidateTimeout(timeout time.Duration) *Builder {
	b.config.ValidateTimeout = timeout
	return b
}

func (b *Builder) WithAutoAdd(enabled bool) *Builder {
	b.config.AutoAdd = enabled
	return b
}

// WithLogRetentionDays sets the log retention period in days.
func (b *Builder) WithLogRetentionDays(days int) *Builder {
	b.config.LogRetentionDays = days
	return b
}

// WithLogCleanupInterval sets the log cleanup interval.
func (b *Builder) WithLogCleanupInterval(interval time.Duration) *Builder {
	b.config.LogCleanupInterval = interval
	return b
}

// Build returns the configured Config and validates it.
// Returns an error if validation fails.
func (b *Builder) Build() (framework.Config, error) {
	if err := b.config.Validate(); err != nil {
		return framework.Config{}, err
	}
	return b.config, nil
}

// MustBuild returns the configured Config and panics if validation fails.
func (b *Builder) MustBuild() framework.Config {
	cfg, err := b.Build()
	if err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}
	return cfg
}
