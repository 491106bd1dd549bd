package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/garunski/extension-conductor/pkg/framework"
	"github.com/garunski/extension-conductor/pkg/framework/config"
	"github.com/garunski/extension-conductor/pkg/framework/validation"
)

const envPrefix = "EXTENSIONS"

type app struct {
	v            *viper.Viper
	out          io.Writer
	newLogger    func() (logr.Logger, error)
	newValidator func(timeout time.Duration, logger logr.Logger) (*validation.Validator, error)
}

func newApp() *app {
	return &app{
		v:         viper.New(),
		out:       os.Stdout,
		newLogger: framework.NewLogger,
		newValidator: func(timeout time.Duration, logger logr.Logger) (*validation.Validator, error) {
			return validation.NewValidator(nil, logger, validation.WithConfig(validation.Config{Timeout: timeout}))
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	defaults := framework.DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "extensionsd",
		Short: "Track browser extensions and validate store URLs",
		Long:  "Serve the extension tracker API, or validate a single store URL from the command line",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("app-name", defaults.AppName, "application name")
	flags.String("data-path", defaults.DataPath, "BadgerDB data directory")
	flags.String("seed-path", defaults.SeedPath, "YAML file of entries to add on startup")
	flags.String("port", defaults.Port, "HTTP listen port")
	flags.Duration("validate-timeout", defaults.ValidateTimeout, "reachability timeout for store URLs")
	flags.Bool("auto-add", defaults.AutoAdd, "add an entry when a store URL validates")
	flags.Int("log-retention-days", defaults.LogRetentionDays, "days to keep events")
	flags.Duration("log-cleanup-interval", defaults.LogCleanupInterval, "interval between event cleanups")
	cobra.CheckErr(a.v.BindPFlags(flags))

	a.v.SetDefault("version", defaults.AppVersion)

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newValidateCmd(a))
	rootCmd.AddCommand(newExportCmd(a))

	return rootCmd
}

// initConfig layers the optional config file and EXTENSIONS_* environment
// variables over the flag values.
func (a *app) initConfig() error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return nil
}

func (a *app) loadConfig() (framework.Config, error) {
	return config.NewBuilder().
		WithAppName(a.v.GetString("app-name")).
		WithAppVersion(a.v.GetString("version")).
		WithDataPath(a.v.GetString("data-path")).
		WithSeedPath(a.v.GetString("seed-path")).
		WithPort(a.v.GetString("port")).
		WithValidateTimeout(a.v.GetDuration("validate-timeout")).
		WithAutoAdd(a.v.GetBool("auto-add")).
		WithLogRetentionDays(a.v.GetInt("log-retention-days")).
		WithLogCleanupInterval(a.v.GetDuration("log-cleanup-interval")).
		Build()
}
