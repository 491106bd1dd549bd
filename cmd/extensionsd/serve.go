package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garunski/extension-conductor/pkg/framework"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd)
		},
	}
}

func (a *app) serve(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := a.newLogger()
	if err != nil {
		return err
	}

	return framework.RunWithLogger(cmd.Context(), cfg, logger)
}
