package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garunski/extension-conductor/pkg/framework/extensions"
	"github.com/garunski/extension-conductor/pkg/framework/server"
)

// newExportCmd prints the stored entries in the seed file format. The server
// must not be running against the same data path.
func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print stored extensions as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger, err := a.newLogger()
			if err != nil {
				return err
			}

			serverCfg := cfg.ServerConfig()
			serverCfg.SeedPath = ""
			storage, err := server.NewStorageComponents(serverCfg, logger)
			if err != nil {
				return err
			}
			defer storage.DB.Close()

			data, err := extensions.MarshalEntriesYAML(storage.Store.State())
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
}
