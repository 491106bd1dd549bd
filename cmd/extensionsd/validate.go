package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/garunski/extension-conductor/pkg/framework/extensions"
	"github.com/garunski/extension-conductor/pkg/framework/webstore"
)

type validateOutput struct {
	Input    string `json:"input"`
	Kind     string `json:"kind,omitempty"`
	StoreURL string `json:"storeUrl,omitempty"`
	CRXURL   string `json:"crxUrl,omitempty"`
	Result   any    `json:"result"`
}

func newValidateCmd(a *app) *cobra.Command {
	var prodVersion string

	cmd := &cobra.Command{
		Use:   "validate <store-url>",
		Short: "Check that a store URL is recognized and reachable",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := a.newLogger()
			if err != nil {
				return err
			}

			v, err := a.newValidator(a.v.GetDuration("validate-timeout"), logger)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			result, err := v.RequestAdd(ctx, args[0]).Wait(ctx)
			if err != nil {
				return err
			}

			out := validateOutput{Input: args[0], Result: result}
			if m, ok := webstore.Normalize(args[0]); ok {
				out.Kind = string(m.Kind)
				out.StoreURL = m.StoreURL
				if m.Kind == extensions.KindChrome {
					out.CRXURL, _ = webstore.CRXURL(m.ID, prodVersion)
				}
			}

			enc := json.NewEncoder(a.out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("write result: %w", err)
			}

			return result.Err()
		},
	}

	cmd.Flags().StringVar(&prodVersion, "prod-version", webstore.DefaultProdVersion, "browser version reported to the Chrome update service")
	return cmd
}
