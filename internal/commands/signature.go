package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/nu_plugin_beancount/internal/plugin"
)

func newSignatureCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "signature",
		Short: "Print the command signatures offered to the host",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			p := plugin.NewFromBeancount(cfg.Plugin.Command, cfg.Plugin.Usage)
			data, err := json.MarshalIndent(p.Signature(), "", "  ")
			if err != nil {
				return fmt.Errorf("encoding signature: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
