package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/nu_plugin_beancount/internal/buildinfo"
	"github.com/cleared-dev/nu_plugin_beancount/internal/config"
	"github.com/cleared-dev/nu_plugin_beancount/internal/logger"
)

type rootOptions struct {
	configPath string
	logLevel   string
	stdio      bool
}

// load resolves the config file and builds the stderr logger. --log-level
// wins over the file.
func (o *rootOptions) load() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadOrDefault(o.configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	log, err := logger.New(level)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("configuring logger: %w", err)
	}
	return cfg, log, nil
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "nu_plugin_beancount",
		Short:   "Beancount ledger conversion plugin",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.stdio {
				return runServe(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level on stderr (overrides config)")
	rootCmd.Flags().BoolVar(&opts.stdio, "stdio", false, "serve the plugin protocol on stdin/stdout")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newConvertCommand(opts))
	rootCmd.AddCommand(newSignatureCommand(opts))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}
