package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/nu_plugin_beancount/internal/buildinfo"
	"github.com/cleared-dev/nu_plugin_beancount/internal/logger"
	"github.com/cleared-dev/nu_plugin_beancount/internal/plugin"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the plugin protocol on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions, in io.Reader, out io.Writer) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	ctx = logger.WithContext(ctx, log)
	log.Info().Str("version", buildinfo.Version).Str("command", cfg.Plugin.Command).Msg("serving plugin")

	p := plugin.NewFromBeancount(cfg.Plugin.Command, cfg.Plugin.Usage)
	if err := plugin.NewServer(p, in, out).Serve(ctx); err != nil {
		return fmt.Errorf("serving plugin: %w", err)
	}
	return nil
}
