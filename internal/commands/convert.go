package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/nu_plugin_beancount/internal/output"
	"github.com/cleared-dev/nu_plugin_beancount/internal/projector"
	"github.com/cleared-dev/nu_plugin_beancount/internal/value"
)

func newConvertCommand(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "convert [file|-]",
		Short: "Convert a beancount ledger to JSON or YAML records",
		Long: "Convert reads a beancount ledger from a file, or from stdin when the\n" +
			"file is omitted or \"-\", and prints one record per transaction,\n" +
			"balance and include directive.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "-"
			if len(args) > 0 {
				path = args[0]
			}
			return runConvert(cmd.Context(), opts, path, format, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "output format: json or yaml (default from config)")

	return cmd
}

func runConvert(ctx context.Context, opts *rootOptions, path, format string, stdin io.Reader, out io.Writer) error {
	cfg, log, err := opts.load()
	if err != nil {
		return err
	}
	if format == "" {
		format = cfg.Output.Format
	}

	registry := output.DefaultRegistry(cfg.Output.Indent)
	enc := registry.Get(format)
	if enc == nil {
		return fmt.Errorf("unknown format %q (available: %s)", format, strings.Join(registry.Formats(), ", "))
	}

	input, source, err := readInput(ctx, path, stdin)
	if err != nil {
		return err
	}

	records, err := projector.FromBeancount(input, value.Span{Start: 0, End: len(input)})
	if err != nil {
		return fmt.Errorf("converting %s: %w", source, err)
	}
	log.Debug().Str("source", source).Int("records", len(records)).Msg("converted ledger")

	if err := enc.Encode(out, records); err != nil {
		return fmt.Errorf("writing %s output: %w", enc.Format(), err)
	}
	return nil
}

func readInput(ctx context.Context, path string, stdin io.Reader) (string, string, error) {
	if path == "-" {
		data, err := readAll(ctx, stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), "stdin", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("reading input: %w", err)
	}
	return string(data), path, nil
}

// readAll reads r to the end, giving up when ctx is done. The read itself
// keeps running in the background until r returns.
func readAll(ctx context.Context, r io.Reader) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(r)
		done <- result{data, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.data, res.err
	}
}
