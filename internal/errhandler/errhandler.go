package errhandler

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pterm/pterm"

	"github.com/cleared-dev/nu_plugin_beancount/internal/plugin"
	"github.com/cleared-dev/nu_plugin_beancount/internal/projector"
)

// HandleError prints err on stderr and exits. An interrupted run exits 0.
func HandleError(err error) {
	os.Exit(Render(os.Stderr, err))
}

// Render writes err to w and returns the exit status for it.
func Render(w io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, context.Canceled) {
		pterm.Warning.WithWriter(w).Println("Operation cancelled")
		return 0
	}

	printer := pterm.Error.WithWriter(w)

	var convErr *projector.ConversionError
	if errors.As(err, &convErr) {
		renderLabeled(w, err, convErr, convErr.Label, convErr.Msg)
		return 1
	}
	var labeled *plugin.LabeledError
	if errors.As(err, &labeled) {
		renderLabeled(w, err, labeled, labeled.Label, labeled.Msg)
		return 1
	}

	printer.Println(capitalize(err.Error()))
	return 1
}

// renderLabeled prints label, then whatever context err wraps around inner
// (such as "converting stdin"), then msg.
func renderLabeled(w io.Writer, err, inner error, label, msg string) {
	pterm.Error.WithWriter(w).Println(label)
	prefix := strings.TrimSuffix(strings.TrimSuffix(err.Error(), inner.Error()), ": ")
	if prefix != "" {
		pterm.Fprintln(w, "  "+capitalize(prefix))
	}
	pterm.Fprintln(w, "  "+msg)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
