// Package projector turns parsed beancount directives into host records.
package projector

import (
	"fmt"
	"iter"

	"github.com/cleared-dev/nu_plugin_beancount/internal/beancount"
	"github.com/cleared-dev/nu_plugin_beancount/internal/value"
)

// ErrorLabel is the label of every ConversionError.
const ErrorLabel = "Invalid beancount input"

// ConversionError reports that the input could not be converted. Err is the
// parse error that stopped the conversion.
type ConversionError struct {
	Label string
	Msg   string
	Span  value.Span
	Err   error
}

func (e *ConversionError) Error() string {
	return e.Label + ": " + e.Msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// FromBeancount parses input and converts every supported directive.
func FromBeancount(input string, span value.Span) ([]value.Value, error) {
	return Convert(beancount.Directives(input), span)
}

// Convert consumes directives in order and returns one record per
// transaction, balance assertion or include. Other directives are skipped.
// The first error ends the conversion and no records are returned.
func Convert(directives iter.Seq2[beancount.Directive, error], span value.Span) ([]value.Value, error) {
	records := []value.Value{}
	for d, err := range directives {
		if err != nil {
			return nil, &ConversionError{
				Label: ErrorLabel,
				Msg:   fmt.Sprintf("Error while parsing beancount file: %v", err),
				Span:  span,
				Err:   err,
			}
		}
		if rec, ok := Record(d, span); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// Record projects a single directive. It reports false for directive kinds
// that have no record form.
func Record(d beancount.Directive, span value.Span) (value.Value, bool) {
	switch d := d.(type) {
	case *beancount.Transaction:
		return Transaction(d, span), true
	case *beancount.Balance:
		return Balance(d, span), true
	case *beancount.Include:
		return Include(d, span), true
	}
	return value.Value{}, false
}

// Balance projects a balance assertion.
func Balance(b *beancount.Balance, span value.Span) value.Value {
	return value.Record(
		[]string{"directive", "date", "account", "amount"},
		[]value.Value{
			value.String("balance", span),
			Date(b.Date, span),
			value.String(b.Account, span),
			Amount(b.Amount, span),
		},
		span,
	)
}

// Include projects an include directive. The path is not resolved.
func Include(inc *beancount.Include, span value.Span) value.Value {
	return value.Record(
		[]string{"directive", "path"},
		[]value.Value{
			value.String("include", span),
			value.String(inc.Path, span),
		},
		span,
	)
}
