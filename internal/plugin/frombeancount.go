package plugin

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/nu_plugin_beancount/internal/projector"
	"github.com/cleared-dev/nu_plugin_beancount/internal/value"
)

// ErrUnknownCommand is returned by Run for a name the plugin does not offer.
var ErrUnknownCommand = errors.New("unknown command")

// Plugin is a set of commands served to a host.
type Plugin interface {
	Signature() []Signature
	Run(name string, call EvaluatedCall, input value.Value) (value.Value, error)
}

// FromBeancount offers a single command converting beancount text to a list
// of records.
type FromBeancount struct {
	name  string
	usage string
}

// NewFromBeancount creates the plugin under the given command name and usage.
func NewFromBeancount(name, usage string) *FromBeancount {
	return &FromBeancount{name: name, usage: usage}
}

func (p *FromBeancount) Signature() []Signature {
	return []Signature{{Name: p.name, Usage: p.usage, Category: CategoryFormats}}
}

// Run converts a string input. The result list is spanned by the call head;
// every record inside it carries the input's span.
func (p *FromBeancount) Run(name string, call EvaluatedCall, input value.Value) (value.Value, error) {
	if name != p.name {
		return value.Value{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}

	text, err := input.AsString()
	if err != nil {
		span := input.Span()
		return value.Value{}, &LabeledError{
			Label: "Unsupported input",
			Msg:   fmt.Sprintf("%s takes a string: %v", p.name, err),
			Span:  &span,
		}
	}

	records, err := projector.FromBeancount(text, input.Span())
	if err != nil {
		var convErr *projector.ConversionError
		if errors.As(err, &convErr) {
			return value.Value{}, &LabeledError{Label: convErr.Label, Msg: convErr.Msg, Span: &convErr.Span}
		}
		return value.Value{}, err
	}
	return value.List(records, call.Head), nil
}
