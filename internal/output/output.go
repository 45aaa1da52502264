package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/nu_plugin_beancount/internal/value"
)

// Encoder writes converted records in a text format.
type Encoder interface {
	Encode(w io.Writer, records []value.Value) error
	Format() string
}

// Registry holds named encoders.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates an empty encoder registry.
func NewRegistry() *Registry {
	return &Registry{encoders: make(map[string]Encoder)}
}

// Register adds an encoder. Panics on duplicate format.
func (r *Registry) Register(e Encoder) {
	key := strings.ToLower(e.Format())
	if _, ok := r.encoders[key]; ok {
		panic("duplicate output format: " + key)
	}
	r.encoders[key] = e
}

// Get returns the encoder for format, or nil.
func (r *Registry) Get(format string) Encoder {
	return r.encoders[strings.ToLower(format)]
}

// Formats lists the registered format names in sorted order.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.encoders))
	for name := range r.encoders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with all built-in encoders.
func DefaultRegistry(indent int) *Registry {
	r := NewRegistry()
	r.Register(&JSONEncoder{Indent: indent})
	r.Register(&YAMLEncoder{Indent: indent})
	return r
}

// JSONEncoder prints records as a JSON array.
type JSONEncoder struct {
	Indent int
}

func (e *JSONEncoder) Format() string { return "json" }

func (e *JSONEncoder) Encode(w io.Writer, records []value.Value) error {
	enc := json.NewEncoder(w)
	if e.Indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", e.Indent))
	}
	if err := enc.Encode(value.PlainList(records)); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// YAMLEncoder prints records as a YAML sequence.
type YAMLEncoder struct {
	Indent int
}

func (e *YAMLEncoder) Format() string { return "yaml" }

func (e *YAMLEncoder) Encode(w io.Writer, records []value.Value) error {
	enc := yaml.NewEncoder(w)
	if e.Indent > 0 {
		enc.SetIndent(e.Indent)
	}
	if err := enc.Encode(value.PlainList(records)); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return nil
}
