package value

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// OrderedRecord is the plain form of a record. It keeps column order when
// encoded as JSON or YAML.
type OrderedRecord struct {
	Cols []string
	Vals []any
}

// Plain strips spans and returns ordinary Go data: nil, string, float64,
// time.Time, []any or *OrderedRecord.
func (v Value) Plain() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindFloat:
		return v.num
	case KindDate:
		return v.date
	case KindList:
		out := make([]any, len(v.vals))
		for i, e := range v.vals {
			out[i] = e.Plain()
		}
		return out
	case KindRecord:
		rec := &OrderedRecord{Cols: v.cols, Vals: make([]any, len(v.vals))}
		for i, e := range v.vals {
			rec.Vals[i] = e.Plain()
		}
		return rec
	}
	return nil
}

// PlainList converts a slice of values with Plain.
func PlainList(vals []Value) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v.Plain()
	}
	return out
}

func (r *OrderedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Cols {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.Vals[i])
		if err != nil {
			return nil, fmt.Errorf("encoding column %q: %w", col, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *OrderedRecord) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for i, col := range r.Cols {
		var val yaml.Node
		if err := val.Encode(r.Vals[i]); err != nil {
			return nil, fmt.Errorf("encoding column %q: %w", col, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: col},
			&val,
		)
	}
	return node, nil
}
