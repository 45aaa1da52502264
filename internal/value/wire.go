package value

import (
	"encoding/json"
	"fmt"
	"time"
)

// wireBody is the payload under the single kind key of the tagged form,
// e.g. {"String": {"val": "txn", "span": {"start": 0, "end": 4}}}.
type wireBody struct {
	Val  json.RawMessage `json:"val,omitempty"`
	Cols *[]string       `json:"cols,omitempty"`
	Vals *[]Value        `json:"vals,omitempty"`
	Span Span            `json:"span"`
}

// MarshalJSON encodes v in the tagged wire form used by the plugin protocol.
func (v Value) MarshalJSON() ([]byte, error) {
	body := wireBody{Span: v.span}

	var err error
	switch v.kind {
	case KindString:
		body.Val, err = json.Marshal(v.str)
	case KindFloat:
		body.Val, err = json.Marshal(v.num)
	case KindDate:
		body.Val, err = json.Marshal(v.date.Format(time.RFC3339Nano))
	case KindList:
		vals := v.vals
		if vals == nil {
			vals = []Value{}
		}
		body.Vals = &vals
	case KindRecord:
		cols, vals := v.cols, v.vals
		if cols == nil {
			cols, vals = []string{}, []Value{}
		}
		body.Cols, body.Vals = &cols, &vals
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s value: %w", v.kind, err)
	}
	return json.Marshal(map[string]wireBody{v.kind.String(): body})
}

// UnmarshalJSON decodes the tagged wire form.
func (v *Value) UnmarshalJSON(data []byte) error {
	var tagged map[string]wireBody
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decoding value: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("decoding value: expected exactly one kind, got %d", len(tagged))
	}

	for name, body := range tagged {
		kind, ok := kindFromString(name)
		if !ok {
			return fmt.Errorf("decoding value: unknown kind %q", name)
		}
		out := Value{kind: kind, span: body.Span}

		switch kind {
		case KindString:
			if err := json.Unmarshal(body.Val, &out.str); err != nil {
				return fmt.Errorf("decoding String value: %w", err)
			}
		case KindFloat:
			if err := json.Unmarshal(body.Val, &out.num); err != nil {
				return fmt.Errorf("decoding Float value: %w", err)
			}
		case KindDate:
			var raw string
			if err := json.Unmarshal(body.Val, &raw); err != nil {
				return fmt.Errorf("decoding Date value: %w", err)
			}
			t, err := time.Parse(time.RFC3339Nano, raw)
			if err != nil {
				return fmt.Errorf("decoding Date value: %w", err)
			}
			out.date = t
		case KindList:
			out.vals = []Value{}
			if body.Vals != nil {
				out.vals = *body.Vals
			}
		case KindRecord:
			if body.Cols != nil {
				out.cols = *body.Cols
			}
			if body.Vals != nil {
				out.vals = *body.Vals
			}
			if len(out.cols) != len(out.vals) {
				return fmt.Errorf("decoding Record value: %d columns but %d values", len(out.cols), len(out.vals))
			}
		}
		*v = out
	}
	return nil
}
