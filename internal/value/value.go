// Package value models the structured data exchanged with a plugin host:
// nothing, strings, floats, dates, lists and records, each tagged with the
// span of input it was derived from.
package value

import (
	"fmt"
	"time"
)

// Span identifies a region of host input. It is used for error attribution
// only and takes no part in comparisons of the data it is attached to.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Unknown is the span of values with no known origin.
func Unknown() Span { return Span{} }

// Kind discriminates the variants of Value.
type Kind int

const (
	KindNothing Kind = iota
	KindString
	KindFloat
	KindDate
	KindList
	KindRecord
)

var kindNames = [...]string{
	KindNothing: "Nothing",
	KindString:  "String",
	KindFloat:   "Float",
	KindDate:    "Date",
	KindList:    "List",
	KindRecord:  "Record",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

func kindFromString(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}

// Value is an immutable host value. The zero Value is Nothing with an
// unknown span.
type Value struct {
	kind Kind
	str  string
	num  float64
	date time.Time
	cols []string
	vals []Value
	span Span
}

// TypeError is returned by the As* accessors on a kind mismatch.
type TypeError struct {
	Want Kind
	Got  Kind
	Span Span
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Want, e.Got)
}

func Nothing(span Span) Value { return Value{kind: KindNothing, span: span} }

func String(s string, span Span) Value { return Value{kind: KindString, str: s, span: span} }

func Float(f float64, span Span) Value { return Value{kind: KindFloat, num: f, span: span} }

func Date(t time.Time, span Span) Value { return Value{kind: KindDate, date: t, span: span} }

// List builds a list value. A nil vals is an empty list, never Nothing.
func List(vals []Value, span Span) Value {
	if vals == nil {
		vals = []Value{}
	}
	return Value{kind: KindList, vals: vals, span: span}
}

// Record builds a record from parallel column and value slices. It panics
// if their lengths differ.
func Record(cols []string, vals []Value, span Span) Value {
	if len(cols) != len(vals) {
		panic(fmt.Sprintf("value: record has %d columns but %d values", len(cols), len(vals)))
	}
	return Value{kind: KindRecord, cols: cols, vals: vals, span: span}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) Span() Span { return v.span }

func (v Value) IsNothing() bool { return v.kind == KindNothing }

func (v Value) mismatch(want Kind) error {
	return &TypeError{Want: want, Got: v.kind, Span: v.span}
}

func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", v.mismatch(KindString)
	}
	return v.str, nil
}

func (v Value) AsFloat() (float64, error) {
	if v.kind != KindFloat {
		return 0, v.mismatch(KindFloat)
	}
	return v.num, nil
}

func (v Value) AsDate() (time.Time, error) {
	if v.kind != KindDate {
		return time.Time{}, v.mismatch(KindDate)
	}
	return v.date, nil
}

func (v Value) AsList() ([]Value, error) {
	if v.kind != KindList {
		return nil, v.mismatch(KindList)
	}
	return v.vals, nil
}

// AsRecord returns the columns and values of a record in column order.
func (v Value) AsRecord() ([]string, []Value, error) {
	if v.kind != KindRecord {
		return nil, nil, v.mismatch(KindRecord)
	}
	return v.cols, v.vals, nil
}

// Get looks up a record column. It reports false for missing columns and
// for values that are not records.
func (v Value) Get(col string) (Value, bool) {
	if v.kind != KindRecord {
		return Value{}, false
	}
	for i, c := range v.cols {
		if c == col {
			return v.vals[i], true
		}
	}
	return Value{}, false
}

// Equal compares two values structurally, ignoring spans.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindFloat:
		return v.num == o.num
	case KindDate:
		return v.date.Equal(o.date)
	case KindList:
		return equalValues(v.vals, o.vals)
	case KindRecord:
		if len(v.cols) != len(o.cols) {
			return false
		}
		for i := range v.cols {
			if v.cols[i] != o.cols[i] {
				return false
			}
		}
		return equalValues(v.vals, o.vals)
	}
	return true
}

func equalValues(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
