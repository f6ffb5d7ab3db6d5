package table

import (
	"strconv"
	"strings"
)

// ValueType defines the storage type for cell values
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeNumeric ValueType = "numeric"
	ValueTypeMissing ValueType = "missing"
)

// Value represents a typed scalar cell: string, number, or missing.
type Value struct {
	Type ValueType `json:"type"`
	Str  string    `json:"str,omitempty"`
	Num  float64   `json:"num,omitempty"`
}

// NewString creates a string value. Empty (after trimming) means missing.
func NewString(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Value{Type: ValueTypeMissing}
	}
	return Value{Type: ValueTypeString, Str: s}
}

// NewNumber creates a numeric value
func NewNumber(n float64) Value {
	return Value{Type: ValueTypeNumeric, Num: n}
}

// Missing creates a missing value
func Missing() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing reports whether the value is null/missing
func (v Value) IsMissing() bool {
	return v.Type == ValueTypeMissing || v.Type == ""
}

// String renders the value for display and key matching. Numerics use the
// shortest representation so a numeric 1 and the text "1" compare equal.
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		return v.Str
	case ValueTypeNumeric:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return ""
}

// Cell coerces a raw text cell: trimmed, empty becomes missing and
// numeric-looking text becomes a number.
func Cell(raw string) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Missing()
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return NewNumber(n)
	}
	return Value{Type: ValueTypeString, Str: s}
}
