// Package numeric coerces heterogeneous text/number columns into comparable
// numeric form. Every engine that compares or aggregates numbers goes
// through this normalizer so "12.5%" and "1,234" behave like 12.5 and 1234.
package numeric

import (
	"strconv"
	"strings"

	"github.com/montanaflynn/stats"

	"excelops/domain/table"
)

// Parse normalizes one text cell: trims whitespace, strips % and , then
// parses as float. Empty and unparseable values report ok=false (null),
// never an error.
func Parse(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "%", "")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FromValue normalizes a typed cell. Numerics pass through, text goes
// through Parse, missing is null.
func FromValue(v table.Value) (float64, bool) {
	switch v.Type {
	case table.ValueTypeNumeric:
		return v.Num, true
	case table.ValueTypeString:
		return Parse(v.Str)
	}
	return 0, false
}

// Series normalizes a whole column to float-or-null, in row order
func Series(d *table.Dataset, col string) []*float64 {
	out := make([]*float64, d.NumRows())
	for i, row := range d.Rows {
		if n, ok := FromValue(row.Get(col)); ok {
			v := n
			out[i] = &v
		}
	}
	return out
}

// Mean averages a normalized series ignoring nulls. ok is false when every
// value is null (the mean is undefined).
func Mean(series []*float64) (float64, bool) {
	vals := Compact(series)
	if len(vals) == 0 {
		return 0, false
	}
	m, err := stats.Mean(vals)
	if err != nil {
		return 0, false
	}
	return m, true
}

// Compact drops the nulls from a normalized series
func Compact(series []*float64) []float64 {
	vals := make([]float64, 0, len(series))
	for _, p := range series {
		if p != nil {
			vals = append(vals, *p)
		}
	}
	return vals
}
