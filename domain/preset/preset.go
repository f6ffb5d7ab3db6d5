// Package preset holds the serializable configuration model: a preset is a
// snapshot of every engine's parameters for one or more sheets, persisted as
// JSON and re-applied against whatever dataset is loaded later.
package preset

import (
	"strings"
)

// JoinMode links a filter or sort row to the accumulated result so far.
// The first row's join is ignored.
type JoinMode string

const (
	JoinAnd JoinMode = "AND"
	JoinOr  JoinMode = "OR"
)

// IsOr treats anything other than an explicit OR as AND
func (j JoinMode) IsOr() bool {
	return strings.EqualFold(string(j), string(JoinOr))
}

// Operator is the closed set of filter comparisons. Unknown operators are
// skipped at apply time; that silent-skip is deliberate so stale presets
// keep working against newer datasets.
type Operator string

const (
	OpEq              Operator = "=="
	OpNe              Operator = "!="
	OpGt              Operator = ">"
	OpLt              Operator = "<"
	OpGe              Operator = ">="
	OpLe              Operator = "<="
	OpContains        Operator = "contains"
	OpIn              Operator = "in"
	OpColumnEquals    Operator = "column-equals"
	OpColumnNotEquals Operator = "column-not-equals"
)

// Valid reports whether op is a recognized operator
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpLt, OpGe, OpLe, OpContains, OpIn, OpColumnEquals, OpColumnNotEquals:
		return true
	}
	return false
}

// Relational reports whether op compares ordered values
func (op Operator) Relational() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpLt, OpGe, OpLe:
		return true
	}
	return false
}

// ColumnComparison reports whether op compares two columns instead of a literal
func (op Operator) ColumnComparison() bool {
	return op == OpColumnEquals || op == OpColumnNotEquals
}

// ColumnAverageSentinel in a filter row's value compares the column against
// its own numeric mean.
const ColumnAverageSentinel = "column average"

// IsColumnAverage reports whether a filter value is the column-average sentinel
func IsColumnAverage(val string) bool {
	return strings.EqualFold(strings.TrimSpace(val), ColumnAverageSentinel)
}

// FilterRow is one predicate row. Rows fold left-to-right into the final
// mask: AND and OR bind flat, in row order, with no grouping.
type FilterRow struct {
	Join JoinMode `json:"join,omitempty"`
	Col  string   `json:"col"`
	Op   Operator `json:"op"`
	Val  string   `json:"val,omitempty"`
	Cmp  string   `json:"cmp,omitempty"` // comparison column for column-equals ops
}

// FilterConfig is the ordered filter rows of one sheet
type FilterConfig struct {
	Filters []FilterRow `json:"filters"`
}

// SortDirection orders a single sort key
type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// IsDescending treats anything other than an explicit descending as ascending
func (d SortDirection) IsDescending() bool {
	return strings.EqualFold(string(d), string(Descending))
}

// SortRow is one sort level. AND appends the key to the current group and OR
// starts a new, lower-precedence group.
type SortRow struct {
	Join  JoinMode      `json:"join,omitempty"`
	Col   string        `json:"col"`
	Order SortDirection `json:"order"`
}

// SortConfig is the ordered sort rows of one sheet
type SortConfig struct {
	Sorts []SortRow `json:"sorts"`
}

// DedupeConfig drops rows repeating a value in one column, keeping the first
type DedupeConfig struct {
	Enabled bool   `json:"enabled"`
	Column  string `json:"column,omitempty"`
}

// ColumnConfig curates the visible column set. Order is the authoritative
// column universe: a column absent from Order is dropped on projection.
type ColumnConfig struct {
	Order   []string        `json:"order"`
	Visible map[string]bool `json:"visible"`
	Dedupe  DedupeConfig    `json:"dedupe"`
}

// IsVisible defaults to visible when a column was never toggled
func (c ColumnConfig) IsVisible(col string) bool {
	if c.Visible == nil {
		return true
	}
	v, ok := c.Visible[col]
	if !ok {
		return true
	}
	return v
}

// Aggregation selects how pivot values collapse per cell
type Aggregation string

const (
	AggSum   Aggregation = "sum"
	AggMean  Aggregation = "mean"
	AggCount Aggregation = "count"
	AggMin   Aggregation = "min"
	AggMax   Aggregation = "max"
)

// Valid reports whether a is a recognized aggregation
func (a Aggregation) Valid() bool {
	switch a {
	case AggSum, AggMean, AggCount, AggMin, AggMax:
		return true
	}
	return false
}

// PivotSpec describes a row/column/value cross-tabulation. Generated marks
// the pivot as replacing the sheet's export view rather than preview-only.
type PivotSpec struct {
	Rows      []string    `json:"rows"`
	Columns   []string    `json:"columns"`
	Values    []string    `json:"values"`
	Agg       Aggregation `json:"agg"`
	Generated bool        `json:"generated"`
}

// Empty reports whether the spec selects nothing at all
func (p PivotSpec) Empty() bool {
	return len(p.Rows) == 0 && len(p.Columns) == 0 && len(p.Values) == 0
}

// JoinSpec describes a VLOOKUP-style left join against an external table.
// LookupKeys defaults to MainKeys (by position) when empty. An empty
// DefaultFill leaves misses null.
type JoinSpec struct {
	MainKeys    []string `json:"main_keys"`
	LookupKeys  []string `json:"lookup_keys"`
	Values      []string `json:"values"`
	Prefix      string   `json:"prefix,omitempty"`
	DefaultFill string   `json:"default_fill,omitempty"`
}

// SheetConfig owns one instance of every engine's parameters
type SheetConfig struct {
	Name    string       `json:"name"`
	Filters FilterConfig `json:"filters"`
	Sorts   SortConfig   `json:"sorts"`
	Columns ColumnConfig `json:"columns"`
	Pivot   PivotSpec    `json:"pivot"`
	Vlookup JoinSpec     `json:"vlookup"`
}

// Preset is the persisted artifact: every sheet's configuration
type Preset struct {
	Sheets []SheetConfig `json:"sheets"`
}
