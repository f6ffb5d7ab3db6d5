package table

// Row maps column name to cell value. Absent keys read as missing.
type Row map[string]Value

// Get returns the cell for col, or a missing value when the cell is absent.
func (r Row) Get(col string) Value {
	if v, ok := r[col]; ok {
		return v
	}
	return Missing()
}

// Dataset is an in-memory ordered table of rows over named columns.
// Column order and row order are both significant.
type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// New creates an empty dataset with the given column order
func New(columns ...string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// Append adds a row built from values in column order
func (d *Dataset) Append(values ...Value) {
	row := make(Row, len(d.Columns))
	for i, col := range d.Columns {
		if i < len(values) {
			row[col] = values[i]
		}
	}
	d.Rows = append(d.Rows, row)
}

// NumRows returns the row count
func (d *Dataset) NumRows() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// IsEmpty reports whether the dataset is nil or has no rows
func (d *Dataset) IsEmpty() bool {
	return d == nil || len(d.Rows) == 0
}

// HasColumn reports whether col is one of the dataset's columns
func (d *Dataset) HasColumn(col string) bool {
	for _, c := range d.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Column returns the cells of one column in row order
func (d *Dataset) Column(col string) []Value {
	out := make([]Value, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row.Get(col)
	}
	return out
}

// DuplicateColumns returns column names that appear more than once.
// A dataset with duplicates is invalid for joins.
func (d *Dataset) DuplicateColumns() []string {
	seen := make(map[string]int, len(d.Columns))
	var dups []string
	for _, c := range d.Columns {
		seen[c]++
		if seen[c] == 2 {
			dups = append(dups, c)
		}
	}
	return dups
}

// Clone returns a deep copy; engines never mutate their input.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Row, len(d.Rows)),
	}
	for i, row := range d.Rows {
		nr := make(Row, len(row))
		for k, v := range row {
			nr[k] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// Select returns a dataset containing the rows at the given indices,
// preserving column order.
func (d *Dataset) Select(indices []int) *Dataset {
	out := &Dataset{Columns: append([]string(nil), d.Columns...)}
	out.Rows = make([]Row, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(d.Rows) {
			out.Rows = append(out.Rows, d.Rows[i])
		}
	}
	return out
}

// Project returns a dataset restricted to exactly cols, in that order.
// Cells of dropped columns are not carried over.
func (d *Dataset) Project(cols []string) *Dataset {
	out := &Dataset{Columns: append([]string(nil), cols...)}
	out.Rows = make([]Row, len(d.Rows))
	for i, row := range d.Rows {
		nr := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := row[c]; ok {
				nr[c] = v
			}
		}
		out.Rows[i] = nr
	}
	return out
}

// Drop returns a dataset without the rows at the given indices.
func (d *Dataset) Drop(indices []int) *Dataset {
	skip := make(map[int]bool, len(indices))
	for _, i := range indices {
		skip[i] = true
	}
	out := &Dataset{Columns: append([]string(nil), d.Columns...)}
	for i, row := range d.Rows {
		if !skip[i] {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}
