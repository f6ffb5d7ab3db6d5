package sorts

import (
	"testing"

	"excelops/domain/preset"
	"excelops/domain/table"
)

func deptAges() *table.Dataset {
	d := table.New("Dept", "Age")
	add := func(dept string, age float64) {
		d.Append(table.NewString(dept), table.NewNumber(age))
	}
	add("Sales", 30)
	add("Eng", 25)
	add("Sales", 45)
	add("Eng", 40)
	return d
}

func pairs(d *table.Dataset) [][2]string {
	out := make([][2]string, 0, d.NumRows())
	for _, row := range d.Rows {
		out = append(out, [2]string{row.Get("Dept").String(), row.Get("Age").String()})
	}
	return out
}

// OR groups are independent precedence tiers: the first group ends up the
// primary key, later groups only break ties.
func TestOrGroupPrecedence(t *testing.T) {
	out := Apply(deptAges(), []preset.SortRow{
		{Col: "Dept", Order: preset.Ascending},
		{Join: preset.JoinOr, Col: "Age", Order: preset.Descending},
	})
	want := [][2]string{{"Eng", "40"}, {"Eng", "25"}, {"Sales", "45"}, {"Sales", "30"}}
	got := pairs(out)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

// AND rows extend the current group into an ordinary multi-key sort
func TestAndExtendsGroup(t *testing.T) {
	out := Apply(deptAges(), []preset.SortRow{
		{Col: "Dept", Order: preset.Ascending},
		{Join: preset.JoinAnd, Col: "Age", Order: preset.Ascending},
	})
	want := [][2]string{{"Eng", "25"}, {"Eng", "40"}, {"Sales", "30"}, {"Sales", "45"}}
	got := pairs(out)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNullsSortLastBothDirections(t *testing.T) {
	d := table.New("A")
	d.Append(table.Missing())
	d.Append(table.NewNumber(2))
	d.Append(table.NewNumber(1))

	for _, dir := range []preset.SortDirection{preset.Ascending, preset.Descending} {
		out := Apply(d, []preset.SortRow{{Col: "A", Order: dir}})
		last := out.Rows[out.NumRows()-1].Get("A")
		if !last.IsMissing() {
			t.Errorf("%s: null not last: %v", dir, out.Rows)
		}
	}
}

func TestUnknownColumnsDroppedFromGroup(t *testing.T) {
	d := deptAges()
	out := Apply(d, []preset.SortRow{
		{Col: "NoSuch", Order: preset.Ascending},
		{Join: preset.JoinAnd, Col: "Age", Order: preset.Ascending},
	})
	got := pairs(out)
	if got[0][1] != "25" || got[3][1] != "45" {
		t.Errorf("expected sort by Age only, got %v", got)
	}
}

func TestNoValidGroupsUnchanged(t *testing.T) {
	d := deptAges()
	out := Apply(d, []preset.SortRow{{Col: "Ghost", Order: preset.Ascending}})
	got, want := pairs(out), pairs(d)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dataset was reordered despite no valid sort rows: %v", got)
		}
	}
}

func TestStableWithinEqualKeys(t *testing.T) {
	d := table.New("K", "Seq")
	d.Append(table.NewString("x"), table.NewNumber(1))
	d.Append(table.NewString("x"), table.NewNumber(2))
	d.Append(table.NewString("x"), table.NewNumber(3))
	out := Apply(d, []preset.SortRow{{Col: "K", Order: preset.Ascending}})
	for i, row := range out.Rows {
		if row.Get("Seq").Num != float64(i+1) {
			t.Fatalf("stable order broken: %v", out.Rows)
		}
	}
}
