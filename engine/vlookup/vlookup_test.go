package vlookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"excelops/domain/core"
	"excelops/domain/preset"
	"excelops/domain/table"
)

func dataset(cols []string, rows ...[]string) *table.Dataset {
	d := table.New(cols...)
	for _, r := range rows {
		vals := make([]table.Value, len(r))
		for i, raw := range r {
			vals[i] = table.Cell(raw)
		}
		d.Append(vals...)
	}
	return d
}

func TestJoinFillsMissesWithDefault(t *testing.T) {
	main := dataset([]string{"id"}, []string{"1"}, []string{"2"})
	lookup := dataset([]string{"id", "name"}, []string{"1", "X"})

	out, err := Join(main, lookup, preset.JoinSpec{
		MainKeys:    []string{"id"},
		Values:      []string{"name"},
		DefaultFill: "N/A",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, out.Columns)
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "X", out.Rows[0].Get("name").String())
	assert.Equal(t, "N/A", out.Rows[1].Get("name").String())
}

func TestJoinMissesStayNullWithoutDefault(t *testing.T) {
	main := dataset([]string{"id"}, []string{"1"}, []string{"2"})
	lookup := dataset([]string{"id", "name"}, []string{"1", "X"})

	out, err := Join(main, lookup, preset.JoinSpec{
		MainKeys: []string{"id"},
		Values:   []string{"name"},
	})
	require.NoError(t, err)
	assert.True(t, out.Rows[1].Get("name").IsMissing())
}

func TestJoinRenamesCollidingColumns(t *testing.T) {
	main := dataset([]string{"id", "name"}, []string{"1", "main-name"})
	lookup := dataset([]string{"id", "name"}, []string{"1", "lookup-name"})

	out, err := Join(main, lookup, preset.JoinSpec{
		MainKeys: []string{"id"},
		Values:   []string{"name"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "name_lk1"}, out.Columns)
	assert.Equal(t, "main-name", out.Rows[0].Get("name").String())
	assert.Equal(t, "lookup-name", out.Rows[0].Get("name_lk1").String())
}

func TestJoinSuffixAdvancesPastExistingNames(t *testing.T) {
	main := dataset([]string{"id", "name", "name_lk1"}, []string{"1", "a", "b"})
	lookup := dataset([]string{"id", "name"}, []string{"1", "c"})

	out, err := Join(main, lookup, preset.JoinSpec{
		MainKeys: []string{"id"},
		Values:   []string{"name"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "name_lk1", "name_lk2"}, out.Columns)
}

func TestJoinPrefixesAddedColumns(t *testing.T) {
	main := dataset([]string{"id"}, []string{"1"})
	lookup := dataset([]string{"id", "name"}, []string{"1", "X"})

	out, err := Join(main, lookup, preset.JoinSpec{
		MainKeys: []string{"id"},
		Values:   []string{"name"},
		Prefix:   "lk_",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "lk_name"}, out.Columns)
	assert.Equal(t, "X", out.Rows[0].Get("lk_name").String())
}

func TestJoinFirstMatchWinsInSourceOrder(t *testing.T) {
	main := dataset([]string{"id"}, []string{"1"})
	lookup := dataset([]string{"id", "name"},
		[]string{"1", "first"},
		[]string{"1", "second"},
	)

	spec := preset.JoinSpec{MainKeys: []string{"id"}, Values: []string{"name"}}
	for i := 0; i < 5; i++ {
		out, err := Join(main, lookup, spec)
		require.NoError(t, err)
		assert.Equal(t, "first", out.Rows[0].Get("name").String())
	}
}

func TestJoinMultiKey(t *testing.T) {
	main := dataset([]string{"a", "b"},
		[]string{"1", "x"},
		[]string{"1", "y"},
	)
	lookup := dataset([]string{"a", "b", "v"},
		[]string{"1", "x", "match-x"},
		[]string{"1", "y", "match-y"},
	)

	out, err := Join(main, lookup, preset.JoinSpec{
		MainKeys: []string{"a", "b"},
		Values:   []string{"v"},
	})
	require.NoError(t, err)
	assert.Equal(t, "match-x", out.Rows[0].Get("v").String())
	assert.Equal(t, "match-y", out.Rows[1].Get("v").String())
}

func TestJoinDistinctLookupKeys(t *testing.T) {
	main := dataset([]string{"user"}, []string{"alice"})
	lookup := dataset([]string{"login", "email"}, []string{"alice", "a@x.com"})

	out, err := Join(main, lookup, preset.JoinSpec{
		MainKeys:   []string{"user"},
		LookupKeys: []string{"login"},
		Values:     []string{"email"},
	})
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", out.Rows[0].Get("email").String())
}

func TestJoinResolvesColumnsCaseInsensitively(t *testing.T) {
	main := dataset([]string{"ID"}, []string{"1"})
	lookup := dataset([]string{"Id", "Name"}, []string{"1", "X"})

	out, err := Join(main, lookup, preset.JoinSpec{
		MainKeys: []string{" id "},
		Values:   []string{"name"},
	})
	require.NoError(t, err)
	// Canonical casing from the lookup dataset survives
	assert.Equal(t, []string{"ID", "Name"}, out.Columns)
}

func TestJoinNumericAndTextKeysMatch(t *testing.T) {
	main := table.New("id")
	main.Append(table.NewNumber(1))
	lookup := dataset([]string{"id", "name"}, []string{"1", "X"})

	out, err := Join(main, lookup, preset.JoinSpec{
		MainKeys: []string{"id"},
		Values:   []string{"name"},
	})
	require.NoError(t, err)
	assert.Equal(t, "X", out.Rows[0].Get("name").String())
}

func TestJoinKeysOnlyAddsNothing(t *testing.T) {
	main := dataset([]string{"id"}, []string{"1"})
	lookup := dataset([]string{"id"}, []string{"1"})

	out, err := Join(main, lookup, preset.JoinSpec{MainKeys: []string{"id"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, out.Columns)
	assert.Equal(t, 1, out.NumRows())
}

func TestJoinExcludesLookupKeysFromValues(t *testing.T) {
	main := dataset([]string{"id"}, []string{"1"})
	lookup := dataset([]string{"id", "name"}, []string{"1", "X"})

	out, err := Join(main, lookup, preset.JoinSpec{
		MainKeys: []string{"id"},
		Values:   []string{"id", "name"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, out.Columns)
}

func TestJoinPreconditionErrors(t *testing.T) {
	good := dataset([]string{"id", "v"}, []string{"1", "x"})
	empty := table.New("id")
	duped := &table.Dataset{Columns: []string{"id", "id"}, Rows: []table.Row{{"id": table.Cell("1")}}}

	cases := []struct {
		name   string
		main   *table.Dataset
		lookup *table.Dataset
		spec   preset.JoinSpec
		want   error
	}{
		{"empty main", empty, good, preset.JoinSpec{MainKeys: []string{"id"}}, core.ErrEmptySource},
		{"empty lookup", good, empty, preset.JoinSpec{MainKeys: []string{"id"}}, core.ErrEmptySource},
		{"duplicate main columns", duped, good, preset.JoinSpec{MainKeys: []string{"id"}}, core.ErrDuplicateColumns},
		{"duplicate lookup columns", good, duped, preset.JoinSpec{MainKeys: []string{"id"}}, core.ErrDuplicateColumns},
		{"unknown main key", good, good, preset.JoinSpec{MainKeys: []string{"nope"}}, core.ErrUnknownColumn},
		{"unknown lookup key", good, good, preset.JoinSpec{MainKeys: []string{"id"}, LookupKeys: []string{"nope"}}, core.ErrUnknownColumn},
		{"unknown value column", good, good, preset.JoinSpec{MainKeys: []string{"id"}, Values: []string{"nope"}}, core.ErrUnknownColumn},
		{"key arity mismatch", good, good, preset.JoinSpec{MainKeys: []string{"id", "v"}, LookupKeys: []string{"id"}}, core.ErrKeyArityMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Join(tc.main, tc.lookup, tc.spec)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.True(t, core.IsJoinPrecondition(err))
		})
	}
}

func TestJoinLeavesInputsUntouched(t *testing.T) {
	main := dataset([]string{"id"}, []string{"1"})
	lookup := dataset([]string{"id", "name"}, []string{"1", "X"})

	_, err := Join(main, lookup, preset.JoinSpec{MainKeys: []string{"id"}, Values: []string{"name"}})
	require.NoError(t, err)

	assert.Equal(t, []string{"id"}, main.Columns)
	_, ok := main.Rows[0]["name"]
	assert.False(t, ok)
}
