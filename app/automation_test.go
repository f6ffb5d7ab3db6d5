package app

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"excelops/domain/core"
	"excelops/domain/preset"
	"excelops/domain/table"
	"excelops/ports"
)

type fakeReader struct {
	datasets map[string]*table.Dataset
}

func (r *fakeReader) Read(path string) (*table.Dataset, error) {
	d, ok := r.datasets[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return d.Clone(), nil
}

type fakeStore struct {
	presets map[string]*preset.Preset
}

func (s *fakeStore) Save(_ context.Context, name string, p *preset.Preset) error {
	s.presets[name] = p
	return nil
}

func (s *fakeStore) Load(_ context.Context, name string) (*preset.Preset, error) {
	p, ok := s.presets[name]
	if !ok {
		return nil, core.ErrPresetNotFound
	}
	return p, nil
}

func (s *fakeStore) List(context.Context) ([]string, error) { return nil, nil }
func (s *fakeStore) Delete(context.Context, string) error   { return nil }

type recordingWriter struct {
	mu     sync.Mutex
	writes map[string][]ports.NamedDataset
}

func (w *recordingWriter) Write(path string, sheets []ports.NamedDataset) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.writes == nil {
		w.writes = make(map[string][]ports.NamedDataset)
	}
	w.writes[path] = sheets
	return nil
}

func batchDataset() *table.Dataset {
	d := table.New("User", "Status", "Amount")
	d.Append(table.Cell("alice"), table.Cell("open"), table.Cell("10"))
	d.Append(table.Cell("alice"), table.Cell("closed"), table.Cell("20"))
	d.Append(table.Cell("bob"), table.Cell("open"), table.Cell("30"))
	return d
}

func batchPreset() *preset.Preset {
	return &preset.Preset{Sheets: []preset.SheetConfig{{
		Name: "Main",
		Filters: preset.FilterConfig{Filters: []preset.FilterRow{
			{Col: "Status", Op: preset.OpEq, Val: "open"},
		}},
		Sorts: preset.SortConfig{Sorts: []preset.SortRow{
			{Col: "Amount", Order: preset.Ascending},
		}},
	}}}
}

func newBatchAutomation(w *recordingWriter) *Automation {
	reader := &fakeReader{datasets: map[string]*table.Dataset{"in.csv": batchDataset()}}
	store := &fakeStore{presets: map[string]*preset.Preset{"daily": batchPreset()}}
	return NewAutomation(reader, store, w)
}

func TestRunWritesOneSheetPerMatchingUser(t *testing.T) {
	w := &recordingWriter{}
	a := newBatchAutomation(w)

	err := a.Run(context.Background(), BatchJob{
		Input:      "in.csv",
		Output:     "out.xlsx",
		PresetName: "daily",
		UserColumn: "User",
		Users:      []string{"alice", "bob", "  ", "nobody"},
	})
	require.NoError(t, err)

	sheets := w.writes["out.xlsx"]
	require.Len(t, sheets, 2, "blank and unmatched identifiers are skipped")
	assert.Equal(t, "alice", sheets[0].Name)
	assert.Equal(t, "bob", sheets[1].Name)

	// Preset filter applies before the user slice: alice's closed row is gone
	require.Equal(t, 1, sheets[0].Dataset.NumRows())
	assert.Equal(t, "open", sheets[0].Dataset.Rows[0].Get("Status").String())
}

func TestRunFailsWhenNothingMatches(t *testing.T) {
	a := newBatchAutomation(&recordingWriter{})
	err := a.Run(context.Background(), BatchJob{
		Input:      "in.csv",
		Output:     "out.xlsx",
		PresetName: "daily",
		UserColumn: "User",
		Users:      []string{"nobody"},
	})
	assert.Error(t, err)
}

func TestRunRejectsUnknownUserColumn(t *testing.T) {
	a := newBatchAutomation(&recordingWriter{})
	err := a.Run(context.Background(), BatchJob{
		Input:      "in.csv",
		Output:     "out.xlsx",
		PresetName: "daily",
		UserColumn: "NoSuch",
		Users:      []string{"alice"},
	})
	assert.ErrorIs(t, err, core.ErrUnknownColumn)
}

func TestRunRejectsMissingPreset(t *testing.T) {
	a := newBatchAutomation(&recordingWriter{})
	err := a.Run(context.Background(), BatchJob{
		Input:      "in.csv",
		Output:     "out.xlsx",
		PresetName: "no-such-preset",
		UserColumn: "User",
		Users:      []string{"alice"},
	})
	assert.ErrorIs(t, err, core.ErrPresetNotFound)
}

func TestRunBatchProcessesManyJobs(t *testing.T) {
	w := &recordingWriter{}
	reader := &fakeReader{datasets: map[string]*table.Dataset{
		"a.csv": batchDataset(),
		"b.csv": batchDataset(),
	}}
	store := &fakeStore{presets: map[string]*preset.Preset{"daily": batchPreset()}}
	a := NewAutomation(reader, store, w)

	jobs := []BatchJob{
		{Input: "a.csv", Output: "a.xlsx", PresetName: "daily", UserColumn: "User", Users: []string{"alice"}},
		{Input: "b.csv", Output: "b.xlsx", PresetName: "daily", UserColumn: "User", Users: []string{"bob"}},
		// Same output path as the first job: serialized, last write wins
		{Input: "b.csv", Output: "a.xlsx", PresetName: "daily", UserColumn: "User", Users: []string{"bob"}},
	}
	require.NoError(t, a.RunBatch(context.Background(), jobs))

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Len(t, w.writes, 2)
	assert.NotEmpty(t, w.writes["a.xlsx"])
	assert.NotEmpty(t, w.writes["b.xlsx"])
}

func TestRunBatchSurfacesJobFailure(t *testing.T) {
	a := newBatchAutomation(&recordingWriter{})
	err := a.RunBatch(context.Background(), []BatchJob{
		{Input: "missing.csv", Output: "out.xlsx", PresetName: "daily", UserColumn: "User", Users: []string{"alice"}},
	})
	assert.Error(t, err)
}
