package core

import (
	"errors"
	"testing"
)

func TestNewIDUniqueness(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Fatal("NewID returned empty ID")
		}
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestJoinPreconditionClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"empty source", NewDuplicateColumnsError("main", []string{"id"}), true},
		{"wrapped unknown column", NewUnknownColumnError("lookup", "Name"), true},
		{"arity mismatch", ErrKeyArityMismatch, true},
		{"not found", ErrSheetNotFound, false},
		{"no dataset", ErrNoDataset, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsJoinPrecondition(tt.err); got != tt.want {
				t.Errorf("IsJoinPrecondition(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestNotFoundClassification(t *testing.T) {
	if !IsNotFoundError(ErrPresetNotFound) {
		t.Error("ErrPresetNotFound should classify as not-found")
	}
	if !IsNotFoundError(NewNotFoundError("preset", "daily")) {
		t.Error("constructed not-found error should classify as not-found")
	}
	if IsNotFoundError(ErrEmptySource) {
		t.Error("ErrEmptySource should not classify as not-found")
	}
}
