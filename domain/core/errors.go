package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound       = errors.New("resource not found")
	ErrSheetNotFound  = fmt.Errorf("%w: sheet", ErrNotFound)
	ErrPresetNotFound = fmt.Errorf("%w: preset", ErrNotFound)

	// Dataset errors
	ErrNoDataset = errors.New("no dataset loaded")

	// Join precondition failures (operation aborted, dataset unchanged)
	ErrEmptySource      = errors.New("source dataset is empty")
	ErrDuplicateColumns = errors.New("dataset has duplicate column names")
	ErrUnknownColumn    = errors.New("column not found")
	ErrKeyArityMismatch = errors.New("main and lookup key counts differ")

	// Pivot failures
	ErrEmptyPivotSelection = errors.New("pivot requires at least one row column")

	// Ingestion failures
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEmptyFile       = errors.New("file has no data rows")
)

// Error constructors with context
func NewNotFoundError(resource string, name string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, resource, name)
}

func NewUnknownColumnError(side string, column string) error {
	return fmt.Errorf("%w: %q in %s dataset", ErrUnknownColumn, column, side)
}

func NewDuplicateColumnsError(side string, columns []string) error {
	return fmt.Errorf("%w: %s dataset %v", ErrDuplicateColumns, side, columns)
}

// IsJoinPrecondition reports whether err is one of the VLOOKUP precondition
// failures that abort the merge without touching the working dataset.
func IsJoinPrecondition(err error) bool {
	return errors.Is(err, ErrEmptySource) ||
		errors.Is(err, ErrDuplicateColumns) ||
		errors.Is(err, ErrUnknownColumn) ||
		errors.Is(err, ErrKeyArityMismatch)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
