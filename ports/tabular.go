package ports

import (
	"excelops/domain/table"
)

// TabularReader loads the first sheet of a workbook (or a whole CSV) into
// a dataset. Implementations decide format support from the file extension.
type TabularReader interface {
	Read(path string) (*table.Dataset, error)
}

// NamedDataset pairs a sanitized sheet name with the dataset written under it.
type NamedDataset struct {
	Name    string
	Dataset *table.Dataset
}

// TabularWriter persists one or more datasets as a workbook
type TabularWriter interface {
	Write(path string, sheets []NamedDataset) error
}
