// Package dataset loads, holds and validates the working table of quotes.
package dataset

import (
	"strings"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/config"
	"github.com/Veraticus/constructo/internal/model"
)

// Store owns the currently loaded quote table and remembers where it came from.
type Store struct {
	table *model.Table
	path  string
}

// NewStore creates an empty dataset store.
func NewStore() *Store {
	return &Store{}
}

// LoadSpreadsheet replaces the working table with the contents of path and
// returns its column names. On failure the previous table is kept.
func (s *Store) LoadSpreadsheet(path string) ([]string, error) {
	table, err := ReadSpreadsheet(path)
	if err != nil {
		return nil, err
	}
	s.table = table
	s.path = path
	return table.Columns(), nil
}

// Table returns the working table, or nil when nothing is loaded.
func (s *Store) Table() *model.Table {
	return s.table
}

// Adopt makes table the working table while keeping the source path, so a
// classified table can be evaluated without reloading it.
func (s *Store) Adopt(table *model.Table) {
	s.table = table
}

// Loaded reports whether a table with at least one row is present.
func (s *Store) Loaded() bool {
	return s.table != nil && s.table.Len() > 0
}

// SourcePath is the file the working table was read from.
func (s *Store) SourcePath() string {
	return s.path
}

// BaseName is the source file name without directory or extension.
func (s *Store) BaseName() string {
	return config.BaseName(s.path)
}

// ValidateColumns checks that both columns exist in the working table.
func (s *Store) ValidateColumns(quoteColumn, classColumn string) error {
	if s.table == nil {
		return common.ErrDataNotLoaded
	}
	for _, name := range []string{quoteColumn, classColumn} {
		if !s.table.HasColumn(name) {
			return common.ColumnNotFound(name)
		}
	}
	return nil
}

// ClassificationColumn guesses the automatic-label column: the first column
// whose name contains "class", ignoring case. Returns "" when none matches.
func (s *Store) ClassificationColumn() string {
	if s.table == nil {
		return ""
	}
	for _, name := range s.table.Columns() {
		if strings.Contains(strings.ToLower(name), "class") {
			return name
		}
	}
	return ""
}

// Reset forgets the loaded table.
func (s *Store) Reset() {
	s.table = nil
	s.path = ""
}
