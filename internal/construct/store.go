// Package construct holds the ordered set of theoretical constructs that quotes
// are classified into.
package construct

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/dataset"
	"github.com/Veraticus/constructo/internal/model"
	"gopkg.in/yaml.v3"
)

// Store keeps constructs in insertion order. Every successful load replaces
// the whole set; a failed load leaves it untouched.
type Store struct {
	constructs []model.Construct
}

// NewStore creates an empty construct store.
func NewStore() *Store {
	return &Store{}
}

// LoadManual replaces the set with the pairs whose trimmed name and definition
// are both non-empty. A later pair with an existing name overwrites its definition.
func (s *Store) LoadManual(pairs []model.Construct) []model.Construct {
	s.constructs = normalize(pairs, true)
	return s.All()
}

// LoadFromSpreadsheet reads names from the first column and definitions from
// the second. Rows with an empty name are skipped.
func (s *Store) LoadFromSpreadsheet(path string) ([]model.Construct, error) {
	table, err := dataset.ReadSpreadsheet(path)
	if err != nil {
		return nil, err
	}
	cols := table.Columns()
	if len(cols) < 2 {
		return nil, common.FormatError(path, fmt.Errorf("expected at least two columns, found %d", len(cols)))
	}

	pairs := make([]model.Construct, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		pairs = append(pairs, model.Construct{
			Name:       table.Cell(i, cols[0]),
			Definition: table.Cell(i, cols[1]),
		})
	}

	s.constructs = normalize(pairs, false)
	return s.All(), nil
}

// LoadFromYAML reads a YAML list of {name, definition} entries.
func (s *Store) LoadFromYAML(path string) ([]model.Construct, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return nil, common.FormatError(path, err)
	}

	var pairs []model.Construct
	if err := yaml.Unmarshal(data, &pairs); err != nil {
		return nil, common.FormatError(path, err)
	}

	s.constructs = normalize(pairs, false)
	return s.All(), nil
}

// LoadFromFile picks the loader from the file extension.
func (s *Store) LoadFromFile(path string) ([]model.Construct, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return s.LoadFromYAML(path)
	case ".xlsx", ".xlsm":
		return s.LoadFromSpreadsheet(path)
	default:
		return nil, common.FormatError(path, fmt.Errorf("unsupported construct file type %q", filepath.Ext(path)))
	}
}

// normalize trims, drops incomplete entries and collapses duplicate names
// onto their first position.
func normalize(pairs []model.Construct, requireDefinition bool) []model.Construct {
	out := make([]model.Construct, 0, len(pairs))
	index := make(map[string]int, len(pairs))

	for _, p := range pairs {
		name := strings.TrimSpace(p.Name)
		def := strings.TrimSpace(p.Definition)
		if name == "" || (requireDefinition && def == "") {
			continue
		}
		if i, ok := index[name]; ok {
			out[i].Definition = def
			continue
		}
		index[name] = len(out)
		out = append(out, model.Construct{Name: name, Definition: def})
	}
	return out
}

// All returns a copy of the constructs in insertion order.
func (s *Store) All() []model.Construct {
	out := make([]model.Construct, len(s.constructs))
	copy(out, s.constructs)
	return out
}

// Len is the number of loaded constructs.
func (s *Store) Len() int {
	return len(s.constructs)
}

// Definitions returns name → definition.
func (s *Store) Definitions() map[string]string {
	defs := make(map[string]string, len(s.constructs))
	for _, c := range s.constructs {
		defs[c.Name] = c.Definition
	}
	return defs
}

// FormattedSummary renders one "**Name**: Definition" paragraph per
// construct, each ending in a newline and separated by a blank line.
func (s *Store) FormattedSummary() string {
	entries := make([]string, 0, len(s.constructs))
	for _, c := range s.constructs {
		entries = append(entries, fmt.Sprintf("**%s**: %s\n", c.Name, c.Definition))
	}
	return strings.Join(entries, "\n")
}

// Reset empties the store.
func (s *Store) Reset() {
	s.constructs = nil
}
