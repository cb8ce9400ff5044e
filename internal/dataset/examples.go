package dataset

import (
	"fmt"
	"strings"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/model"
)

// ExampleColumns names the columns of a few-shot example sheet.
type ExampleColumns struct {
	Quote         string
	Construct     string
	Justification string
}

// DefaultExampleColumns are the headers expected in example sheets. Headers
// are matched ignoring case and surrounding spaces.
var DefaultExampleColumns = ExampleColumns{
	Quote:         "quote",
	Construct:     "constructo",
	Justification: "justificativa",
}

// ReadExamples loads annotated examples using the default headers.
func ReadExamples(path string) ([]model.Example, error) {
	return ReadExamplesWithColumns(path, DefaultExampleColumns)
}

// ReadExamplesWithColumns loads annotated examples from an .xlsx sheet. Rows
// missing any of the three fields are skipped; a sheet without a single
// complete row is a format error.
func ReadExamplesWithColumns(path string, cols ExampleColumns) ([]model.Example, error) {
	table, err := ReadSpreadsheet(path)
	if err != nil {
		return nil, err
	}

	quoteCol, ok := matchColumn(table, cols.Quote)
	if !ok {
		return nil, missingExampleColumns(path, cols)
	}
	constructCol, ok := matchColumn(table, cols.Construct)
	if !ok {
		return nil, missingExampleColumns(path, cols)
	}
	justCol, ok := matchColumn(table, cols.Justification)
	if !ok {
		return nil, missingExampleColumns(path, cols)
	}

	examples := make([]model.Example, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		ex := model.Example{
			Quote:         strings.TrimSpace(table.Cell(i, quoteCol)),
			Construct:     strings.TrimSpace(table.Cell(i, constructCol)),
			Justification: strings.TrimSpace(table.Cell(i, justCol)),
		}
		if ex.Quote == "" || ex.Construct == "" || ex.Justification == "" {
			continue
		}
		examples = append(examples, ex)
	}

	if len(examples) == 0 {
		return nil, common.FormatError(path, fmt.Errorf("no complete examples found"))
	}
	return examples, nil
}

func missingExampleColumns(path string, cols ExampleColumns) error {
	return common.FormatError(path, fmt.Errorf("sheet must contain the columns %s, %s and %s",
		cols.Quote, cols.Construct, cols.Justification))
}

// matchColumn finds the table column whose trimmed name equals want, ignoring case.
func matchColumn(table *model.Table, want string) (string, bool) {
	want = strings.TrimSpace(want)
	for _, name := range table.Columns() {
		if strings.EqualFold(strings.TrimSpace(name), want) {
			return name, true
		}
	}
	return "", false
}
