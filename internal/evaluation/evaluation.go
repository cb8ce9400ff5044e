// Package evaluation compares automatic construct labels with manual ones,
// annotates the table with the verdicts and renders the reports.
package evaluation

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/config"
	"github.com/Veraticus/constructo/internal/dataset"
	"github.com/Veraticus/constructo/internal/model"
)

// Verdicts written to the result column.
const (
	Correct   = "Certa"
	Incorrect = "Errada"
)

// DefaultResultColumn receives the verdicts when no column is named.
const DefaultResultColumn = "Resultado"

// AccuracyPrefix starts the sentinel cell appended to the automatic column.
const AccuracyPrefix = "Acurácia:"

// Columns names the inputs and output of an evaluation.
type Columns struct {
	Manual string
	Auto   string
	Result string
}

// Outcome is everything an evaluation produces.
type Outcome struct {
	Confusion       ConfusionMatrix
	Report          Report
	Summary         string
	ReportMarkdown  string
	SpreadsheetPath string
	PDFPath         string
	HTMLPath        string
	Accuracy        float64
	Correct         int
	Incorrect       int
}

// Evaluator writes evaluation artifacts into OutputDir.
type Evaluator struct {
	logger *slog.Logger
	// Now stamps the artifact file names.
	Now       func() time.Time
	OutputDir string
}

// New returns an evaluator writing into outputDir ("results" when empty).
func New(outputDir string, logger *slog.Logger) *Evaluator {
	if outputDir == "" {
		outputDir = config.DefaultOutputDir
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{OutputDir: outputDir, logger: logger, Now: time.Now}
}

// Evaluate marks every row Certa or Errada, appends the accuracy sentinel row
// and writes the annotated spreadsheet, PDF and HTML reports named after
// sourcePath. The table is modified in place. A sentinel row left by an
// earlier evaluation is removed first so repeated runs agree.
func (e *Evaluator) Evaluate(table *model.Table, sourcePath string, cols Columns) (*Outcome, error) {
	if table == nil || table.Len() == 0 {
		return nil, common.ErrDataNotLoaded
	}
	for _, col := range []string{cols.Manual, cols.Auto} {
		if !table.HasColumn(col) {
			return nil, common.ColumnNotFound(col)
		}
	}
	if cols.Result == "" {
		return nil, fmt.Errorf("%w: empty result column name", common.ErrInvalidConfig)
	}

	DropSentinel(table, cols)
	if table.Len() == 0 {
		return nil, common.ErrDataNotLoaded
	}

	manualRaw, _ := table.Column(cols.Manual)
	autoRaw, _ := table.Column(cols.Auto)
	truth := make([]string, len(manualRaw))
	predicted := make([]string, len(autoRaw))
	out := &Outcome{}
	for i := range manualRaw {
		truth[i] = Normalize(manualRaw[i])
		predicted[i] = Normalize(autoRaw[i])
		if truth[i] == predicted[i] {
			table.SetCell(i, cols.Result, Correct)
			out.Correct++
		} else {
			table.SetCell(i, cols.Result, Incorrect)
			out.Incorrect++
		}
	}

	out.Accuracy = float64(out.Correct) / float64(len(truth))
	out.Confusion = NewConfusionMatrix(truth, predicted)
	out.Report = NewReport(truth, predicted)
	out.Summary = summaryMarkdown(cols, out)
	out.ReportMarkdown = "### 📊 Relatório de Classificação\n```\n" + out.Report.String() + "\n```"

	table.AppendRow(nil)
	table.SetCell(table.Len()-1, cols.Auto, FormatAccuracy(out.Accuracy))

	if err := e.writeArtifacts(table, sourcePath, out); err != nil {
		return out, err
	}

	e.logger.Info("Evaluation complete",
		"accuracy", out.Accuracy,
		"correct", out.Correct,
		"incorrect", out.Incorrect,
		"spreadsheet", out.SpreadsheetPath)
	return out, nil
}

func (e *Evaluator) writeArtifacts(table *model.Table, sourcePath string, out *Outcome) error {
	if err := config.EnsureDir(e.OutputDir); err != nil {
		return err
	}
	stamp := config.Stamp(e.Now(), config.SecondStamp)

	out.SpreadsheetPath = config.OutputPath(e.OutputDir, sourcePath, []string{"avaliado"}, stamp, ".xlsx")
	if err := dataset.WriteSpreadsheet(table, out.SpreadsheetPath); err != nil {
		return err
	}

	out.PDFPath = config.OutputPath(e.OutputDir, sourcePath, []string{"avaliacao"}, stamp, ".pdf")
	if err := writePDF(out, out.PDFPath); err != nil {
		return fmt.Errorf("failed to write PDF report: %w", err)
	}

	out.HTMLPath = config.OutputPath(e.OutputDir, sourcePath, []string{"avaliacao"}, stamp, ".html")
	if err := writeHTML(out, out.HTMLPath); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	return nil
}

// FormatAccuracy renders the sentinel cell, e.g. "Acurácia: 66.67%".
func FormatAccuracy(accuracy float64) string {
	return fmt.Sprintf("%s %.2f%%", AccuracyPrefix, accuracy*100)
}

// DropSentinel removes trailing rows that hold only an accuracy sentinel in
// the automatic column. It reports how many rows were removed.
func DropSentinel(table *model.Table, cols Columns) int {
	removed := 0
	for n := table.Len(); n > 0; n-- {
		last := n - 1
		if !strings.HasPrefix(strings.TrimSpace(table.Cell(last, cols.Auto)), AccuracyPrefix) ||
			strings.TrimSpace(table.Cell(last, cols.Manual)) != "" {
			break
		}
		table.Truncate(last)
		removed++
	}
	return removed
}

func summaryMarkdown(cols Columns, out *Outcome) string {
	return fmt.Sprintf("### ✅ Avaliação Gravada com Sucesso\n\n"+
		"- Coluna de resultado: `%s` com \"Certa\"/\"Errada\"\n"+
		"- Acurácia: `%.2f%%` (gravada ao final da coluna `%s`)\n"+
		"- Total de registros: **%d**\n"+
		"- Acertos: **%d**\n"+
		"- Erros: **%d**\n",
		cols.Result, out.Accuracy*100, cols.Auto, out.Correct+out.Incorrect, out.Correct, out.Incorrect)
}
