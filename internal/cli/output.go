package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/constructo/internal/evaluation"
	"github.com/Veraticus/constructo/internal/model"
	"github.com/charmbracelet/lipgloss"
)

// maxCellWidth truncates long quotes in previews.
const maxCellWidth = 60

// RenderList renders items one per line, numbered from 1.
func RenderList(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("%s %s", SubtleStyle.Render(fmt.Sprintf("%2d.", i+1)), item)
	}
	return strings.Join(lines, "\n")
}

// RenderConstructs renders the construct set as "Name: Definition" lines.
func RenderConstructs(constructs []model.Construct) string {
	lines := make([]string, len(constructs))
	for i, c := range constructs {
		lines[i] = BoldStyle.Render(c.Name) + ": " + c.Definition
	}
	return strings.Join(lines, "\n")
}

// RenderTable lays rows out in aligned columns under a styled header.
func RenderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(header))
		for i := range header {
			if i < len(row) {
				cells[r][i] = Truncate(row[i], maxCellWidth)
			}
			widths[i] = max(widths[i], lipgloss.Width(cells[r][i]))
		}
	}

	var b strings.Builder
	for i, h := range header {
		b.WriteString(TableHeaderStyle.Render(pad(h, widths[i])))
		b.WriteString("  ")
	}
	for _, row := range cells {
		b.WriteString("\n")
		for i, cell := range row {
			b.WriteString(TableCellStyle.Render(pad(cell, widths[i])))
		}
	}
	return b.String()
}

// RenderExamples renders few-shot examples as a table.
func RenderExamples(examples []model.Example) string {
	rows := make([][]string, len(examples))
	for i, ex := range examples {
		rows[i] = []string{ex.Quote, ex.Construct, ex.Justification}
	}
	return RenderTable([]string{"Quote", "Constructo", "Justificativa"}, rows)
}

// RenderRunSummary describes a finished classification run.
func RenderRunSummary(classifier, modelName string, recorded, total int, durations []time.Duration, path string) string {
	var sum time.Duration
	for _, d := range durations {
		sum += d
	}
	lines := []string{
		fmt.Sprintf("Classificador: %s", classifier),
	}
	if modelName != "" {
		lines = append(lines, fmt.Sprintf("Modelo: %s", modelName))
	}
	lines = append(lines, fmt.Sprintf("Quotes classificados: %d de %d", recorded, total))
	if len(durations) > 0 {
		lines = append(lines, fmt.Sprintf("Tempo médio por quote: %s", (sum/time.Duration(len(durations))).Round(time.Millisecond)))
	}
	lines = append(lines, fmt.Sprintf("%s Arquivo: %s", FolderIcon, path))
	return strings.Join(lines, "\n")
}

// RenderOutcome summarizes an evaluation: totals, report and confusion matrix.
func RenderOutcome(out *evaluation.Outcome) string {
	accuracy := SuccessStyle
	if out.Accuracy < 0.5 {
		accuracy = WarningStyle
	}
	head := strings.Join([]string{
		fmt.Sprintf("Acurácia: %s", accuracy.Render(fmt.Sprintf("%.2f%%", out.Accuracy*100))),
		fmt.Sprintf("Total de registros: %d", out.Correct+out.Incorrect),
		fmt.Sprintf("Acertos: %d", out.Correct),
		fmt.Sprintf("Erros: %d", out.Incorrect),
	}, "\n")

	return head + "\n\n" +
		BoldStyle.Render(ChartIcon+" Relatório de Classificação") + "\n" + out.Report.String() + "\n" +
		BoldStyle.Render("Matriz de confusão") + "\n" + out.Confusion.Text()
}

// Truncate shortens s to width runes, marking the cut with an ellipsis.
func Truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= width || width < 2 {
		return s
	}
	return string(r[:width-1]) + "…"
}

func pad(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
