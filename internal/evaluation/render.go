package evaluation

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const pdfLineHeight = 4.5

// writePDF lays the summary, report and confusion matrix out on an A4 page
// in a monospace font so the report columns stay aligned.
func writePDF(out *Outcome, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Avaliação de classificação", true)
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Courier", "B", 12)
	pdf.CellFormat(0, 8, tr("AVALIAÇÃO DE CLASSIFICAÇÃO"), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Courier", "", 9)
	lines := []string{
		fmt.Sprintf("Acurácia: %.2f%%", out.Accuracy*100),
		fmt.Sprintf("Total de registros: %d", out.Correct+out.Incorrect),
		fmt.Sprintf("Acertos: %d", out.Correct),
		fmt.Sprintf("Erros: %d", out.Incorrect),
		"",
		"Relatório de Classificação:",
	}
	lines = append(lines, strings.Split(out.Report.String(), "\n")...)
	lines = append(lines, "Matriz de confusão:")
	lines = append(lines, strings.Split(out.Confusion.Text(), "\n")...)

	for _, line := range lines {
		pdf.CellFormat(0, pdfLineHeight, tr(line), "", 1, "L", false, 0, "")
	}
	return pdf.OutputFileAndClose(path)
}

// writeHTML renders the markdown summary, report and confusion matrix as a
// standalone HTML page.
func writeHTML(out *Outcome, path string) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	source := out.Summary + "\n" + out.ReportMarkdown + "\n\n#### Matriz de confusão\n\n" + out.Confusion.Markdown() + "\n"
	var body bytes.Buffer
	if err := md.Convert([]byte(source), &body); err != nil {
		return err
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html lang=\"pt-BR\">\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>Avaliação de classificação</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	return os.WriteFile(path, page.Bytes(), 0600)
}
