package evaluation

import (
	"fmt"
	"sort"
	"strings"
)

// Normalize folds a label for comparison.
func Normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// ConfusionMatrix counts manual/automatic label pairs. Rows are the distinct
// manual labels and columns the distinct automatic labels, both sorted.
type ConfusionMatrix struct {
	counts map[string]map[string]int
	Manual []string
	Auto   []string
}

// NewConfusionMatrix tallies already normalized label pairs.
func NewConfusionMatrix(manual, auto []string) ConfusionMatrix {
	m := ConfusionMatrix{counts: make(map[string]map[string]int)}
	for i := range manual {
		row, ok := m.counts[manual[i]]
		if !ok {
			row = make(map[string]int)
			m.counts[manual[i]] = row
		}
		row[auto[i]]++
	}
	m.Manual = distinctSorted(manual)
	m.Auto = distinctSorted(auto)
	return m
}

// Count returns how often manual was labeled auto.
func (m ConfusionMatrix) Count(manual, auto string) int {
	return m.counts[manual][auto]
}

// Markdown renders the matrix as a pipe table.
func (m ConfusionMatrix) Markdown() string {
	var b strings.Builder
	b.WriteString("| Manual \\ Automática |")
	for _, a := range m.Auto {
		b.WriteString(" " + escapeCell(a) + " |")
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---:|", len(m.Auto)))
	for _, r := range m.Manual {
		b.WriteString("\n| " + escapeCell(r) + " |")
		for _, a := range m.Auto {
			fmt.Fprintf(&b, " %d |", m.Count(r, a))
		}
	}
	return b.String()
}

// Text renders the matrix as aligned plain text.
func (m ConfusionMatrix) Text() string {
	width := len("Manual")
	for _, l := range m.Manual {
		width = max(width, len([]rune(l)))
	}
	colWidths := make([]int, len(m.Auto))
	for i, a := range m.Auto {
		colWidths[i] = max(len([]rune(a)), 3)
	}

	var b strings.Builder
	b.WriteString(padLeft("Manual", width))
	for i, a := range m.Auto {
		b.WriteString("  " + padLeft(a, colWidths[i]))
	}
	for _, r := range m.Manual {
		b.WriteString("\n" + padLeft(r, width))
		for i, a := range m.Auto {
			b.WriteString("  " + padLeft(fmt.Sprint(m.Count(r, a)), colWidths[i]))
		}
	}
	return b.String()
}

// ClassStats are the per-label scores of a classification report.
type ClassStats struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// Report is a per-class precision/recall/F1 summary over the union of
// manual and automatic labels. Labels never predicted score 0.
type Report struct {
	Classes     []ClassStats
	MacroAvg    ClassStats
	WeightedAvg ClassStats
	Accuracy    float64
	Total       int
}

// NewReport scores normalized predictions against normalized truth.
func NewReport(truth, predicted []string) Report {
	labels := distinctSorted(append(append([]string{}, truth...), predicted...))
	tp := make(map[string]int, len(labels))
	trueCount := make(map[string]int, len(labels))
	predCount := make(map[string]int, len(labels))
	correct := 0
	for i := range truth {
		trueCount[truth[i]]++
		predCount[predicted[i]]++
		if truth[i] == predicted[i] {
			tp[truth[i]]++
			correct++
		}
	}

	r := Report{Total: len(truth), Classes: make([]ClassStats, 0, len(labels))}
	if r.Total > 0 {
		r.Accuracy = float64(correct) / float64(r.Total)
	}

	var macro, weighted ClassStats
	for _, label := range labels {
		s := ClassStats{
			Label:     label,
			Precision: ratio(tp[label], predCount[label]),
			Recall:    ratio(tp[label], trueCount[label]),
			Support:   trueCount[label],
		}
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		r.Classes = append(r.Classes, s)

		macro.Precision += s.Precision
		macro.Recall += s.Recall
		macro.F1 += s.F1
		w := float64(s.Support)
		weighted.Precision += s.Precision * w
		weighted.Recall += s.Recall * w
		weighted.F1 += s.F1 * w
	}

	if n := float64(len(labels)); n > 0 {
		r.MacroAvg = ClassStats{Label: "macro avg", Precision: macro.Precision / n, Recall: macro.Recall / n, F1: macro.F1 / n, Support: r.Total}
	}
	if t := float64(r.Total); t > 0 {
		r.WeightedAvg = ClassStats{Label: "weighted avg", Precision: weighted.Precision / t, Recall: weighted.Recall / t, F1: weighted.F1 / t, Support: r.Total}
	}
	return r
}

// String lays the report out in the familiar scikit-learn text format.
func (r Report) String() string {
	width := len("weighted avg")
	for _, c := range r.Classes {
		width = max(width, len([]rune(c.Label)))
	}

	var b strings.Builder
	b.WriteString(padLeft("", width) + " ")
	for _, h := range []string{"precision", "recall", "f1-score", "support"} {
		fmt.Fprintf(&b, " %9s", h)
	}
	b.WriteString("\n\n")

	row := func(c ClassStats) {
		fmt.Fprintf(&b, "%s  %9.2f %9.2f %9.2f %9d\n", padLeft(c.Label, width), c.Precision, c.Recall, c.F1, c.Support)
	}
	for _, c := range r.Classes {
		row(c)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %9s %9s %9.2f %9d\n", padLeft("accuracy", width), "", "", r.Accuracy, r.Total)
	row(r.MacroAvg)
	row(r.WeightedAvg)
	return b.String()
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// padLeft right-aligns s in width runes.
func padLeft(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
