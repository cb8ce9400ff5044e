package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.theme.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")
	b.WriteString(m.bar.ViewAs(m.Percent()))
	b.WriteString("\n")

	counts := fmt.Sprintf("%d de %d quotes", m.done, m.total)
	elapsed := m.now().Sub(m.startTime).Round(time.Second)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Normal.Render(counts),
		m.theme.Muted.Render("  ·  "+elapsed.String()),
	))

	if m.phase != PhaseDone {
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keymap))
	}
	b.WriteString("\n")

	return m.theme.RoundedBox.Render(b.String())
}

func (m Model) statusLine() string {
	switch m.phase {
	case PhaseInterrupting:
		return m.theme.StatusWarning.Render("Interrompendo após o quote atual... (ctrl+c para cancelar)")
	case PhaseCanceling:
		return m.theme.StatusWarning.Render("Cancelando...")
	case PhaseDone:
		return m.doneLine()
	default:
		return m.spinner.View() + " " + m.theme.Subtitle.Render("Classificando...")
	}
}

func (m Model) doneLine() string {
	if m.err != nil {
		return m.theme.StatusError.Render("✗ " + m.err.Error())
	}
	if m.result == nil {
		return m.theme.StatusSuccess.Render("✓ Concluído")
	}
	style := m.theme.StatusSuccess
	if m.result.Recorded < m.result.Total {
		style = m.theme.StatusWarning
	}
	return style.Render(m.result.Message)
}
