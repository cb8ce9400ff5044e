package tui

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Veraticus/constructo/internal/engine"
	"github.com/Veraticus/constructo/internal/pipeline"
	"github.com/Veraticus/constructo/internal/tui/themes"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedStart = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

type hooks struct {
	interrupts int
	cancels    int
}

func newTestModel(h *hooks) Model {
	cfg := defaultConfig()
	cfg.Theme = themes.Plain
	cfg.Now = func() time.Time { return fixedStart }
	cfg.Interrupt = func() { h.interrupts++ }
	return NewModel(cfg, func() { h.cancels++ })
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModel_Progress(t *testing.T) {
	m := newTestModel(&hooks{})
	assert.Zero(t, m.Percent())

	m, _ = update(t, m, ProgressMsg{Done: 1, Total: 4})
	assert.InDelta(t, 0.25, m.Percent(), 1e-9)
	assert.Contains(t, m.View(), "1 de 4 quotes")
	assert.Contains(t, m.View(), "Classificando quotes")

	m, _ = update(t, m, ProgressMsg{Done: 9, Total: 4})
	assert.InDelta(t, 1.0, m.Percent(), 1e-9)
}

func TestModel_InterruptKeys(t *testing.T) {
	tests := []struct {
		name           string
		keys           []string
		wantPhase      Phase
		wantInterrupts int
		wantCancels    int
	}{
		{name: "q interrupts", keys: []string{"q"}, wantPhase: PhaseInterrupting, wantInterrupts: 1},
		{name: "q twice interrupts once", keys: []string{"q", "q"}, wantPhase: PhaseInterrupting, wantInterrupts: 1},
		{name: "ctrl+c interrupts first", keys: []string{"ctrl+c"}, wantPhase: PhaseInterrupting, wantInterrupts: 1},
		{name: "second ctrl+c cancels", keys: []string{"ctrl+c", "ctrl+c"}, wantPhase: PhaseCanceling, wantInterrupts: 1, wantCancels: 1},
		{name: "q then ctrl+c cancels", keys: []string{"q", "ctrl+c"}, wantPhase: PhaseCanceling, wantInterrupts: 1, wantCancels: 1},
		{name: "other keys ignored", keys: []string{"x", "enter"}, wantPhase: PhaseRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &hooks{}
			m := newTestModel(h)
			for _, k := range tt.keys {
				var cmd tea.Cmd
				m, cmd = update(t, m, keyMsg(k))
				assert.Nil(t, cmd)
			}
			assert.Equal(t, tt.wantPhase, m.Phase())
			assert.Equal(t, tt.wantInterrupts, h.interrupts)
			assert.Equal(t, tt.wantCancels, h.cancels)
		})
	}
}

func TestModel_InterruptingView(t *testing.T) {
	m := newTestModel(&hooks{})
	m, _ = update(t, m, keyMsg("q"))
	assert.Contains(t, m.View(), "Interrompendo")
}

func TestModel_Finished(t *testing.T) {
	t.Run("completed run quits", func(t *testing.T) {
		m := newTestModel(&hooks{})
		result := &engine.ClassifyResult{
			Message:  "✅ Classificação concluída!",
			State:    pipeline.StateCompleted,
			Recorded: 3,
			Total:    3,
		}
		m, cmd := update(t, m, FinishedMsg{Result: result})
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())

		got, err := m.Result()
		require.NoError(t, err)
		assert.Same(t, result, got)
		assert.Equal(t, PhaseDone, m.Phase())
		assert.InDelta(t, 1.0, m.Percent(), 1e-9)
		assert.Contains(t, m.View(), "Classificação concluída")
		assert.NotContains(t, m.View(), "interromper")
	})

	t.Run("error is shown", func(t *testing.T) {
		m := newTestModel(&hooks{})
		m, _ = update(t, m, FinishedMsg{Err: errors.New("quota exceeded")})
		_, err := m.Result()
		assert.EqualError(t, err, "quota exceeded")
		assert.Contains(t, m.View(), "quota exceeded")
	})

	t.Run("keys after finish close the view", func(t *testing.T) {
		h := &hooks{}
		m := newTestModel(h)
		m, _ = update(t, m, FinishedMsg{})
		_, cmd := update(t, m, keyMsg("enter"))
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
		assert.Zero(t, h.interrupts)
	})
}

func TestModel_WindowResize(t *testing.T) {
	m := newTestModel(&hooks{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Equal(t, 36, m.bar.Width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 400, Height: 20})
	assert.Equal(t, maxBarWidth, m.bar.Width)
}

func TestRunClassification_RequiresFunc(t *testing.T) {
	_, err := RunClassification(context.Background(), nil)
	assert.Error(t, err)
}
