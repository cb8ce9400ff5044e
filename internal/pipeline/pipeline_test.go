package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/constructo/internal/classifier"
	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/dataset"
	"github.com/Veraticus/constructo/internal/model"
	"github.com/Veraticus/constructo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upperClassifier labels each quote with its upper-cased text and counts how
// many quotes it started on.
type upperClassifier struct {
	failAt  int
	started int
}

func (u *upperClassifier) Name() string { return "upper" }

func (u *upperClassifier) Classify(ctx context.Context, quotes []string, emit classifier.EmitFunc) error {
	for i, q := range quotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		u.started++
		if u.failAt > 0 && i == u.failAt {
			return errors.New("model unavailable")
		}
		if err := emit(i, model.Result{Label: strings.ToUpper(q), Justification: "j" + q, Elapsed: time.Millisecond}); err != nil {
			return err
		}
	}
	return nil
}

func quoteTable(quotes ...string) *model.Table {
	table := model.NewTable([]string{"id", "quote", "auto"})
	for i, q := range quotes {
		table.AppendRow([]string{string(rune('1' + i)), q, "old"})
	}
	return table
}

func TestNew_Validation(t *testing.T) {
	c := &upperClassifier{}

	_, err := New(nil, "quote", "auto", c, nil)
	assert.ErrorIs(t, err, common.ErrDataNotLoaded)

	_, err = New(quoteTable("a"), "missing", "auto", c, nil)
	assert.ErrorIs(t, err, common.ErrColumnNotFound)

	_, err = New(quoteTable("a"), "quote", "", c, nil)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestRun_Completes(t *testing.T) {
	source := quoteTable("a", "b", "c")
	p, err := New(source, "quote", "auto", &upperClassifier{}, nil)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, p.State())

	var progress [][2]int
	out, err := p.Run(context.Background(), RunOptions{
		Progress: func(done, total int) { progress = append(progress, [2]int{done, total}) },
	})
	require.NoError(t, err)
	assert.Equal(t, StateCompleted, p.State())

	labels, _ := out.Column("auto")
	assert.Equal(t, []string{"A", "B", "C"}, labels)
	justs, ok := out.Column("auto_justificativa")
	require.True(t, ok)
	assert.Equal(t, []string{"ja", "jb", "jc"}, justs)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)
	assert.Len(t, p.Durations(), 3)

	original, _ := source.Column("auto")
	assert.Equal(t, []string{"old", "old", "old"}, original, "source table is not mutated")
}

func TestRun_InterruptAfterK(t *testing.T) {
	for k := 0; k < 4; k++ {
		t.Run(string(rune('0'+k)), func(t *testing.T) {
			c := &upperClassifier{}
			p, err := New(quoteTable("a", "b", "c", "d"), "quote", "auto", c, nil)
			require.NoError(t, err)

			recorded := 0
			out, err := p.Run(context.Background(), RunOptions{
				Progress:        func(done, _ int) { recorded = done },
				ShouldInterrupt: func() bool { return recorded >= k },
			})
			require.NoError(t, err)
			assert.Equal(t, StateInterrupted, p.State())
			assert.Equal(t, k, p.Recorded())

			labels, _ := out.Column("auto")
			for i, label := range labels {
				if i < k {
					assert.Equal(t, strings.ToUpper(string(rune('a'+i))), label)
				} else {
					assert.Equal(t, "old", label)
				}
			}
			assert.LessOrEqual(t, c.started, k+1, "no quote beyond the interruption point is started")
		})
	}
}

func TestRun_ContextCancelIsInterruption(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p, err := New(quoteTable("a", "b", "c"), "quote", "auto", &upperClassifier{}, nil)
	require.NoError(t, err)

	out, err := p.Run(ctx, RunOptions{Progress: func(done, _ int) {
		if done == 2 {
			cancel()
		}
	}})
	require.NoError(t, err)
	assert.Equal(t, StateInterrupted, p.State())
	assert.Equal(t, "old", out.Cell(2, "auto"))
	assert.Equal(t, "B", out.Cell(1, "auto"))
}

func TestRun_ClassifierErrorCarriesRow(t *testing.T) {
	p, err := New(quoteTable("a", "b", "c"), "quote", "auto", &upperClassifier{failAt: 2}, nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background(), RunOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "model unavailable")
	assert.Equal(t, StateFailed, p.State())

	_, err = p.Run(context.Background(), RunOptions{})
	assert.Error(t, err, "a pipeline runs once")
}

func TestRun_WithEmbeddingClassifier(t *testing.T) {
	constructs := []model.Construct{
		{Name: "Trust", Definition: "belief in reliability"},
		{Name: "Fear", Definition: "anxiety about risk"},
	}
	embedder := &testutil.FakeEmbedder{
		Vectors: map[string][]float64{
			"Trust. belief in reliability": {1, 0},
			"Fear. anxiety about risk":     {0, 1},
		},
		Default: []float64{0.3, 0.9},
	}
	c, err := classifier.New(classifier.KindEmbedding, constructs, classifier.Deps{Embedder: embedder}, classifier.Options{})
	require.NoError(t, err)

	p, err := New(quoteTable("I was scared to share my data"), "quote", "Classificação", c, nil)
	require.NoError(t, err)
	out, err := p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Fear", out.Cell(0, "Classificação"))
	assert.Regexp(t, `^Similaridade: 0\.\d{4}$`, out.Cell(0, "Classificação_justificativa"))
}

func TestExport(t *testing.T) {
	p, err := New(quoteTable("a", "b"), "quote", "auto", &upperClassifier{}, nil)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), RunOptions{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "results", "out.xlsx")
	got, err := p.Export(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	table, err := dataset.ReadSpreadsheet(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "quote", "auto", "auto_justificativa"}, table.Columns())
	assert.Equal(t, "B", table.Cell(1, "auto"))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "interrupted", StateInterrupted.String())
	assert.Equal(t, "state(9)", State(9).String())
}
