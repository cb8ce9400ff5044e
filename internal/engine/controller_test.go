package engine

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/constructo/internal/classifier"
	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/dataset"
	"github.com/Veraticus/constructo/internal/evaluation"
	"github.com/Veraticus/constructo/internal/llm"
	"github.com/Veraticus/constructo/internal/model"
	"github.com/Veraticus/constructo/internal/pipeline"
	"github.com/Veraticus/constructo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	err    error
	titles []string
	rows   []int
}

func (m *recordingMirror) WriteTable(_ context.Context, title string, table *model.Table) (string, error) {
	m.titles = append(m.titles, title)
	m.rows = append(m.rows, table.Len())
	if m.err != nil {
		return "", m.err
	}
	return "https://docs.google.com/spreadsheets/d/fake", nil
}

type harness struct {
	controller *Controller
	embedder   *testutil.FakeEmbedder
	client     *testutil.StaticClient
	mirror     *recordingMirror
	configs    []llm.Config
	outputDir  string
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()
	h := &harness{
		embedder: &testutil.FakeEmbedder{
			Vectors: map[string][]float64{
				"Trust. belief in reliability":  {1, 0},
				"Fear. anxiety about risk":      {0, 1},
				"belief in reliability":         {1, 0},
				"anxiety about risk":            {0, 1},
				"I was scared to share my data": {0.3, 0.9},
			},
			Default: []float64{0.9, 0.1},
		},
		client:    &testutil.StaticClient{Reply: "Constructo: Trust\nJustificativa: relies on them"},
		mirror:    &recordingMirror{},
		outputDir: filepath.Join(t.TempDir(), "results"),
	}
	cfg.OutputDir = h.outputDir
	h.controller = NewController(cfg,
		WithEmbedderFactory(func(llm.EmbeddingConfig, *slog.Logger) (llm.Embedder, error) {
			return h.embedder, nil
		}),
		WithClientFactory(func(c llm.Config, _ *slog.Logger) (llm.Client, error) {
			h.configs = append(h.configs, c)
			return h.client, nil
		}),
		WithMirror(h.mirror),
		WithClock(func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }),
	)
	return h
}

func (h *harness) load(t *testing.T) {
	t.Helper()
	path := testutil.WriteSheet(t, "entrevistas.xlsx",
		[]string{"quote", "Classificação manual", "auto"},
		[]string{"I was scared to share my data", "Fear", ""},
		[]string{"They always deliver", "Trust", ""},
		[]string{"I rely on their support", "Trust", ""},
	)
	columns, err := h.controller.LoadQuotes(path)
	require.NoError(t, err)
	require.Equal(t, []string{"quote", "Classificação manual", "auto"}, columns)

	h.controller.LoadConstructsManual([]model.Construct{
		{Name: "Trust", Definition: "belief in reliability"},
		{Name: "Fear", Definition: "anxiety about risk"},
	})
}

func TestController_ClassifyEmbedding(t *testing.T) {
	h := newHarness(t, Config{})
	h.load(t)

	res, err := h.controller.Classify(context.Background(), ClassifyRequest{
		QuoteColumn: "quote",
		ClassColumn: "auto",
		Classifier:  "EmbeddingQuoteClassifier",
		Mirror:      true,
	})
	require.NoError(t, err)

	assert.Equal(t, MessageCompleted, res.Message)
	assert.Equal(t, pipeline.StateCompleted, res.State)
	assert.Equal(t, 3, res.Recorded)
	assert.Equal(t, "EmbeddingQuoteClassifier", res.Classifier)
	assert.Empty(t, res.Model)
	assert.Empty(t, h.configs, "embedding runs build no chat client")
	assert.Equal(t, filepath.Join(h.outputDir, "entrevistas_EmbeddingQuoteClassifier_20240309_1405.xlsx"), res.Path)

	saved, err := dataset.ReadSpreadsheet(res.Path)
	require.NoError(t, err)
	labels, _ := saved.Column("auto")
	assert.Equal(t, []string{"Fear", "Trust", "Trust"}, labels)
	assert.True(t, saved.HasColumn("auto_justificativa"))

	table := h.controller.Session().Dataset.Table()
	assert.Equal(t, "Fear", table.Cell(0, "auto"), "the session keeps the classified table")

	assert.Equal(t, "https://docs.google.com/spreadsheets/d/fake", res.MirrorURL)
	assert.Equal(t, []string{"entrevistas_EmbeddingQuoteClassifier_20240309_1405"}, h.mirror.titles)
}

func TestController_ModelSelection(t *testing.T) {
	tests := []struct {
		name            string
		selection       string
		configuredModel string
		wantModel       string
		wantTemperature float64
		override        bool
	}{
		{name: "openai-3.5 is pinned", selection: "openai-3.5", configuredModel: "gpt-4o", wantModel: classifier.ModelGPT35, wantTemperature: 0.4},
		{name: "openai-4 is pinned", selection: "openai-4", configuredModel: "gpt-4o", wantModel: classifier.ModelGPT4, wantTemperature: 0.4},
		{name: "hybrid uses configured model", selection: "HybridQuoteClassifier", configuredModel: "claude-sonnet-4-5-20250929", wantModel: "claude-sonnet-4-5-20250929", wantTemperature: 0.4},
		{name: "hybrid defaults to gpt-4", selection: "hybrid", wantModel: classifier.ModelGPT4, wantTemperature: 0.4},
		{name: "similarity runs cold", selection: "ConstructSimilarityClassifier", wantModel: classifier.ModelGPT4, wantTemperature: 0},
		{name: "temperature override", selection: "llm", wantModel: classifier.ModelGPT4, wantTemperature: 0.9, override: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Config{
				LLM:                 llm.Config{Model: tt.configuredModel, Temperature: 0.9},
				OverrideTemperature: tt.override,
			})
			h.load(t)

			res, err := h.controller.Classify(context.Background(), ClassifyRequest{
				QuoteColumn: "quote", ClassColumn: "auto", Classifier: tt.selection,
			})
			require.NoError(t, err)
			require.Len(t, h.configs, 1)
			assert.Equal(t, tt.wantModel, h.configs[0].Model)
			assert.InDelta(t, tt.wantTemperature, h.configs[0].Temperature, 1e-9)
			assert.Equal(t, tt.wantModel, res.Model)
		})
	}
}

func TestController_FewShotNaming(t *testing.T) {
	h := newHarness(t, Config{})
	h.load(t)
	examplesPath := testutil.WriteSheet(t, "exemplos.xlsx",
		[]string{"Quote", "Constructo", "Justificativa"},
		[]string{"they never fail", "Trust", "reliability"},
	)
	msg, err := h.controller.LoadExamples(examplesPath, dataset.DefaultExampleColumns)
	require.NoError(t, err)
	assert.Equal(t, "✅ 1 exemplo(s) carregado(s) com sucesso.", msg)

	res, err := h.controller.Classify(context.Background(), ClassifyRequest{
		QuoteColumn: "quote", ClassColumn: "auto", Classifier: "openai-3.5",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(h.outputDir, "entrevistas_openai_3.5_FEW-SHOT_20240309_1405.xlsx"), res.Path)
	assert.Contains(t, h.client.Seen[0][0].Content, "they never fail")

	res, err = h.controller.Classify(context.Background(), ClassifyRequest{
		QuoteColumn: "quote", ClassColumn: "auto", Classifier: "EmbeddingQuoteClassifier",
	})
	require.NoError(t, err)
	assert.NotContains(t, res.Path, FewShotTag, "strategies without prompts ignore examples")
}

func TestController_Interrupt(t *testing.T) {
	h := newHarness(t, Config{})
	h.load(t)

	res, err := h.controller.Classify(context.Background(), ClassifyRequest{
		QuoteColumn: "quote",
		ClassColumn: "auto",
		Classifier:  "openai-4",
		Progress: func(done, _ int) {
			if done == 1 {
				h.controller.RequestInterrupt()
			}
		},
	})
	require.NoError(t, err)
	assert.Equal(t, pipeline.StateInterrupted, res.State)
	assert.Equal(t, "⚠️ Classificação interrompida: 1 de 3 quotes classificados.", res.Message)
	assert.Equal(t, 1, h.client.CallCount(), "no model call after the interruption")
	assert.FileExists(t, res.Path)

	h.controller.ResetInterrupt()
	assert.False(t, h.controller.ShouldInterrupt())
}

func TestController_ClassifyErrors(t *testing.T) {
	h := newHarness(t, Config{})
	ctx := context.Background()
	req := ClassifyRequest{QuoteColumn: "quote", ClassColumn: "auto", Classifier: "embedding"}

	_, err := h.controller.Classify(ctx, req)
	assert.ErrorIs(t, err, common.ErrDataNotLoaded)

	h.load(t)
	h.controller.LoadConstructsManual(nil)
	_, err = h.controller.Classify(ctx, req)
	assert.ErrorIs(t, err, common.ErrNoConstructs)

	h.load(t)
	_, err = h.controller.Classify(ctx, ClassifyRequest{QuoteColumn: "nonexistent", ClassColumn: "alsoNonexistent", Classifier: "embedding"})
	assert.ErrorIs(t, err, common.ErrColumnNotFound)

	_, err = h.controller.Classify(ctx, ClassifyRequest{QuoteColumn: "quote", ClassColumn: "nova", Classifier: "embedding"})
	assert.ErrorIs(t, err, common.ErrColumnNotFound)

	res, err := h.controller.Classify(ctx, ClassifyRequest{QuoteColumn: "quote", ClassColumn: "nova", Classifier: "embedding", CreateColumn: true})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Recorded)

	_, err = h.controller.Classify(ctx, ClassifyRequest{QuoteColumn: "quote", ClassColumn: "auto", Classifier: "deepseek-chat"})
	assert.ErrorIs(t, err, common.ErrUnknownClassifier)

	h.client.Err = errors.New("upstream down")
	_, err = h.controller.Classify(ctx, ClassifyRequest{QuoteColumn: "quote", ClassColumn: "auto", Classifier: "openai-4"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0")
}

func TestController_CreateColumnLeavesSessionOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		req     ClassifyRequest
		wantErr error
	}{
		{
			name:    "missing quote column",
			req:     ClassifyRequest{QuoteColumn: "nonexistent", ClassColumn: "nova", Classifier: "embedding", CreateColumn: true},
			wantErr: common.ErrColumnNotFound,
		},
		{
			name:    "unknown classifier",
			req:     ClassifyRequest{QuoteColumn: "quote", ClassColumn: "nova", Classifier: "deepseek-chat", CreateColumn: true},
			wantErr: common.ErrUnknownClassifier,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Config{})
			h.load(t)

			_, err := h.controller.Classify(context.Background(), tt.req)
			require.ErrorIs(t, err, tt.wantErr)

			table := h.controller.Session().Dataset.Table()
			assert.Equal(t, []string{"quote", "Classificação manual", "auto"}, table.Columns())
			assert.False(t, table.HasColumn("nova"))
		})
	}
}

func TestController_ClientFactoryError(t *testing.T) {
	h := newHarness(t, Config{})
	h.load(t)
	h.controller.newClient = func(llm.Config, *slog.Logger) (llm.Client, error) {
		return nil, common.ErrMissingConfig
	}

	_, err := h.controller.Classify(context.Background(), ClassifyRequest{
		QuoteColumn: "quote", ClassColumn: "auto", Classifier: "hybrid",
	})
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestController_EvaluateAfterClassify(t *testing.T) {
	h := newHarness(t, Config{})
	h.load(t)
	ctx := context.Background()

	_, err := h.controller.Classify(ctx, ClassifyRequest{QuoteColumn: "quote", ClassColumn: "auto", Classifier: "embedding"})
	require.NoError(t, err)

	res, err := h.controller.Evaluate(ctx, EvaluateRequest{
		ManualColumn: "Classificação manual",
		AutoColumn:   "auto",
		ResultColumn: "resultado",
		Mirror:       true,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Accuracy, 1e-9)
	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, filepath.Join(h.outputDir, "entrevistas_avaliado_20240309_140507.xlsx"), res.SpreadsheetPath)
	assert.Equal(t, []int{4}, h.mirror.rows, "the mirrored table carries the sentinel row")
	assert.NoError(t, res.MirrorErr)
}

func TestController_EvaluateGuessesAutoColumn(t *testing.T) {
	h := newHarness(t, Config{})
	path := testutil.WriteSheet(t, "avaliar.xlsx",
		[]string{"quote", "manual", "Classificação IA"},
		[]string{"q1", "a", "a"},
		[]string{"q2", "b", "b"},
		[]string{"q3", "a", "b"},
	)
	_, err := h.controller.LoadQuotes(path)
	require.NoError(t, err)
	assert.Equal(t, "Classificação IA", h.controller.ClassificationColumn())

	h.mirror.err = errors.New("quota exceeded")
	res, err := h.controller.Evaluate(context.Background(), EvaluateRequest{ManualColumn: "manual", Mirror: true})
	require.NoError(t, err)
	assert.True(t, h.controller.Session().Dataset.Table().HasColumn(evaluation.DefaultResultColumn))
	assert.InDelta(t, 2.0/3.0, res.Accuracy, 1e-9)
	assert.Equal(t, 1, res.Incorrect)
	assert.Error(t, res.MirrorErr, "mirror failures do not fail the evaluation")
}

func TestController_EvaluateNotLoaded(t *testing.T) {
	h := newHarness(t, Config{})
	_, err := h.controller.Evaluate(context.Background(), EvaluateRequest{ManualColumn: "m", AutoColumn: "a", ResultColumn: "r"})
	assert.ErrorIs(t, err, common.ErrDataNotLoaded)
}

func TestController_MirrorNotConfigured(t *testing.T) {
	h := newHarness(t, Config{})
	h.controller.mirror = nil
	h.load(t)

	res, err := h.controller.Classify(context.Background(), ClassifyRequest{
		QuoteColumn: "quote", ClassColumn: "auto", Classifier: "embedding", Mirror: true,
	})
	require.NoError(t, err)
	assert.Error(t, res.MirrorErr)
	assert.Empty(t, res.MirrorURL)
}

func TestSession(t *testing.T) {
	h := newHarness(t, Config{})
	c := h.controller
	h.load(t)

	assert.Equal(t, "Escopo salvo:\n\n**privacidade de dados**", c.SaveScope("  privacidade de dados "))
	c.SetExamples([]model.Example{{Quote: "q", Construct: "c", Justification: "j"}})
	c.RequestInterrupt()
	assert.True(t, c.ShouldInterrupt())

	firstID := c.Session().ID
	c.Reset()

	s := c.Session()
	assert.NotEqual(t, firstID, s.ID)
	assert.Empty(t, s.Scope)
	assert.Empty(t, s.Examples)
	assert.False(t, s.ShouldInterrupt())
	assert.False(t, s.Dataset.Loaded())
	assert.Zero(t, s.Constructs.Len())
}

func TestLoadConstructsFromFile(t *testing.T) {
	h := newHarness(t, Config{})
	path := testutil.WriteSheet(t, "constructos.xlsx",
		[]string{"Constructo", "Definição"},
		[]string{"Autonomia", "escolha própria"},
	)
	summary, err := h.controller.LoadConstructsFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "**Autonomia**: escolha própria\n", summary)

	_, err = h.controller.LoadConstructsFromFile(filepath.Join(t.TempDir(), "constructos.csv"))
	assert.ErrorIs(t, err, common.ErrFormat)
}
