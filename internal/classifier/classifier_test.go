package classifier

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/llm"
	"github.com/Veraticus/constructo/internal/model"
	"github.com/Veraticus/constructo/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var trustFear = []model.Construct{
	{Name: "Trust", Definition: "belief in reliability"},
	{Name: "Fear", Definition: "anxiety about risk"},
}

func trustFearEmbedder() *testutil.FakeEmbedder {
	return &testutil.FakeEmbedder{
		Vectors: map[string][]float64{
			"Trust. belief in reliability":   {1, 0},
			"Fear. anxiety about risk":       {0, 1},
			"belief in reliability":          {1, 0},
			"anxiety about risk":             {0, 1},
			"I was scared to share my data":  {0.3, 0.9},
			"I rely on them to keep it safe": {0.9, 0.2},
		},
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		id        string
		wantKind  Kind
		wantModel string
		pinned    bool
		wantErr   bool
	}{
		{id: "EmbeddingQuoteClassifier", wantKind: KindEmbedding},
		{id: "embedding", wantKind: KindEmbedding},
		{id: "openai-3.5", wantKind: KindLLM, wantModel: ModelGPT35, pinned: true},
		{id: "openai-4", wantKind: KindLLM, wantModel: ModelGPT4, pinned: true},
		{id: "llm", wantKind: KindLLM, wantModel: ModelGPT4},
		{id: "HybridQuoteClassifier", wantKind: KindHybrid, wantModel: ModelGPT4},
		{id: " hybrid ", wantKind: KindHybrid, wantModel: ModelGPT4},
		{id: "ConstructSimilarityClassifier", wantKind: KindConstructSimilarity, wantModel: ModelGPT4},
		{id: "similarity", wantKind: KindConstructSimilarity, wantModel: ModelGPT4},
		{id: "deepseek-chat", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			sel, err := ParseSelection(tt.id)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrUnknownClassifier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, sel.Kind)
			assert.Equal(t, tt.wantModel, sel.Model)
			assert.Equal(t, tt.pinned, sel.Pinned)
		})
	}

	for _, id := range Selections {
		_, err := ParseSelection(id)
		assert.NoError(t, err, id)
	}
}

func TestKindCapabilities(t *testing.T) {
	assert.False(t, KindEmbedding.UsesLLM())
	assert.False(t, KindEmbedding.UsesExamples())
	assert.False(t, KindLLM.UsesEmbeddings())
	assert.True(t, KindHybrid.UsesEmbeddings())
	assert.True(t, KindHybrid.UsesLLM())
	assert.InDelta(t, 0.0, KindConstructSimilarity.Temperature(), 1e-9)
	assert.InDelta(t, 0.4, KindLLM.Temperature(), 1e-9)
}

func TestNew_Validation(t *testing.T) {
	emb := trustFearEmbedder()
	client := &testutil.StaticClient{}

	_, err := New(KindEmbedding, nil, Deps{Embedder: emb}, Options{})
	assert.ErrorIs(t, err, common.ErrNoConstructs)

	_, err = New(KindHybrid, trustFear, Deps{Client: client}, Options{})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = New(KindLLM, trustFear, Deps{Embedder: emb}, Options{})
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = New(Kind("bogus"), trustFear, Deps{Embedder: emb, Client: client}, Options{})
	assert.ErrorIs(t, err, common.ErrUnknownClassifier)

	c, err := New(KindLLM, trustFear, Deps{Client: client}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "LLMQuoteClassifier", c.Name())
}

func TestEmbeddingClassifier(t *testing.T) {
	c, err := New(KindEmbedding, trustFear, Deps{Embedder: trustFearEmbedder()}, Options{})
	require.NoError(t, err)

	batch, err := Collect(context.Background(), c, []string{"I was scared to share my data", "I rely on them to keep it safe"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Fear", "Trust"}, batch.Labels)
	assert.Regexp(t, regexp.MustCompile(`^Similaridade: 0\.\d{4}$`), batch.Justifications[0])
	assert.Equal(t, "Similaridade: 0.9487", batch.Justifications[0])
	assert.Len(t, batch.Durations, 2)
}

func TestEmbeddingClassifier_Deterministic(t *testing.T) {
	embedder, err := llm.NewEmbedder(llm.EmbeddingConfig{Provider: llm.ProviderLocal}, nil)
	require.NoError(t, err)
	defer llm.Close(embedder)

	c, err := New(KindEmbedding, trustFear, Deps{Embedder: embedder}, Options{})
	require.NoError(t, err)

	quotes := []string{"I trust the reliability of this bank", "risk makes me anxious", "neutral words"}
	first, err := Collect(context.Background(), c, quotes)
	require.NoError(t, err)
	second, err := Collect(context.Background(), c, quotes)
	require.NoError(t, err)

	assert.Equal(t, first.Labels, second.Labels)
	assert.Equal(t, first.Justifications, second.Justifications)
	assert.Len(t, first.Labels, len(quotes))
}

func TestEmptyQuotesMakeNoCalls(t *testing.T) {
	emb := trustFearEmbedder()
	client := &testutil.StaticClient{Reply: "x"}

	for _, kind := range []Kind{KindEmbedding, KindLLM, KindHybrid, KindConstructSimilarity} {
		t.Run(string(kind), func(t *testing.T) {
			c, err := New(kind, trustFear, Deps{Embedder: emb, Client: client}, Options{})
			require.NoError(t, err)

			batch, err := Collect(context.Background(), c, nil)
			require.NoError(t, err)
			assert.Zero(t, batch.Len())
		})
	}
	assert.Empty(t, emb.Calls())
	assert.Zero(t, client.CallCount())
}

func TestLLMClassifier(t *testing.T) {
	client := &testutil.MockClient{}
	client.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []llm.Message) bool {
		return strings.Contains(msgs[0].Content, "scared")
	})).Return("Constructo: Fear\nJustificativa: mentions being scared", nil)
	client.On("Complete", mock.Anything, mock.Anything).Return("Trust", nil)

	c, err := New(KindLLM, trustFear, Deps{Client: client}, Options{Scope: "privacidade"})
	require.NoError(t, err)

	batch, err := Collect(context.Background(), c, []string{"I was scared to share my data", "I rely on them"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Fear", "Trust"}, batch.Labels)
	assert.Equal(t, []string{"mentions being scared", llm.MissingJustification}, batch.Justifications)

	prompt := client.Calls[0].Arguments.Get(1).([]llm.Message)[0].Content
	assert.Contains(t, prompt, "Com base no escopo: privacidade")
	assert.Contains(t, prompt, "Trust: belief in reliability\nFear: anxiety about risk")
	assert.Contains(t, prompt, `"I was scared to share my data"`)
	assert.NotContains(t, prompt, "exemplos")
}

func TestLLMClassifier_FewShotPrompt(t *testing.T) {
	client := &testutil.StaticClient{Reply: "Constructo: Trust | Justificativa: ok"}
	examples := []model.Example{{Quote: "they never fail", Construct: "Trust", Justification: "reliability"}}

	c, err := New(KindLLM, trustFear, Deps{Client: client}, Options{Scope: "s", Examples: examples})
	require.NoError(t, err)

	batch, err := Collect(context.Background(), c, []string{"q"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Trust"}, batch.Labels)

	prompt := client.Seen[0][0].Content
	assert.Contains(t, prompt, "A seguir, veja alguns exemplos")
	assert.Contains(t, prompt, "Quote: \"they never fail\"\nConstructo: Trust\nJustificativa: reliability\n")
	assert.Contains(t, prompt, "Agora classifique o seguinte trecho:\n\"q\"")
}

func TestLLMClassifier_ErrorStopsRun(t *testing.T) {
	client := &testutil.StaticClient{Err: errors.New("boom")}
	c, err := New(KindLLM, trustFear, Deps{Client: client}, Options{})
	require.NoError(t, err)

	batch, err := Collect(context.Background(), c, []string{"a", "b"})
	require.Error(t, err)
	assert.Zero(t, batch.Len())
	assert.Equal(t, 1, client.CallCount())
}

func TestHybridClassifier(t *testing.T) {
	constructs := append([]model.Construct{{Name: "Joy", Definition: "happiness"}}, trustFear...)
	emb := trustFearEmbedder()
	emb.Vectors["Joy. happiness"] = []float64{-1, -1}
	client := &testutil.StaticClient{Reply: "Constructo: Fear\nJustificativa: scared"}
	examples := []model.Example{{Quote: "ex", Construct: "Trust", Justification: "because"}}

	c, err := New(KindHybrid, constructs, Deps{Embedder: emb, Client: client}, Options{Scope: "escopo", Examples: examples})
	require.NoError(t, err)

	batch, err := Collect(context.Background(), c, []string{"I was scared to share my data"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fear"}, batch.Labels)
	assert.Equal(t, []string{"scared"}, batch.Justifications)

	msgs := client.Seen[0]
	require.Len(t, msgs, 4)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, "Você é um assistente treinado em análise qualitativa.\nEscopo: escopo\nConstructos mais similares:\nFear: anxiety about risk\nTrust: belief in reliability", msgs[0].Content)
	assert.NotContains(t, msgs[0].Content, "Joy")
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: `Quote: "ex"`}, msgs[1])
	assert.Equal(t, llm.Message{Role: llm.RoleAssistant, Content: "Constructo: Trust\nJustificativa: because"}, msgs[2])
	assert.Equal(t, "Quote: \"I was scared to share my data\"\nClassifique o trecho com Constructo e Justificativa.", msgs[3].Content)
}

func TestSimilarityClassifier(t *testing.T) {
	client := &testutil.MockClient{}
	client.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []llm.Message) bool {
		return strings.Contains(msgs[0].Content, "anxiety about risk")
	})).Return("Similaridade: 90%\nJustificativa: fala de medo", nil)
	client.On("Complete", mock.Anything, mock.Anything).Return("Similaridade: 10%\nJustificativa: pouco", nil)

	emb := trustFearEmbedder()
	c, err := New(KindConstructSimilarity, trustFear, Deps{Embedder: emb, Client: client}, Options{})
	require.NoError(t, err)

	batch, err := Collect(context.Background(), c, []string{"I was scared to share my data"})
	require.NoError(t, err)

	// Fear: emb 94.87, llm 90 -> 0.4*94.87 + 0.6*90 = 91.95
	// Trust: emb 31.62, llm 10 -> 0.4*31.62 + 0.6*10 = 18.65
	assert.Equal(t, []string{"Fear (91.95%), Trust (18.65%)"}, batch.Labels)
	assert.Equal(t,
		"→ Fear:\n  Emb: 94.87%, LLM: 90.00%, Média: 91.95%\n  Justificativa: fala de medo\n"+
			"→ Trust:\n  Emb: 31.62%, LLM: 10.00%, Média: 18.65%\n  Justificativa: pouco",
		batch.Justifications[0])

	assert.Contains(t, emb.Calls(), "anxiety about risk", "definitions are embedded without the name")
	prompt := client.Calls[0].Arguments.Get(1).([]llm.Message)[0].Content
	assert.Contains(t, prompt, "Contexto da pesquisa: Sem escopo definido.")
}

func TestSimilarityClassifier_WeightsDefaultIndependently(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{
			name: "only embedding weight set",
			opts: Options{EmbeddingWeight: Weight(0.5)},
			want: "Fear (101.43%), Trust (21.81%)",
		},
		{
			name: "only model weight set",
			opts: Options{LLMWeight: Weight(0.5)},
			want: "Fear (82.95%), Trust (17.65%)",
		},
		{
			name: "explicit zero embedding weight",
			opts: Options{EmbeddingWeight: Weight(0), LLMWeight: Weight(1)},
			want: "Fear (90.00%), Trust (10.00%)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &testutil.MockClient{}
			client.On("Complete", mock.Anything, mock.MatchedBy(func(msgs []llm.Message) bool {
				return strings.Contains(msgs[0].Content, "anxiety about risk")
			})).Return("Similaridade: 90%\nJustificativa: medo", nil)
			client.On("Complete", mock.Anything, mock.Anything).Return("Similaridade: 10%\nJustificativa: pouco", nil)

			c, err := New(KindConstructSimilarity, trustFear, Deps{Embedder: trustFearEmbedder(), Client: client}, tt.opts)
			require.NoError(t, err)

			batch, err := Collect(context.Background(), c, []string{"I was scared to share my data"})
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, batch.Labels)
		})
	}
}

func TestSimilarityClassifier_ModelFailureScoresZero(t *testing.T) {
	client := &testutil.StaticClient{Err: errors.New("timeout talking to model")}
	c, err := New(KindConstructSimilarity, trustFear, Deps{Embedder: trustFearEmbedder(), Client: client}, Options{})
	require.NoError(t, err)

	batch, err := Collect(context.Background(), c, []string{"I was scared to share my data"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Fear (37.95%), Trust (12.65%)"}, batch.Labels)
	assert.Contains(t, batch.Justifications[0], "⚠️ Erro ao consultar o modelo: timeout talking to model")
}

func TestSimilarityClassifier_CancellationAborts(t *testing.T) {
	client := &testutil.StaticClient{Err: context.Canceled}
	c, err := New(KindConstructSimilarity, trustFear, Deps{Embedder: trustFearEmbedder(), Client: client}, Options{})
	require.NoError(t, err)

	_, err = Collect(context.Background(), c, []string{"I was scared to share my data"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify_EmitErrorStopsBeforeNextCall(t *testing.T) {
	client := &testutil.StaticClient{Reply: "Constructo: Trust | Justificativa: j"}
	c, err := New(KindLLM, trustFear, Deps{Client: client}, Options{})
	require.NoError(t, err)

	stop := errors.New("stop")
	var got []int
	err = c.Classify(context.Background(), []string{"a", "b", "c"}, func(i int, _ model.Result) error {
		got = append(got, i)
		if i == 1 {
			return stop
		}
		return nil
	})
	require.ErrorIs(t, err, stop)
	assert.Equal(t, []int{0, 1}, got)
	assert.Equal(t, 2, client.CallCount())
}
