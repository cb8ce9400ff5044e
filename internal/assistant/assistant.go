// Package assistant answers free-form questions about which classifier and
// model suit a research project.
package assistant

import (
	"context"
	"errors"
	"strings"

	"github.com/Veraticus/constructo/internal/llm"
)

// Model and Temperature are the chat settings the assistant prompt is tuned for.
const (
	Model       = "gpt-4"
	Temperature = 0.3
)

// DefaultHistory is how many previous exchanges are replayed with each question.
const DefaultHistory = 5

// SystemPrompt describes the available classifiers and models.
const SystemPrompt = `Você é um assistente especializado em ajudar pesquisadores a escolher o melhor classificador para análise de quotes em pesquisa qualitativa.

A ferramenta possui os seguintes classificadores:
- EmbeddingQuoteClassifier: rápido, baseado apenas em similaridade semântica (sem justificativas).
- LLMQuoteClassifier: usa apenas modelo LLM (ex: GPT-3.5, GPT-4, Deepseek), fornece justificativas.
- HybridQuoteClassifier: combina embeddings + LLM, indica o constructo mais aderente com justificativa.
- ConstructSimilarityClassifier: combina embeddings + LLM, retorna os dois constructos mais próximos com justificativas e percentuais.

Modelos disponíveis:
- openai-3.5: mais barato, bom desempenho.
- openai-4: mais preciso, custo médio.
- gpt-4o: mais rápido e mais barato que o gpt-4.
- deepseek-chat: alternativa não OpenAI, custo competitivo.

Responda perguntas livres dos usuários, explicando diferenças entre os classificadores, sugerindo escolhas com base no número de quotes, necessidade de justificativa, tempo ou custo.
Seja claro e direto. Quando for o caso, sugira um classificador e um modelo.`

// ErrEmptyQuestion is returned for blank questions.
var ErrEmptyQuestion = errors.New("empty question")

// Assistant keeps a short conversation with the model.
type Assistant struct {
	client     llm.Client
	history    []llm.Message
	maxHistory int
}

// New returns an assistant replaying up to DefaultHistory exchanges.
func New(client llm.Client) *Assistant {
	return &Assistant{client: client, maxHistory: DefaultHistory}
}

// ConfigFor adapts base to the assistant's model and temperature. A model
// configured explicitly in base is kept.
func ConfigFor(base llm.Config) llm.Config {
	if base.Model == "" {
		base.Model = Model
	}
	base.Temperature = Temperature
	return base
}

// Ask sends question with the recent conversation and returns the answer.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	messages := make([]llm.Message, 0, len(a.history)+2)
	messages = append(messages, llm.System(SystemPrompt))
	messages = append(messages, a.history...)
	messages = append(messages, llm.User(question))

	answer, err := a.client.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)

	a.history = append(a.history, llm.User(question), llm.Assistant(answer))
	if excess := len(a.history) - 2*a.maxHistory; excess > 0 {
		a.history = a.history[excess:]
	}
	return answer, nil
}

// Reset forgets the conversation.
func (a *Assistant) Reset() {
	a.history = nil
}
