package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/llm"
	"github.com/Veraticus/constructo/internal/model"
)

// similarityClassifier scores the two constructs nearest by definition
// embedding with both cosine similarity and a model-rated percentage, and
// reports both with their blended score.
type similarityClassifier struct {
	embedder   llm.Embedder
	client     llm.Client
	constructs []model.Construct
	opts       Options
}

func (c *similarityClassifier) Name() string { return "ConstructSimilarityClassifier" }

func definitionText(c model.Construct) string { return c.Definition }

func (c *similarityClassifier) Classify(ctx context.Context, quotes []string, emit EmitFunc) error {
	if len(quotes) == 0 {
		return nil
	}

	vectors, err := embedAll(ctx, c.embedder, c.constructs, definitionText)
	if err != nil {
		return err
	}

	for i, quote := range quotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()

		qvec, err := c.embedder.Embed(ctx, quote)
		if err != nil {
			return err
		}
		candidates := top(rank(qvec, c.constructs, vectors), similarityCandidates)

		labels := make([]string, 0, len(candidates))
		blocks := make([]string, 0, len(candidates))
		for _, cand := range candidates {
			llmScore, justification, err := c.rate(ctx, cand.construct, quote)
			if err != nil {
				return err
			}

			embScore := cand.score * 100
			blended := *c.opts.EmbeddingWeight*embScore + *c.opts.LLMWeight*llmScore
			labels = append(labels, fmt.Sprintf("%s (%.2f%%)", cand.construct.Name, blended))
			blocks = append(blocks, fmt.Sprintf("→ %s:\n  Emb: %.2f%%, LLM: %.2f%%, Média: %.2f%%\n  Justificativa: %s",
				cand.construct.Name, embScore, llmScore, blended, justification))
		}

		if err := emit(i, model.Result{
			Label:         strings.Join(labels, ", "),
			Justification: strings.Join(blocks, "\n"),
			Elapsed:       time.Since(start),
		}); err != nil {
			return err
		}
	}
	return nil
}

// rate asks the model how well quote matches construct. A failed call scores
// 0 with the error as justification; cancellation is still returned.
func (c *similarityClassifier) rate(ctx context.Context, construct model.Construct, quote string) (float64, string, error) {
	prompt := similarityPrompt(c.opts.Scope, construct.Definition, c.opts.Examples, quote)
	response, err := c.client.Complete(ctx, []llm.Message{llm.User(prompt)})
	if err != nil {
		if ctx.Err() != nil || common.IsCanceled(err) {
			return 0, "", err
		}
		c.opts.Logger.Warn("similarity rating failed", "construct", construct.Name, "error", err)
		return 0, "⚠️ Erro ao consultar o modelo: " + err.Error(), nil
	}

	score, justification := llm.ParseSimilarityResponse(response)
	return score, justification, nil
}
