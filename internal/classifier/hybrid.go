package classifier

import (
	"context"
	"time"

	"github.com/Veraticus/constructo/internal/llm"
	"github.com/Veraticus/constructo/internal/model"
)

// hybridClassifier narrows the constructs to the TopN nearest by embedding
// and lets the model choose among them.
type hybridClassifier struct {
	embedder   llm.Embedder
	client     llm.Client
	constructs []model.Construct
	opts       Options
}

func (c *hybridClassifier) Name() string { return "HybridQuoteClassifier" }

func (c *hybridClassifier) Classify(ctx context.Context, quotes []string, emit EmitFunc) error {
	if len(quotes) == 0 {
		return nil
	}

	vectors, err := embedAll(ctx, c.embedder, c.constructs, model.Construct.EmbeddingText)
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
		candidates := top(rank(qvec, c.constructs, vectors), c.opts.TopN)

		response, err := c.client.Complete(ctx, c.messages(candidates, quote))
		if err != nil {
			return err
		}
		label, justification := llm.ParseLabelResponse(response)

		if err := emit(i, model.Result{Label: label, Justification: justification, Elapsed: time.Since(start)}); err != nil {
			return err
		}
	}
	return nil
}

func (c *hybridClassifier) messages(candidates []scored, quote string) []llm.Message {
	msgs := make([]llm.Message, 0, 2+2*len(c.opts.Examples))
	msgs = append(msgs, llm.System(hybridSystemPrompt(c.opts.Scope, candidates)))
	for _, ex := range c.opts.Examples {
		human, assistant := hybridExampleTurns(ex)
		msgs = append(msgs, llm.User(human), llm.Assistant(assistant))
	}
	return append(msgs, llm.User(hybridQuestion(quote)))
}
