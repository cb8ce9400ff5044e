package classifier

import (
	"context"
	"time"

	"github.com/Veraticus/constructo/internal/llm"
	"github.com/Veraticus/constructo/internal/model"
)

// llmClassifier shows the model every construct and asks for one label.
type llmClassifier struct {
	client     llm.Client
	constructs []model.Construct
	opts       Options
}

func (c *llmClassifier) Name() string { return "LLMQuoteClassifier" }

func (c *llmClassifier) Classify(ctx context.Context, quotes []string, emit EmitFunc) error {
	for i, quote := range quotes {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()

		prompt := llmPrompt(c.opts.Scope, c.constructs, c.opts.Examples, quote)
		response, err := c.client.Complete(ctx, []llm.Message{llm.User(prompt)})
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
