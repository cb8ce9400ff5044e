package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/constructo/internal/llm"
	"github.com/Veraticus/constructo/internal/model"
)

// embeddingClassifier picks the construct whose "name. definition" embedding
// is closest to the quote. It makes no chat calls.
type embeddingClassifier struct {
	embedder   llm.Embedder
	constructs []model.Construct
}

func (c *embeddingClassifier) Name() string { return "EmbeddingQuoteClassifier" }

func (c *embeddingClassifier) Classify(ctx context.Context, quotes []string, emit EmitFunc) error {
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
		best := rank(qvec, c.constructs, vectors)[0]

		if err := emit(i, model.Result{
			Label:         best.construct.Name,
			Justification: fmt.Sprintf("Similaridade: %.4f", best.score),
			Elapsed:       time.Since(start),
		}); err != nil {
			return err
		}
	}
	return nil
}
