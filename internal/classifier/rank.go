package classifier

import (
	"context"
	"fmt"
	"sort"

	"github.com/Veraticus/constructo/internal/llm"
	"github.com/Veraticus/constructo/internal/model"
)

type scored struct {
	construct model.Construct
	score     float64
}

// embedAll embeds text(c) for every construct, in order.
func embedAll(ctx context.Context, e llm.Embedder, constructs []model.Construct, text func(model.Construct) string) ([][]float64, error) {
	vectors := make([][]float64, len(constructs))
	for i, c := range constructs {
		vec, err := e.Embed(ctx, text(c))
		if err != nil {
			return nil, fmt.Errorf("embedding construct %q: %w", c.Name, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// rank orders constructs by cosine similarity to quote, best first. Ties keep
// construct order.
func rank(quote []float64, constructs []model.Construct, vectors [][]float64) []scored {
	out := make([]scored, len(constructs))
	for i, c := range constructs {
		out[i] = scored{construct: c, score: llm.Cosine(quote, vectors[i])}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out
}

func top(ranked []scored, n int) []scored {
	return ranked[:min(n, len(ranked))]
}
