// Package classifier implements the quote classification strategies: pure
// embedding similarity, pure LLM prompting, embedding-guided LLM prompting and
// the dual construct-similarity scorer.
package classifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/constructo/internal/common"
	"github.com/Veraticus/constructo/internal/llm"
	"github.com/Veraticus/constructo/internal/model"
)

// EmitFunc receives the result for quotes[index]. Results arrive in input
// order. A non-nil error stops the run and is returned by Classify.
type EmitFunc func(index int, result model.Result) error

// Classifier labels quotes with constructs.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, quotes []string, emit EmitFunc) error
}

// Collect runs c over quotes and gathers the aligned outputs.
func Collect(ctx context.Context, c Classifier, quotes []string) (model.Batch, error) {
	batch := model.Batch{
		Labels:         make([]string, 0, len(quotes)),
		Justifications: make([]string, 0, len(quotes)),
	}
	err := c.Classify(ctx, quotes, func(_ int, r model.Result) error {
		batch.Append(r)
		return nil
	})
	return batch, err
}

// Kind identifies a classification strategy.
type Kind string

// Supported strategies.
const (
	KindEmbedding           Kind = "embedding"
	KindLLM                 Kind = "llm"
	KindHybrid              Kind = "hybrid"
	KindConstructSimilarity Kind = "similarity"
)

// UsesLLM reports whether the strategy needs a chat client.
func (k Kind) UsesLLM() bool {
	return k != KindEmbedding
}

// UsesEmbeddings reports whether the strategy needs an embedder.
func (k Kind) UsesEmbeddings() bool {
	return k != KindLLM
}

// UsesExamples reports whether few-shot examples reach the prompt.
func (k Kind) UsesExamples() bool {
	return k.UsesLLM()
}

// Temperature is the sampling temperature the strategy's prompts are tuned for.
func (k Kind) Temperature() float64 {
	if k == KindConstructSimilarity {
		return 0
	}
	return 0.4
}

// Default chat models for selections that do not name one.
const (
	ModelGPT35 = "gpt-3.5-turbo"
	ModelGPT4  = "gpt-4"
)

// Selection is a user-facing classifier choice resolved to a strategy and model.
type Selection struct {
	ID    string
	Kind  Kind
	Model string
	// Pinned is true when the identifier itself fixes the model.
	Pinned bool
}

// Selections lists the identifiers offered to users, in display order.
var Selections = []string{
	"EmbeddingQuoteClassifier",
	"openai-3.5",
	"openai-4",
	"HybridQuoteClassifier",
	"ConstructSimilarityClassifier",
}

// ParseSelection resolves a classifier identifier. Both the long names and
// the short kinds are accepted, ignoring case.
func ParseSelection(id string) (Selection, error) {
	trimmed := strings.TrimSpace(id)
	sel := Selection{ID: trimmed, Model: ModelGPT4}

	switch strings.ToLower(trimmed) {
	case "embeddingquoteclassifier", string(KindEmbedding):
		sel.Kind = KindEmbedding
		sel.Model = ""
	case "openai-3.5":
		sel.Kind = KindLLM
		sel.Model = ModelGPT35
		sel.Pinned = true
	case "openai-4":
		sel.Kind = KindLLM
		sel.Pinned = true
	case "llmquoteclassifier", string(KindLLM):
		sel.Kind = KindLLM
	case "hybridquoteclassifier", string(KindHybrid):
		sel.Kind = KindHybrid
	case "constructsimilarityclassifier", string(KindConstructSimilarity):
		sel.Kind = KindConstructSimilarity
	default:
		return Selection{}, fmt.Errorf("%w: %q", common.ErrUnknownClassifier, id)
	}
	return sel, nil
}

// Deps are the model services a strategy may call.
type Deps struct {
	Embedder llm.Embedder
	Client   llm.Client
}

// Options tune a strategy.
type Options struct {
	Scope    string
	Examples []model.Example
	// TopN is how many constructs the hybrid strategy shows the model.
	TopN int
	// Similarity blend weights. A nil weight takes its default on its own.
	EmbeddingWeight *float64
	LLMWeight       *float64
	Logger          *slog.Logger
}

// Defaults for Options fields left at zero.
const (
	DefaultTopN            = 2
	DefaultEmbeddingWeight = 0.4
	DefaultLLMWeight       = 0.6
	similarityCandidates   = 2
)

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.EmbeddingWeight == nil {
		o.EmbeddingWeight = Weight(DefaultEmbeddingWeight)
	}
	if o.LLMWeight == nil {
		o.LLMWeight = Weight(DefaultLLMWeight)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Weight returns a pointer to w for the Options blend weights.
func Weight(w float64) *float64 {
	return &w
}

// New builds the strategy for kind over the given constructs.
func New(kind Kind, constructs []model.Construct, deps Deps, opts Options) (Classifier, error) {
	if len(constructs) == 0 {
		return nil, common.ErrNoConstructs
	}
	if kind.UsesEmbeddings() && deps.Embedder == nil {
		return nil, fmt.Errorf("%w: %s classifier needs an embedder", common.ErrInvalidConfig, kind)
	}
	if kind.UsesLLM() && deps.Client == nil {
		return nil, fmt.Errorf("%w: %s classifier needs a language model client", common.ErrInvalidConfig, kind)
	}

	opts = opts.withDefaults()
	cs := make([]model.Construct, len(constructs))
	copy(cs, constructs)

	switch kind {
	case KindEmbedding:
		return &embeddingClassifier{constructs: cs, embedder: deps.Embedder}, nil
	case KindLLM:
		return &llmClassifier{constructs: cs, client: deps.Client, opts: opts}, nil
	case KindHybrid:
		return &hybridClassifier{constructs: cs, embedder: deps.Embedder, client: deps.Client, opts: opts}, nil
	case KindConstructSimilarity:
		return &similarityClassifier{constructs: cs, embedder: deps.Embedder, client: deps.Client, opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownClassifier, kind)
	}
}
