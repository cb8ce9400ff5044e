package llm

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultHashDimensions is the vector size of the local hashing embedder.
const DefaultHashDimensions = 512

// Cosine returns the cosine similarity of a and b. Vectors of different
// length or with zero norm have similarity 0.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// hashEmbedder is an offline embedder based on signed feature hashing of
// word unigrams and bigrams. It needs no network access and is deterministic.
type hashEmbedder struct {
	dims int
}

func newHashEmbedder(dims int) *hashEmbedder {
	if dims <= 0 {
		dims = DefaultHashDimensions
	}
	return &hashEmbedder{dims: dims}
}

// Embed hashes the tokens of text into a unit-length vector.
func (h *hashEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float64, h.dims)
	tokens := tokenize(text)
	for i, tok := range tokens {
		h.add(vec, tok, 1)
		if i > 0 {
			h.add(vec, tokens[i-1]+" "+tok, 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

func (h *hashEmbedder) add(vec []float64, feature string, weight float64) {
	hasher := fnv.New64a()
	_, _ = hasher.Write([]byte(feature))
	sum := hasher.Sum64()
	idx := int(sum % uint64(h.dims))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
