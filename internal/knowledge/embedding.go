package knowledge

import (
	"context"
	"errors"
	"math"
	"sort"

	"pet-doctor/internal/common/logger"
)

// EmbeddingRetriever ranks passages by cosine distance to the query.
type EmbeddingRetriever struct {
	passages []Passage
	embedder Embedder
	fallback *KeywordRetriever
	logger   logger.Logger
}

// NewEmbeddingRetriever embeds every corpus passage up front.
func NewEmbeddingRetriever(ctx context.Context, corpus *Corpus, embedder Embedder, fallback *KeywordRetriever, log logger.Logger) (*EmbeddingRetriever, error) {
	if corpus == nil || len(corpus.Passages) == 0 {
		return nil, errors.New("embedding retriever needs at least one passage")
	}
	passages, err := embedCorpus(ctx, corpus, embedder)
	if err != nil {
		return nil, err
	}
	return &EmbeddingRetriever{
		passages: passages,
		embedder: embedder,
		fallback: fallback,
		logger:   log,
	}, nil
}

// Retrieve returns the k nearest passages, ties broken by corpus order. A
// failed query embedding answers from the keyword table instead.
func (r *EmbeddingRetriever) Retrieve(ctx context.Context, query string, k int) []string {
	if k <= 0 {
		return nil
	}

	qvec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("query embedding failed, using keyword lookup", map[string]interface{}{
			"error": err.Error(),
		})
		return r.fallback.Retrieve(ctx, query, k)
	}
	if want := len(r.passages[0].Embedding); len(qvec) != want {
		r.logger.Warn("query embedding dimension mismatch, using keyword lookup", map[string]interface{}{
			"queryDims":  len(qvec),
			"corpusDims": want,
		})
		return r.fallback.Retrieve(ctx, query, k)
	}

	type scored struct {
		idx  int
		dist float64
	}
	ranked := make([]scored, len(r.passages))
	for i, p := range r.passages {
		ranked[i] = scored{idx: i, dist: cosineDistance(qvec, p.Embedding)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].dist < ranked[j].dist
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = r.passages[ranked[i].idx].Text
	}
	return out
}

func (r *EmbeddingRetriever) Mode() Mode {
	return ModeEmbedding
}

// cosineDistance is 1 - cos(a, b). Zero vectors sit at distance 1.
func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
