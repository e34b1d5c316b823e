package knowledge

import (
	"context"
	"fmt"

	apperrors "pet-doctor/internal/common/errors"
	"pet-doctor/internal/common/logger"
	"pet-doctor/internal/common/metrics"
)

// Mode names the retrieval strategy selected at startup.
type Mode string

const (
	ModeEmbedding Mode = "embedding"
	ModeKeyword   Mode = "keyword"
)

// Retriever returns reference passages for a symptom query. Implementations
// never fail: an unusable backend degrades to keyword lookup.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) []string
	Mode() Mode
}

// NewRetriever selects the retrieval mode once. With a nil embedder, or when
// embedding the corpus fails, keyword mode is used and a degraded warning is
// logged.
func NewRetriever(ctx context.Context, corpus *Corpus, embedder Embedder, log logger.Logger) Retriever {
	keyword := NewKeywordRetriever(corpus)

	if embedder == nil {
		reportDegraded(log, "no embedder configured")
		return keyword
	}

	embedded, err := NewEmbeddingRetriever(ctx, corpus, embedder, keyword, log)
	if err != nil {
		reportDegraded(log, err.Error())
		return keyword
	}

	metrics.RetrieverMode.WithLabelValues(string(ModeEmbedding)).Set(1)
	log.Info("knowledge retriever ready", map[string]interface{}{
		"mode":     ModeEmbedding,
		"embedder": embedder.Name(),
		"passages": len(corpus.Passages),
	})
	return embedded
}

func reportDegraded(log logger.Logger, reason string) {
	stdErr := apperrors.NewRetrievalDegradedError(reason)
	metrics.RetrieverMode.WithLabelValues(string(ModeKeyword)).Set(1)
	log.Warn("knowledge retrieval degraded", map[string]interface{}{
		"mode":      ModeKeyword,
		"errorCode": string(stdErr.Code),
		"reason":    stdErr.Details,
	})
}

func embedCorpus(ctx context.Context, corpus *Corpus, embedder Embedder) ([]Passage, error) {
	passages := make([]Passage, len(corpus.Passages))
	dims := 0
	for i, p := range corpus.Passages {
		vec, err := embedder.Embed(ctx, p.Text)
		if err != nil {
			return nil, fmt.Errorf("embed passage %d: %w", i, err)
		}
		if dims == 0 {
			dims = len(vec)
		} else if len(vec) != dims {
			return nil, fmt.Errorf("embed passage %d: got %d dimensions, want %d", i, len(vec), dims)
		}
		passages[i] = Passage{Text: p.Text, Embedding: vec}
	}
	return passages, nil
}
