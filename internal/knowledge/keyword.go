package knowledge

import (
	"context"
	"strings"
)

// KeywordRetriever returns every table passage whose token occurs in the
// query, in table order. k is ignored.
type KeywordRetriever struct {
	entries []KeywordEntry
	generic string
}

func NewKeywordRetriever(corpus *Corpus) *KeywordRetriever {
	return &KeywordRetriever{entries: corpus.Keywords, generic: corpus.Generic}
}

func (r *KeywordRetriever) Retrieve(_ context.Context, query string, _ int) []string {
	q := strings.ToLower(query)

	var out []string
	for _, e := range r.entries {
		if strings.Contains(q, e.Token) {
			out = append(out, e.Passage)
		}
	}
	if len(out) == 0 {
		return []string{r.generic}
	}
	return out
}

func (r *KeywordRetriever) Mode() Mode {
	return ModeKeyword
}
