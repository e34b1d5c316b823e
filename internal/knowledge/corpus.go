package knowledge

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed corpus.yaml
var defaultCorpus []byte

// Passage is one knowledge base entry. Embedding is populated only in
// embedding mode.
type Passage struct {
	Text      string
	Embedding []float32
}

// KeywordEntry maps a lower-case token to the passage returned in keyword mode.
type KeywordEntry struct {
	Token   string `yaml:"token"`
	Passage string `yaml:"passage"`
}

// Corpus is the read-only reference material the retriever searches.
type Corpus struct {
	Passages []Passage
	Keywords []KeywordEntry
	Generic  string
}

type corpusFile struct {
	Passages []string       `yaml:"passages"`
	Keywords []KeywordEntry `yaml:"keywords"`
	Generic  string         `yaml:"generic"`
}

// DefaultCorpus parses the embedded veterinary corpus.
func DefaultCorpus() (*Corpus, error) {
	return ParseCorpus(defaultCorpus)
}

// ParseCorpus decodes a corpus YAML document.
func ParseCorpus(data []byte) (*Corpus, error) {
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	if len(f.Passages) == 0 {
		return nil, fmt.Errorf("parse corpus: no passages")
	}
	if strings.TrimSpace(f.Generic) == "" {
		return nil, fmt.Errorf("parse corpus: generic passage is empty")
	}

	c := &Corpus{Generic: strings.TrimSpace(f.Generic)}
	for _, text := range f.Passages {
		c.Passages = append(c.Passages, Passage{Text: strings.TrimSpace(text)})
	}
	for _, kw := range f.Keywords {
		c.Keywords = append(c.Keywords, KeywordEntry{
			Token:   strings.ToLower(strings.TrimSpace(kw.Token)),
			Passage: strings.TrimSpace(kw.Passage),
		})
	}
	return c, nil
}
