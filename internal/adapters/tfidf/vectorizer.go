// Package tfidf implements ports.FeatureExtractor with word n-gram TF-IDF weighting.
package tfidf

import (
	"fmt"
	"math"
	"sort"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
	"github.com/0xcro3dile/intentbot-go/internal/domain/ports"
)

// Options control tokenization and n-gram orders.
type Options struct {
	NGramMin    int
	NGramMax    int
	MinTokenLen int
}

// DefaultOptions are unigrams through 4-grams over tokens of two or more runes.
func DefaultOptions() Options {
	return Options{NGramMin: 1, NGramMax: 4, MinTokenLen: 2}
}

// Vectorizer is an unfitted TF-IDF extractor.
type Vectorizer struct {
	opts Options
}

// NewVectorizer creates a Vectorizer. Zero or inverted n-gram bounds fall back to defaults.
func NewVectorizer(opts Options) *Vectorizer {
	def := DefaultOptions()
	if opts.NGramMin <= 0 {
		opts.NGramMin = def.NGramMin
	}
	if opts.NGramMax < opts.NGramMin {
		opts.NGramMax = max(def.NGramMax, opts.NGramMin)
	}
	if opts.MinTokenLen <= 0 {
		opts.MinTokenLen = def.MinTokenLen
	}
	return &Vectorizer{opts: opts}
}

// Fit builds the vocabulary and smoothed IDF weights from patterns.
// Terms are indexed in lexicographic order so the same patterns always give the same layout.
func (v *Vectorizer) Fit(patterns []string) (ports.FittedExtractor, error) {
	if len(patterns) == 0 {
		return nil, &entities.TrainingError{Reason: "no patterns to fit vocabulary"}
	}

	df := make(map[string]int)
	for _, p := range patterns {
		seen := make(map[string]struct{})
		for _, g := range v.terms(p) {
			if _, ok := seen[g]; ok {
				continue
			}
			seen[g] = struct{}{}
			df[g]++
		}
	}
	if len(df) == 0 {
		return nil, &entities.TrainingError{
			Reason: fmt.Sprintf("empty vocabulary: no pattern has a token of %d or more characters", v.opts.MinTokenLen),
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	n := float64(len(patterns))
	m := &Model{
		opts:  v.opts,
		index: make(map[string]int, len(terms)),
		terms: terms,
		idf:   make([]float64, len(terms)),
	}
	for i, t := range terms {
		m.index[t] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[t]))) + 1
	}
	return m, nil
}

func (v *Vectorizer) terms(text string) []string {
	return NGrams(Tokenize(text, v.opts.MinTokenLen), v.opts.NGramMin, v.opts.NGramMax)
}

// Model is a fitted vectorizer with a frozen vocabulary. It is read-only after Fit.
type Model struct {
	opts  Options
	index map[string]int
	terms []string
	idf   []float64
}

// Transform returns the L2-normalized TF-IDF vector of text. Terms outside the
// vocabulary are dropped; text with no known terms yields the zero vector.
func (m *Model) Transform(text string) ports.FeatureVector {
	vec := make(ports.FeatureVector, len(m.terms))
	grams := NGrams(Tokenize(text, m.opts.MinTokenLen), m.opts.NGramMin, m.opts.NGramMax)
	for _, g := range grams {
		if i, ok := m.index[g]; ok {
			vec[i]++
		}
	}

	var norm float64
	for i, tf := range vec {
		if tf == 0 {
			continue
		}
		vec[i] = tf * m.idf[i]
		norm += vec[i] * vec[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// Dim is the vocabulary size.
func (m *Model) Dim() int { return len(m.terms) }

// Vocabulary returns the frozen terms in index order.
func (m *Model) Vocabulary() []string {
	out := make([]string, len(m.terms))
	copy(out, m.terms)
	return out
}

// IDF returns the weight of term and whether it is in the vocabulary.
func (m *Model) IDF(term string) (float64, bool) {
	i, ok := m.index[term]
	if !ok {
		return 0, false
	}
	return m.idf[i], true
}
