// Package usecases contains application business rules.
// Usecases orchestrate entities and depend on port interfaces only.
package usecases

import (
	"sync"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
	"github.com/0xcro3dile/intentbot-go/internal/domain/ports"
)

// DefaultFallbackResponse is returned when a predicted tag has no intent in the corpus.
const DefaultFallbackResponse = "I'm not sure how to respond to that."

// ResponseSelector maps a predicted tag to one of its intent's responses.
type ResponseSelector struct {
	fallback string
}

// NewResponseSelector creates a selector. An empty fallback uses DefaultFallbackResponse.
func NewResponseSelector(fallback string) *ResponseSelector {
	if fallback == "" {
		fallback = DefaultFallbackResponse
	}
	return &ResponseSelector{fallback: fallback}
}

// Select picks a response for tag uniformly at random using rng. A tag the corpus
// does not know yields the fallback text rather than an error.
func (s *ResponseSelector) Select(tag string, corpus *entities.Corpus, rng ports.RandomSource) string {
	intent, ok := corpus.Lookup(tag)
	if !ok || len(intent.Responses) == 0 {
		return s.fallback
	}
	if len(intent.Responses) == 1 {
		return intent.Responses[0]
	}
	return intent.Responses[rng.IntN(len(intent.Responses))]
}

// Fallback returns the text used for unknown tags.
func (s *ResponseSelector) Fallback() string { return s.fallback }

// lockedRandom lets one RandomSource serve concurrent callers.
type lockedRandom struct {
	mu  sync.Mutex
	src ports.RandomSource
}

func (r *lockedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.IntN(n)
}
