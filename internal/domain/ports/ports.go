// Package ports defines interfaces for the pieces the usecases depend on.
// Usecases depend on these abstractions, adapters implement them.
package ports

import (
	"context"
	"time"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
)

// CorpusLoader reads and validates an intent corpus.
type CorpusLoader interface {
	// Load reads the corpus at source. Any problem fails with *entities.ConfigError;
	// a corpus is never partially loaded.
	Load(ctx context.Context, source string) (*entities.Corpus, error)
}

// FeatureVector is a fixed-length numeric representation of one utterance.
type FeatureVector []float64

// FeatureExtractor learns a vocabulary from training text.
type FeatureExtractor interface {
	// Fit builds and freezes the vocabulary from patterns.
	Fit(patterns []string) (FittedExtractor, error)
}

// FittedExtractor maps text onto a frozen vocabulary.
// Implementations are immutable and safe for concurrent use.
type FittedExtractor interface {
	// Transform returns a vector of length Dim. Unknown terms are ignored.
	Transform(text string) FeatureVector

	// Dim is the frozen vocabulary size.
	Dim() int
}

// IntentClassifier trains a model on (vector, tag) pairs.
type IntentClassifier interface {
	// Fit fails with *entities.TrainingError when vectors and labels disagree in shape.
	Fit(vectors []FeatureVector, labels []string) (FittedClassifier, error)
}

// FittedClassifier predicts tags. Implementations are immutable and safe for concurrent use.
type FittedClassifier interface {
	// Predict returns the most probable tag. A vector of the wrong length fails
	// with *entities.InferenceError.
	Predict(v FeatureVector) (entities.Prediction, error)

	// Classes returns the known tags in lexicographic order.
	Classes() []string
}

// HistoryStore is an append-only log of chat turns keyed by session.
type HistoryStore interface {
	// Append records turn at the end of the session's log.
	Append(ctx context.Context, sessionID string, turn entities.ChatTurn) error

	// List returns the session's turns. An unknown session yields an empty slice.
	List(ctx context.Context, sessionID string, order entities.Order) ([]entities.ChatTurn, error)

	// Sessions returns the ids of sessions holding at least one turn.
	Sessions(ctx context.Context) ([]string, error)
}

// RandomSource picks an index in [0, n). *math/rand/v2.Rand satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// Clock supplies turn timestamps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// FileWatcher monitors a file for changes.
type FileWatcher interface {
	// Watch starts monitoring path and emits events until ctx is done.
	Watch(ctx context.Context, path string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)
