package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
	"github.com/0xcro3dile/intentbot-go/internal/domain/ports"
)

// mockLoader implements ports.CorpusLoader for testing
type mockLoader struct {
	mu     sync.Mutex
	corpus *entities.Corpus
	err    error
	calls  int
}

func (m *mockLoader) Load(ctx context.Context, source string) (*entities.Corpus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.corpus, nil
}

func (m *mockLoader) set(c *entities.Corpus, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.corpus, m.err = c, err
}

// keywordExtractor implements ports.FeatureExtractor: dimension i is 1 when the
// text equals the i-th fitted pattern.
type keywordExtractor struct {
	err error
}

func (k *keywordExtractor) Fit(patterns []string) (ports.FittedExtractor, error) {
	if k.err != nil {
		return nil, k.err
	}
	return &keywordModel{patterns: append([]string(nil), patterns...)}, nil
}

type keywordModel struct {
	patterns []string
}

func (m *keywordModel) Transform(text string) ports.FeatureVector {
	v := make(ports.FeatureVector, len(m.patterns))
	for i, p := range m.patterns {
		if p == text {
			v[i] = 1
		}
	}
	return v
}

func (m *keywordModel) Dim() int { return len(m.patterns) }

// lookupClassifier implements ports.IntentClassifier by remembering which label
// owns each dimension.
type lookupClassifier struct {
	err     error
	extra   string
	fitDims int
}

func (c *lookupClassifier) Fit(vectors []ports.FeatureVector, labels []string) (ports.FittedClassifier, error) {
	if c.err != nil {
		return nil, c.err
	}
	if len(vectors) != len(labels) {
		return nil, &entities.TrainingError{Reason: "shape"}
	}
	dims := len(vectors[0])
	if c.fitDims > 0 {
		dims = c.fitDims
	}
	m := &lookupModel{dim: dims, owner: make([]string, len(labels))}
	copy(m.owner, labels)
	seen := map[string]bool{}
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			m.classes = append(m.classes, l)
		}
	}
	if c.extra != "" {
		m.classes = append(m.classes, c.extra)
	}
	return m, nil
}

type lookupModel struct {
	dim     int
	owner   []string
	classes []string
}

func (m *lookupModel) Predict(v ports.FeatureVector) (entities.Prediction, error) {
	if len(v) != m.dim {
		return entities.Prediction{}, &entities.InferenceError{Want: m.dim, Got: len(v)}
	}
	for i, x := range v {
		if x > 0 {
			return entities.Prediction{Tag: m.owner[i], Probability: 1}, nil
		}
	}
	return entities.Prediction{Tag: "unknown-tag", Probability: 0}, nil
}

func (m *lookupModel) Classes() []string { return m.classes }

// fixedRandom implements ports.RandomSource, always returning the same index.
type fixedRandom struct{ i int }

func (f fixedRandom) IntN(n int) int { return f.i % n }

// stepClock implements ports.Clock, advancing one second per call.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// failingHistory implements ports.HistoryStore and rejects every append.
type failingHistory struct{ err error }

func (f failingHistory) Append(ctx context.Context, sessionID string, turn entities.ChatTurn) error {
	return f.err
}

func (f failingHistory) List(ctx context.Context, sessionID string, order entities.Order) ([]entities.ChatTurn, error) {
	return []entities.ChatTurn{}, nil
}

func (f failingHistory) Sessions(ctx context.Context) ([]string, error) {
	return nil, nil
}

// mockWatcher implements ports.FileWatcher with a channel the test drives.
type mockWatcher struct {
	events  chan ports.FileEvent
	err     error
	stopped chan struct{}
	once    sync.Once
}

func newMockWatcher() *mockWatcher {
	return &mockWatcher{
		events:  make(chan ports.FileEvent, 10),
		stopped: make(chan struct{}),
	}
}

func (w *mockWatcher) Watch(ctx context.Context, path string) (<-chan ports.FileEvent, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.events, nil
}

func (w *mockWatcher) Stop() error {
	w.once.Do(func() { close(w.stopped) })
	return nil
}

func testCorpus() *entities.Corpus {
	c, err := entities.NewCorpus("test", []entities.Intent{
		{Tag: "greeting", Patterns: []string{"hi", "hello"}, Responses: []string{"Hello!", "Hey!"}},
		{Tag: "goodbye", Patterns: []string{"bye"}, Responses: []string{"Bye!"}},
	})
	if err != nil {
		panic(err)
	}
	return c
}
