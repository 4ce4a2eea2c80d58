package logreg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
	"github.com/0xcro3dile/intentbot-go/internal/domain/ports"
)

func toyData() ([]ports.FeatureVector, []string) {
	vectors := []ports.FeatureVector{
		{1, 0, 0, 0},
		{0.8, 0.6, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0.6, 0.8},
		{0, 1, 0, 0},
	}
	labels := []string{"greeting", "greeting", "goodbye", "goodbye", "thanks"}
	return vectors, labels
}

func fitToy(t *testing.T, opts Options) *Model {
	t.Helper()
	vectors, labels := toyData()
	fitted, err := NewClassifier(opts).Fit(vectors, labels)
	require.NoError(t, err)
	m, ok := fitted.(*Model)
	require.True(t, ok)
	return m
}

func TestClassifier_RecallsTrainingExamples(t *testing.T) {
	m := fitToy(t, DefaultOptions())
	vectors, labels := toyData()

	for i, v := range vectors {
		p, err := m.Predict(v)
		require.NoError(t, err)
		assert.Equal(t, labels[i], p.Tag, "example %d", i)
		assert.Greater(t, p.Probability, 1.0/3)
	}
}

func TestClassifier_Classes(t *testing.T) {
	m := fitToy(t, DefaultOptions())
	assert.Equal(t, []string{"goodbye", "greeting", "thanks"}, m.Classes())
	assert.Equal(t, 4, m.Dim())
	assert.Positive(t, m.Iterations())
}

func TestClassifier_DeterministicForSeed(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 42
	a := fitToy(t, opts)
	b := fitToy(t, opts)

	assert.Equal(t, a.weights, b.weights)
	assert.Equal(t, a.bias, b.bias)

	probe := ports.FeatureVector{0.3, 0.3, 0.3, 0.3}
	pa, err := a.Predict(probe)
	require.NoError(t, err)
	pb, err := b.Predict(probe)
	require.NoError(t, err)
	assert.Equal(t, pa, pb)
}

func TestClassifier_ProbabilitiesSumToOne(t *testing.T) {
	m := fitToy(t, DefaultOptions())
	probs, err := m.Probabilities(ports.FeatureVector{0.5, 0.5, 0, 0})
	require.NoError(t, err)
	require.Len(t, probs, 3)

	var sum float64
	for _, p := range probs {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
}

func TestClassifier_TieBreaksLexicographically(t *testing.T) {
	m := &Model{
		classes: []string{"alpha", "beta", "gamma"},
		dim:     2,
		weights: [][]float64{{0, 0}, {0, 0}, {0, 0}},
		bias:    []float64{0, 0, 0},
	}
	p, err := m.Predict(ports.FeatureVector{0, 0})
	require.NoError(t, err)
	assert.Equal(t, "alpha", p.Tag)
	assert.InDelta(t, 1.0/3, p.Probability, 1e-12)

	m.bias = []float64{0, 1, 1}
	p, err = m.Predict(ports.FeatureVector{0, 0})
	require.NoError(t, err)
	assert.Equal(t, "beta", p.Tag)
}

func TestClassifier_FitRejectsInconsistentShapes(t *testing.T) {
	c := NewClassifier(DefaultOptions())

	_, err := c.Fit([]ports.FeatureVector{{1, 0}}, []string{"a", "b"})
	assert.ErrorIs(t, err, entities.ErrTraining)

	_, err = c.Fit([]ports.FeatureVector{{1, 0}, {1}}, []string{"a", "b"})
	assert.ErrorIs(t, err, entities.ErrTraining)

	_, err = c.Fit(nil, nil)
	assert.ErrorIs(t, err, entities.ErrTraining)

	_, err = c.Fit([]ports.FeatureVector{{}}, []string{"a"})
	assert.ErrorIs(t, err, entities.ErrTraining)

	_, err = c.Fit([]ports.FeatureVector{{1}}, []string{""})
	assert.ErrorIs(t, err, entities.ErrTraining)
}

func TestClassifier_PredictRejectsWrongShape(t *testing.T) {
	m := fitToy(t, DefaultOptions())

	_, err := m.Predict(ports.FeatureVector{1, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, entities.ErrInference)

	var infErr *entities.InferenceError
	require.ErrorAs(t, err, &infErr)
	assert.Equal(t, 4, infErr.Want)
	assert.Equal(t, 2, infErr.Got)
}

func TestClassifier_SingleClass(t *testing.T) {
	fitted, err := NewClassifier(DefaultOptions()).Fit(
		[]ports.FeatureVector{{1, 0}, {0, 1}},
		[]string{"only", "only"},
	)
	require.NoError(t, err)

	p, err := fitted.Predict(ports.FeatureVector{0, 0})
	require.NoError(t, err)
	assert.Equal(t, "only", p.Tag)
	assert.InDelta(t, 1.0, p.Probability, 1e-12)
}

func TestNewClassifier_Defaults(t *testing.T) {
	c := NewClassifier(Options{Seed: 7, L2: -1})
	def := DefaultOptions()
	assert.Equal(t, uint64(7), c.opts.Seed)
	assert.Equal(t, def.MaxIter, c.opts.MaxIter)
	assert.Equal(t, def.LearningRate, c.opts.LearningRate)
	assert.Equal(t, def.L2, c.opts.L2)
	assert.Equal(t, def.Tol, c.opts.Tol)
}
