// Package logreg implements ports.IntentClassifier as multinomial logistic regression.
//
// The model keeps one linear score per class, turns scores into probabilities with a
// softmax and is fit by full-batch gradient descent on the mean cross-entropy plus an
// L2 penalty on the weights. Initial weights come from a PCG generator seeded by
// Options.Seed and every reduction runs in a fixed order, so a given training set and
// seed always produce bit-identical parameters.
package logreg

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
	"github.com/0xcro3dile/intentbot-go/internal/domain/ports"
)

// Options tune the optimizer.
type Options struct {
	Seed         uint64
	MaxIter      int
	LearningRate float64
	L2           float64
	// Tol stops training once the largest gradient component falls below it.
	Tol float64
}

// DefaultOptions returns the settings used when a field is left at zero.
func DefaultOptions() Options {
	return Options{
		Seed:         0,
		MaxIter:      10000,
		LearningRate: 0.5,
		L2:           1e-4,
		Tol:          1e-5,
	}
}

// Classifier is an unfitted multinomial logistic regression.
type Classifier struct {
	opts Options
}

// NewClassifier creates a Classifier. Non-positive MaxIter, LearningRate and Tol
// and a negative L2 fall back to defaults.
func NewClassifier(opts Options) *Classifier {
	def := DefaultOptions()
	if opts.MaxIter <= 0 {
		opts.MaxIter = def.MaxIter
	}
	if opts.LearningRate <= 0 {
		opts.LearningRate = def.LearningRate
	}
	if opts.L2 < 0 {
		opts.L2 = def.L2
	}
	if opts.Tol <= 0 {
		opts.Tol = def.Tol
	}
	return &Classifier{opts: opts}
}

// sparseRow is a training vector without its zero entries.
type sparseRow struct {
	idx []int
	val []float64
}

// Fit trains on vectors and their labels.
func (c *Classifier) Fit(vectors []ports.FeatureVector, labels []string) (ports.FittedClassifier, error) {
	if len(vectors) != len(labels) {
		return nil, &entities.TrainingError{
			Reason: fmt.Sprintf("%d feature vectors but %d labels", len(vectors), len(labels)),
		}
	}
	if len(vectors) == 0 {
		return nil, &entities.TrainingError{Reason: "no training examples"}
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, &entities.TrainingError{Reason: "feature vectors have no dimensions"}
	}
	rows := make([]sparseRow, len(vectors))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, &entities.TrainingError{
				Reason: fmt.Sprintf("vector %d has %d dimensions, expected %d", i, len(v), dim),
			}
		}
		for j, x := range v {
			if x != 0 {
				rows[i].idx = append(rows[i].idx, j)
				rows[i].val = append(rows[i].val, x)
			}
		}
	}

	classIndex := make(map[string]int)
	for i, l := range labels {
		if l == "" {
			return nil, &entities.TrainingError{Reason: fmt.Sprintf("label %d is empty", i)}
		}
		classIndex[l] = 0
	}
	classes := make([]string, 0, len(classIndex))
	for l := range classIndex {
		classes = append(classes, l)
	}
	sort.Strings(classes)
	for k, l := range classes {
		classIndex[l] = k
	}
	y := make([]int, len(labels))
	for i, l := range labels {
		y[i] = classIndex[l]
	}

	m := newModel(classes, dim, c.opts.Seed)
	m.iterations = c.train(m, rows, y)
	return m, nil
}

func (c *Classifier) train(m *Model, rows []sparseRow, y []int) int {
	k := len(m.classes)
	n := float64(len(rows))
	gradW := make([][]float64, k)
	for j := range gradW {
		gradW[j] = make([]float64, m.dim)
	}
	gradB := make([]float64, k)
	probs := make([]float64, k)

	for iter := 1; iter <= c.opts.MaxIter; iter++ {
		for j := 0; j < k; j++ {
			clear(gradW[j])
			gradB[j] = 0
		}

		for i, row := range rows {
			m.scoresSparse(row, probs)
			softmax(probs)
			probs[y[i]] -= 1
			for j := 0; j < k; j++ {
				d := probs[j] / n
				gradB[j] += d
				gw := gradW[j]
				for t, idx := range row.idx {
					gw[idx] += d * row.val[t]
				}
			}
		}

		var worst float64
		for j := 0; j < k; j++ {
			w := m.weights[j]
			gw := gradW[j]
			for d := range w {
				g := gw[d] + c.opts.L2*w[d]
				worst = max(worst, math.Abs(g))
				w[d] -= c.opts.LearningRate * g
			}
			worst = max(worst, math.Abs(gradB[j]))
			m.bias[j] -= c.opts.LearningRate * gradB[j]
		}
		if worst < c.opts.Tol {
			return iter
		}
	}
	return c.opts.MaxIter
}

// Model holds fitted weights. It is never mutated after Fit returns.
type Model struct {
	classes    []string
	dim        int
	weights    [][]float64
	bias       []float64
	iterations int
}

func newModel(classes []string, dim int, seed uint64) *Model {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	m := &Model{
		classes: classes,
		dim:     dim,
		weights: make([][]float64, len(classes)),
		bias:    make([]float64, len(classes)),
	}
	for k := range m.weights {
		m.weights[k] = make([]float64, dim)
		for d := range m.weights[k] {
			m.weights[k][d] = (rng.Float64() - 0.5) * 0.01
		}
	}
	return m
}

func (m *Model) scoresSparse(row sparseRow, out []float64) {
	for k, w := range m.weights {
		s := m.bias[k]
		for t, idx := range row.idx {
			s += w[idx] * row.val[t]
		}
		out[k] = s
	}
}

func (m *Model) scores(v ports.FeatureVector) ([]float64, error) {
	if len(v) != m.dim {
		return nil, &entities.InferenceError{Want: m.dim, Got: len(v)}
	}
	out := make([]float64, len(m.classes))
	for k, w := range m.weights {
		s := m.bias[k]
		for d, x := range v {
			if x != 0 {
				s += w[d] * x
			}
		}
		out[k] = s
	}
	return out, nil
}

// Predict returns the class with the highest probability. Exact ties go to the
// lexicographically smallest tag.
func (m *Model) Predict(v ports.FeatureVector) (entities.Prediction, error) {
	s, err := m.scores(v)
	if err != nil {
		return entities.Prediction{}, err
	}
	best := 0
	for k := 1; k < len(s); k++ {
		if s[k] > s[best] {
			best = k
		}
	}
	softmax(s)
	return entities.Prediction{Tag: m.classes[best], Probability: s[best]}, nil
}

// Probabilities returns the softmax distribution over Classes.
func (m *Model) Probabilities(v ports.FeatureVector) ([]float64, error) {
	s, err := m.scores(v)
	if err != nil {
		return nil, err
	}
	softmax(s)
	return s, nil
}

// Classes returns the tags in lexicographic order.
func (m *Model) Classes() []string {
	out := make([]string, len(m.classes))
	copy(out, m.classes)
	return out
}

// Dim is the expected feature vector length.
func (m *Model) Dim() int { return m.dim }

// Iterations is the number of gradient steps Fit took.
func (m *Model) Iterations() int { return m.iterations }

// softmax replaces scores with probabilities in place.
func softmax(s []float64) {
	hi := math.Inf(-1)
	for _, x := range s {
		hi = max(hi, x)
	}
	var sum float64
	for i, x := range s {
		s[i] = math.Exp(x - hi)
		sum += s[i]
	}
	for i := range s {
		s[i] /= sum
	}
}
