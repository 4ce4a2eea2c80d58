package usecases

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
	"github.com/0xcro3dile/intentbot-go/internal/domain/ports"
)

// TrainedModel bundles a corpus with the extractor and classifier fitted on it.
// Nothing in it changes after Train returns, so it is shared freely between goroutines.
type TrainedModel struct {
	Corpus     *entities.Corpus
	Extractor  ports.FittedExtractor
	Classifier ports.FittedClassifier
	Source     string
	TrainedAt  time.Time
}

// TrainUseCase loads a corpus and fits the extractor and classifier on it.
type TrainUseCase struct {
	loader     ports.CorpusLoader
	extractor  ports.FeatureExtractor
	classifier ports.IntentClassifier
	logger     *zap.Logger
}

// NewTrainUseCase creates a TrainUseCase with injected dependencies.
func NewTrainUseCase(
	loader ports.CorpusLoader,
	extractor ports.FeatureExtractor,
	classifier ports.IntentClassifier,
	logger *zap.Logger,
) *TrainUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainUseCase{
		loader:     loader,
		extractor:  extractor,
		classifier: classifier,
		logger:     logger,
	}
}

// Train runs load, fit extractor, fit classifier. Any failure aborts the whole
// run; no partially trained model is ever returned.
func (uc *TrainUseCase) Train(ctx context.Context, source string) (*TrainedModel, error) {
	corpus, err := uc.loader.Load(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	return uc.Fit(ctx, source, corpus)
}

// Fit trains on an already validated corpus.
func (uc *TrainUseCase) Fit(ctx context.Context, source string, corpus *entities.Corpus) (*TrainedModel, error) {
	start := time.Now()

	examples := corpus.TrainingExamples()
	texts := make([]string, len(examples))
	labels := make([]string, len(examples))
	for i, ex := range examples {
		texts[i] = ex.Text
		labels[i] = ex.Label
	}

	extractor, err := uc.extractor.Fit(texts)
	if err != nil {
		return nil, fmt.Errorf("fitting extractor: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors := make([]ports.FeatureVector, len(texts))
	for i, text := range texts {
		vectors[i] = extractor.Transform(text)
	}

	classifier, err := uc.classifier.Fit(vectors, labels)
	if err != nil {
		return nil, fmt.Errorf("fitting classifier: %w", err)
	}

	for _, tag := range classifier.Classes() {
		if _, ok := corpus.Lookup(tag); !ok {
			return nil, &entities.TrainingError{Reason: fmt.Sprintf("classifier learned unknown tag %q", tag)}
		}
	}

	uc.logger.Info("model trained",
		zap.String("source", source),
		zap.Int("intents", corpus.Len()),
		zap.Int("examples", len(examples)),
		zap.Int("vocabulary", extractor.Dim()),
		zap.Duration("took", time.Since(start)),
	)

	return &TrainedModel{
		Corpus:     corpus,
		Extractor:  extractor,
		Classifier: classifier,
		Source:     source,
		TrainedAt:  time.Now(),
	}, nil
}

// Predict classifies text with the model.
func (m *TrainedModel) Predict(text string) (entities.Prediction, error) {
	return m.Classifier.Predict(m.Extractor.Transform(text))
}
