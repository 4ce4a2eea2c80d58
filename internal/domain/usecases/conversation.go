package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/intentbot-go/internal/domain/entities"
	"github.com/0xcro3dile/intentbot-go/internal/domain/ports"
)

// ConversationUseCase turns user text into a reply and records the turn.
// It is the single entry point the presentation layer calls.
type ConversationUseCase struct {
	model    atomic.Pointer[TrainedModel]
	selector *ResponseSelector
	history  ports.HistoryStore
	rng      *lockedRandom
	clock    ports.Clock
	logger   *zap.Logger

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewConversationUseCase creates a ConversationUseCase serving model.
// A nil clock uses time.Now; a nil logger discards logs.
func NewConversationUseCase(
	model *TrainedModel,
	selector *ResponseSelector,
	history ports.HistoryStore,
	rng ports.RandomSource,
	clock ports.Clock,
	logger *zap.Logger,
) *ConversationUseCase {
	if selector == nil {
		selector = NewResponseSelector("")
	}
	if clock == nil {
		clock = ports.ClockFunc(time.Now)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &ConversationUseCase{
		selector: selector,
		history:  history,
		rng:      &lockedRandom{src: rng},
		clock:    clock,
		logger:   logger,
		locks:    make(map[string]*sync.Mutex),
	}
	uc.model.Store(model)
	return uc
}

// Respond classifies text, picks a reply, appends the turn to the session's
// history and returns the reply. Blank text fails with entities.ErrEmptyInput
// before the model runs and records nothing.
func (uc *ConversationUseCase) Respond(ctx context.Context, sessionID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", entities.ErrEmptyInput
	}

	model := uc.model.Load()
	pred, err := model.Predict(text)
	if err != nil {
		if errors.Is(err, entities.ErrInference) {
			uc.logger.Error("extractor and classifier disagree on vector shape", zap.Error(err))
		}
		return "", fmt.Errorf("classifying input: %w", err)
	}
	reply := uc.selector.Select(pred.Tag, model.Corpus, uc.rng)

	unlock := uc.lockSession(sessionID)
	defer unlock()

	turn := entities.ChatTurn{
		UserText:  text,
		BotText:   reply,
		Timestamp: uc.clock.Now(),
	}
	if err := uc.history.Append(ctx, sessionID, turn); err != nil {
		return "", fmt.Errorf("recording turn: %w", err)
	}

	uc.logger.Debug("responded",
		zap.String("session", sessionID),
		zap.String("tag", pred.Tag),
		zap.Float64("probability", pred.Probability),
	)
	return reply, nil
}

// History lists the session's turns. Unknown sessions yield an empty slice.
func (uc *ConversationUseCase) History(ctx context.Context, sessionID string, order entities.Order) ([]entities.ChatTurn, error) {
	return uc.history.List(ctx, sessionID, order)
}

// Sessions lists sessions that have history.
func (uc *ConversationUseCase) Sessions(ctx context.Context) ([]string, error) {
	return uc.history.Sessions(ctx)
}

// Predict classifies text without recording anything.
func (uc *ConversationUseCase) Predict(text string) (entities.Prediction, error) {
	if strings.TrimSpace(text) == "" {
		return entities.Prediction{}, entities.ErrEmptyInput
	}
	return uc.model.Load().Predict(text)
}

// Model returns the model currently serving requests.
func (uc *ConversationUseCase) Model() *TrainedModel {
	return uc.model.Load()
}

// Swap replaces the serving model. In-flight calls finish on the model they started with.
func (uc *ConversationUseCase) Swap(model *TrainedModel) {
	if model == nil {
		return
	}
	uc.model.Store(model)
}

// lockSession serializes timestamping and appending within one session so
// turns are stored in the order their timestamps were taken.
func (uc *ConversationUseCase) lockSession(id string) func() {
	uc.locksMu.Lock()
	mu, ok := uc.locks[id]
	if !ok {
		mu = &sync.Mutex{}
		uc.locks[id] = mu
	}
	uc.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}
