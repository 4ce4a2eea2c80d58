package usecases

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/0xcro3dile/intentbot-go/internal/domain/ports"
)

// ReloadUseCase retrains the conversation model when the corpus file changes.
// A failed retrain leaves the serving model untouched.
type ReloadUseCase struct {
	trainer  *TrainUseCase
	target   *ConversationUseCase
	watcher  ports.FileWatcher
	source   string
	debounce time.Duration
	logger   *zap.Logger
}

// NewReloadUseCase creates a ReloadUseCase. debounce collapses bursts of file
// events (editors often write a file several times per save).
func NewReloadUseCase(
	trainer *TrainUseCase,
	target *ConversationUseCase,
	watcher ports.FileWatcher,
	source string,
	debounce time.Duration,
	logger *zap.Logger,
) *ReloadUseCase {
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReloadUseCase{
		trainer:  trainer,
		target:   target,
		watcher:  watcher,
		source:   source,
		debounce: debounce,
		logger:   logger,
	}
}

// Reload trains a fresh model from the corpus source and swaps it in.
func (uc *ReloadUseCase) Reload(ctx context.Context) error {
	model, err := uc.trainer.Train(ctx, uc.source)
	if err != nil {
		return fmt.Errorf("reloading %s: %w", uc.source, err)
	}
	uc.target.Swap(model)
	return nil
}

// Run watches the corpus until ctx is done. It returns nil on cancellation.
func (uc *ReloadUseCase) Run(ctx context.Context) error {
	events, err := uc.watcher.Watch(ctx, uc.source)
	if err != nil {
		return fmt.Errorf("watching %s: %w", uc.source, err)
	}
	defer uc.watcher.Stop()

	// Reset never delivers a stale tick, so no draining is needed.
	timer := time.NewTimer(uc.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Operation == ports.FileDeleted {
				uc.logger.Warn("corpus file removed, keeping current model", zap.String("path", ev.Path))
				continue
			}
			timer.Reset(uc.debounce)
		case <-timer.C:
			if err := uc.Reload(ctx); err != nil {
				uc.logger.Error("corpus reload failed, keeping current model", zap.Error(err))
				continue
			}
			uc.logger.Info("corpus reloaded", zap.String("path", uc.source))
		}
	}
}
