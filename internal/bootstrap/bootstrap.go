// Package bootstrap wires adapters and usecases into a trained, ready-to-serve bot.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/0xcro3dile/intentbot-go/internal/adapters/corpus"
	"github.com/0xcro3dile/intentbot-go/internal/adapters/filewatcher"
	"github.com/0xcro3dile/intentbot-go/internal/adapters/history"
	"github.com/0xcro3dile/intentbot-go/internal/adapters/logreg"
	"github.com/0xcro3dile/intentbot-go/internal/adapters/tfidf"
	"github.com/0xcro3dile/intentbot-go/internal/config"
	"github.com/0xcro3dile/intentbot-go/internal/domain/ports"
	"github.com/0xcro3dile/intentbot-go/internal/domain/usecases"
)

// System is a trained bot together with the resources it owns.
type System struct {
	Conversation *usecases.ConversationUseCase
	Trainer      *usecases.TrainUseCase

	cfg     *config.Config
	logger  *zap.Logger
	closers []func() error
}

// Option customizes Initialize.
type Option func(*options)

type options struct {
	history ports.HistoryStore
	rng     ports.RandomSource
	clock   ports.Clock
}

// WithHistory uses store instead of the configured backend. The caller keeps ownership.
func WithHistory(store ports.HistoryStore) Option {
	return func(o *options) { o.history = store }
}

// WithRandom uses rng for response selection.
func WithRandom(rng ports.RandomSource) Option {
	return func(o *options) { o.rng = rng }
}

// WithClock uses clock for turn timestamps.
func WithClock(clock ports.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// Initialize loads the corpus, trains the model and builds the conversation
// usecase. It blocks until training finishes and returns nothing usable on error.
func Initialize(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*System, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sys := &System{cfg: cfg, logger: logger}

	sys.Trainer = usecases.NewTrainUseCase(
		corpus.NewMultiLoader(),
		tfidf.NewVectorizer(tfidf.Options{
			NGramMin:    cfg.Model.NGramMin,
			NGramMax:    cfg.Model.NGramMax,
			MinTokenLen: cfg.Model.MinTokenLen,
		}),
		logreg.NewClassifier(logreg.Options{
			Seed:         cfg.Model.Seed,
			MaxIter:      cfg.Model.MaxIter,
			LearningRate: cfg.Model.LearningRate,
			L2:           cfg.Model.L2,
			Tol:          cfg.Model.Tolerance,
		}),
		logger.Named("train"),
	)

	model, err := sys.Trainer.Train(ctx, cfg.Corpus.Path)
	if err != nil {
		return nil, err
	}

	store := o.history
	if store == nil {
		store, err = sys.openHistory()
		if err != nil {
			return nil, err
		}
	}

	rng := o.rng
	if rng == nil {
		seed := rand.Uint64()
		if cfg.Reply.Seed != nil {
			seed = *cfg.Reply.Seed
		}
		rng = rand.New(rand.NewPCG(seed, seed))
	}

	sys.Conversation = usecases.NewConversationUseCase(
		model,
		usecases.NewResponseSelector(cfg.Reply.Fallback),
		store,
		rng,
		o.clock,
		logger.Named("conversation"),
	)
	return sys, nil
}

func (s *System) openHistory() (ports.HistoryStore, error) {
	switch s.cfg.History.Backend {
	case "", "memory":
		return history.NewInMemoryStore(), nil
	case "sqlite":
		store, err := history.NewSQLiteStore(s.cfg.History.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		s.closers = append(s.closers, store.Close)
		s.logger.Info("history backend", zap.String("backend", "sqlite"), zap.String("dsn", s.cfg.History.DSN))
		return store, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", s.cfg.History.Backend)
	}
}

// WatchCorpus retrains on corpus changes until ctx is done. It returns
// immediately when watching is disabled.
func (s *System) WatchCorpus(ctx context.Context) error {
	if !s.cfg.Corpus.Watch {
		return nil
	}
	watcher, err := filewatcher.NewFSNotifyWatcher(nil, s.logger.Named("watcher"))
	if err != nil {
		return fmt.Errorf("creating corpus watcher: %w", err)
	}
	reload := usecases.NewReloadUseCase(
		s.Trainer,
		s.Conversation,
		watcher,
		s.cfg.Corpus.Path,
		s.cfg.DebounceDuration(),
		s.logger.Named("reload"),
	)
	s.logger.Info("watching corpus", zap.String("path", s.cfg.Corpus.Path))
	return reload.Run(ctx)
}

// Close releases resources opened by Initialize.
func (s *System) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	s.closers = nil
	return errors.Join(errs...)
}
