package app

import (
	"context"
	"time"

	"github.com/drstein77/organicfilter/internal/config"
	"github.com/drstein77/organicfilter/internal/logger"
	"github.com/drstein77/organicfilter/internal/pipeline"
	"github.com/drstein77/organicfilter/internal/policy"
	"github.com/drstein77/organicfilter/internal/source"
	"github.com/drstein77/organicfilter/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Summary describes a finished run.
type Summary struct {
	RunID  string
	Output string
	Read   int
	Kept   int
}

type App struct {
	opts *config.Options
	log  *logger.Logger
	now  func() time.Time
}

// NewApp creates a new App instance with the parsed options
func NewApp(opts *config.Options, log *logger.Logger) *App {
	return &App{
		opts: opts,
		log:  log,
		now:  time.Now,
	}
}

// Run loads the dataset, filters it and writes the output file. Nothing is
// written when any step fails.
func (a *App) Run(ctx context.Context) (*Summary, error) {
	runID := uuid.NewString()
	log := a.log.With(zap.String("run_id", runID))

	pol, err := a.policy()
	if err != nil {
		return nil, err
	}

	reader, err := source.New(a.opts.Source(), source.Options{
		Timeout: a.opts.Timeout(),
		Table:   a.opts.Table(),
	}, log)
	if err != nil {
		return nil, err
	}

	records, err := reader.Read(ctx)
	if err != nil {
		log.Error("Failed to load dataset", zap.Error(err))
		return nil, err
	}

	res := pipeline.Run(records, pol, a.opts.MaxItems(), a.now())
	log.Info("Dataset filtered",
		zap.Int("read", res.Read),
		zap.Int("matched", res.Matched),
		zap.Int("kept", res.Kept),
		zap.Strings("stores", res.Envelope.Stores),
	)
	if res.Matched > res.Kept {
		log.Warn("Item limit reached", zap.Int("max_items", a.opts.MaxItems()), zap.Int("dropped", res.Matched-res.Kept))
	}

	out := storage.NewFileStorage(a.opts.Output(), log)
	if err := out.Save(ctx, res.Envelope); err != nil {
		log.Error("Failed to write output", zap.Error(err))
		return nil, err
	}

	return &Summary{
		RunID:  runID,
		Output: out.Path(),
		Read:   res.Read,
		Kept:   res.Kept,
	}, nil
}

func (a *App) policy() (*policy.Policy, error) {
	if a.opts.PolicyFile() == "" {
		return policy.Default(), nil
	}
	a.log.Info("Loading policy file", zap.String("path", a.opts.PolicyFile()))
	return policy.LoadFile(a.opts.PolicyFile())
}
