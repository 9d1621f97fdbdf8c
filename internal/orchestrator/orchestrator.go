// Package orchestrator assembles the valuation components from configuration
// and owns the artifact set currently being served.
package orchestrator

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/OldStager01/housing-valuator/internal/artifacts"
	"github.com/OldStager01/housing-valuator/internal/cache"
	"github.com/OldStager01/housing-valuator/internal/events"
	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/internal/luxury"
	"github.com/OldStager01/housing-valuator/internal/metrics"
	"github.com/OldStager01/housing-valuator/internal/predictor"
	"github.com/OldStager01/housing-valuator/internal/preparer"
	"github.com/OldStager01/housing-valuator/internal/trainer"
	"github.com/OldStager01/housing-valuator/pkg/config"
	"github.com/OldStager01/housing-valuator/pkg/database"
	"github.com/OldStager01/housing-valuator/pkg/database/queries"
	"github.com/OldStager01/housing-valuator/pkg/validation"
)

// Options carries the optional backends. Nil fields are simply not wired.
type Options struct {
	DB      *database.DB
	Cache   *cache.RedisCache
	Metrics *metrics.Metrics
	Logger  logrus.FieldLogger
}

type Orchestrator struct {
	config      *config.Config
	db          *database.DB
	store       *queries.Store
	cache       *cache.RedisCache
	metrics     *metrics.Metrics
	log         logrus.FieldLogger
	eventBus    *events.EventBus
	eventLogger *events.EventLogger
	publisher   *events.Publisher
	preparer    *preparer.Preparer
	predictor   *predictor.Predictor
	reloader    *Reloader

	mu     sync.RWMutex
	bundle *artifacts.Bundle

	// trainMu allows one training run at a time per process.
	trainMu sync.Mutex
}

func New(cfg *config.Config, opts Options) *Orchestrator {
	named := func(component string) logrus.FieldLogger {
		if opts.Logger != nil {
			return opts.Logger.WithField("component", component)
		}
		return logger.Named(component)
	}
	log := named("orchestrator")

	eventBus := events.NewEventBus(cfg.Events.BufferSize)

	o := &Orchestrator{
		config:    cfg,
		db:        opts.DB,
		cache:     opts.Cache,
		metrics:   opts.Metrics,
		log:       log,
		eventBus:  eventBus,
		publisher: events.NewPublisher(eventBus),
		preparer:  preparer.New(PreparerConfig(cfg), named("preparer")),
	}

	// Subscribe event logger to all events
	var sink events.Sink
	if opts.DB != nil {
		o.store = queries.NewStore(opts.DB.DB)
		sink = o.store
	}
	o.eventLogger = events.NewEventLogger(sink, eventBus.SubscribeAll(), named("events"))

	predictorOpts := []predictor.Option{
		predictor.WithPublisher(o.publisher),
		predictor.WithLogger(named("predictor")),
	}
	if opts.Cache != nil {
		predictorOpts = append(predictorOpts, predictor.WithCache(opts.Cache))
	}
	if opts.Metrics != nil {
		predictorOpts = append(predictorOpts, predictor.WithRecorder(opts.Metrics))
	}
	o.predictor = predictor.New(
		PredictorConfig(cfg),
		nil,
		validation.NewInputValidator(ValidationBounds(cfg)),
		luxury.NewScorer(ScorerConfig(cfg)),
		predictorOpts...,
	)

	if cfg.Data.ReloadInterval > 0 {
		o.reloader = NewReloader(ReloaderConfig{
			Dir:      cfg.Data.ArtifactDir,
			Interval: cfg.Data.ReloadInterval,
			Current:  o.currentRunID,
			Reload:   o.LoadArtifacts,
			Logger:   named("reloader"),
		})
	}

	return o
}

func (o *Orchestrator) Start() error {
	o.log.Info("Orchestrator starting")
	o.eventLogger.Start()
	if o.reloader != nil {
		return o.reloader.Start()
	}
	return nil
}

func (o *Orchestrator) Stop() {
	o.log.Info("Orchestrator stopping")

	if o.reloader != nil {
		o.reloader.Stop()
	}

	// Stop event logger before closing the bus it reads from
	o.eventLogger.Stop()
	o.eventBus.Close()

	o.log.Info("Orchestrator stopped")
}

// LoadArtifacts reads the artifact directory and the raw dataset and starts
// serving them. On failure the current set, if any, stays in place.
func (o *Orchestrator) LoadArtifacts(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b, err := artifacts.Load(o.config.Data.ArtifactDir, FileNames(o.config), o.config.Data.RawData)
	if err != nil {
		o.log.WithError(err).Error("Failed to load artifacts")
		return err
	}

	o.serve(ctx, b)
	o.publisher.ArtifactsLoaded(b.Manifest(), b.Dir())
	o.log.WithField("run_id", b.RunID()).Infof("Artifacts loaded from %s: %d districts, %d property types",
		b.Dir(), len(b.Districts()), len(b.PropertyTypes()))
	return nil
}

// Train runs the trainer and, on success, serves the fresh artifact set
// without reloading it from disk.
func (o *Orchestrator) Train(ctx context.Context) (*trainer.Report, error) {
	o.trainMu.Lock()
	defer o.trainMu.Unlock()

	trainerOpts := []trainer.Option{
		trainer.WithPublisher(o.publisher),
		trainer.WithLogger(o.log.WithField("component", "trainer")),
	}
	if o.metrics != nil {
		trainerOpts = append(trainerOpts, trainer.WithRecorder(o.metrics))
	}

	report, err := trainer.New(TrainerConfig(o.config), o.preparer, trainerOpts...).Run(ctx)
	if err != nil {
		return nil, err
	}

	o.serve(ctx, report.Bundle)
	return report, nil
}

// serve swaps the set under one lock so the exploration endpoints and the
// predictor never disagree on the run being served.
func (o *Orchestrator) serve(ctx context.Context, b *artifacts.Bundle) {
	o.mu.Lock()
	o.bundle = b
	o.predictor.SetArtifacts(b)
	o.mu.Unlock()

	if o.cache != nil {
		if err := o.cache.Flush(ctx); err != nil {
			o.log.WithError(err).Warn("Failed to flush prediction cache")
		}
	}
	if o.metrics != nil {
		o.metrics.SetArtifactsLoaded(b.IsLoaded())
		o.metrics.SetModelMetrics(b.Metrics())
	}
}

// Current is the artifact set being served, or nil before the first load.
func (o *Orchestrator) Current() *artifacts.Bundle {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.bundle
}

func (o *Orchestrator) currentRunID() string {
	if b := o.Current(); b != nil {
		return b.RunID()
	}
	return ""
}

func (o *Orchestrator) Predictor() *predictor.Predictor {
	return o.predictor
}

func (o *Orchestrator) Preparer() *preparer.Preparer {
	return o.preparer
}

// Store is nil when the database is disabled.
func (o *Orchestrator) Store() *queries.Store {
	return o.store
}
