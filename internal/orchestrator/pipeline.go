package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/OldStager01/housing-valuator/internal/artifacts"
	"github.com/OldStager01/housing-valuator/internal/logger"
)

type ReloaderConfig struct {
	Dir      string
	Interval time.Duration
	// Current returns the run id being served.
	Current func() string
	Reload  func(ctx context.Context) error
	Logger  logrus.FieldLogger
}

// Reloader polls the artifact manifest and reloads when a different run has
// been published, e.g. by a separate trainer process.
type Reloader struct {
	config  ReloaderConfig
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func NewReloader(cfg ReloaderConfig) *Reloader {
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Get()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Reloader{
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (r *Reloader) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}

	r.running = true
	r.wg.Add(1)
	go r.run()

	r.config.Logger.Infof("Artifact reloader started, polling every %s", r.config.Interval)
	return nil
}

func (r *Reloader) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()

	r.config.Logger.Info("Artifact reloader stopped")
}

func (r *Reloader) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Reloader) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.check()
		}
	}
}

// check reports whether a reload was attempted.
func (r *Reloader) check() bool {
	manifest, err := artifacts.ReadManifest(r.config.Dir)
	if err != nil {
		r.config.Logger.Debugf("Artifact manifest not readable: %v", err)
		return false
	}
	if manifest.RunID == "" || manifest.RunID == r.config.Current() {
		return false
	}

	r.config.Logger.WithField("run_id", manifest.RunID).Info("New artifact set published, reloading")
	if err := r.config.Reload(r.ctx); err != nil {
		r.config.Logger.Errorf("Artifact reload failed: %v", err)
	}
	return true
}
