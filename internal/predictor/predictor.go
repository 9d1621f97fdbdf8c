// Package predictor turns a raw valuation request into a priced, luxury-scored result.
package predictor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/OldStager01/housing-valuator/internal/events"
	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/internal/luxury"
	"github.com/OldStager01/housing-valuator/pkg/apperrors"
	"github.com/OldStager01/housing-valuator/pkg/models"
	"github.com/OldStager01/housing-valuator/pkg/validation"
)

const DefaultDistrictScore = 50000

var ErrNotLoaded = errors.New("model artifacts are not loaded")

// Artifacts is the read-only view of a loaded artifact set.
type Artifacts interface {
	IsLoaded() bool
	Predict(row models.FeatureRow) (float64, error)
	Districts() []string
	PropertyTypes() []string
	DistrictScore(district string, def float64) (float64, bool)
	RunID() string
}

// Cache stores finished results. Misses and backend errors look the same.
type Cache interface {
	Get(ctx context.Context, key string) (*models.PredictionResult, bool)
	Set(ctx context.Context, key string, result *models.PredictionResult)
}

type Recorder interface {
	PredictionCompleted(category string, took time.Duration)
	PredictionFailed(kind string)
	CacheLookup(hit bool)
}

type Config struct {
	// DefaultDistrictScore is used for a district missing from the score
	// table. Zero is honoured.
	DefaultDistrictScore float64
}

func DefaultConfig() Config {
	return Config{DefaultDistrictScore: DefaultDistrictScore}
}

type Option func(*Predictor)

func WithCache(c Cache) Option {
	return func(p *Predictor) { p.cache = c }
}

func WithRecorder(r Recorder) Option {
	return func(p *Predictor) { p.recorder = r }
}

func WithPublisher(pub *events.Publisher) Option {
	return func(p *Predictor) { p.publisher = pub }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Predictor) { p.log = l }
}

type Predictor struct {
	mu        sync.RWMutex
	artifacts Artifacts

	config    Config
	validator *validation.InputValidator
	scorer    *luxury.Scorer
	cache     Cache
	recorder  Recorder
	publisher *events.Publisher
	log       logrus.FieldLogger
}

func New(cfg Config, artifacts Artifacts, validator *validation.InputValidator, scorer *luxury.Scorer, opts ...Option) *Predictor {
	if validator == nil {
		validator = validation.NewInputValidator(validation.DefaultBounds())
	}
	if scorer == nil {
		scorer = luxury.NewScorer(luxury.DefaultConfig())
	}

	p := &Predictor{
		artifacts: artifacts,
		config:    cfg,
		validator: validator,
		scorer:    scorer,
		log:       logger.Get(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetArtifacts swaps in a freshly loaded set. In-flight predictions finish on the old one.
func (p *Predictor) SetArtifacts(a Artifacts) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.artifacts = a
}

func (p *Predictor) Artifacts() Artifacts {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.artifacts
}

func (p *Predictor) Ready() bool {
	a := p.Artifacts()
	return a != nil && a.IsLoaded()
}

// Predict validates in, prices it with the model and scores it. Every error
// is a *apperrors.PredictionError; the cause stays reachable with errors.As.
func (p *Predictor) Predict(ctx context.Context, in models.PredictionInput) (*models.PredictionResult, error) {
	start := time.Now()
	log := logger.FromContext(ctx, p.log)
	pub := p.publisher.WithTraceID(logger.TraceIDFromContext(ctx))

	a := p.Artifacts()
	if a == nil || !a.IsLoaded() {
		return nil, p.fail(log, pub, in, apperrors.NewModelLoadError("", ErrNotLoaded))
	}

	req, err := p.validator.Validate(in, a.Districts(), a.PropertyTypes())
	if err != nil {
		pub.PredictionRejected(in, apperrors.Problems(err))
		return nil, p.fail(log, pub, in, err)
	}

	key := cacheKey(a.RunID(), req)
	if p.cache != nil {
		cached, hit := p.cache.Get(ctx, key)
		p.recordCache(hit)
		if hit {
			p.completed(pub, cached, start)
			log.WithField("district", req.District).Debug("Prediction served from cache")
			return cached, nil
		}
	}

	score, known := a.DistrictScore(req.District, p.config.DefaultDistrictScore)
	if !known {
		log.WithField("district", req.District).Warn("No district score, using default")
	}

	raw, err := a.Predict(req.Features(score))
	if err != nil {
		return nil, p.fail(log, pub, in, err)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw > math.MaxInt64 || raw < math.MinInt64 {
		return nil, p.fail(log, pub, in, fmt.Errorf("model returned %v", raw))
	}
	price := int64(raw)

	assessment := p.scorer.Score(float64(price), req.Area, req.District, req.PropertyType, req.BuildingAge)
	result := models.NewPredictionResult(price, req, assessment)
	result.ModelRunID = a.RunID()

	if p.cache != nil {
		p.cache.Set(ctx, key, result)
	}
	p.completed(pub, result, start)

	log.WithFields(logrus.Fields{
		"district":        req.District,
		"property_type":   req.PropertyType,
		"predicted_price": price,
		"luxury_score":    result.LuxuryScore,
	}).Info("Prediction completed")

	return result, nil
}

// completed counts and publishes a served result, cached or computed, so
// history and metrics see every answer the caller received.
func (p *Predictor) completed(pub *events.Publisher, result *models.PredictionResult, start time.Time) {
	if p.recorder != nil {
		p.recorder.PredictionCompleted(result.LuxuryCategory.String(), time.Since(start))
	}
	pub.PredictionCompleted(result)
}

func (p *Predictor) fail(log logrus.FieldLogger, pub *events.Publisher, in models.PredictionInput, cause error) error {
	err := apperrors.NewPredictionError(cause)
	kind := apperrors.KindOf(err)
	if p.recorder != nil {
		p.recorder.PredictionFailed(kind.String())
	}

	if kind == apperrors.KindValidation {
		log.WithField("district", in.District).Infof("Prediction rejected: %v", cause)
		return err
	}
	log.WithField("district", in.District).Errorf("Prediction failed: %v", cause)
	pub.PredictionFailed(in, cause)
	return err
}

func (p *Predictor) recordCache(hit bool) {
	if p.recorder != nil {
		p.recorder.CacheLookup(hit)
	}
}

// cacheKey ties a request to the model run that would answer it.
func cacheKey(runID string, r models.ValidatedRequest) string {
	return strings.Join([]string{
		runID,
		strings.ToLower(r.District),
		strings.ToLower(r.PropertyType),
		strconv.FormatFloat(r.Area, 'f', -1, 64),
		strconv.Itoa(r.RoomCount),
		strconv.Itoa(r.LivingRoomCount),
		strconv.Itoa(r.BuildingAge),
	}, ":")
}
