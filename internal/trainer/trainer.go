// Package trainer runs the offline training sequence and publishes a fresh artifact set.
package trainer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/OldStager01/housing-valuator/internal/artifacts"
	"github.com/OldStager01/housing-valuator/internal/dataset"
	"github.com/OldStager01/housing-valuator/internal/events"
	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/internal/preparer"
	"github.com/OldStager01/housing-valuator/internal/regression"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

type Stage string

const (
	StageLoad    Stage = "load"
	StagePrepare Stage = "prepare"
	StageBuild   Stage = "build"
	StageFit     Stage = "fit"
	StagePersist Stage = "persist"
)

// MinTrainingRows is the smallest cleaned dataset a run accepts.
const MinTrainingRows = 10

var ErrTooFewRows = errors.New("too few rows after cleaning")

// StageError records where a run stopped. The cause stays reachable, so a
// load failure is still a *apperrors.DataLoadError under errors.As.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("training failed at %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type Config struct {
	RawDataPath    string
	ArtifactDir    string
	Files          artifacts.FileNames
	Hyperparams    models.Hyperparams
	ImportanceTopN int
}

type Recorder interface {
	TrainingFinished(run *models.TrainingRun)
}

type Option func(*Trainer)

func WithPublisher(p *events.Publisher) Option {
	return func(t *Trainer) { t.publisher = p }
}

func WithRecorder(r Recorder) Option {
	return func(t *Trainer) { t.recorder = r }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(t *Trainer) { t.log = l }
}

type StageTiming struct {
	Stage    Stage         `json:"stage"`
	Duration time.Duration `json:"duration"`
}

// Report is the outcome of a successful run.
type Report struct {
	Run               *models.TrainingRun
	Metrics           models.ModelMetrics
	FeatureImportance []models.FeatureImportance
	DistrictScores    models.DistrictScoreTable
	Districts         []string
	PropertyTypes     []string
	Stages            []StageTiming
	Bundle            *artifacts.Bundle
}

type Trainer struct {
	config    Config
	preparer  *preparer.Preparer
	publisher *events.Publisher
	recorder  Recorder
	log       logrus.FieldLogger
}

func New(cfg Config, prep *preparer.Preparer, opts ...Option) *Trainer {
	if prep == nil {
		prep = preparer.New(preparer.Config{}, nil)
	}
	t := &Trainer{
		config:   cfg,
		preparer: prep,
		log:      logger.Get(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// run carries the intermediate results between stages.
type run struct {
	record  *models.TrainingRun
	raw     []models.PropertyRecord
	cleaned []models.PreparedRecord
	scores  models.DistrictScoreTable

	trainRows, testRows     []models.FeatureRow
	trainPrices, testPrices []float64
	districts, types        []string

	model      *regression.Model
	metrics    models.ModelMetrics
	importance []models.FeatureImportance
	bundle     *artifacts.Bundle
	stages     []StageTiming
}

// Run executes every stage in order. The first failure ends the run and the
// artifact directory is left as it was.
func (t *Trainer) Run(ctx context.Context) (*Report, error) {
	r := &run{record: &models.TrainingRun{
		RunID:     models.NewUUID(),
		StartedAt: time.Now().UTC(),
	}}
	log := t.log.WithField("run_id", r.record.RunID)
	pub := t.publisher.WithTraceID(logger.TraceIDFromContext(ctx))
	log.Info("Training started")

	steps := []struct {
		stage Stage
		fn    func(context.Context, *run) error
	}{
		{StageLoad, t.load},
		{StagePrepare, t.prepare},
		{StageBuild, t.build},
		{StageFit, t.fit},
		{StagePersist, t.persist},
	}

	for _, step := range steps {
		started := time.Now()
		err := ctx.Err()
		if err == nil {
			err = step.fn(ctx, r)
		}
		if err != nil {
			return nil, t.failed(log, pub, r, step.stage, err)
		}
		took := time.Since(started)
		r.stages = append(r.stages, StageTiming{Stage: step.stage, Duration: took})
		pub.StageCompleted(r.record.RunID, string(step.stage), took)
		log.WithField("stage", step.stage).Infof("Stage completed in %s", took)
	}

	r.record.FinishedAt = time.Now().UTC()
	r.record.Status = models.TrainingSucceeded
	metrics := r.metrics
	r.record.Metrics = &metrics

	if t.recorder != nil {
		t.recorder.TrainingFinished(r.record)
	}
	pub.TrainingCompleted(r.record)

	log.WithFields(logrus.Fields{
		"r2":   r.metrics.R2,
		"mae":  r.metrics.MAE,
		"rmse": r.metrics.RMSE,
	}).Infof("Training completed in %s", r.record.Duration())

	return &Report{
		Run:               r.record,
		Metrics:           r.metrics,
		FeatureImportance: r.importance,
		DistrictScores:    r.scores,
		Districts:         r.districts,
		PropertyTypes:     r.types,
		Stages:            r.stages,
		Bundle:            r.bundle,
	}, nil
}

func (t *Trainer) failed(log logrus.FieldLogger, pub *events.Publisher, r *run, stage Stage, cause error) error {
	err := &StageError{Stage: stage, Err: cause}
	r.record.FinishedAt = time.Now().UTC()
	r.record.Status = models.TrainingFailed
	r.record.FailedAt = string(stage)
	r.record.Error = cause.Error()

	if t.recorder != nil {
		t.recorder.TrainingFinished(r.record)
	}
	pub.TrainingFailed(r.record)
	log.WithField("stage", stage).Errorf("Training failed: %v", cause)
	return err
}

func (t *Trainer) load(_ context.Context, r *run) error {
	raw, err := dataset.Read(t.config.RawDataPath)
	if err != nil {
		return err
	}
	r.raw = raw
	r.record.RawRows = len(raw)
	return nil
}

func (t *Trainer) prepare(_ context.Context, r *run) error {
	cleaned := t.preparer.Clean(r.raw, preparer.ModeTraining)
	if len(cleaned) < MinTrainingRows {
		return fmt.Errorf("%w: %d of %d", ErrTooFewRows, len(cleaned), len(r.raw))
	}
	r.scores, r.cleaned = t.preparer.EncodeDistricts(cleaned)
	r.record.CleanRows = len(r.cleaned)
	return nil
}

func (t *Trainer) build(_ context.Context, r *run) error {
	hp := t.config.Hyperparams
	testSize := hp.TestSize
	if testSize <= 0 || testSize >= 1 {
		testSize = 0.2
	}

	train, test := regression.TrainTestSplit(len(r.cleaned), testSize, hp.RandomState)
	r.trainRows, r.trainPrices = pick(r.cleaned, train)
	r.testRows, r.testPrices = pick(r.cleaned, test)

	districts := make(map[string]struct{})
	types := make(map[string]struct{})
	for _, rec := range r.cleaned {
		districts[rec.District] = struct{}{}
		types[rec.PropertyType] = struct{}{}
	}
	r.districts = keys(districts)
	r.types = keys(types)
	return nil
}

func (t *Trainer) fit(ctx context.Context, r *run) error {
	model, err := regression.Fit(ctx, r.trainRows, r.trainPrices, t.config.Hyperparams)
	if err != nil {
		return err
	}

	metrics, err := model.Evaluate(r.testRows, r.testPrices)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	metrics.TrainRows = len(r.trainRows)

	r.model = model
	r.metrics = metrics
	r.importance = model.FeatureImportance(t.config.ImportanceTopN)
	return nil
}

func (t *Trainer) persist(_ context.Context, r *run) error {
	contents := artifacts.Contents{
		Model:             r.model,
		Districts:         r.districts,
		PropertyTypes:     r.types,
		Metrics:           r.metrics,
		FeatureImportance: r.importance,
		DistrictScores:    r.scores,
		Manifest: models.TrainingManifest{
			RunID:       r.record.RunID,
			TrainedAt:   time.Now().UTC(),
			RawRows:     r.record.RawRows,
			CleanRows:   r.record.CleanRows,
			Duration:    time.Since(r.record.StartedAt),
			RawDataPath: t.config.RawDataPath,
			Hyperparams: r.model.Params,
		},
	}

	if err := artifacts.Save(t.config.ArtifactDir, t.config.Files, contents); err != nil {
		return err
	}
	r.bundle = artifacts.NewBundle(contents, r.raw)
	return nil
}

func pick(records []models.PreparedRecord, idx []int) ([]models.FeatureRow, []float64) {
	rows := make([]models.FeatureRow, len(idx))
	prices := make([]float64, len(idx))
	for i, j := range idx {
		rows[i] = records[j].Features()
		prices[i] = records[j].Price
	}
	return rows, prices
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
