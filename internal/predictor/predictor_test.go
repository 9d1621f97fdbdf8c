package predictor

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/housing-valuator/internal/events"
	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/internal/luxury"
	"github.com/OldStager01/housing-valuator/pkg/apperrors"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

type fakeArtifacts struct {
	price  float64
	err    error
	scores models.DistrictScoreTable
	seen   []models.FeatureRow
}

func (f *fakeArtifacts) IsLoaded() bool { return f != nil }

func (f *fakeArtifacts) Predict(row models.FeatureRow) (float64, error) {
	f.seen = append(f.seen, row)
	return f.price, f.err
}

func (f *fakeArtifacts) Districts() []string     { return []string{"Buca", "Cesme"} }
func (f *fakeArtifacts) PropertyTypes() []string { return []string{"Daire", "Villa"} }
func (f *fakeArtifacts) RunID() string           { return "run-1" }

func (f *fakeArtifacts) DistrictScore(d string, def float64) (float64, bool) {
	return f.scores.Lookup(d, def)
}

type fakeCache struct {
	mu    sync.Mutex
	items map[string]*models.PredictionResult
}

func (c *fakeCache) Get(_ context.Context, key string) (*models.PredictionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.items[key]
	return r, ok
}

func (c *fakeCache) Set(_ context.Context, key string, r *models.PredictionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = r
}

type fakeRecorder struct {
	completed []string
	failed    []string
	hits      int
	misses    int
}

func (r *fakeRecorder) PredictionCompleted(category string, _ time.Duration) {
	r.completed = append(r.completed, category)
}
func (r *fakeRecorder) PredictionFailed(kind string) { r.failed = append(r.failed, kind) }
func (r *fakeRecorder) CacheLookup(hit bool) {
	if hit {
		r.hits++
	} else {
		r.misses++
	}
}

func villaInput() models.PredictionInput {
	return models.PredictionInput{District: "Cesme", PropertyType: "Villa", Area: 400, RoomCount: 5, LivingRoomCount: 2, BuildingAge: 0}
}

func newTestPredictor(a Artifacts, opts ...Option) *Predictor {
	opts = append([]Option{WithLogger(logger.Discard())}, opts...)
	return New(DefaultConfig(), a, nil, luxury.NewScorer(luxury.DefaultConfig()), opts...)
}

func TestPredict_UltraLuxuryVilla(t *testing.T) {
	a := &fakeArtifacts{price: 25_000_000.9, scores: models.DistrictScoreTable{"Cesme": 80000}}
	p := newTestPredictor(a)

	result, err := p.Predict(context.Background(), villaInput())

	require.NoError(t, err)
	assert.Equal(t, int64(25_000_000), result.PredictedPrice)
	assert.Equal(t, models.LuxuryBreakdown{Price: 40, Area: 25, District: 20, PropertyType: 15, BuildingAge: 15}, result.LuxuryBreakdown)
	assert.Equal(t, 100, result.LuxuryScore)
	assert.Equal(t, models.CategoryUltraLuxury, result.LuxuryCategory)
	assert.Equal(t, "run-1", result.ModelRunID)

	require.Len(t, a.seen, 1)
	assert.Equal(t, models.FeatureRow{Area: 400, Age: 0, District: "Cesme", PropertyType: "Villa", TotalRooms: 7, DistrictScore: 80000}, a.seen[0])
}

func TestPredict_UnknownDistrictScoreUsesDefault(t *testing.T) {
	a := &fakeArtifacts{price: 1_000_000, scores: models.DistrictScoreTable{}}
	p := newTestPredictor(a)

	_, err := p.Predict(context.Background(), models.PredictionInput{District: "Buca", PropertyType: "Daire", Area: 90, RoomCount: 2, LivingRoomCount: 1, BuildingAge: 10})

	require.NoError(t, err)
	assert.Equal(t, float64(DefaultDistrictScore), a.seen[0].DistrictScore)
}

func TestPredict_ZeroDefaultDistrictScoreIsHonoured(t *testing.T) {
	a := &fakeArtifacts{price: 1_000_000, scores: models.DistrictScoreTable{}}
	p := New(Config{DefaultDistrictScore: 0}, a, nil, nil, WithLogger(logger.Discard()))

	_, err := p.Predict(context.Background(), models.PredictionInput{District: "Buca", PropertyType: "Daire", Area: 90, RoomCount: 2, LivingRoomCount: 1, BuildingAge: 10})

	require.NoError(t, err)
	assert.Equal(t, 0.0, a.seen[0].DistrictScore)
}

func TestPredict_ValidationFailure(t *testing.T) {
	rec := &fakeRecorder{}
	a := &fakeArtifacts{price: 1_000_000}
	p := newTestPredictor(a, WithRecorder(rec))
	in := villaInput()
	in.Area = 10

	result, err := p.Predict(context.Background(), in)

	assert.Nil(t, result)
	var predErr *apperrors.PredictionError
	require.ErrorAs(t, err, &predErr)
	var valErr *apperrors.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, []string{"Area must be between 20-1000"}, valErr.Problems)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Empty(t, a.seen, "model must not run on invalid input")
	assert.Equal(t, []string{"VALIDATION_ERROR"}, rec.failed)
}

func TestPredict_NotLoaded(t *testing.T) {
	tests := []struct {
		name string
		a    Artifacts
	}{
		{"nil interface", nil},
		{"typed nil", (*fakeArtifacts)(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPredictor(tt.a)

			_, err := p.Predict(context.Background(), villaInput())

			var predErr *apperrors.PredictionError
			require.ErrorAs(t, err, &predErr)
			assert.Equal(t, apperrors.KindModelLoad, apperrors.KindOf(err))
			assert.ErrorIs(t, err, ErrNotLoaded)
			assert.False(t, p.Ready())
		})
	}
}

func TestPredict_ModelFailures(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		err   error
	}{
		{"model error", 0, errors.New("boom")},
		{"nan", math.NaN(), nil},
		{"inf", math.Inf(1), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPredictor(&fakeArtifacts{price: tt.price, err: tt.err})

			result, err := p.Predict(context.Background(), villaInput())

			assert.Nil(t, result)
			assert.Equal(t, apperrors.KindPrediction, apperrors.KindOf(err))
		})
	}
}

func TestPredict_CacheHitSkipsModel(t *testing.T) {
	rec := &fakeRecorder{}
	cache := &fakeCache{items: map[string]*models.PredictionResult{}}
	a := &fakeArtifacts{price: 3_000_000}
	p := newTestPredictor(a, WithCache(cache), WithRecorder(rec))

	first, err := p.Predict(context.Background(), villaInput())
	require.NoError(t, err)
	second, err := p.Predict(context.Background(), villaInput())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, a.seen, 1)
	assert.Equal(t, 1, rec.hits)
	assert.Equal(t, 1, rec.misses)
	require.Len(t, rec.completed, 2)
	assert.Equal(t, rec.completed[0], rec.completed[1])
}

func TestPredict_CacheHitIsPublished(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	completed := bus.Subscribe(models.EventTypePredictionCompleted)
	cache := &fakeCache{items: map[string]*models.PredictionResult{}}
	p := newTestPredictor(&fakeArtifacts{price: 3_000_000}, WithCache(cache), WithPublisher(events.NewPublisher(bus)))

	_, err := p.Predict(logger.WithTraceID(context.Background(), "first"), villaInput())
	require.NoError(t, err)
	_, err = p.Predict(logger.WithTraceID(context.Background(), "second"), villaInput())
	require.NoError(t, err)

	var traces []string
	for i := 0; i < 2; i++ {
		select {
		case ev := <-completed:
			traces = append(traces, ev.TraceID)
		case <-time.After(time.Second):
			t.Fatal("missing completed event")
		}
	}
	assert.Equal(t, []string{"first", "second"}, traces)
}

func TestPredict_PublishesEvents(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	completed := bus.Subscribe(models.EventTypePredictionCompleted)
	rejected := bus.Subscribe(models.EventTypePredictionRejected)

	p := newTestPredictor(&fakeArtifacts{price: 3_000_000}, WithPublisher(events.NewPublisher(bus)))
	ctx := logger.WithTraceID(context.Background(), "trace-1")

	_, err := p.Predict(ctx, villaInput())
	require.NoError(t, err)
	bad := villaInput()
	bad.District = ""
	_, err = p.Predict(ctx, bad)
	require.Error(t, err)

	select {
	case ev := <-completed:
		assert.Equal(t, "trace-1", ev.TraceID)
		assert.IsType(t, &models.PredictionResult{}, ev.Data)
	case <-time.After(time.Second):
		t.Fatal("no completed event")
	}
	select {
	case ev := <-rejected:
		assert.Equal(t, models.SeverityWarning, ev.Severity)
	case <-time.After(time.Second):
		t.Fatal("no rejected event")
	}
}

func TestSetArtifacts(t *testing.T) {
	p := newTestPredictor(nil)
	assert.False(t, p.Ready())

	p.SetArtifacts(&fakeArtifacts{price: 1})

	assert.True(t, p.Ready())
}

func TestCacheKey_DependsOnRunAndRequest(t *testing.T) {
	r := models.ValidatedRequest{District: "Buca", PropertyType: "Daire", Area: 95.5, RoomCount: 3, LivingRoomCount: 1, BuildingAge: 4}

	assert.Equal(t, "run-1:buca:daire:95.5:3:1:4", cacheKey("run-1", r))
	assert.NotEqual(t, cacheKey("run-1", r), cacheKey("run-2", r))
}

var _ Artifacts = (*fakeArtifacts)(nil)
