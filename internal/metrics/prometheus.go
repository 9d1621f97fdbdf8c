package metrics

import (
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OldStager01/housing-valuator/pkg/models"
)

const namespace = "valuator"

type Metrics struct {
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	// Counters
	predictionsTotal   *prometheus.CounterVec // category
	predictionFailures *prometheus.CounterVec // kind
	trainingRunsTotal  *prometheus.CounterVec // status
	cacheLookups       *prometheus.CounterVec // result
	httpRequests       *prometheus.CounterVec // method, route, status

	// Gauges
	lastRunR2        prometheus.Gauge
	lastRunMAE       prometheus.Gauge
	lastRunRMSE      prometheus.Gauge
	lastRunTimestamp prometheus.Gauge
	artifactsLoaded  prometheus.Gauge

	// Histograms
	predictionLatency prometheus.Histogram
	trainingDuration  prometheus.Histogram
	httpLatency       *prometheus.HistogramVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide instance registered on the default registry.
func Get() *Metrics {
	once.Do(func() {
		instance = newMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	})
	return instance
}

// New registers a fresh set of instruments on reg.
func New(reg *prometheus.Registry) *Metrics {
	return newMetrics(reg, reg)
}

func newMetrics(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		registerer: reg,
		gatherer:   g,
		predictionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Completed predictions by luxury category",
		}, []string{"category"}),
		predictionFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_failures_total",
			Help:      "Failed predictions by error kind",
		}, []string{"kind"}),
		trainingRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_runs_total",
			Help:      "Training runs by final status",
		}, []string{"status"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_cache_lookups_total",
			Help:      "Prediction cache lookups by result",
		}, []string{"result"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		lastRunR2: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_r2",
			Help:      "Held-out R2 of the loaded model",
		}),
		lastRunMAE: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_mae",
			Help:      "Held-out mean absolute error of the loaded model",
		}),
		lastRunRMSE: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_rmse",
			Help:      "Held-out root mean squared error of the loaded model",
		}),
		lastRunTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "training_last_run_timestamp_seconds",
			Help:      "Unix time the last training run finished",
		}),
		artifactsLoaded: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "artifacts_loaded",
			Help:      "1 when a model artifact set is loaded",
		}),
		predictionLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent producing a prediction",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		trainingDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "training_duration_seconds",
			Help:      "Wall time of training runs",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

func (m *Metrics) PredictionCompleted(category string, took time.Duration) {
	m.predictionsTotal.WithLabelValues(category).Inc()
	m.predictionLatency.Observe(took.Seconds())
}

func (m *Metrics) PredictionFailed(kind string) {
	m.predictionFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) TrainingFinished(run *models.TrainingRun) {
	m.trainingRunsTotal.WithLabelValues(string(run.Status)).Inc()
	m.trainingDuration.Observe(run.Duration().Seconds())
	m.lastRunTimestamp.Set(float64(run.FinishedAt.Unix()))
	if run.Metrics != nil {
		m.SetModelMetrics(*run.Metrics)
	}
}

func (m *Metrics) SetModelMetrics(mm models.ModelMetrics) {
	m.lastRunR2.Set(mm.R2)
	m.lastRunMAE.Set(mm.MAE)
	m.lastRunRMSE.Set(mm.RMSE)
}

func (m *Metrics) SetArtifactsLoaded(loaded bool) {
	v := 0.0
	if loaded {
		v = 1
	}
	m.artifactsLoaded.Set(v)
}

func (m *Metrics) ObserveHTTP(method, route, status string, took time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(took.Seconds())
}

// WatchDB exports the connection pool statistics of db.
func (m *Metrics) WatchDB(db *sql.DB, name string) error {
	return m.registerer.Register(collectors.NewDBStatsCollector(db, name))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
