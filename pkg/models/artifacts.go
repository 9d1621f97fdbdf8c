package models

import (
	"sort"
	"time"
)

// ModelMetrics are held-out evaluation metrics of one training run.
type ModelMetrics struct {
	R2        float64 `json:"r2"`
	MAE       float64 `json:"mae"`
	RMSE      float64 `json:"rmse"`
	TrainRows int     `json:"train_rows"`
	TestRows  int     `json:"test_rows"`
}

// FeatureImportance is one row of the importance table.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// DistrictScoreTable maps a district to its median unit price in training data.
type DistrictScoreTable map[string]float64

// Lookup returns the score for district or def when absent.
func (t DistrictScoreTable) Lookup(district string, def float64) (float64, bool) {
	if score, ok := t[district]; ok {
		return score, true
	}
	return def, false
}

func (t DistrictScoreTable) Districts() []string {
	out := make([]string, 0, len(t))
	for d := range t {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

func (t DistrictScoreTable) Clone() DistrictScoreTable {
	out := make(DistrictScoreTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// TrainingManifest describes the run that produced an artifact set.
type TrainingManifest struct {
	RunID       string        `json:"run_id"`
	TrainedAt   time.Time     `json:"trained_at"`
	RawRows     int           `json:"raw_rows"`
	CleanRows   int           `json:"clean_rows"`
	Duration    time.Duration `json:"duration"`
	RawDataPath string        `json:"raw_data_path"`
	Hyperparams Hyperparams   `json:"hyperparams"`
}

// Hyperparams mirrors the model section of the configuration used for a run.
type Hyperparams struct {
	MaxIter          int     `json:"max_iter"`
	LearningRate     float64 `json:"learning_rate"`
	MaxDepth         int     `json:"max_depth"`
	L2Regularization float64 `json:"l2_regularization"`
	RandomState      int64   `json:"random_state"`
	TestSize         float64 `json:"test_size"`
	MaxBins          int     `json:"max_bins"`
	MaxLeafNodes     int     `json:"max_leaf_nodes"`
	MinSamplesLeaf   int     `json:"min_samples_leaf"`
}
