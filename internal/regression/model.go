// Package regression implements the valuation pipeline: a column transformer
// (median imputation and standardisation for numeric features, one-hot for
// categorical ones) feeding a histogram gradient boosted regressor that is
// fitted on log1p(price) and answers in currency units through expm1.
package regression

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/OldStager01/housing-valuator/internal/stats"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

var ErrNotFitted = errors.New("model is not fitted")

// Model is the fitted pipeline. Its fields are exported so it can be gob encoded.
type Model struct {
	Transformer *ColumnTransformer
	Booster     *Booster
	Params      models.Hyperparams
}

// Predict returns the price estimate for one feature row.
func (m *Model) Predict(row models.FeatureRow) (float64, error) {
	if m == nil || m.Transformer == nil || m.Booster == nil {
		return 0, ErrNotFitted
	}
	v := math.Expm1(m.Booster.Predict(m.Transformer.Transform(row)))
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("model produced a non-finite estimate")
	}
	return v, nil
}

func (m *Model) PredictAll(rows []models.FeatureRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, r := range rows {
		v, err := m.Predict(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Districts and PropertyTypes return the sorted training vocabularies.
func (m *Model) Districts() []string {
	if m == nil || m.Transformer == nil {
		return nil
	}
	return m.Transformer.Vocabulary(FeatureDistrict)
}

func (m *Model) PropertyTypes() []string {
	if m == nil || m.Transformer == nil {
		return nil
	}
	return m.Transformer.Vocabulary(FeaturePropertyType)
}

// Fit trains the full pipeline on rows and their prices.
func Fit(ctx context.Context, rows []models.FeatureRow, prices []float64, p models.Hyperparams) (*Model, error) {
	if len(rows) == 0 || len(rows) != len(prices) {
		return nil, fmt.Errorf("fit: %d rows for %d prices", len(rows), len(prices))
	}
	p = normalizeParams(p)

	transformer, err := FitTransformer(rows)
	if err != nil {
		return nil, err
	}

	target := make([]float64, len(prices))
	for i, price := range prices {
		if price <= -1 || math.IsNaN(price) {
			return nil, fmt.Errorf("fit: invalid price %v at row %d", price, i)
		}
		target[i] = math.Log1p(price)
	}

	booster, err := FitBooster(ctx, transformer.TransformAll(rows), target, p)
	if err != nil {
		return nil, err
	}

	return &Model{Transformer: transformer, Booster: booster, Params: p}, nil
}

// Evaluate scores predictions on held-out rows in currency units.
func (m *Model) Evaluate(rows []models.FeatureRow, prices []float64) (models.ModelMetrics, error) {
	estimates, err := m.PredictAll(rows)
	if err != nil {
		return models.ModelMetrics{}, err
	}
	return models.ModelMetrics{
		R2:       stats.R2(estimates, prices),
		MAE:      stats.MAE(estimates, prices),
		RMSE:     stats.RMSE(estimates, prices),
		TestRows: len(prices),
	}, nil
}

// FeatureImportance aggregates split gains back onto source features,
// normalised to sum to one, largest first. topN <= 0 keeps every feature.
func (m *Model) FeatureImportance(topN int) []models.FeatureImportance {
	if m == nil || m.Transformer == nil || m.Booster == nil {
		return nil
	}

	totals := make(map[string]float64)
	var sum float64
	for j, source := range m.Transformer.Sources() {
		if j >= len(m.Booster.Gains) {
			break
		}
		totals[source] += m.Booster.Gains[j]
		sum += m.Booster.Gains[j]
	}

	out := make([]models.FeatureImportance, 0, len(totals))
	for _, name := range append(append([]string(nil), numericFeatures...), FeatureDistrict, FeaturePropertyType) {
		v := totals[name]
		if sum > 0 {
			v /= sum
		}
		out = append(out, models.FeatureImportance{Feature: name, Importance: v})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance > out[j].Importance })
	if topN > 0 && topN < len(out) {
		out = out[:topN]
	}
	return out
}

// TrainTestSplit shuffles row indices with a seeded source and holds out
// ceil(testSize*n) of them, at least one row each side when n >= 2.
func TrainTestSplit(n int, testSize float64, seed int64) (train, test []int) {
	idx := rand.New(rand.NewSource(seed)).Perm(n)

	nTest := int(math.Ceil(testSize * float64(n)))
	if n >= 2 {
		if nTest < 1 {
			nTest = 1
		}
		if nTest > n-1 {
			nTest = n - 1
		}
	} else {
		nTest = 0
	}

	test = append([]int(nil), idx[:nTest]...)
	train = append([]int(nil), idx[nTest:]...)
	return train, test
}
