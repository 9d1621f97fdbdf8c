package regression

import (
	"bytes"
	"context"
	"encoding/gob"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/housing-valuator/pkg/models"
)

// synthetic builds rows whose price is driven mostly by area and district.
func synthetic(n int, seed int64) ([]models.FeatureRow, []float64) {
	rnd := rand.New(rand.NewSource(seed))
	districts := []string{"Bornova", "Buca", "Cesme", "Karsiyaka"}
	unit := map[string]float64{"Bornova": 30000, "Buca": 22000, "Cesme": 70000, "Karsiyaka": 35000}
	types := []string{"Daire", "Villa"}

	rows := make([]models.FeatureRow, n)
	prices := make([]float64, n)
	for i := range rows {
		d := districts[rnd.Intn(len(districts))]
		pt := types[rnd.Intn(len(types))]
		area := 50 + rnd.Float64()*250
		age := float64(rnd.Intn(40))
		mult := 1.0
		if pt == "Villa" {
			mult = 1.4
		}
		rows[i] = models.FeatureRow{
			Area: area, Age: age, District: d, PropertyType: pt,
			TotalRooms: float64(2 + rnd.Intn(5)), DistrictScore: unit[d],
		}
		prices[i] = area * unit[d] * mult * (1 - age/200) * (0.95 + rnd.Float64()*0.1)
	}
	return rows, prices
}

func smallParams() models.Hyperparams {
	return models.Hyperparams{
		MaxIter: 60, LearningRate: 0.1, MaxDepth: 6, L2Regularization: 0.1,
		RandomState: 42, TestSize: 0.2, MaxBins: 64, MaxLeafNodes: 15, MinSamplesLeaf: 5,
	}
}

func TestFitTransformer_ImputesScalesAndEncodes(t *testing.T) {
	rows := []models.FeatureRow{
		{Area: 100, Age: 10, District: "Buca", PropertyType: "Daire", TotalRooms: 4, DistrictScore: 20000},
		{Area: 200, Age: math.NaN(), District: "Bornova", PropertyType: "Villa", TotalRooms: 6, DistrictScore: 30000},
		{Area: 300, Age: 30, District: "Buca", PropertyType: "Daire", TotalRooms: 4, DistrictScore: 20000},
	}

	tr, err := FitTransformer(rows)
	require.NoError(t, err)

	assert.Equal(t, 4+2+2, tr.Width())
	assert.Equal(t, []string{"Bornova", "Buca"}, tr.Vocabulary(FeatureDistrict))
	assert.Equal(t, 20.0, tr.Numeric[1].Median)

	v := tr.Transform(rows[1])
	assert.InDelta(t, 0.0, v[0], 1e-12, "area 200 is the mean")
	assert.InDelta(t, 0.0, v[1], 1e-12, "imputed age equals the mean")
	assert.Equal(t, []float64{1, 0, 0, 1}, v[4:])
}

func TestTransform_UnknownCategoryIsAllZero(t *testing.T) {
	tr, err := FitTransformer([]models.FeatureRow{
		{Area: 100, District: "Buca", PropertyType: "Daire"},
		{Area: 120, District: "Urla", PropertyType: "Villa"},
	})
	require.NoError(t, err)

	v := tr.Transform(models.FeatureRow{Area: 110, District: "Atlantis", PropertyType: "Castle"})

	assert.Equal(t, []float64{0, 0, 0, 0}, v[4:])
}

func TestTransform_ConstantColumnScaleIsOne(t *testing.T) {
	tr, err := FitTransformer([]models.FeatureRow{
		{Area: 100, TotalRooms: 3}, {Area: 200, TotalRooms: 3},
	})
	require.NoError(t, err)

	assert.Equal(t, 1.0, tr.Numeric[2].Scale)
	assert.Equal(t, 0.0, tr.Transform(models.FeatureRow{Area: 100, TotalRooms: 3})[2])
}

func TestBinMapper_ThresholdInvariant(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	X := make([][]float64, 1000)
	for i := range X {
		X[i] = []float64{rnd.NormFloat64(), float64(rnd.Intn(4))}
	}

	m := FitBinMapper(X, 32)

	assert.LessOrEqual(t, m.NumBins(0), 32)
	assert.Equal(t, 4, m.NumBins(1))
	binned := m.Transform(X)
	for j := range m.Thresholds {
		for i := range X {
			for b, thr := range m.Thresholds[j] {
				assert.Equal(t, X[i][j] <= thr, binned[j][i] <= uint8(b))
			}
		}
	}
}

func TestTreeGrowth_RespectsLimits(t *testing.T) {
	rows, prices := synthetic(400, 1)
	p := smallParams()
	p.MaxIter = 5
	p.MaxLeafNodes = 8
	p.MaxDepth = 3
	p.MinSamplesLeaf = 10

	m, err := Fit(context.Background(), rows, prices, p)
	require.NoError(t, err)
	require.NotEmpty(t, m.Booster.Trees)

	for _, tree := range m.Booster.Trees {
		assert.LessOrEqual(t, tree.LeafCount(), 8)
		assert.LessOrEqual(t, depth(&tree, 0), 3)
		for _, n := range tree.Nodes {
			if n.Leaf {
				assert.GreaterOrEqual(t, n.Samples, 10)
			}
		}
	}
}

func depth(t *Tree, i int) int {
	n := t.Nodes[i]
	if n.Leaf {
		return 0
	}
	l, r := depth(t, n.Left), depth(t, n.Right)
	if l > r {
		return l + 1
	}
	return r + 1
}

func TestFit_LearnsAndEvaluates(t *testing.T) {
	rows, prices := synthetic(600, 3)
	train, test := TrainTestSplit(len(rows), 0.2, 42)

	m, err := Fit(context.Background(), pickRows(rows, train), pickFloats(prices, train), smallParams())
	require.NoError(t, err)

	metrics, err := m.Evaluate(pickRows(rows, test), pickFloats(prices, test))
	require.NoError(t, err)

	assert.Greater(t, metrics.R2, 0.8)
	assert.Greater(t, metrics.RMSE, 0.0)
	assert.GreaterOrEqual(t, metrics.RMSE, metrics.MAE)
	assert.Equal(t, len(test), metrics.TestRows)
}

func TestFit_IsDeterministic(t *testing.T) {
	rows, prices := synthetic(300, 5)

	a, err := Fit(context.Background(), rows, prices, smallParams())
	require.NoError(t, err)
	b, err := Fit(context.Background(), rows, prices, smallParams())
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		pa, _ := a.Predict(rows[i])
		pb, _ := b.Predict(rows[i])
		assert.Equal(t, pa, pb)
	}
}

func TestPredict_UnknownCategoryDoesNotFail(t *testing.T) {
	rows, prices := synthetic(200, 9)
	m, err := Fit(context.Background(), rows, prices, smallParams())
	require.NoError(t, err)

	v, err := m.Predict(models.FeatureRow{Area: 120, Age: 5, District: "Atlantis", PropertyType: "Castle", TotalRooms: 4, DistrictScore: 50000})

	require.NoError(t, err)
	assert.Greater(t, v, 0.0)
}

func TestPredict_NotFitted(t *testing.T) {
	var m *Model
	_, err := m.Predict(models.FeatureRow{})
	assert.ErrorIs(t, err, ErrNotFitted)
}

func TestFit_HonoursContext(t *testing.T) {
	rows, prices := synthetic(100, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fit(ctx, rows, prices, smallParams())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFeatureImportance_NormalisedAndReadable(t *testing.T) {
	rows, prices := synthetic(400, 11)
	m, err := Fit(context.Background(), rows, prices, smallParams())
	require.NoError(t, err)

	imp := m.FeatureImportance(0)

	require.Len(t, imp, 6)
	var sum float64
	for i, fi := range imp {
		sum += fi.Importance
		if i > 0 {
			assert.GreaterOrEqual(t, imp[i-1].Importance, fi.Importance)
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
	assert.Contains(t, []string{FeatureArea, FeatureDistrictScore, FeatureDistrict}, imp[0].Feature)
	assert.Len(t, m.FeatureImportance(3), 3)
}

func TestModel_GobRoundTripPredictsTheSame(t *testing.T) {
	rows, prices := synthetic(200, 13)
	m, err := Fit(context.Background(), rows, prices, smallParams())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(m))
	var loaded Model
	require.NoError(t, gob.NewDecoder(&buf).Decode(&loaded))

	want, _ := m.Predict(rows[0])
	got, err := loaded.Predict(rows[0])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestTrainTestSplit(t *testing.T) {
	train, test := TrainTestSplit(10, 0.2, 42)
	assert.Len(t, test, 2)
	assert.Len(t, train, 8)

	again, _ := TrainTestSplit(10, 0.2, 42)
	assert.Equal(t, train, again)

	seen := map[int]bool{}
	for _, i := range append(append([]int{}, train...), test...) {
		assert.False(t, seen[i])
		seen[i] = true
	}
	assert.Len(t, seen, 10)

	train, test = TrainTestSplit(3, 0.01, 1)
	assert.Len(t, test, 1)
	assert.Len(t, train, 2)
}

func pickRows(rows []models.FeatureRow, idx []int) []models.FeatureRow {
	out := make([]models.FeatureRow, len(idx))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out
}

func pickFloats(xs []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = xs[j]
	}
	return out
}
