package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{"odd", []float64{5, 1, 3}, 3},
		{"even averages middle pair", []float64{4, 1, 3, 2}, 2.5},
		{"ignores NaN", []float64{math.NaN(), 10, 20}, 15},
		{"single", []float64{7}, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Median(tt.in))
		})
	}

	assert.True(t, math.IsNaN(Median(nil)))
	assert.True(t, math.IsNaN(Median([]float64{math.NaN()})))
}

func TestMedian_DoesNotReorderInput(t *testing.T) {
	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestMeanStd_Population(t *testing.T) {
	mean, std := MeanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	assert.Equal(t, 5.0, mean)
	assert.InDelta(t, 2.0, std, 1e-12)
}

func TestErrorMetrics(t *testing.T) {
	observed := []float64{1, 2, 3, 4}
	estimates := []float64{1, 2, 3, 6}

	assert.InDelta(t, 0.5, MAE(estimates, observed), 1e-12)
	assert.InDelta(t, 1.0, RMSE(estimates, observed), 1e-12)
	assert.InDelta(t, 1.0, R2(observed, observed), 1e-12)
	assert.Less(t, R2(estimates, observed), 1.0)
}

func TestQuantiles(t *testing.T) {
	q := Quantiles([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, []float64{0.1, 0.5, 1})

	assert.Equal(t, []float64{1, 5, 10}, q)
}
