// Package stats holds the small set of descriptive statistics shared by the
// preparer and the regression pipeline.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Median returns the middle value of xs, averaging the two middle values for
// an even count. NaN entries are ignored; an all-NaN or empty input yields NaN.
func Median(xs []float64) float64 {
	s := Finite(xs)
	if len(s) == 0 {
		return math.NaN()
	}
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return stat.Mean(s[n/2-1:n/2+1], nil)
}

// Finite copies the non-NaN, non-Inf values of xs.
func Finite(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, v := range xs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Mean is the arithmetic mean; empty input yields 0.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// MeanStd returns the mean and population standard deviation of xs.
func MeanStd(xs []float64) (mean, std float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	mean = stat.Mean(xs, nil)
	std = math.Sqrt(stat.PopVariance(xs, nil))
	return mean, std
}

// Quantiles returns the empirical quantiles of xs at each p in ps.
func Quantiles(xs []float64, ps []float64) []float64 {
	s := Finite(xs)
	out := make([]float64, len(ps))
	if len(s) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	sort.Float64s(s)
	for i, p := range ps {
		out[i] = stat.Quantile(p, stat.Empirical, s, nil)
	}
	return out
}

// R2 is the coefficient of determination of estimates against observed.
func R2(estimates, observed []float64) float64 {
	return stat.RSquaredFrom(estimates, observed, nil)
}

// MAE is the mean absolute error.
func MAE(estimates, observed []float64) float64 {
	if len(observed) == 0 {
		return 0
	}
	return floats.Distance(estimates, observed, 1) / float64(len(observed))
}

// RMSE is the root mean squared error.
func RMSE(estimates, observed []float64) float64 {
	if len(observed) == 0 {
		return 0
	}
	return floats.Distance(estimates, observed, 2) / math.Sqrt(float64(len(observed)))
}
