package regression

import (
	"sort"

	"github.com/OldStager01/housing-valuator/internal/stats"
)

// BinMapper discretises each column into at most MaxBins ordinal bins.
// For every column j, x <= Thresholds[j][b] exactly when bin(x) <= b.
type BinMapper struct {
	MaxBins    int
	Thresholds [][]float64
}

func FitBinMapper(X [][]float64, maxBins int) *BinMapper {
	if maxBins < 2 {
		maxBins = 2
	}
	if maxBins > 256 {
		maxBins = 256
	}

	m := &BinMapper{MaxBins: maxBins}
	if len(X) == 0 {
		return m
	}

	width := len(X[0])
	m.Thresholds = make([][]float64, width)
	col := make([]float64, len(X))
	for j := 0; j < width; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		m.Thresholds[j] = columnThresholds(col, maxBins)
	}
	return m
}

func columnThresholds(col []float64, maxBins int) []float64 {
	distinct := uniqueSorted(col)
	if len(distinct) <= 1 {
		return nil
	}

	if len(distinct) <= maxBins {
		out := make([]float64, len(distinct)-1)
		for i := range out {
			out[i] = (distinct[i] + distinct[i+1]) / 2
		}
		return out
	}

	ps := make([]float64, maxBins-1)
	for i := range ps {
		ps[i] = float64(i+1) / float64(maxBins)
	}
	quantiles := stats.Quantiles(col, ps)

	out := make([]float64, 0, len(quantiles))
	for _, q := range quantiles {
		if len(out) == 0 || q > out[len(out)-1] {
			out = append(out, q)
		}
	}
	// The largest value must land in its own bin above every threshold.
	if len(out) > 0 && out[len(out)-1] >= distinct[len(distinct)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func uniqueSorted(col []float64) []float64 {
	s := stats.Finite(col)
	sort.Float64s(s)
	out := s[:0]
	for i, v := range s {
		if i == 0 || v != s[i-1] {
			out = append(out, v)
		}
	}
	return out
}

// NumBins returns the number of bins used by column j.
func (m *BinMapper) NumBins(j int) int {
	return len(m.Thresholds[j]) + 1
}

func (m *BinMapper) bin(j int, v float64) uint8 {
	return uint8(sort.SearchFloat64s(m.Thresholds[j], v))
}

// Transform bins X column-major: out[j][i] is the bin of X[i][j].
func (m *BinMapper) Transform(X [][]float64) [][]uint8 {
	width := len(m.Thresholds)
	out := make([][]uint8, width)
	for j := 0; j < width; j++ {
		out[j] = make([]uint8, len(X))
		for i := range X {
			out[j][i] = m.bin(j, X[i][j])
		}
	}
	return out
}
