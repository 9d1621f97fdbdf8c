package regression

import (
	"context"
	"fmt"

	"github.com/OldStager01/housing-valuator/internal/stats"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

// Booster is a least-squares gradient boosted ensemble of histogram trees.
type Booster struct {
	Baseline float64
	Trees    []Tree
	// Gains holds the total split gain per transformed column.
	Gains []float64
}

func normalizeParams(p models.Hyperparams) models.Hyperparams {
	if p.MaxIter <= 0 {
		p.MaxIter = 500
	}
	if p.LearningRate <= 0 {
		p.LearningRate = 0.05
	}
	if p.MaxDepth <= 0 {
		p.MaxDepth = 10
	}
	if p.L2Regularization < 0 {
		p.L2Regularization = 0
	}
	if p.MaxBins <= 0 {
		p.MaxBins = 255
	}
	if p.MaxLeafNodes < 2 {
		p.MaxLeafNodes = 31
	}
	if p.MinSamplesLeaf <= 0 {
		p.MinSamplesLeaf = 20
	}
	if p.TestSize <= 0 || p.TestSize >= 1 {
		p.TestSize = 0.2
	}
	return p
}

// FitBooster trains on the dense matrix X against y. The context is checked
// between iterations.
func FitBooster(ctx context.Context, X [][]float64, y []float64, p models.Hyperparams) (*Booster, error) {
	if len(X) == 0 || len(X) != len(y) {
		return nil, fmt.Errorf("fit booster: %d rows for %d targets", len(X), len(y))
	}
	p = normalizeParams(p)

	mapper := FitBinMapper(X, p.MaxBins)
	binned := mapper.Transform(X)

	n := len(y)
	b := &Booster{Baseline: stats.Mean(y), Gains: make([]float64, len(X[0]))}

	raw := make([]float64, n)
	for i := range raw {
		raw[i] = b.Baseline
	}

	gradients := make([]float64, n)
	hessians := make([]float64, n)
	for i := range hessians {
		hessians[i] = 1
	}
	samples := make([]int, n)
	for i := range samples {
		samples[i] = i
	}

	grower := &treeGrower{
		params: growParams{
			maxLeafNodes:   p.MaxLeafNodes,
			maxDepth:       p.MaxDepth,
			minSamplesLeaf: p.MinSamplesLeaf,
			l2:             p.L2Regularization,
			shrinkage:      p.LearningRate,
		},
		binned:    binned,
		mapper:    mapper,
		gradients: gradients,
		hessians:  hessians,
		gains:     b.Gains,
	}

	for iter := 0; iter < p.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for i := range gradients {
			gradients[i] = raw[i] - y[i]
		}

		tree, splitBins := grower.grow(samples)
		// A lone root means no split improves the loss any further.
		if tree.LeafCount() == 1 {
			break
		}
		b.Trees = append(b.Trees, *tree)

		for i := range raw {
			raw[i] += tree.predictBinned(binned, i, splitBins)
		}
	}

	return b, nil
}

func (b *Booster) Predict(x []float64) float64 {
	v := b.Baseline
	for i := range b.Trees {
		v += b.Trees[i].Predict(x)
	}
	return v
}
