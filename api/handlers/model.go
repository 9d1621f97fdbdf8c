package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
)

type ModelHandler struct {
	source BundleSource
}

func NewModelHandler(source BundleSource) *ModelHandler {
	return &ModelHandler{source: source}
}

func (h *ModelHandler) Metrics(c *gin.Context) {
	b := loaded(c, h.source)
	if b == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"metrics":  b.Metrics(),
		"manifest": b.Manifest(),
	})
}

func (h *ModelHandler) FeatureImportance(c *gin.Context) {
	b := loaded(c, h.source)
	if b == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"feature_importance": b.FeatureImportance()})
}

type DistrictScore struct {
	District string  `json:"district"`
	Score    float64 `json:"score"`
}

// DistrictScores lists the target encoding, most expensive district first.
func (h *ModelHandler) DistrictScores(c *gin.Context) {
	b := loaded(c, h.source)
	if b == nil {
		return
	}

	table := b.DistrictScores()
	scores := make([]DistrictScore, 0, len(table))
	for d, s := range table {
		scores = append(scores, DistrictScore{District: d, Score: s})
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score > scores[j].Score
		}
		return scores[i].District < scores[j].District
	})

	c.JSON(http.StatusOK, gin.H{"district_scores": scores})
}
