package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/housing-valuator/internal/artifacts"
	"github.com/OldStager01/housing-valuator/internal/preparer"
	"github.com/OldStager01/housing-valuator/pkg/apperrors"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

// DataHandler serves the exploration views computed from the raw listings.
type DataHandler struct {
	source   BundleSource
	preparer *preparer.Preparer
	limits   Limits
}

func NewDataHandler(source BundleSource, prep *preparer.Preparer, limits Limits) *DataHandler {
	return &DataHandler{source: source, preparer: prep, limits: limits}
}

func (h *DataHandler) raw(c *gin.Context) []models.PropertyRecord {
	var b *artifacts.Bundle
	if h.source != nil {
		b = h.source.Current()
	}
	var raw []models.PropertyRecord
	if b != nil {
		raw = b.RawData()
	}
	if len(raw) == 0 {
		writeError(c, apperrors.NewDataLoadError("", errNoRawData))
		return nil
	}
	return raw
}

func (h *DataHandler) Outliers(c *gin.Context) {
	raw := h.raw(c)
	if raw == nil {
		return
	}
	c.JSON(http.StatusOK, h.preparer.OutlierStats(raw))
}

func (h *DataHandler) Districts(c *gin.Context) {
	raw := h.raw(c)
	if raw == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"districts": h.preparer.DistrictSummary(raw)})
}

// Sample returns the first rows of the exploration dataset.
func (h *DataHandler) Sample(c *gin.Context) {
	raw := h.raw(c)
	if raw == nil {
		return
	}

	prepared := h.preparer.PrepareEDA(raw)
	total := len(prepared)
	if limit := h.limits.parse(c); limit < total {
		prepared = prepared[:limit]
	}
	rows := make([]models.SampleRow, len(prepared))
	for i, r := range prepared {
		rows[i] = models.NewSampleRow(r)
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":  rows,
		"count": len(rows),
		"total": total,
	})
}
