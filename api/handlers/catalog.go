package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CatalogHandler lists the vocabularies a prediction request may use.
type CatalogHandler struct {
	source BundleSource
}

func NewCatalogHandler(source BundleSource) *CatalogHandler {
	return &CatalogHandler{source: source}
}

func (h *CatalogHandler) Districts(c *gin.Context) {
	b := loaded(c, h.source)
	if b == nil {
		return
	}
	districts := b.Districts()
	c.JSON(http.StatusOK, gin.H{"districts": districts, "count": len(districts)})
}

func (h *CatalogHandler) PropertyTypes(c *gin.Context) {
	b := loaded(c, h.source)
	if b == nil {
		return
	}
	types := b.PropertyTypes()
	c.JSON(http.StatusOK, gin.H{"property_types": types, "count": len(types)})
}
