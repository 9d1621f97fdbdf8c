package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/housing-valuator/api/middleware"
	"github.com/OldStager01/housing-valuator/internal/artifacts"
	"github.com/OldStager01/housing-valuator/pkg/apperrors"
)

// BundleSource hands out the artifact set currently being served.
type BundleSource interface {
	Current() *artifacts.Bundle
}

type ErrorResponse struct {
	Kind     string   `json:"kind"`
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
	TraceID  string   `json:"trace_id,omitempty"`
}

// Limits bounds the ?limit= query parameter.
type Limits struct {
	Default int
	Max     int
}

func (l Limits) parse(c *gin.Context) int {
	def, max := l.Default, l.Max
	if def <= 0 {
		def = 20
	}
	if max <= 0 {
		max = 200
	}
	limit := def
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if limit > max {
				limit = max
			}
		}
	}
	return limit
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindModelLoad, apperrors.KindDataLoad:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	resp := ErrorResponse{
		Kind:    kind.String(),
		Error:   err.Error(),
		TraceID: middleware.GetTraceID(c),
	}
	if kind == apperrors.KindValidation {
		resp.Error = "invalid input"
		resp.Problems = apperrors.Problems(err)
	}
	_ = c.Error(err)
	c.JSON(statusFor(kind), resp)
}

// loaded writes a 503 and returns nil when no artifact set is being served.
func loaded(c *gin.Context, src BundleSource) *artifacts.Bundle {
	var b *artifacts.Bundle
	if src != nil {
		b = src.Current()
	}
	if !b.IsLoaded() {
		writeError(c, apperrors.NewModelLoadError("", errNoArtifacts))
		return nil
	}
	return b
}
