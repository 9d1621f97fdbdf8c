package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/housing-valuator/pkg/apperrors"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

type Predictor interface {
	Predict(ctx context.Context, in models.PredictionInput) (*models.PredictionResult, error)
}

// PredictionHistory is the optional store of served predictions.
type PredictionHistory interface {
	GetRecent(ctx context.Context, limit int) ([]models.PredictionRecord, error)
	CountByCategory(ctx context.Context) (map[string]int, error)
}

type PredictionHandler struct {
	predictor Predictor
	history   PredictionHistory
	limits    Limits
}

func NewPredictionHandler(predictor Predictor, history PredictionHistory, limits Limits) *PredictionHandler {
	return &PredictionHandler{
		predictor: predictor,
		history:   history,
		limits:    limits,
	}
}

// PredictionRequest uses pointers so a missing field is told apart from zero.
type PredictionRequest struct {
	District        string   `json:"district"`
	PropertyType    string   `json:"property_type"`
	Area            *float64 `json:"area"`
	RoomCount       *float64 `json:"room_count"`
	LivingRoomCount *float64 `json:"living_room_count"`
	BuildingAge     *float64 `json:"building_age"`
}

func (r PredictionRequest) missing() []string {
	var problems []string
	if r.Area == nil {
		problems = append(problems, "area is required")
	}
	if r.RoomCount == nil {
		problems = append(problems, "room_count is required")
	}
	if r.LivingRoomCount == nil {
		problems = append(problems, "living_room_count is required")
	}
	if r.BuildingAge == nil {
		problems = append(problems, "building_age is required")
	}
	return problems
}

func (r PredictionRequest) input() models.PredictionInput {
	return models.PredictionInput{
		District:        r.District,
		PropertyType:    r.PropertyType,
		Area:            *r.Area,
		RoomCount:       *r.RoomCount,
		LivingRoomCount: *r.LivingRoomCount,
		BuildingAge:     *r.BuildingAge,
	}
}

type PredictionResponse struct {
	*models.PredictionResult
	Breakdown map[string]int `json:"breakdown"`
}

func (h *PredictionHandler) Create(c *gin.Context) {
	var req PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.NewValidationError("request body must be a JSON object: "+err.Error()))
		return
	}
	if problems := req.missing(); len(problems) > 0 {
		writeError(c, apperrors.NewValidationError(problems...))
		return
	}

	result, err := h.predictor.Predict(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, PredictionResponse{
		PredictionResult: result,
		Breakdown:        result.LuxuryBreakdown.Map(),
	})
}

func (h *PredictionHandler) Recent(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Kind: apperrors.KindUnknown.String(), Error: errNoHistory.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	limit := h.limits.parse(c)
	records, err := h.history.GetRecent(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Kind: apperrors.KindUnknown.String(), Error: "failed to fetch predictions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"predictions": records,
		"count":       len(records),
		"limit":       limit,
	})
}

func (h *PredictionHandler) Stats(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Kind: apperrors.KindUnknown.String(), Error: errNoHistory.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	counts, err := h.history.CountByCategory(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Kind: apperrors.KindUnknown.String(), Error: "failed to fetch prediction stats"})
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, gin.H{
		"by_category": counts,
		"total":       total,
	})
}
