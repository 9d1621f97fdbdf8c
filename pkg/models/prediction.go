package models

import "time"

// PredictionResult is the immutable outcome of one valuation.
type PredictionResult struct {
	PredictedPrice  int64            `json:"predicted_price"`
	LuxuryScore     int              `json:"luxury_score"`
	LuxuryCategory  LuxuryCategory   `json:"luxury_category"`
	LuxuryBreakdown LuxuryBreakdown  `json:"luxury_breakdown"`
	Input           ValidatedRequest `json:"input"`
	ModelRunID      string           `json:"model_run_id,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

func NewPredictionResult(price int64, input ValidatedRequest, assessment LuxuryAssessment) *PredictionResult {
	return &PredictionResult{
		PredictedPrice:  price,
		LuxuryScore:     assessment.Score,
		LuxuryCategory:  assessment.Category,
		LuxuryBreakdown: assessment.Breakdown,
		Input:           input,
		CreatedAt:       time.Now().UTC(),
	}
}

// PredictionRecord is a persisted prediction row.
type PredictionRecord struct {
	ID             int       `json:"id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	TraceID        string    `json:"trace_id,omitempty"`
	ModelRunID     string    `json:"model_run_id,omitempty"`
	District       string    `json:"district"`
	PropertyType   string    `json:"property_type"`
	Area           float64   `json:"area"`
	RoomCount      int       `json:"room_count"`
	LivingRooms    int       `json:"living_room_count"`
	BuildingAge    int       `json:"building_age"`
	PredictedPrice int64     `json:"predicted_price"`
	LuxuryScore    int       `json:"luxury_score"`
	LuxuryCategory string    `json:"luxury_category"`
}

func NewPredictionRecord(result *PredictionResult, traceID string) *PredictionRecord {
	return &PredictionRecord{
		CreatedAt:      result.CreatedAt,
		TraceID:        traceID,
		ModelRunID:     result.ModelRunID,
		District:       result.Input.District,
		PropertyType:   result.Input.PropertyType,
		Area:           result.Input.Area,
		RoomCount:      result.Input.RoomCount,
		LivingRooms:    result.Input.LivingRoomCount,
		BuildingAge:    result.Input.BuildingAge,
		PredictedPrice: result.PredictedPrice,
		LuxuryScore:    result.LuxuryScore,
		LuxuryCategory: result.LuxuryCategory.String(),
	}
}
