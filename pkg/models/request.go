package models

// PredictionInput is an unvalidated valuation request. Counts arrive as
// float64 so that fractional values can be rejected instead of truncated.
type PredictionInput struct {
	District        string  `json:"district"`
	PropertyType    string  `json:"property_type"`
	Area            float64 `json:"area"`
	RoomCount       float64 `json:"room_count"`
	LivingRoomCount float64 `json:"living_room_count"`
	BuildingAge     float64 `json:"building_age"`
}

// ValidatedRequest is a sanitized PredictionInput with canonical numeric types.
type ValidatedRequest struct {
	District        string  `json:"district"`
	PropertyType    string  `json:"property_type"`
	Area            float64 `json:"area"`
	RoomCount       int     `json:"room_count"`
	LivingRoomCount int     `json:"living_room_count"`
	BuildingAge     int     `json:"building_age"`
}

func (r ValidatedRequest) TotalRooms() int {
	return r.RoomCount + r.LivingRoomCount
}

func (r ValidatedRequest) Features(districtScore float64) FeatureRow {
	return FeatureRow{
		Area:          r.Area,
		Age:           float64(r.BuildingAge),
		District:      r.District,
		PropertyType:  r.PropertyType,
		TotalRooms:    float64(r.TotalRooms()),
		DistrictScore: districtScore,
	}
}
