package models

import "math"

// PropertyRecord is one raw listing row. Numeric fields are NaN when the
// source cell was empty so that imputation can see the gap.
type PropertyRecord struct {
	District        string  `json:"district"`
	PropertyType    string  `json:"property_type"`
	Area            float64 `json:"area"`
	RoomCount       float64 `json:"room_count"`
	LivingRoomCount float64 `json:"living_room_count"`
	BuildingAge     float64 `json:"building_age"`
	Price           float64 `json:"price"`
}

// PreparedRecord is a cleaned row with the derived columns attached.
type PreparedRecord struct {
	PropertyRecord
	TotalRooms    float64 `json:"total_rooms"`
	UnitPrice     float64 `json:"unit_price,omitempty"`
	DistrictScore float64 `json:"district_score,omitempty"`
}

// Missing reports whether a numeric cell carries no value.
func Missing(v float64) bool {
	return math.IsNaN(v)
}

// FeatureRow is the model input schema shared by training and inference.
type FeatureRow struct {
	Area          float64 `json:"area"`
	Age           float64 `json:"age"`
	District      string  `json:"district"`
	PropertyType  string  `json:"property_type"`
	TotalRooms    float64 `json:"total_rooms"`
	DistrictScore float64 `json:"district_score"`
}

func (r PreparedRecord) Features() FeatureRow {
	return FeatureRow{
		Area:          r.Area,
		Age:           r.BuildingAge,
		District:      r.District,
		PropertyType:  r.PropertyType,
		TotalRooms:    r.TotalRooms,
		DistrictScore: r.DistrictScore,
	}
}
