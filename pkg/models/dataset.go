package models

import "math"

// OutlierStats summarises rows excluded by the serving cleaning bounds.
type OutlierStats struct {
	TotalRows     int     `json:"total_rows"`
	PriceExcluded int     `json:"price_excluded"`
	AreaExcluded  int     `json:"area_excluded"`
	ExcludedRows  int     `json:"excluded_rows"`
	RemainingRows int     `json:"remaining_rows"`
	PriceMin      float64 `json:"price_min"`
	PriceMax      float64 `json:"price_max"`
	AreaMin       float64 `json:"area_min"`
	AreaMax       float64 `json:"area_max"`
}

// DistrictSummary is an exploration view of one district.
type DistrictSummary struct {
	District        string  `json:"district"`
	Listings        int     `json:"listings"`
	MedianPrice     float64 `json:"median_price"`
	MedianUnitPrice float64 `json:"median_unit_price"`
	MedianArea      float64 `json:"median_area"`
}

// SampleRow is the wire form of a prepared listing. Cells that were empty in
// the source are null rather than NaN, which JSON cannot carry.
type SampleRow struct {
	District        string   `json:"district"`
	PropertyType    string   `json:"property_type"`
	Area            *float64 `json:"area"`
	RoomCount       *float64 `json:"room_count"`
	LivingRoomCount *float64 `json:"living_room_count"`
	BuildingAge     *float64 `json:"building_age"`
	Price           *float64 `json:"price"`
	TotalRooms      *float64 `json:"total_rooms"`
	UnitPrice       *float64 `json:"unit_price"`
}

func NewSampleRow(r PreparedRecord) SampleRow {
	return SampleRow{
		District:        r.District,
		PropertyType:    r.PropertyType,
		Area:            present(r.Area),
		RoomCount:       present(r.RoomCount),
		LivingRoomCount: present(r.LivingRoomCount),
		BuildingAge:     present(r.BuildingAge),
		Price:           present(r.Price),
		TotalRooms:      present(r.TotalRooms),
		UnitPrice:       present(r.UnitPrice),
	}
}

func present(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
