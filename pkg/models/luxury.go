package models

import (
	"encoding/json"
	"fmt"
)

// LuxuryCategory is the label attached to a clamped luxury score.
type LuxuryCategory int

const (
	CategoryStandard LuxuryCategory = iota
	CategoryComfortable
	CategoryLuxuryProperty
	CategoryUltraLuxury
)

func (c LuxuryCategory) String() string {
	switch c {
	case CategoryUltraLuxury:
		return "Ultra Luxury"
	case CategoryLuxuryProperty:
		return "Luxury Property"
	case CategoryComfortable:
		return "Comfortable"
	default:
		return "Standard"
	}
}

func (c LuxuryCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *LuxuryCategory) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseLuxuryCategory(s)
	if !ok {
		return fmt.Errorf("unknown luxury category %q", s)
	}
	*c = parsed
	return nil
}

// ParseLuxuryCategory is the inverse of String.
func ParseLuxuryCategory(s string) (LuxuryCategory, bool) {
	for _, c := range []LuxuryCategory{CategoryStandard, CategoryComfortable, CategoryLuxuryProperty, CategoryUltraLuxury} {
		if c.String() == s {
			return c, true
		}
	}
	return CategoryStandard, false
}

// LuxuryBreakdown holds the contribution of each scoring component.
type LuxuryBreakdown struct {
	Price        int `json:"price"`
	Area         int `json:"area"`
	District     int `json:"district"`
	PropertyType int `json:"property_type"`
	BuildingAge  int `json:"building_age"`
}

// Sum is the unclamped total.
func (b LuxuryBreakdown) Sum() int {
	return b.Price + b.Area + b.District + b.PropertyType + b.BuildingAge
}

func (b LuxuryBreakdown) Map() map[string]int {
	return map[string]int{
		"price":         b.Price,
		"area":          b.Area,
		"district":      b.District,
		"property_type": b.PropertyType,
		"building_age":  b.BuildingAge,
	}
}

// LuxuryAssessment is the scorer output.
type LuxuryAssessment struct {
	Score     int             `json:"score"`
	Category  LuxuryCategory  `json:"category"`
	Breakdown LuxuryBreakdown `json:"breakdown"`
}
