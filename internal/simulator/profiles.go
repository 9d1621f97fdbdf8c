package simulator

import "strings"

// DistrictProfile is the price level of one district, in TL per square metre.
type DistrictProfile struct {
	Name      string
	UnitPrice float64
	Weight    float64 // relative share of listings
}

type TypeProfile struct {
	Name       string
	Multiplier float64
	Weight     float64
	MinArea    float64
	MaxArea    float64
}

// Market is a named set of district and property type profiles.
type Market struct {
	Name      string
	Districts []DistrictProfile
	Types     []TypeProfile
}

var MarketIzmir = Market{
	Name: "izmir",
	Districts: []DistrictProfile{
		{Name: "Cesme", UnitPrice: 95000, Weight: 0.5},
		{Name: "Urla", UnitPrice: 80000, Weight: 0.5},
		{Name: "Guzelbahce", UnitPrice: 70000, Weight: 0.6},
		{Name: "Narlidere", UnitPrice: 60000, Weight: 0.6},
		{Name: "Balcova", UnitPrice: 52000, Weight: 0.6},
		{Name: "Karsiyaka", UnitPrice: 55000, Weight: 1.4},
		{Name: "Konak", UnitPrice: 50000, Weight: 1.4},
		{Name: "Bayrakli", UnitPrice: 48000, Weight: 1.0},
		{Name: "Bornova", UnitPrice: 45000, Weight: 1.4},
		{Name: "Seferihisar", UnitPrice: 45000, Weight: 0.4},
		{Name: "Buca", UnitPrice: 35000, Weight: 1.5},
		{Name: "Cigli", UnitPrice: 33000, Weight: 1.0},
		{Name: "Karabaglar", UnitPrice: 30000, Weight: 1.2},
		{Name: "Menemen", UnitPrice: 25000, Weight: 0.7},
		{Name: "Torbali", UnitPrice: 24000, Weight: 0.6},
	},
	Types: []TypeProfile{
		{Name: "Daire", Multiplier: 1.0, Weight: 8, MinArea: 45, MaxArea: 220},
		{Name: "Rezidans", Multiplier: 1.25, Weight: 1, MinArea: 50, MaxArea: 200},
		{Name: "Mustakil", Multiplier: 1.3, Weight: 0.8, MinArea: 90, MaxArea: 320},
		{Name: "Villa", Multiplier: 1.6, Weight: 0.6, MinArea: 150, MaxArea: 600},
	},
}

// MarketFlat prices every district and type the same; only area and age matter.
var MarketFlat = Market{
	Name: "flat",
	Districts: []DistrictProfile{
		{Name: "Alpha", UnitPrice: 40000, Weight: 1},
		{Name: "Beta", UnitPrice: 40000, Weight: 1},
		{Name: "Gamma", UnitPrice: 40000, Weight: 1},
	},
	Types: []TypeProfile{
		{Name: "Daire", Multiplier: 1, Weight: 1, MinArea: 50, MaxArea: 250},
	},
}

func ParseMarket(name string) Market {
	switch strings.ToLower(name) {
	case "flat":
		return MarketFlat
	default:
		return MarketIzmir
	}
}
