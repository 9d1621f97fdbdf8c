package luxury

import (
	"github.com/OldStager01/housing-valuator/pkg/models"
)

// Tier awards Top above the highest threshold, High above the middle one,
// Middle above the lowest one and Base otherwise. Comparisons are strict.
type Tier struct {
	Top, High, Middle float64
	Points            Points
}

type Points struct {
	Top, High, Middle, Base int
}

func (t Tier) score(v float64) int {
	switch {
	case v > t.Top:
		return t.Points.Top
	case v > t.High:
		return t.Points.High
	case v > t.Middle:
		return t.Points.Middle
	default:
		return t.Points.Base
	}
}

// AgeRule maps a building age to points. Bands are inclusive upper bounds.
type AgeRule struct {
	VeryRecent, Recent, Moderate, Old, VeryOld int
	Weights                                    AgeWeights
}

type AgeWeights struct {
	New, VeryRecent, Recent, Moderate, Old, VeryOld, Ancient int
}

func (a AgeRule) score(age int) int {
	switch {
	case age == 0:
		return a.Weights.New
	case age <= a.VeryRecent:
		return a.Weights.VeryRecent
	case age <= a.Recent:
		return a.Weights.Recent
	case age <= a.Moderate:
		return a.Weights.Moderate
	case age <= a.Old:
		return a.Weights.Old
	case age <= a.VeryOld:
		return a.Weights.VeryOld
	default:
		return a.Weights.Ancient
	}
}

type Cutoffs struct {
	UltraLuxury, LuxuryProperty, Comfortable int
}

type Config struct {
	Price           Tier
	Area            Tier
	LuxuryDistricts []string
	DistrictPoints  int
	LuxuryTypes     []string
	TypePoints      int
	Age             AgeRule
	Categories      Cutoffs
}

// DefaultConfig is the stock rule table.
func DefaultConfig() Config {
	return Config{
		Price: Tier{
			Top: 20_000_000, High: 10_000_000, Middle: 5_000_000,
			Points: Points{Top: 40, High: 30, Middle: 20, Base: 5},
		},
		Area: Tier{
			Top: 350, High: 200, Middle: 130,
			Points: Points{Top: 25, High: 15, Middle: 10, Base: 0},
		},
		LuxuryDistricts: []string{"Cesme", "Urla"},
		DistrictPoints:  20,
		LuxuryTypes:     []string{"Villa"},
		TypePoints:      15,
		Age: AgeRule{
			VeryRecent: 3, Recent: 8, Moderate: 15, Old: 25, VeryOld: 40,
			Weights: AgeWeights{New: 15, VeryRecent: 10, Recent: 5, Moderate: 0, Old: -5, VeryOld: -10, Ancient: -15},
		},
		Categories: Cutoffs{UltraLuxury: 85, LuxuryProperty: 65, Comfortable: 45},
	}
}

// Scorer is a pure function of its configuration; it is safe for concurrent use.
type Scorer struct {
	config    Config
	districts map[string]struct{}
	types     map[string]struct{}
}

// NewScorer uses cfg as given. A zero field is a real setting, so a zero
// DistrictPoints switches the district bonus off; start from DefaultConfig
// to keep the stock table.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{
		config:    cfg,
		districts: toSet(cfg.LuxuryDistricts),
		types:     toSet(cfg.LuxuryTypes),
	}
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, s := range items {
		out[s] = struct{}{}
	}
	return out
}

// Score sums the five component points and clamps the total to [0, 100].
func (s *Scorer) Score(price, area float64, district, propertyType string, age int) models.LuxuryAssessment {
	b := models.LuxuryBreakdown{
		Price:       s.config.Price.score(price),
		Area:        s.config.Area.score(area),
		BuildingAge: s.config.Age.score(age),
	}
	if _, ok := s.districts[district]; ok {
		b.District = s.config.DistrictPoints
	}
	if _, ok := s.types[propertyType]; ok {
		b.PropertyType = s.config.TypePoints
	}

	score := clamp(b.Sum(), 0, 100)
	return models.LuxuryAssessment{
		Score:     score,
		Category:  s.Category(score),
		Breakdown: b,
	}
}

func (s *Scorer) Category(score int) models.LuxuryCategory {
	c := s.config.Categories
	switch {
	case score >= c.UltraLuxury:
		return models.CategoryUltraLuxury
	case score >= c.LuxuryProperty:
		return models.CategoryLuxuryProperty
	case score >= c.Comfortable:
		return models.CategoryComfortable
	default:
		return models.CategoryStandard
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
