// Package simulator generates synthetic listing datasets with a known price
// structure, for local runs and reproducible training tests.
package simulator

import (
	"math"
	"math/rand"

	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

type Config struct {
	Rows        int
	Seed        int64
	Market      Market
	Noise       float64 // std of the multiplicative log-normal price noise
	MissingRate float64 // share of rows with one numeric cell blanked
	OutlierRate float64 // share of rows with an implausible price or area
	MaxAge      int
}

type Simulator struct {
	config Config
	rng    *rand.Rand
}

func New(cfg Config) *Simulator {
	if cfg.Rows <= 0 {
		cfg.Rows = 2000
	}
	if cfg.Market.Name == "" {
		cfg.Market = MarketIzmir
	}
	if cfg.Noise == 0 {
		cfg.Noise = 0.12
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 50
	}

	return &Simulator{
		config: cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Generate returns Rows listings. The same Config always yields the same rows.
func (s *Simulator) Generate() []models.PropertyRecord {
	records := make([]models.PropertyRecord, 0, s.config.Rows)
	for i := 0; i < s.config.Rows; i++ {
		records = append(records, s.listing())
	}

	logger.WithFields(map[string]interface{}{
		"rows":   len(records),
		"market": s.config.Market.Name,
		"seed":   s.config.Seed,
	}).Info("Generated synthetic listings")
	return records
}

func (s *Simulator) listing() models.PropertyRecord {
	d := s.pickDistrict()
	t := s.pickType()

	area := math.Round(t.MinArea + s.rng.Float64()*(t.MaxArea-t.MinArea))
	age := s.age()
	rooms := math.Max(1, math.Min(8, math.Round(area/38)))
	salon := 1.0
	if area > 180 {
		salon = 2
	}

	price := area * d.UnitPrice * t.Multiplier * ageFactor(age) * (1 + 0.02*(rooms-3))
	price *= math.Exp(s.rng.NormFloat64() * s.config.Noise)
	price = math.Round(price/1000) * 1000

	rec := models.PropertyRecord{
		District:        d.Name,
		PropertyType:    t.Name,
		Area:            area,
		RoomCount:       rooms,
		LivingRoomCount: salon,
		BuildingAge:     float64(age),
		Price:           price,
	}

	if s.rng.Float64() < s.config.OutlierRate {
		s.corrupt(&rec)
	}
	if s.rng.Float64() < s.config.MissingRate {
		s.blank(&rec)
	}
	return rec
}

// age is skewed towards newer buildings.
func (s *Simulator) age() int {
	u := s.rng.Float64()
	return int(math.Floor(u * u * float64(s.config.MaxAge+1)))
}

func ageFactor(age int) float64 {
	return math.Max(0.55, 1-0.012*float64(age))
}

func (s *Simulator) corrupt(rec *models.PropertyRecord) {
	switch s.rng.Intn(3) {
	case 0:
		rec.Price *= 40
	case 1:
		rec.Price = float64(1000 + s.rng.Intn(50000))
	default:
		rec.Area = float64(2 + s.rng.Intn(10))
	}
}

func (s *Simulator) blank(rec *models.PropertyRecord) {
	switch s.rng.Intn(3) {
	case 0:
		rec.BuildingAge = math.NaN()
	case 1:
		rec.RoomCount = math.NaN()
	default:
		rec.Price = math.NaN()
	}
}

func (s *Simulator) pickDistrict() DistrictProfile {
	weights := make([]float64, len(s.config.Market.Districts))
	for i, d := range s.config.Market.Districts {
		weights[i] = d.Weight
	}
	return s.config.Market.Districts[s.weighted(weights)]
}

func (s *Simulator) pickType() TypeProfile {
	weights := make([]float64, len(s.config.Market.Types))
	for i, t := range s.config.Market.Types {
		weights[i] = t.Weight
	}
	return s.config.Market.Types[s.weighted(weights)]
}

func (s *Simulator) weighted(weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := s.rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}
