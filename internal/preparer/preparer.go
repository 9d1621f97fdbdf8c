package preparer

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/internal/stats"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

// Mode selects which cleaning bounds apply.
type Mode int

const (
	ModeServing Mode = iota
	ModeTraining
)

func (m Mode) String() string {
	if m == ModeTraining {
		return "training"
	}
	return "serving"
}

// Range is an inclusive [Min, Max] interval.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

type Config struct {
	ServingPrice  Range
	ServingArea   Range
	TrainingPrice Range
	TrainingArea  Range
	EDAPrice      Range
	EDAArea       Range
}

type Preparer struct {
	config Config
	log    logrus.FieldLogger
}

func New(cfg Config, log logrus.FieldLogger) *Preparer {
	if cfg.ServingPrice == (Range{}) {
		cfg.ServingPrice = Range{Min: 100_000, Max: 50_000_000}
	}
	if cfg.ServingArea == (Range{}) {
		cfg.ServingArea = Range{Min: 20, Max: 1000}
	}
	if cfg.TrainingPrice == (Range{}) {
		cfg.TrainingPrice = Range{Min: 300_000, Max: 35_000_000}
	}
	if cfg.TrainingArea == (Range{}) {
		cfg.TrainingArea = Range{Min: 40, Max: 450}
	}
	if cfg.EDAPrice == (Range{}) {
		cfg.EDAPrice = Range{Min: 100_000, Max: 25_000_000}
	}
	if cfg.EDAArea == (Range{}) {
		cfg.EDAArea = Range{Min: 20, Max: 400}
	}
	if log == nil {
		log = logger.Get()
	}

	return &Preparer{config: cfg, log: log}
}

func (p *Preparer) Config() Config {
	return p.config
}

func (p *Preparer) bounds(mode Mode) (price, area Range) {
	if mode == ModeTraining {
		return p.config.TrainingPrice, p.config.TrainingArea
	}
	return p.config.ServingPrice, p.config.ServingArea
}

// Clean normalises names, derives total rooms and keeps rows whose price and
// area fall inside the mode's bounds. The input is not modified.
func (p *Preparer) Clean(records []models.PropertyRecord, mode Mode) []models.PreparedRecord {
	priceRange, areaRange := p.bounds(mode)
	caser := cases.Title(language.Und)

	out := make([]models.PreparedRecord, 0, len(records))
	for _, r := range records {
		r.District = normalize(caser, r.District)
		r.PropertyType = normalize(caser, r.PropertyType)

		if !priceRange.Contains(r.Price) || !areaRange.Contains(r.Area) {
			continue
		}

		out = append(out, models.PreparedRecord{
			PropertyRecord: r,
			TotalRooms:     r.RoomCount + r.LivingRoomCount,
		})
	}

	p.log.WithFields(logrus.Fields{
		"mode":      mode.String(),
		"input":     len(records),
		"remaining": len(out),
	}).Info("Cleaning completed")

	return out
}

// OutlierStats counts rows outside the serving bounds. A row failing both
// filters is counted once in ExcludedRows.
func (p *Preparer) OutlierStats(records []models.PropertyRecord) models.OutlierStats {
	priceRange, areaRange := p.bounds(ModeServing)

	s := models.OutlierStats{
		TotalRows: len(records),
		PriceMin:  priceRange.Min,
		PriceMax:  priceRange.Max,
		AreaMin:   areaRange.Min,
		AreaMax:   areaRange.Max,
	}

	for _, r := range records {
		priceOut := outside(priceRange, r.Price)
		areaOut := outside(areaRange, r.Area)
		if priceOut {
			s.PriceExcluded++
		}
		if areaOut {
			s.AreaExcluded++
		}
		if priceOut || areaOut {
			s.ExcludedRows++
		}
	}

	s.RemainingRows = len(p.Clean(records, ModeServing))
	return s
}

// PrepareEDA applies serving cleaning, then the narrower display bounds, and
// attaches unit price.
func (p *Preparer) PrepareEDA(records []models.PropertyRecord) []models.PreparedRecord {
	cleaned := p.Clean(records, ModeServing)

	out := cleaned[:0]
	for _, r := range cleaned {
		if !p.config.EDAPrice.Contains(r.Price) || !p.config.EDAArea.Contains(r.Area) {
			continue
		}
		r.UnitPrice = r.Price / r.Area
		out = append(out, r)
	}
	return out
}

// DistrictSummary aggregates the exploration rows per district, ordered by
// median unit price, most expensive first.
func (p *Preparer) DistrictSummary(records []models.PropertyRecord) []models.DistrictSummary {
	type bucket struct {
		prices, unit, areas []float64
	}
	groups := make(map[string]*bucket)

	for _, r := range p.PrepareEDA(records) {
		b, ok := groups[r.District]
		if !ok {
			b = &bucket{}
			groups[r.District] = b
		}
		b.prices = append(b.prices, r.Price)
		b.unit = append(b.unit, r.UnitPrice)
		b.areas = append(b.areas, r.Area)
	}

	out := make([]models.DistrictSummary, 0, len(groups))
	for district, b := range groups {
		out = append(out, models.DistrictSummary{
			District:        district,
			Listings:        len(b.prices),
			MedianPrice:     stats.Median(b.prices),
			MedianUnitPrice: stats.Median(b.unit),
			MedianArea:      stats.Median(b.areas),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].MedianUnitPrice != out[j].MedianUnitPrice {
			return out[i].MedianUnitPrice > out[j].MedianUnitPrice
		}
		return out[i].District < out[j].District
	})
	return out
}

// EncodeDistricts builds the district target encoding from training rows and
// returns copies of the rows with DistrictScore attached. Unit price is used
// only to compute the table and is left zero on the returned rows.
func (p *Preparer) EncodeDistricts(records []models.PreparedRecord) (models.DistrictScoreTable, []models.PreparedRecord) {
	unitPrices := make(map[string][]float64)
	for _, r := range records {
		unitPrices[r.District] = append(unitPrices[r.District], r.Price/r.Area)
	}

	table := make(models.DistrictScoreTable, len(unitPrices))
	for district, values := range unitPrices {
		table[district] = stats.Median(values)
	}

	out := make([]models.PreparedRecord, len(records))
	for i, r := range records {
		r.UnitPrice = 0
		r.DistrictScore = table[r.District]
		out[i] = r
	}

	p.log.WithField("districts", len(table)).Info("District target encoding computed")
	return table, out
}

func normalize(caser cases.Caser, s string) string {
	return caser.String(strings.TrimSpace(s))
}

// outside is true only for a present value beyond the range; a missing value
// is not an outlier, though Clean still drops it.
func outside(r Range, v float64) bool {
	if models.Missing(v) {
		return false
	}
	return v < r.Min || v > r.Max
}
