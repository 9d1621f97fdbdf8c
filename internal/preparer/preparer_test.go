package preparer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/housing-valuator/internal/logger"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

func newPreparer() *Preparer {
	return New(Config{}, logger.Discard())
}

func rec(district, ptype string, area, rooms, salon, age, price float64) models.PropertyRecord {
	return models.PropertyRecord{
		District: district, PropertyType: ptype, Area: area,
		RoomCount: rooms, LivingRoomCount: salon, BuildingAge: age, Price: price,
	}
}

func TestClean_NormalizesAndDerives(t *testing.T) {
	p := newPreparer()
	in := []models.PropertyRecord{rec("  bornova ", "DAIRE", 120, 3, 1, 10, 3_500_000)}

	out := p.Clean(in, ModeServing)

	require.Len(t, out, 1)
	assert.Equal(t, "Bornova", out[0].District)
	assert.Equal(t, "Daire", out[0].PropertyType)
	assert.Equal(t, 4.0, out[0].TotalRooms)
	assert.Equal(t, "  bornova ", in[0].District, "input must not be modified")
}

func TestClean_MissingRoomsGiveMissingTotal(t *testing.T) {
	p := newPreparer()

	out := p.Clean([]models.PropertyRecord{rec("Buca", "Daire", 100, 2, math.NaN(), 5, 2_000_000)}, ModeTraining)

	require.Len(t, out, 1)
	assert.True(t, models.Missing(out[0].TotalRooms))
}

func TestClean_BoundsByMode(t *testing.T) {
	p := newPreparer()
	in := []models.PropertyRecord{
		rec("A", "Daire", 30, 1, 1, 1, 200_000),     // serving only: price and area below training mins
		rec("B", "Daire", 40, 1, 1, 1, 300_000),     // both: training lower bounds inclusive
		rec("C", "Daire", 450, 1, 1, 1, 35_000_000), // both: training upper bounds inclusive
		rec("D", "Daire", 451, 1, 1, 1, 1_000_000),  // serving only
		rec("E", "Daire", 100, 1, 1, 1, 99_999),     // neither
		rec("F", "Daire", math.NaN(), 1, 1, 1, 1_000_000),
		rec("G", "Daire", 100, 1, 1, 1, math.NaN()),
	}

	serving := districts(p.Clean(in, ModeServing))
	training := districts(p.Clean(in, ModeTraining))

	assert.Equal(t, []string{"A", "B", "C", "D"}, serving)
	assert.Equal(t, []string{"B", "C"}, training)
}

func TestOutlierStats_UnionNotDoubleCounted(t *testing.T) {
	p := newPreparer()
	in := []models.PropertyRecord{
		rec("Konak", "Daire", 2000, 3, 1, 5, 60_000_000),
		rec("Konak", "Daire", 500, 3, 1, 5, 50),
		rec("Konak", "Daire", 100, 3, 1, 5, 2_000_000),
	}

	s := p.OutlierStats(in)

	assert.Equal(t, 3, s.TotalRows)
	assert.Equal(t, 2, s.PriceExcluded)
	assert.Equal(t, 1, s.AreaExcluded)
	assert.Equal(t, 2, s.ExcludedRows)
	assert.Equal(t, 1, s.RemainingRows)
	assert.Equal(t, 100_000.0, s.PriceMin)
	assert.Equal(t, 1000.0, s.AreaMax)
}

func TestPrepareEDA_DisplayBoundsAndUnitPrice(t *testing.T) {
	p := newPreparer()
	in := []models.PropertyRecord{
		rec("Urla", "Villa", 200, 4, 1, 2, 10_000_000),
		rec("Urla", "Villa", 500, 4, 1, 2, 10_000_000),  // area above display bound
		rec("Urla", "Villa", 300, 4, 1, 2, 30_000_000), // price above display bound
	}

	out := p.PrepareEDA(in)

	require.Len(t, out, 1)
	assert.Equal(t, 50_000.0, out[0].UnitPrice)
}

func TestDistrictSummary_OrderedByUnitPrice(t *testing.T) {
	p := newPreparer()
	in := []models.PropertyRecord{
		rec("Buca", "Daire", 100, 2, 1, 10, 2_000_000),
		rec("Buca", "Daire", 100, 2, 1, 10, 3_000_000),
		rec("Cesme", "Villa", 200, 4, 2, 1, 12_000_000),
	}

	out := p.DistrictSummary(in)

	require.Len(t, out, 2)
	assert.Equal(t, "Cesme", out[0].District)
	assert.Equal(t, 60_000.0, out[0].MedianUnitPrice)
	assert.Equal(t, "Buca", out[1].District)
	assert.Equal(t, 2, out[1].Listings)
	assert.Equal(t, 2_500_000.0, out[1].MedianPrice)
	assert.Equal(t, 25_000.0, out[1].MedianUnitPrice)
}

func TestEncodeDistricts_MedianUnitPrice(t *testing.T) {
	p := newPreparer()
	cleaned := p.Clean([]models.PropertyRecord{
		rec("Bornova", "Daire", 100, 3, 1, 5, 3_000_000),
		rec("Bornova", "Daire", 100, 3, 1, 5, 4_000_000),
		rec("Bornova", "Daire", 100, 3, 1, 5, 8_000_000),
		rec("Urla", "Villa", 200, 4, 1, 2, 10_000_000),
	}, ModeTraining)

	table, encoded := p.EncodeDistricts(cleaned)

	assert.Equal(t, models.DistrictScoreTable{"Bornova": 40_000, "Urla": 50_000}, table)
	require.Len(t, encoded, 4)
	for _, r := range encoded {
		assert.Equal(t, table[r.District], r.DistrictScore)
		assert.Zero(t, r.UnitPrice)
	}
	assert.Zero(t, cleaned[0].DistrictScore, "input rows must not be modified")
}

func TestNew_AppliesDefaults(t *testing.T) {
	p := New(Config{TrainingArea: Range{Min: 50, Max: 300}}, nil)

	cfg := p.Config()
	assert.Equal(t, Range{Min: 50, Max: 300}, cfg.TrainingArea)
	assert.Equal(t, Range{Min: 300_000, Max: 35_000_000}, cfg.TrainingPrice)
	assert.Equal(t, Range{Min: 20, Max: 400}, cfg.EDAArea)
}

func districts(rows []models.PreparedRecord) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.District
	}
	return out
}
