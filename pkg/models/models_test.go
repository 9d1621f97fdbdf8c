package models_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/housing-valuator/pkg/models"
)

func TestLuxuryCategory_String(t *testing.T) {
	tests := []struct {
		category models.LuxuryCategory
		expected string
	}{
		{models.CategoryUltraLuxury, "Ultra Luxury"},
		{models.CategoryLuxuryProperty, "Luxury Property"},
		{models.CategoryComfortable, "Comfortable"},
		{models.CategoryStandard, "Standard"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.category.String())
		})
	}
}

func TestLuxuryCategory_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Category models.LuxuryCategory `json:"category"`
	}{models.CategoryLuxuryProperty})

	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"Luxury Property"}`, string(data))
}

func TestLuxuryCategory_UnmarshalJSON(t *testing.T) {
	var out struct {
		Category models.LuxuryCategory `json:"category"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"category":"Ultra Luxury"}`), &out))
	assert.Equal(t, models.CategoryUltraLuxury, out.Category)
	assert.Error(t, json.Unmarshal([]byte(`{"category":"Palace"}`), &out))
	assert.Error(t, json.Unmarshal([]byte(`{"category":3}`), &out))
}

func TestLuxuryBreakdown_SumAndMap(t *testing.T) {
	b := models.LuxuryBreakdown{Price: 40, Area: 25, District: 20, PropertyType: 15, BuildingAge: 15}

	assert.Equal(t, 115, b.Sum())
	assert.Equal(t, map[string]int{
		"price":         40,
		"area":          25,
		"district":      20,
		"property_type": 15,
		"building_age":  15,
	}, b.Map())
}

func TestValidatedRequest_Features(t *testing.T) {
	req := models.ValidatedRequest{
		District:        "Cesme",
		PropertyType:    "Villa",
		Area:            400,
		RoomCount:       4,
		LivingRoomCount: 2,
		BuildingAge:     0,
	}

	row := req.Features(61000)

	assert.Equal(t, 6, req.TotalRooms())
	assert.Equal(t, models.FeatureRow{
		Area:          400,
		Age:           0,
		District:      "Cesme",
		PropertyType:  "Villa",
		TotalRooms:    6,
		DistrictScore: 61000,
	}, row)
}

func TestDistrictScoreTable_Lookup(t *testing.T) {
	table := models.DistrictScoreTable{"Bornova": 32000, "Urla": 54000}

	score, ok := table.Lookup("Urla", 50000)
	assert.True(t, ok)
	assert.Equal(t, 54000.0, score)

	score, ok = table.Lookup("Atlantis", 50000)
	assert.False(t, ok)
	assert.Equal(t, 50000.0, score)

	assert.Equal(t, []string{"Bornova", "Urla"}, table.Districts())
}

func TestDistrictScoreTable_CloneIsIndependent(t *testing.T) {
	table := models.DistrictScoreTable{"Bornova": 32000}
	clone := table.Clone()
	clone["Bornova"] = 1

	assert.Equal(t, 32000.0, table["Bornova"])
}

func TestPreparedRecord_Features(t *testing.T) {
	rec := models.PreparedRecord{
		PropertyRecord: models.PropertyRecord{
			District: "Buca", PropertyType: "Daire", Area: 110,
			RoomCount: 3, LivingRoomCount: 1, BuildingAge: 12, Price: 3_200_000,
		},
		TotalRooms:    4,
		DistrictScore: 28000,
	}

	row := rec.Features()

	assert.Equal(t, 12.0, row.Age)
	assert.Equal(t, 4.0, row.TotalRooms)
	assert.Equal(t, 28000.0, row.DistrictScore)
	assert.True(t, models.Missing(math.NaN()))
	assert.False(t, models.Missing(0))
}

func TestNewPredictionRecord(t *testing.T) {
	result := models.NewPredictionResult(2_500_000, models.ValidatedRequest{
		District: "Buca", PropertyType: "Daire", Area: 100, RoomCount: 3, LivingRoomCount: 1, BuildingAge: 20,
	}, models.LuxuryAssessment{Score: 15, Category: models.CategoryStandard})
	result.ModelRunID = "run-1"

	rec := models.NewPredictionRecord(result, "trace-1")

	assert.Equal(t, "trace-1", rec.TraceID)
	assert.Equal(t, "run-1", rec.ModelRunID)
	assert.Equal(t, int64(2_500_000), rec.PredictedPrice)
	assert.Equal(t, "Standard", rec.LuxuryCategory)
	assert.False(t, rec.CreatedAt.IsZero())
}
