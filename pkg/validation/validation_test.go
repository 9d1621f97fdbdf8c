package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/housing-valuator/pkg/apperrors"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

var (
	knownDistricts = []string{"Bornova", "Buca", "Cesme", "Karsiyaka"}
	knownTypes     = []string{"Daire", "Villa"}
)

func validInput() models.PredictionInput {
	return models.PredictionInput{
		District:        "Bornova",
		PropertyType:    "Daire",
		Area:            120,
		RoomCount:       3,
		LivingRoomCount: 1,
		BuildingAge:     10,
	}
}

func TestInputValidator_Valid(t *testing.T) {
	v := NewInputValidator(DefaultBounds())

	req, err := v.Validate(validInput(), knownDistricts, knownTypes)

	require.NoError(t, err)
	assert.Equal(t, models.ValidatedRequest{
		District:        "Bornova",
		PropertyType:    "Daire",
		Area:            120,
		RoomCount:       3,
		LivingRoomCount: 1,
		BuildingAge:     10,
	}, req)
}

func TestInputValidator_Rules(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(*models.PredictionInput)
		expected []string
	}{
		{"empty district", func(in *models.PredictionInput) { in.District = "  " }, []string{"District cannot be empty"}},
		{"unknown district", func(in *models.PredictionInput) { in.District = "Atlantis" }, []string{"Invalid district: Atlantis"}},
		{"empty type", func(in *models.PredictionInput) { in.PropertyType = "" }, []string{"Property type cannot be empty"}},
		{"unknown type", func(in *models.PredictionInput) { in.PropertyType = "Castle" }, []string{"Invalid property type: Castle"}},
		{"area below", func(in *models.PredictionInput) { in.Area = 19.99 }, []string{"Area must be between 20-1000"}},
		{"area above", func(in *models.PredictionInput) { in.Area = 1000.5 }, []string{"Area must be between 20-1000"}},
		{"area NaN", func(in *models.PredictionInput) { in.Area = math.NaN() }, []string{"Area must be between 20-1000"}},
		{"rooms zero", func(in *models.PredictionInput) { in.RoomCount = 0 }, []string{"Number of rooms must be between 1-10"}},
		{"rooms fractional", func(in *models.PredictionInput) { in.RoomCount = 2.5 }, []string{"Number of rooms must be between 1-10"}},
		{"salon above", func(in *models.PredictionInput) { in.LivingRoomCount = 6 }, []string{"Number of living rooms must be between 1-5"}},
		{"age negative", func(in *models.PredictionInput) { in.BuildingAge = -1 }, []string{"Building age must be between 0-100"}},
		{"age above", func(in *models.PredictionInput) { in.BuildingAge = 101 }, []string{"Building age must be between 0-100"}},
	}

	v := NewInputValidator(DefaultBounds())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.modify(&in)

			_, err := v.Validate(in, knownDistricts, knownTypes)

			require.Error(t, err)
			assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
			assert.Equal(t, tt.expected, apperrors.Problems(err))
		})
	}
}

func TestInputValidator_BoundariesAreInclusive(t *testing.T) {
	v := NewInputValidator(DefaultBounds())
	in := validInput()
	in.Area = 20
	in.RoomCount = 10
	in.LivingRoomCount = 5
	in.BuildingAge = 0

	_, err := v.Validate(in, knownDistricts, knownTypes)
	assert.NoError(t, err)

	in.Area = 1000
	in.BuildingAge = 100
	_, err = v.Validate(in, knownDistricts, knownTypes)
	assert.NoError(t, err)
}

func TestInputValidator_ReportsEveryProblem(t *testing.T) {
	v := NewInputValidator(DefaultBounds())
	in := models.PredictionInput{
		District:        "",
		PropertyType:    "Castle",
		Area:            10,
		RoomCount:       0,
		LivingRoomCount: 9,
		BuildingAge:     150,
	}

	_, err := v.Validate(in, knownDistricts, knownTypes)

	require.Error(t, err)
	assert.Equal(t,
		"District cannot be empty; Invalid property type: Castle; Area must be between 20-1000; "+
			"Number of rooms must be between 1-10; Number of living rooms must be between 1-5; "+
			"Building age must be between 0-100",
		err.Error())
}

func TestInputValidator_SkipsMembershipWithoutVocabulary(t *testing.T) {
	v := NewInputValidator(DefaultBounds())
	in := validInput()
	in.District = "Anywhere"
	in.PropertyType = "Anything"

	req, err := v.Validate(in, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, "Anywhere", req.District)
}

func TestInputValidator_CustomBoundsInMessages(t *testing.T) {
	b := DefaultBounds()
	b.AreaMin = 35.5
	v := NewInputValidator(b)
	in := validInput()
	in.Area = 30

	_, err := v.Validate(in, knownDistricts, knownTypes)

	assert.EqualError(t, err, "Area must be between 35.5-1000")
}

func TestValidateDataset(t *testing.T) {
	required := []string{"district", "left", "area", "price"}

	assert.NoError(t, ValidateDataset([]string{"district", "left", "area", "price", "age"}, 10, required))

	err := ValidateDataset(required, 0, required)
	assert.EqualError(t, err, "Dataset is empty")

	err = ValidateDataset([]string{"district", "area"}, 3, required)
	assert.EqualError(t, err, "Missing columns: left, price")
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Bornova", SanitizeString("  Bornova\x00\n"))
	assert.Equal(t, "", SanitizeString("\t \n"))
}
