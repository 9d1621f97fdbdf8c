package validation

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/OldStager01/housing-valuator/pkg/apperrors"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

// Bounds are the inclusive limits applied to a valuation request.
type Bounds struct {
	AreaMin  float64
	AreaMax  float64
	RoomMin  int
	RoomMax  int
	SalonMin int
	SalonMax int
	AgeMin   int
	AgeMax   int
}

func DefaultBounds() Bounds {
	return Bounds{
		AreaMin:  20,
		AreaMax:  1000,
		RoomMin:  1,
		RoomMax:  10,
		SalonMin: 1,
		SalonMax: 5,
		AgeMin:   0,
		AgeMax:   100,
	}
}

// InputValidator checks requests against fixed bounds and the vocabularies
// supplied per call. It holds no mutable state.
type InputValidator struct {
	bounds Bounds
}

func NewInputValidator(bounds Bounds) *InputValidator {
	return &InputValidator{bounds: bounds}
}

func (v *InputValidator) Bounds() Bounds {
	return v.bounds
}

// Validate reports every violated constraint at once. Membership checks are
// skipped when the corresponding known list is empty.
func (v *InputValidator) Validate(in models.PredictionInput, knownDistricts, knownTypes []string) (models.ValidatedRequest, error) {
	var problems []string
	b := v.bounds

	district := SanitizeString(in.District)
	if district == "" {
		problems = append(problems, "District cannot be empty")
	} else if len(knownDistricts) > 0 && !contains(knownDistricts, district) {
		problems = append(problems, fmt.Sprintf("Invalid district: %s", district))
	}

	propertyType := SanitizeString(in.PropertyType)
	if propertyType == "" {
		problems = append(problems, "Property type cannot be empty")
	} else if len(knownTypes) > 0 && !contains(knownTypes, propertyType) {
		problems = append(problems, fmt.Sprintf("Invalid property type: %s", propertyType))
	}

	if !finite(in.Area) || in.Area < b.AreaMin || in.Area > b.AreaMax {
		problems = append(problems, fmt.Sprintf("Area must be between %s-%s", num(b.AreaMin), num(b.AreaMax)))
	}
	if !wholeWithin(in.RoomCount, b.RoomMin, b.RoomMax) {
		problems = append(problems, fmt.Sprintf("Number of rooms must be between %d-%d", b.RoomMin, b.RoomMax))
	}
	if !wholeWithin(in.LivingRoomCount, b.SalonMin, b.SalonMax) {
		problems = append(problems, fmt.Sprintf("Number of living rooms must be between %d-%d", b.SalonMin, b.SalonMax))
	}
	if !wholeWithin(in.BuildingAge, b.AgeMin, b.AgeMax) {
		problems = append(problems, fmt.Sprintf("Building age must be between %d-%d", b.AgeMin, b.AgeMax))
	}

	if len(problems) > 0 {
		return models.ValidatedRequest{}, apperrors.NewValidationError(problems...)
	}

	return models.ValidatedRequest{
		District:        district,
		PropertyType:    propertyType,
		Area:            in.Area,
		RoomCount:       int(in.RoomCount),
		LivingRoomCount: int(in.LivingRoomCount),
		BuildingAge:     int(in.BuildingAge),
	}, nil
}

// ValidateDataset rejects an empty dataset or one missing required columns.
func ValidateDataset(columns []string, rowCount int, required []string) error {
	if rowCount == 0 {
		return apperrors.NewValidationError("Dataset is empty")
	}

	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[strings.ToLower(strings.TrimSpace(c))] = true
	}
	var missing []string
	for _, r := range required {
		if !present[strings.ToLower(r)] {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return apperrors.NewValidationError(fmt.Sprintf("Missing columns: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func wholeWithin(v float64, min, max int) bool {
	if !finite(v) || v != math.Trunc(v) {
		return false
	}
	return v >= float64(min) && v <= float64(max)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
