package regression

import (
	"fmt"
	"math"
	"sort"

	"github.com/OldStager01/housing-valuator/internal/stats"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

// Source feature names, in the order the transformer emits numeric columns.
const (
	FeatureArea          = "area"
	FeatureAge           = "age"
	FeatureTotalRooms    = "total_rooms"
	FeatureDistrictScore = "district_score"
	FeatureDistrict      = "district"
	FeaturePropertyType  = "property_type"
)

var numericFeatures = []string{FeatureArea, FeatureAge, FeatureTotalRooms, FeatureDistrictScore}

func numericValues(r models.FeatureRow) []float64 {
	return []float64{r.Area, r.Age, r.TotalRooms, r.DistrictScore}
}

// NumericColumn is median-imputed then standardised.
type NumericColumn struct {
	Name   string
	Median float64
	Mean   float64
	Scale  float64
}

func (c NumericColumn) apply(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = c.Median
	}
	return (v - c.Mean) / c.Scale
}

// CategoricalColumn is one-hot encoded over a sorted vocabulary. Values
// outside the vocabulary encode as all zeros.
type CategoricalColumn struct {
	Name       string
	Categories []string
}

func (c CategoricalColumn) index(v string) int {
	i := sort.SearchStrings(c.Categories, v)
	if i < len(c.Categories) && c.Categories[i] == v {
		return i
	}
	return -1
}

// ColumnTransformer turns a FeatureRow into the dense vector the booster sees.
type ColumnTransformer struct {
	Numeric     []NumericColumn
	Categorical []CategoricalColumn
}

// FitTransformer learns imputation values, scaling and vocabularies from rows.
func FitTransformer(rows []models.FeatureRow) (*ColumnTransformer, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("fit transformer: no rows")
	}

	t := &ColumnTransformer{}
	for j, name := range numericFeatures {
		col := make([]float64, len(rows))
		for i, r := range rows {
			col[i] = numericValues(r)[j]
		}

		median := stats.Median(col)
		if math.IsNaN(median) {
			median = 0
		}
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				col[i] = median
			}
		}
		mean, std := stats.MeanStd(col)
		if std == 0 {
			std = 1
		}
		t.Numeric = append(t.Numeric, NumericColumn{Name: name, Median: median, Mean: mean, Scale: std})
	}

	t.Categorical = []CategoricalColumn{
		{Name: FeatureDistrict, Categories: vocabulary(rows, func(r models.FeatureRow) string { return r.District })},
		{Name: FeaturePropertyType, Categories: vocabulary(rows, func(r models.FeatureRow) string { return r.PropertyType })},
	}
	return t, nil
}

func vocabulary(rows []models.FeatureRow, get func(models.FeatureRow) string) []string {
	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[get(r)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Width is the length of a transformed vector.
func (t *ColumnTransformer) Width() int {
	w := len(t.Numeric)
	for _, c := range t.Categorical {
		w += len(c.Categories)
	}
	return w
}

func (t *ColumnTransformer) Transform(r models.FeatureRow) []float64 {
	out := make([]float64, t.Width())
	values := numericValues(r)
	for j, c := range t.Numeric {
		out[j] = c.apply(values[j])
	}

	offset := len(t.Numeric)
	for _, c := range t.Categorical {
		v := r.District
		if c.Name == FeaturePropertyType {
			v = r.PropertyType
		}
		if i := c.index(v); i >= 0 {
			out[offset+i] = 1
		}
		offset += len(c.Categories)
	}
	return out
}

func (t *ColumnTransformer) TransformAll(rows []models.FeatureRow) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = t.Transform(r)
	}
	return out
}

// Sources maps each transformed column to the feature it came from.
func (t *ColumnTransformer) Sources() []string {
	out := make([]string, 0, t.Width())
	for _, c := range t.Numeric {
		out = append(out, c.Name)
	}
	for _, c := range t.Categorical {
		for range c.Categories {
			out = append(out, c.Name)
		}
	}
	return out
}

// Vocabulary returns a copy of the categories seen for a categorical feature.
func (t *ColumnTransformer) Vocabulary(name string) []string {
	for _, c := range t.Categorical {
		if c.Name == name {
			return append([]string(nil), c.Categories...)
		}
	}
	return nil
}
