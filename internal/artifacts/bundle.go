package artifacts

import (
	"github.com/OldStager01/housing-valuator/pkg/models"
)

// Bundle is a loaded artifact set. It is never mutated after Load, and the
// accessors hand out copies, so one Bundle can serve concurrent requests.
type Bundle struct {
	contents Contents
	raw      []models.PropertyRecord
	dir      string
}

// NewBundle freezes contents produced in-process, e.g. right after training.
func NewBundle(c Contents, raw []models.PropertyRecord) *Bundle {
	c.Districts = sortedCopy(c.Districts)
	c.PropertyTypes = sortedCopy(c.PropertyTypes)
	c.FeatureImportance = append([]models.FeatureImportance(nil), c.FeatureImportance...)
	c.DistrictScores = c.DistrictScores.Clone()
	return &Bundle{contents: c, raw: append([]models.PropertyRecord(nil), raw...)}
}

func (b *Bundle) IsLoaded() bool {
	return b != nil && b.contents.Model != nil
}

func (b *Bundle) Dir() string {
	return b.dir
}

func (b *Bundle) Predict(row models.FeatureRow) (float64, error) {
	return b.contents.Model.Predict(row)
}

func (b *Bundle) Districts() []string {
	return append([]string(nil), b.contents.Districts...)
}

func (b *Bundle) PropertyTypes() []string {
	return append([]string(nil), b.contents.PropertyTypes...)
}

func (b *Bundle) DistrictScore(district string, def float64) (float64, bool) {
	return b.contents.DistrictScores.Lookup(district, def)
}

func (b *Bundle) DistrictScores() models.DistrictScoreTable {
	return b.contents.DistrictScores.Clone()
}

func (b *Bundle) Metrics() models.ModelMetrics {
	return b.contents.Metrics
}

func (b *Bundle) FeatureImportance() []models.FeatureImportance {
	return append([]models.FeatureImportance(nil), b.contents.FeatureImportance...)
}

func (b *Bundle) Manifest() models.TrainingManifest {
	return b.contents.Manifest
}

func (b *Bundle) RunID() string {
	return b.contents.Manifest.RunID
}

// RawData is the listings dataset kept for exploration views.
func (b *Bundle) RawData() []models.PropertyRecord {
	return append([]models.PropertyRecord(nil), b.raw...)
}
