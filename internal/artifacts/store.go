// Package artifacts persists and loads the output of a training run.
//
// Every artifact is an independent gob file inside one directory, next to a
// manifest.json describing the run. Save writes a complete set into a staging
// directory and swaps it into place with renames, so readers see either the
// previous set or the new one.
package artifacts

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/OldStager01/housing-valuator/internal/dataset"
	"github.com/OldStager01/housing-valuator/internal/regression"
	"github.com/OldStager01/housing-valuator/pkg/apperrors"
	"github.com/OldStager01/housing-valuator/pkg/models"
)

const ManifestFile = "manifest.json"

// FileNames are the artifact file names inside the artifact directory.
type FileNames struct {
	Model             string
	Districts         string
	PropertyTypes     string
	Metrics           string
	FeatureImportance string
	DistrictScores    string
}

func DefaultFileNames() FileNames {
	return FileNames{
		Model:             "model.gob",
		Districts:         "districts.gob",
		PropertyTypes:     "property_types.gob",
		Metrics:           "metrics.gob",
		FeatureImportance: "feature_importance.gob",
		DistrictScores:    "district_scores.gob",
	}
}

func (f FileNames) withDefaults() FileNames {
	def := DefaultFileNames()
	if f.Model == "" {
		f.Model = def.Model
	}
	if f.Districts == "" {
		f.Districts = def.Districts
	}
	if f.PropertyTypes == "" {
		f.PropertyTypes = def.PropertyTypes
	}
	if f.Metrics == "" {
		f.Metrics = def.Metrics
	}
	if f.FeatureImportance == "" {
		f.FeatureImportance = def.FeatureImportance
	}
	if f.DistrictScores == "" {
		f.DistrictScores = def.DistrictScores
	}
	return f
}

// Contents is everything a training run produces.
type Contents struct {
	Model             *regression.Model
	Districts         []string
	PropertyTypes     []string
	Metrics           models.ModelMetrics
	FeatureImportance []models.FeatureImportance
	DistrictScores    models.DistrictScoreTable
	Manifest          models.TrainingManifest
}

// Save writes c into dir atomically with respect to other Save calls and
// readers. On failure the previous contents of dir are left untouched.
func Save(dir string, files FileNames, c Contents) (err error) {
	if c.Model == nil {
		return errors.New("artifacts: nothing to save, model is nil")
	}
	files = files.withDefaults()

	dir = filepath.Clean(dir)
	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("artifacts: create parent dir: %w", err)
	}

	suffix := uuid.NewString()
	staging := filepath.Join(parent, "."+filepath.Base(dir)+".staging-"+suffix)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return fmt.Errorf("artifacts: create staging dir: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.RemoveAll(staging)
		}
	}()

	districts := sortedCopy(c.Districts)
	types := sortedCopy(c.PropertyTypes)
	importance := append([]models.FeatureImportance{}, c.FeatureImportance...)
	scores := map[string]float64{}
	for k, v := range c.DistrictScores {
		scores[k] = v
	}

	writes := []struct {
		name  string
		value interface{}
	}{
		{files.Model, c.Model},
		{files.Districts, districts},
		{files.PropertyTypes, types},
		{files.Metrics, c.Metrics},
		{files.FeatureImportance, importance},
		{files.DistrictScores, scores},
	}
	for _, w := range writes {
		if err := writeGob(filepath.Join(staging, w.name), w.value); err != nil {
			return err
		}
	}
	if err := writeJSON(filepath.Join(staging, ManifestFile), c.Manifest); err != nil {
		return err
	}

	return swap(staging, dir, suffix)
}

// swap moves staging to dir, keeping the old dir aside until the new one is in place.
func swap(staging, dir, suffix string) error {
	previous := ""
	if _, err := os.Stat(dir); err == nil {
		previous = filepath.Join(filepath.Dir(dir), "."+filepath.Base(dir)+".previous-"+suffix)
		if err := os.Rename(dir, previous); err != nil {
			return fmt.Errorf("artifacts: move previous set aside: %w", err)
		}
	}

	if err := os.Rename(staging, dir); err != nil {
		if previous != "" {
			_ = os.Rename(previous, dir)
		}
		return fmt.Errorf("artifacts: publish new set: %w", err)
	}

	if previous != "" {
		_ = os.RemoveAll(previous)
	}
	return nil
}

func writeGob(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("artifacts: create %s: %w", filepath.Base(path), err)
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		_ = f.Close()
		return fmt.Errorf("artifacts: encode %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("artifacts: sync %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("artifacts: encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("artifacts: write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readGob(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}

// Load reads every artifact in dir and, when rawDataPath is set, the raw
// dataset kept for exploration. Model problems are ModelLoadErrors; anything
// else is a DataLoadError.
func Load(dir string, files FileNames, rawDataPath string) (*Bundle, error) {
	files = files.withDefaults()

	var c Contents
	modelPath := filepath.Join(dir, files.Model)
	var model regression.Model
	if err := readGob(modelPath, &model); err != nil {
		return nil, apperrors.NewModelLoadError(modelPath, err)
	}
	if model.Transformer == nil || model.Booster == nil {
		return nil, apperrors.NewModelLoadError(modelPath, regression.ErrNotFitted)
	}
	c.Model = &model

	var scores map[string]float64
	reads := []struct {
		name  string
		value interface{}
	}{
		{files.Districts, &c.Districts},
		{files.PropertyTypes, &c.PropertyTypes},
		{files.Metrics, &c.Metrics},
		{files.FeatureImportance, &c.FeatureImportance},
		{files.DistrictScores, &scores},
	}
	for _, r := range reads {
		path := filepath.Join(dir, r.name)
		if err := readGob(path, r.value); err != nil {
			return nil, apperrors.NewDataLoadError(path, err)
		}
	}
	c.DistrictScores = models.DistrictScoreTable(scores)

	manifest, err := ReadManifest(dir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.NewDataLoadError(filepath.Join(dir, ManifestFile), err)
	}
	c.Manifest = manifest

	b := &Bundle{contents: c, dir: dir}
	if rawDataPath != "" {
		raw, err := dataset.Read(rawDataPath)
		if err != nil {
			return nil, err
		}
		b.raw = raw
	}
	return b, nil
}

// ReadManifest reads only manifest.json, without touching the other artifacts.
func ReadManifest(dir string) (models.TrainingManifest, error) {
	var m models.TrainingManifest
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("artifacts: decode manifest: %w", err)
	}
	return m, nil
}

func sortedCopy(in []string) []string {
	out := append([]string{}, in...)
	sort.Strings(out)
	return out
}
