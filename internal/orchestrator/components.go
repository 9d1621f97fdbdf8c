package orchestrator

import (
	"github.com/OldStager01/housing-valuator/internal/artifacts"
	"github.com/OldStager01/housing-valuator/internal/cache"
	"github.com/OldStager01/housing-valuator/internal/luxury"
	"github.com/OldStager01/housing-valuator/internal/predictor"
	"github.com/OldStager01/housing-valuator/internal/preparer"
	"github.com/OldStager01/housing-valuator/internal/trainer"
	"github.com/OldStager01/housing-valuator/pkg/config"
	"github.com/OldStager01/housing-valuator/pkg/models"
	"github.com/OldStager01/housing-valuator/pkg/validation"
)

// The functions below translate the loaded configuration into the settings
// of each component, so no component has to know about config.Config.

func PreparerConfig(cfg *config.Config) preparer.Config {
	d := cfg.DataCleaning
	return preparer.Config{
		ServingPrice:  preparer.Range{Min: d.PriceMin, Max: d.PriceMax},
		ServingArea:   preparer.Range{Min: d.AreaMin, Max: d.AreaMax},
		TrainingPrice: preparer.Range{Min: d.TrainingPriceMin, Max: d.TrainingPriceMax},
		TrainingArea:  preparer.Range{Min: d.TrainingAreaMin, Max: d.TrainingAreaMax},
		EDAPrice:      preparer.Range{Min: d.EDAPriceMin, Max: d.EDAPriceMax},
		EDAArea:       preparer.Range{Min: d.EDAAreaMin, Max: d.EDAAreaMax},
	}
}

func ValidationBounds(cfg *config.Config) validation.Bounds {
	v := cfg.Validation
	return validation.Bounds{
		AreaMin:  v.AreaMin,
		AreaMax:  v.AreaMax,
		RoomMin:  v.RoomMin,
		RoomMax:  v.RoomMax,
		SalonMin: v.SalonMin,
		SalonMax: v.SalonMax,
		AgeMin:   v.AgeMin,
		AgeMax:   v.AgeMax,
	}
}

func ScorerConfig(cfg *config.Config) luxury.Config {
	l := cfg.LuxuryScore
	return luxury.Config{
		Price: luxury.Tier{
			Top:    l.PriceThresholds.UltraLuxury,
			High:   l.PriceThresholds.Luxury,
			Middle: l.PriceThresholds.Premium,
			Points: points(l.PricePoints),
		},
		Area: luxury.Tier{
			Top:    l.AreaThresholds.VeryLarge,
			High:   l.AreaThresholds.Large,
			Middle: l.AreaThresholds.Medium,
			Points: points(l.AreaPoints),
		},
		LuxuryDistricts: l.LuxuryDistricts,
		DistrictPoints:  l.DistrictPoints,
		LuxuryTypes:     l.LuxuryTypes,
		TypePoints:      l.TypePoints,
		Age: luxury.AgeRule{
			VeryRecent: l.AgeBands.VeryRecent,
			Recent:     l.AgeBands.Recent,
			Moderate:   l.AgeBands.Moderate,
			Old:        l.AgeBands.Old,
			VeryOld:    l.AgeBands.VeryOld,
			Weights: luxury.AgeWeights{
				New:        l.AgeWeights.New,
				VeryRecent: l.AgeWeights.VeryRecent,
				Recent:     l.AgeWeights.Recent,
				Moderate:   l.AgeWeights.Moderate,
				Old:        l.AgeWeights.Old,
				VeryOld:    l.AgeWeights.VeryOld,
				Ancient:    l.AgeWeights.Ancient,
			},
		},
		Categories: luxury.Cutoffs{
			UltraLuxury:    l.CategoryThresholds.UltraLuxury,
			LuxuryProperty: l.CategoryThresholds.LuxuryProperty,
			Comfortable:    l.CategoryThresholds.Comfortable,
		},
	}
}

func points(p config.TierPoints) luxury.Points {
	return luxury.Points{Top: p.Top, High: p.High, Middle: p.Middle, Base: p.Base}
}

func Hyperparams(cfg *config.Config) models.Hyperparams {
	m := cfg.Model
	return models.Hyperparams{
		MaxIter:          m.MaxIter,
		LearningRate:     m.LearningRate,
		MaxDepth:         m.MaxDepth,
		L2Regularization: m.L2Regularization,
		RandomState:      m.RandomState,
		TestSize:         m.TestSize,
		MaxBins:          m.MaxBins,
		MaxLeafNodes:     m.MaxLeafNodes,
		MinSamplesLeaf:   m.MinSamplesLeaf,
	}
}

func FileNames(cfg *config.Config) artifacts.FileNames {
	d := cfg.Data
	return artifacts.FileNames{
		Model:             d.ModelFile,
		Districts:         d.DistrictsFile,
		PropertyTypes:     d.PropertyTypesFile,
		Metrics:           d.MetricsFile,
		FeatureImportance: d.FeatureImportanceFile,
		DistrictScores:    d.DistrictScoresFile,
	}
}

func TrainerConfig(cfg *config.Config) trainer.Config {
	return trainer.Config{
		RawDataPath:    cfg.Data.RawData,
		ArtifactDir:    cfg.Data.ArtifactDir,
		Files:          FileNames(cfg),
		Hyperparams:    Hyperparams(cfg),
		ImportanceTopN: cfg.Model.ImportanceTopN,
	}
}

func PredictorConfig(cfg *config.Config) predictor.Config {
	return predictor.Config{DefaultDistrictScore: cfg.Model.DefaultDistrictScore}
}

func CacheConfig(cfg *config.Config) cache.Config {
	return cache.Config{
		URL:         cfg.Cache.RedisURL,
		TTL:         cfg.Cache.TTL,
		Prefix:      cfg.Cache.KeyPrefix,
		MaxFailures: cfg.Cache.BreakerFailures,
		Cooldown:    cfg.Cache.BreakerCooldown,
	}
}
