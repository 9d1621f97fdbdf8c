package queries

import (
	"context"
	"database/sql"

	"github.com/OldStager01/housing-valuator/pkg/models"
)

// Store bundles the repositories behind the event logger's sink.
type Store struct {
	Predictions  *PredictionRepository
	TrainingRuns *TrainingRunRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		Predictions:  NewPredictionRepository(db),
		TrainingRuns: NewTrainingRunRepository(db),
	}
}

func (s *Store) SavePrediction(ctx context.Context, rec *models.PredictionRecord) error {
	return s.Predictions.Insert(ctx, rec)
}

func (s *Store) SaveTrainingRun(ctx context.Context, run *models.TrainingRun) error {
	return s.TrainingRuns.Save(ctx, run)
}
