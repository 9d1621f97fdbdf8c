package queries

import (
	"context"
	"database/sql"
	"errors"

	"github.com/OldStager01/housing-valuator/pkg/models"
)

type TrainingRunRepository struct {
	db *sql.DB
}

func NewTrainingRunRepository(db *sql.DB) *TrainingRunRepository {
	return &TrainingRunRepository{db: db}
}

// Save inserts run, or updates it when the run id is already stored.
func (r *TrainingRunRepository) Save(ctx context.Context, run *models.TrainingRun) error {
	var r2, mae, rmse sql.NullFloat64
	var trainRows, testRows sql.NullInt64
	if m := run.Metrics; m != nil {
		r2 = sql.NullFloat64{Float64: m.R2, Valid: true}
		mae = sql.NullFloat64{Float64: m.MAE, Valid: true}
		rmse = sql.NullFloat64{Float64: m.RMSE, Valid: true}
		trainRows = sql.NullInt64{Int64: int64(m.TrainRows), Valid: true}
		testRows = sql.NullInt64{Int64: int64(m.TestRows), Valid: true}
	}

	query := `
		INSERT INTO training_runs (run_id, started_at, finished_at, status, failed_stage, error,
			raw_rows, clean_rows, r2, mae, rmse, train_rows, test_rows)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (run_id) DO UPDATE SET
			finished_at = EXCLUDED.finished_at,
			status = EXCLUDED.status,
			failed_stage = EXCLUDED.failed_stage,
			error = EXCLUDED.error,
			raw_rows = EXCLUDED.raw_rows,
			clean_rows = EXCLUDED.clean_rows,
			r2 = EXCLUDED.r2,
			mae = EXCLUDED.mae,
			rmse = EXCLUDED.rmse,
			train_rows = EXCLUDED.train_rows,
			test_rows = EXCLUDED.test_rows
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		run.RunID, run.StartedAt, run.FinishedAt, string(run.Status),
		nullString(run.FailedAt), nullString(run.Error),
		run.RawRows, run.CleanRows, r2, mae, rmse, trainRows, testRows,
	).Scan(&run.ID)
}

const trainingRunColumns = `
	id, run_id, started_at, finished_at, status, failed_stage, error,
	raw_rows, clean_rows, r2, mae, rmse, train_rows, test_rows`

func (r *TrainingRunRepository) GetRecent(ctx context.Context, limit int) ([]models.TrainingRun, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT`+trainingRunColumns+`
		FROM training_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.TrainingRun
	for rows.Next() {
		run, err := scanTrainingRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetLatestSuccessful returns nil, nil when no run has succeeded yet.
func (r *TrainingRunRepository) GetLatestSuccessful(ctx context.Context) (*models.TrainingRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT`+trainingRunColumns+`
		FROM training_runs
		WHERE status = $1
		ORDER BY finished_at DESC
		LIMIT 1`, string(models.TrainingSucceeded))

	run, err := scanTrainingRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return run, err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTrainingRun(s scanner) (*models.TrainingRun, error) {
	var run models.TrainingRun
	var status string
	var failedStage, errMsg sql.NullString
	var r2, mae, rmse sql.NullFloat64
	var trainRows, testRows sql.NullInt64

	err := s.Scan(
		&run.ID, &run.RunID, &run.StartedAt, &run.FinishedAt, &status, &failedStage, &errMsg,
		&run.RawRows, &run.CleanRows, &r2, &mae, &rmse, &trainRows, &testRows,
	)
	if err != nil {
		return nil, err
	}

	run.Status = models.TrainingStatus(status)
	run.FailedAt = failedStage.String
	run.Error = errMsg.String
	if r2.Valid {
		run.Metrics = &models.ModelMetrics{
			R2:        r2.Float64,
			MAE:       mae.Float64,
			RMSE:      rmse.Float64,
			TrainRows: int(trainRows.Int64),
			TestRows:  int(testRows.Int64),
		}
	}
	return &run, nil
}
