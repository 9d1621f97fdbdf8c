package queries

import (
	"context"
	"database/sql"

	"github.com/OldStager01/housing-valuator/pkg/models"
)

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Insert(ctx context.Context, rec *models.PredictionRecord) error {
	query := `
		INSERT INTO predictions (created_at, trace_id, model_run_id, district, property_type,
			area, room_count, living_room_count, building_age,
			predicted_price, luxury_score, luxury_category)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	return r.db.QueryRowContext(ctx, query,
		rec.CreatedAt, nullString(rec.TraceID), nullString(rec.ModelRunID), rec.District, rec.PropertyType,
		rec.Area, rec.RoomCount, rec.LivingRooms, rec.BuildingAge,
		rec.PredictedPrice, rec.LuxuryScore, rec.LuxuryCategory,
	).Scan(&rec.ID)
}

func (r *PredictionRepository) GetRecent(ctx context.Context, limit int) ([]models.PredictionRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, created_at, trace_id, model_run_id, district, property_type,
			   area, room_count, living_room_count, building_age,
			   predicted_price, luxury_score, luxury_category
		FROM predictions
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.PredictionRecord, 0, limit)
	for rows.Next() {
		var p models.PredictionRecord
		var traceID, runID sql.NullString
		err := rows.Scan(
			&p.ID, &p.CreatedAt, &traceID, &runID, &p.District, &p.PropertyType,
			&p.Area, &p.RoomCount, &p.LivingRooms, &p.BuildingAge,
			&p.PredictedPrice, &p.LuxuryScore, &p.LuxuryCategory,
		)
		if err != nil {
			return nil, err
		}
		p.TraceID = traceID.String
		p.ModelRunID = runID.String
		records = append(records, p)
	}

	return records, rows.Err()
}

// CountByCategory returns how many stored predictions fell in each luxury category.
func (r *PredictionRepository) CountByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT luxury_category, COUNT(*)
		FROM predictions
		GROUP BY luxury_category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
