package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"cropwatch/internal/types"
)

// StoredRecommendation is one archived recommendation_history row. Payload
// holds the full FieldRecommendation JSON as written at analysis time.
type StoredRecommendation struct {
	ID           string          `json:"id" db:"id"`
	FieldID      string          `json:"field_id" db:"field_id"`
	AnalysisDate time.Time       `json:"analysis_date" db:"analysis_date"`
	Payload      json.RawMessage `json:"payload" db:"payload"`
}

// RecommendationRepository provides data access for the
// recommendation_history table. It satisfies the recommendation engine's
// history store contract.
type RecommendationRepository struct {
	db DBTX
}

// NewRecommendationRepository creates a new RecommendationRepository backed
// by the given database connection (pool or transaction).
func NewRecommendationRepository(db DBTX) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// SaveFieldRecommendation archives a generated recommendation. The summary
// columns are denormalized for dashboard queries; the payload column keeps
// the full document.
func (r *RecommendationRepository) SaveFieldRecommendation(ctx context.Context, rec *types.FieldRecommendation) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalUnexpected, "failed to marshal recommendation payload", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO recommendation_history
		 (id, field_id, analysis_date, total_cost, expected_roi, zone_count, payload)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.NewString(),
		rec.FieldID,
		rec.AnalysisDate,
		rec.TotalCost,
		rec.ExpectedROI,
		len(rec.Zones),
		payload,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to save recommendation history", err)
	}
	return nil
}

// LatestByField retrieves the most recent recommendation for a field.
func (r *RecommendationRepository) LatestByField(ctx context.Context, fieldID string) (*types.FieldRecommendation, error) {
	row := r.db.QueryRow(ctx,
		`SELECT payload FROM recommendation_history
		 WHERE field_id = $1
		 ORDER BY analysis_date DESC
		 LIMIT 1`,
		fieldID,
	)

	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundField, "no recommendations for field", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to get latest recommendation", err)
	}

	var rec types.FieldRecommendation
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to unmarshal recommendation payload", err)
	}
	return &rec, nil
}

// ListByField retrieves a field's recommendation history, newest first.
func (r *RecommendationRepository) ListByField(ctx context.Context, fieldID string, limit int) ([]*types.FieldRecommendation, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(ctx,
		`SELECT payload FROM recommendation_history
		 WHERE field_id = $1
		 ORDER BY analysis_date DESC
		 LIMIT $2`,
		fieldID, limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list recommendation history", err)
	}
	defer rows.Close()

	var recs []*types.FieldRecommendation
	for rows.Next() {
		var payload []byte
		if scanErr := rows.Scan(&payload); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan recommendation row", scanErr)
		}
		var rec types.FieldRecommendation
		if err := json.Unmarshal(payload, &rec); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to unmarshal recommendation payload", err)
		}
		recs = append(recs, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating recommendation rows", err)
	}
	return recs, nil
}

// ListOlderThan retrieves rows whose analysis date precedes the cutoff, for
// the archival sweep. Oldest first so archives stay chronological.
func (r *RecommendationRepository) ListOlderThan(ctx context.Context, cutoff time.Time, limit int) ([]StoredRecommendation, error) {
	if limit <= 0 {
		limit = 500
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, field_id, analysis_date, payload
		 FROM recommendation_history
		 WHERE analysis_date < $1
		 ORDER BY analysis_date ASC
		 LIMIT $2`,
		cutoff, limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list archivable recommendations", err)
	}
	defer rows.Close()

	var stored []StoredRecommendation
	for rows.Next() {
		var s StoredRecommendation
		if scanErr := rows.Scan(&s.ID, &s.FieldID, &s.AnalysisDate, &s.Payload); scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan archivable recommendation", scanErr)
		}
		stored = append(stored, s)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating archivable recommendations", err)
	}
	return stored, nil
}

// DeleteByIDs removes archived rows after they have been written out.
func (r *RecommendationRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := r.db.Exec(ctx,
		`DELETE FROM recommendation_history WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, types.NewAppError(types.ErrCodeInternalDB, "failed to delete archived recommendations", err)
	}
	return tag.RowsAffected(), nil
}
