// internal/repositories/postgresql/analytics_repo.go
package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/brandlens/mention-workflows/internal/database"
	"github.com/brandlens/mention-workflows/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type analyticsRepo struct {
	db *database.Client
}

func NewAnalyticsRepo(db *database.Client) repositories.AnalyticsRepository {
	return &analyticsRepo{db: db}
}

// ProjectStats aggregates mention counts over every completed check in the
// window. Failed results carry no brand_mentions rows, so they drop out of
// the rate denominator naturally.
func (r *analyticsRepo) ProjectStats(ctx context.Context, projectID uuid.UUID, brand string, since time.Time) (*repositories.ProjectStatsRow, error) {
	query := `
		SELECT
			COUNT(DISTINCT c.check_id) AS total_checks,
			COALESCE(SUM(CASE WHEN bm.mentioned THEN 1 ELSE 0 END), 0) AS total_mentions,
			COALESCE(AVG(CASE WHEN bm.mentioned THEN 1.0 ELSE 0.0 END), 0) AS mention_rate,
			COALESCE(AVG(bm.confidence_score) FILTER (WHERE bm.mentioned), 0) AS avg_confidence
		FROM mention_checks c
		JOIN mention_results r ON r.check_id = c.check_id AND r.error_message IS NULL
		JOIN brand_mentions bm ON bm.result_id = r.result_id
		WHERE c.project_id = $1
		  AND c.status = 'completed'
		  AND c.created_at >= $2
		  AND ($3 = '' OR bm.brand = $3)`

	var row repositories.ProjectStatsRow
	if err := r.db.GetContext(ctx, &row, query, projectID, since, brand); err != nil {
		return nil, fmt.Errorf("failed to get project stats: %w", err)
	}
	return &row, nil
}

func (r *analyticsRepo) ModelPerformance(ctx context.Context, projectID uuid.UUID, brand string, since time.Time) ([]repositories.ModelPerformanceRow, error) {
	query := `
		SELECT
			r.model AS model,
			COUNT(DISTINCT c.check_id) AS checks,
			COALESCE(SUM(CASE WHEN bm.mentioned THEN 1 ELSE 0 END), 0) AS mentions,
			COALESCE(AVG(CASE WHEN bm.mentioned THEN 1.0 ELSE 0.0 END), 0) AS mention_rate,
			COALESCE(AVG(bm.confidence_score) FILTER (WHERE bm.mentioned), 0) AS avg_confidence
		FROM mention_checks c
		JOIN mention_results r ON r.check_id = c.check_id AND r.error_message IS NULL
		JOIN brand_mentions bm ON bm.result_id = r.result_id
		WHERE c.project_id = $1
		  AND c.status = 'completed'
		  AND c.created_at >= $2
		  AND ($3 = '' OR bm.brand = $3)
		GROUP BY r.model
		ORDER BY mentions DESC`

	var rows []repositories.ModelPerformanceRow
	if err := r.db.SelectContext(ctx, &rows, query, projectID, since, brand); err != nil {
		return nil, fmt.Errorf("failed to get model performance: %w", err)
	}
	return rows, nil
}

func (r *analyticsRepo) BrandStats(ctx context.Context, projectID uuid.UUID, brands []string, since time.Time) ([]repositories.BrandStatsRow, error) {
	query := `
		SELECT
			bm.brand AS brand,
			COUNT(DISTINCT c.check_id) AS total_checks,
			COALESCE(SUM(CASE WHEN bm.mentioned THEN 1 ELSE 0 END), 0) AS total_mentions,
			COALESCE(AVG(CASE WHEN bm.mentioned THEN 1.0 ELSE 0.0 END), 0) AS mention_rate,
			COALESCE(AVG(bm.confidence_score) FILTER (WHERE bm.mentioned), 0) AS avg_confidence
		FROM mention_checks c
		JOIN mention_results r ON r.check_id = c.check_id AND r.error_message IS NULL
		JOIN brand_mentions bm ON bm.result_id = r.result_id
		WHERE c.project_id = $1
		  AND c.status = 'completed'
		  AND c.created_at >= $2
		  AND bm.brand = ANY($3)
		GROUP BY bm.brand
		ORDER BY total_mentions DESC`

	var rows []repositories.BrandStatsRow
	if err := r.db.SelectContext(ctx, &rows, query, projectID, since, pq.Array(brands)); err != nil {
		return nil, fmt.Errorf("failed to get brand stats: %w", err)
	}
	return rows, nil
}
