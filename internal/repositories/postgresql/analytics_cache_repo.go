// internal/repositories/postgresql/analytics_cache_repo.go
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/brandlens/mention-workflows/internal/database"
	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/brandlens/mention-workflows/internal/repositories"
)

type analyticsCacheRepo struct {
	db *database.Client
}

func NewAnalyticsCacheRepo(db *database.Client) repositories.AnalyticsCacheRepository {
	return &analyticsCacheRepo{db: db}
}

func (r *analyticsCacheRepo) GetByKey(ctx context.Context, cacheKey string) (*models.AnalyticsCacheEntry, error) {
	query := `
		SELECT entry_id, cache_key, project_id, brand, timeframe, data, expires_at, created_at
		FROM analytics_cache
		WHERE cache_key = $1`

	var entry models.AnalyticsCacheEntry
	if err := r.db.GetContext(ctx, &entry, query, cacheKey); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache entry %s: %w", cacheKey, err)
	}
	return &entry, nil
}

func (r *analyticsCacheRepo) Upsert(ctx context.Context, entry *models.AnalyticsCacheEntry) error {
	query := `
		INSERT INTO analytics_cache (
			entry_id, cache_key, project_id, brand, timeframe, data, expires_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (cache_key) DO UPDATE SET
			data = EXCLUDED.data,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at`

	_, err := r.db.ExecContext(ctx, query,
		entry.EntryID, entry.CacheKey, entry.ProjectID, entry.Brand,
		entry.Timeframe, entry.Data, entry.ExpiresAt, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert cache entry %s: %w", entry.CacheKey, err)
	}
	return nil
}

func (r *analyticsCacheRepo) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM analytics_cache WHERE expires_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired cache entries: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
