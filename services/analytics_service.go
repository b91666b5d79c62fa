// services/analytics_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandlens/mention-workflows/internal/config"
	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type analyticsService struct {
	cfg   *config.Config
	repos *RepositoryManager
	now   func() time.Time
}

func NewAnalyticsService(cfg *config.Config, repos *RepositoryManager) AnalyticsService {
	return &analyticsService{
		cfg:   cfg,
		repos: repos,
		now:   time.Now,
	}
}

// timeframeWindows maps the accepted timeframe labels to their lookback.
var timeframeWindows = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

// GetAnalytics serves the aggregate payload for one (project, brand,
// timeframe) scope, reading through the TTL cache. Errors and empty windows
// are never cached, so a project's first completed check shows up on the
// next read.
func (s *analyticsService) GetAnalytics(ctx context.Context, projectID uuid.UUID, brand, timeframe string) (*AnalyticsPayload, error) {
	window, ok := timeframeWindows[timeframe]
	if !ok {
		return nil, fmt.Errorf("invalid timeframe %q: must be one of 7d, 30d, 90d", timeframe)
	}

	cacheKey := analyticsCacheKey(projectID, brand, timeframe)
	now := s.now()

	entry, err := s.repos.AnalyticsCacheRepo.GetByKey(ctx, cacheKey)
	if err != nil {
		logrus.Warnf("[AnalyticsService] Cache read failed for %s: %v", cacheKey, err)
	} else if entry != nil && !entry.Expired(now) {
		var payload AnalyticsPayload
		if err := json.Unmarshal(entry.Data, &payload); err == nil {
			return &payload, nil
		}
		logrus.Warnf("[AnalyticsService] Discarding corrupt cache entry %s", cacheKey)
	}

	payload, err := s.computeAnalytics(ctx, projectID, brand, timeframe, now.Add(-window))
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode analytics payload: %w", err)
	}
	cacheEntry := &models.AnalyticsCacheEntry{
		EntryID:   uuid.New(),
		CacheKey:  cacheKey,
		ProjectID: &projectID,
		Brand:     &brand,
		Timeframe: timeframe,
		Data:      data,
		ExpiresAt: now.Add(s.cfg.Detection.AnalyticsCacheTTL),
		CreatedAt: now,
	}
	if err := s.repos.AnalyticsCacheRepo.Upsert(ctx, cacheEntry); err != nil {
		// Serving the fresh payload matters more than caching it.
		logrus.Warnf("[AnalyticsService] Cache write failed for %s: %v", cacheKey, err)
	}

	return payload, nil
}

func (s *analyticsService) computeAnalytics(ctx context.Context, projectID uuid.UUID, brand, timeframe string, since time.Time) (*AnalyticsPayload, error) {
	stats, err := s.repos.AnalyticsRepo.ProjectStats(ctx, projectID, brand, since)
	if err != nil {
		return nil, fmt.Errorf("failed to compute project stats: %w", err)
	}

	perModel, err := s.repos.AnalyticsRepo.ModelPerformance(ctx, projectID, brand, since)
	if err != nil {
		return nil, fmt.Errorf("failed to compute model performance: %w", err)
	}

	payload := &AnalyticsPayload{
		ProjectID:        projectID,
		Brand:            brand,
		Timeframe:        timeframe,
		TotalChecks:      stats.TotalChecks,
		TotalMentions:    stats.TotalMentions,
		MentionRate:      stats.MentionRate,
		AvgConfidence:    stats.AvgConfidence,
		ModelPerformance: make(map[string]ModelPerformance, len(perModel)),
		ComputedAt:       s.now(),
	}
	for _, row := range perModel {
		payload.ModelPerformance[row.Model] = ModelPerformance{
			Checks:        row.Checks,
			Mentions:      row.Mentions,
			MentionRate:   row.MentionRate,
			AvgConfidence: row.AvgConfidence,
		}
	}

	return payload, nil
}

// CompareBrands ranks brands by mention rate over the window. Always computed
// from live rows: comparisons cut across the per-brand cache scopes.
func (s *analyticsService) CompareBrands(ctx context.Context, projectID uuid.UUID, brands []string, timeframe string) ([]BrandComparison, error) {
	window, ok := timeframeWindows[timeframe]
	if !ok {
		return nil, fmt.Errorf("invalid timeframe %q: must be one of 7d, 30d, 90d", timeframe)
	}

	ordered := dedupeBrands(brands)
	if len(ordered) == 0 {
		return nil, fmt.Errorf("at least one brand is required")
	}

	rows, err := s.repos.AnalyticsRepo.BrandStats(ctx, projectID, ordered, s.now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("failed to compute brand stats: %w", err)
	}

	byBrand := make(map[string]BrandComparison, len(rows))
	for _, row := range rows {
		byBrand[row.Brand] = BrandComparison{
			Brand:         row.Brand,
			TotalChecks:   row.TotalChecks,
			TotalMentions: row.TotalMentions,
			MentionRate:   row.MentionRate,
			AvgConfidence: row.AvgConfidence,
		}
	}

	// Brands with no rows in the window still appear, zeroed, so the caller
	// sees every brand it asked about.
	comparisons := make([]BrandComparison, 0, len(ordered))
	for _, brand := range ordered {
		if cmp, ok := byBrand[brand]; ok {
			comparisons = append(comparisons, cmp)
			continue
		}
		comparisons = append(comparisons, BrandComparison{Brand: brand})
	}

	return comparisons, nil
}

// PruneCache drops entries past their TTL. Expired entries are already
// invisible to reads; this just reclaims the rows.
func (s *analyticsService) PruneCache(ctx context.Context) (int, error) {
	deleted, err := s.repos.AnalyticsCacheRepo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to prune analytics cache: %w", err)
	}
	if deleted > 0 {
		logrus.Infof("[AnalyticsService] Pruned %d expired cache entries", deleted)
	}
	return deleted, nil
}

// analyticsCacheKey derives the deterministic cache key for a scope.
func analyticsCacheKey(projectID uuid.UUID, brand, timeframe string) string {
	return fmt.Sprintf("analytics:%s:%s:%s", projectID, brand, timeframe)
}
