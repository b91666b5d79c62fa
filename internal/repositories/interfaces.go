// internal/repositories/interfaces.go
package repositories

import (
	"context"
	"time"

	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/google/uuid"
)

// CheckFilter narrows history listings.
type CheckFilter struct {
	Brand  string // empty = no filter
	Model  string // empty = no filter
	Limit  int
	Offset int
}

// ModelPerformanceRow is a per-model aggregate over a project's results.
type ModelPerformanceRow struct {
	Model         string  `db:"model"`
	Checks        int     `db:"checks"`
	Mentions      int     `db:"mentions"`
	MentionRate   float64 `db:"mention_rate"`
	AvgConfidence float64 `db:"avg_confidence"`
}

// BrandStatsRow is a per-brand aggregate over a project's mentions.
type BrandStatsRow struct {
	Brand         string  `db:"brand"`
	TotalChecks   int     `db:"total_checks"`
	TotalMentions int     `db:"total_mentions"`
	MentionRate   float64 `db:"mention_rate"`
	AvgConfidence float64 `db:"avg_confidence"`
}

// ProjectStatsRow is the project-wide aggregate for an analytics window.
type ProjectStatsRow struct {
	TotalChecks   int     `db:"total_checks"`
	TotalMentions int     `db:"total_mentions"`
	MentionRate   float64 `db:"mention_rate"`
	AvgConfidence float64 `db:"avg_confidence"`
}

type MentionCheckRepository interface {
	Create(ctx context.Context, check *models.MentionCheck) error
	GetByID(ctx context.Context, checkID uuid.UUID) (*models.MentionCheck, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, filter CheckFilter) ([]*models.MentionCheck, int, error)
	MarkRunning(ctx context.Context, checkID uuid.UUID) error
	Finalize(ctx context.Context, check *models.MentionCheck) error
}

// MentionResultRepository stores per-model results. Create persists the
// result row together with its attached Mentions in one transaction, so a
// result is never visible without its per-brand rows.
type MentionResultRepository interface {
	Create(ctx context.Context, result *models.MentionResult) error
	GetByCheck(ctx context.Context, checkID uuid.UUID) ([]*models.MentionResult, error)
}

type BrandMentionRepository interface {
	GetByResult(ctx context.Context, resultID uuid.UUID) ([]*models.BrandMention, error)
}

type PromptTemplateRepository interface {
	Create(ctx context.Context, template *models.PromptTemplate) error
	GetByID(ctx context.Context, templateID uuid.UUID) (*models.PromptTemplate, error)
	ListByUser(ctx context.Context, userID uuid.UUID, category string, limit, offset int) ([]*models.PromptTemplate, int, error)
	IncrementUsage(ctx context.Context, templateID uuid.UUID) error
}

type AnalyticsCacheRepository interface {
	GetByKey(ctx context.Context, cacheKey string) (*models.AnalyticsCacheEntry, error)
	Upsert(ctx context.Context, entry *models.AnalyticsCacheEntry) error
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// AnalyticsRepository runs the aggregate queries that back cached analytics
// payloads. All windows are [since, now].
type AnalyticsRepository interface {
	ProjectStats(ctx context.Context, projectID uuid.UUID, brand string, since time.Time) (*ProjectStatsRow, error)
	ModelPerformance(ctx context.Context, projectID uuid.UUID, brand string, since time.Time) ([]ModelPerformanceRow, error)
	BrandStats(ctx context.Context, projectID uuid.UUID, brands []string, since time.Time) ([]BrandStatsRow, error)
}
