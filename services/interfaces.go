// services/interfaces.go
package services

import (
	"context"
	"time"

	"github.com/brandlens/mention-workflows/internal/database"
	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/brandlens/mention-workflows/internal/repositories"
	"github.com/brandlens/mention-workflows/internal/repositories/postgresql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// RepositoryManager manages all database repositories
type RepositoryManager struct {
	db                 *database.Client
	MentionCheckRepo   repositories.MentionCheckRepository
	MentionResultRepo  repositories.MentionResultRepository
	BrandMentionRepo   repositories.BrandMentionRepository
	PromptTemplateRepo repositories.PromptTemplateRepository
	AnalyticsCacheRepo repositories.AnalyticsCacheRepository
	AnalyticsRepo      repositories.AnalyticsRepository
}

// NewRepositoryManager creates a new repository manager with all repositories
func NewRepositoryManager(db *database.Client) *RepositoryManager {
	return &RepositoryManager{
		db:                 db,
		MentionCheckRepo:   postgresql.NewMentionCheckRepo(db),
		MentionResultRepo:  postgresql.NewMentionResultRepo(db),
		BrandMentionRepo:   postgresql.NewBrandMentionRepo(db),
		PromptTemplateRepo: postgresql.NewPromptTemplateRepo(db),
		AnalyticsCacheRepo: postgresql.NewAnalyticsCacheRepo(db),
		AnalyticsRepo:      postgresql.NewAnalyticsRepo(db),
	}
}

// BeginTx starts a database transaction
func (rm *RepositoryManager) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return rm.db.BeginTxx(ctx, nil)
}

// Mention is the per-brand verdict produced by the analyzer for one text.
type Mention struct {
	Brand          string  `json:"brand"`
	Mentioned      bool    `json:"mentioned"`
	Confidence     float64 `json:"confidence"`
	ContextSnippet *string `json:"context_snippet,omitempty"`
	Position       *int    `json:"position,omitempty"`
}

// Summary is the check-level rollup of every result's mention verdicts.
type Summary struct {
	TotalMentions int     `json:"total_mentions"`
	MentionRate   float64 `json:"mention_rate"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// StartDetectionParams is everything a caller supplies to launch a check.
type StartDetectionParams struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
	Prompt    string
	Brands    []string
	Models    []string
	Metadata  map[string]string
}

// ModelPerformance is a per-model slice of an analytics payload.
type ModelPerformance struct {
	Checks        int     `json:"checks"`
	Mentions      int     `json:"mentions"`
	MentionRate   float64 `json:"mention_rate"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// AnalyticsPayload is the cache-backed aggregate for one
// (project, brand, timeframe) scope.
type AnalyticsPayload struct {
	ProjectID        uuid.UUID                   `json:"project_id"`
	Brand            string                      `json:"brand"`
	Timeframe        string                      `json:"timeframe"`
	TotalChecks      int                         `json:"total_checks"`
	TotalMentions    int                         `json:"total_mentions"`
	MentionRate      float64                     `json:"mention_rate"`
	AvgConfidence    float64                     `json:"avg_confidence"`
	ModelPerformance map[string]ModelPerformance `json:"model_performance"`
	ComputedAt       time.Time                   `json:"computed_at"`
}

// BrandComparison is one brand's aggregate row in a competitive comparison.
type BrandComparison struct {
	Brand         string  `json:"brand"`
	TotalChecks   int     `json:"total_checks"`
	TotalMentions int     `json:"total_mentions"`
	MentionRate   float64 `json:"mention_rate"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// CheckHistory is a paginated slice of a project's checks.
type CheckHistory struct {
	Checks []*models.MentionCheck `json:"checks"`
	Total  int                    `json:"total"`
	Page   int                    `json:"page"`
	Limit  int                    `json:"limit"`
}

// SaveTemplateParams carries a new prompt template.
type SaveTemplateParams struct {
	UserID      uuid.UUID
	Name        string
	Category    string
	Template    string
	Variables   map[string]string
	Description *string
	IsPublic    bool
}

// MentionAnalyzer turns one response text and a brand list into per-brand
// mention verdicts. Implementations must be pure: no hidden state, identical
// output for identical input.
type MentionAnalyzer interface {
	Detect(text string, brands []string) []Mention
}

// Dispatcher hands a created check off for asynchronous execution. The
// production dispatcher emits an event consumed by the detection workflow;
// tests run the check inline.
type Dispatcher interface {
	Dispatch(ctx context.Context, checkID uuid.UUID) error
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(ctx context.Context, checkID uuid.UUID) error

func (f DispatcherFunc) Dispatch(ctx context.Context, checkID uuid.UUID) error {
	return f(ctx, checkID)
}

// DetectionService owns the mention check lifecycle end to end.
type DetectionService interface {
	StartDetection(ctx context.Context, params StartDetectionParams) (*models.MentionCheck, error)
	RunCheck(ctx context.Context, checkID uuid.UUID) (*models.MentionCheck, error)
	GetCheck(ctx context.Context, checkID uuid.UUID) (*models.MentionCheck, error)
	ListChecks(ctx context.Context, projectID uuid.UUID, filter repositories.CheckFilter) (*CheckHistory, error)
	AnalyzeContent(text string, brands []string) []Mention
}

// AnalyticsService serves cache-backed aggregate statistics.
type AnalyticsService interface {
	GetAnalytics(ctx context.Context, projectID uuid.UUID, brand, timeframe string) (*AnalyticsPayload, error)
	CompareBrands(ctx context.Context, projectID uuid.UUID, brands []string, timeframe string) ([]BrandComparison, error)
	PruneCache(ctx context.Context) (int, error)
}

// TemplateService manages reusable prompt templates.
type TemplateService interface {
	SaveTemplate(ctx context.Context, params SaveTemplateParams) (*models.PromptTemplate, error)
	ListTemplates(ctx context.Context, userID uuid.UUID, category string, page, limit int) ([]*models.PromptTemplate, int, error)
	RenderTemplate(ctx context.Context, templateID uuid.UUID, values map[string]string) (string, error)
}

type CostService interface {
	CalculateCost(provider, model string, inputTokens, outputTokens int) float64
}
