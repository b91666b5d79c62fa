// services/fakes_test.go
package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/brandlens/mention-workflows/internal/repositories"
	"github.com/google/uuid"
)

// fakeCheckRepo is an in-memory MentionCheckRepository that enforces the same
// status guards as the postgres implementation.
type fakeCheckRepo struct {
	mu     sync.Mutex
	checks map[uuid.UUID]*models.MentionCheck
}

func newFakeCheckRepo() *fakeCheckRepo {
	return &fakeCheckRepo{checks: make(map[uuid.UUID]*models.MentionCheck)}
}

func (r *fakeCheckRepo) Create(ctx context.Context, check *models.MentionCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *check
	r.checks[check.CheckID] = &clone
	return nil
}

func (r *fakeCheckRepo) GetByID(ctx context.Context, checkID uuid.UUID) (*models.MentionCheck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	check, ok := r.checks[checkID]
	if !ok {
		return nil, nil
	}
	clone := *check
	return &clone, nil
}

func (r *fakeCheckRepo) ListByProject(ctx context.Context, projectID uuid.UUID, filter repositories.CheckFilter) ([]*models.MentionCheck, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.MentionCheck
	for _, check := range r.checks {
		if check.ProjectID != projectID {
			continue
		}
		clone := *check
		all = append(all, &clone)
	}
	total := len(all)
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func (r *fakeCheckRepo) MarkRunning(ctx context.Context, checkID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	check, ok := r.checks[checkID]
	if !ok || check.Status != models.CheckStatusPending {
		return errNotPending
	}
	check.Status = models.CheckStatusRunning
	return nil
}

func (r *fakeCheckRepo) Finalize(ctx context.Context, check *models.MentionCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.checks[check.CheckID]
	if !ok || stored.Status != models.CheckStatusRunning {
		return errNotRunning
	}
	clone := *check
	r.checks[check.CheckID] = &clone
	return nil
}

type fakeError string

func (e fakeError) Error() string { return string(e) }

const (
	errNotPending = fakeError("check is not pending")
	errNotRunning = fakeError("check is not running")
)

// fakeResultRepo mirrors the postgres implementation's all-or-nothing write:
// the result and its attached mention rows land together, and a failure
// injected via failModels leaves neither behind.
type fakeResultRepo struct {
	mu         sync.Mutex
	results    []*models.MentionResult
	mentions   *fakeMentionRepo
	failModels map[string]bool
}

func (r *fakeResultRepo) Create(ctx context.Context, result *models.MentionResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failModels[result.Model] {
		return fakeError("storage unavailable")
	}
	clone := *result
	r.results = append(r.results, &clone)
	for _, m := range result.Mentions {
		r.mentions.add(m)
	}
	return nil
}

func (r *fakeResultRepo) GetByCheck(ctx context.Context, checkID uuid.UUID) ([]*models.MentionResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.MentionResult
	for _, result := range r.results {
		if result.CheckID != checkID {
			continue
		}
		clone := *result
		out = append(out, &clone)
	}
	return out, nil
}

type fakeMentionRepo struct {
	mu       sync.Mutex
	mentions []*models.BrandMention
}

func (r *fakeMentionRepo) add(m *models.BrandMention) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *m
	r.mentions = append(r.mentions, &clone)
}

func (r *fakeMentionRepo) GetByResult(ctx context.Context, resultID uuid.UUID) ([]*models.BrandMention, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.BrandMention
	for _, m := range r.mentions {
		if m.ResultID != resultID {
			continue
		}
		clone := *m
		out = append(out, &clone)
	}
	return out, nil
}

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[uuid.UUID]*models.PromptTemplate
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[uuid.UUID]*models.PromptTemplate)}
}

func (r *fakeTemplateRepo) Create(ctx context.Context, template *models.PromptTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *template
	r.templates[template.TemplateID] = &clone
	return nil
}

func (r *fakeTemplateRepo) GetByID(ctx context.Context, templateID uuid.UUID) (*models.PromptTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	template, ok := r.templates[templateID]
	if !ok {
		return nil, nil
	}
	clone := *template
	return &clone, nil
}

func (r *fakeTemplateRepo) ListByUser(ctx context.Context, userID uuid.UUID, category string, limit, offset int) ([]*models.PromptTemplate, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PromptTemplate
	for _, template := range r.templates {
		if template.UserID != userID && !template.IsPublic {
			continue
		}
		if category != "" && !strings.EqualFold(template.Category, category) {
			continue
		}
		clone := *template
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (r *fakeTemplateRepo) IncrementUsage(ctx context.Context, templateID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if template, ok := r.templates[templateID]; ok {
		template.UsageCount++
	}
	return nil
}

type fakeCacheRepo struct {
	mu      sync.Mutex
	entries map[string]*models.AnalyticsCacheEntry
	reads   int
	writes  int
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: make(map[string]*models.AnalyticsCacheEntry)}
}

func (r *fakeCacheRepo) GetByKey(ctx context.Context, cacheKey string) (*models.AnalyticsCacheEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
	entry, ok := r.entries[cacheKey]
	if !ok {
		return nil, nil
	}
	clone := *entry
	return &clone, nil
}

func (r *fakeCacheRepo) Upsert(ctx context.Context, entry *models.AnalyticsCacheEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	clone := *entry
	r.entries[entry.CacheKey] = &clone
	return nil
}

func (r *fakeCacheRepo) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for key, entry := range r.entries {
		if entry.ExpiresAt.Before(before) {
			delete(r.entries, key)
			deleted++
		}
	}
	return deleted, nil
}

// fakeAnalyticsRepo serves canned aggregate rows and records the windows it
// was asked about.
type fakeAnalyticsRepo struct {
	mu           sync.Mutex
	projectStats *repositories.ProjectStatsRow
	perModel     []repositories.ModelPerformanceRow
	brandStats   []repositories.BrandStatsRow
	statCalls    int
}

func (r *fakeAnalyticsRepo) ProjectStats(ctx context.Context, projectID uuid.UUID, brand string, since time.Time) (*repositories.ProjectStatsRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statCalls++
	if r.projectStats == nil {
		return &repositories.ProjectStatsRow{}, nil
	}
	clone := *r.projectStats
	return &clone, nil
}

func (r *fakeAnalyticsRepo) ModelPerformance(ctx context.Context, projectID uuid.UUID, brand string, since time.Time) ([]repositories.ModelPerformanceRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repositories.ModelPerformanceRow(nil), r.perModel...), nil
}

func (r *fakeAnalyticsRepo) BrandStats(ctx context.Context, projectID uuid.UUID, brands []string, since time.Time) ([]repositories.BrandStatsRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repositories.BrandStatsRow(nil), r.brandStats...), nil
}

// newFakeRepos builds a RepositoryManager backed entirely by in-memory fakes.
func newFakeRepos() (*RepositoryManager, *fakeCheckRepo, *fakeResultRepo, *fakeMentionRepo, *fakeCacheRepo, *fakeAnalyticsRepo) {
	checkRepo := newFakeCheckRepo()
	mentionRepo := &fakeMentionRepo{}
	resultRepo := &fakeResultRepo{mentions: mentionRepo}
	cacheRepo := newFakeCacheRepo()
	analyticsRepo := &fakeAnalyticsRepo{}
	repos := &RepositoryManager{
		MentionCheckRepo:   checkRepo,
		MentionResultRepo:  resultRepo,
		BrandMentionRepo:   mentionRepo,
		PromptTemplateRepo: newFakeTemplateRepo(),
		AnalyticsCacheRepo: cacheRepo,
		AnalyticsRepo:      analyticsRepo,
	}
	return repos, checkRepo, resultRepo, mentionRepo, cacheRepo, analyticsRepo
}
