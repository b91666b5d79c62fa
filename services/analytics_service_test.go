// services/analytics_service_test.go
package services

import (
	"context"
	"testing"
	"time"

	"github.com/brandlens/mention-workflows/internal/repositories"
	"github.com/google/uuid"
)

func newAnalyticsFixture() (*analyticsService, *fakeCacheRepo, *fakeAnalyticsRepo) {
	repos, _, _, _, cacheRepo, analyticsRepo := newFakeRepos()
	service := NewAnalyticsService(testConfig(), repos).(*analyticsService)
	return service, cacheRepo, analyticsRepo
}

func TestGetAnalyticsComputesAndCaches(t *testing.T) {
	service, cacheRepo, analyticsRepo := newAnalyticsFixture()
	analyticsRepo.projectStats = &repositories.ProjectStatsRow{
		TotalChecks:   10,
		TotalMentions: 6,
		MentionRate:   0.6,
		AvgConfidence: 0.9,
	}
	analyticsRepo.perModel = []repositories.ModelPerformanceRow{
		{Model: "gpt-4.1", Checks: 5, Mentions: 4, MentionRate: 0.8, AvgConfidence: 0.95},
	}
	projectID := uuid.New()

	payload, err := service.GetAnalytics(context.Background(), projectID, "Notion", "30d")
	if err != nil {
		t.Fatalf("GetAnalytics: %v", err)
	}
	if payload.TotalChecks != 10 || payload.TotalMentions != 6 {
		t.Errorf("payload stats = %d/%d, want 10/6", payload.TotalChecks, payload.TotalMentions)
	}
	if perf, ok := payload.ModelPerformance["gpt-4.1"]; !ok || perf.MentionRate != 0.8 {
		t.Errorf("model performance missing or wrong: %+v", payload.ModelPerformance)
	}

	// Second read inside the TTL must come from the cache.
	if _, err := service.GetAnalytics(context.Background(), projectID, "Notion", "30d"); err != nil {
		t.Fatalf("second GetAnalytics: %v", err)
	}
	if analyticsRepo.statCalls != 1 {
		t.Errorf("stat queries = %d, want 1 (second read served from cache)", analyticsRepo.statCalls)
	}
	if cacheRepo.writes != 1 {
		t.Errorf("cache writes = %d, want 1", cacheRepo.writes)
	}
}

func TestGetAnalyticsZeroTTLAlwaysMisses(t *testing.T) {
	service, _, analyticsRepo := newAnalyticsFixture()
	service.cfg.Detection.AnalyticsCacheTTL = 0
	projectID := uuid.New()

	if _, err := service.GetAnalytics(context.Background(), projectID, "Notion", "7d"); err != nil {
		t.Fatalf("GetAnalytics: %v", err)
	}

	// The entry expires the instant it is written, so the next read recomputes.
	service.now = func() time.Time { return time.Now().Add(time.Millisecond) }
	if _, err := service.GetAnalytics(context.Background(), projectID, "Notion", "7d"); err != nil {
		t.Fatalf("second GetAnalytics: %v", err)
	}
	if analyticsRepo.statCalls != 2 {
		t.Errorf("stat queries = %d, want 2 (zero TTL disables caching)", analyticsRepo.statCalls)
	}
}

func TestGetAnalyticsExpiredEntryRecomputes(t *testing.T) {
	service, cacheRepo, analyticsRepo := newAnalyticsFixture()
	projectID := uuid.New()

	if _, err := service.GetAnalytics(context.Background(), projectID, "Notion", "7d"); err != nil {
		t.Fatalf("GetAnalytics: %v", err)
	}

	// Jump past the TTL.
	service.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := service.GetAnalytics(context.Background(), projectID, "Notion", "7d"); err != nil {
		t.Fatalf("second GetAnalytics: %v", err)
	}
	if analyticsRepo.statCalls != 2 {
		t.Errorf("stat queries = %d, want 2 (expired entry is a miss)", analyticsRepo.statCalls)
	}
	if cacheRepo.writes != 2 {
		t.Errorf("cache writes = %d, want 2 (recompute refreshes the entry)", cacheRepo.writes)
	}
}

func TestGetAnalyticsScopesDoNotCollide(t *testing.T) {
	service, cacheRepo, _ := newAnalyticsFixture()
	projectID := uuid.New()

	if _, err := service.GetAnalytics(context.Background(), projectID, "Notion", "7d"); err != nil {
		t.Fatalf("GetAnalytics: %v", err)
	}
	if _, err := service.GetAnalytics(context.Background(), projectID, "Notion", "30d"); err != nil {
		t.Fatalf("GetAnalytics: %v", err)
	}
	if _, err := service.GetAnalytics(context.Background(), projectID, "Obsidian", "7d"); err != nil {
		t.Fatalf("GetAnalytics: %v", err)
	}

	if len(cacheRepo.entries) != 3 {
		t.Errorf("cache entries = %d, want 3 distinct scopes", len(cacheRepo.entries))
	}
}

func TestGetAnalyticsRejectsUnknownTimeframe(t *testing.T) {
	service, cacheRepo, _ := newAnalyticsFixture()

	if _, err := service.GetAnalytics(context.Background(), uuid.New(), "Notion", "1y"); err == nil {
		t.Fatal("expected error for unknown timeframe")
	}
	if cacheRepo.reads != 0 {
		t.Error("invalid timeframe must fail before touching the cache")
	}
}

func TestAnalyticsCacheKeyIsDeterministic(t *testing.T) {
	projectID := uuid.MustParse("3b241101-e2bb-4255-8caf-4136c566a962")

	first := analyticsCacheKey(projectID, "Notion", "30d")
	second := analyticsCacheKey(projectID, "Notion", "30d")
	if first != second {
		t.Errorf("key not deterministic: %q vs %q", first, second)
	}
	if first == analyticsCacheKey(projectID, "Notion", "7d") {
		t.Error("different timeframes must produce different keys")
	}
	if first == analyticsCacheKey(projectID, "Obsidian", "30d") {
		t.Error("different brands must produce different keys")
	}
}

func TestCompareBrands(t *testing.T) {
	service, _, analyticsRepo := newAnalyticsFixture()
	analyticsRepo.brandStats = []repositories.BrandStatsRow{
		{Brand: "Notion", TotalChecks: 10, TotalMentions: 8, MentionRate: 0.8, AvgConfidence: 0.9},
		{Brand: "Obsidian", TotalChecks: 10, TotalMentions: 3, MentionRate: 0.3, AvgConfidence: 0.86},
	}

	got, err := service.CompareBrands(context.Background(), uuid.New(), []string{"Notion", "Obsidian", "Logseq"}, "30d")
	if err != nil {
		t.Fatalf("CompareBrands: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("comparisons = %d, want every requested brand", len(got))
	}
	if got[0].Brand != "Notion" || got[0].MentionRate != 0.8 {
		t.Errorf("got[0] = %+v, want Notion at 0.8", got[0])
	}
	if got[2].Brand != "Logseq" || got[2].TotalChecks != 0 {
		t.Errorf("got[2] = %+v, want zeroed Logseq row", got[2])
	}
}

func TestCompareBrandsValidation(t *testing.T) {
	service, _, _ := newAnalyticsFixture()

	if _, err := service.CompareBrands(context.Background(), uuid.New(), nil, "30d"); err == nil {
		t.Error("expected error for empty brand list")
	}
	if _, err := service.CompareBrands(context.Background(), uuid.New(), []string{"Notion"}, "2w"); err == nil {
		t.Error("expected error for unknown timeframe")
	}
}
