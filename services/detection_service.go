// services/detection_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/brandlens/mention-workflows/internal/config"
	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/brandlens/mention-workflows/internal/providers"
	"github.com/brandlens/mention-workflows/internal/repositories"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type detectionService struct {
	cfg         *config.Config
	repos       *RepositoryManager
	factory     providers.Factory
	analyzer    MentionAnalyzer
	costService CostService
	dispatcher  Dispatcher
}

// NewDetectionService wires the orchestrator. The dispatcher decides how
// RunCheck is reached after StartDetection returns; production hands off to
// the workflow queue, tests run inline.
func NewDetectionService(cfg *config.Config, repos *RepositoryManager, factory providers.Factory, dispatcher Dispatcher) DetectionService {
	return &detectionService{
		cfg:         cfg,
		repos:       repos,
		factory:     factory,
		analyzer:    NewMentionAnalyzer(cfg.Detection),
		costService: NewCostService(),
		dispatcher:  dispatcher,
	}
}

// StartDetection validates the request, persists a pending check, and hands
// it to the dispatcher. It returns as soon as the check is accepted; callers
// poll GetCheck for completion.
func (s *detectionService) StartDetection(ctx context.Context, params StartDetectionParams) (*models.MentionCheck, error) {
	if strings.TrimSpace(params.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	brands := dedupeBrands(params.Brands)
	if len(brands) == 0 {
		return nil, fmt.Errorf("at least one brand is required")
	}

	modelsUsed := dedupeModels(params.Models)
	if len(modelsUsed) == 0 {
		return nil, fmt.Errorf("at least one model is required")
	}

	// Resolve every model up front so a misconfigured pair fails the request
	// before anything is persisted. No check row, no results.
	for _, model := range modelsUsed {
		if _, err := s.factory.Provider(model); err != nil {
			return nil, fmt.Errorf("model %s is not available: %w", model, err)
		}
	}

	check := &models.MentionCheck{
		CheckID:       uuid.New(),
		ProjectID:     params.ProjectID,
		UserID:        params.UserID,
		Prompt:        params.Prompt,
		BrandsChecked: brands,
		ModelsUsed:    modelsUsed,
		Status:        models.CheckStatusPending,
		Metadata:      params.Metadata,
		CreatedAt:     time.Now(),
	}

	if err := s.repos.MentionCheckRepo.Create(ctx, check); err != nil {
		return nil, fmt.Errorf("failed to create check: %w", err)
	}

	logrus.Infof("[DetectionService] Created check %s: %d brands, %d models", check.CheckID, len(brands), len(modelsUsed))

	if err := s.dispatcher.Dispatch(ctx, check.CheckID); err != nil {
		// The check stays pending; the workflow retries delivery, so this is
		// reported but not fatal to the caller.
		logrus.Warnf("[DetectionService] Failed to dispatch check %s: %v", check.CheckID, err)
	}

	return check, nil
}

// pairOutcome carries one (provider, model) call's result back from a worker.
type pairOutcome struct {
	result   *models.MentionResult
	mentions []Mention
}

// RunCheck executes a dispatched check: fan the prompt out across the check's
// models with bounded concurrency, detect brand mentions in each successful
// response, and finalize the check with aggregate stats. Safe against
// duplicate delivery: a second run observes the check is no longer pending
// and returns it untouched.
func (s *detectionService) RunCheck(ctx context.Context, checkID uuid.UUID) (*models.MentionCheck, error) {
	check, err := s.repos.MentionCheckRepo.GetByID(ctx, checkID)
	if err != nil {
		return nil, fmt.Errorf("failed to load check: %w", err)
	}
	if check == nil {
		return nil, fmt.Errorf("check %s not found", checkID)
	}
	if check.Status != models.CheckStatusPending {
		logrus.Warnf("[DetectionService] Check %s already %s, skipping run", checkID, check.Status)
		return check, nil
	}

	if err := s.repos.MentionCheckRepo.MarkRunning(ctx, checkID); err != nil {
		return nil, fmt.Errorf("failed to mark check running: %w", err)
	}
	check.Status = models.CheckStatusRunning

	logrus.Infof("[DetectionService] Running check %s across %d models", checkID, len(check.ModelsUsed))

	jobsCh := make(chan string)
	resultsCh := make(chan pairOutcome, len(check.ModelsUsed))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for model := range jobsCh {
			resultsCh <- s.runPair(ctx, check, model)
		}
	}

	concurrency := s.cfg.Detection.MaxConcurrentCalls
	if concurrency < 1 {
		concurrency = 1
	}
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go worker()
	}

	go func() {
		defer close(jobsCh)
		for _, model := range check.ModelsUsed {
			select {
			case jobsCh <- model:
			case <-ctx.Done():
				// Stop dispatching; in-flight pairs drain on their own.
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	// Results from drained in-flight pairs must still persist after the
	// caller cancels.
	persistCtx := context.WithoutCancel(ctx)

	var resultMentions [][]Mention
	for outcome := range resultsCh {
		result := outcome.result
		if !result.Failed() {
			rows := make([]*models.BrandMention, 0, len(outcome.mentions))
			for _, m := range outcome.mentions {
				rows = append(rows, &models.BrandMention{
					MentionID:       uuid.New(),
					ResultID:        result.ResultID,
					Brand:           m.Brand,
					Mentioned:       m.Mentioned,
					ConfidenceScore: m.Confidence,
					ContextSnippet:  m.ContextSnippet,
					Position:        m.Position,
					CreatedAt:       time.Now(),
				})
			}
			result.Mentions = rows
		}

		// Result and mention rows land together or not at all; a pair whose
		// persistence fails contributes nothing to the aggregates.
		if err := s.repos.MentionResultRepo.Create(persistCtx, result); err != nil {
			logrus.Warnf("[DetectionService] Failed to store result for model %s: %v", result.Model, err)
			continue
		}
		if !result.Failed() {
			resultMentions = append(resultMentions, outcome.mentions)
		}
	}

	summary := Summarize(resultMentions, len(check.BrandsChecked))
	check.TotalMentions = summary.TotalMentions
	check.MentionRate = summary.MentionRate
	check.AvgConfidence = summary.AvgConfidence
	check.Status = models.CheckStatusFailed
	if len(resultMentions) > 0 {
		check.Status = models.CheckStatusCompleted
	}
	now := time.Now()
	check.CompletedAt = &now

	if err := s.repos.MentionCheckRepo.Finalize(persistCtx, check); err != nil {
		return nil, fmt.Errorf("failed to finalize check: %w", err)
	}

	logrus.Infof("[DetectionService] Check %s %s: %d mentions, rate %.2f", checkID, check.Status, check.TotalMentions, check.MentionRate)
	return check, nil
}

// runPair calls one model with retries and turns the outcome into a result
// row. Every dispatched pair produces exactly one MentionResult, successful
// or not.
func (s *detectionService) runPair(ctx context.Context, check *models.MentionCheck, model string) pairOutcome {
	started := time.Now()

	resp, err := s.callWithRetry(ctx, check.Prompt, model)

	result := &models.MentionResult{
		ResultID:         uuid.New(),
		CheckID:          check.CheckID,
		Model:            model,
		ProcessingTimeMs: int(time.Since(started).Milliseconds()),
		CreatedAt:        time.Now(),
	}

	if err != nil {
		logrus.Warnf("[DetectionService] Model %s failed for check %s: %v", model, check.CheckID, err)
		msg := err.Error()
		result.ErrorMessage = &msg
		return pairOutcome{result: result}
	}

	result.ResponseText = resp.Content
	result.InputTokens = resp.Usage.PromptTokens
	result.OutputTokens = resp.Usage.CompletionTokens
	result.TotalCost = s.costService.CalculateCost(resp.Provider, model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	return pairOutcome{
		result:   result,
		mentions: s.analyzer.Detect(resp.Content, check.BrandsChecked),
	}
}

// callWithRetry runs one provider call with a per-attempt timeout, retrying
// retryable failures with linear backoff. Non-retryable kinds (auth, invalid
// response) fail immediately.
func (s *detectionService) callWithRetry(ctx context.Context, prompt, model string) (*providers.Response, error) {
	provider, err := s.factory.Provider(model)
	if err != nil {
		return nil, err
	}

	req := providers.Request{
		Model: model,
		Messages: []providers.Message{
			{Role: providers.RoleUser, Content: prompt},
		},
		Temperature: s.cfg.Detection.Temperature,
		MaxTokens:   s.cfg.Detection.MaxTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= s.cfg.Detection.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * s.cfg.Detection.RetryBackoff
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.cfg.Detection.CallTimeout)
		resp, err := provider.Call(callCtx, req)
		cancel()
		if err == nil {
			return resp, nil
		}

		lastErr = err
		var callErr *providers.CallError
		if !errors.As(err, &callErr) || !callErr.Retryable() {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// GetCheck loads a check with its results and their per-brand mentions.
func (s *detectionService) GetCheck(ctx context.Context, checkID uuid.UUID) (*models.MentionCheck, error) {
	check, err := s.repos.MentionCheckRepo.GetByID(ctx, checkID)
	if err != nil {
		return nil, fmt.Errorf("failed to load check: %w", err)
	}
	if check == nil {
		return nil, nil
	}

	results, err := s.repos.MentionResultRepo.GetByCheck(ctx, checkID)
	if err != nil {
		return nil, fmt.Errorf("failed to load results: %w", err)
	}
	for _, result := range results {
		if result.Failed() {
			continue
		}
		mentions, err := s.repos.BrandMentionRepo.GetByResult(ctx, result.ResultID)
		if err != nil {
			return nil, fmt.Errorf("failed to load mentions: %w", err)
		}
		result.Mentions = mentions
	}
	check.Results = results

	return check, nil
}

// ListChecks returns a page of a project's check history, newest first.
func (s *detectionService) ListChecks(ctx context.Context, projectID uuid.UUID, filter repositories.CheckFilter) (*CheckHistory, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	checks, total, err := s.repos.MentionCheckRepo.ListByProject(ctx, projectID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list checks: %w", err)
	}

	return &CheckHistory{
		Checks: checks,
		Total:  total,
		Page:   filter.Offset/filter.Limit + 1,
		Limit:  filter.Limit,
	}, nil
}

// AnalyzeContent runs detection over caller-supplied text without touching
// providers or storage. Used for pre-extracted content.
func (s *detectionService) AnalyzeContent(text string, brands []string) []Mention {
	return s.analyzer.Detect(text, dedupeBrands(brands))
}

// dedupeModels drops duplicate model identifiers preserving first-occurrence
// order. Unlike brands, model names are compared exactly.
func dedupeModels(modelNames []string) []string {
	seen := make(map[string]struct{}, len(modelNames))
	ordered := make([]string, 0, len(modelNames))
	for _, name := range modelNames {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		ordered = append(ordered, trimmed)
	}
	return ordered
}
