package main

import (
	"context"
	"flag"
	"log"
	"sync"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/brandlens/mention-workflows/internal/config"
	"github.com/brandlens/mention-workflows/internal/database"
	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/brandlens/mention-workflows/internal/providers"
	"github.com/brandlens/mention-workflows/services"
	"github.com/google/uuid"
)

// Standalone maintenance tool: re-runs checks stuck in pending (dispatch was
// lost) and optionally fails checks stuck in running (process died mid-run).

func main() {
	age := flag.Duration("age", 30*time.Minute, "only touch checks older than this")
	concurrency := flag.Int("concurrency", 2, "checks to re-run in parallel")
	dryRun := flag.Bool("dry-run", false, "report what would happen without writing")
	failRunning := flag.Bool("fail-running", false, "finalize stale running checks as failed")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("[stuck_check_fixer] no .env file loaded: %v", err)
	}

	cfg := config.Load()
	ctx := context.Background()

	dbClient, err := database.NewClient(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("[stuck_check_fixer] failed to connect to database: %v", err)
	}
	defer dbClient.Close()

	repos := services.NewRepositoryManager(dbClient)

	// Inline dispatcher: the fixer owns the run, no queue involved.
	var detectionService services.DetectionService
	detectionService = services.NewDetectionService(cfg, repos, providers.NewFactory(cfg),
		services.DispatcherFunc(func(ctx context.Context, checkID uuid.UUID) error {
			_, err := detectionService.RunCheck(ctx, checkID)
			return err
		}))

	cutoff := time.Now().Add(-*age)

	var stuckPending []uuid.UUID
	if err := dbClient.SelectContext(ctx, &stuckPending,
		`SELECT check_id FROM mention_checks WHERE status = 'pending' AND created_at < $1 ORDER BY created_at`,
		cutoff); err != nil {
		log.Fatalf("[stuck_check_fixer] failed to query stuck pending checks: %v", err)
	}

	var stuckRunning []uuid.UUID
	if err := dbClient.SelectContext(ctx, &stuckRunning,
		`SELECT check_id FROM mention_checks WHERE status = 'running' AND created_at < $1 ORDER BY created_at`,
		cutoff); err != nil {
		log.Fatalf("[stuck_check_fixer] failed to query stuck running checks: %v", err)
	}

	log.Printf("[stuck_check_fixer] stuck_pending=%d stuck_running=%d cutoff=%s dry_run=%t",
		len(stuckPending), len(stuckRunning), cutoff.Format(time.RFC3339), *dryRun)

	rerunStuckPending(ctx, detectionService, stuckPending, *concurrency, *dryRun)

	if *failRunning {
		failStuckRunning(ctx, repos, stuckRunning, *dryRun)
	} else if len(stuckRunning) > 0 {
		log.Printf("[stuck_check_fixer] leaving %d running checks untouched (use -fail-running to finalize them)", len(stuckRunning))
	}
}

type rerunResult struct {
	checkID uuid.UUID
	status  models.CheckStatus
	err     error
}

func rerunStuckPending(ctx context.Context, detectionService services.DetectionService, checkIDs []uuid.UUID, concurrency int, dryRun bool) {
	if len(checkIDs) == 0 {
		return
	}

	jobsCh := make(chan uuid.UUID)
	resultsCh := make(chan rerunResult, len(checkIDs))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for checkID := range jobsCh {
			if dryRun {
				resultsCh <- rerunResult{checkID: checkID, status: models.CheckStatusPending}
				continue
			}
			check, err := detectionService.RunCheck(ctx, checkID)
			if err != nil {
				resultsCh <- rerunResult{checkID: checkID, err: err}
				continue
			}
			resultsCh <- rerunResult{checkID: checkID, status: check.Status}
		}
	}

	if concurrency < 1 {
		concurrency = 1
	}
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go worker()
	}

	go func() {
		for _, checkID := range checkIDs {
			jobsCh <- checkID
		}
		close(jobsCh)
	}()

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	rerunCount := 0
	failedCount := 0
	for res := range resultsCh {
		if res.err != nil {
			failedCount++
			log.Printf("[stuck_check_fixer] ERROR re-running check=%s: %v", res.checkID, res.err)
			continue
		}
		rerunCount++
		if dryRun {
			log.Printf("[stuck_check_fixer] DRY RUN would re-run check=%s", res.checkID)
		} else {
			log.Printf("[stuck_check_fixer] re-ran check=%s status=%s", res.checkID, res.status)
		}
	}

	log.Printf("[stuck_check_fixer] pending done rerun=%d failed=%d", rerunCount, failedCount)
}

func failStuckRunning(ctx context.Context, repos *services.RepositoryManager, checkIDs []uuid.UUID, dryRun bool) {
	failedCount := 0
	for _, checkID := range checkIDs {
		if dryRun {
			log.Printf("[stuck_check_fixer] DRY RUN would fail check=%s", checkID)
			continue
		}

		check, err := repos.MentionCheckRepo.GetByID(ctx, checkID)
		if err != nil || check == nil {
			log.Printf("[stuck_check_fixer] ERROR loading check=%s: %v", checkID, err)
			continue
		}
		if check.Status != models.CheckStatusRunning {
			continue
		}

		now := time.Now()
		check.Status = models.CheckStatusFailed
		check.CompletedAt = &now
		if err := repos.MentionCheckRepo.Finalize(ctx, check); err != nil {
			log.Printf("[stuck_check_fixer] ERROR failing check=%s: %v", checkID, err)
			continue
		}
		failedCount++
		log.Printf("[stuck_check_fixer] finalized stale check=%s as failed", checkID)
	}

	log.Printf("[stuck_check_fixer] running done finalized_failed=%d", failedCount)
}
