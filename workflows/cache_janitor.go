// workflows/cache_janitor.go
package workflows

import (
	"context"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/mention-workflows/services"
	"github.com/sirupsen/logrus"
)

type CacheJanitor struct {
	analyticsService services.AnalyticsService
	client           inngestgo.Client
}

func NewCacheJanitor(analyticsService services.AnalyticsService) *CacheJanitor {
	return &CacheJanitor{analyticsService: analyticsService}
}

func (p *CacheJanitor) SetClient(client inngestgo.Client) {
	p.client = client
}

// PruneAnalyticsCache reclaims expired analytics cache rows every hour.
func (p *CacheJanitor) PruneAnalyticsCache() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:   "prune-analytics-cache",
			Name: "Prune Analytics Cache - Hourly Cleanup",
		},
		inngestgo.CronTrigger("0 * * * *"), // Every hour on the hour
		func(ctx context.Context, input inngestgo.Input[any]) (any, error) {
			deleted, err := step.Run(ctx, "delete-expired-entries", func(ctx context.Context) (int, error) {
				return p.analyticsService.PruneCache(ctx)
			})
			if err != nil {
				return nil, fmt.Errorf("delete-expired-entries step failed: %w", err)
			}

			logrus.Infof("[PruneAnalyticsCache] Deleted %d expired entries", deleted)
			return map[string]interface{}{
				"deleted": deleted,
			}, nil
		},
	)
	if err != nil {
		panic(fmt.Errorf("failed to create PruneAnalyticsCache function: %w", err))
	}
	return fn
}
