// workflows/detection_processor.go
package workflows

import (
	"context"
	"fmt"

	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"

	"github.com/brandlens/mention-workflows/internal/config"
	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/brandlens/mention-workflows/services"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type DetectionProcessor struct {
	detectionService services.DetectionService
	client           inngestgo.Client
	cfg              *config.Config
}

func NewDetectionProcessor(detectionService services.DetectionService, cfg *config.Config) *DetectionProcessor {
	return &DetectionProcessor{
		detectionService: detectionService,
		cfg:              cfg,
	}
}

func (p *DetectionProcessor) SetClient(client inngestgo.Client) {
	p.client = client
}

// ProcessCheck consumes check.requested events and drives a pending check to
// a terminal state. RunCheck tolerates duplicate delivery, so Inngest's
// at-least-once semantics are safe here.
func (p *DetectionProcessor) ProcessCheck() inngestgo.ServableFunction {
	fn, err := inngestgo.CreateFunction(
		p.client,
		inngestgo.FunctionOpts{
			ID:      "process-mention-check",
			Name:    "Process Mention Check - Multi-Model Brand Detection",
			Retries: inngestgo.IntPtr(3),
		},
		inngestgo.EventTrigger("check.requested", nil),
		func(ctx context.Context, input inngestgo.Input[CheckRequestedEvent]) (any, error) {
			checkID, err := uuid.Parse(input.Event.Data.CheckID)
			if err != nil {
				return nil, fmt.Errorf("invalid check ID %q: %w", input.Event.Data.CheckID, err)
			}
			logrus.Infof("[ProcessCheck] Starting detection run for check %s", checkID)

			check, err := step.Run(ctx, "run-check", func(ctx context.Context) (*models.MentionCheck, error) {
				return p.detectionService.RunCheck(ctx, checkID)
			})
			if err != nil {
				return nil, fmt.Errorf("run-check step failed: %w", err)
			}

			if check != nil && check.Status == models.CheckStatusFailed {
				if alertErr := ReportCheckFailureToSlack(check.CheckID.String(), check.ProjectID.String(), "every provider call failed"); alertErr != nil {
					logrus.Warnf("[ProcessCheck] Slack alert not delivered: %v", alertErr)
				}
			}

			logrus.Infof("[ProcessCheck] Completed detection run for check %s", checkID)
			return map[string]interface{}{
				"check_id": checkID,
				"check":    check,
			}, nil
		},
	)
	if err != nil {
		panic(fmt.Errorf("failed to create ProcessCheck function: %w", err))
	}
	return fn
}

// Event types
type CheckRequestedEvent struct {
	CheckID     string `json:"check_id"`
	ProjectID   string `json:"project_id,omitempty"`
	TriggeredBy string `json:"triggered_by,omitempty"`
}

// NewEventDispatcher returns the production Dispatcher: StartDetection hands
// checks to the workflow queue by emitting check.requested.
func NewEventDispatcher(client inngestgo.Client) services.Dispatcher {
	return services.DispatcherFunc(func(ctx context.Context, checkID uuid.UUID) error {
		_, err := client.Send(ctx, inngestgo.Event{
			Name: "check.requested",
			Data: map[string]interface{}{
				"check_id":     checkID.String(),
				"triggered_by": "api",
			},
		})
		return err
	})
}
