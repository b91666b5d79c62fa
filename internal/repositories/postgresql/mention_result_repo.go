// internal/repositories/postgresql/mention_result_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/brandlens/mention-workflows/internal/database"
	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/brandlens/mention-workflows/internal/repositories"
	"github.com/google/uuid"
)

type mentionResultRepo struct {
	db *database.Client
}

func NewMentionResultRepo(db *database.Client) repositories.MentionResultRepository {
	return &mentionResultRepo{db: db}
}

// Create inserts the result row and its attached Mentions in one transaction,
// so a successful result can never land without its per-brand rows.
func (r *mentionResultRepo) Create(ctx context.Context, result *models.MentionResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	resultQuery := `
		INSERT INTO mention_results (
			result_id, check_id, model, response_text, processing_time_ms,
			input_tokens, output_tokens, total_cost, error_message, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	if _, err := tx.ExecContext(ctx, resultQuery,
		result.ResultID, result.CheckID, result.Model, result.ResponseText,
		result.ProcessingTimeMs, result.InputTokens, result.OutputTokens,
		result.TotalCost, result.ErrorMessage, result.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert mention result: %w", err)
	}

	mentionQuery := `
		INSERT INTO brand_mentions (
			mention_id, result_id, brand, mentioned, confidence_score,
			context_snippet, position, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	for _, m := range result.Mentions {
		if _, err := tx.ExecContext(ctx, mentionQuery,
			m.MentionID, m.ResultID, m.Brand, m.Mentioned, m.ConfidenceScore,
			m.ContextSnippet, m.Position, m.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to insert brand mention for %s: %w", m.Brand, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mention result: %w", err)
	}
	return nil
}

func (r *mentionResultRepo) GetByCheck(ctx context.Context, checkID uuid.UUID) ([]*models.MentionResult, error) {
	query := `
		SELECT result_id, check_id, model, response_text, processing_time_ms,
		       input_tokens, output_tokens, total_cost, error_message, created_at
		FROM mention_results
		WHERE check_id = $1
		ORDER BY created_at ASC`

	var results []*models.MentionResult
	if err := r.db.SelectContext(ctx, &results, query, checkID); err != nil {
		return nil, fmt.Errorf("failed to get results for check %s: %w", checkID, err)
	}
	return results, nil
}
