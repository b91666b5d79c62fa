// internal/repositories/postgresql/brand_mention_repo.go
package postgresql

import (
	"context"
	"fmt"

	"github.com/brandlens/mention-workflows/internal/database"
	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/brandlens/mention-workflows/internal/repositories"
	"github.com/google/uuid"
)

// brandMentionRepo reads per-brand rows; writes happen alongside the owning
// result row in mentionResultRepo.Create.
type brandMentionRepo struct {
	db *database.Client
}

func NewBrandMentionRepo(db *database.Client) repositories.BrandMentionRepository {
	return &brandMentionRepo{db: db}
}

func (r *brandMentionRepo) GetByResult(ctx context.Context, resultID uuid.UUID) ([]*models.BrandMention, error) {
	query := `
		SELECT mention_id, result_id, brand, mentioned, confidence_score,
		       context_snippet, position, created_at
		FROM brand_mentions
		WHERE result_id = $1
		ORDER BY created_at ASC, brand ASC`

	var mentions []*models.BrandMention
	if err := r.db.SelectContext(ctx, &mentions, query, resultID); err != nil {
		return nil, fmt.Errorf("failed to get mentions for result %s: %w", resultID, err)
	}
	return mentions, nil
}
