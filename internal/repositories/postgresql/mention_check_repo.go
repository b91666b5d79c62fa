// internal/repositories/postgresql/mention_check_repo.go
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brandlens/mention-workflows/internal/database"
	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/brandlens/mention-workflows/internal/repositories"
	"github.com/google/uuid"
)

type mentionCheckRepo struct {
	db *database.Client
}

func NewMentionCheckRepo(db *database.Client) repositories.MentionCheckRepository {
	return &mentionCheckRepo{db: db}
}

// mentionCheckRow mirrors the mention_checks table; list columns travel as
// JSONB.
type mentionCheckRow struct {
	CheckID       uuid.UUID  `db:"check_id"`
	ProjectID     uuid.UUID  `db:"project_id"`
	UserID        uuid.UUID  `db:"user_id"`
	Prompt        string     `db:"prompt"`
	BrandsChecked []byte     `db:"brands_checked"`
	ModelsUsed    []byte     `db:"models_used"`
	Status        string     `db:"status"`
	TotalMentions int        `db:"total_mentions"`
	MentionRate   float64    `db:"mention_rate"`
	AvgConfidence float64    `db:"avg_confidence"`
	CreatedAt     time.Time  `db:"created_at"`
	CompletedAt   *time.Time `db:"completed_at"`
	Metadata      []byte     `db:"metadata"`
}

func (r *mentionCheckRow) toModel() (*models.MentionCheck, error) {
	check := &models.MentionCheck{
		CheckID:       r.CheckID,
		ProjectID:     r.ProjectID,
		UserID:        r.UserID,
		Prompt:        r.Prompt,
		Status:        models.CheckStatus(r.Status),
		TotalMentions: r.TotalMentions,
		MentionRate:   r.MentionRate,
		AvgConfidence: r.AvgConfidence,
		CreatedAt:     r.CreatedAt,
		CompletedAt:   r.CompletedAt,
	}

	if err := json.Unmarshal(r.BrandsChecked, &check.BrandsChecked); err != nil {
		return nil, fmt.Errorf("failed to decode brands_checked: %w", err)
	}
	if err := json.Unmarshal(r.ModelsUsed, &check.ModelsUsed); err != nil {
		return nil, fmt.Errorf("failed to decode models_used: %w", err)
	}
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &check.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}

	return check, nil
}

func (r *mentionCheckRepo) Create(ctx context.Context, check *models.MentionCheck) error {
	brands, err := json.Marshal(check.BrandsChecked)
	if err != nil {
		return fmt.Errorf("failed to encode brands_checked: %w", err)
	}
	modelList, err := json.Marshal(check.ModelsUsed)
	if err != nil {
		return fmt.Errorf("failed to encode models_used: %w", err)
	}
	metadata := []byte("{}")
	if check.Metadata != nil {
		if metadata, err = json.Marshal(check.Metadata); err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
	}

	query := `
		INSERT INTO mention_checks (
			check_id, project_id, user_id, prompt, brands_checked, models_used,
			status, total_mentions, mention_rate, avg_confidence, created_at, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.db.ExecContext(ctx, query,
		check.CheckID, check.ProjectID, check.UserID, check.Prompt, brands, modelList,
		check.Status, check.TotalMentions, check.MentionRate, check.AvgConfidence,
		check.CreatedAt, metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert mention check: %w", err)
	}
	return nil
}

func (r *mentionCheckRepo) GetByID(ctx context.Context, checkID uuid.UUID) (*models.MentionCheck, error) {
	query := `
		SELECT check_id, project_id, user_id, prompt, brands_checked, models_used,
		       status, total_mentions, mention_rate, avg_confidence, created_at,
		       completed_at, metadata
		FROM mention_checks
		WHERE check_id = $1`

	var row mentionCheckRow
	if err := r.db.GetContext(ctx, &row, query, checkID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get mention check %s: %w", checkID, err)
	}
	return row.toModel()
}

func (r *mentionCheckRepo) ListByProject(ctx context.Context, projectID uuid.UUID, filter repositories.CheckFilter) ([]*models.MentionCheck, int, error) {
	// Brand/model filters match against the JSONB arrays.
	where := `project_id = $1
		AND ($2 = '' OR brands_checked @> to_jsonb(ARRAY[$2]))
		AND ($3 = '' OR models_used @> to_jsonb(ARRAY[$3]))`

	countQuery := `SELECT COUNT(*) FROM mention_checks WHERE ` + where
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, projectID, filter.Brand, filter.Model); err != nil {
		return nil, 0, fmt.Errorf("failed to count mention checks: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT check_id, project_id, user_id, prompt, brands_checked, models_used,
		       status, total_mentions, mention_rate, avg_confidence, created_at,
		       completed_at, metadata
		FROM mention_checks
		WHERE ` + where + `
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`

	var rows []mentionCheckRow
	if err := r.db.SelectContext(ctx, &rows, query, projectID, filter.Brand, filter.Model, limit, filter.Offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list mention checks: %w", err)
	}

	checks := make([]*models.MentionCheck, 0, len(rows))
	for i := range rows {
		check, err := rows[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		checks = append(checks, check)
	}
	return checks, total, nil
}

func (r *mentionCheckRepo) MarkRunning(ctx context.Context, checkID uuid.UUID) error {
	query := `UPDATE mention_checks SET status = $2 WHERE check_id = $1 AND status = $3`
	res, err := r.db.ExecContext(ctx, query, checkID, models.CheckStatusRunning, models.CheckStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark check %s running: %w", checkID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("check %s is not pending", checkID)
	}
	return nil
}

func (r *mentionCheckRepo) Finalize(ctx context.Context, check *models.MentionCheck) error {
	query := `
		UPDATE mention_checks
		SET status = $2, total_mentions = $3, mention_rate = $4, avg_confidence = $5, completed_at = $6
		WHERE check_id = $1 AND status = $7`

	res, err := r.db.ExecContext(ctx, query,
		check.CheckID, check.Status, check.TotalMentions, check.MentionRate,
		check.AvgConfidence, check.CompletedAt, models.CheckStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to finalize check %s: %w", check.CheckID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("check %s is not running, refusing to finalize", check.CheckID)
	}
	return nil
}
