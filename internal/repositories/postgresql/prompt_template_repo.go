// internal/repositories/postgresql/prompt_template_repo.go
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

type promptTemplateRepo struct {
	db *database.Client
}

func NewPromptTemplateRepo(db *database.Client) repositories.PromptTemplateRepository {
	return &promptTemplateRepo{db: db}
}

type promptTemplateRow struct {
	TemplateID  uuid.UUID `db:"template_id"`
	UserID      uuid.UUID `db:"user_id"`
	Name        string    `db:"name"`
	Category    string    `db:"category"`
	Template    string    `db:"template"`
	Variables   []byte    `db:"variables"`
	Description *string   `db:"description"`
	UsageCount  int       `db:"usage_count"`
	IsPublic    bool      `db:"is_public"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r *promptTemplateRow) toModel() (*models.PromptTemplate, error) {
	template := &models.PromptTemplate{
		TemplateID:  r.TemplateID,
		UserID:      r.UserID,
		Name:        r.Name,
		Category:    r.Category,
		Template:    r.Template,
		Description: r.Description,
		UsageCount:  r.UsageCount,
		IsPublic:    r.IsPublic,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.Variables) > 0 {
		if err := json.Unmarshal(r.Variables, &template.Variables); err != nil {
			return nil, fmt.Errorf("failed to decode template variables: %w", err)
		}
	}
	return template, nil
}

func (r *promptTemplateRepo) Create(ctx context.Context, template *models.PromptTemplate) error {
	variables := []byte("{}")
	if template.Variables != nil {
		var err error
		if variables, err = json.Marshal(template.Variables); err != nil {
			return fmt.Errorf("failed to encode template variables: %w", err)
		}
	}

	query := `
		INSERT INTO prompt_templates (
			template_id, user_id, name, category, template, variables,
			description, usage_count, is_public, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.ExecContext(ctx, query,
		template.TemplateID, template.UserID, template.Name, template.Category,
		template.Template, variables, template.Description, template.UsageCount,
		template.IsPublic, template.CreatedAt, template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert prompt template: %w", err)
	}
	return nil
}

func (r *promptTemplateRepo) GetByID(ctx context.Context, templateID uuid.UUID) (*models.PromptTemplate, error) {
	query := `
		SELECT template_id, user_id, name, category, template, variables,
		       description, usage_count, is_public, created_at, updated_at
		FROM prompt_templates
		WHERE template_id = $1`

	var row promptTemplateRow
	if err := r.db.GetContext(ctx, &row, query, templateID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get prompt template %s: %w", templateID, err)
	}
	return row.toModel()
}

func (r *promptTemplateRepo) ListByUser(ctx context.Context, userID uuid.UUID, category string, limit, offset int) ([]*models.PromptTemplate, int, error) {
	where := `(user_id = $1 OR is_public) AND ($2 = '' OR category = $2)`

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM prompt_templates WHERE `+where, userID, category); err != nil {
		return nil, 0, fmt.Errorf("failed to count prompt templates: %w", err)
	}

	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT template_id, user_id, name, category, template, variables,
		       description, usage_count, is_public, created_at, updated_at
		FROM prompt_templates
		WHERE ` + where + `
		ORDER BY usage_count DESC, created_at DESC
		LIMIT $3 OFFSET $4`

	var rows []promptTemplateRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, category, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list prompt templates: %w", err)
	}

	templates := make([]*models.PromptTemplate, 0, len(rows))
	for i := range rows {
		template, err := rows[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		templates = append(templates, template)
	}
	return templates, total, nil
}

func (r *promptTemplateRepo) IncrementUsage(ctx context.Context, templateID uuid.UUID) error {
	query := `UPDATE prompt_templates SET usage_count = usage_count + 1, updated_at = NOW() WHERE template_id = $1`
	if _, err := r.db.ExecContext(ctx, query, templateID); err != nil {
		return fmt.Errorf("failed to increment usage for template %s: %w", templateID, err)
	}
	return nil
}
