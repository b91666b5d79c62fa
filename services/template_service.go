// services/template_service.go
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type templateService struct {
	repos *RepositoryManager
}

func NewTemplateService(repos *RepositoryManager) TemplateService {
	return &templateService{repos: repos}
}

// SaveTemplate persists a reusable prompt template after validating that every
// declared variable actually appears in the template body.
func (s *templateService) SaveTemplate(ctx context.Context, params SaveTemplateParams) (*models.PromptTemplate, error) {
	if strings.TrimSpace(params.Name) == "" {
		return nil, fmt.Errorf("template name is required")
	}
	if strings.TrimSpace(params.Template) == "" {
		return nil, fmt.Errorf("template body is required")
	}

	for name := range params.Variables {
		if !strings.Contains(params.Template, "{"+name+"}") {
			return nil, fmt.Errorf("declared variable %q does not appear in template", name)
		}
	}

	now := time.Now()
	template := &models.PromptTemplate{
		TemplateID:  uuid.New(),
		UserID:      params.UserID,
		Name:        params.Name,
		Category:    params.Category,
		Template:    params.Template,
		Variables:   params.Variables,
		Description: params.Description,
		IsPublic:    params.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repos.PromptTemplateRepo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	logrus.Infof("[TemplateService] Saved template %s (%s)", template.TemplateID, template.Name)
	return template, nil
}

// ListTemplates returns a page of the user's templates plus public ones,
// optionally narrowed by category.
func (s *templateService) ListTemplates(ctx context.Context, userID uuid.UUID, category string, page, limit int) ([]*models.PromptTemplate, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}

	templates, total, err := s.repos.PromptTemplateRepo.ListByUser(ctx, userID, category, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, total, nil
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z0-9_]+)\}`)

// RenderTemplate substitutes {variable} placeholders and bumps the template's
// usage counter. Every placeholder must be resolved; a leftover one fails the
// render rather than handing a broken prompt to a provider.
func (s *templateService) RenderTemplate(ctx context.Context, templateID uuid.UUID, values map[string]string) (string, error) {
	template, err := s.repos.PromptTemplateRepo.GetByID(ctx, templateID)
	if err != nil {
		return "", fmt.Errorf("failed to load template: %w", err)
	}
	if template == nil {
		return "", fmt.Errorf("template %s not found", templateID)
	}

	rendered := template.Template
	for name, value := range values {
		rendered = strings.ReplaceAll(rendered, "{"+name+"}", value)
	}

	if unresolved := placeholderRe.FindStringSubmatch(rendered); unresolved != nil {
		return "", fmt.Errorf("unresolved template variable %q", unresolved[1])
	}

	if err := s.repos.PromptTemplateRepo.IncrementUsage(ctx, templateID); err != nil {
		logrus.Warnf("[TemplateService] Failed to bump usage for %s: %v", templateID, err)
	}

	return rendered, nil
}
