// internal/models/models.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// CheckStatus is the lifecycle state of a mention check.
type CheckStatus string

const (
	CheckStatusPending   CheckStatus = "pending"
	CheckStatusRunning   CheckStatus = "running"
	CheckStatusCompleted CheckStatus = "completed"
	CheckStatusFailed    CheckStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s CheckStatus) Terminal() bool {
	return s == CheckStatusCompleted || s == CheckStatusFailed
}

// MentionCheck is one orchestrated detection request: a single prompt fanned
// out across one or more models. Owned exclusively by the detection service;
// immutable once terminal.
type MentionCheck struct {
	CheckID       uuid.UUID         `json:"check_id" db:"check_id"`
	ProjectID     uuid.UUID         `json:"project_id" db:"project_id"`
	UserID        uuid.UUID         `json:"user_id" db:"user_id"`
	Prompt        string            `json:"prompt" db:"prompt"`
	BrandsChecked []string          `json:"brands_checked" db:"-"`
	ModelsUsed    []string          `json:"models_used" db:"-"`
	Status        CheckStatus       `json:"status" db:"status"`
	TotalMentions int               `json:"total_mentions" db:"total_mentions"`
	MentionRate   float64           `json:"mention_rate" db:"mention_rate"`
	AvgConfidence float64           `json:"avg_confidence" db:"avg_confidence"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
	Metadata      map[string]string `json:"metadata,omitempty" db:"-"`

	// Results are loaded on demand; nil means not hydrated.
	Results []*MentionResult `json:"results,omitempty" db:"-"`
}

// MentionResult is the raw outcome of one (provider, model) call within a
// check. Exactly one row per dispatched pair; ErrorMessage and a non-empty
// ResponseText are mutually exclusive.
type MentionResult struct {
	ResultID         uuid.UUID `json:"result_id" db:"result_id"`
	CheckID          uuid.UUID `json:"check_id" db:"check_id"`
	Model            string    `json:"model" db:"model"`
	ResponseText     string    `json:"response_text" db:"response_text"`
	ProcessingTimeMs int       `json:"processing_time_ms" db:"processing_time_ms"`
	InputTokens      int       `json:"input_tokens" db:"input_tokens"`
	OutputTokens     int       `json:"output_tokens" db:"output_tokens"`
	TotalCost        float64   `json:"total_cost" db:"total_cost"`
	ErrorMessage     *string   `json:"error_message,omitempty" db:"error_message"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`

	Mentions []*BrandMention `json:"mentions,omitempty" db:"-"`
}

// Failed reports whether the underlying provider call errored.
func (r *MentionResult) Failed() bool {
	return r.ErrorMessage != nil
}

// BrandMention is the per-brand verdict derived from one result's text.
// Exactly one row per (result, brand) pair; never created for failed results.
type BrandMention struct {
	MentionID       uuid.UUID `json:"mention_id" db:"mention_id"`
	ResultID        uuid.UUID `json:"result_id" db:"result_id"`
	Brand           string    `json:"brand" db:"brand"`
	Mentioned       bool      `json:"mentioned" db:"mentioned"`
	ConfidenceScore float64   `json:"confidence_score" db:"confidence_score"`
	ContextSnippet  *string   `json:"context_snippet,omitempty" db:"context_snippet"`
	Position        *int      `json:"position,omitempty" db:"position"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// PromptTemplate is a reusable prompt with {variable} placeholders. Templates
// resolve to a literal prompt before orchestration; the detection engine never
// sees them.
type PromptTemplate struct {
	TemplateID  uuid.UUID         `json:"template_id" db:"template_id"`
	UserID      uuid.UUID         `json:"user_id" db:"user_id"`
	Name        string            `json:"name" db:"name"`
	Category    string            `json:"category" db:"category"`
	Template    string            `json:"template" db:"template"`
	Variables   map[string]string `json:"variables,omitempty" db:"-"`
	Description *string           `json:"description,omitempty" db:"description"`
	UsageCount  int               `json:"usage_count" db:"usage_count"`
	IsPublic    bool              `json:"is_public" db:"is_public"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}

// AnalyticsCacheEntry is a precomputed aggregate payload keyed by
// (project, brand, timeframe). A read past ExpiresAt is a miss.
type AnalyticsCacheEntry struct {
	EntryID   uuid.UUID  `json:"entry_id" db:"entry_id"`
	CacheKey  string     `json:"cache_key" db:"cache_key"`
	ProjectID *uuid.UUID `json:"project_id,omitempty" db:"project_id"`
	Brand     *string    `json:"brand,omitempty" db:"brand"`
	Timeframe string     `json:"timeframe" db:"timeframe"`
	Data      []byte     `json:"data" db:"data"`
	ExpiresAt time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// Expired reports whether the entry must be treated as a miss at now.
func (e *AnalyticsCacheEntry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}
