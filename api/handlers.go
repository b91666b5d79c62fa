// api/handlers.go
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/brandlens/mention-workflows/internal/repositories"
	"github.com/brandlens/mention-workflows/services"
	"github.com/google/uuid"
)

// Handlers bundles the HTTP surface over the service layer.
type Handlers struct {
	detectionService services.DetectionService
	analyticsService services.AnalyticsService
	templateService  services.TemplateService
}

func NewHandlers(detectionService services.DetectionService, analyticsService services.AnalyticsService, templateService services.TemplateService) *Handlers {
	return &Handlers{
		detectionService: detectionService,
		analyticsService: analyticsService,
		templateService:  templateService,
	}
}

type createCheckRequest struct {
	ProjectID string            `json:"project_id"`
	UserID    string            `json:"user_id"`
	Prompt    string            `json:"prompt"`
	Brands    []string          `json:"brands"`
	Models    []string          `json:"models"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// CreateCheck accepts a detection request and returns the pending check. The
// run itself happens asynchronously; poll GetCheck for the outcome.
func (h *Handlers) CreateCheck(w http.ResponseWriter, r *http.Request) {
	var req createCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project_id")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	check, err := h.detectionService.StartDetection(r.Context(), services.StartDetectionParams{
		ProjectID: projectID,
		UserID:    userID,
		Prompt:    req.Prompt,
		Brands:    req.Brands,
		Models:    req.Models,
		Metadata:  req.Metadata,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, check)
}

// GetCheck returns a check with its per-model results and mention verdicts.
func (h *Handlers) GetCheck(w http.ResponseWriter, r *http.Request) {
	checkID, err := uuid.Parse(mux.Vars(r)["check_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid check_id")
		return
	}

	check, err := h.detectionService.GetCheck(r.Context(), checkID)
	if err != nil {
		logrus.Errorf("[API] GetCheck %s: %v", checkID, err)
		writeError(w, http.StatusInternalServerError, "failed to load check")
		return
	}
	if check == nil {
		writeError(w, http.StatusNotFound, "check not found")
		return
	}

	writeJSON(w, http.StatusOK, check)
}

// ListChecks returns a page of a project's check history. Supports brand,
// model, page and limit query parameters.
func (h *Handlers) ListChecks(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(mux.Vars(r)["project_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project_id")
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	history, err := h.detectionService.ListChecks(r.Context(), projectID, repositories.CheckFilter{
		Brand:  r.URL.Query().Get("brand"),
		Model:  r.URL.Query().Get("model"),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		logrus.Errorf("[API] ListChecks %s: %v", projectID, err)
		writeError(w, http.StatusInternalServerError, "failed to list checks")
		return
	}

	writeJSON(w, http.StatusOK, history)
}

type analyzeContentRequest struct {
	Text   string   `json:"text"`
	Brands []string `json:"brands"`
}

// AnalyzeContent runs detection over caller-supplied text, no providers
// involved.
func (h *Handlers) AnalyzeContent(w http.ResponseWriter, r *http.Request) {
	var req analyzeContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Brands) == 0 {
		writeError(w, http.StatusBadRequest, "at least one brand is required")
		return
	}

	mentions := h.detectionService.AnalyzeContent(req.Text, req.Brands)
	writeJSON(w, http.StatusOK, map[string]interface{}{"mentions": mentions})
}

// GetAnalytics serves the cached aggregate for one (project, brand,
// timeframe) scope.
func (h *Handlers) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(mux.Vars(r)["project_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project_id")
		return
	}
	brand := r.URL.Query().Get("brand")
	if brand == "" {
		writeError(w, http.StatusBadRequest, "brand is required")
		return
	}
	timeframe := r.URL.Query().Get("timeframe")
	if timeframe == "" {
		timeframe = "30d"
	}

	payload, err := h.analyticsService.GetAnalytics(r.Context(), projectID, brand, timeframe)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

type compareBrandsRequest struct {
	Brands    []string `json:"brands"`
	Timeframe string   `json:"timeframe"`
}

// CompareBrands ranks the requested brands over the window.
func (h *Handlers) CompareBrands(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(mux.Vars(r)["project_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project_id")
		return
	}

	var req compareBrandsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Timeframe == "" {
		req.Timeframe = "30d"
	}

	comparisons, err := h.analyticsService.CompareBrands(r.Context(), projectID, req.Brands, req.Timeframe)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"comparisons": comparisons})
}

type createTemplateRequest struct {
	UserID      string            `json:"user_id"`
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Template    string            `json:"template"`
	Variables   map[string]string `json:"variables,omitempty"`
	Description *string           `json:"description,omitempty"`
	IsPublic    bool              `json:"is_public"`
}

// CreateTemplate stores a reusable prompt template.
func (h *Handlers) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req createTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	template, err := h.templateService.SaveTemplate(r.Context(), services.SaveTemplateParams{
		UserID:      userID,
		Name:        req.Name,
		Category:    req.Category,
		Template:    req.Template,
		Variables:   req.Variables,
		Description: req.Description,
		IsPublic:    req.IsPublic,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, template)
}

// ListTemplates returns the caller's templates plus public ones.
func (h *Handlers) ListTemplates(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	templates, total, err := h.templateService.ListTemplates(r.Context(), userID,
		r.URL.Query().Get("category"), queryInt(r, "page", 1), queryInt(r, "limit", 20))
	if err != nil {
		logrus.Errorf("[API] ListTemplates: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list templates")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": templates,
		"total":     total,
	})
}

type renderTemplateRequest struct {
	Values map[string]string `json:"values"`
}

// RenderTemplate resolves a template's placeholders into a literal prompt.
func (h *Handlers) RenderTemplate(w http.ResponseWriter, r *http.Request) {
	templateID, err := uuid.Parse(mux.Vars(r)["template_id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid template_id")
		return
	}

	var req renderTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rendered, err := h.templateService.RenderTemplate(r.Context(), templateID, req.Values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"prompt": rendered})
}

// Health is the load balancer health check.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.Errorf("[API] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
