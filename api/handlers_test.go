// api/handlers_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brandlens/mention-workflows/internal/models"
	"github.com/brandlens/mention-workflows/internal/repositories"
	"github.com/brandlens/mention-workflows/services"
	"github.com/google/uuid"
)

type stubDetectionService struct {
	startFunc func(ctx context.Context, params services.StartDetectionParams) (*models.MentionCheck, error)
	getFunc   func(ctx context.Context, checkID uuid.UUID) (*models.MentionCheck, error)
	listFunc  func(ctx context.Context, projectID uuid.UUID, filter repositories.CheckFilter) (*services.CheckHistory, error)
}

func (s *stubDetectionService) StartDetection(ctx context.Context, params services.StartDetectionParams) (*models.MentionCheck, error) {
	return s.startFunc(ctx, params)
}

func (s *stubDetectionService) RunCheck(ctx context.Context, checkID uuid.UUID) (*models.MentionCheck, error) {
	return nil, nil
}

func (s *stubDetectionService) GetCheck(ctx context.Context, checkID uuid.UUID) (*models.MentionCheck, error) {
	return s.getFunc(ctx, checkID)
}

func (s *stubDetectionService) ListChecks(ctx context.Context, projectID uuid.UUID, filter repositories.CheckFilter) (*services.CheckHistory, error) {
	return s.listFunc(ctx, projectID, filter)
}

func (s *stubDetectionService) AnalyzeContent(text string, brands []string) []services.Mention {
	out := make([]services.Mention, len(brands))
	for i, brand := range brands {
		out[i] = services.Mention{Brand: brand}
	}
	return out
}

type stubAnalyticsService struct {
	payload *services.AnalyticsPayload
	err     error
}

func (s *stubAnalyticsService) GetAnalytics(ctx context.Context, projectID uuid.UUID, brand, timeframe string) (*services.AnalyticsPayload, error) {
	return s.payload, s.err
}

func (s *stubAnalyticsService) CompareBrands(ctx context.Context, projectID uuid.UUID, brands []string, timeframe string) ([]services.BrandComparison, error) {
	return nil, s.err
}

func (s *stubAnalyticsService) PruneCache(ctx context.Context) (int, error) {
	return 0, nil
}

type stubTemplateService struct{}

func (s *stubTemplateService) SaveTemplate(ctx context.Context, params services.SaveTemplateParams) (*models.PromptTemplate, error) {
	return &models.PromptTemplate{TemplateID: uuid.New(), Name: params.Name}, nil
}

func (s *stubTemplateService) ListTemplates(ctx context.Context, userID uuid.UUID, category string, page, limit int) ([]*models.PromptTemplate, int, error) {
	return nil, 0, nil
}

func (s *stubTemplateService) RenderTemplate(ctx context.Context, templateID uuid.UUID, values map[string]string) (string, error) {
	return "rendered", nil
}

func newTestRouter(detection *stubDetectionService) http.Handler {
	handlers := NewHandlers(detection, &stubAnalyticsService{payload: &services.AnalyticsPayload{}}, &stubTemplateService{})
	return NewRouter(handlers, nil)
}

func TestCreateCheckAccepted(t *testing.T) {
	checkID := uuid.New()
	detection := &stubDetectionService{
		startFunc: func(ctx context.Context, params services.StartDetectionParams) (*models.MentionCheck, error) {
			if params.Prompt != "best note apps?" {
				t.Errorf("prompt = %q", params.Prompt)
			}
			return &models.MentionCheck{CheckID: checkID, Status: models.CheckStatusPending}, nil
		},
	}
	router := newTestRouter(detection)

	body, _ := json.Marshal(map[string]interface{}{
		"project_id": uuid.New().String(),
		"user_id":    uuid.New().String(),
		"prompt":     "best note apps?",
		"brands":     []string{"Notion"},
		"models":     []string{"gpt-4.1"},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checks", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202: %s", rec.Code, rec.Body.String())
	}

	var got models.MentionCheck
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.CheckID != checkID || got.Status != models.CheckStatusPending {
		t.Errorf("response = %+v, want pending check %s", got, checkID)
	}
}

func TestCreateCheckInvalidProjectID(t *testing.T) {
	router := newTestRouter(&stubDetectionService{})

	body, _ := json.Marshal(map[string]interface{}{
		"project_id": "not-a-uuid",
		"user_id":    uuid.New().String(),
		"prompt":     "hi",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checks", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetCheckNotFound(t *testing.T) {
	detection := &stubDetectionService{
		getFunc: func(ctx context.Context, checkID uuid.UUID) (*models.MentionCheck, error) {
			return nil, nil
		},
	}
	router := newTestRouter(detection)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checks/"+uuid.New().String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestListChecksPassesFilter(t *testing.T) {
	projectID := uuid.New()
	detection := &stubDetectionService{
		listFunc: func(ctx context.Context, gotProject uuid.UUID, filter repositories.CheckFilter) (*services.CheckHistory, error) {
			if gotProject != projectID {
				t.Errorf("projectID = %s, want %s", gotProject, projectID)
			}
			if filter.Brand != "Notion" || filter.Limit != 10 || filter.Offset != 10 {
				t.Errorf("filter = %+v", filter)
			}
			return &services.CheckHistory{Total: 0, Page: 2, Limit: 10}, nil
		},
	}
	router := newTestRouter(detection)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/projects/"+projectID.String()+"/checks?brand=Notion&page=2&limit=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeContentRequiresBrands(t *testing.T) {
	router := newTestRouter(&stubDetectionService{})

	body, _ := json.Marshal(map[string]interface{}{"text": "some text"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGetAnalyticsRequiresBrand(t *testing.T) {
	router := newTestRouter(&stubDetectionService{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/projects/"+uuid.New().String()+"/analytics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubDetectionService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
