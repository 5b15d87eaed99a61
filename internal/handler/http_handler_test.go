package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/Krimson/gait-monitory/internal/analysis"
	"github.com/Krimson/gait-monitory/internal/repository"
	"github.com/Krimson/gait-monitory/internal/service"
	"github.com/Krimson/gait-monitory/pkg/models"
)

func newTestRouter() *mux.Router {
	analyzer := analysis.NewAnalyzer(analysis.DefaultConfig())
	svc := service.NewAnalysisService(analyzer,
		repository.NewRedisStub(time.Hour), repository.NewPostgresStub(), nil)

	router := mux.NewRouter()
	NewHTTPHandler(svc).RegisterRoutes(router)
	return router
}

func TestCreateAnalysis_InvalidBody(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("POST", "/api/analyses", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	var errResp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Error == "" {
		t.Error("Error response must carry a message")
	}
}

func TestCreateAnalysis_UnknownFormat(t *testing.T) {
	router := newTestRouter()

	body, _ := json.Marshal(models.AnalyzeRequest{
		KeypointFormat: "SKELETON_99",
		FPS:            30,
	})
	req := httptest.NewRequest("POST", "/api/analyses", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Ошибка валидации входа - единственный фатальный класс, клиентская
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for unknown keypoint format, got %d", rec.Code)
	}
}

func TestGetAnalysis_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/analyses/no-such-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rec.Code)
	}

	var errResp models.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Error != "Analysis not found" {
		t.Errorf("Unexpected error message: %q", errResp.Error)
	}
}

func TestDeleteAnalysis_RespondsWithStatus(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("DELETE", "/api/analyses/some-id", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// Удаление идемпотентно: отсутствующая запись - не ошибка
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var status models.StatusResponse
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode status response: %v", err)
	}
	if status.Status != "deleted" {
		t.Errorf("Expected status 'deleted', got %q", status.Status)
	}
	if status.ID != "some-id" {
		t.Errorf("Expected analysis_id 'some-id', got %q", status.ID)
	}
}

func TestHealth_WithStubs(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var health models.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("Expected status ok, got %q", health.Status)
	}
	for _, component := range []string{"cache", "database"} {
		if health.Components[component] != "ok" {
			t.Errorf("Expected component %s to be ok, got %q", component, health.Components[component])
		}
	}
	if health.Timestamp.IsZero() {
		t.Error("Health response must carry a timestamp")
	}
}
