package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/Krimson/gait-monitory/internal/pose"
	"github.com/Krimson/gait-monitory/internal/repository"
	"github.com/Krimson/gait-monitory/internal/service"
	"github.com/Krimson/gait-monitory/pkg/models"
)

// HTTPHandler обрабатывает HTTP запросы анализа походки (Presentation Layer)
type HTTPHandler struct {
	service *service.AnalysisService
}

// NewHTTPHandler создает новый HTTP обработчик
func NewHTTPHandler(svc *service.AnalysisService) *HTTPHandler {
	return &HTTPHandler{
		service: svc,
	}
}

// RegisterRoutes регистрирует маршруты в роутере
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/analyses").Subrouter()

	api.HandleFunc("", h.CreateAnalysis).Methods("POST")
	api.HandleFunc("", h.ListAnalyses).Methods("GET")
	api.HandleFunc("/{id}", h.GetAnalysis).Methods("GET")
	api.HandleFunc("/{id}/save", h.SaveAnalysis).Methods("POST")
	api.HandleFunc("/{id}", h.DeleteAnalysis).Methods("DELETE")

	router.HandleFunc("/api/health", h.Health).Methods("GET")
}

// CreateAnalysis принимает последовательность позы и запускает анализ
// POST /api/analyses
func (h *HTTPHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	record, err := h.service.Analyze(r.Context(), &req)
	if err != nil {
		var vErr *pose.ValidationError
		if errors.As(err, &vErr) {
			respondError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		log.Printf("[ERROR] Failed to analyze sequence: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to analyze sequence")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// ListAnalyses возвращает список сохраненных анализов
// GET /api/analyses?limit=50&offset=0
func (h *HTTPHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := getQueryInt(r, "limit", 50)
	offset := getQueryInt(r, "offset", 0)

	items, err := h.service.ListAnalyses(r.Context(), limit, offset)
	if err != nil {
		log.Printf("[ERROR] Failed to list analyses: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"analyses": items,
		"limit":    limit,
		"offset":   offset,
		"count":    len(items),
	})
}

// GetAnalysis возвращает полный результат анализа
// GET /api/analyses/{id}
func (h *HTTPHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	analysisID := mux.Vars(r)["id"]

	record, err := h.service.GetAnalysis(r.Context(), analysisID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		log.Printf("[ERROR] Failed to get analysis %s: %v", analysisID, err)
		respondError(w, http.StatusInternalServerError, "Failed to get analysis")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

// SaveAnalysis сохраняет анализ в постоянное хранилище
// POST /api/analyses/{id}/save
func (h *HTTPHandler) SaveAnalysis(w http.ResponseWriter, r *http.Request) {
	analysisID := mux.Vars(r)["id"]

	if err := h.service.SaveAnalysis(r.Context(), analysisID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Analysis not found")
			return
		}
		log.Printf("[ERROR] Failed to save analysis %s: %v", analysisID, err)
		respondError(w, http.StatusInternalServerError, "Failed to save analysis")
		return
	}

	respondJSON(w, http.StatusOK, models.StatusResponse{
		Status: "saved",
		ID:     analysisID,
	})
}

// DeleteAnalysis удаляет анализ из кеша и хранилища
// DELETE /api/analyses/{id}
func (h *HTTPHandler) DeleteAnalysis(w http.ResponseWriter, r *http.Request) {
	analysisID := mux.Vars(r)["id"]

	if err := h.service.DeleteAnalysis(r.Context(), analysisID); err != nil {
		log.Printf("[ERROR] Failed to delete analysis %s: %v", analysisID, err)
		respondError(w, http.StatusInternalServerError, "Failed to delete analysis")
		return
	}

	respondJSON(w, http.StatusOK, models.StatusResponse{
		Status: "deleted",
		ID:     analysisID,
	})
}

// Health проверяет состояние сервиса и его зависимостей
// GET /api/health
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	components := h.service.Ping(r.Context())

	status := "ok"
	httpStatus := http.StatusOK
	for _, state := range components {
		if state != "ok" {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}
	}

	respondJSON(w, httpStatus, models.HealthResponse{
		Status:     status,
		Components: components,
		Timestamp:  time.Now().UTC(),
	})
}

// ===== Утилиты =====

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[ERROR] Failed to encode JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, models.ErrorResponse{Error: message})
}

func getQueryInt(r *http.Request, key string, defaultValue int) int {
	valueStr := r.URL.Query().Get(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
