package models

import (
	"time"

	"github.com/Krimson/gait-monitory/internal/analysis"
	"github.com/Krimson/gait-monitory/internal/pose"
)

// AnalyzeRequest - входной запрос анализа походки
type AnalyzeRequest struct {
	KeypointFormat string       `json:"keypoint_format"`
	FPS            float64      `json:"fps"`
	Frames         []pose.Frame `json:"frames"`
}

// AnalysisRecord - сохраненный результат анализа с метаданными
type AnalysisRecord struct {
	ID          string           `json:"analysis_id"`
	ContentHash string           `json:"content_hash"`
	CreatedAt   time.Time        `json:"created_at"`
	FromCache   bool             `json:"from_cache"`
	Result      *analysis.Result `json:"result"`
}

// AnalysisListItem - краткая запись для списка анализов
type AnalysisListItem struct {
	ID         string    `json:"analysis_id"`
	CreatedAt  time.Time `json:"created_at"`
	Level      string    `json:"level"`
	Confidence string    `json:"confidence"`
	CycleCount int       `json:"cycle_count"`
}

// ErrorResponse - стандартный ответ с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse - стандартный ответ об успехе операции
type StatusResponse struct {
	Status string `json:"status"`
	ID     string `json:"analysis_id,omitempty"`
}

// HealthResponse - ответ health check
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
	Timestamp  time.Time         `json:"timestamp"`
}
