package senders

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Krimson/gait-monitory/pkg/models"
)

// HTTPSender отправляет запросы анализа на сервер по HTTP
type HTTPSender struct {
	client  *http.Client
	baseURL string
}

// NewHTTPSender создает HTTP отправитель. baseURL - адрес сервера без пути,
// например http://localhost:8080
func NewHTTPSender(baseURL string) *HTTPSender {
	return &HTTPSender{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
	}
}

// Send отправляет запрос анализа на POST /api/analyses
func (h *HTTPSender) Send(req *models.AnalyzeRequest) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("JSON marshaling failed: %w", err)
	}

	resp, err := h.client.Post(h.baseURL+"/api/analyses", "application/json", bytes.NewReader(jsonData))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrSendFailed, resp.StatusCode, body)
	}

	log.Printf("[INFO] [SENDER] Analysis request accepted: %d frames, response %d bytes",
		len(req.Frames), len(body))
	return nil
}

// Validate проверяет доступность сервера через health check
func (h *HTTPSender) Validate() error {
	resp, err := h.client.Get(h.baseURL + "/api/health")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusServiceUnavailable {
		return fmt.Errorf("%w: unexpected status %d", ErrConnectionFailed, resp.StatusCode)
	}
	return nil
}

// Close освобождает ресурсы клиента
func (h *HTTPSender) Close() error {
	h.client.CloseIdleConnections()
	return nil
}
