package senders

import (
	"errors"

	"github.com/Krimson/gait-monitory/pkg/models"
)

// Ошибки отправителей
var (
	ErrSendFailed       = errors.New("failed to send request")
	ErrConnectionFailed = errors.New("connection failed")
)

// RequestSender интерфейс для отправки запросов анализа
type RequestSender interface {
	// Send отправляет один запрос анализа
	Send(req *models.AnalyzeRequest) error

	// Validate проверяет готовность отправителя
	Validate() error

	// Close освобождает ресурсы
	Close() error
}
