package senders

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Krimson/gait-monitory/pkg/models"
)

// FileSender пишет запросы анализа в файл в формате JSONL,
// по одному запросу на строку
type FileSender struct {
	writer   *bufio.Writer
	file     *os.File
	filePath string
	mu       sync.Mutex
}

// NewFileSender создает файловый отправитель, директория создается при необходимости
func NewFileSender(filePath string) (*FileSender, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return &FileSender{
		writer:   bufio.NewWriterSize(file, 4096),
		file:     file,
		filePath: filePath,
	}, nil
}

// Send записывает один запрос анализа строкой JSONL
func (f *FileSender) Send(req *models.AnalyzeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("JSON marshaling failed: %w", err)
	}

	if _, err := f.writer.Write(jsonData); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	if _, err := f.writer.WriteString("\n"); err != nil {
		return fmt.Errorf("newline write failed: %w", err)
	}

	// Флашим каждую запись для надежности
	if err := f.writer.Flush(); err != nil {
		return fmt.Errorf("flush failed: %w", err)
	}
	return nil
}

// Validate проверяет, что файл доступен для записи
func (f *FileSender) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return ErrConnectionFailed
	}
	return nil
}

// Close сбрасывает буфер и закрывает файл
func (f *FileSender) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.writer.Flush(); err != nil {
		return fmt.Errorf("final flush failed: %w", err)
	}
	return f.file.Close()
}
