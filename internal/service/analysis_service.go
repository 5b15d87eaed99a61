package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Krimson/gait-monitory/internal/analysis"
	"github.com/Krimson/gait-monitory/internal/pose"
	"github.com/Krimson/gait-monitory/internal/repository"
	"github.com/Krimson/gait-monitory/pkg/models"
)

// CacheRepository - кеш результатов анализа (Redis или заглушка)
type CacheRepository interface {
	SaveResult(ctx context.Context, record *models.AnalysisRecord) error
	GetResult(ctx context.Context, id string) (*models.AnalysisRecord, error)
	GetIDByHash(ctx context.Context, contentHash string) (string, error)
	DeleteResult(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// DBRepository - постоянное хранилище сохраненных анализов
type DBRepository interface {
	SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error
	GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error)
	ListAnalyses(ctx context.Context, limit, offset int) ([]*models.AnalysisListItem, error)
	DeleteAnalysis(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close() error
}

// Notifier рассылает уведомления о завершенных анализах
type Notifier interface {
	BroadcastAnalysis(record *models.AnalysisRecord)
}

// AnalysisService - прикладной слой: принимает запросы анализа,
// прогоняет их через движок и управляет жизненным циклом результатов
type AnalysisService struct {
	analyzer  *analysis.Analyzer
	cacheRepo CacheRepository
	dbRepo    DBRepository
	notifier  Notifier
}

// NewAnalysisService создает сервис
func NewAnalysisService(analyzer *analysis.Analyzer, cacheRepo CacheRepository, dbRepo DBRepository, notifier Notifier) *AnalysisService {
	return &AnalysisService{
		analyzer:  analyzer,
		cacheRepo: cacheRepo,
		dbRepo:    dbRepo,
		notifier:  notifier,
	}
}

// Analyze выполняет анализ походки по запросу. Повторный запрос с тем же
// содержимым возвращает закешированный результат без пересчета.
// Ошибка возможна только на этапе валидации входа (*pose.ValidationError).
func (s *AnalysisService) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.AnalysisRecord, error) {
	seq, err := pose.NewSequence(req.Frames, req.FPS, pose.Format(req.KeypointFormat))
	if err != nil {
		return nil, err
	}

	contentHash := requestHash(req)

	if id, err := s.cacheRepo.GetIDByHash(ctx, contentHash); err == nil {
		if cached, err := s.cacheRepo.GetResult(ctx, id); err == nil {
			log.Printf("[INFO] [ANALYSIS] Cache hit for hash %s, analysis %s", contentHash[:12], id)
			cached.FromCache = true
			return cached, nil
		}
	}

	started := time.Now()
	result := s.analyzer.Analyze(seq)
	log.Printf("[INFO] [ANALYSIS] Analyzed %d frames in %v: level=%s confidence=%s cycles=%d flags=%v",
		seq.Len(), time.Since(started), result.Summary.Level, result.Summary.Confidence,
		len(result.GaitCycles), result.QualityFlags)

	record := &models.AnalysisRecord{
		ID:          uuid.New().String(),
		ContentHash: contentHash,
		CreatedAt:   time.Now().UTC(),
		Result:      result,
	}

	if err := s.cacheRepo.SaveResult(ctx, record); err != nil {
		// Кеш не критичен для ответа
		log.Printf("[WARN] [ANALYSIS] Failed to cache analysis %s: %v", record.ID, err)
	}

	if s.notifier != nil {
		s.notifier.BroadcastAnalysis(record)
	}

	return record, nil
}

// GetAnalysis ищет анализ сначала в кеше, затем в постоянном хранилище
func (s *AnalysisService) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	if record, err := s.cacheRepo.GetResult(ctx, id); err == nil {
		return record, nil
	}

	record, err := s.dbRepo.GetAnalysis(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}
	return record, nil
}

// SaveAnalysis переносит анализ из кеша в постоянное хранилище
func (s *AnalysisService) SaveAnalysis(ctx context.Context, id string) error {
	record, err := s.GetAnalysis(ctx, id)
	if err != nil {
		return err
	}

	if err := s.dbRepo.SaveAnalysis(ctx, record); err != nil {
		return fmt.Errorf("failed to persist analysis: %w", err)
	}

	log.Printf("[INFO] [ANALYSIS] Analysis %s saved to database", id)
	return nil
}

// ListAnalyses возвращает сохраненные анализы, новые первыми
func (s *AnalysisService) ListAnalyses(ctx context.Context, limit, offset int) ([]*models.AnalysisListItem, error) {
	items, err := s.dbRepo.ListAnalyses(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.AnalysisListItem{}
	}
	return items, nil
}

// DeleteAnalysis удаляет анализ из кеша и постоянного хранилища
func (s *AnalysisService) DeleteAnalysis(ctx context.Context, id string) error {
	if err := s.cacheRepo.DeleteResult(ctx, id); err != nil {
		log.Printf("[WARN] [ANALYSIS] Failed to delete analysis %s from cache: %v", id, err)
	}

	err := s.dbRepo.DeleteAnalysis(ctx, id)
	if err != nil && err != repository.ErrNotFound {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}
	return nil
}

// Ping проверяет зависимости сервиса для health check
func (s *AnalysisService) Ping(ctx context.Context) map[string]string {
	components := map[string]string{
		"cache":    "ok",
		"database": "ok",
	}
	if err := s.cacheRepo.Ping(ctx); err != nil {
		components["cache"] = err.Error()
	}
	if err := s.dbRepo.Ping(ctx); err != nil {
		components["database"] = err.Error()
	}
	return components
}

// requestHash - детерминированный хеш содержимого запроса для дедупликации
func requestHash(req *models.AnalyzeRequest) string {
	data, err := json.Marshal(req)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
