package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/Krimson/gait-monitory/pkg/models"
)

// PostgresStub - in-memory заглушка постоянного хранилища
type PostgresStub struct {
	analyses map[string]*models.AnalysisRecord
	mutex    sync.RWMutex
}

func NewPostgresStub() *PostgresStub {
	return &PostgresStub{
		analyses: make(map[string]*models.AnalysisRecord),
	}
}

func (p *PostgresStub) SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	recordCopy := *record
	p.analyses[record.ID] = &recordCopy
	return nil
}

func (p *PostgresStub) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	record, exists := p.analyses[id]
	if !exists {
		return nil, ErrNotFound
	}

	recordCopy := *record
	return &recordCopy, nil
}

func (p *PostgresStub) ListAnalyses(ctx context.Context, limit, offset int) ([]*models.AnalysisListItem, error) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	records := make([]*models.AnalysisRecord, 0, len(p.analyses))
	for _, record := range p.analyses {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	var items []*models.AnalysisListItem
	for i := offset; i < len(records) && len(items) < limit; i++ {
		record := records[i]
		items = append(items, &models.AnalysisListItem{
			ID:         record.ID,
			CreatedAt:  record.CreatedAt,
			Level:      string(record.Result.Summary.Level),
			Confidence: string(record.Result.Summary.Confidence),
			CycleCount: len(record.Result.GaitCycles),
		})
	}
	return items, nil
}

func (p *PostgresStub) DeleteAnalysis(ctx context.Context, id string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if _, exists := p.analyses[id]; !exists {
		return ErrNotFound
	}
	delete(p.analyses, id)
	return nil
}

func (p *PostgresStub) Ping(ctx context.Context) error {
	return nil
}

func (p *PostgresStub) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.analyses = make(map[string]*models.AnalysisRecord)
	return nil
}
