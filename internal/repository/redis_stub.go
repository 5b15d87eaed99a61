package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Krimson/gait-monitory/pkg/models"
)

// RedisStub - in-memory заглушка кеша для работы без Redis
type RedisStub struct {
	records map[string][]byte
	hashes  map[string]string
	mutex   sync.RWMutex
	ttl     time.Duration
}

func NewRedisStub(ttl time.Duration) *RedisStub {
	return &RedisStub{
		records: make(map[string][]byte),
		hashes:  make(map[string]string),
		ttl:     ttl,
	}
}

func (r *RedisStub) SaveResult(ctx context.Context, record *models.AnalysisRecord) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis record: %w", err)
	}

	r.records[record.ID] = data
	if record.ContentHash != "" {
		r.hashes[record.ContentHash] = record.ID
	}

	// Имитация TTL
	go func() {
		time.Sleep(r.ttl)
		r.mutex.Lock()
		delete(r.records, record.ID)
		delete(r.hashes, record.ContentHash)
		r.mutex.Unlock()
		log.Printf("[INFO] [STUB] Analysis %s expired after TTL", record.ID)
	}()

	return nil
}

func (r *RedisStub) GetResult(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	data, exists := r.records[id]
	if !exists {
		return nil, ErrNotFound
	}

	var record models.AnalysisRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis record: %w", err)
	}
	return &record, nil
}

func (r *RedisStub) GetIDByHash(ctx context.Context, contentHash string) (string, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	id, exists := r.hashes[contentHash]
	if !exists {
		return "", ErrNotFound
	}
	return id, nil
}

func (r *RedisStub) DeleteResult(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	data, exists := r.records[id]
	if !exists {
		return nil
	}

	var record models.AnalysisRecord
	if err := json.Unmarshal(data, &record); err == nil {
		delete(r.hashes, record.ContentHash)
	}
	delete(r.records, id)
	return nil
}

func (r *RedisStub) Ping(ctx context.Context) error {
	return nil
}

func (r *RedisStub) Close() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.records = make(map[string][]byte)
	r.hashes = make(map[string]string)
	return nil
}
