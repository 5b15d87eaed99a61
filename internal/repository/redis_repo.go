package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Krimson/gait-monitory/pkg/models"
)

// RedisRepository кеширует результаты анализа в Redis (Infrastructure Layer).
// Записи живут до истечения TTL; хеш содержимого запроса отображается
// на идентификатор анализа для дедупликации повторных запросов.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository создает репозиторий и клиент Redis
func NewRedisRepository(addr, password string, db int, ttl time.Duration) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

// ===== Ключи Redis =====

func analysisKey(id string) string {
	return fmt.Sprintf("analysis:%s", id)
}

func hashKey(contentHash string) string {
	return fmt.Sprintf("analysis:hash:%s", contentHash)
}

// SaveResult сохраняет запись анализа и отображение хеш->ID одним пайплайном
func (r *RedisRepository) SaveResult(ctx context.Context, record *models.AnalysisRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis record: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, analysisKey(record.ID), data, r.ttl)
	if record.ContentHash != "" {
		pipe.Set(ctx, hashKey(record.ContentHash), record.ID, r.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save analysis to Redis: %w", err)
	}
	return nil
}

// GetResult возвращает запись анализа. ErrNotFound, если ключ истек или не существовал.
func (r *RedisRepository) GetResult(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	data, err := r.client.Get(ctx, analysisKey(id)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get analysis from Redis: %w", err)
	}

	var record models.AnalysisRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis record: %w", err)
	}
	return &record, nil
}

// GetIDByHash возвращает идентификатор анализа по хешу содержимого запроса
func (r *RedisRepository) GetIDByHash(ctx context.Context, contentHash string) (string, error) {
	id, err := r.client.Get(ctx, hashKey(contentHash)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to resolve content hash: %w", err)
	}
	return id, nil
}

// DeleteResult удаляет запись и ее хеш-отображение
func (r *RedisRepository) DeleteResult(ctx context.Context, id string) error {
	record, err := r.GetResult(ctx, id)
	if err != nil {
		if err == ErrNotFound {
			return nil
		}
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, analysisKey(id))
	if record.ContentHash != "" {
		pipe.Del(ctx, hashKey(record.ContentHash))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete analysis from Redis: %w", err)
	}
	return nil
}

// Ping проверяет доступность Redis
func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close закрывает соединение с Redis
func (r *RedisRepository) Close() error {
	return r.client.Close()
}
