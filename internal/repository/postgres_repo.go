package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Krimson/gait-monitory/pkg/models"
)

// PostgresRepository хранит сохраненные анализы в PostgreSQL (Infrastructure Layer).
// Результат лежит как JSONB, краткие поля сводки вынесены в колонки
// для листинга без распаковки.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository создает репозиторий из строки подключения
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Настройки пула соединений
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &PostgresRepository{db: db}, nil
}

// SaveAnalysis сохраняет запись анализа, повторное сохранение обновляет ее
func (r *PostgresRepository) SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error {
	resultJSON, err := json.Marshal(record.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis result: %w", err)
	}

	query := `
		INSERT INTO analyses (id, content_hash, created_at, level, confidence, cycle_count, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			content_hash = EXCLUDED.content_hash,
			level = EXCLUDED.level,
			confidence = EXCLUDED.confidence,
			cycle_count = EXCLUDED.cycle_count,
			result = EXCLUDED.result
	`

	_, err = r.db.ExecContext(ctx, query,
		record.ID,
		record.ContentHash,
		record.CreatedAt,
		string(record.Result.Summary.Level),
		string(record.Result.Summary.Confidence),
		len(record.Result.GaitCycles),
		resultJSON,
	)

	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// GetAnalysis возвращает сохраненный анализ по идентификатору
func (r *PostgresRepository) GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	query := `
		SELECT id, content_hash, created_at, result
		FROM analyses
		WHERE id = $1
	`

	var record models.AnalysisRecord
	var resultJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.ContentHash,
		&record.CreatedAt,
		&resultJSON,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	if err := json.Unmarshal(resultJSON, &record.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis result: %w", err)
	}

	return &record, nil
}

// ListAnalyses возвращает краткие записи, новые первыми
func (r *PostgresRepository) ListAnalyses(ctx context.Context, limit, offset int) ([]*models.AnalysisListItem, error) {
	query := `
		SELECT id, created_at, level, confidence, cycle_count
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var items []*models.AnalysisListItem

	for rows.Next() {
		var item models.AnalysisListItem

		err := rows.Scan(
			&item.ID,
			&item.CreatedAt,
			&item.Level,
			&item.Confidence,
			&item.CycleCount,
		)

		if err != nil {
			continue // Пропускаем поврежденные записи
		}

		items = append(items, &item)
	}

	return items, nil
}

// DeleteAnalysis удаляет сохраненный анализ
func (r *PostgresRepository) DeleteAnalysis(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM analyses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete analysis: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping проверяет доступность базы
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close закрывает соединение с БД
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
