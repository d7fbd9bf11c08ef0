package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return newCacheRepository(redis.Client(), redis.logger)
}

func newCacheRepository(client *redis.Client, logger *zap.Logger) *cacheRepository {
	return &cacheRepository{
		client: client,
		logger: logger,
	}
}

func importReportKey(sourceUID string, kind domain.ImportKind) string {
	return fmt.Sprintf("import:last:%s:%s", sourceUID, kind)
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}
	return nil
}

func (r *cacheRepository) GetImportReport(ctx context.Context, sourceUID string, kind domain.ImportKind) (*domain.ImportDoneEvent, error) {
	data, err := r.Get(ctx, importReportKey(sourceUID, kind))
	if err != nil || data == nil {
		return nil, err
	}

	var event domain.ImportDoneEvent
	if err := json.Unmarshal(data, &event); err != nil {
		r.logger.Error("Failed to unmarshal import report from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal import report: %w", err)
	}
	return &event, nil
}

func (r *cacheRepository) SetImportReport(ctx context.Context, event *domain.ImportDoneEvent, ttl time.Duration) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal import report: %w", err)
	}
	return r.Set(ctx, importReportKey(event.SourceUID, event.Report.Kind), data, ttl)
}
