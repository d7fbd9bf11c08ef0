package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript удаляет ключ, только если он принадлежит владельцу
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type lockRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewLockRepository(redis *Redis) repository.LockRepository {
	return newLockRepository(redis.Client(), redis.logger)
}

func newLockRepository(client *redis.Client, logger *zap.Logger) *lockRepository {
	return &lockRepository{
		client: client,
		logger: logger,
	}
}

func (r *lockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		r.logger.Error("Failed to acquire lock", zap.String("key", key), zap.Error(err))
		return "", false, fmt.Errorf("lock acquire error: %w", err)
	}
	if !ok {
		r.logger.Debug("Lock is held by another owner", zap.String("key", key))
		return "", false, nil
	}

	return token, true, nil
}

func (r *lockRepository) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil && err != redis.Nil {
		r.logger.Error("Failed to release lock", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("lock release error: %w", err)
	}
	return nil
}
