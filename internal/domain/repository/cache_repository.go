package repository

import (
	"context"
	"time"

	"github.com/parking-aggregator/internal/domain"
)

// CacheRepository - кеш последних отчетов импорта
type CacheRepository interface {
	// Get возвращает nil, nil при промахе
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error

	// GetImportReport возвращает последний отчет импорта источника или nil
	GetImportReport(ctx context.Context, sourceUID string, kind domain.ImportKind) (*domain.ImportDoneEvent, error)
	SetImportReport(ctx context.Context, event *domain.ImportDoneEvent, ttl time.Duration) error
}
