package repository

import (
	"context"

	"github.com/parking-aggregator/internal/domain"
)

// HistoryRepository - append-only история изменений сущности
type HistoryRepository[H any] interface {
	Create(ctx context.Context, entry *H) error

	// ListByEntity возвращает записи от новых к старым
	ListByEntity(ctx context.Context, entityID int64, limit int) ([]H, error)
}

type ParkingSiteHistoryRepository interface {
	HistoryRepository[domain.ParkingSiteHistory]
}

type ParkingSpotHistoryRepository interface {
	HistoryRepository[domain.ParkingSpotHistory]
}
