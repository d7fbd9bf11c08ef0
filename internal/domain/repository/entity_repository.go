package repository

import (
	"context"

	"github.com/parking-aggregator/internal/domain"
)

// EntityRepository - хранилище сущностей, идентифицируемых парой (source_id, original_uid).
// Реализуется для ParkingSite и ParkingSpot.
type EntityRepository[E any] interface {
	// FetchBySourceAndOriginalUID возвращает сущность или errors.ErrNotFound
	FetchBySourceAndOriginalUID(ctx context.Context, sourceID int64, originalUID string) (*E, error)

	// FetchIDsBySource возвращает id всех сущностей источника
	FetchIDsBySource(ctx context.Context, sourceID int64) ([]int64, error)

	// FetchByIDs возвращает сущности по списку id (отсутствующие пропускаются)
	FetchByIDs(ctx context.Context, ids []int64) ([]*E, error)

	// Save вставляет или обновляет сущность вместе с дочерними списками в одной транзакции.
	// После вставки у сущности и дочерних строк заполнены ID.
	Save(ctx context.Context, entity *E) error

	// Delete удаляет сущность. Ссылки duplicate_of на нее обнуляются.
	Delete(ctx context.Context, id int64) error

	// FetchLocations возвращает координаты сущностей для поиска дубликатов
	FetchLocations(ctx context.Context, filter domain.LocationFilter) ([]domain.Location, error)

	// SetDuplicateOf выставляет указатель duplicate_of (nil снимает его)
	SetDuplicateOf(ctx context.Context, id int64, duplicateOf *int64) error

	// ResetDuplicateOf обнуляет duplicate_of у сущностей, подходящих под фильтр
	ResetDuplicateOf(ctx context.Context, filter domain.LocationFilter) (int64, error)
}

// ParkingSiteRepository - хранилище парковочных объектов
type ParkingSiteRepository interface {
	EntityRepository[domain.ParkingSite]
}

// ParkingSpotRepository - хранилище парковочных мест
type ParkingSpotRepository interface {
	EntityRepository[domain.ParkingSpot]
}
