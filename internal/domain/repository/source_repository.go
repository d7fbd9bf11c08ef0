package repository

import (
	"context"

	"github.com/parking-aggregator/internal/domain"
)

// SourceRepository - хранилище источников
type SourceRepository interface {
	GetByUID(ctx context.Context, uid string) (*domain.Source, error)
	GetByID(ctx context.Context, id int64) (*domain.Source, error)
	List(ctx context.Context) ([]*domain.Source, error)
	Create(ctx context.Context, source *domain.Source) error
	Update(ctx context.Context, source *domain.Source) error
}

// GroupRepository - хранилище групп парковочных объектов
type GroupRepository interface {
	// GetOrCreate находит группу по (source_id, original_uid) или создает новую
	GetOrCreate(ctx context.Context, sourceID int64, originalUID string) (*domain.ParkingSiteGroup, error)
}
