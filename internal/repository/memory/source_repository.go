package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
	"github.com/parking-aggregator/internal/pkg/errors"
)

type sourceRepository struct {
	mu      sync.RWMutex
	sources map[int64]*domain.Source
	nextID  int64
}

func NewSourceRepository() repository.SourceRepository {
	return &sourceRepository{sources: make(map[int64]*domain.Source)}
}

func (r *sourceRepository) GetByUID(_ context.Context, uid string) (*domain.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, source := range r.sources {
		if source.UID == uid {
			clone := *source
			return &clone, nil
		}
	}
	return nil, errors.ErrSourceNotFound
}

func (r *sourceRepository) GetByID(_ context.Context, id int64) (*domain.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	source, ok := r.sources[id]
	if !ok {
		return nil, errors.ErrSourceNotFound
	}
	clone := *source
	return &clone, nil
}

func (r *sourceRepository) List(_ context.Context) ([]*domain.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sources := make([]*domain.Source, 0, len(r.sources))
	for _, source := range r.sources {
		clone := *source
		sources = append(sources, &clone)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i].ID < sources[j].ID })
	return sources, nil
}

func (r *sourceRepository) Create(_ context.Context, source *domain.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.sources {
		if existing.UID == source.UID {
			return errors.ErrConflict
		}
	}

	r.nextID++
	now := time.Now()
	source.ID = r.nextID
	source.CreatedAt = now
	source.ModifiedAt = now

	clone := *source
	r.sources[source.ID] = &clone
	return nil
}

func (r *sourceRepository) Update(_ context.Context, source *domain.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sources[source.ID]; !ok {
		return errors.ErrSourceNotFound
	}
	source.ModifiedAt = time.Now()

	clone := *source
	r.sources[source.ID] = &clone
	return nil
}

type groupRepository struct {
	mu     sync.Mutex
	groups map[groupKey]*domain.ParkingSiteGroup
	nextID int64
}

type groupKey struct {
	sourceID    int64
	originalUID string
}

func NewGroupRepository() repository.GroupRepository {
	return &groupRepository{groups: make(map[groupKey]*domain.ParkingSiteGroup)}
}

func (r *groupRepository) GetOrCreate(_ context.Context, sourceID int64, originalUID string) (*domain.ParkingSiteGroup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := groupKey{sourceID: sourceID, originalUID: originalUID}
	if group, ok := r.groups[key]; ok {
		clone := *group
		return &clone, nil
	}

	r.nextID++
	now := time.Now()
	group := &domain.ParkingSiteGroup{
		ID:          r.nextID,
		SourceID:    sourceID,
		OriginalUID: originalUID,
		Name:        originalUID,
		CreatedAt:   now,
		ModifiedAt:  now,
	}
	r.groups[key] = group

	clone := *group
	return &clone, nil
}
