package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/pkg/errors"
)

// accessor - явное отображение полей сущности, которые нужны хранилищу
type accessor[E any] struct {
	id          func(*E) int64
	setID       func(*E, int64)
	sourceID    func(*E) int64
	originalUID func(*E) string
	location    func(*E) domain.Location
	duplicateOf func(*E) **int64
	// assignChildIDs выдает id дочерним строкам без id
	assignChildIDs func(*E, func() int64)
	touch          func(e *E, now time.Time, created bool)
	clone          func(*E) *E
}

// entityStore - in-memory реализация repository.EntityRepository.
// Возвращает и хранит копии, поэтому вызывающий код не может изменить состояние без Save.
type entityStore[E any] struct {
	mu          sync.RWMutex
	items       map[int64]*E
	nextID      int64
	nextChildID int64
	acc         accessor[E]
	now         func() time.Time
}

func newEntityStore[E any](acc accessor[E]) *entityStore[E] {
	return &entityStore[E]{
		items: make(map[int64]*E),
		acc:   acc,
		now:   time.Now,
	}
}

func (s *entityStore[E]) FetchBySourceAndOriginalUID(_ context.Context, sourceID int64, originalUID string) (*E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if item := s.findByKey(sourceID, originalUID); item != nil {
		return s.acc.clone(item), nil
	}
	return nil, errors.ErrNotFound
}

func (s *entityStore[E]) FetchIDsBySource(_ context.Context, sourceID int64) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0)
	for id, item := range s.items {
		if s.acc.sourceID(item) == sourceID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (s *entityStore[E]) FetchByIDs(_ context.Context, ids []int64) ([]*E, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*E, 0, len(ids))
	for _, id := range ids {
		if item, ok := s.items[id]; ok {
			result = append(result, s.acc.clone(item))
		}
	}
	return result, nil
}

func (s *entityStore[E]) Save(_ context.Context, entity *E) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.acc.id(entity)
	if other := s.findByKey(s.acc.sourceID(entity), s.acc.originalUID(entity)); other != nil && s.acc.id(other) != id {
		return errors.ErrConflict
	}

	now := s.now()
	if id == 0 {
		s.nextID++
		s.acc.setID(entity, s.nextID)
		s.acc.touch(entity, now, true)
	} else {
		if _, ok := s.items[id]; !ok {
			return errors.ErrNotFound
		}
		s.acc.touch(entity, now, false)
	}

	s.acc.assignChildIDs(entity, func() int64 {
		s.nextChildID++
		return s.nextChildID
	})

	s.items[s.acc.id(entity)] = s.acc.clone(entity)
	return nil
}

func (s *entityStore[E]) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return errors.ErrNotFound
	}
	delete(s.items, id)

	// ON DELETE SET NULL
	for _, item := range s.items {
		ref := s.acc.duplicateOf(item)
		if *ref != nil && **ref == id {
			*ref = nil
		}
	}
	return nil
}

func (s *entityStore[E]) FetchLocations(_ context.Context, filter domain.LocationFilter) ([]domain.Location, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	locations := make([]domain.Location, 0, len(s.items))
	for _, item := range s.items {
		location := s.acc.location(item)
		if matchesFilter(filter, location) {
			locations = append(locations, location)
		}
	}
	sort.Slice(locations, func(i, j int) bool { return locations[i].ID < locations[j].ID })
	return locations, nil
}

func (s *entityStore[E]) SetDuplicateOf(_ context.Context, id int64, duplicateOf *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return errors.ErrNotFound
	}
	if duplicateOf != nil {
		if _, ok := s.items[*duplicateOf]; !ok {
			return errors.ErrNotFound
		}
		value := *duplicateOf
		duplicateOf = &value
	}

	*s.acc.duplicateOf(item) = duplicateOf
	return nil
}

func (s *entityStore[E]) ResetDuplicateOf(_ context.Context, filter domain.LocationFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var affected int64
	for _, item := range s.items {
		ref := s.acc.duplicateOf(item)
		if *ref == nil || !matchesFilter(filter, s.acc.location(item)) {
			continue
		}
		*ref = nil
		affected++
	}
	return affected, nil
}

func (s *entityStore[E]) findByKey(sourceID int64, originalUID string) *E {
	for _, item := range s.items {
		if s.acc.sourceID(item) == sourceID && s.acc.originalUID(item) == originalUID {
			return item
		}
	}
	return nil
}

func matchesFilter(filter domain.LocationFilter, location domain.Location) bool {
	if len(filter.SourceIDs) > 0 && !containsInt64(filter.SourceIDs, location.SourceID) {
		return false
	}
	if len(filter.Purposes) > 0 {
		for _, purpose := range filter.Purposes {
			if purpose == location.Purpose {
				return true
			}
		}
		return false
	}
	return true
}

func containsInt64(values []int64, value int64) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
