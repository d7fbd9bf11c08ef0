package memory

import (
	"context"
	"sync"
	"time"

	"github.com/parking-aggregator/internal/domain"
	"github.com/parking-aggregator/internal/domain/repository"
)

type historyStore[H any] struct {
	mu       sync.RWMutex
	entries  []H
	nextID   int64
	entityID func(*H) int64
	prepare  func(h *H, id int64, now time.Time)
}

func (s *historyStore[H]) Create(_ context.Context, entry *H) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	s.prepare(entry, s.nextID, time.Now())
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *historyStore[H]) ListByEntity(_ context.Context, entityID int64, limit int) ([]H, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]H, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entityID(&s.entries[i]) != entityID {
			continue
		}
		result = append(result, s.entries[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

func NewParkingSiteHistoryRepository() repository.ParkingSiteHistoryRepository {
	return &historyStore[domain.ParkingSiteHistory]{
		entityID: func(h *domain.ParkingSiteHistory) int64 { return h.ParkingSiteID },
		prepare: func(h *domain.ParkingSiteHistory, id int64, now time.Time) {
			h.ID = id
			h.CreatedAt = now
		},
	}
}

func NewParkingSpotHistoryRepository() repository.ParkingSpotHistoryRepository {
	return &historyStore[domain.ParkingSpotHistory]{
		entityID: func(h *domain.ParkingSpotHistory) int64 { return h.ParkingSpotID },
		prepare: func(h *domain.ParkingSpotHistory, id int64, now time.Time) {
			h.ID = id
			h.CreatedAt = now
		},
	}
}
