package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parking-aggregator/internal/domain/repository"
)

type lockEntry struct {
	token     string
	expiresAt time.Time
}

// lockRepository - блокировка в пределах одного процесса (режим без Redis)
type lockRepository struct {
	mu    sync.Mutex
	locks map[string]lockEntry
	now   func() time.Time
}

func NewLockRepository() repository.LockRepository {
	return &lockRepository{
		locks: make(map[string]lockEntry),
		now:   time.Now,
	}
}

func (r *lockRepository) Acquire(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if entry, ok := r.locks[key]; ok && now.Before(entry.expiresAt) {
		return "", false, nil
	}

	token := uuid.NewString()
	r.locks[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

func (r *lockRepository) Release(_ context.Context, key, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry, ok := r.locks[key]; ok && entry.token == token {
		delete(r.locks, key)
	}
	return nil
}
