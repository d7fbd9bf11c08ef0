package repository

import (
	"context"
	"time"
)

// LockRepository - распределенная блокировка с TTL
type LockRepository interface {
	// Acquire пытается захватить блокировку. Возвращает токен владельца и false, если ключ занят.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)

	// Release снимает блокировку, только если она принадлежит token
	Release(ctx context.Context, key, token string) error
}
