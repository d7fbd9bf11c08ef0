package converter

import (
	"fmt"
	"sort"
	"sync"
)

// Schedule - cron расписания импорта источника. Пустая строка - расписание по умолчанию.
type Schedule struct {
	Static   string
	Realtime string
}

// Registry - потокобезопасный реестр конвертеров по uid источника
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
	schedules  map[string]Schedule
}

func NewRegistry() *Registry {
	return &Registry{
		converters: make(map[string]Converter),
		schedules:  make(map[string]Schedule),
	}
}

// Register добавляет конвертер. UID должен быть уникальным.
func (r *Registry) Register(c Converter, schedule Schedule) error {
	uid := c.SourceInfo().UID
	if uid == "" {
		return fmt.Errorf("converter has empty source uid")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.converters[uid]; exists {
		return fmt.Errorf("converter for source %q already registered", uid)
	}
	r.converters[uid] = c
	r.schedules[uid] = schedule
	return nil
}

func (r *Registry) Get(uid string) (Converter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[uid]
	return c, ok
}

func (r *Registry) Schedule(uid string) Schedule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.schedules[uid]
}

// All возвращает конвертеры, отсортированные по uid
func (r *Registry) All() []Converter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uids := make([]string, 0, len(r.converters))
	for uid := range r.converters {
		uids = append(uids, uid)
	}
	sort.Strings(uids)

	result := make([]Converter, len(uids))
	for i, uid := range uids {
		result[i] = r.converters[uid]
	}
	return result
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.converters)
}
