package storage

import (
	"context"
	"sync"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

// MemoryTimelineRepository история очагов в памяти процесса
type MemoryTimelineRepository struct {
	mu      sync.RWMutex
	entries map[string][]entity.TimelineEntry
}

// NewMemoryTimelineRepository создаёт пустое хранилище
func NewMemoryTimelineRepository() *MemoryTimelineRepository {
	return &MemoryTimelineRepository{
		entries: make(map[string][]entity.TimelineEntry),
	}
}

// Append добавляет запись в конец истории очага
func (r *MemoryTimelineRepository) Append(ctx context.Context, entry *entity.TimelineEntry) error {
	r.mu.Lock()
	r.entries[entry.LesionID] = append(r.entries[entry.LesionID], *entry)
	r.mu.Unlock()
	return nil
}

// Latest возвращает последнюю запись очага
func (r *MemoryTimelineRepository) Latest(ctx context.Context, lesionID string) (*entity.TimelineEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.entries[lesionID]
	if len(list) == 0 {
		return nil, ErrLesionNotFound
	}
	last := list[len(list)-1]
	return &last, nil
}

// List возвращает копию истории очага
func (r *MemoryTimelineRepository) List(ctx context.Context, lesionID string) ([]entity.TimelineEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.entries[lesionID]
	if len(list) == 0 {
		return nil, ErrLesionNotFound
	}
	out := make([]entity.TimelineEntry, len(list))
	copy(out, list)
	return out, nil
}

// CountByLocation число разных очагов с данной локализацией
func (r *MemoryTimelineRepository) CountByLocation(ctx context.Context, bodyLocation string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, list := range r.entries {
		if len(list) > 0 && list[0].BodyLocation == bodyLocation {
			n++
		}
	}
	return n, nil
}

var _ port.TimelineRepository = (*MemoryTimelineRepository)(nil)
