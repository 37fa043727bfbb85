package port

import (
	"context"

	"dermacheck/internal/domain/entity"
)

// TimelineRepository интерфейс хранилища истории очагов
type TimelineRepository interface {
	// Append добавляет запись в историю очага
	Append(ctx context.Context, entry *entity.TimelineEntry) error

	// Latest возвращает последнюю запись очага или ErrLesionNotFound
	Latest(ctx context.Context, lesionID string) (*entity.TimelineEntry, error)

	// List возвращает историю очага в порядке записи или ErrLesionNotFound
	List(ctx context.Context, lesionID string) ([]entity.TimelineEntry, error)

	// CountByLocation возвращает число очагов с данной локализацией
	CountByLocation(ctx context.Context, bodyLocation string) (int, error)
}
