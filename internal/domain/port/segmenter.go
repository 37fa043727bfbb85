package port

import (
	"image"

	"dermacheck/internal/domain/entity"
)

// ForegroundSegmenter отделяет передний план от фона по подсказке-прямоугольнику
type ForegroundSegmenter interface {
	// Name возвращает имя реализации для логов
	Name() string

	// Segment возвращает маску переднего плана того же размера, что и img
	Segment(img *image.RGBA, hint image.Rectangle) (*entity.Mask, error)
}
