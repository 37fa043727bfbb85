package vision

import (
	"errors"
	"fmt"
	"math"

	"dermacheck/internal/domain/entity"
)

var (
	ErrEmptyCandidate   = errors.New("candidate mask is empty")
	ErrAreaTooSmall     = errors.New("candidate area below minimum")
	ErrAreaTooLarge     = errors.New("candidate area above maximum")
	ErrImplausibleShape = errors.New("candidate shape is implausible")
)

// contourValidator общая проверка кандидатов для всех стадий поиска очага.
type contourValidator struct {
	policy Policy
}

// minArea минимальная площадь очага в пикселях рабочего кадра.
func (v contourValidator) minArea(width, height int) int {
	n := int(math.Ceil(v.policy.MinAreaFraction * float64(width*height)))
	return maxInt(1, n)
}

// validate проверяет площадь и, если checkShape, дефицит выпуклости. Возвращает контур кандидата.
func (v contourValidator) validate(m *entity.Mask, checkShape bool) (entity.Contour, error) {
	area := m.Area()
	if area == 0 {
		return nil, ErrEmptyCandidate
	}
	if minPx := v.minArea(m.Width, m.Height); area < minPx {
		return nil, fmt.Errorf("%w: %d < %d px", ErrAreaTooSmall, area, minPx)
	}
	if f := m.Fraction(); f > v.policy.MaxAreaFraction {
		return nil, fmt.Errorf("%w: %.1f%% of frame", ErrAreaTooLarge, f*100)
	}

	contour := traceContour(m)
	if checkShape {
		if d := convexityDeficit(contour); d > v.policy.MaxConvexityDeficit {
			return nil, fmt.Errorf("%w: convexity deficit %.2f", ErrImplausibleShape, d)
		}
	}
	return contour, nil
}
