package entity

// Method стратегия сегментации, давшая принятый результат.
type Method string

const (
	MethodGrabCut           Method = "grabcut"            // итеративное разделение по цветовым моделям
	MethodAdaptiveThreshold Method = "adaptive_threshold" // локальная бинаризация
	MethodCenterFallback    Method = "center_fallback"    // круг в центре кадра
)

// Confidence степень доверия к сегментации.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Rank возвращает порядок уверенности: high > medium > low.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// Downgrade понижает уверенность на одну ступень. Low остаётся low.
func (c Confidence) Downgrade() Confidence {
	switch c {
	case ConfidenceHigh:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ConfidenceFor возвращает уверенность, закреплённую за стратегией.
func ConfidenceFor(m Method) Confidence {
	switch m {
	case MethodGrabCut:
		return ConfidenceHigh
	case MethodAdaptiveThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// SegmentationResult принятая сегментация очага.
type SegmentationResult struct {
	Mask       *Mask      // маска в рабочем разрешении
	Contour    Contour    // внешняя граница маски
	Method     Method     // стратегия, прошедшая проверку первой
	Confidence Confidence // уверенность, соответствующая стратегии
	Scale      float64    // пикселей исходного кадра на пиксель рабочего
}
