package port

import (
	"dermacheck/internal/domain/entity"
)

// LesionAnalyzer интерфейс движка оценки ABCDE
type LesionAnalyzer interface {
	// Measure сегментирует очаг и вычисляет признаки, зависящие только от изображения
	Measure(imageData []byte) *entity.Measurement

	// Score сводит измерение и внешний сигнал изменения в итоговую оценку
	Score(m *entity.Measurement, change entity.ChangeSignal) *entity.RiskAssessment

	// HighlightLesion рисует контур очага поверх исходного снимка
	HighlightLesion(imageData []byte, m *entity.Measurement) ([]byte, error)
}
