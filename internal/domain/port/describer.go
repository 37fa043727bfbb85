package port

import (
	"context"

	"dermacheck/internal/domain/entity"
)

// Describer интерфейс клинической интерпретации оценки
type Describer interface {
	// Describe генерирует понятное пациенту пояснение к оценке
	Describe(ctx context.Context, assessment *entity.RiskAssessment) (*entity.Interpretation, error)
}
