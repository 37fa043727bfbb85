package vision

import (
	"math"

	"dermacheck/internal/domain/entity"
)

// scoreEvolution переводит внешний сигнал изменения в балл 0..3.
// Без истории балл 0 и флаг недостатка данных; изменение не выдумывается.
func scoreEvolution(change entity.ChangeSignal, p Policy) entity.EvolutionResult {
	if !change.HasHistory {
		return entity.EvolutionResult{InsufficientHistory: true}
	}
	score := tier3(finiteOrZero(math.Abs(change.SizeChange)), p.SizeChangeCuts)
	if c := tier3(finiteOrZero(change.ColorShift), p.ColorShiftCuts); c > score {
		score = c
	}
	return entity.EvolutionResult{Score: score}
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
