package entity

// ChangeSignal изменение очага относительно предыдущего снимка, поставляется извне.
type ChangeSignal struct {
	HasHistory bool    // есть ли предыдущая запись для этого очага
	SizeChange float64 // относительное изменение диаметра, со знаком
	ColorShift float64 // смещение среднего цвета, 0..1
}

// NoHistory сигнал для очага без предыдущих записей.
func NoHistory() ChangeSignal {
	return ChangeSignal{}
}

// EvolutionResult балл эволюции и флаг недостатка истории.
type EvolutionResult struct {
	Score               int
	InsufficientHistory bool
}
