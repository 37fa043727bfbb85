package port

import "dermacheck/internal/domain/entity"

// Calibrator переводит пиксельный диаметр в миллиметры
type Calibrator interface {
	// Calibrate возвращает калибровку для диаметра в пикселях исходного кадра
	Calibrate(diameterPx float64, imageWidth, imageHeight int) entity.Calibration
}
