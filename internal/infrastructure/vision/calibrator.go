package vision

import (
	"math"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

// TieredCalibrator переводит пиксели в миллиметры по ступеням длинной стороны кадра,
// поэтому портретный и альбомный снимок одной камеры попадают в одну ступень.
// Без эталона в кадре это оценка, поэтому неправдоподобные значения отбрасываются.
type TieredCalibrator struct {
	tiers          []CalibrationTier
	cuts           [2]float64
	maxPlausibleMM float64
	defaultMM      float64
}

var _ port.Calibrator = (*TieredCalibrator)(nil)

// NewTieredCalibrator создаёт калибратор из политики.
func NewTieredCalibrator(p Policy) *TieredCalibrator {
	return &TieredCalibrator{
		tiers:          p.sortedTiers(),
		cuts:           p.DiameterCutsMM,
		maxPlausibleMM: p.MaxPlausibleMM,
		defaultMM:      p.DefaultDiameterMM,
	}
}

// Calibrate возвращает диаметр в миллиметрах и балл D.
func (c *TieredCalibrator) Calibrate(diameterPx float64, imageWidth, imageHeight int) entity.Calibration {
	tier := c.tierFor(maxInt(imageWidth, imageHeight))
	raw := diameterPx / tier.PixelsPerMM

	cal := entity.Calibration{
		PixelsPerMM: tier.PixelsPerMM,
		Tier:        tier.Name,
		RawMM:       raw,
		DiameterMM:  raw,
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 || raw > c.maxPlausibleMM {
		cal.DiameterMM = c.defaultMM
		cal.Anomaly = true
	}
	cal.Score = tier2(cal.DiameterMM, c.cuts)
	return cal
}

// tierFor первая ступень, для которой сторона кадра не меньше MinWidth; иначе самая узкая.
func (c *TieredCalibrator) tierFor(side int) CalibrationTier {
	for _, t := range c.tiers {
		if side >= t.MinWidth {
			return t
		}
	}
	return c.tiers[len(c.tiers)-1]
}
