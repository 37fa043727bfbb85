package vision

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidPolicy возвращается при недопустимых порогах.
var ErrInvalidPolicy = errors.New("invalid analysis policy")

// HardMaxAreaFraction верхняя граница доли площади очага, которую нельзя ослабить конфигурацией.
const HardMaxAreaFraction = 0.4

// CalibrationTier ступень калибровки: кадры, чья длинная сторона не меньше MinWidth, получают PixelsPerMM.
type CalibrationTier struct {
	Name        string  `toml:"name"`
	MinWidth    int     `toml:"min_width"`
	PixelsPerMM float64 `toml:"pixels_per_mm"`
}

// Policy все пороги движка. Значения по умолчанию — клиническая политика проекта,
// их можно переопределить файлом политики.
type Policy struct {
	// Рабочее разрешение и проверка пустого кадра. Кадр пуст, только если и разброс
	// яркости, и разброс цветности после сглаживания ниже порогов: бледное пигментное
	// пятно на светлой коже почти не меняет яркость, но заметно меняет цветность.
	WorkMaxSide      int     `toml:"work_max_side"`
	BlankContrastMin float64 `toml:"blank_contrast_min"`
	BlankChromaMin   float64 `toml:"blank_chroma_min"`

	// GrabCut
	CenterWindow      float64 `toml:"center_window"`
	GrabCutIterations int     `toml:"grabcut_iterations"`
	GrabCutComponents int     `toml:"grabcut_components"`
	GrabCutGamma      float64 `toml:"grabcut_gamma"`
	SeedQuantile      float64 `toml:"seed_quantile"`
	Seed              int64   `toml:"seed"`

	// Адаптивный порог
	AdaptiveBlock  float64 `toml:"adaptive_block"`
	AdaptiveOffset float64 `toml:"adaptive_offset"`

	// Круговой запасной вариант
	CircleRadius float64 `toml:"circle_radius"`

	// Проверка контура
	MinAreaFraction     float64 `toml:"min_area_fraction"`
	MaxAreaFraction     float64 `toml:"max_area_fraction"`
	MaxConvexityDeficit float64 `toml:"max_convexity_deficit"`

	// Признаки
	AsymmetryCuts    [2]float64 `toml:"asymmetry_cuts"`
	BorderCuts       [2]float64 `toml:"border_cuts"`
	ColorMinFraction float64    `toml:"color_min_fraction"`

	// Диаметр
	CalibrationTiers  []CalibrationTier `toml:"calibration_tiers"`
	DiameterCutsMM    [2]float64        `toml:"diameter_cuts_mm"`
	MaxPlausibleMM    float64           `toml:"max_plausible_mm"`
	DefaultDiameterMM float64           `toml:"default_diameter_mm"`

	// Эволюция
	SizeChangeCuts [3]float64 `toml:"size_change_cuts"`
	ColorShiftCuts [3]float64 `toml:"color_shift_cuts"`

	// Полосы риска: total <= LowMax — LOW, <= MediumMax — MEDIUM, иначе HIGH
	LowMax    int `toml:"low_max"`
	MediumMax int `toml:"medium_max"`
}

// DefaultPolicy возвращает пороги по умолчанию.
func DefaultPolicy() Policy {
	return Policy{
		WorkMaxSide:      400,
		BlankContrastMin: 18,
		BlankChromaMin:   8,

		CenterWindow:      0.6,
		GrabCutIterations: 5,
		GrabCutComponents: 5,
		GrabCutGamma:      50,
		SeedQuantile:      0.005,
		Seed:              42,

		AdaptiveBlock:  0.125,
		AdaptiveOffset: 10,

		CircleRadius: 0.1,

		MinAreaFraction:     0.0002,
		MaxAreaFraction:     HardMaxAreaFraction,
		MaxConvexityDeficit: 0.6,

		AsymmetryCuts:    [2]float64{0.15, 0.30},
		BorderCuts:       [2]float64{0.25, 0.60},
		ColorMinFraction: 0.05,

		CalibrationTiers: []CalibrationTier{
			{Name: "ultra", MinWidth: 3000, PixelsPerMM: 30},
			{Name: "high", MinWidth: 2000, PixelsPerMM: 20},
			{Name: "medium", MinWidth: 1000, PixelsPerMM: 12},
			{Name: "low", MinWidth: 0, PixelsPerMM: 6},
		},
		DiameterCutsMM:    [2]float64{4, 6},
		MaxPlausibleMM:    50,
		DefaultDiameterMM: 6,

		SizeChangeCuts: [3]float64{0.05, 0.15, 0.25},
		ColorShiftCuts: [3]float64{0.10, 0.20, 0.30},

		LowMax:    2,
		MediumMax: 5,
	}
}

// WithCenterWindow возвращает копию политики с другой долей центрального окна.
func (p Policy) WithCenterWindow(fraction float64) Policy {
	p.CenterWindow = fraction
	return p
}

// WithRiskBands возвращает копию политики с другими полосами риска.
func (p Policy) WithRiskBands(lowMax, mediumMax int) Policy {
	p.LowMax = lowMax
	p.MediumMax = mediumMax
	return p
}

// WithCalibrationTiers возвращает копию политики с другими ступенями калибровки.
func (p Policy) WithCalibrationTiers(tiers ...CalibrationTier) Policy {
	p.CalibrationTiers = append([]CalibrationTier(nil), tiers...)
	return p
}

// Validate проверяет согласованность порогов.
func (p Policy) Validate() error {
	switch {
	case p.WorkMaxSide < 32:
		return fmt.Errorf("%w: work_max_side %d < 32", ErrInvalidPolicy, p.WorkMaxSide)
	case p.BlankContrastMin < 0 || p.BlankChromaMin < 0:
		return fmt.Errorf("%w: blank frame thresholds must be non-negative", ErrInvalidPolicy)
	case p.CenterWindow <= 0 || p.CenterWindow > 1:
		return fmt.Errorf("%w: center_window %.3f not in (0,1]", ErrInvalidPolicy, p.CenterWindow)
	case p.GrabCutIterations < 1:
		return fmt.Errorf("%w: grabcut_iterations must be positive", ErrInvalidPolicy)
	case p.GrabCutComponents < 1:
		return fmt.Errorf("%w: grabcut_components must be positive", ErrInvalidPolicy)
	case p.SeedQuantile <= 0 || p.SeedQuantile >= 0.5:
		return fmt.Errorf("%w: seed_quantile %.4f not in (0,0.5)", ErrInvalidPolicy, p.SeedQuantile)
	case p.AdaptiveBlock <= 0 || p.AdaptiveBlock > 1:
		return fmt.Errorf("%w: adaptive_block %.3f not in (0,1]", ErrInvalidPolicy, p.AdaptiveBlock)
	case p.CircleRadius <= 0 || p.CircleRadius >= 0.5:
		return fmt.Errorf("%w: circle_radius %.3f not in (0,0.5)", ErrInvalidPolicy, p.CircleRadius)
	case p.MinAreaFraction <= 0 || p.MinAreaFraction >= p.MaxAreaFraction:
		return fmt.Errorf("%w: min_area_fraction %.5f must be in (0, max_area_fraction)", ErrInvalidPolicy, p.MinAreaFraction)
	case p.MaxAreaFraction > HardMaxAreaFraction:
		return fmt.Errorf("%w: max_area_fraction %.3f exceeds %.2f", ErrInvalidPolicy, p.MaxAreaFraction, HardMaxAreaFraction)
	case p.MaxConvexityDeficit <= 0 || p.MaxConvexityDeficit > 1:
		return fmt.Errorf("%w: max_convexity_deficit %.3f not in (0,1]", ErrInvalidPolicy, p.MaxConvexityDeficit)
	case !ascending(p.AsymmetryCuts[:]) || !ascending(p.BorderCuts[:]) || !ascending(p.DiameterCutsMM[:]):
		return fmt.Errorf("%w: criterion cut points must be ascending", ErrInvalidPolicy)
	case !ascending(p.SizeChangeCuts[:]) || !ascending(p.ColorShiftCuts[:]):
		return fmt.Errorf("%w: evolution cut points must be ascending", ErrInvalidPolicy)
	case p.ColorMinFraction <= 0 || p.ColorMinFraction >= 1:
		return fmt.Errorf("%w: color_min_fraction %.3f not in (0,1)", ErrInvalidPolicy, p.ColorMinFraction)
	case len(p.CalibrationTiers) == 0:
		return fmt.Errorf("%w: no calibration tiers", ErrInvalidPolicy)
	case p.MaxPlausibleMM <= 0 || p.DefaultDiameterMM <= 0 || p.DefaultDiameterMM > p.MaxPlausibleMM:
		return fmt.Errorf("%w: default_diameter_mm must be in (0, max_plausible_mm]", ErrInvalidPolicy)
	case p.LowMax < 0 || p.MediumMax <= p.LowMax || p.MediumMax >= 11:
		return fmt.Errorf("%w: risk bands low_max=%d medium_max=%d", ErrInvalidPolicy, p.LowMax, p.MediumMax)
	}
	for _, t := range p.CalibrationTiers {
		if t.PixelsPerMM <= 0 || t.MinWidth < 0 {
			return fmt.Errorf("%w: calibration tier %q", ErrInvalidPolicy, t.Name)
		}
	}
	return nil
}

// sortedTiers возвращает ступени от самой широкой к самой узкой.
func (p Policy) sortedTiers() []CalibrationTier {
	tiers := append([]CalibrationTier(nil), p.CalibrationTiers...)
	sort.SliceStable(tiers, func(i, j int) bool { return tiers[i].MinWidth > tiers[j].MinWidth })
	return tiers
}

func ascending(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			return false
		}
	}
	return len(v) == 0 || v[0] >= 0
}
