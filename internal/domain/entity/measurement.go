package entity

// ColorClass дерматоскопический цветовой класс.
type ColorClass string

const (
	ColorBlack      ColorClass = "black"
	ColorDarkBrown  ColorClass = "dark_brown"
	ColorLightBrown ColorClass = "light_brown"
	ColorRed        ColorClass = "red"
	ColorBlueGray   ColorClass = "blue_gray"
	ColorWhite      ColorClass = "white"
)

// LesionFeatures признаки, полученные только из сегментации.
type LesionFeatures struct {
	Asymmetry      int          // 0..2
	AsymmetryRatio float64      // доля несовпадающих пикселей при отражении
	Border         int          // 0..2
	Irregularity   float64      // компактность + дефицит выпуклости
	Color          int          // 0..2
	Colors         []ColorClass // классы, превысившие порог доли
	DiameterPx     float64      // максимальная ширина в пикселях исходного кадра
}

// Calibration перевод пиксельного диаметра в миллиметры.
type Calibration struct {
	PixelsPerMM float64
	Tier        string
	RawMM       float64 // до проверки на правдоподобие
	DiameterMM  float64 // итоговое значение
	Score       int     // 0..2
	Anomaly     bool    // сырое значение отброшено
}

// Measurement часть анализа, зависящая только от изображения.
type Measurement struct {
	Segmentation *SegmentationResult
	Features     LesionFeatures
	Calibration  Calibration
	MeanColor    [3]float64 // средний RGB внутри маски
	AreaFraction float64    // доля маски от кадра
	Rejection    *Rejection
}

// Rejected сообщает, что измерение закончилось отказом.
func (m *Measurement) Rejected() bool {
	return m == nil || m.Rejection != nil
}
