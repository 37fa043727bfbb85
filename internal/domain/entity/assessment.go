package entity

import "time"

// RiskLevel уровень риска по сумме баллов ABCDE.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Максимальные баллы по каждому критерию.
const (
	MaxAsymmetry = 2
	MaxBorder    = 2
	MaxColor     = 2
	MaxDiameter  = 2
	MaxEvolution = 3
	MaxTotal     = MaxAsymmetry + MaxBorder + MaxColor + MaxDiameter + MaxEvolution
)

// RejectionReason код отказа от оценки.
type RejectionReason string

const (
	RejectDecode         RejectionReason = "decode_error"     // изображение не читается
	RejectEmptyImage     RejectionReason = "empty_image"      // нулевой размер
	RejectBlankFrame     RejectionReason = "blank_frame"      // однородный кадр без очага
	RejectNoValidContour RejectionReason = "no_valid_contour" // ни одна стадия не дала допустимый контур
)

// Rejection структурированный отказ вместо оценки.
type Rejection struct {
	Reason RejectionReason `json:"reason"`
	Detail string          `json:"detail,omitempty"`
}

// Scores баллы по пяти критериям.
type Scores struct {
	Asymmetry int `json:"asymmetry"`
	Border    int `json:"border"`
	Color     int `json:"color"`
	Diameter  int `json:"diameter"`
	Evolution int `json:"evolution"`
}

// Total возвращает сумму баллов.
func (s Scores) Total() int {
	return s.Asymmetry + s.Border + s.Color + s.Diameter + s.Evolution
}

// Descriptions короткие пояснения к каждому баллу.
type Descriptions struct {
	Asymmetry string `json:"asymmetry"`
	Border    string `json:"border"`
	Color     string `json:"color"`
	Diameter  string `json:"diameter"`
	Evolution string `json:"evolution"`
}

// RiskAssessment итог анализа одного снимка.
type RiskAssessment struct {
	ID                  string       `json:"id,omitempty"`
	LesionID            string       `json:"lesion_id,omitempty"`
	Scores              Scores       `json:"scores"`
	Total               int          `json:"total"`
	RiskLevel           RiskLevel    `json:"risk_level,omitempty"`
	Confidence          Confidence   `json:"confidence,omitempty"`
	SegmentationMethod  Method       `json:"segmentation_method,omitempty"`
	DiameterMM          float64      `json:"diameter_mm"`
	CalibrationAnomaly  bool         `json:"calibration_anomaly"`
	InsufficientHistory bool         `json:"insufficient_history"`
	Descriptions        Descriptions `json:"descriptions"`
	Rejection           *Rejection   `json:"rejection,omitempty"`
	AssessedAt          time.Time    `json:"assessed_at"`
}

// Rejected сообщает, что вместо оценки получен отказ.
func (a *RiskAssessment) Rejected() bool {
	return a != nil && a.Rejection != nil
}

// Interpretation текстовая интерпретация оценки от внешней модели.
type Interpretation struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}
