package entity

import "time"

// TimelineEntry запись истории очага.
type TimelineEntry struct {
	ID           string     `json:"id"`
	LesionID     string     `json:"lesion_id"`
	BodyLocation string     `json:"body_location"`
	RecordedAt   time.Time  `json:"recorded_at"`
	Scores       Scores     `json:"scores"`
	Total        int        `json:"total"`
	RiskLevel    RiskLevel  `json:"risk_level"`
	DiameterMM   float64    `json:"diameter_mm"`
	AreaFraction float64    `json:"area_fraction"`
	MeanColor    [3]float64 `json:"mean_color"`

	// CalibrationAnomaly — DiameterMM подставлен по умолчанию и не является измерением
	CalibrationAnomaly bool `json:"calibration_anomaly"`
}

// AlertType вид предупреждения о прогрессии.
type AlertType string

const (
	AlertSizeIncrease  AlertType = "size_increase"
	AlertScoreIncrease AlertType = "score_increase"
	AlertRapidGrowth   AlertType = "rapid_growth"
)

// Alert предупреждение, поднятое при сравнении записей.
type Alert struct {
	Type     AlertType `json:"type"`
	Severity string    `json:"severity"` // "medium" или "high"
	Message  string    `json:"message"`
}
