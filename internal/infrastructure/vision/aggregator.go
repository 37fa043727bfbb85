package vision

import (
	"fmt"
	"strings"

	"dermacheck/internal/domain/entity"
)

// classifyRisk относит сумму баллов к полосе риска.
func classifyRisk(total int, p Policy) entity.RiskLevel {
	switch {
	case total <= p.LowMax:
		return entity.RiskLow
	case total <= p.MediumMax:
		return entity.RiskMedium
	default:
		return entity.RiskHigh
	}
}

// aggregate сводит измерение и балл эволюции в итоговую оценку.
func aggregate(m *entity.Measurement, evo entity.EvolutionResult, p Policy) *entity.RiskAssessment {
	if m.Rejected() {
		rej := &entity.Rejection{Reason: entity.RejectNoValidContour}
		if m != nil {
			rej = m.Rejection
		}
		return reject(rej)
	}

	scores := entity.Scores{
		Asymmetry: m.Features.Asymmetry,
		Border:    m.Features.Border,
		Color:     m.Features.Color,
		Diameter:  m.Calibration.Score,
		Evolution: evo.Score,
	}
	total := scores.Total()

	confidence := m.Segmentation.Confidence
	if m.Calibration.Anomaly {
		confidence = confidence.Downgrade()
	}

	return &entity.RiskAssessment{
		Scores:              scores,
		Total:               total,
		RiskLevel:           classifyRisk(total, p),
		Confidence:          confidence,
		SegmentationMethod:  m.Segmentation.Method,
		DiameterMM:          m.Calibration.DiameterMM,
		CalibrationAnomaly:  m.Calibration.Anomaly,
		InsufficientHistory: evo.InsufficientHistory,
		Descriptions:        describe(m, scores, evo),
	}
}

// reject оценка-отказ: нулевые баллы, без уровня риска.
func reject(r *entity.Rejection) *entity.RiskAssessment {
	return &entity.RiskAssessment{Rejection: r}
}

func describe(m *entity.Measurement, s entity.Scores, evo entity.EvolutionResult) entity.Descriptions {
	d := entity.Descriptions{}

	switch s.Asymmetry {
	case 0:
		d.Asymmetry = "Symmetric shape"
	case 1:
		d.Asymmetry = "Mild asymmetry along one axis"
	default:
		d.Asymmetry = "Marked asymmetry"
	}
	d.Asymmetry += fmt.Sprintf(" (mismatch %.0f%%)", m.Features.AsymmetryRatio*100)

	switch s.Border {
	case 0:
		d.Border = "Smooth, regular border"
	case 1:
		d.Border = "Slightly irregular border"
	default:
		d.Border = "Irregular, notched border"
	}

	names := make([]string, 0, len(m.Features.Colors))
	for _, c := range m.Features.Colors {
		names = append(names, strings.ReplaceAll(string(c), "_", "-"))
	}
	switch len(names) {
	case 0:
		d.Color = "No dominant color detected"
	case 1:
		d.Color = "Uniform color: " + names[0]
	default:
		d.Color = fmt.Sprintf("%d colors: %s", len(names), strings.Join(names, ", "))
	}

	d.Diameter = fmt.Sprintf("Estimated diameter %.1f mm", m.Calibration.DiameterMM)
	if m.Calibration.Anomaly {
		d.Diameter = fmt.Sprintf("Measured size implausible (%.0f mm), assumed %.1f mm", m.Calibration.RawMM, m.Calibration.DiameterMM)
	}

	switch {
	case evo.InsufficientHistory:
		d.Evolution = "No previous image to compare"
	case s.Evolution == 0:
		d.Evolution = "No significant change since last image"
	case s.Evolution == 1:
		d.Evolution = "Minor change since last image"
	case s.Evolution == 2:
		d.Evolution = "Moderate change since last image"
	default:
		d.Evolution = "Significant change since last image"
	}
	return d
}
