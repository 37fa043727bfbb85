package telegram

import (
	"bytes"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	app "dermacheck/internal/application"
	"dermacheck/internal/domain/entity"
)

func TestFormatReport_Rejected(t *testing.T) {
	out := &app.AssessmentOutput{Assessment: &entity.RiskAssessment{
		Rejection: &entity.Rejection{Reason: entity.RejectBlankFrame},
	}}

	text := FormatReport(out)
	require.True(t, strings.HasPrefix(text, "⚠️"))
	require.Contains(t, text, "однородный")
}

func TestFormatIntakeError(t *testing.T) {
	intake := app.NewImageIntake(100, 0)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 7))))
	_, _, err := intake.Check(buf.Bytes())
	require.Contains(t, FormatIntakeError(err, intake.MinSide()), "100×100")

	_, _, err = intake.Check([]byte("text"))
	require.Contains(t, FormatIntakeError(err, intake.MinSide()), "JPEG или PNG")

	require.Contains(t, FormatIntakeError(intake.CheckSize(intake.MaxBytes()+1), intake.MinSide()), "слишком большой")
	require.Equal(t, msgProcessingError, FormatIntakeError(nil, 100))
}

func TestFormatReport_Accepted(t *testing.T) {
	out := &app.AssessmentOutput{
		Assessment: &entity.RiskAssessment{
			LesionID:            "back_002",
			Scores:              entity.Scores{Asymmetry: 2, Border: 2, Color: 2, Diameter: 1, Evolution: 2},
			Total:               9,
			RiskLevel:           entity.RiskHigh,
			Confidence:          entity.ConfidenceMedium,
			SegmentationMethod:  entity.MethodAdaptiveThreshold,
			DiameterMM:          5.4,
			CalibrationAnomaly:  true,
			InsufficientHistory: false,
		},
		Alerts: []entity.Alert{
			{Type: entity.AlertRapidGrowth, Severity: "high", Message: "Rapid growth detected: 35.0% in 12 days"},
		},
		Interpretation: &entity.Interpretation{Text: "Model explanation.", Provider: "fake"},
	}

	text := FormatReport(out)
	require.Contains(t, text, "🔴 ВЫСОКИЙ (9/11)")
	require.Contains(t, text, "D — диаметр: 1/2 (≈ 5.4 мм)")
	require.Contains(t, text, "E — изменения: 2/3\n")
	require.Contains(t, text, "adaptive_threshold")
	require.Contains(t, text, "Размер оценён неточно")
	require.Contains(t, text, "Очаг: back_002")
	require.Contains(t, text, "❗ Быстрый рост: Rapid growth detected")
	require.Contains(t, text, "в течение недели")
	require.Contains(t, text, "Model explanation.")
	require.True(t, strings.HasSuffix(text, msgDisclaimer))
}

func TestFormatReport_NoHistory(t *testing.T) {
	out := &app.AssessmentOutput{Assessment: &entity.RiskAssessment{
		RiskLevel:           entity.RiskLow,
		InsufficientHistory: true,
	}}

	text := FormatReport(out)
	require.Contains(t, text, "нет предыдущего снимка")
	require.NotContains(t, text, "Очаг:")
}

func TestFormatHistory(t *testing.T) {
	day := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	entries := []entity.TimelineEntry{
		{RecordedAt: day, Total: 3, RiskLevel: entity.RiskLow, DiameterMM: 4},
		{RecordedAt: day.AddDate(0, 0, 10), Total: 6, RiskLevel: entity.RiskMedium, DiameterMM: 5.6},
	}

	text := FormatHistory("arm_001", entries)
	lines := strings.Split(text, "\n")
	require.Equal(t, "📈 История очага arm_001:", lines[0])
	require.Equal(t, "02.04.2026 — 3/11, 🟢 НИЗКИЙ, 4.0 мм", lines[1])
	require.Equal(t, "12.04.2026 — 6/11, 🟡 СРЕДНИЙ, 5.6 мм", lines[2])
	require.Contains(t, text, "Размер увеличился")
	require.Contains(t, text, "Сумма баллов выросла")
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "абв", truncate("абв", 3))

	long := strings.Repeat("я", 10)
	cut := truncate(long, 5)
	require.Equal(t, 5, utf8.RuneCountInString(cut))
	require.True(t, strings.HasSuffix(cut, "…"))
}
