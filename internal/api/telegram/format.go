package telegram

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	app "dermacheck/internal/application"
	"dermacheck/internal/domain/entity"
)

// maxMessageRunes ограничение Telegram на длину текста с запасом.
const maxMessageRunes = 3800

const msgDisclaimer = "ℹ️ Это автоматический скрининг, а не диагноз. При любых изменениях родинки обратитесь к дерматологу."

var riskLabels = map[entity.RiskLevel]string{
	entity.RiskLow:    "🟢 НИЗКИЙ",
	entity.RiskMedium: "🟡 СРЕДНИЙ",
	entity.RiskHigh:   "🔴 ВЫСОКИЙ",
}

var rejectionTexts = map[entity.RejectionReason]string{
	entity.RejectDecode:         "Не удалось прочитать изображение. Отправьте фото в формате JPEG или PNG.",
	entity.RejectEmptyImage:     "Изображение пустое.",
	entity.RejectBlankFrame:     "На снимке не видно очага: кадр почти однородный.",
	entity.RejectNoValidContour: "Не удалось выделить очаг. Снимите родинку крупнее, по центру кадра, при ровном освещении.",
}

// FormatIntakeError текст ответа на снимок, не прошедший входную проверку.
func FormatIntakeError(err error, minSide int) string {
	switch {
	case errors.Is(err, app.ErrImageTooSmall):
		return fmt.Sprintf("⚠️ Слишком маленькое разрешение. Нужен снимок не меньше %d×%d пикселей.", minSide, minSide)
	case errors.Is(err, app.ErrImageTooLarge):
		return "⚠️ Файл слишком большой. Отправьте фото меньшего размера."
	case errors.Is(err, app.ErrUnsupportedFormat), errors.Is(err, app.ErrEmptyImage):
		return "⚠️ " + rejectionTexts[entity.RejectDecode]
	}
	return msgProcessingError
}

var alertTexts = map[entity.AlertType]string{
	entity.AlertSizeIncrease:  "Размер увеличился",
	entity.AlertScoreIncrease: "Сумма баллов выросла",
	entity.AlertRapidGrowth:   "Быстрый рост",
}

var triageTexts = map[entity.RiskLevel]string{
	entity.RiskLow:    "Наблюдайте дома, проверяйте раз в месяц.",
	entity.RiskMedium: "Запишитесь к дерматологу в течение 2–4 недель.",
	entity.RiskHigh:   "Покажитесь дерматологу в течение недели.",
}

// FormatReport текст ответа на снимок.
func FormatReport(out *app.AssessmentOutput) string {
	a := out.Assessment
	if a.Rejected() {
		text, ok := rejectionTexts[a.Rejection.Reason]
		if !ok {
			text = "Не удалось оценить снимок."
		}
		return "⚠️ " + text
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Риск: %s (%d/%d)\n\n", riskLabels[a.RiskLevel], a.Total, entity.MaxTotal)
	fmt.Fprintf(&b, "A — асимметрия: %d/%d\n", a.Scores.Asymmetry, entity.MaxAsymmetry)
	fmt.Fprintf(&b, "B — границы: %d/%d\n", a.Scores.Border, entity.MaxBorder)
	fmt.Fprintf(&b, "C — цвет: %d/%d\n", a.Scores.Color, entity.MaxColor)
	fmt.Fprintf(&b, "D — диаметр: %d/%d (≈ %.1f мм)\n", a.Scores.Diameter, entity.MaxDiameter, a.DiameterMM)
	if a.InsufficientHistory {
		fmt.Fprintf(&b, "E — изменения: %d/%d (нет предыдущего снимка)\n", a.Scores.Evolution, entity.MaxEvolution)
	} else {
		fmt.Fprintf(&b, "E — изменения: %d/%d\n", a.Scores.Evolution, entity.MaxEvolution)
	}

	fmt.Fprintf(&b, "\nМетод выделения: %s, уверенность: %s\n", a.SegmentationMethod, a.Confidence)
	if a.CalibrationAnomaly {
		b.WriteString("Размер оценён неточно, использовано типичное значение.\n")
	}
	if a.LesionID != "" {
		fmt.Fprintf(&b, "Очаг: %s\n", a.LesionID)
	}

	if len(out.Alerts) > 0 {
		b.WriteString("\n")
		for _, alert := range out.Alerts {
			b.WriteString(formatAlert(alert))
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\n👉 %s\n", triageTexts[a.RiskLevel])

	if out.Interpretation != nil {
		b.WriteString("\n")
		b.WriteString(out.Interpretation.Text)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(msgDisclaimer)
	return truncate(b.String(), maxMessageRunes)
}

func formatAlert(a entity.Alert) string {
	icon := "⚠️"
	if a.Severity == "high" {
		icon = "❗"
	}
	title, ok := alertTexts[a.Type]
	if !ok {
		title = string(a.Type)
	}
	return fmt.Sprintf("%s %s: %s", icon, title, a.Message)
}

// FormatHistory краткая история очага, по строке на запись.
func FormatHistory(lesionID string, entries []entity.TimelineEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📈 История очага %s:\n", lesionID)
	for _, e := range entries {
		fmt.Fprintf(&b, "%s — %d/%d, %s, %.1f мм\n",
			e.RecordedAt.Format("02.01.2006"), e.Total, entity.MaxTotal, riskLabels[e.RiskLevel], e.DiameterMM)
	}
	if n := len(entries); n >= 2 {
		for _, alert := range app.CheckAlerts(&entries[n-2], &entries[n-1]) {
			b.WriteString(formatAlert(alert))
			b.WriteString("\n")
		}
	}
	return truncate(strings.TrimRight(b.String(), "\n"), maxMessageRunes)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
