package describer

import (
	"fmt"
	"strings"

	"dermacheck/internal/domain/entity"
)

// Disclaimer добавляется к любому тексту интерпретации.
const Disclaimer = "This is an automated screening aid, not a medical diagnosis. " +
	"Please consult a dermatologist about any new, changing or concerning skin lesion."

var triage = map[entity.RiskLevel]string{
	entity.RiskLow:    "Continue monitoring at home, check monthly for changes",
	entity.RiskMedium: "Schedule a dermatologist consultation within 2-4 weeks",
	entity.RiskHigh:   "Seek professional evaluation within 1 week",
}

// TriageAction рекомендация по уровню риска.
func TriageAction(level entity.RiskLevel) string {
	if action, ok := triage[level]; ok {
		return action
	}
	return "Consult with a healthcare professional"
}

// BuildPrompt формирует запрос к модели по результатам оценки.
func BuildPrompt(a *entity.RiskAssessment) string {
	var b strings.Builder

	b.WriteString("You are a dermatology education assistant. Your role is to explain automated " +
		"skin lesion screening results in clear, compassionate and accurate language.\n\n")
	b.WriteString("IMPORTANT CONTEXT: this is a preliminary screening tool, NOT a medical diagnosis. " +
		"Never state or imply a diagnosis.\n\n")

	fmt.Fprintf(&b, "ABCDE SCREENING RESULTS:\nTotal risk score: %d/%d (%s RISK)\n", a.Total, entity.MaxTotal, a.RiskLevel)
	fmt.Fprintf(&b, "Segmentation confidence: %s\n\n", a.Confidence)

	b.WriteString("Detailed findings:\n")
	writeCriterion(&b, 1, "Asymmetry", a.Scores.Asymmetry, entity.MaxAsymmetry, a.Descriptions.Asymmetry)
	writeCriterion(&b, 2, "Border", a.Scores.Border, entity.MaxBorder, a.Descriptions.Border)
	writeCriterion(&b, 3, "Color", a.Scores.Color, entity.MaxColor, a.Descriptions.Color)
	writeCriterion(&b, 4, "Diameter", a.Scores.Diameter, entity.MaxDiameter, a.Descriptions.Diameter)
	writeCriterion(&b, 5, "Evolution", a.Scores.Evolution, entity.MaxEvolution, a.Descriptions.Evolution)

	if a.CalibrationAnomaly {
		b.WriteString("\nNote: the size estimate could not be calibrated reliably, a default diameter was used.\n")
	}
	if a.InsufficientHistory {
		b.WriteString("Note: there is no earlier photo of this lesion to compare against.\n")
	}

	b.WriteString("\nYOUR TASK: write a structured response with these sections:\n")
	b.WriteString("1. Plain language explanation (2-3 sentences).\n")
	b.WriteString("2. Risk interpretation (1-2 sentences).\n")
	fmt.Fprintf(&b, "3. Triage recommendation: %q.\n", TriageAction(a.RiskLevel))
	b.WriteString("4. Educational points (2-3 bullets): what to watch for going forward.\n")
	b.WriteString("5. Questions for the doctor (3-4 questions specific to these findings).\n\n")
	b.WriteString("End with a clear reminder that this is screening, not diagnosis.\n")

	return b.String()
}

func writeCriterion(b *strings.Builder, n int, name string, score, limit int, description string) {
	fmt.Fprintf(b, "%d. %s (score %d/%d): %s\n", n, name, score, limit, description)
}

// withDisclaimer обрезает пробелы и гарантирует наличие дисклеймера в конце.
func withDisclaimer(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasSuffix(text, Disclaimer) {
		return text
	}
	if text == "" {
		return Disclaimer
	}
	return text + "\n\n" + Disclaimer
}
