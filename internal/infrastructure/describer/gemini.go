package describer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

// DefaultGeminiModel используется, если модель не задана в конфигурации.
const DefaultGeminiModel = "gemini-1.5-flash"

// GeminiDescriber интерпретация оценки через Google Gemini.
type GeminiDescriber struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
	logger    *zap.Logger
}

var _ port.Describer = (*GeminiDescriber)(nil)

// NewGeminiDescriber создаёт клиента Gemini.
func NewGeminiDescriber(apiKey, modelName string, maxTokens int, temperature float32, logger *zap.Logger) (*GeminiDescriber, error) {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiDescriber{
		client:    client,
		model:     model,
		modelName: modelName,
		logger:    logger,
	}, nil
}

// Close закрывает клиента.
func (d *GeminiDescriber) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}

// Describe запрашивает у модели пояснение к оценке.
func (d *GeminiDescriber) Describe(ctx context.Context, a *entity.RiskAssessment) (*entity.Interpretation, error) {
	if a == nil || a.Rejected() {
		return nil, ErrNothingToDescribe
	}

	resp, err := d.model.GenerateContent(ctx, genai.Text(BuildPrompt(a)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("empty response from Gemini")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	if text.Len() == 0 {
		return nil, errors.New("empty response from Gemini")
	}

	d.logger.Debug("Gemini interpretation received",
		zap.String("model", d.modelName),
		zap.Int("length", text.Len()),
	)
	return &entity.Interpretation{Text: withDisclaimer(text.String()), Provider: "gemini/" + d.modelName}, nil
}
