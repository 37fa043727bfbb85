package describer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

// DefaultOpenAIModel используется, если модель не задана в конфигурации.
const DefaultOpenAIModel = "gpt-4o-mini"

const systemPrompt = "You are a dermatology education assistant. You explain screening results and never diagnose."

// OpenAIDescriber интерпретация оценки через OpenAI Chat Completions.
type OpenAIDescriber struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

var _ port.Describer = (*OpenAIDescriber)(nil)

// NewOpenAIDescriber создаёт клиента с адресом API по умолчанию.
func NewOpenAIDescriber(apiKey, modelName string, maxTokens int, temperature float32, logger *zap.Logger) *OpenAIDescriber {
	return NewOpenAIDescriberWithConfig(openai.DefaultConfig(apiKey), modelName, maxTokens, temperature, logger)
}

// NewOpenAIDescriberWithConfig создаёт клиента с произвольной конфигурацией (прокси, совместимые API).
func NewOpenAIDescriberWithConfig(cfg openai.ClientConfig, modelName string, maxTokens int, temperature float32, logger *zap.Logger) *OpenAIDescriber {
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	return &OpenAIDescriber{
		client:      openai.NewClientWithConfig(cfg),
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Describe запрашивает у модели пояснение к оценке.
func (d *OpenAIDescriber) Describe(ctx context.Context, a *entity.RiskAssessment) (*entity.Interpretation, error) {
	if a == nil || a.Rejected() {
		return nil, ErrNothingToDescribe
	}

	req := openai.ChatCompletionRequest{
		Model: d.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(a)},
		},
		MaxTokens:   d.maxTokens,
		Temperature: d.temperature,
	}

	resp, err := d.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, errors.New("empty response from OpenAI")
	}

	d.logger.Debug("OpenAI interpretation received",
		zap.String("model", d.modelName),
		zap.String("response_id", resp.ID),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return &entity.Interpretation{
		Text:     withDisclaimer(resp.Choices[0].Message.Content),
		Provider: "openai/" + d.modelName,
	}, nil
}
