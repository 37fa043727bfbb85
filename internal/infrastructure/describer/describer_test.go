package describer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"dermacheck/config"
	"dermacheck/internal/domain/entity"
)

func sampleAssessment() *entity.RiskAssessment {
	return &entity.RiskAssessment{
		Scores:     entity.Scores{Asymmetry: 1, Border: 2, Color: 2, Diameter: 1, Evolution: 0},
		Total:      6,
		RiskLevel:  entity.RiskMedium,
		Confidence: entity.ConfidenceHigh,
		Descriptions: entity.Descriptions{
			Asymmetry: "Mildly asymmetric",
			Border:    "Irregular border",
			Color:     "3 colors: light-brown, dark-brown, black",
			Diameter:  "Estimated diameter 5.2 mm",
			Evolution: "No previous image to compare",
		},
		InsufficientHistory: true,
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleAssessment())

	require.Contains(t, prompt, "NOT a medical diagnosis")
	require.Contains(t, prompt, "Total risk score: 6/11 (MEDIUM RISK)")
	require.Contains(t, prompt, "2. Border (score 2/2): Irregular border")
	require.Contains(t, prompt, "5. Evolution (score 0/3): No previous image to compare")
	require.Contains(t, prompt, "within 2-4 weeks")
	require.Contains(t, prompt, "no earlier photo")
	require.NotContains(t, prompt, "could not be calibrated")
}

func TestWithDisclaimer(t *testing.T) {
	require.Equal(t, Disclaimer, withDisclaimer("  "))

	text := withDisclaimer("Looks fine.\n")
	require.True(t, strings.HasSuffix(text, Disclaimer))
	require.True(t, strings.HasPrefix(text, "Looks fine."))

	// повторно не добавляется
	require.Equal(t, text, withDisclaimer(text))
}

func TestTriageAction(t *testing.T) {
	require.Contains(t, TriageAction(entity.RiskHigh), "1 week")
	require.Equal(t, "Consult with a healthcare professional", TriageAction(""))
}

func TestOpenAIDescriber(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID: "chatcmpl-1",
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: "Moderate findings."},
			}},
		})
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = srv.URL + "/v1"
	d := NewOpenAIDescriberWithConfig(cfg, "", 300, 0.2, zap.NewNop())

	out, err := d.Describe(context.Background(), sampleAssessment())
	require.NoError(t, err)
	require.Equal(t, "openai/"+DefaultOpenAIModel, out.Provider)
	require.True(t, strings.HasPrefix(out.Text, "Moderate findings."))
	require.True(t, strings.HasSuffix(out.Text, Disclaimer))

	require.Equal(t, DefaultOpenAIModel, got.Model)
	require.Equal(t, 300, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	require.Contains(t, got.Messages[1].Content, "MEDIUM RISK")
}

func TestOpenAIDescriberRejectsRejectedAssessment(t *testing.T) {
	d := NewOpenAIDescriber("key", "", 100, 0, zap.NewNop())
	rejected := &entity.RiskAssessment{Rejection: &entity.Rejection{Reason: entity.RejectBlankFrame}}

	_, err := d.Describe(context.Background(), rejected)
	require.ErrorIs(t, err, ErrNothingToDescribe)
}

func TestFactory(t *testing.T) {
	cfg, err := config.FromViper(config.NewDefaultViper())
	require.NoError(t, err)

	d, closeFn, err := NewFactory(cfg, zap.NewNop()).CreateDescriber()
	require.NoError(t, err)
	require.Nil(t, d)
	require.NoError(t, closeFn())

	cfg.Describer = config.DescriberConfig{Provider: "openai", APIKey: "key", MaxTokens: 100}
	d, closeFn, err = NewFactory(cfg, zap.NewNop()).CreateDescriber()
	require.NoError(t, err)
	require.IsType(t, &OpenAIDescriber{}, d)
	require.NoError(t, closeFn())

	cfg.Describer.Provider = "claude"
	_, _, err = NewFactory(cfg, zap.NewNop()).CreateDescriber()
	require.Error(t, err)
}
