package describer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"dermacheck/config"
	"dermacheck/internal/domain/port"
)

// ErrNothingToDescribe возвращается для отказов: интерпретировать нечего.
var ErrNothingToDescribe = errors.New("assessment was rejected, nothing to describe")

// Factory создаёт интерпретатор по конфигурации
type Factory struct {
	cfg    config.DescriberConfig
	logger *zap.Logger
}

// NewFactory создаёт фабрику
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{cfg: cfg.Describer, logger: logger}
}

// CreateDescriber возвращает интерпретатор и функцию закрытия.
// Для провайдера none интерпретатор равен nil.
func (f *Factory) CreateDescriber() (port.Describer, func() error, error) {
	noop := func() error { return nil }

	switch f.cfg.Provider {
	case "none", "":
		return nil, noop, nil
	case "gemini":
		d, err := NewGeminiDescriber(f.cfg.APIKey, f.cfg.Model, f.cfg.MaxTokens, f.cfg.Temperature, f.logger)
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil
	case "openai":
		return NewOpenAIDescriber(f.cfg.APIKey, f.cfg.Model, f.cfg.MaxTokens, f.cfg.Temperature, f.logger), noop, nil
	default:
		return nil, nil, fmt.Errorf("unsupported describer provider: %s", f.cfg.Provider)
	}
}
