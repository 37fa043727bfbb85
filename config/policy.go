package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"dermacheck/internal/infrastructure/vision"
)

// LoadPolicy читает пороги анализа из TOML поверх значений по умолчанию.
// Пустой путь — политика по умолчанию.
func LoadPolicy(path string) (vision.Policy, error) {
	if path == "" {
		return vision.DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return vision.Policy{}, fmt.Errorf("failed to read policy file '%s': %w", path, err)
	}
	return ParsePolicy(data)
}

// ParsePolicy разбирает TOML политики и проверяет результат.
func ParsePolicy(data []byte) (vision.Policy, error) {
	p := vision.DefaultPolicy()
	defaults := p.CalibrationTiers
	p.CalibrationTiers = nil

	if err := toml.Unmarshal(data, &p); err != nil {
		return vision.Policy{}, fmt.Errorf("failed to parse policy TOML: %w", err)
	}
	if len(p.CalibrationTiers) == 0 {
		p.CalibrationTiers = defaults
	}

	if err := p.Validate(); err != nil {
		return vision.Policy{}, err
	}
	return p, nil
}
