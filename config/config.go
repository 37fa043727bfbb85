package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// StorageConfig настройки хранилища истории очагов
type StorageConfig struct {
	Type       string // memory, sqlite, mysql
	SQLitePath string
	MySQLDSN   string
}

// DescriberConfig настройки клинической интерпретации
type DescriberConfig struct {
	Provider    string // none, gemini, openai
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// IntakeConfig ограничения на входящие снимки
type IntakeConfig struct {
	MinImageSide  int
	MaxImageBytes int64
}

type Config struct {
	TelegramToken string
	HTTPAddr      string
	LogLevel      string
	LogFormat     string
	PolicyPath    string
	VisionBackend string // native, opencv
	Intake        IntakeConfig
	Storage       StorageConfig
	Describer     DescriberConfig
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper собирает конфигурацию из готового экземпляра viper
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		TelegramToken: v.GetString("telegram_token"),
		HTTPAddr:      v.GetString("http_addr"),
		LogLevel:      strings.ToLower(v.GetString("log_level")),
		LogFormat:     strings.ToLower(v.GetString("log_format")),
		PolicyPath:    v.GetString("policy_path"),
		VisionBackend: strings.ToLower(v.GetString("vision_backend")),
		Intake: IntakeConfig{
			MinImageSide:  v.GetInt("min_image_side"),
			MaxImageBytes: v.GetInt64("max_image_bytes"),
		},
		Storage: StorageConfig{
			Type:       strings.ToLower(v.GetString("storage_type")),
			SQLitePath: v.GetString("sqlite_path"),
			MySQLDSN:   v.GetString("mysql_dsn"),
		},
		Describer: DescriberConfig{
			Provider:    strings.ToLower(v.GetString("describer_provider")),
			APIKey:      v.GetString("describer_api_key"),
			Model:       v.GetString("describer_model"),
			MaxTokens:   v.GetInt("describer_max_tokens"),
			Temperature: float32(v.GetFloat64("describer_temperature")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewDefaultViper возвращает viper только со значениями по умолчанию
func NewDefaultViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram_token", "")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("policy_path", "")
	v.SetDefault("vision_backend", "native")
	v.SetDefault("min_image_side", 100)
	v.SetDefault("max_image_bytes", 20<<20)

	v.SetDefault("storage_type", "memory")
	v.SetDefault("sqlite_path", "data/dermacheck.db")
	v.SetDefault("mysql_dsn", "user:password@tcp(localhost:3306)/dermacheck?parseTime=true")

	v.SetDefault("describer_provider", "none")
	v.SetDefault("describer_api_key", "")
	v.SetDefault("describer_model", "")
	v.SetDefault("describer_max_tokens", 800)
	v.SetDefault("describer_temperature", 0.2)
}

func (c *Config) validate() error {
	if c.Intake.MinImageSide < 1 || c.Intake.MaxImageBytes < 1 {
		return fmt.Errorf("min_image_side and max_image_bytes must be positive")
	}

	switch c.Storage.Type {
	case "memory", "sqlite", "mysql":
	default:
		return fmt.Errorf("unsupported storage type: %q", c.Storage.Type)
	}

	switch c.Describer.Provider {
	case "none", "":
		c.Describer.Provider = "none"
	case "gemini", "openai":
		if c.Describer.APIKey == "" {
			return fmt.Errorf("DESCRIBER_API_KEY is required for provider %q", c.Describer.Provider)
		}
	default:
		return fmt.Errorf("unsupported describer provider: %q", c.Describer.Provider)
	}

	switch c.VisionBackend {
	case "native", "opencv":
	default:
		return fmt.Errorf("unsupported vision backend: %q", c.VisionBackend)
	}

	if c.TelegramToken == "" && c.HTTPAddr == "" {
		return fmt.Errorf("either TELEGRAM_TOKEN or HTTP_ADDR must be set")
	}
	return nil
}
