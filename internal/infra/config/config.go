package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig описывает конфигурацию сервиса.
type AppConfig struct {
	AppEnv      string `envconfig:"APP_ENV" default:"dev"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MetricsAddr string `envconfig:"METRICS_ADDR" default:":9090"`

	// Токен доступа к чату. Значение по умолчанию — только для
	// локальной разработки.
	AccessToken string `envconfig:"CHAT_ACCESS_TOKEN" default:"roz-chat-2024"`

	OpenAI struct {
		APIKey  string        `envconfig:"OPENAI_API_KEY"`
		BaseURL string        `envconfig:"OPENAI_BASE_URL"`
		Timeout time.Duration `envconfig:"OPENAI_TIMEOUT" default:"60s"`
	} `envconfig:""`

	Chat struct {
		Model       string  `envconfig:"CHAT_MODEL" default:"gpt-4"`
		Temperature float64 `envconfig:"CHAT_TEMPERATURE" default:"0.8"`
		MaxTokens   int     `envconfig:"CHAT_MAX_TOKENS" default:"500"`
	} `envconfig:""`

	FeedbackFile string `envconfig:"FEEDBACK_FILE" default:"data/feedback.json"`
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}
