// Package config は環境変数から生成パイプラインの設定を読み込みます。
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config は画像生成パイプライン全体の設定です。
type Config struct {
	// Provider は使用する画像生成プロバイダです（"http" または "gemini"）。
	Provider string `env:"IMAGE_PROVIDER" envDefault:"http"`

	// HTTPプロバイダ（OpenAI互換API）の接続情報
	BaseURL string `env:"IMAGE_PROVIDER_BASE_URL"`
	APIKey  string `env:"IMAGE_PROVIDER_API_KEY"`

	// Geminiプロバイダの接続情報
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	Model string `env:"IMAGE_MODEL" envDefault:"gemini-2.5-flash-image"`
	Size  string `env:"IMAGE_SIZE" envDefault:"768x768"`

	CallTimeout   time.Duration `env:"CALL_TIMEOUT" envDefault:"60s"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"90s"`
	MaxConcurrent int           `env:"MAX_CONCURRENT" envDefault:"3"`

	// RateInterval はプロバイダ呼び出しの最小間隔です（0で制限なし）。
	RateInterval time.Duration `env:"RATE_INTERVAL" envDefault:"500ms"`

	// ImageCacheTTL はロケータURL経由で取得した画像のキャッシュ保持期間です。
	ImageCacheTTL time.Duration `env:"IMAGE_CACHE_TTL" envDefault:"30m"`
}

// Load は環境変数を解析し、プロバイダごとの必須項目を検証します。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case "http":
		if c.BaseURL == "" {
			return fmt.Errorf("configuration: IMAGE_PROVIDER_BASE_URL is required for the http provider")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("configuration: GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("configuration: unknown IMAGE_PROVIDER %q (want http or gemini)", c.Provider)
	}

	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("configuration: MAX_CONCURRENT must be positive, got %d", c.MaxConcurrent)
	}
	if c.CallTimeout < 0 || c.RateInterval < 0 {
		return fmt.Errorf("configuration: timeouts and intervals must not be negative")
	}
	return nil
}
