package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode bool   `env:"DEBUG_MODE"` // Режим дебага: development-логгер zap
	BindAddr  string `env:"BIND_ADDR"`  // Адрес HTTP-сервера, напр. :5001

	// Провайдер модели
	Provider     string `env:"MODEL_PROVIDER"` // gemini|openai|stub, по умолчанию gemini
	Model        string `env:"MODEL_NAME"`     // Имя модели; пусто — модель провайдера по умолчанию
	GeminiAPIKey string `env:"GEMINI_API_KEY"` // Ключ Gemini; если пуст — пробуем GOOGLE_API_KEY
	OpenAIAPIKey string `env:"OPENAI_API_KEY"` // Ключ OpenAI, нужен только для провайдера openai

	// Картинка, прикладываемая к каждому запросу
	Image ImageConfig

	// HTTP
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES"`     // Лимит тела запроса
	CORSAllowOrigin string        `env:"CORS_ALLOW_ORIGIN"`  // Значение Access-Control-Allow-Origin
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"`  // Таймаут чтения запроса
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"` // Таймаут записи ответа; должен покрывать ответ модели
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"`  // Таймаут keep-alive
}

// ImageConfig настройки режима «текст + картинка».
type ImageConfig struct {
	Enabled      bool   `env:"IMAGE_ENABLED"`        // Прикладывать картинку к запросу
	Path         string `env:"IMAGE_PATH"`           // Путь относительно рабочей директории процесса
	MimeType     string `env:"IMAGE_MIME_TYPE"`      // MIME-тип, с которым картинка уходит в модель
	MaxSizeBytes int    `env:"IMAGE_MAX_SIZE_BYTES"` // 0 — отправлять как есть, иначе уменьшать до лимита
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode: false,
		BindAddr:  ":5001",
		Provider:  "gemini",
		Image: ImageConfig{
			Enabled:  false,
			Path:     "image.jpg",
			MimeType: "image/jpeg",
		},
		MaxBodyBytes:    100 << 10, // как у body-parser
		CORSAllowOrigin: "*",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    5 * time.Minute, // gemini-2.5-pro может думать долго
		IdleTimeout:     60 * time.Second,
	}
}

// NewConfig загружает конфигурацию приложения из .env, окружения и os.Args.
func NewConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load стартует с дефолтов, затем перекрывает их .env/окружением и флагами из args.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))
	}

	fs := flag.NewFlagSet("report-relay", flag.ContinueOnError)
	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить режим дебага (development-логгер)")
	fs.StringVar(&cfg.BindAddr, "bind-addr", cfg.BindAddr, "адрес HTTP-сервера, напр. :5001")
	fs.StringVar(&cfg.Provider, "provider", cfg.Provider, "провайдер модели: gemini|openai|stub")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "имя модели у провайдера")
	fs.BoolVar(&cfg.Image.Enabled, "image-enabled", cfg.Image.Enabled, "прикладывать картинку к каждому запросу")
	fs.StringVar(&cfg.Image.Path, "image-path", cfg.Image.Path, "путь к картинке относительно рабочей директории")
	fs.StringVar(&cfg.Image.MimeType, "image-mime-type", cfg.Image.MimeType, "MIME-тип картинки")
	fs.IntVar(&cfg.Image.MaxSizeBytes, "image-max-size-bytes", cfg.Image.MaxSizeBytes, "максимальный размер картинки в байтах, 0 — без уменьшения")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", cfg.MaxBodyBytes, "лимит тела запроса в байтах")
	fs.StringVar(&cfg.CORSAllowOrigin, "cors-allow-origin", cfg.CORSAllowOrigin, "значение заголовка Access-Control-Allow-Origin")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("config: parse flags: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("config: max body bytes must be positive, got %d", cfg.MaxBodyBytes)
	}
	if cfg.Image.Enabled && strings.TrimSpace(cfg.Image.Path) == "" {
		return nil, fmt.Errorf("config: image enabled but image path is empty")
	}
	return cfg, nil
}

// APIKey возвращает ключ выбранного провайдера. Для stub ключ не нужен.
func (c *Config) APIKey() string {
	switch c.Provider {
	case "openai":
		return c.OpenAIAPIKey
	case "stub":
		return "stub"
	default:
		return c.GeminiAPIKey
	}
}
