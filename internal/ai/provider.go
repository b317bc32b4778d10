package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
)

// ErrMissingAPIKey возвращается, если выбранному провайдеру нужен ключ, а он пуст.
var ErrMissingAPIKey = errors.New("missing api key")

// ProviderConfig то, что нужно фабрике для создания клиента.
type ProviderConfig struct {
	Provider string // gemini|openai|stub
	Model    string
	APIKey   string
}

// DefaultModel модель, которая берётся, если MODEL_NAME не задан.
func DefaultModel(provider string) string {
	switch provider {
	case "openai":
		return string(openai.ChatModelGPT4o)
	case "stub":
		return "stub"
	default:
		return "gemini-2.5-pro"
	}
}

// NewClient создаёт клиента выбранного провайдера и оборачивает его трассировкой.
func NewClient(ctx context.Context, pc ProviderConfig, logger *zap.SugaredLogger) (Client, error) {
	if pc.Model == "" {
		pc.Model = DefaultModel(pc.Provider)
	}
	var (
		c   Client
		err error
	)
	switch pc.Provider {
	case "gemini", "google", "":
		c, err = NewGeminiClient(ctx, pc.APIKey, pc.Model, logger)
	case "openai":
		c, err = NewResponsesClient(pc.APIKey, pc.Model)
	case "stub":
		c = NewStubClient()
	default:
		return nil, fmt.Errorf("unknown provider: %s", pc.Provider)
	}
	if err != nil {
		return nil, err
	}
	return NewTraced(c, pc.Provider, pc.Model), nil
}
