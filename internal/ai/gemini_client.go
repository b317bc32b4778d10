package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient отправляет текст и картинку в Google Gemini
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *zap.SugaredLogger
}

func NewGeminiClient(ctx context.Context, apiKey, model string, logger *zap.SugaredLogger) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiClient{client: client, model: model, logger: logger}, nil
}

func (c *GeminiClient) SendRequest(ctx context.Context, text string, attachment *Attachment) (string, error) {
	model := c.client.GenerativeModel(c.model)
	c.logger.Infow("Gemini model initialized", "model", c.model)

	resp, err := model.GenerateContent(ctx, requestParts(text, attachment)...)
	if err != nil {
		return "", err
	}
	return responseText(resp)
}

// Close освобождает соединение с API.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// requestParts текст первым, картинка (если есть) вторым сегментом.
func requestParts(text string, attachment *Attachment) []genai.Part {
	parts := []genai.Part{genai.Text(text)}
	if attachment != nil {
		// base64 делает сам транспорт SDK, сюда передаются сырые байты
		parts = append(parts, genai.Blob{MIMEType: attachment.MimeType, Data: attachment.Data})
	}
	return parts
}

// responseText склеивает текстовые части первого кандидата.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if t, ok := p.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String(), nil
}
