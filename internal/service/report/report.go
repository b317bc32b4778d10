package report

import (
	"context"
	"errors"
	"fmt"

	"PulseLens/internal/ai"

	"go.uber.org/zap"
)

var (
	// ErrPromptRequired пустой или отсутствующий prompt. Модель не вызывается.
	ErrPromptRequired = errors.New("prompt is required")
	// ErrAPIKeyNotConfigured у провайдера нет ключа, клиент не создан. Модель не вызывается.
	ErrAPIKeyNotConfigured = errors.New("api key not configured")
)

// GenerationError сбой на этапе загрузки картинки или запроса к модели.
type GenerationError struct {
	Stage string // image|model
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate report (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

const (
	// пробел после "systems." и строка из четырёх пробелов повторяют исходный промпт байт в байт
	textTemplate = "You are a health insight generator for machine health monitoring systems. \n" +
		"    \n" +
		"User request: %s\n" +
		"\n" +
		"Please provide a detailed, professional analysis."

	imageTemplate = `You are a health insight generator for machine health monitoring systems.
An image from the monitored machine is attached. Analyze the image together with the user request.

User request: %s

Please provide a detailed, professional analysis based on both the image and the request.`
)

// ImageLoader отдаёт картинку для очередного запроса.
type ImageLoader interface {
	Load() (*ai.Attachment, error)
}

// Request один запрос на отчёт.
type Request struct {
	ID     string
	Prompt string
}

type Option func(*Service)

// WithImage включает режим «текст + картинка».
func WithImage(loader ImageLoader) Option {
	return func(s *Service) { s.images = loader }
}

// Service пересылает prompt в модель и возвращает её текст как есть.
// Общее состояние только read-only: клиент и загрузчик картинки.
type Service struct {
	client ai.Client
	images ImageLoader
	logger *zap.SugaredLogger
}

// New создаёт сервис. client == nil означает, что ключ провайдера не задан.
func New(client ai.Client, logger *zap.SugaredLogger, opts ...Option) *Service {
	s := &Service{client: client, logger: logger}
	for _, o := range opts {
		o(s)
	}
	return s
}

// ImageEnabled сообщает, прикладывается ли картинка к запросам.
func (s *Service) ImageEnabled() bool { return s.images != nil }

// Generate проверяет вход, собирает промпт и синхронно ждёт ответа модели.
func (s *Service) Generate(ctx context.Context, req Request) (string, error) {
	log := s.logger.With("request_id", req.ID)

	if req.Prompt == "" {
		log.Warnw("No prompt provided")
		return "", ErrPromptRequired
	}
	if s.client == nil {
		log.Errorw("API key not found in environment variables")
		return "", ErrAPIKeyNotConfigured
	}

	var (
		attachment *ai.Attachment
		text       = fmt.Sprintf(textTemplate, req.Prompt)
	)
	if s.images != nil {
		a, err := s.images.Load()
		if err != nil {
			log.Errorw("Failed to load image", "error", err)
			return "", &GenerationError{Stage: "image", Err: err}
		}
		attachment = a
		text = fmt.Sprintf(imageTemplate, req.Prompt)
		log.Infow("Image attached", "mime", a.MimeType, "bytes", len(a.Data))
	}

	log.Infow("Sending request to model", "prompt_length", len(req.Prompt), "with_image", attachment != nil)
	output, err := s.client.SendRequest(ctx, text, attachment)
	if err != nil {
		log.Errorw("Model API error", "error", err)
		return "", &GenerationError{Stage: "model", Err: err}
	}

	log.Infow("Response received from model", "output_length", len(output))
	return output, nil
}
