package ai

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("PulseLens/internal/ai")

// Traced оборачивает Client спаном OpenTelemetry на каждый запрос к модели.
// Без настроенного TracerProvider спаны no-op.
type Traced struct {
	next     Client
	provider string
	model    string
}

func NewTraced(next Client, provider, model string) *Traced {
	return &Traced{next: next, provider: provider, model: model}
}

func (t *Traced) SendRequest(ctx context.Context, text string, attachment *Attachment) (string, error) {
	ctx, span := tracer.Start(ctx, "report_relay.generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("llm.provider", t.provider),
		attribute.String("llm.model", t.model),
		attribute.Int("llm.prompt_length", len(text)),
		attribute.Bool("llm.has_image", attachment != nil),
	)

	out, err := t.next.SendRequest(ctx, text, attachment)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.output_length", len(out)))
	return out, nil
}

// Close закрывает вложенного клиента, если он это умеет.
func (t *Traced) Close() error {
	if c, ok := t.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
