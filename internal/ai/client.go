package ai

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Client интерфейс для взаимодействия с AI. Все реализации должны быть взаимозаменяемыми.
type Client interface {
	// SendRequest отправляет текст и, если attachment не nil, картинку. Возвращает текст ответа модели.
	SendRequest(ctx context.Context, text string, attachment *Attachment) (string, error)
}

// Attachment картинка, встраиваемая прямо в запрос к модели.
type Attachment struct {
	MimeType string
	Data     []byte
}

// Base64 возвращает содержимое в стандартной base64-кодировке.
func (a *Attachment) Base64() string {
	return base64.StdEncoding.EncodeToString(a.Data)
}

// DataURL возвращает data URL вида data:<mime>;base64,<payload>.
func (a *Attachment) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", a.MimeType, a.Base64())
}
