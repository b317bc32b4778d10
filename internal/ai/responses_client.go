package ai

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v3"
	oaioption "github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

// ResponsesClient отправляет текст и, при наличии, картинку в OpenAI через Responses API
type ResponsesClient struct {
	client *openai.Client
	model  openai.ChatModel
}

func NewResponsesClient(apiKey, model string) (*ResponsesClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}
	client := openai.NewClient(oaioption.WithAPIKey(apiKey))
	if model == "" {
		model = string(openai.ChatModelGPT4o)
	}
	return &ResponsesClient{client: &client, model: openai.ChatModel(model)}, nil
}

func (c *ResponsesClient) SendRequest(ctx context.Context, text string, attachment *Attachment) (string, error) {
	content := make(responses.ResponseInputMessageContentListParam, 0, 2)
	content = append(content, responses.ResponseInputContentParamOfInputText(text))
	if attachment != nil {
		imageParam := responses.ResponseInputContentParamOfInputImage(responses.ResponseInputImageDetailAuto)
		imageParam.OfInputImage.ImageURL = openai.String(attachment.DataURL())
		content = append(content, imageParam)
	}

	resp, err := c.client.Responses.New(ctx, responses.ResponseNewParams{
		Model: c.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(content, responses.EasyInputMessageRoleUser),
			},
		},
	})
	if err != nil {
		return "", err
	}

	return resp.OutputText(), nil
}
