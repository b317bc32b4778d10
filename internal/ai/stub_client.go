package ai

import "context"

const stubReply = "запрос получен"

// StubClient заглушка, которая не делает реальных запросов
type StubClient struct{}

func NewStubClient() *StubClient { return &StubClient{} }

func (c *StubClient) SendRequest(_ context.Context, _ string, _ *Attachment) (string, error) {
	return stubReply, nil
}
