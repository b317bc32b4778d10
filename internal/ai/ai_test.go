package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

type recordingClient struct {
	calls      int
	text       string
	attachment *Attachment
	reply      string
	err        error
}

func (r *recordingClient) SendRequest(_ context.Context, text string, attachment *Attachment) (string, error) {
	r.calls++
	r.text = text
	r.attachment = attachment
	return r.reply, r.err
}

func TestAttachmentEncoding(t *testing.T) {
	a := &Attachment{MimeType: "image/jpeg", Data: []byte("hello")}
	if got := a.Base64(); got != "aGVsbG8=" {
		t.Fatalf("unexpected base64: %q", got)
	}
	if got := a.DataURL(); got != "data:image/jpeg;base64,aGVsbG8=" {
		t.Fatalf("unexpected data url: %q", got)
	}
}

func TestStubClientReplies(t *testing.T) {
	out, err := NewStubClient().SendRequest(context.Background(), "anything", nil)
	if err != nil {
		t.Fatalf("SendRequest returned error: %v", err)
	}
	if out != stubReply {
		t.Fatalf("unexpected reply: %q", out)
	}
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), ProviderConfig{Provider: "unknown"}, zap.NewNop().Sugar())
	if err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestNewClientMissingAPIKey(t *testing.T) {
	for _, provider := range []string{"gemini", "openai"} {
		_, err := NewClient(context.Background(), ProviderConfig{Provider: provider, Model: "m"}, zap.NewNop().Sugar())
		if !errors.Is(err, ErrMissingAPIKey) {
			t.Fatalf("%s: expected ErrMissingAPIKey, got %v", provider, err)
		}
	}
}

func TestNewClientStubIsTraced(t *testing.T) {
	c, err := NewClient(context.Background(), ProviderConfig{Provider: "stub"}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, ok := c.(*Traced); !ok {
		t.Fatalf("expected *Traced, got %T", c)
	}
	out, err := c.SendRequest(context.Background(), "ping", nil)
	if err != nil || out != stubReply {
		t.Fatalf("unexpected result: %q, %v", out, err)
	}
}

func TestNewClientOpenAIWithKey(t *testing.T) {
	c, err := NewClient(context.Background(), ProviderConfig{Provider: "openai", APIKey: "k"}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if _, ok := c.(*Traced).next.(*ResponsesClient); !ok {
		t.Fatalf("expected wrapped *ResponsesClient")
	}
}

func TestNewClientOpenAIDefaultModel(t *testing.T) {
	c, err := NewClient(context.Background(), ProviderConfig{Provider: "openai", APIKey: "k"}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	traced := c.(*Traced)
	rc := traced.next.(*ResponsesClient)
	if string(rc.model) != "gpt-4o" || traced.model != "gpt-4o" {
		t.Fatalf("expected gpt-4o, got client=%q span=%q", rc.model, traced.model)
	}
}

func TestNewClientOpenAIExplicitModel(t *testing.T) {
	c, err := NewClient(context.Background(), ProviderConfig{Provider: "openai", Model: "gpt-4.1", APIKey: "k"}, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if got := string(c.(*Traced).next.(*ResponsesClient).model); got != "gpt-4.1" {
		t.Fatalf("explicit model must win, got %q", got)
	}
}

func TestDefaultModel(t *testing.T) {
	for provider, want := range map[string]string{
		"gemini": "gemini-2.5-pro",
		"google": "gemini-2.5-pro",
		"":       "gemini-2.5-pro",
		"openai": "gpt-4o",
		"stub":   "stub",
	} {
		if got := DefaultModel(provider); got != want {
			t.Fatalf("DefaultModel(%q) = %q, want %q", provider, got, want)
		}
	}
}

func TestTracedPassesThrough(t *testing.T) {
	inner := &recordingClient{reply: "report"}
	traced := NewTraced(inner, "stub", "m")
	img := &Attachment{MimeType: "image/png", Data: []byte{1, 2, 3}}

	out, err := traced.SendRequest(context.Background(), "prompt", img)
	if err != nil {
		t.Fatalf("SendRequest returned error: %v", err)
	}
	if out != "report" || inner.text != "prompt" || inner.attachment != img || inner.calls != 1 {
		t.Fatalf("unexpected pass-through: out=%q inner=%+v", out, inner)
	}
}

func TestTracedPropagatesError(t *testing.T) {
	boom := errors.New("quota exceeded")
	traced := NewTraced(&recordingClient{err: boom}, "stub", "m")

	if _, err := traced.SendRequest(context.Background(), "prompt", nil); !errors.Is(err, boom) {
		t.Fatalf("expected original error, got %v", err)
	}
	if err := traced.Close(); err != nil {
		t.Fatalf("Close on non-closer returned error: %v", err)
	}
}

func TestResponseTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  "model",
				Parts: []genai.Part{genai.Text("Machine "), genai.Blob{MIMEType: "image/png"}, genai.Text("is healthy.")},
			},
		}},
	}
	out, err := responseText(resp)
	if err != nil {
		t.Fatalf("responseText returned error: %v", err)
	}
	if out != "Machine is healthy." {
		t.Fatalf("unexpected text: %q", out)
	}
}

func TestResponseTextEmpty(t *testing.T) {
	for _, resp := range []*genai.GenerateContentResponse{
		nil,
		{},
		{Candidates: []*genai.Candidate{{}}},
	} {
		if _, err := responseText(resp); err == nil {
			t.Fatalf("expected error for empty response %+v", resp)
		}
	}
}

func TestRequestPartsTextOnly(t *testing.T) {
	parts := requestParts("describe", nil)
	if diff := cmp.Diff([]genai.Part{genai.Text("describe")}, parts); diff != "" {
		t.Fatalf("unexpected parts (-want +got):\n%s", diff)
	}
}

func TestRequestPartsWithImage(t *testing.T) {
	img := &Attachment{MimeType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}}
	parts := requestParts("describe", img)

	want := []genai.Part{
		genai.Text("describe"),
		genai.Blob{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0xff}},
	}
	if diff := cmp.Diff(want, parts); diff != "" {
		t.Fatalf("unexpected parts (-want +got):\n%s", diff)
	}
}
