package service

import (
	"context"
	"errors"
	"testing"

	"github.com/KarlYu130/DeepSite/internal/completion"
	"github.com/KarlYu130/DeepSite/internal/model"
)

// fakeCompletionClient 记录调用参数，返回预设的流或错误
type fakeCompletionClient struct {
	calls    int
	modelID  string
	messages []model.Message
	stream   completion.DeltaStream
	err      error
}

func (f *fakeCompletionClient) StreamCompletion(ctx context.Context, modelID string, messages []model.Message) (completion.DeltaStream, error) {
	f.calls++
	f.modelID = modelID
	f.messages = messages
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

func TestOpenStream_EmptyPromptRejectedBeforeAnyCall(t *testing.T) {
	client := &fakeCompletionClient{stream: &scriptedStream{}}
	svc := NewGenerateService(client)

	for _, prompt := range []string{"", "   ", "\n\t"} {
		_, err := svc.OpenStream(context.Background(), model.AskRequest{Prompt: prompt})
		if !errors.Is(err, model.ErrEmptyPrompt) {
			t.Fatalf("Expected ErrEmptyPrompt for %q, got %v", prompt, err)
		}
	}

	if client.calls != 0 {
		t.Fatalf("Expected no upstream calls for invalid requests, got %d", client.calls)
	}
}

func TestOpenStream_ComposesAndForwardsModelOverride(t *testing.T) {
	client := &fakeCompletionClient{stream: &scriptedStream{chunks: []string{"x"}}}
	svc := NewGenerateService(client)

	req := model.AskRequest{
		Prompt:   "build a page",
		Provider: "custom-model",
	}

	stream, err := svc.OpenStream(context.Background(), req)
	if err != nil {
		t.Fatalf("OpenStream() error: %v", err)
	}
	defer stream.Close()

	if client.calls != 1 {
		t.Fatalf("Expected exactly one upstream stream, got %d", client.calls)
	}
	if client.modelID != "custom-model" {
		t.Fatalf("Expected model override forwarded, got %q", client.modelID)
	}
	if len(client.messages) != 2 || client.messages[0].Role != model.RoleSystem {
		t.Fatalf("Expected composed messages, got %+v", client.messages)
	}
}

func TestOpenStream_OpenFailureIsSynchronous(t *testing.T) {
	client := &fakeCompletionClient{err: errors.New("upstream unavailable")}
	svc := NewGenerateService(client)

	_, err := svc.OpenStream(context.Background(), model.AskRequest{Prompt: "hello"})
	if err == nil {
		t.Fatal("Expected open failure to surface synchronously")
	}
	if errors.Is(err, model.ErrEmptyPrompt) {
		t.Fatalf("Open failure must not be classified as validation: %v", err)
	}
}
