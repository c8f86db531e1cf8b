package completion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/KarlYu130/DeepSite/internal/config"
	"github.com/KarlYu130/DeepSite/internal/model"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client       *openai.Client
	defaultModel string
	maxTokens    int
}

func NewOpenAIClient(cfg config.CompletionConfig, httpClient *http.Client) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}

	return &OpenAIClient{
		client:       openai.NewClientWithConfig(clientConfig),
		defaultModel: cfg.Model,
		maxTokens:    cfg.MaxTokens,
	}
}

func (c *OpenAIClient) StreamCompletion(ctx context.Context, modelID string, messages []model.Message) (DeltaStream, error) {
	if modelID == "" {
		modelID = c.defaultModel
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:     modelID,
		Messages:  convertMessages(messages),
		MaxTokens: c.maxTokens,
		Stream:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("create completion stream: %w", err)
	}

	return &openaiDeltaStream{stream: stream}, nil
}

// 消息格式转换
func convertMessages(messages []model.Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		result = append(result, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return result
}

// openaiDeltaStream 包装 go-openai 的流，每次 Next 只拉取一个增量，
// 不做任何预读。空增量原样返回，由上层决定是否忽略。
type openaiDeltaStream struct {
	stream  *openai.ChatCompletionStream
	current string
	err     error
	done    bool
}

func (s *openaiDeltaStream) Next() bool {
	if s.done {
		return false
	}

	for {
		response, err := s.stream.Recv()
		if err != nil {
			s.done = true
			if !errors.Is(err, io.EOF) {
				s.err = err
			}
			return false
		}

		if len(response.Choices) == 0 {
			continue
		}

		s.current = response.Choices[0].Delta.Content
		return true
	}
}

func (s *openaiDeltaStream) Current() string {
	return s.current
}

func (s *openaiDeltaStream) Err() error {
	return s.err
}

func (s *openaiDeltaStream) Close() error {
	s.done = true
	return s.stream.Close()
}
