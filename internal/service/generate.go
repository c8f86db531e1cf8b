package service

import (
	"context"
	"fmt"

	"github.com/KarlYu130/DeepSite/internal/completion"
	"github.com/KarlYu130/DeepSite/internal/model"
)

// GenerateService 把生成请求接到补全客户端：校验、组装消息、建流。
// 建流失败时还没有写出任何字节，调用方仍可返回 JSON 错误；建流成功后
// 由 Pump 负责转发，此后的失败只能以断开连接收场。
type GenerateService struct {
	client completion.Client
}

func NewGenerateService(client completion.Client) *GenerateService {
	return &GenerateService{client: client}
}

// OpenStream 校验请求并打开一条补全流。每个请求恰好对应一条上游流，
// 失败不重试。校验失败返回 model 包的哨兵错误，此时未发生任何外呼。
func (s *GenerateService) OpenStream(ctx context.Context, req model.AskRequest) (completion.DeltaStream, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	messages := BuildMessages(req)

	stream, err := s.client.StreamCompletion(ctx, req.Provider, messages)
	if err != nil {
		return nil, fmt.Errorf("open completion stream: %w", err)
	}

	return stream, nil
}
