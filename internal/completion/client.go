package completion

import (
	"context"

	"github.com/KarlYu130/DeepSite/internal/model"
)

// DeltaStream 一次流式补全产生的增量序列。惰性拉取、只能消费一次、
// 不可重放；调用方停止拉取后必须 Close 释放上游连接。
type DeltaStream interface {
	// Next 拉取下一个增量，流耗尽或出错时返回 false
	Next() bool
	// Current 返回最近一次 Next 成功后的增量文本，可能为空串
	Current() string
	// Err 区分正常耗尽与异常中断：正常结束时为 nil
	Err() error
	// Close 释放上游连接，可重复调用
	Close() error
}

// Client 聊天补全客户端。modelID 为空时使用配置的默认模型。
type Client interface {
	StreamCompletion(ctx context.Context, modelID string, messages []model.Message) (DeltaStream, error)
}
