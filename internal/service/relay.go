package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/KarlYu130/DeepSite/internal/completion"
)

// DocumentEndMarker 页面收尾标记，累计输出中一旦出现即可提前断开上游
const DocumentEndMarker = "</html>"

// PumpState 一次流式转发结束时所处的终态
type PumpState int

const (
	// StateCompleted 上游自然耗尽
	StateCompleted PumpState = iota
	// StateEarlyStopped 命中停止条件，提前断开上游
	StateEarlyStopped
	// StateInterrupted 流中途失败，响应头已提交，只能断开连接
	StateInterrupted
)

func (s PumpState) String() string {
	switch s {
	case StateCompleted:
		return "completed"
	case StateEarlyStopped:
		return "early_stopped"
	case StateInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// StopPredicate 判断累计输出是否已经完整，满足后停止拉取
type StopPredicate func(accumulated string) bool

// MarkerStop 在累计输出包含 marker 时停止
func MarkerStop(marker string) StopPredicate {
	return func(accumulated string) bool {
		return strings.Contains(accumulated, marker)
	}
}

// PumpResult 转发结束后的汇总。Artifact 恒等于所有成功写出增量的拼接。
type PumpResult struct {
	State    PumpState
	Artifact string
	Written  int
}

// Pump 把上游增量逐个转发给 w：每个非空增量立即写出并冲刷，空增量
// 跳过（不是结束信号）。写出后用 stop 检查累计输出，命中即提前结束。
// 无论以何种方式退出都会关闭上游流。
func Pump(ctx context.Context, stream completion.DeltaStream, w ChunkWriter, stop StopPredicate) (PumpResult, error) {
	defer stream.Close()

	var artifact strings.Builder

	for stream.Next() {
		if err := ctx.Err(); err != nil {
			return pumpResult(StateInterrupted, &artifact), err
		}

		chunk := stream.Current()
		if chunk == "" {
			continue
		}

		if err := w.Write(chunk); err != nil {
			return pumpResult(StateInterrupted, &artifact), fmt.Errorf("write chunk: %w", err)
		}
		artifact.WriteString(chunk)

		if stop != nil && stop(artifact.String()) {
			return pumpResult(StateEarlyStopped, &artifact), nil
		}
	}

	if err := stream.Err(); err != nil {
		return pumpResult(StateInterrupted, &artifact), fmt.Errorf("pull delta: %w", err)
	}

	return pumpResult(StateCompleted, &artifact), nil
}

// ChunkWriter 增量的落地出口，流式响应场景下由 utils.StreamWriter 实现
type ChunkWriter interface {
	Write(chunk string) error
}

func pumpResult(state PumpState, artifact *strings.Builder) PumpResult {
	return PumpResult{
		State:    state,
		Artifact: artifact.String(),
		Written:  artifact.Len(),
	}
}
