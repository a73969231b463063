package run

import (
	"time"

	"github.com/John-Robertt/spritekit/internal/config"
	"github.com/John-Robertt/spritekit/internal/domain"
)

// Observer 用于把“运行进度/阶段/逐文件结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的 JSON 契约）。
// - 事件按执行顺序在同一个 goroutine 中发出。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用（应尽量早，保证用户 1 秒内看到输出）。
	OnStart(eff config.EffectiveConfig)
	// OnStageDone 在阶段结束时调用；fields 携带阶段特有的统计（例如 entities、bytes）。
	OnStageDone(st domain.StageResult, fields map[string]any, dur time.Duration)
	// OnFile 在单个文件处理完成时调用（成功/跳过/失败各一次）。
	OnFile(stage string, fr domain.FileResult)
}
