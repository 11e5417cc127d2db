package run

import (
	"time"

	"github.com/John-Robertt/imgcount/internal/config"
	"github.com/John-Robertt/imgcount/internal/domain"
)

// 阶段名（OnPhaseDone 的 name）。
const (
	PhaseTotal   = "total"
	PhaseCatalog = "catalog"
	PhaseResolve = "resolve"
	PhaseDetails = "details"
)

// Observer 用于把“运行进度/阶段/条目结果”从核心执行流程中解耦出来。
//
// 约束：
// - run 包只负责发事件，不做任何输出（避免污染 stdout 的报告）。
// - 事件都在调用 Execute 的 goroutine 上依次触发。
type Observer interface {
	// OnStart 在 Execute 开始时调用。
	OnStart(cfg config.Config)
	// OnPhaseDone 在阶段结束时调用（用于打印阶段统计与耗时）。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnItemDone 在某条详情结果确定时调用；done 从 1 开始计数。
	OnItemDone(done, total int, d domain.DetailInfo)
}
