// Package interfaces 定义回程链路子系统的公共接口
//
// 本文件定义策略路由切换接口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// RouteSwitcher 策略路由切换器
// ════════════════════════════════════════════════════════════════════════════

// RouteSwitcher 原子地切换系统默认出口
//
// 采用"先建后拆"顺序：新路由表与新策略规则全部就位后，
// 才移除旧规则。任一前置步骤失败则中止并保留旧路由，
// 保证切换过程中不出现无路由窗口。
type RouteSwitcher interface {
	// SwitchActive 将默认出口切换到指定接口
	//
	// 幂等：目标已是当前活跃接口时为空操作。
	// 监视模式下记录意图但不执行任何系统命令。
	SwitchActive(ctx context.Context, info types.InterfaceInfo) error

	// Active 返回当前活跃接口名
	//
	// 尚未完成过任何切换时第二个返回值为 false。
	Active() (string, bool)

	// Rollback 撤销最近一次成功切换，恢复前一个出口
	//
	// 没有可回退的历史时为成功的空操作。
	Rollback(ctx context.Context) error

	// Cleanup 移除本切换器创建的全部路由表与规则
	//
	// 用于子系统关停。逐项清理并聚合所有错误返回，
	// 不因单项失败而中断。
	Cleanup(ctx context.Context) error
}
