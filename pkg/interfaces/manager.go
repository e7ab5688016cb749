// Package interfaces 定义回程链路子系统的公共接口
//
// 本文件定义 Manager 接口，是回程链路子系统的顶层 API 入口。
package interfaces

import (
	"context"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// Manager 回程链路管理器（门面接口）
// ════════════════════════════════════════════════════════════════════════════

// Manager 编排回程链路的发现、探测、评分与切换
//
// Manager 驱动周期性评估循环（tick）：
//  1. 同步接口注册表，为新接口建立状态机
//  2. 并发探测所有候选接口（有界并发）
//  3. 将探测结果投递给各接口状态机
//  4. 对全部接口评分
//  5. 在 UP 状态接口中选出最优者
//  6. 必要时原子切换默认出口
//
// 切换失败不会破坏当前活跃记录，下一轮 tick 自动重试。
type Manager interface {
	// Start 启动发现循环与评估循环
	Start(ctx context.Context) error

	// Stop 停止全部循环并尽力清理路由与整形规则
	//
	// 清理逐项进行，聚合所有错误返回。可重复调用。
	Stop(ctx context.Context) error

	// Tick 手动执行一轮评估
	//
	// 正常路径由内部定时器驱动，本方法用于测试与
	// 管理面触发。
	Tick(ctx context.Context) error

	// CurrentBackhaul 返回当前活跃回程链路
	//
	// 尚未选出活跃链路时第二个返回值为 false。
	CurrentBackhaul() (types.ActiveBackhaul, bool)

	// InterfaceStates 返回所有被跟踪接口的完整状态快照
	InterfaceStates() []types.InterfaceStatus

	// LastKeepalive 返回最近一次硬件保活标记
	//
	// 保活未启用或尚未触发时第二个返回值为 false。
	LastKeepalive() (types.KeepaliveMarker, bool)

	// ActivateRelayQos 在当前活跃接口上启用中继整形
	//
	// 无活跃接口时为成功的空操作。
	ActivateRelayQos(ctx context.Context) error

	// DeactivateRelayQos 停用中继整形
	DeactivateRelayQos(ctx context.Context) error
}
