// Package interfaces 定义回程链路子系统的公共接口
//
// 本文件定义接口状态机。
package interfaces

import (
	"time"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
// StateMachine 接口状态机
// ════════════════════════════════════════════════════════════════════════════

// StateMachine 维护单个接口的去抖状态
//
// 状态机吸收短暂抖动：事件先经最小驻留时间与逐迁移
// 保持时间过滤，到期后才真正迁移。物理断链事件绕过
// 全部去抖立即生效。所有方法并发安全。
type StateMachine interface {
	// Interface 返回状态机绑定的接口名
	Interface() string

	// State 返回当前状态
	State() types.InterfaceState

	// TimeInState 返回当前状态的持续时长
	TimeInState() time.Duration

	// HandleEvent 提交一个事件，返回是否发生了状态迁移
	//
	// 事件可能被立即应用、排队等待去抖到期、或因与当前
	// 状态无对应迁移而丢弃。EventPhysicalDown 立即迁移
	// 到 DOWN 并清空排队事件。
	HandleEvent(event types.StateEvent) bool

	// Tick 推进去抖计时，返回是否因排队事件到期而迁移
	//
	// 编排器每轮调用一次。无排队事件时为空操作。
	Tick() bool

	// ForceState 无视去抖直接设置状态
	//
	// 仅用于管理面干预与测试，正常路径不使用。
	ForceState(state types.InterfaceState)
}
