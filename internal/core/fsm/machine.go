// Package fsm 实现单接口的去抖状态机
//
// fsm 模块负责：
// - 维护接口的 PROBING/UP/DEGRADED/DOWN 状态
// - 通过最小驻留时间与逐迁移保持时间吸收抖动
// - 物理断链事件绕过全部去抖立即生效
package fsm

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/internal/util/logger"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
	"github.com/dep2p/go-backhaul/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("fsm")

// ============================================================================
//                              迁移表
// ============================================================================

// transitionKey 迁移表键：当前状态 + 触发事件
type transitionKey struct {
	state types.InterfaceState
	event types.StateEvent
}

// transitions 探测事件迁移表
//
// 表中未列出的 (状态, 事件) 组合不产生迁移。
// 物理事件不走此表，在 HandleEvent 中单独处理。
var transitions = map[transitionKey]types.InterfaceState{
	{types.StateUp, types.EventDegradedProbe}: types.StateDegraded,
	{types.StateUp, types.EventFailedProbe}:   types.StateDegraded,

	{types.StateDegraded, types.EventHealthyProbe}: types.StateUp,
	{types.StateDegraded, types.EventFailedProbe}:  types.StateDown,

	{types.StateDown, types.EventHealthyProbe}:  types.StateProbing,
	{types.StateDown, types.EventDegradedProbe}: types.StateProbing,

	{types.StateProbing, types.EventHealthyProbe}:  types.StateUp,
	{types.StateProbing, types.EventDegradedProbe}: types.StateDegraded,
	{types.StateProbing, types.EventFailedProbe}:   types.StateDown,
}

// ============================================================================
//                              状态机
// ============================================================================

// pendingEvent 等待去抖到期的排队事件
type pendingEvent struct {
	event    types.StateEvent
	target   types.InterfaceState
	queuedAt time.Time
}

// Machine 单接口的去抖状态机
//
// 实现 interfaces.StateMachine。初始状态为 PROBING。
// 所有方法并发安全。
type Machine struct {
	cfg   config.StateMachineConfig
	clk   clock.Clock
	iface string

	mu        sync.Mutex
	state     types.InterfaceState
	enteredAt time.Time
	pending   *pendingEvent
}

// NewMachine 创建接口状态机，初始状态 PROBING
func NewMachine(iface string, cfg config.StateMachineConfig, clk clock.Clock) *Machine {
	return &Machine{
		cfg:       cfg,
		clk:       clk,
		iface:     iface,
		state:     types.StateProbing,
		enteredAt: clk.Now(),
	}
}

// Interface 返回状态机绑定的接口名
func (m *Machine) Interface() string {
	return m.iface
}

// State 返回当前状态
func (m *Machine) State() types.InterfaceState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// TimeInState 返回当前状态的持续时长
func (m *Machine) TimeInState() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clk.Now().Sub(m.enteredAt)
}

// HandleEvent 提交一个事件，返回是否发生了状态迁移
func (m *Machine) HandleEvent(event types.StateEvent) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch event {
	case types.EventPhysicalDown:
		// 物理断链：绕过全部去抖立即落到 DOWN
		return m.forceLocked(types.StateDown)
	case types.EventPhysicalUp:
		// 物理恢复：仅当处于 DOWN 时立即回到 PROBING 重新评估
		if m.state == types.StateDown {
			return m.forceLocked(types.StateProbing)
		}
		return false
	}

	target, ok := transitions[transitionKey{m.state, event}]
	if !ok {
		// 事件表明当前状态稳定，撤销排队中的迁移
		if m.pending != nil {
			log.Debug("撤销排队迁移",
				"iface", m.iface, "state", m.state.String(), "pending", m.pending.target.String())
			m.pending = nil
		}
		return false
	}

	// 同类事件保留原排队时间（条件持续累计），
	// 异类事件替换排队并重新计时。
	if m.pending == nil || m.pending.event != event {
		m.pending = &pendingEvent{
			event:    event,
			target:   target,
			queuedAt: m.clk.Now(),
		}
		log.Debug("迁移进入排队",
			"iface", m.iface, "state", m.state.String(), "target", target.String())
	}

	if m.debounceSatisfied(m.pending) {
		m.applyLocked(m.pending.target)
		return true
	}
	return false
}

// Tick 推进去抖计时，返回是否因排队事件到期而迁移
func (m *Machine) Tick() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return false
	}
	if !m.debounceSatisfied(m.pending) {
		return false
	}

	m.applyLocked(m.pending.target)
	return true
}

// ForceState 无视去抖直接设置状态
func (m *Machine) ForceState(state types.InterfaceState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forceLocked(state)
}

// debounceSatisfied 判断排队迁移是否已满足去抖约束
//
// 两个约束须同时满足：
//   - 最小驻留时间从进入当前状态起计
//   - 迁移保持时间从条件首次排队起计（条件必须持续）
func (m *Machine) debounceSatisfied(p *pendingEvent) bool {
	now := m.clk.Now()
	if now.Sub(m.enteredAt) < m.cfg.MinStateDuration {
		return false
	}
	return now.Sub(p.queuedAt) >= m.holdDownFor(p.target)
}

// holdDownFor 返回当前状态到 target 的保持时间
//
// 未配置的迁移方向保持时间为 0，仅受最小驻留时间约束。
func (m *Machine) holdDownFor(target types.InterfaceState) time.Duration {
	switch {
	case m.state == types.StateUp && target == types.StateDegraded:
		return m.cfg.UpToDegradedHoldDown
	case m.state == types.StateDegraded && target == types.StateDown:
		return m.cfg.DegradedToDownHoldDown
	case m.state == types.StateDown && target == types.StateProbing:
		return m.cfg.DownToProbingHoldDown
	case m.state == types.StateProbing && target == types.StateUp:
		return m.cfg.ProbingToUpHoldDown
	default:
		return 0
	}
}

// applyLocked 执行迁移：更新状态、重置驻留计时、清空排队
func (m *Machine) applyLocked(target types.InterfaceState) {
	log.Info("接口状态迁移",
		"iface", m.iface, "from", m.state.String(), "to", target.String())
	m.state = target
	m.enteredAt = m.clk.Now()
	m.pending = nil
}

// forceLocked 无视去抖直接设置状态，返回状态是否变化
func (m *Machine) forceLocked(state types.InterfaceState) bool {
	m.pending = nil
	if m.state == state {
		return false
	}
	log.Info("接口状态强制迁移",
		"iface", m.iface, "from", m.state.String(), "to", state.String())
	m.state = state
	m.enteredAt = m.clk.Now()
	return true
}

// 编译期接口断言
var _ interfaces.StateMachine = (*Machine)(nil)
