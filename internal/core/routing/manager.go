// Package routing 实现策略路由切换
//
// routing 模块负责：
// - 为每个接口分配稳定的路由表号（有界区间内回绕复用）
// - 以"先建后拆"顺序原子切换默认出口
// - 切换回退与关停清理
package routing

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/internal/util/logger"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
	"github.com/dep2p/go-backhaul/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("routing")

// ============================================================================
//                              表号与规则
// ============================================================================

// assignment 接口的路由资源分配
type assignment struct {
	iface    string
	tableID  int
	sourceIP string
}

// ruleArgs 构造策略规则的参数（add/del 共用同一组参数）
func (a *assignment) ruleArgs(priority int) []string {
	from := a.sourceIP
	if from == "" {
		from = "all"
	}
	return []string{
		"from", from,
		"lookup", strconv.Itoa(a.tableID),
		"pref", strconv.Itoa(priority),
	}
}

// ============================================================================
//                              路由管理器
// ============================================================================

// Manager 策略路由切换器
//
// 实现 interfaces.RouteSwitcher。切换严格按序执行：
//
//	填充新路由表 → 添加新策略规则 → 移除旧策略规则 → 记录活跃
//
// 前两步任一失败立即中止，旧规则与活跃记录原封不动，
// 切换过程中不存在无默认路由的窗口。
type Manager struct {
	cfg    config.RoutingConfig
	runner interfaces.Runner

	mu          sync.Mutex
	assignments map[string]*assignment
	nextID      int
	active      *assignment
	previous    *assignment
}

// NewManager 创建路由管理器
func NewManager(cfg config.RoutingConfig, runner interfaces.Runner) *Manager {
	return &Manager{
		cfg:         cfg,
		runner:      runner,
		assignments: make(map[string]*assignment),
		nextID:      cfg.TableIDBase,
	}
}

// SwitchActive 将默认出口切换到指定接口
func (m *Manager) SwitchActive(ctx context.Context, info types.InterfaceInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil && m.active.iface == info.Name {
		return nil
	}

	next := m.assignLocked(info)

	if m.cfg.MonitorOnly {
		// 监视模式：记录切换意图但不触碰系统路由
		log.Info("监视模式：跳过路由切换",
			"iface", info.Name, "table", next.tableID)
		m.previous = m.active
		m.active = next
		return nil
	}

	// 第一步：填充新路由表（非破坏性，失败即中止）
	if err := m.populateTable(ctx, next, info); err != nil {
		return fmt.Errorf("populate table %d for %s: %w", next.tableID, info.Name, err)
	}

	// 第二步：添加新策略规则（旧规则仍在，失败即中止）
	if err := m.runner.Run(ctx, "ip", append([]string{"rule", "add"}, next.ruleArgs(m.cfg.RulePriority)...)...); err != nil {
		return fmt.Errorf("add rule for %s: %w", info.Name, err)
	}

	// 第三步：移除旧策略规则（新规则已生效，失败仅告警）
	if m.active != nil {
		if err := m.runner.Run(ctx, "ip", append([]string{"rule", "del"}, m.active.ruleArgs(m.cfg.RulePriority)...)...); err != nil {
			log.Warn("移除旧策略规则失败",
				"iface", m.active.iface, "table", m.active.tableID, "err", err)
		}
	}

	// 第四步：记录活跃接口
	m.previous = m.active
	m.active = next
	log.Info("默认出口已切换",
		"iface", info.Name, "table", next.tableID, "source", next.sourceIP)
	return nil
}

// Active 返回当前活跃接口名
func (m *Manager) Active() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return "", false
	}
	return m.active.iface, true
}

// ActiveTable 返回当前活跃接口的路由表号
func (m *Manager) ActiveTable() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return 0, false
	}
	return m.active.tableID, true
}

// Rollback 撤销最近一次成功切换，恢复前一个出口
//
// 前一个出口的路由表仍然在位，只需恢复其策略规则。
// 没有可回退的历史时为成功的空操作，可重复调用。
func (m *Manager) Rollback(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.previous == nil {
		log.Debug("无前一出口可回退，跳过")
		return nil
	}

	prev, cur := m.previous, m.active
	if !m.cfg.MonitorOnly {
		if err := m.runner.Run(ctx, "ip", append([]string{"rule", "add"}, prev.ruleArgs(m.cfg.RulePriority)...)...); err != nil {
			return fmt.Errorf("restore rule for %s: %w", prev.iface, err)
		}
		if cur != nil {
			if err := m.runner.Run(ctx, "ip", append([]string{"rule", "del"}, cur.ruleArgs(m.cfg.RulePriority)...)...); err != nil {
				log.Warn("回退时移除当前规则失败", "iface", cur.iface, "err", err)
			}
		}
	}

	m.active = prev
	m.previous = nil
	log.Info("已回退到前一出口", "iface", prev.iface, "table", prev.tableID)
	return nil
}

// Cleanup 移除本管理器创建的全部路由表与规则
//
// 逐项清理并聚合所有错误，不因单项失败而中断。
// 清理后管理器回到初始状态，可重复调用。
func (m *Manager) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs error
	if !m.cfg.MonitorOnly {
		if m.active != nil {
			if err := m.runner.Run(ctx, "ip", append([]string{"rule", "del"}, m.active.ruleArgs(m.cfg.RulePriority)...)...); err != nil {
				// 规则可能已被外部移除，按告警处理
				log.Warn("清理策略规则失败", "iface", m.active.iface, "err", err)
			}
		}
		for _, a := range m.assignments {
			if err := m.runner.Run(ctx, "ip", "route", "flush", "table", strconv.Itoa(a.tableID)); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("flush table %d: %w", a.tableID, err))
			}
		}
	}

	m.assignments = make(map[string]*assignment)
	m.active = nil
	m.previous = nil
	m.nextID = m.cfg.TableIDBase
	return errs
}

// Forget 释放接口的路由资源（接口消失时调用）
//
// 活跃接口不会被释放，以免拆掉正在承载流量的路由。
func (m *Manager) Forget(ctx context.Context, ifaceName string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil && m.active.iface == ifaceName {
		return
	}
	a, ok := m.assignments[ifaceName]
	if !ok {
		return
	}
	if !m.cfg.MonitorOnly {
		if err := m.runner.Run(ctx, "ip", "route", "flush", "table", strconv.Itoa(a.tableID)); err != nil {
			log.Warn("释放路由表失败", "iface", ifaceName, "table", a.tableID, "err", err)
		}
	}
	delete(m.assignments, ifaceName)
	if m.previous != nil && m.previous.iface == ifaceName {
		m.previous = nil
	}
}

// assignLocked 返回接口的路由资源分配，必要时新建
//
// 同一接口的表号保持稳定；新表号在 [base, max] 区间内
// 顺序分配，耗尽后回绕并告警。
func (m *Manager) assignLocked(info types.InterfaceInfo) *assignment {
	if a, ok := m.assignments[info.Name]; ok {
		a.sourceIP = info.PrimaryIPv4()
		return a
	}

	inUse := make(map[int]bool, len(m.assignments))
	for _, a := range m.assignments {
		inUse[a.tableID] = true
	}

	rangeSize := m.cfg.TableIDMax - m.cfg.TableIDBase + 1
	id := m.nextID
	for i := 0; inUse[id] && i < rangeSize; i++ {
		id++
		if id > m.cfg.TableIDMax {
			id = m.cfg.TableIDBase
		}
	}
	if inUse[id] {
		// 区间内全部表号都有归属，只能复用：接口数超过
		// 表号区间属于配置不当，告警后继续
		log.Warn("路由表号全部占用，复用表号", "table", id)
	}
	m.nextID = id + 1
	if m.nextID > m.cfg.TableIDMax {
		log.Warn("路由表号区间耗尽，回绕复用",
			"base", m.cfg.TableIDBase, "max", m.cfg.TableIDMax)
		m.nextID = m.cfg.TableIDBase
	}

	a := &assignment{
		iface:    info.Name,
		tableID:  id,
		sourceIP: info.PrimaryIPv4(),
	}
	m.assignments[info.Name] = a
	return a
}

// populateTable 清空并重建接口的专属路由表
func (m *Manager) populateTable(ctx context.Context, a *assignment, info types.InterfaceInfo) error {
	table := strconv.Itoa(a.tableID)
	if err := m.runner.Run(ctx, "ip", "route", "flush", "table", table); err != nil {
		return err
	}

	args := []string{"route", "add", "default"}
	if gw := m.detectGateway(ctx, info.Name); gw != "" {
		args = append(args, "via", gw)
	}
	args = append(args, "dev", info.Name, "table", table)
	return m.runner.Run(ctx, "ip", args...)
}

// detectGateway 解析接口的默认网关
//
// 读取主表中该接口的默认路由，解析 "via" 字段。
// 点对点链路没有网关，返回空串，默认路由仅挂设备。
func (m *Manager) detectGateway(ctx context.Context, ifaceName string) string {
	out, err := m.runner.Output(ctx, "ip", "route", "show", "default", "dev", ifaceName)
	if err != nil {
		return ""
	}
	fields := strings.Fields(string(out))
	for i, f := range fields {
		if f == "via" && i+1 < len(fields) {
			return fields[i+1]
		}
	}
	return ""
}

// 编译期接口断言
var _ interfaces.RouteSwitcher = (*Manager)(nil)
