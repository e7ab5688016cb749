// Package qos 实现中继流量的带宽保障
//
// qos 模块在活跃回程接口上安装 Linux tc 整形规则：
//
//  1. HTB 根队列，两个叶子类：
//     - 1:10 中继流量（高优先级，带宽下限保障，可突发到上限）
//     - 1:20 本机流量（低优先级，保底带宽，尽力而为）
//  2. 可选的 fq_codel 挂在中继类上，抑制队列膨胀带来的时延
//  3. u32 DSCP 过滤器把已标记的报文导入中继类；HTB 默认类
//     同为 1:10，未标记的中继连接同样受益
//
// 根类速率取链路总容量而非各类保障速率之和：保障速率之和
// 只是下限约束，以其作为根类速率会把空闲带宽整体封顶。
package qos

import (
	"context"
	"fmt"
	"sync"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/internal/util/logger"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
)

// 包级别日志实例
var log = logger.Logger("qos")

// ============================================================================
//                              QoS 管理器
// ============================================================================

// Manager 中继 QoS 管理器
//
// 实现 interfaces.QosManager。整形规则同一时刻只绑定
// 一个接口；Activate/Deactivate 均幂等。
type Manager struct {
	cfg    config.RelayQosConfig
	runner interfaces.Runner

	mu     sync.Mutex
	active string
}

// NewManager 创建 QoS 管理器
func NewManager(cfg config.RelayQosConfig, runner interfaces.Runner) *Manager {
	return &Manager{
		cfg:    cfg,
		runner: runner,
	}
}

// Activate 在指定接口上安装整形规则
func (m *Manager) Activate(ctx context.Context, ifaceName string) error {
	if !m.cfg.Enabled {
		log.Debug("中继整形未启用，跳过安装")
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == ifaceName {
		return nil
	}
	if m.active != "" {
		// 整形跟随活跃接口迁移：先拆旧再装新
		m.teardownLocked(ctx, m.active)
		m.active = ""
	}

	if err := m.installLocked(ctx, ifaceName); err != nil {
		// 安装中途失败时不留半套规则
		m.teardownLocked(ctx, ifaceName)
		return err
	}

	m.active = ifaceName
	log.Info("中继整形已安装",
		"iface", ifaceName,
		"capacity_kbps", m.cfg.LinkCapacityKbps,
		"relay_min_kbps", m.cfg.RelayMinKbps,
		"fq_codel", m.cfg.UseFqCodel)
	return nil
}

// Deactivate 拆除当前整形规则
func (m *Manager) Deactivate(ctx context.Context) error {
	if !m.cfg.Enabled {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == "" {
		return nil
	}
	m.teardownLocked(ctx, m.active)
	log.Info("中继整形已拆除", "iface", m.active)
	m.active = ""
	return nil
}

// ActiveInterface 返回当前安装整形规则的接口名
func (m *Manager) ActiveInterface() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == "" {
		return "", false
	}
	return m.active, true
}

// installLocked 安装整套整形规则
func (m *Manager) installLocked(ctx context.Context, iface string) error {
	capacity := fmt.Sprintf("%dkbit", m.cfg.LinkCapacityKbps)
	relayMin := fmt.Sprintf("%dkbit", m.cfg.RelayMinKbps)
	relayCeil := fmt.Sprintf("%dkbit", m.cfg.RelayCeilKbps)
	nodeMin := fmt.Sprintf("%dkbit", m.cfg.NodeMinKbps)

	// 预先清掉可能残留的根队列，失败属于正常情况
	if err := m.runner.Run(ctx, "tc", "qdisc", "del", "dev", iface, "root"); err != nil {
		log.Debug("移除既有根队列失败（通常表示不存在）", "iface", iface, "err", err)
	}

	// 根 HTB 队列，默认类 1:10，未标记的中继连接同样进入高优类
	if err := m.runner.Run(ctx, "tc",
		"qdisc", "add", "dev", iface, "root", "handle", "1:", "htb", "default", "10"); err != nil {
		return fmt.Errorf("add htb root on %s: %w", iface, err)
	}

	// 根类：速率为链路总容量
	if err := m.runner.Run(ctx, "tc",
		"class", "add", "dev", iface, "parent", "1:", "classid", "1:1", "htb",
		"rate", capacity); err != nil {
		return fmt.Errorf("add root class on %s: %w", iface, err)
	}

	// 中继类 1:10：高优先级，保障下限，可突发到上限
	if err := m.runner.Run(ctx, "tc",
		"class", "add", "dev", iface, "parent", "1:1", "classid", "1:10", "htb",
		"rate", relayMin, "ceil", relayCeil, "prio", "1"); err != nil {
		return fmt.Errorf("add relay class on %s: %w", iface, err)
	}

	// 本机类 1:20：低优先级，保底带宽，可用满链路容量
	if err := m.runner.Run(ctx, "tc",
		"class", "add", "dev", iface, "parent", "1:1", "classid", "1:20", "htb",
		"rate", nodeMin, "ceil", capacity, "prio", "2"); err != nil {
		return fmt.Errorf("add node class on %s: %w", iface, err)
	}

	// fq_codel 主动队列管理，抑制中继类的队列膨胀
	if m.cfg.UseFqCodel {
		if err := m.runner.Run(ctx, "tc",
			"qdisc", "add", "dev", iface, "parent", "1:10", "handle", "10:", "fq_codel"); err != nil {
			return fmt.Errorf("add fq_codel on %s: %w", iface, err)
		}
	}

	// DSCP 过滤器：TOS 字节高 6 位为 DSCP（DSCP << 2）
	dscpTos := fmt.Sprintf("0x%02x", uint32(m.cfg.RelayDSCP)<<2)
	if err := m.runner.Run(ctx, "tc",
		"filter", "add", "dev", iface, "protocol", "ip", "parent", "1:", "prio", "1",
		"u32", "match", "ip", "tos", dscpTos, "0xfc", "flowid", "1:10"); err != nil {
		return fmt.Errorf("add dscp filter on %s: %w", iface, err)
	}

	return nil
}

// teardownLocked 拆除根队列，子类与过滤器随之移除
//
// 根队列不存在时命令失败，视为成功。
func (m *Manager) teardownLocked(ctx context.Context, iface string) {
	if err := m.runner.Run(ctx, "tc", "qdisc", "del", "dev", iface, "root"); err != nil {
		log.Debug("移除根队列失败（通常表示已不存在）", "iface", iface, "err", err)
	}
}

// 编译期接口断言
var _ interfaces.QosManager = (*Manager)(nil)
