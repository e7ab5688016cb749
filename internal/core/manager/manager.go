// Package manager 实现回程链路编排器
//
// manager 模块驱动周期性评估循环，把发现、探测、状态机、
// 评分、切换各组件串成完整的故障转移管线：
//
//	同步注册表 → 并发探测 → 投递事件 → 评分 → 选优 → 切换
//
// 循环内各阶段严格按序执行；仅探测阶段在接口之间并发，
// 且在投递事件前全部汇合，保证单轮内的观察一致性。
package manager

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/benbjohnson/clock"
	"go.uber.org/multierr"
	"golang.org/x/sync/semaphore"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/internal/core/fsm"
	"github.com/dep2p/go-backhaul/internal/core/health"
	"github.com/dep2p/go-backhaul/internal/core/metrics"
	"github.com/dep2p/go-backhaul/internal/core/netiface"
	"github.com/dep2p/go-backhaul/internal/util/logger"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
	"github.com/dep2p/go-backhaul/pkg/types"
)

// 包级别日志实例
var log = logger.Logger("manager")

// ============================================================================
//                              编排器
// ============================================================================

// Manager 回程链路编排器
//
// 实现 interfaces.Manager。接口的状态机与统计按需创建
// （接口首次出现时），接口消失后同步清理，不产生泄漏。
type Manager struct {
	cfg       *config.Config
	clk       clock.Clock
	discovery *netiface.Discovery
	registry  interfaces.Registry
	prober    interfaces.Prober
	scorer    interfaces.Scorer
	router    interfaces.RouteSwitcher
	qos       interfaces.QosManager
	metrics   *metrics.Metrics
	keepalive *keepaliveEmitter

	mu            sync.RWMutex
	machines      map[string]interfaces.StateMachine
	scores        map[string]types.InterfaceScore
	relayQosBound bool

	loopMu  sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// Deps 编排器的组件依赖
type Deps struct {
	Discovery *netiface.Discovery
	Registry  interfaces.Registry
	Prober    interfaces.Prober
	Scorer    interfaces.Scorer
	Router    interfaces.RouteSwitcher
	Qos       interfaces.QosManager
	Metrics   *metrics.Metrics
	Clock     clock.Clock
}

// NewManager 创建编排器
func NewManager(cfg *config.Config, deps Deps) *Manager {
	return &Manager{
		cfg:       cfg,
		clk:       deps.Clock,
		discovery: deps.Discovery,
		registry:  deps.Registry,
		prober:    deps.Prober,
		scorer:    deps.Scorer,
		router:    deps.Router,
		qos:       deps.Qos,
		metrics:   deps.Metrics,
		keepalive: newKeepaliveEmitter(cfg.Keepalive, deps.Clock),
		machines:  make(map[string]interfaces.StateMachine),
		scores:    make(map[string]types.InterfaceScore),
	}
}

// Start 启动评估循环
func (m *Manager) Start(_ context.Context) error {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()
	if m.started {
		return nil
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.done = make(chan struct{})
	m.started = true

	// 返回前建好定时器，启动即可确定地被时钟推进
	ticker := m.clk.Ticker(m.cfg.Probe.Interval)
	go m.loop(loopCtx, ticker)

	log.Info("评估循环启动", "interval", m.cfg.Probe.Interval)
	return nil
}

// Stop 停止评估循环并尽力清理路由与整形规则
func (m *Manager) Stop(ctx context.Context) error {
	m.loopMu.Lock()
	if m.started {
		m.cancel()
		<-m.done
		m.started = false
	}
	m.loopMu.Unlock()

	var errs error
	if err := m.qos.Deactivate(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("deactivate relay qos: %w", err))
	}
	if err := m.router.Cleanup(ctx); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("cleanup routing: %w", err))
	}

	log.Info("编排器已停止")
	return errs
}

// loop 评估循环主体
func (m *Manager) loop(ctx context.Context, ticker *clock.Ticker) {
	defer close(m.done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Tick(ctx); err != nil {
				log.Warn("评估循环单轮失败", "err", err)
			}
		}
	}
}

// Tick 执行一轮评估
func (m *Manager) Tick(ctx context.Context) error {
	// 第一步：同步接口注册表
	m.discovery.Refresh()
	infos := m.registry.List()

	// 第二步：对齐状态机集合（新接口建机、消失接口清理）
	m.syncMachines(infos)

	// 第三步：并发探测候选接口，汇合后再继续
	candidates := make([]types.InterfaceInfo, 0, len(infos))
	for _, info := range infos {
		if info.IsCandidate() {
			candidates = append(candidates, info)
		}
	}
	m.probeAll(ctx, candidates)

	// 第四步：投递事件并推进各状态机的去抖计时
	m.feedMachines(infos)

	// 第五步：评分
	m.updateScores(infos)

	// 第六步：在 UP 状态接口中选优并切换
	m.selectAndSwitch(ctx, infos)

	// 第七步：发射硬件保活标记（限频窗口内静默）
	if marker, ok := m.keepalive.emit(); ok {
		m.metrics.ObserveKeepalive(marker)
	}

	return ctx.Err()
}

// syncMachines 对齐状态机集合
func (m *Manager) syncMachines(infos []types.InterfaceInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]bool, len(infos))
	for _, info := range infos {
		seen[info.Name] = true
		if _, ok := m.machines[info.Name]; !ok {
			m.machines[info.Name] = fsm.NewMachine(info.Name, m.cfg.StateMachine, m.clk)
		}
	}

	for name := range m.machines {
		if seen[name] {
			continue
		}
		delete(m.machines, name)
		delete(m.scores, name)
		m.prober.Forget(name)
		m.metrics.ForgetInterface(name)
		log.Info("清理消失接口的跟踪状态", "iface", name)
	}
}

// probeAll 并发探测候选接口，受配置的并发上限约束
func (m *Manager) probeAll(ctx context.Context, candidates []types.InterfaceInfo) {
	if len(candidates) == 0 {
		return
	}

	sem := semaphore.NewWeighted(int64(m.cfg.Probe.MaxConcurrentProbes))
	var wg sync.WaitGroup
	for _, info := range candidates {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(info types.InterfaceInfo) {
			defer wg.Done()
			defer sem.Release(1)

			result := m.prober.Probe(ctx, info)
			m.metrics.ObserveProbe(info.Name, result.Success)
		}(info)
	}
	wg.Wait()
}

// feedMachines 将探测统计折算为事件投递给状态机
//
// 接口按名称升序处理，保证事件投递顺序确定。
func (m *Manager) feedMachines(infos []types.InterfaceInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, info := range infos {
		machine, ok := m.machines[info.Name]
		if !ok {
			continue
		}

		if !info.Up || !info.Carrier {
			// 链路物理不可用：绕过去抖
			machine.HandleEvent(types.EventPhysicalDown)
		} else if machine.State() == types.StateDown {
			machine.HandleEvent(types.EventPhysicalUp)
		}

		if info.IsCandidate() {
			if stats, ok := m.prober.Stats(info.Name); ok {
				event := health.EventFor(stats, m.cfg.Probe.DegradedThreshold, m.cfg.Probe.DownThreshold)
				machine.HandleEvent(event)
			}
		}

		machine.Tick()
		m.metrics.ObserveState(info.Name, machine.State())
	}
}

// updateScores 为所有被跟踪接口计算综合评分
func (m *Manager) updateScores(infos []types.InterfaceInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, info := range infos {
		if _, ok := m.machines[info.Name]; !ok {
			continue
		}
		stats, _ := m.prober.Stats(info.Name)
		score := m.scorer.Score(info, stats)
		m.scores[info.Name] = score
		m.metrics.ObserveScore(score)
	}
}

// selectAndSwitch 在 UP 状态接口中选优并执行切换
//
// 切换失败只记日志与指标，活跃记录保持不变，下一轮
// 自动重试。没有任何 UP 接口时保持现状。
func (m *Manager) selectAndSwitch(ctx context.Context, infos []types.InterfaceInfo) {
	best, ok := m.pickBest(infos)
	if !ok {
		return
	}

	active, hasActive := m.router.Active()
	if hasActive && active == best.Name {
		return
	}

	if err := m.router.SwitchActive(ctx, best); err != nil {
		m.metrics.ObserveSwitch(false)
		log.Warn("默认出口切换失败，下一轮重试",
			"iface", best.Name, "err", err)
		return
	}

	m.metrics.ObserveSwitch(true)
	m.metrics.SetActive(best.Name)
	log.Info("默认出口切换完成", "iface", best.Name, "previous", active)

	// 中继整形跟随活跃接口迁移
	m.mu.RLock()
	bound := m.relayQosBound
	m.mu.RUnlock()
	if bound {
		if err := m.qos.Activate(ctx, best.Name); err != nil {
			log.Warn("中继整形迁移失败", "iface", best.Name, "err", err)
		}
	}
}

// pickBest 返回评分最高的 UP 状态候选接口
func (m *Manager) pickBest(infos []types.InterfaceInfo) (types.InterfaceInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var (
		best      types.InterfaceInfo
		bestScore types.InterfaceScore
		found     bool
	)
	for _, info := range infos {
		if !info.IsCandidate() {
			continue
		}
		machine, ok := m.machines[info.Name]
		if !ok || machine.State() != types.StateUp {
			continue
		}
		score, ok := m.scores[info.Name]
		if !ok {
			continue
		}
		if !found || m.scorer.Better(score, bestScore) {
			best = info
			bestScore = score
			found = true
		}
	}
	return best, found
}

// ============================================================================
//                              观测接口
// ============================================================================

// CurrentBackhaul 返回当前活跃回程链路
func (m *Manager) CurrentBackhaul() (types.ActiveBackhaul, bool) {
	active, ok := m.router.Active()
	if !ok {
		return types.ActiveBackhaul{}, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := types.ActiveBackhaul{Interface: active}
	if machine, ok := m.machines[active]; ok {
		out.State = machine.State()
	}
	if score, ok := m.scores[active]; ok {
		out.Score = score.Total
	}
	return out, true
}

// InterfaceStates 返回所有被跟踪接口的完整状态快照
func (m *Manager) InterfaceStates() []types.InterfaceStatus {
	infos := m.registry.List()

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.InterfaceStatus, 0, len(infos))
	for _, info := range infos {
		machine, ok := m.machines[info.Name]
		if !ok {
			continue
		}
		status := types.InterfaceStatus{
			Info:        info,
			State:       machine.State(),
			TimeInState: machine.TimeInState(),
		}
		if score, ok := m.scores[info.Name]; ok {
			status.Score = score
		}
		if stats, ok := m.prober.Stats(info.Name); ok {
			status.Health = stats
		}
		out = append(out, status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Info.Name < out[j].Info.Name })
	return out
}

// LastKeepalive 返回最近一次硬件保活标记
func (m *Manager) LastKeepalive() (types.KeepaliveMarker, bool) {
	return m.keepalive.last()
}

// ActivateRelayQos 在当前活跃接口上启用中继整形
func (m *Manager) ActivateRelayQos(ctx context.Context) error {
	m.mu.Lock()
	m.relayQosBound = true
	m.mu.Unlock()

	active, ok := m.router.Active()
	if !ok {
		// 尚无活跃接口：记住意图，等切换成功后再安装
		log.Debug("无活跃接口，中继整形延迟安装")
		return nil
	}
	return m.qos.Activate(ctx, active)
}

// DeactivateRelayQos 停用中继整形
func (m *Manager) DeactivateRelayQos(ctx context.Context) error {
	m.mu.Lock()
	m.relayQosBound = false
	m.mu.Unlock()
	return m.qos.Deactivate(ctx)
}

// 编译期接口断言
var _ interfaces.Manager = (*Manager)(nil)
