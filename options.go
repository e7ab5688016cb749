package backhaul

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
	"github.com/dep2p/go-backhaul/pkg/types"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 日志配置
	logFile string

	// 发现配置
	discoveryInterval time.Duration

	// 探测配置
	probe struct {
		interval            time.Duration
		timeout             time.Duration
		targets             []types.ProbeTarget
		degradedThreshold   int
		downThreshold       int
		maxConcurrentProbes int
	}

	// 配置段整体覆盖（UserConfig 路径）
	scoring      *ScoringUserConfig
	stateMachine *StateMachineUserConfig
	routing      *RoutingUserConfig
	relayQos     *RelayQosUserConfig

	// 监视模式
	monitorOnly *bool

	// 保活配置
	keepalive struct {
		enable      *bool
		minInterval time.Duration
	}

	// 自省服务配置
	introspect struct {
		enable *bool
		addr   string
	}

	// 注入组件（测试与嵌入场景）
	runner     interfaces.Runner
	enumerator interfaces.Enumerator
	clock      clock.Clock
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{}
}

// toInternalConfig 转换为内部配置
func (o *options) toInternalConfig() *config.Config {
	cfg := config.NewConfig()

	cfg.LogFile = o.logFile

	if o.discoveryInterval > 0 {
		cfg.Discovery.PollInterval = o.discoveryInterval
	}

	// 覆盖: 探测配置
	if o.probe.interval > 0 {
		cfg.Probe.Interval = o.probe.interval
	}
	if o.probe.timeout > 0 {
		cfg.Probe.Timeout = o.probe.timeout
	}
	if len(o.probe.targets) > 0 {
		cfg.Probe.Targets = o.probe.targets
	}
	if o.probe.degradedThreshold > 0 {
		cfg.Probe.DegradedThreshold = o.probe.degradedThreshold
	}
	if o.probe.downThreshold > 0 {
		cfg.Probe.DownThreshold = o.probe.downThreshold
	}
	if o.probe.maxConcurrentProbes > 0 {
		cfg.Probe.MaxConcurrentProbes = o.probe.maxConcurrentProbes
	}

	// 覆盖: 评分配置
	if s := o.scoring; s != nil {
		if s.LatencyWeight > 0 {
			cfg.Scoring.LatencyWeight = s.LatencyWeight
		}
		if s.LossWeight > 0 {
			cfg.Scoring.LossWeight = s.LossWeight
		}
		if s.SuccessWeight > 0 {
			cfg.Scoring.SuccessWeight = s.SuccessWeight
		}
		if s.MaxRTT > 0 {
			cfg.Scoring.MaxRTT = s.MaxRTT.Duration()
		}
		if s.MaxLossPercent > 0 {
			cfg.Scoring.MaxLossPercent = s.MaxLossPercent
		}
		if s.DisablePolicyBias {
			cfg.Scoring.EnablePolicyBias = false
		}
		if s.BiasMultiplier > 0 {
			cfg.Scoring.BiasMultiplier = s.BiasMultiplier
		}
	}

	// 覆盖: 状态机防抖配置
	if s := o.stateMachine; s != nil {
		if s.UpToDegradedHoldDown > 0 {
			cfg.StateMachine.UpToDegradedHoldDown = s.UpToDegradedHoldDown.Duration()
		}
		if s.DegradedToDownHoldDown > 0 {
			cfg.StateMachine.DegradedToDownHoldDown = s.DegradedToDownHoldDown.Duration()
		}
		if s.DownToProbingHoldDown > 0 {
			cfg.StateMachine.DownToProbingHoldDown = s.DownToProbingHoldDown.Duration()
		}
		if s.ProbingToUpHoldDown > 0 {
			cfg.StateMachine.ProbingToUpHoldDown = s.ProbingToUpHoldDown.Duration()
		}
		if s.MinStateDuration > 0 {
			cfg.StateMachine.MinStateDuration = s.MinStateDuration.Duration()
		}
	}

	// 覆盖: 策略路由配置
	if r := o.routing; r != nil {
		if r.TableIDBase > 0 {
			cfg.Routing.TableIDBase = r.TableIDBase
		}
		if r.TableIDMax > 0 {
			cfg.Routing.TableIDMax = r.TableIDMax
		}
		if r.RulePriority > 0 {
			cfg.Routing.RulePriority = r.RulePriority
		}
		if r.MonitorOnly {
			cfg.Routing.MonitorOnly = true
		}
	}
	if o.monitorOnly != nil {
		cfg.Routing.MonitorOnly = *o.monitorOnly
	}

	// 覆盖: 中继整形配置
	if q := o.relayQos; q != nil {
		cfg.RelayQos.Enabled = q.Enabled
		if q.LinkCapacityKbps > 0 {
			cfg.RelayQos.LinkCapacityKbps = q.LinkCapacityKbps
		}
		if q.RelayMinKbps > 0 {
			cfg.RelayQos.RelayMinKbps = q.RelayMinKbps
		}
		if q.RelayCeilKbps > 0 {
			cfg.RelayQos.RelayCeilKbps = q.RelayCeilKbps
		}
		if q.NodeMinKbps > 0 {
			cfg.RelayQos.NodeMinKbps = q.NodeMinKbps
		}
		if q.DisableFqCodel {
			cfg.RelayQos.UseFqCodel = false
		}
		if q.RelayDSCP > 0 {
			cfg.RelayQos.RelayDSCP = q.RelayDSCP
		}
	}

	// 覆盖: 保活配置
	if o.keepalive.enable != nil {
		cfg.Keepalive.Enable = *o.keepalive.enable
	}
	if o.keepalive.minInterval > 0 {
		cfg.Keepalive.MinInterval = o.keepalive.minInterval
	}

	// 覆盖: 自省服务配置
	if o.introspect.enable != nil {
		cfg.Introspect.Enable = *o.introspect.enable
	}
	if o.introspect.addr != "" {
		cfg.Introspect.Addr = o.introspect.addr
	}

	return cfg
}

// ════════════════════════════════════════════════════════════════════════════
//                              日志选项
// ════════════════════════════════════════════════════════════════════════════

// WithLogFile 设置日志输出文件
//
// 为空时输出到 stderr。
func WithLogFile(path string) Option {
	return func(o *options) error {
		o.logFile = path
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              发现与探测选项
// ════════════════════════════════════════════════════════════════════════════

// WithDiscoveryInterval 设置接口枚举轮询间隔
func WithDiscoveryInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return fmt.Errorf("discovery interval must be positive, got %v", interval)
		}
		o.discoveryInterval = interval
		return nil
	}
}

// WithProbeInterval 设置探测间隔（评估循环周期）
func WithProbeInterval(interval time.Duration) Option {
	return func(o *options) error {
		if interval <= 0 {
			return fmt.Errorf("probe interval must be positive, got %v", interval)
		}
		o.probe.interval = interval
		return nil
	}
}

// WithProbeTimeout 设置单目标探测超时
func WithProbeTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		if timeout <= 0 {
			return fmt.Errorf("probe timeout must be positive, got %v", timeout)
		}
		o.probe.timeout = timeout
		return nil
	}
}

// WithProbeTargets 设置探测目标列表
//
// 覆盖内置的公共 DNS 目标。
func WithProbeTargets(targets ...types.ProbeTarget) Option {
	return func(o *options) error {
		if len(targets) == 0 {
			return fmt.Errorf("at least one probe target required")
		}
		o.probe.targets = targets
		return nil
	}
}

// WithProbeThresholds 设置降级与不可用阈值（连续失败次数）
func WithProbeThresholds(degraded, down int) Option {
	return func(o *options) error {
		o.probe.degradedThreshold = degraded
		o.probe.downThreshold = down
		return nil
	}
}

// WithMaxConcurrentProbes 设置跨接口探测的最大并发数
func WithMaxConcurrentProbes(n int) Option {
	return func(o *options) error {
		if n <= 0 {
			return fmt.Errorf("max concurrent probes must be positive, got %d", n)
		}
		o.probe.maxConcurrentProbes = n
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              行为选项
// ════════════════════════════════════════════════════════════════════════════

// WithMonitorOnly 启用监视模式
//
// 监视模式下记录切换意图，但不执行任何系统命令。
// 适合评估部署效果或在无特权环境下观察决策。
func WithMonitorOnly(enable bool) Option {
	return func(o *options) error {
		o.monitorOnly = &enable
		return nil
	}
}

// WithRelayQos 启用中继整形并设置链路容量
func WithRelayQos(linkCapacityKbps uint32) Option {
	return func(o *options) error {
		if linkCapacityKbps == 0 {
			return fmt.Errorf("link capacity must be positive")
		}
		if o.relayQos == nil {
			o.relayQos = &RelayQosUserConfig{}
		}
		o.relayQos.Enabled = true
		o.relayQos.LinkCapacityKbps = linkCapacityKbps
		return nil
	}
}

// WithKeepalive 启用硬件保活标记并设置最小发射间隔
func WithKeepalive(minInterval time.Duration) Option {
	return func(o *options) error {
		enable := true
		o.keepalive.enable = &enable
		if minInterval > 0 {
			o.keepalive.minInterval = minInterval
		}
		return nil
	}
}

// WithIntrospect 启用自省 HTTP 服务
//
// addr 为空时使用默认回环地址。
func WithIntrospect(addr string) Option {
	return func(o *options) error {
		enable := true
		o.introspect.enable = &enable
		o.introspect.addr = addr
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              配置文件选项
// ════════════════════════════════════════════════════════════════════════════

// WithConfigFile 从 JSON 文件加载用户配置
//
// 文件中的配置先于后续 Option 应用，后续 Option 可覆盖。
func WithConfigFile(path string) Option {
	return func(o *options) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config file: %w", err)
		}
		var cfg UserConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		for _, opt := range cfg.ToOptions() {
			if err := opt(o); err != nil {
				return err
			}
		}
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              组件注入选项
// ════════════════════════════════════════════════════════════════════════════

// WithRunner 注入系统命令执行器
//
// 测试场景注入 netexec.RecordRunner 可在无特权环境下
// 验证完整的切换命令序列。
func WithRunner(runner interfaces.Runner) Option {
	return func(o *options) error {
		if runner == nil {
			return fmt.Errorf("runner must not be nil")
		}
		o.runner = runner
		return nil
	}
}

// WithEnumerator 注入接口枚举器
//
// 默认使用基于 /sys/class/net 的枚举器。
func WithEnumerator(enumerator interfaces.Enumerator) Option {
	return func(o *options) error {
		if enumerator == nil {
			return fmt.Errorf("enumerator must not be nil")
		}
		o.enumerator = enumerator
		return nil
	}
}

// WithClock 注入时钟源
//
// 测试场景注入 clock.Mock 可精确驱动防抖与保活计时。
func WithClock(clk clock.Clock) Option {
	return func(o *options) error {
		if clk == nil {
			return fmt.Errorf("clock must not be nil")
		}
		o.clock = clk
		return nil
	}
}

// ════════════════════════════════════════════════════════════════════════════
//                              UserConfig 段覆盖（内部）
// ════════════════════════════════════════════════════════════════════════════

func withScoringOverrides(cfg ScoringUserConfig) Option {
	return func(o *options) error {
		o.scoring = &cfg
		return nil
	}
}

func withStateMachineOverrides(cfg StateMachineUserConfig) Option {
	return func(o *options) error {
		o.stateMachine = &cfg
		return nil
	}
}

func withRoutingOverrides(cfg RoutingUserConfig) Option {
	return func(o *options) error {
		o.routing = &cfg
		return nil
	}
}

func withRelayQosOverrides(cfg RelayQosUserConfig) Option {
	return func(o *options) error {
		o.relayQos = &cfg
		return nil
	}
}
