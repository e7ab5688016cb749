package backhaul

import (
	"encoding/json"
	"time"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// UserConfig 用户配置结构
//
// 这是面向用户的简化配置结构，可以从 JSON 文件加载。
// 内部会转换为详细的组件配置。
//
// 注意：配置文件的读取和环境变量的处理应由应用层（cmd/*）负责，
// 库本身不负责 I/O 操作。示例用法：
//
//	data, _ := os.ReadFile("config.json")
//	var cfg backhaul.UserConfig
//	json.Unmarshal(data, &cfg)
//	b, _ := backhaul.New(cfg.ToOptions()...)
type UserConfig struct {
	// LogFile 日志文件路径
	// 为空时输出到 stderr
	LogFile string `json:"log_file,omitempty"`

	// Discovery 接口发现配置
	Discovery *DiscoveryUserConfig `json:"discovery,omitempty"`

	// Probe 健康探测配置
	Probe *ProbeUserConfig `json:"probe,omitempty"`

	// Scoring 评分配置
	Scoring *ScoringUserConfig `json:"scoring,omitempty"`

	// StateMachine 状态机防抖配置
	StateMachine *StateMachineUserConfig `json:"state_machine,omitempty"`

	// Routing 策略路由配置
	Routing *RoutingUserConfig `json:"routing,omitempty"`

	// RelayQos 中继整形配置
	RelayQos *RelayQosUserConfig `json:"relay_qos,omitempty"`

	// Keepalive 硬件保活配置
	Keepalive *KeepaliveUserConfig `json:"keepalive,omitempty"`

	// Introspect 自省服务配置
	Introspect *IntrospectUserConfig `json:"introspect,omitempty"`
}

// DiscoveryUserConfig 接口发现配置
type DiscoveryUserConfig struct {
	// PollInterval 枚举轮询间隔
	PollInterval Duration `json:"poll_interval,omitempty"`
}

// ProbeUserConfig 健康探测配置
type ProbeUserConfig struct {
	// Interval 探测间隔（评估循环周期）
	Interval Duration `json:"interval,omitempty"`

	// Timeout 单目标探测超时
	Timeout Duration `json:"timeout,omitempty"`

	// Targets 探测目标列表
	// 为空时使用内置公共 DNS 目标
	Targets []ProbeTargetConfig `json:"targets,omitempty"`

	// DegradedThreshold 连续失败达到此值判定为降级
	DegradedThreshold int `json:"degraded_threshold,omitempty"`

	// DownThreshold 连续失败达到此值判定为不可用
	DownThreshold int `json:"down_threshold,omitempty"`

	// MaxConcurrentProbes 跨接口探测的最大并发数
	MaxConcurrentProbes int `json:"max_concurrent_probes,omitempty"`
}

// ProbeTargetConfig 探测目标配置
type ProbeTargetConfig struct {
	// Name 目标名
	Name string `json:"name,omitempty"`

	// Address 目标地址
	Address string `json:"address"`

	// Port 目标端口
	Port uint16 `json:"port"`

	// Kind 探测类型
	// 可选值: tcp_connect, dns_query
	Kind string `json:"kind,omitempty"`
}

// ScoringUserConfig 评分配置
type ScoringUserConfig struct {
	// LatencyWeight 延迟分量权重
	LatencyWeight uint32 `json:"latency_weight,omitempty"`

	// LossWeight 丢包分量权重
	LossWeight uint32 `json:"loss_weight,omitempty"`

	// SuccessWeight 成功率分量权重
	SuccessWeight uint32 `json:"success_weight,omitempty"`

	// MaxRTT 延迟归一化上限
	MaxRTT Duration `json:"max_rtt,omitempty"`

	// MaxLossPercent 丢包归一化上限（百分比）
	MaxLossPercent float64 `json:"max_loss_percent,omitempty"`

	// DisablePolicyBias 关闭接口类型偏好分量
	DisablePolicyBias bool `json:"disable_policy_bias,omitempty"`

	// BiasMultiplier 偏好分量倍率
	BiasMultiplier uint32 `json:"bias_multiplier,omitempty"`
}

// StateMachineUserConfig 状态机防抖配置
type StateMachineUserConfig struct {
	// UpToDegradedHoldDown UP→DEGRADED 保持时间
	UpToDegradedHoldDown Duration `json:"up_to_degraded_hold_down,omitempty"`

	// DegradedToDownHoldDown DEGRADED→DOWN 保持时间
	DegradedToDownHoldDown Duration `json:"degraded_to_down_hold_down,omitempty"`

	// DownToProbingHoldDown DOWN→PROBING 保持时间
	DownToProbingHoldDown Duration `json:"down_to_probing_hold_down,omitempty"`

	// ProbingToUpHoldDown PROBING→UP 保持时间
	ProbingToUpHoldDown Duration `json:"probing_to_up_hold_down,omitempty"`

	// MinStateDuration 最小状态驻留时间
	MinStateDuration Duration `json:"min_state_duration,omitempty"`
}

// RoutingUserConfig 策略路由配置
type RoutingUserConfig struct {
	// TableIDBase 路由表号分配下界（含）
	TableIDBase int `json:"table_id_base,omitempty"`

	// TableIDMax 路由表号分配上界（含）
	TableIDMax int `json:"table_id_max,omitempty"`

	// RulePriority 策略规则优先级
	RulePriority int `json:"rule_priority,omitempty"`

	// MonitorOnly 监视模式（记录切换意图但不执行系统命令）
	MonitorOnly bool `json:"monitor_only,omitempty"`
}

// RelayQosUserConfig 中继整形配置
type RelayQosUserConfig struct {
	// Enabled 是否启用中继整形
	Enabled bool `json:"enabled,omitempty"`

	// LinkCapacityKbps 链路总容量（kbit/s）
	LinkCapacityKbps uint32 `json:"link_capacity_kbps,omitempty"`

	// RelayMinKbps 中继类保障速率（kbit/s）
	RelayMinKbps uint32 `json:"relay_min_kbps,omitempty"`

	// RelayCeilKbps 中继类速率上限（kbit/s）
	RelayCeilKbps uint32 `json:"relay_ceil_kbps,omitempty"`

	// NodeMinKbps 本机类保障速率（kbit/s）
	NodeMinKbps uint32 `json:"node_min_kbps,omitempty"`

	// DisableFqCodel 关闭中继类上的 fq_codel
	DisableFqCodel bool `json:"disable_fq_codel,omitempty"`

	// RelayDSCP 中继流量的 DSCP 标记（0-63）
	RelayDSCP uint8 `json:"relay_dscp,omitempty"`
}

// KeepaliveUserConfig 硬件保活配置
type KeepaliveUserConfig struct {
	// Enable 启用保活标记
	Enable bool `json:"enable,omitempty"`

	// MinInterval 两次标记之间的最小间隔
	MinInterval Duration `json:"min_interval,omitempty"`
}

// IntrospectUserConfig 自省服务配置
type IntrospectUserConfig struct {
	// Enable 启用自省 HTTP 服务
	Enable bool `json:"enable,omitempty"`

	// Addr 监听地址，默认 "127.0.0.1:6061"
	Addr string `json:"addr,omitempty"`
}

// ============================================================================
//                              Duration 类型
// ============================================================================

// Duration 是 time.Duration 的 JSON 友好版本
type Duration time.Duration

// MarshalJSON 实现 json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON 实现 json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		// 尝试作为数字解析（纳秒）
		var ns int64
		if err := json.Unmarshal(data, &ns); err != nil {
			return err
		}
		*d = Duration(time.Duration(ns))
		return nil
	}

	duration, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// Duration 返回 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// ============================================================================
//                              配置转换
// ============================================================================

// ToOptions 将用户配置转换为选项列表
func (c *UserConfig) ToOptions() []Option {
	var opts []Option

	if c.LogFile != "" {
		opts = append(opts, WithLogFile(c.LogFile))
	}

	if c.Discovery != nil && c.Discovery.PollInterval > 0 {
		opts = append(opts, WithDiscoveryInterval(c.Discovery.PollInterval.Duration()))
	}

	if c.Probe != nil {
		if c.Probe.Interval > 0 {
			opts = append(opts, WithProbeInterval(c.Probe.Interval.Duration()))
		}
		if c.Probe.Timeout > 0 {
			opts = append(opts, WithProbeTimeout(c.Probe.Timeout.Duration()))
		}
		if len(c.Probe.Targets) > 0 {
			targets := make([]types.ProbeTarget, 0, len(c.Probe.Targets))
			for _, t := range c.Probe.Targets {
				targets = append(targets, t.toProbeTarget())
			}
			opts = append(opts, WithProbeTargets(targets...))
		}
		if c.Probe.DegradedThreshold > 0 || c.Probe.DownThreshold > 0 {
			opts = append(opts, WithProbeThresholds(
				c.Probe.DegradedThreshold,
				c.Probe.DownThreshold,
			))
		}
		if c.Probe.MaxConcurrentProbes > 0 {
			opts = append(opts, WithMaxConcurrentProbes(c.Probe.MaxConcurrentProbes))
		}
	}

	if c.Scoring != nil {
		opts = append(opts, withScoringOverrides(*c.Scoring))
	}

	if c.StateMachine != nil {
		opts = append(opts, withStateMachineOverrides(*c.StateMachine))
	}

	if c.Routing != nil {
		opts = append(opts, withRoutingOverrides(*c.Routing))
	}

	if c.RelayQos != nil {
		opts = append(opts, withRelayQosOverrides(*c.RelayQos))
	}

	if c.Keepalive != nil {
		if c.Keepalive.Enable {
			opts = append(opts, WithKeepalive(c.Keepalive.MinInterval.Duration()))
		}
	}

	if c.Introspect != nil {
		if c.Introspect.Enable {
			opts = append(opts, WithIntrospect(c.Introspect.Addr))
		}
	}

	return opts
}

// toProbeTarget 转换为内部探测目标
func (t ProbeTargetConfig) toProbeTarget() types.ProbeTarget {
	kind := types.ProbeTCPConnect
	if t.Kind == "dns_query" {
		kind = types.ProbeDNSQuery
	}
	name := t.Name
	if name == "" {
		name = t.Address
	}
	return types.ProbeTarget{
		Name:    name,
		Address: t.Address,
		Port:    t.Port,
		Kind:    kind,
	}
}
