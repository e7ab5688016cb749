// Package config 提供回程链路子系统的配置管理层
//
// config 包负责：
// - 定义内部配置结构
// - 提供默认值
// - 配置校验
// - 配置转换（用户配置 → 内部配置）
package config

import (
	"time"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// Config 内部配置结构
//
// 这是详细的内部配置结构，用于组件初始化。
// 用户配置（pkg/backhaul.UserConfig）会被转换为此结构。
type Config struct {
	// LogFile 日志文件路径
	// 为空时输出到 stderr，非空时输出到指定文件
	LogFile string

	// Discovery 接口发现配置
	Discovery DiscoveryConfig

	// Probe 健康探测配置
	Probe ProbeConfig

	// Scoring 评分配置
	Scoring ScoringConfig

	// StateMachine 状态机配置
	StateMachine StateMachineConfig

	// Routing 策略路由配置
	Routing RoutingConfig

	// RelayQos 中继整形配置
	RelayQos RelayQosConfig

	// Keepalive 硬件保活配置
	Keepalive KeepaliveConfig

	// Introspect 自省服务配置
	Introspect IntrospectConfig
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Discovery:    DefaultDiscoveryConfig(),
		Probe:        DefaultProbeConfig(),
		Scoring:      DefaultScoringConfig(),
		StateMachine: DefaultStateMachineConfig(),
		Routing:      DefaultRoutingConfig(),
		RelayQos:     DefaultRelayQosConfig(),
		Keepalive:    DefaultKeepaliveConfig(),
		Introspect:   DefaultIntrospectConfig(),
	}
}

// ============================================================================
//                              接口发现配置
// ============================================================================

// DiscoveryConfig 接口发现配置
type DiscoveryConfig struct {
	// PollInterval 枚举轮询间隔
	PollInterval time.Duration
}

// DefaultDiscoveryConfig 默认接口发现配置
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		PollInterval: DefaultDiscoveryPollInterval,
	}
}

// ============================================================================
//                              健康探测配置
// ============================================================================

// ProbeConfig 健康探测配置
type ProbeConfig struct {
	// Interval 探测间隔（评估循环周期）
	Interval time.Duration

	// Timeout 单目标探测超时
	// 必须小于 Interval，否则探测会占满整个周期
	Timeout time.Duration

	// Targets 探测目标列表
	// 依次尝试，任一成功即判定本轮成功
	Targets []types.ProbeTarget

	// DegradedThreshold 连续失败达到此值判定为降级
	DegradedThreshold int

	// DownThreshold 连续失败达到此值判定为不可用
	// 必须大于 DegradedThreshold
	DownThreshold int

	// MaxConcurrentProbes 跨接口探测的最大并发数
	MaxConcurrentProbes int
}

// DefaultProbeConfig 默认健康探测配置
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Interval:            DefaultProbeInterval,
		Timeout:             DefaultProbeTimeout,
		Targets:             DefaultProbeTargets(),
		DegradedThreshold:   DefaultDegradedThreshold,
		DownThreshold:       DefaultDownThreshold,
		MaxConcurrentProbes: DefaultMaxConcurrentProbes,
	}
}

// ============================================================================
//                              评分配置
// ============================================================================

// ScoringConfig 评分配置
type ScoringConfig struct {
	// LatencyWeight 延迟分量权重
	LatencyWeight uint32

	// LossWeight 丢包分量权重
	LossWeight uint32

	// SuccessWeight 成功率分量权重
	SuccessWeight uint32

	// MaxRTT 延迟归一化上限
	// RTT 达到或超过此值时延迟分量为 0
	MaxRTT time.Duration

	// MaxLossPercent 丢包归一化上限（百分比）
	MaxLossPercent float64

	// EnablePolicyBias 是否启用接口类型偏好分量
	EnablePolicyBias bool

	// BiasMultiplier 偏好分量倍率
	BiasMultiplier uint32
}

// DefaultScoringConfig 默认评分配置
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		LatencyWeight:    DefaultLatencyWeight,
		LossWeight:       DefaultLossWeight,
		SuccessWeight:    DefaultSuccessWeight,
		MaxRTT:           DefaultMaxRTT,
		MaxLossPercent:   DefaultMaxLossPercent,
		EnablePolicyBias: true,
		BiasMultiplier:   DefaultBiasMultiplier,
	}
}

// ============================================================================
//                              状态机配置
// ============================================================================

// StateMachineConfig 状态机配置
//
// 保持时间（hold-down）按迁移方向独立配置，
// 用于吸收短暂抖动，避免路由震荡。
type StateMachineConfig struct {
	// UpToDegradedHoldDown UP→DEGRADED 保持时间
	UpToDegradedHoldDown time.Duration

	// DegradedToDownHoldDown DEGRADED→DOWN 保持时间
	DegradedToDownHoldDown time.Duration

	// DownToProbingHoldDown DOWN→PROBING 保持时间
	DownToProbingHoldDown time.Duration

	// ProbingToUpHoldDown PROBING→UP 保持时间
	ProbingToUpHoldDown time.Duration

	// MinStateDuration 最小状态驻留时间
	// 任何状态至少驻留此时长后才允许迁移（物理事件除外）
	MinStateDuration time.Duration
}

// DefaultStateMachineConfig 默认状态机配置
func DefaultStateMachineConfig() StateMachineConfig {
	return StateMachineConfig{
		UpToDegradedHoldDown:   DefaultUpToDegradedHoldDown,
		DegradedToDownHoldDown: DefaultDegradedToDownHoldDown,
		DownToProbingHoldDown:  DefaultDownToProbingHoldDown,
		ProbingToUpHoldDown:    DefaultProbingToUpHoldDown,
		MinStateDuration:       DefaultMinStateDuration,
	}
}

// ============================================================================
//                              策略路由配置
// ============================================================================

// RoutingConfig 策略路由配置
type RoutingConfig struct {
	// TableIDBase 路由表号分配下界（含）
	TableIDBase int

	// TableIDMax 路由表号分配上界（含）
	TableIDMax int

	// RulePriority 策略规则优先级
	RulePriority int

	// MonitorOnly 监视模式
	// 为 true 时记录切换意图但不执行任何系统命令
	MonitorOnly bool
}

// DefaultRoutingConfig 默认策略路由配置
func DefaultRoutingConfig() RoutingConfig {
	return RoutingConfig{
		TableIDBase:  DefaultTableIDBase,
		TableIDMax:   DefaultTableIDMax,
		RulePriority: DefaultRulePriority,
		MonitorOnly:  false,
	}
}

// ============================================================================
//                              中继整形配置
// ============================================================================

// RelayQosConfig 中继整形配置
type RelayQosConfig struct {
	// Enabled 是否启用中继整形
	Enabled bool

	// LinkCapacityKbps 链路总容量（kbit/s）
	// 作为 HTB 根类速率，决定整体可分配带宽
	LinkCapacityKbps uint32

	// RelayMinKbps 中继类保障速率（kbit/s）
	RelayMinKbps uint32

	// RelayCeilKbps 中继类速率上限（kbit/s）
	RelayCeilKbps uint32

	// NodeMinKbps 本机类保障速率（kbit/s）
	NodeMinKbps uint32

	// UseFqCodel 是否在中继类上挂 fq_codel
	UseFqCodel bool

	// RelayDSCP 中继流量的 DSCP 标记（0-63）
	RelayDSCP uint8
}

// DefaultRelayQosConfig 默认中继整形配置
func DefaultRelayQosConfig() RelayQosConfig {
	return RelayQosConfig{
		Enabled:          false,
		LinkCapacityKbps: DefaultLinkCapacityKbps,
		RelayMinKbps:     DefaultRelayMinKbps,
		RelayCeilKbps:    DefaultRelayCeilKbps,
		NodeMinKbps:      DefaultNodeMinKbps,
		UseFqCodel:       true,
		RelayDSCP:        DefaultRelayDSCP,
	}
}

// ============================================================================
//                              硬件保活配置
// ============================================================================

// KeepaliveConfig 硬件保活配置
//
// 切换成功后发出保活标记，供看门狗类外设确认本机
// 仍具备上行能力。标记发射做了限频。
type KeepaliveConfig struct {
	// Enable 是否启用保活标记
	Enable bool

	// MinInterval 两次标记之间的最小间隔
	MinInterval time.Duration
}

// DefaultKeepaliveConfig 默认硬件保活配置
func DefaultKeepaliveConfig() KeepaliveConfig {
	return KeepaliveConfig{
		Enable:      false,
		MinInterval: DefaultKeepaliveMinInterval,
	}
}

// ============================================================================
//                              自省服务配置
// ============================================================================

// IntrospectConfig 自省服务配置
type IntrospectConfig struct {
	// Enable 是否启用自省 HTTP 服务
	Enable bool

	// Addr 监听地址
	// 默认仅绑定回环地址
	Addr string
}

// DefaultIntrospectConfig 默认自省服务配置
func DefaultIntrospectConfig() IntrospectConfig {
	return IntrospectConfig{
		Enable: false,
		Addr:   DefaultIntrospectAddr,
	}
}
