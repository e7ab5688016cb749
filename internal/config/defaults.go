package config

import (
	"time"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// ============================================================================
//                              预设默认值
// ============================================================================

// 接口发现默认值
const (
	// DefaultDiscoveryPollInterval 默认枚举轮询间隔
	DefaultDiscoveryPollInterval = 10 * time.Second
)

// 健康探测默认值
const (
	// DefaultProbeInterval 默认探测间隔
	DefaultProbeInterval = 5 * time.Second

	// DefaultProbeTimeout 默认单目标超时
	DefaultProbeTimeout = 3 * time.Second

	// DefaultDegradedThreshold 默认降级阈值（连续失败次数）
	DefaultDegradedThreshold = 1

	// DefaultDownThreshold 默认不可用阈值（连续失败次数）
	DefaultDownThreshold = 2

	// DefaultMaxConcurrentProbes 默认跨接口探测并发数
	DefaultMaxConcurrentProbes = 4
)

// DefaultProbeTargets 默认探测目标
//
// 选用公共 DNS 服务的 53 端口：几乎不会被中间网络屏蔽，
// 且 TCP 握手成功即可证明出口连通。
func DefaultProbeTargets() []types.ProbeTarget {
	return []types.ProbeTarget{
		{Name: "cloudflare-dns", Address: "1.1.1.1", Port: 53, Kind: types.ProbeTCPConnect},
		{Name: "google-dns", Address: "8.8.8.8", Port: 53, Kind: types.ProbeTCPConnect},
	}
}

// 评分默认值
const (
	// DefaultLatencyWeight 默认延迟分量权重
	DefaultLatencyWeight = 300

	// DefaultLossWeight 默认丢包分量权重
	DefaultLossWeight = 200

	// DefaultSuccessWeight 默认成功率分量权重
	DefaultSuccessWeight = 500

	// DefaultMaxRTT 默认延迟归一化上限
	DefaultMaxRTT = 200 * time.Millisecond

	// DefaultMaxLossPercent 默认丢包归一化上限（百分比）
	DefaultMaxLossPercent = 10.0

	// DefaultBiasMultiplier 默认偏好分量倍率
	DefaultBiasMultiplier = 1
)

// 状态机默认值
const (
	// DefaultUpToDegradedHoldDown 默认 UP→DEGRADED 保持时间
	DefaultUpToDegradedHoldDown = 15 * time.Second

	// DefaultDegradedToDownHoldDown 默认 DEGRADED→DOWN 保持时间
	DefaultDegradedToDownHoldDown = 30 * time.Second

	// DefaultDownToProbingHoldDown 默认 DOWN→PROBING 保持时间
	DefaultDownToProbingHoldDown = 60 * time.Second

	// DefaultProbingToUpHoldDown 默认 PROBING→UP 保持时间
	DefaultProbingToUpHoldDown = 10 * time.Second

	// DefaultMinStateDuration 默认最小状态驻留时间
	DefaultMinStateDuration = 5 * time.Second
)

// 策略路由默认值
const (
	// DefaultTableIDBase 默认路由表号下界
	DefaultTableIDBase = 100

	// DefaultTableIDMax 默认路由表号上界
	DefaultTableIDMax = 200

	// DefaultRulePriority 默认策略规则优先级
	DefaultRulePriority = 1000
)

// 中继整形默认值
const (
	// DefaultLinkCapacityKbps 默认链路总容量
	DefaultLinkCapacityKbps = 100_000

	// DefaultRelayMinKbps 默认中继类保障速率
	DefaultRelayMinKbps = 10_000

	// DefaultRelayCeilKbps 默认中继类速率上限
	DefaultRelayCeilKbps = 1_000_000

	// DefaultNodeMinKbps 默认本机类保障速率
	DefaultNodeMinKbps = 1_000

	// DefaultRelayDSCP 默认中继 DSCP 标记（EF）
	DefaultRelayDSCP = 46
)

// 硬件保活默认值
const (
	// DefaultKeepaliveMinInterval 默认保活最小间隔
	DefaultKeepaliveMinInterval = 60 * time.Second
)

// 自省服务默认值
const (
	// DefaultIntrospectAddr 默认自省服务监听地址
	DefaultIntrospectAddr = "127.0.0.1:6061"
)
