package types

import "time"

// ============================================================================
//                              ProbeTarget - 探测目标
// ============================================================================

// ProbeTarget 探测目标
type ProbeTarget struct {
	// Name 目标名（用于日志与结果标识）
	Name string `json:"name"`

	// Address 目标地址（IP 或主机名）
	Address string `json:"address"`

	// Port 目标端口
	Port uint16 `json:"port"`

	// Kind 探测类型
	Kind ProbeKind `json:"kind"`
}

// ============================================================================
//                              ProbeResult - 单次探测结果
// ============================================================================

// ProbeResult 单个目标的一次探测结果
//
// 超时与连接拒绝同样视为失败，下游不区分失败原因。
type ProbeResult struct {
	// Target 探测目标
	Target ProbeTarget

	// Success 是否成功
	Success bool

	// RTT 往返时间（仅成功时有效）
	RTT time.Duration

	// Err 失败原因描述（仅用于日志，不参与统计）
	Err string

	// Timestamp 探测发起时间
	Timestamp time.Time
}

// ============================================================================
//                              HealthStats - 健康统计
// ============================================================================

// HealthStats 接口健康统计快照
//
// 由 internal/core/health 的 Stats 维护，此处为只读快照。
// 不变量：Succeeded + Failed == Total；LossPercent == 100*Failed/Total。
type HealthStats struct {
	// Interface 接口名
	Interface string

	// Total 探测总次数
	Total uint64

	// Succeeded 成功次数
	Succeeded uint64

	// Failed 失败次数
	Failed uint64

	// AvgRTT 成功探测的增量均值
	AvgRTT time.Duration

	// MinRTT 成功探测的最小 RTT（无成功时为 0）
	MinRTT time.Duration

	// MaxRTT 成功探测的最大 RTT
	MaxRTT time.Duration

	// LossPercent 全生命周期丢失率（0-100）
	LossPercent float64

	// ConsecutiveFailures 连续失败次数
	ConsecutiveFailures int

	// LastSuccess 最近一次成功时间（零值表示从未成功）
	LastSuccess time.Time

	// LastFailure 最近一次失败时间（零值表示从未失败）
	LastFailure time.Time
}

// SuccessRate 返回成功率（0-1），无探测时为 0
func (s HealthStats) SuccessRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Succeeded) / float64(s.Total)
}
