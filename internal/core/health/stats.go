// Package health 实现接口健康探测
//
// health 模块负责：
// - 对候选接口执行有界超时的主动探测（TCP 握手 / DNS 查询）
// - 维护各接口的增量健康统计
// - 按阈值将统计量折算为状态机事件
package health

import (
	"time"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// ============================================================================
//                              健康统计
// ============================================================================

// stats 单接口的累计健康统计
//
// 平均 RTT 采用增量均值：avg' = avg + (rtt - avg) / n，
// 无需保存历史样本即可维持精确均值。
type stats struct {
	iface               string
	total               uint64
	succeeded           uint64
	failed              uint64
	avgRTT              time.Duration
	minRTT              time.Duration
	maxRTT              time.Duration
	consecutiveFailures int
	lastSuccess         time.Time
	lastFailure         time.Time
}

// observe 记入一次探测结果
func (s *stats) observe(result types.ProbeResult) {
	s.total++
	if result.Success {
		s.succeeded++
		s.consecutiveFailures = 0
		s.lastSuccess = result.Timestamp

		rtt := result.RTT
		if s.succeeded == 1 {
			s.avgRTT = rtt
			s.minRTT = rtt
			s.maxRTT = rtt
		} else {
			s.avgRTT += (rtt - s.avgRTT) / time.Duration(s.succeeded)
			if rtt < s.minRTT {
				s.minRTT = rtt
			}
			if rtt > s.maxRTT {
				s.maxRTT = rtt
			}
		}
	} else {
		s.failed++
		s.consecutiveFailures++
		s.lastFailure = result.Timestamp
	}
}

// snapshot 导出统计快照
func (s *stats) snapshot() types.HealthStats {
	out := types.HealthStats{
		Interface:           s.iface,
		Total:               s.total,
		Succeeded:           s.succeeded,
		Failed:              s.failed,
		AvgRTT:              s.avgRTT,
		MinRTT:              s.minRTT,
		MaxRTT:              s.maxRTT,
		ConsecutiveFailures: s.consecutiveFailures,
		LastSuccess:         s.lastSuccess,
		LastFailure:         s.lastFailure,
	}
	if s.total > 0 {
		out.LossPercent = float64(s.failed) / float64(s.total) * 100
	}
	return out
}

// ============================================================================
//                              事件折算
// ============================================================================

// EventFor 将健康统计折算为状态机事件
//
// 连续失败次数达到不可用阈值产生 Failed，达到降级阈值
// 产生 Degraded，否则产生 Healthy。
func EventFor(stats types.HealthStats, degradedThreshold, downThreshold int) types.StateEvent {
	switch {
	case stats.ConsecutiveFailures >= downThreshold:
		return types.EventFailedProbe
	case stats.ConsecutiveFailures >= degradedThreshold:
		return types.EventDegradedProbe
	default:
		return types.EventHealthyProbe
	}
}
