// Package scoring 实现接口综合评分
//
// scoring 模块负责：
// - 将健康统计与接口类型折算为可比较的综合评分
// - 提供确定性的评分排序
package scoring

import (
	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/internal/core/netiface"
	"github.com/dep2p/go-backhaul/pkg/interfaces"
	"github.com/dep2p/go-backhaul/pkg/types"
)

// ============================================================================
//                              评分器
// ============================================================================

// Scorer 综合评分器
//
// 实现 interfaces.Scorer。评分为纯函数：相同输入必然
// 产生相同输出。总分由四个分量构成：
//   - 延迟：RTT 越低得分越高，按 MaxRTT 归一化
//   - 丢包：丢包率越低得分越高，按 MaxLossPercent 归一化
//   - 成功率：历史探测成功占比
//   - 策略偏好：按接口类型的固定偏好值
//
// 每个分量先归一化到 [0, 1] 再乘以权重，避免异常输入
// 撑爆分量上限。
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer 创建评分器
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score 计算单个接口的综合评分
func (s *Scorer) Score(info types.InterfaceInfo, stats types.HealthStats) types.InterfaceScore {
	score := types.InterfaceScore{
		Interface: info.Name,
		Latency:   s.latencyComponent(stats),
		Loss:      s.lossComponent(stats),
		Success:   s.successComponent(stats),
	}
	if s.cfg.EnablePolicyBias {
		score.PolicyBias = netiface.PolicyBias(info.Type) * s.cfg.BiasMultiplier
	}
	score.Total = score.Latency + score.Loss + score.Success + score.PolicyBias
	return score
}

// Better 判断 a 是否优于 b
//
// 总分高者优；总分相同时按接口名字典序取小者，
// 保证选择结果在任何输入顺序下都确定。
func (s *Scorer) Better(a, b types.InterfaceScore) bool {
	if a.Total != b.Total {
		return a.Total > b.Total
	}
	return a.Interface < b.Interface
}

// latencyComponent 延迟分量
//
// 无成功样本时平均 RTT 无意义，分量为 0。
func (s *Scorer) latencyComponent(stats types.HealthStats) uint32 {
	if stats.Succeeded == 0 {
		return 0
	}
	return weighted(1-clamp01(float64(stats.AvgRTT)/float64(s.cfg.MaxRTT)), s.cfg.LatencyWeight)
}

// lossComponent 丢包分量
func (s *Scorer) lossComponent(stats types.HealthStats) uint32 {
	if stats.Total == 0 {
		return 0
	}
	return weighted(1-clamp01(stats.LossPercent/s.cfg.MaxLossPercent), s.cfg.LossWeight)
}

// successComponent 成功率分量
func (s *Scorer) successComponent(stats types.HealthStats) uint32 {
	if stats.Total == 0 {
		return 0
	}
	return weighted(clamp01(stats.SuccessRate()), s.cfg.SuccessWeight)
}

// clamp01 裁剪到 [0, 1] 区间
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// weighted 归一化值乘以权重并取整
func weighted(normalized float64, weight uint32) uint32 {
	return uint32(normalized * float64(weight))
}

// 编译期接口断言
var _ interfaces.Scorer = (*Scorer)(nil)
