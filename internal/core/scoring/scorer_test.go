package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/pkg/types"
)

func ifaceOf(name string, typ types.InterfaceType) types.InterfaceInfo {
	return types.InterfaceInfo{Name: name, Type: typ}
}

func statsOf(avgRTT time.Duration, total, succeeded uint64) types.HealthStats {
	stats := types.HealthStats{
		Total:     total,
		Succeeded: succeeded,
		Failed:    total - succeeded,
		AvgRTT:    avgRTT,
	}
	if total > 0 {
		stats.LossPercent = float64(stats.Failed) / float64(total) * 100
	}
	return stats
}

func TestScorer_Deterministic(t *testing.T) {
	s := NewScorer(config.DefaultScoringConfig())
	info := ifaceOf("eth0", types.InterfaceEthernet)
	stats := statsOf(30*time.Millisecond, 100, 98)

	first := s.Score(info, stats)
	second := s.Score(info, stats)
	assert.Equal(t, first, second)
}

func TestScorer_TotalIsComponentSum(t *testing.T) {
	s := NewScorer(config.DefaultScoringConfig())
	score := s.Score(ifaceOf("eth0", types.InterfaceEthernet), statsOf(50*time.Millisecond, 50, 45))
	assert.Equal(t, score.Latency+score.Loss+score.Success+score.PolicyBias, score.Total)
}

func TestScorer_LowerRTTScoresHigher(t *testing.T) {
	s := NewScorer(config.DefaultScoringConfig())
	info := ifaceOf("eth0", types.InterfaceEthernet)

	fast := s.Score(info, statsOf(10*time.Millisecond, 100, 100))
	slow := s.Score(info, statsOf(150*time.Millisecond, 100, 100))
	assert.Greater(t, fast.Total, slow.Total)
	assert.Greater(t, fast.Latency, slow.Latency)
}

func TestScorer_LowerLossScoresHigher(t *testing.T) {
	s := NewScorer(config.DefaultScoringConfig())
	info := ifaceOf("eth0", types.InterfaceEthernet)

	clean := s.Score(info, statsOf(30*time.Millisecond, 100, 100))
	lossy := s.Score(info, statsOf(30*time.Millisecond, 100, 95))
	assert.Greater(t, clean.Total, lossy.Total)
}

func TestScorer_ComponentsClamped(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	s := NewScorer(cfg)
	info := ifaceOf("wwan0", types.InterfaceLteModem)

	// RTT 远超上限、丢包率拉满：分量触底但不下溢
	worst := s.Score(info, statsOf(10*time.Second, 100, 1))
	assert.Zero(t, worst.Latency)
	assert.Zero(t, worst.Loss)
	assert.LessOrEqual(t, worst.Success, cfg.SuccessWeight)

	// 理想统计：各分量不超过权重上限
	best := s.Score(info, statsOf(time.Millisecond, 100, 100))
	assert.LessOrEqual(t, best.Latency, cfg.LatencyWeight)
	assert.LessOrEqual(t, best.Loss, cfg.LossWeight)
	assert.LessOrEqual(t, best.Success, cfg.SuccessWeight)
}

func TestScorer_NoSuccessesMeansZeroLatencyComponent(t *testing.T) {
	s := NewScorer(config.DefaultScoringConfig())
	score := s.Score(ifaceOf("eth0", types.InterfaceEthernet), statsOf(0, 10, 0))
	assert.Zero(t, score.Latency)
}

func TestScorer_EmptyStatsScoreOnlyBias(t *testing.T) {
	s := NewScorer(config.DefaultScoringConfig())
	score := s.Score(ifaceOf("eth0", types.InterfaceEthernet), types.HealthStats{})
	assert.Equal(t, score.PolicyBias, score.Total)
}

func TestScorer_EthernetBiasBeatsWiFiOnEqualHealth(t *testing.T) {
	s := NewScorer(config.DefaultScoringConfig())
	stats := statsOf(30*time.Millisecond, 100, 100)

	eth := s.Score(ifaceOf("eth0", types.InterfaceEthernet), stats)
	wifi := s.Score(ifaceOf("wlan0", types.InterfaceWiFi), stats)
	assert.True(t, s.Better(eth, wifi))
}

func TestScorer_BiasDisabledEqualScores(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	cfg.EnablePolicyBias = false
	s := NewScorer(cfg)
	stats := statsOf(30*time.Millisecond, 100, 100)

	eth := s.Score(ifaceOf("eth0", types.InterfaceEthernet), stats)
	wifi := s.Score(ifaceOf("wlan0", types.InterfaceWiFi), stats)
	assert.Equal(t, eth.Total, wifi.Total)
	assert.Zero(t, eth.PolicyBias)
}

func TestScorer_BetterTieBreakByName(t *testing.T) {
	s := NewScorer(config.DefaultScoringConfig())

	a := types.InterfaceScore{Interface: "eth0", Total: 500}
	b := types.InterfaceScore{Interface: "wlan0", Total: 500}
	assert.True(t, s.Better(a, b))
	assert.False(t, s.Better(b, a))

	// 总分不同时名称不参与比较
	b.Total = 501
	assert.True(t, s.Better(b, a))
}
