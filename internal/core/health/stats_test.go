package health

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-backhaul/pkg/types"
)

func successResult(rtt time.Duration, at time.Time) types.ProbeResult {
	return types.ProbeResult{Success: true, RTT: rtt, Timestamp: at}
}

func failureResult(at time.Time) types.ProbeResult {
	return types.ProbeResult{Success: false, Err: "connection refused", Timestamp: at}
}

func TestStats_Invariants(t *testing.T) {
	now := time.Now()
	s := &stats{iface: "eth0"}

	s.observe(successResult(20*time.Millisecond, now))
	s.observe(failureResult(now.Add(time.Second)))
	s.observe(failureResult(now.Add(2 * time.Second)))
	s.observe(successResult(40*time.Millisecond, now.Add(3*time.Second)))

	snap := s.snapshot()
	assert.Equal(t, snap.Total, snap.Succeeded+snap.Failed)
	assert.Equal(t, uint64(4), snap.Total)
	assert.Equal(t, uint64(2), snap.Succeeded)
	assert.InDelta(t, 50.0, snap.LossPercent, 0.001)
	assert.LessOrEqual(t, snap.MinRTT, snap.AvgRTT)
	assert.LessOrEqual(t, snap.AvgRTT, snap.MaxRTT)
}

func TestStats_ConsecutiveFailuresResetOnSuccess(t *testing.T) {
	now := time.Now()
	s := &stats{iface: "eth0"}

	s.observe(failureResult(now))
	s.observe(failureResult(now))
	assert.Equal(t, 2, s.snapshot().ConsecutiveFailures)

	s.observe(successResult(10*time.Millisecond, now))
	assert.Equal(t, 0, s.snapshot().ConsecutiveFailures)

	s.observe(failureResult(now))
	assert.Equal(t, 1, s.snapshot().ConsecutiveFailures)
}

func TestStats_IncrementalMeanMatchesTrueMean(t *testing.T) {
	now := time.Now()
	s := &stats{iface: "eth0"}

	samples := []time.Duration{
		13 * time.Millisecond,
		47 * time.Millisecond,
		8 * time.Millisecond,
		112 * time.Millisecond,
		31 * time.Millisecond,
		64 * time.Millisecond,
		5 * time.Millisecond,
	}
	var sum time.Duration
	for _, rtt := range samples {
		s.observe(successResult(rtt, now))
		sum += rtt
	}

	trueMean := sum / time.Duration(len(samples))
	// 增量均值的整数除法每步最多引入 1ns 误差
	assert.InDelta(t, float64(trueMean), float64(s.snapshot().AvgRTT), float64(len(samples)))
}

func TestStats_FailuresDoNotTouchRTT(t *testing.T) {
	now := time.Now()
	s := &stats{iface: "eth0"}

	s.observe(successResult(30*time.Millisecond, now))
	before := s.snapshot()

	s.observe(failureResult(now))
	after := s.snapshot()

	assert.Equal(t, before.AvgRTT, after.AvgRTT)
	assert.Equal(t, before.MinRTT, after.MinRTT)
	assert.Equal(t, before.MaxRTT, after.MaxRTT)
}

func TestStats_LossPercentZeroWhenEmpty(t *testing.T) {
	s := &stats{iface: "eth0"}
	snap := s.snapshot()
	require.Zero(t, snap.Total)
	assert.Zero(t, snap.LossPercent)
}

func TestEventFor_Thresholds(t *testing.T) {
	// 默认阈值：降级 1 次，不可用 2 次
	cases := []struct {
		consecutive int
		want        types.StateEvent
	}{
		{0, types.EventHealthyProbe},
		{1, types.EventDegradedProbe},
		{2, types.EventFailedProbe},
		{5, types.EventFailedProbe},
	}
	for _, tc := range cases {
		stats := types.HealthStats{ConsecutiveFailures: tc.consecutive}
		assert.Equal(t, tc.want, EventFor(stats, 1, 2), "consecutive=%d", tc.consecutive)
	}
}
