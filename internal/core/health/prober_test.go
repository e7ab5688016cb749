package health

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/pkg/types"
)

// loopbackIface 构造一个绑定回环地址的候选接口
func loopbackIface() types.InterfaceInfo {
	return types.InterfaceInfo{
		Name:       "lo-test",
		Type:       types.InterfaceEthernet,
		Up:         true,
		Carrier:    true,
		HasAddress: true,
		IPv4Addrs:  []string{"127.0.0.1"},
	}
}

// listenTarget 启动一个回环 TCP 监听并返回对应探测目标
func listenTarget(t *testing.T) types.ProbeTarget {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return types.ProbeTarget{
		Name:    "local-listener",
		Address: "127.0.0.1",
		Port:    uint16(port),
		Kind:    types.ProbeTCPConnect,
	}
}

// closedTarget 返回一个必然拒绝连接的探测目标
func closedTarget(t *testing.T) types.ProbeTarget {
	t.Helper()
	// 监听后立刻关闭，拿到一个当前未被占用的端口
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return types.ProbeTarget{
		Name:    "closed-port",
		Address: "127.0.0.1",
		Port:    uint16(port),
		Kind:    types.ProbeTCPConnect,
	}
}

func proberWithTargets(targets ...types.ProbeTarget) *Prober {
	cfg := config.DefaultProbeConfig()
	cfg.Timeout = time.Second
	cfg.Targets = targets
	return NewProber(cfg, clock.New())
}

func TestProber_TCPSuccess(t *testing.T) {
	p := proberWithTargets(listenTarget(t))

	result := p.Probe(context.Background(), loopbackIface())
	assert.True(t, result.Success)
	assert.Empty(t, result.Err)

	stats, ok := p.Stats("lo-test")
	require.True(t, ok)
	assert.Equal(t, uint64(1), stats.Succeeded)
	assert.Zero(t, stats.ConsecutiveFailures)
}

func TestProber_RefusedIsFailure(t *testing.T) {
	p := proberWithTargets(closedTarget(t))

	result := p.Probe(context.Background(), loopbackIface())
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Err)

	stats, ok := p.Stats("lo-test")
	require.True(t, ok)
	assert.Equal(t, uint64(1), stats.Failed)
	assert.Equal(t, 1, stats.ConsecutiveFailures)
}

func TestProber_FallsThroughToSecondTarget(t *testing.T) {
	// 第一个目标拒绝连接，第二个目标可达：本轮判定成功
	p := proberWithTargets(closedTarget(t), listenTarget(t))

	result := p.Probe(context.Background(), loopbackIface())
	assert.True(t, result.Success)
	assert.Equal(t, "local-listener", result.Target.Name)

	// 失败的目标同样计入统计
	stats, ok := p.Stats("lo-test")
	require.True(t, ok)
	assert.Equal(t, uint64(2), stats.Total)
	assert.Equal(t, uint64(1), stats.Failed)
	assert.Zero(t, stats.ConsecutiveFailures)
}

func TestProber_EveryTargetProbedPerCycle(t *testing.T) {
	// 首个目标成功不会短路：一轮探测覆盖全部目标
	p := proberWithTargets(listenTarget(t), listenTarget(t))

	result := p.Probe(context.Background(), loopbackIface())
	assert.True(t, result.Success)

	stats, ok := p.Stats("lo-test")
	require.True(t, ok)
	assert.Equal(t, uint64(2), stats.Total)
	assert.Equal(t, uint64(2), stats.Succeeded)
}

func TestProber_TimeoutBounded(t *testing.T) {
	// 不可达地址（TEST-NET-1），验证探测被超时约束
	cfg := config.DefaultProbeConfig()
	cfg.Timeout = 100 * time.Millisecond
	cfg.Targets = []types.ProbeTarget{
		{Name: "unreachable", Address: "192.0.2.1", Port: 53, Kind: types.ProbeTCPConnect},
	}
	p := NewProber(cfg, clock.New())

	start := time.Now()
	result := p.Probe(context.Background(), loopbackIface())
	elapsed := time.Since(start)

	assert.False(t, result.Success)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestProber_ForgetClearsStats(t *testing.T) {
	p := proberWithTargets(listenTarget(t))
	p.Probe(context.Background(), loopbackIface())

	_, ok := p.Stats("lo-test")
	require.True(t, ok)

	p.Forget("lo-test")
	_, ok = p.Stats("lo-test")
	assert.False(t, ok)
}

func TestProber_StatsUnknownInterface(t *testing.T) {
	p := proberWithTargets(listenTarget(t))
	_, ok := p.Stats("eth9")
	assert.False(t, ok)
}
