package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-backhaul/pkg/types"
)

func TestMetrics_ObserveProbe(t *testing.T) {
	m := New()

	m.ObserveProbe("eth0", true)
	m.ObserveProbe("eth0", true)
	m.ObserveProbe("eth0", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.probesTotal.WithLabelValues("eth0", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.probesTotal.WithLabelValues("eth0", "failure")))
}

func TestMetrics_ObserveState(t *testing.T) {
	m := New()
	m.ObserveState("eth0", types.StateUp)
	assert.Equal(t, float64(types.StateUp), testutil.ToFloat64(m.interfaceState.WithLabelValues("eth0")))
}

func TestMetrics_SetActiveSingleLabel(t *testing.T) {
	m := New()

	m.SetActive("wwan0")
	m.SetActive("eth0")

	// 旧标签被清除，任一时刻最多一个活跃标签
	assert.Equal(t, 1, testutil.CollectAndCount(m.activeInterface))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.activeInterface.WithLabelValues("eth0")))
}

func TestMetrics_SwitchCounters(t *testing.T) {
	m := New()

	m.ObserveSwitch(true)
	m.ObserveSwitch(true)
	m.ObserveSwitch(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.switchesTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.switchFailuresTotal))
}

func TestMetrics_ForgetInterface(t *testing.T) {
	m := New()

	m.ObserveState("wlan0", types.StateUp)
	m.ObserveScore(types.InterfaceScore{Interface: "wlan0", Total: 700})
	require.Equal(t, 1, testutil.CollectAndCount(m.interfaceState))

	m.ForgetInterface("wlan0")
	assert.Equal(t, 0, testutil.CollectAndCount(m.interfaceState))
	assert.Equal(t, 0, testutil.CollectAndCount(m.interfaceScore))
}

func TestMetrics_Keepalive(t *testing.T) {
	m := New()
	at := time.Unix(1700000000, 0)
	m.ObserveKeepalive(types.KeepaliveMarker{Token: "tok", EmittedAt: at})
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.keepaliveTimestamp))
}

func TestMetrics_PrivateRegistry(t *testing.T) {
	m := New()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	// 私有 Registry 只包含本子系统注册的指标
	for _, mf := range families {
		assert.Contains(t, mf.GetName(), "backhaul_")
	}
}
