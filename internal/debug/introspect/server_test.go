package introspect

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-backhaul/internal/core/metrics"
	"github.com/dep2p/go-backhaul/pkg/types"
)

// stubManager 返回固定快照的编排器替身
type stubManager struct {
	backhaul  types.ActiveBackhaul
	hasActive bool
	states    []types.InterfaceStatus
	marker    types.KeepaliveMarker
	fired     bool
}

func (s *stubManager) Start(context.Context) error { return nil }
func (s *stubManager) Stop(context.Context) error  { return nil }
func (s *stubManager) Tick(context.Context) error  { return nil }

func (s *stubManager) CurrentBackhaul() (types.ActiveBackhaul, bool) {
	return s.backhaul, s.hasActive
}

func (s *stubManager) InterfaceStates() []types.InterfaceStatus {
	return s.states
}

func (s *stubManager) LastKeepalive() (types.KeepaliveMarker, bool) {
	return s.marker, s.fired
}

func (s *stubManager) ActivateRelayQos(context.Context) error   { return nil }
func (s *stubManager) DeactivateRelayQos(context.Context) error { return nil }

func startServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	cfg.Addr = "127.0.0.1:0"
	server := New(cfg)
	require.NoError(t, server.Start(context.Background()))
	t.Cleanup(func() { _ = server.Stop() })
	return server
}

func TestNew(t *testing.T) {
	server := New(Config{})
	assert.NotNil(t, server)
	assert.Equal(t, DefaultAddr, server.config.Addr)

	server = New(Config{Addr: "127.0.0.1:8080"})
	assert.Equal(t, "127.0.0.1:8080", server.config.Addr)
}

func TestServer_StartStop(t *testing.T) {
	server := New(Config{Addr: "127.0.0.1:0"}) // 使用随机端口

	ctx := context.Background()
	require.NoError(t, server.Start(ctx))
	assert.True(t, server.running)

	// 获取实际地址
	addr := server.Addr()
	assert.NotEmpty(t, addr)
	assert.NotEqual(t, "127.0.0.1:0", addr)

	// 重复启动应该无效
	require.NoError(t, server.Start(ctx))

	require.NoError(t, server.Stop())
	assert.False(t, server.running)

	// 重复停止应该无效
	require.NoError(t, server.Stop())
}

func TestServer_StatusEndpoint(t *testing.T) {
	mgr := &stubManager{
		backhaul: types.ActiveBackhaul{
			Interface: "eth0",
			State:     types.StateUp,
			Score:     920,
		},
		hasActive: true,
	}
	server := startServer(t, Config{Manager: mgr})

	resp, err := http.Get("http://" + server.Addr() + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	require.NotNil(t, status.Backhaul)
	assert.Equal(t, "eth0", status.Backhaul.Interface)
	assert.NotEmpty(t, status.Runtime.GoVersion)
}

func TestServer_StatusWithoutActiveBackhaul(t *testing.T) {
	server := startServer(t, Config{Manager: &stubManager{}})

	resp, err := http.Get("http://" + server.Addr() + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	var status StatusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Nil(t, status.Backhaul)
}

func TestServer_InterfacesEndpoint(t *testing.T) {
	mgr := &stubManager{
		states: []types.InterfaceStatus{
			{
				Info:        types.InterfaceInfo{Name: "eth0", Type: types.InterfaceEthernet},
				State:       types.StateUp,
				TimeInState: time.Minute,
			},
			{
				Info:  types.InterfaceInfo{Name: "wlan0", Type: types.InterfaceWiFi},
				State: types.StateProbing,
			},
		},
	}
	server := startServer(t, Config{Manager: mgr})

	resp, err := http.Get("http://" + server.Addr() + "/interfaces")
	require.NoError(t, err)
	defer resp.Body.Close()

	var states []types.InterfaceStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&states))
	require.Len(t, states, 2)
	assert.Equal(t, "eth0", states[0].Info.Name)
}

func TestServer_KeepaliveEndpoint(t *testing.T) {
	mgr := &stubManager{
		marker: types.KeepaliveMarker{Token: "abc-123"},
		fired:  true,
	}
	server := startServer(t, Config{Manager: mgr})

	resp, err := http.Get("http://" + server.Addr() + "/keepalive")
	require.NoError(t, err)
	defer resp.Body.Close()

	var keepalive KeepaliveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&keepalive))
	assert.True(t, keepalive.Fired)
	require.NotNil(t, keepalive.Marker)
	assert.Equal(t, "abc-123", keepalive.Marker.Token)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.ObserveState("eth0", types.StateUp)
	server := startServer(t, Config{Manager: &stubManager{}, Metrics: m})

	resp, err := http.Get("http://" + server.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "backhaul_interface_state"))
}

func TestServer_HealthEndpoint(t *testing.T) {
	server := startServer(t, Config{})

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))

	// 没有编排器时降级
	assert.Equal(t, "degraded", health.Status)
	assert.NotEmpty(t, health.Uptime)
}

func TestServer_MethodNotAllowed(t *testing.T) {
	server := startServer(t, Config{Manager: &stubManager{}})

	resp, err := http.Post("http://"+server.Addr()+"/status", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
