// Package metrics 实现回程链路子系统的指标采集
//
// metrics 模块在私有 Registry 上注册 Prometheus 采集器，
// 通过自省服务的 /metrics 端点对外导出，不污染进程的
// 默认 Registry。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dep2p/go-backhaul/pkg/types"
)

// ============================================================================
//                              指标集
// ============================================================================

// Metrics 回程链路指标集
type Metrics struct {
	registry *prometheus.Registry

	// interfaceState 接口当前状态（值为状态枚举序号）
	interfaceState *prometheus.GaugeVec

	// interfaceScore 接口最近一次综合评分
	interfaceScore *prometheus.GaugeVec

	// probesTotal 探测总数，按接口与结果维度
	probesTotal *prometheus.CounterVec

	// switchesTotal 默认出口切换总数
	switchesTotal prometheus.Counter

	// switchFailuresTotal 切换失败总数
	switchFailuresTotal prometheus.Counter

	// activeInterface 当前活跃接口（标签承载接口名，值恒为 1）
	activeInterface *prometheus.GaugeVec

	// keepaliveTimestamp 最近一次保活标记的 Unix 秒
	keepaliveTimestamp prometheus.Gauge
}

// New 创建指标集并在私有 Registry 完成注册
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		interfaceState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "backhaul_interface_state",
			Help: "Current state of a tracked interface (0=PROBING 1=UP 2=DEGRADED 3=DOWN).",
		}, []string{"interface"}),
		interfaceScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "backhaul_interface_score",
			Help: "Latest composite score of a tracked interface.",
		}, []string{"interface"}),
		probesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "backhaul_probes_total",
			Help: "Total health probes performed, by interface and result.",
		}, []string{"interface", "result"}),
		switchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backhaul_switches_total",
			Help: "Total successful default-route switchovers.",
		}),
		switchFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "backhaul_switch_failures_total",
			Help: "Total failed default-route switchover attempts.",
		}),
		activeInterface: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "backhaul_active_interface_info",
			Help: "Set to 1 on the label of the currently active backhaul interface.",
		}, []string{"interface"}),
		keepaliveTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "backhaul_keepalive_timestamp_seconds",
			Help: "Unix timestamp of the last hardware keepalive marker.",
		}),
	}

	m.registry.MustRegister(
		m.interfaceState,
		m.interfaceScore,
		m.probesTotal,
		m.switchesTotal,
		m.switchFailuresTotal,
		m.activeInterface,
		m.keepaliveTimestamp,
	)
	return m
}

// Registry 返回承载指标的私有 Registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveState 记录接口状态
func (m *Metrics) ObserveState(iface string, state types.InterfaceState) {
	m.interfaceState.WithLabelValues(iface).Set(float64(state))
}

// ObserveScore 记录接口评分
func (m *Metrics) ObserveScore(score types.InterfaceScore) {
	m.interfaceScore.WithLabelValues(score.Interface).Set(float64(score.Total))
}

// ObserveProbe 记录一次探测结果
func (m *Metrics) ObserveProbe(iface string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	m.probesTotal.WithLabelValues(iface, result).Inc()
}

// ObserveSwitch 记录一次切换结果
func (m *Metrics) ObserveSwitch(success bool) {
	if success {
		m.switchesTotal.Inc()
	} else {
		m.switchFailuresTotal.Inc()
	}
}

// SetActive 更新活跃接口标签
//
// 先清空旧标签再设置新标签，保证任一时刻最多一个标签为 1。
func (m *Metrics) SetActive(iface string) {
	m.activeInterface.Reset()
	if iface != "" {
		m.activeInterface.WithLabelValues(iface).Set(1)
	}
}

// ObserveKeepalive 记录保活标记时间
func (m *Metrics) ObserveKeepalive(marker types.KeepaliveMarker) {
	m.keepaliveTimestamp.Set(float64(marker.EmittedAt.Unix()))
}

// ForgetInterface 清除已消失接口的标签序列
func (m *Metrics) ForgetInterface(iface string) {
	m.interfaceState.DeleteLabelValues(iface)
	m.interfaceScore.DeleteLabelValues(iface)
}
