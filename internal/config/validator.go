package config

import (
	"fmt"
	"net"
	"strings"
)

// ValidationError 配置校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置错误 [%s]: %s", e.Field, e.Message)
}

// ValidationErrors 多个配置校验错误
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}

	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors 是否有错误
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator 配置校验器
type Validator struct {
	errors ValidationErrors
}

// NewValidator 创建校验器
func NewValidator() *Validator {
	return &Validator{
		errors: make(ValidationErrors, 0),
	}
}

// addError 添加错误
func (v *Validator) addError(field, message string) {
	v.errors = append(v.errors, ValidationError{
		Field:   field,
		Message: message,
	})
}

// Errors 返回所有错误
func (v *Validator) Errors() ValidationErrors {
	return v.errors
}

// Validate 校验配置
//
// 配置错误属于致命错误：校验失败时子系统拒绝启动，
// 绝不带着非法配置运行。
func Validate(config *Config) error {
	v := NewValidator()

	// 校验接口发现配置
	v.validateDiscovery(&config.Discovery)

	// 校验健康探测配置
	v.validateProbe(&config.Probe)

	// 校验评分配置
	v.validateScoring(&config.Scoring)

	// 校验状态机配置
	v.validateStateMachine(&config.StateMachine)

	// 校验策略路由配置
	v.validateRouting(&config.Routing)

	// 校验中继整形配置
	v.validateRelayQos(&config.RelayQos)

	// 校验保活配置
	v.validateKeepalive(&config.Keepalive)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

// validateDiscovery 校验接口发现配置
func (v *Validator) validateDiscovery(cfg *DiscoveryConfig) {
	if cfg.PollInterval <= 0 {
		v.addError("discovery.poll_interval", "轮询间隔必须为正")
	}
}

// validateProbe 校验健康探测配置
func (v *Validator) validateProbe(cfg *ProbeConfig) {
	if cfg.Interval <= 0 {
		v.addError("probe.interval", "探测间隔必须为正")
	}
	if cfg.Timeout <= 0 {
		v.addError("probe.timeout", "探测超时必须为正")
	}
	if cfg.Timeout >= cfg.Interval && cfg.Interval > 0 {
		v.addError("probe.timeout", "探测超时必须小于探测间隔")
	}

	if len(cfg.Targets) == 0 {
		v.addError("probe.targets", "探测目标不能为空")
	}
	for i, target := range cfg.Targets {
		if net.ParseIP(target.Address) == nil {
			v.addError(
				fmt.Sprintf("probe.targets[%d].address", i),
				fmt.Sprintf("无效的 IP 地址: %s", target.Address),
			)
		}
		if target.Port == 0 {
			v.addError(
				fmt.Sprintf("probe.targets[%d].port", i),
				"端口不能为 0",
			)
		}
	}

	if cfg.DegradedThreshold < 1 {
		v.addError("probe.degraded_threshold", "降级阈值至少为 1")
	}
	if cfg.DownThreshold <= cfg.DegradedThreshold {
		v.addError("probe.down_threshold", "不可用阈值必须大于降级阈值")
	}
	if cfg.MaxConcurrentProbes < 1 {
		v.addError("probe.max_concurrent_probes", "探测并发数至少为 1")
	}
}

// validateScoring 校验评分配置
func (v *Validator) validateScoring(cfg *ScoringConfig) {
	if cfg.LatencyWeight == 0 && cfg.LossWeight == 0 && cfg.SuccessWeight == 0 {
		v.addError("scoring", "至少一个评分权重必须为正")
	}
	if cfg.MaxRTT <= 0 {
		v.addError("scoring.max_rtt", "延迟归一化上限必须为正")
	}
	if cfg.MaxLossPercent <= 0 || cfg.MaxLossPercent > 100 {
		v.addError("scoring.max_loss_percent", "丢包归一化上限必须在 (0, 100] 区间")
	}
}

// validateStateMachine 校验状态机配置
func (v *Validator) validateStateMachine(cfg *StateMachineConfig) {
	if cfg.MinStateDuration < 0 {
		v.addError("state_machine.min_state_duration", "最小驻留时间不能为负")
	}
	holdDowns := map[string]int64{
		"state_machine.up_to_degraded_hold_down":   int64(cfg.UpToDegradedHoldDown),
		"state_machine.degraded_to_down_hold_down": int64(cfg.DegradedToDownHoldDown),
		"state_machine.down_to_probing_hold_down":  int64(cfg.DownToProbingHoldDown),
		"state_machine.probing_to_up_hold_down":    int64(cfg.ProbingToUpHoldDown),
	}
	for field, d := range holdDowns {
		if d < 0 {
			v.addError(field, "保持时间不能为负")
		}
	}
}

// validateRouting 校验策略路由配置
func (v *Validator) validateRouting(cfg *RoutingConfig) {
	if cfg.TableIDBase < 1 {
		v.addError("routing.table_id_base", "路由表号下界至少为 1")
	}
	if cfg.TableIDMax < cfg.TableIDBase {
		v.addError("routing.table_id_max", "路由表号上界不能小于下界")
	}
	// 253-255 为内核保留表号（default/main/local）
	if cfg.TableIDBase <= 255 && cfg.TableIDMax >= 253 {
		v.addError("routing.table_id_max", "路由表号范围不能覆盖内核保留表号 253-255")
	}
	if cfg.RulePriority < 1 {
		v.addError("routing.rule_priority", "策略规则优先级至少为 1")
	}
}

// validateRelayQos 校验中继整形配置
func (v *Validator) validateRelayQos(cfg *RelayQosConfig) {
	if !cfg.Enabled {
		return
	}
	if cfg.LinkCapacityKbps == 0 {
		v.addError("relay_qos.link_capacity_kbps", "链路容量必须为正")
	}
	if cfg.RelayMinKbps == 0 {
		v.addError("relay_qos.relay_min_kbps", "中继保障速率必须为正")
	}
	if cfg.NodeMinKbps == 0 {
		v.addError("relay_qos.node_min_kbps", "本机保障速率必须为正")
	}
	if cfg.RelayCeilKbps < cfg.RelayMinKbps {
		v.addError("relay_qos.relay_ceil_kbps", "中继速率上限不能小于保障速率")
	}
	if cfg.LinkCapacityKbps < cfg.RelayMinKbps+cfg.NodeMinKbps {
		v.addError("relay_qos.link_capacity_kbps", "链路容量必须不小于各类保障速率之和")
	}
	if cfg.RelayDSCP > 63 {
		v.addError("relay_qos.relay_dscp", "DSCP 值必须在 0-63 区间")
	}
}

// validateKeepalive 校验保活配置
func (v *Validator) validateKeepalive(cfg *KeepaliveConfig) {
	if cfg.Enable && cfg.MinInterval <= 0 {
		v.addError("keepalive.min_interval", "保活最小间隔必须为正")
	}
}
