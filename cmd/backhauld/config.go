package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	backhaul "github.com/dep2p/go-backhaul"
	"github.com/dep2p/go-backhaul/internal/config"
	"github.com/dep2p/go-backhaul/internal/core/netexec"
)

// ============================================================================
//                              配置加载（CLI 专用）
// ============================================================================

// buildOptions 构建选项
//
// 配置优先级（从高到低）：
//  1. 命令行参数（运行时覆盖）
//  2. 环境变量（BACKHAUL_* 前缀）
//  3. 配置文件（持久化配置）
//  4. 内置默认值
func buildOptions() ([]backhaul.Option, error) {
	var opts []backhaul.Option

	// ═══════════════════════════════════════════════════════════════════
	// 1. 加载配置文件（持久化配置）
	// ═══════════════════════════════════════════════════════════════════
	cfgPath := *configFile
	if cfgPath == "" {
		cfgPath = os.Getenv(config.EnvPrefix + config.EnvConfigFile)
	}

	userCfg := &backhaul.UserConfig{}
	if cfgPath != "" {
		loaded, err := loadConfigFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		userCfg = loaded
	}

	// ═══════════════════════════════════════════════════════════════════
	// 2. 应用环境变量覆盖
	// ═══════════════════════════════════════════════════════════════════
	applyEnvOverrides(userCfg)

	opts = append(opts, userCfg.ToOptions()...)

	// ═══════════════════════════════════════════════════════════════════
	// 3. 应用命令行参数覆盖（最高优先级）
	// ═══════════════════════════════════════════════════════════════════
	if isFlagSet("probe-interval") && *probeInterval > 0 {
		opts = append(opts, backhaul.WithProbeInterval(*probeInterval))
	}

	if isFlagSet("monitor-only") {
		opts = append(opts, backhaul.WithMonitorOnly(*monitorOnly))
	}

	// 试运行：命令只录制并打印，不触碰系统
	if *dryRun {
		runner := netexec.NewLoggingRunner(os.Stdout)
		opts = append(opts, backhaul.WithRunner(runner))
	}

	if isFlagSet("introspect") && *introspectAddr != "" {
		opts = append(opts, backhaul.WithIntrospect(*introspectAddr))
	}

	// 日志文件（命令行 > 环境变量）
	logPath := *logFile
	if logPath == "" {
		logPath = os.Getenv(config.EnvPrefix + config.EnvLogFile)
	}
	if logPath != "" {
		opts = append(opts, backhaul.WithLogFile(logPath))
	}

	return opts, nil
}

// loadConfigFile 从 JSON 文件加载配置
func loadConfigFile(path string) (*backhaul.UserConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, err
	}

	var cfg backhaul.UserConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyEnvOverrides 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
// 支持的环境变量（均使用 BACKHAUL_ 前缀）：
//   - BACKHAUL_CONFIG_FILE: 配置文件路径
//   - BACKHAUL_LOG_FILE: 日志文件路径
//   - BACKHAUL_PROBE_INTERVAL: 探测间隔（Go duration 格式）
//   - BACKHAUL_MONITOR_ONLY: 监视模式开关
//   - BACKHAUL_INTROSPECT_ADDR: 自省服务地址（非空即启用）
//   - BACKHAUL_RELAY_QOS_ENABLED: 中继整形开关
func applyEnvOverrides(cfg *backhaul.UserConfig) {
	// BACKHAUL_PROBE_INTERVAL
	if v := os.Getenv(config.EnvPrefix + config.EnvProbeInterval); v != "" {
		if interval, err := time.ParseDuration(v); err == nil && interval > 0 {
			if cfg.Probe == nil {
				cfg.Probe = &backhaul.ProbeUserConfig{}
			}
			cfg.Probe.Interval = backhaul.Duration(interval)
		}
	}

	// BACKHAUL_MONITOR_ONLY
	if v := os.Getenv(config.EnvPrefix + config.EnvMonitorOnly); v != "" {
		if cfg.Routing == nil {
			cfg.Routing = &backhaul.RoutingUserConfig{}
		}
		cfg.Routing.MonitorOnly = parseBool(v)
	}

	// BACKHAUL_INTROSPECT_ADDR
	if v := os.Getenv(config.EnvPrefix + config.EnvIntrospectAddr); v != "" {
		cfg.Introspect = &backhaul.IntrospectUserConfig{
			Enable: true,
			Addr:   v,
		}
	}

	// BACKHAUL_RELAY_QOS_ENABLED
	if v := os.Getenv(config.EnvPrefix + config.EnvRelayQosEnabled); v != "" {
		if cfg.RelayQos == nil {
			cfg.RelayQos = &backhaul.RelayQosUserConfig{}
		}
		cfg.RelayQos.Enabled = parseBool(v)
	}
}

// ============================================================================
//                              辅助函数
// ============================================================================

// parseBool 解析布尔值字符串
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
